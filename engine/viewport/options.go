package viewport

import (
	"encoding/json"
	"fmt"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/geom"
)

// Options are the display settings of one render session.
type Options struct {
	// MinHeight is the smallest logical viewport height.
	MinHeight int
	// ForcedHeight, when non-zero, overrides the host height outright.
	ForcedHeight int
	// UseLastCamera restores the persisted camera at session start.
	UseLastCamera bool
	// SaveCamera persists the camera while it moves and on dispose.
	SaveCamera bool
}

// DefaultOptions returns the settings used when a payload names none.
func DefaultOptions() Options {
	return Options{MinHeight: camera.DefaultMinHeight}
}

// Payload is a render request: the solids to show and how to show them.
type Payload struct {
	Solids  []geom.Solid
	Options Options
}

type rawPayload struct {
	Geom           []geom.Solid `json:"geom"`
	MinHeight      int          `json:"minHeight"`
	Height         int          `json:"height"`
	UseLastCamera  bool         `json:"useLastCamera"`
	SaveCamera     bool         `json:"saveCamera"`
	PreserveCamera *bool        `json:"preserveCamera"`
}

// ParsePayload decodes a JSON render request. Both camera flag forms are accepted:
// {"useLastCamera", "saveCamera"} and the single {"preserveCamera"}, which sets both
// and wins when present. A missing or zero minHeight becomes 300.
//
// Parameters:
//   - data: the JSON document
//
// Returns:
//   - Payload: the decoded request
//   - error: an error if the document is not valid JSON of the expected shape
func ParsePayload(data []byte) (Payload, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}

	opts := Options{
		MinHeight:     common.Coalesce(max(raw.MinHeight, 0), camera.DefaultMinHeight),
		ForcedHeight:  max(raw.Height, 0),
		UseLastCamera: raw.UseLastCamera,
		SaveCamera:    raw.SaveCamera,
	}
	if raw.PreserveCamera != nil {
		opts.UseLastCamera = *raw.PreserveCamera
		opts.SaveCamera = *raw.PreserveCamera
	}

	return Payload{Solids: raw.Geom, Options: opts}, nil
}
