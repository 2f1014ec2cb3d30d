package camera

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/store"
	"github.com/go-gl/mathgl/mgl32"
)

// Keys under which the camera is persisted.
const (
	PositionKey = "camera-position"
	TargetKey   = "camera-target"
)

// MalformedPersistedStateError reports a persisted camera entry that is not three numbers.
type MalformedPersistedStateError struct {
	Key   string
	Value string
	Err   error
}

func (e *MalformedPersistedStateError) Error() string {
	return fmt.Sprintf("malformed persisted camera state %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *MalformedPersistedStateError) Unwrap() error {
	return e.Err
}

// LoadPersisted applies the persisted position and target to a camera. Absent keys leave the
// corresponding field unchanged. Coordinates are truncated to integers. If either entry is
// malformed, the camera is returned unchanged with a *MalformedPersistedStateError.
//
// Parameters:
//   - s: the store to read
//   - cam: the camera to update
//
// Returns:
//   - Camera: the updated camera
//   - bool: true if at least one entry was applied
//   - error: a *MalformedPersistedStateError for unreadable entries
func LoadPersisted(s store.Store, cam Camera) (Camera, bool, error) {
	next := cam
	applied := false

	for _, entry := range []struct {
		key string
		dst *mgl32.Vec3
	}{
		{PositionKey, &next.Position},
		{TargetKey, &next.Target},
	} {
		raw, ok := s.Get(entry.key)
		if !ok {
			continue
		}
		v, err := parseVec3(raw)
		if err != nil {
			return cam, false, &MalformedPersistedStateError{Key: entry.key, Value: raw, Err: err}
		}
		*entry.dst = v
		applied = true
	}

	return next, applied, nil
}

// SavePersisted writes the camera position and target as comma-separated integers.
//
// Parameters:
//   - s: the store to write
//   - cam: the camera to persist
//
// Returns:
//   - error: the first store failure, wrapped
func SavePersisted(s store.Store, cam Camera) error {
	if err := s.Set(PositionKey, formatVec3(cam.Position)); err != nil {
		return fmt.Errorf("failed to save camera position: %w", err)
	}
	if err := s.Set(TargetKey, formatVec3(cam.Target)); err != nil {
		return fmt.Errorf("failed to save camera target: %w", err)
	}
	return nil
}

// ClearPersisted removes both camera entries.
//
// Parameters:
//   - s: the store to clear
//
// Returns:
//   - error: the joined store failures
func ClearPersisted(s store.Store) error {
	return errors.Join(s.Remove(PositionKey), s.Remove(TargetKey))
}

func formatVec3(v mgl32.Vec3) string {
	parts := make([]string, 3)
	for i := range 3 {
		parts[i] = strconv.FormatInt(int64(v[i]), 10)
	}
	return strings.Join(parts, ",")
}

func parseVec3(raw string) (mgl32.Vec3, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("want 3 coordinates, got %d", len(parts))
	}

	var v mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		if !common.IsFinite(float32(f)) {
			return mgl32.Vec3{}, fmt.Errorf("coordinate %d is not finite", i)
		}
		v[i] = float32(math.Trunc(f))
	}
	return v, nil
}
