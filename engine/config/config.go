// Package config loads the viewer settings file. Settings are TOML; every field is optional and
// missing fields keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Present modes accepted in [renderer] present_mode.
const (
	PresentVSync    = "vsync"
	PresentUncapped = "uncapped"
)

// Log formats accepted in [log] format.
const (
	LogText = "text"
	LogJSON = "json"
)

// Config is the complete settings file.
type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Viewer   Viewer   `toml:"viewer"`
	Log      Log      `toml:"log"`
}

// Window holds the host surface settings.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// Terminal draws into the terminal with tcell instead of opening a GLFW window.
	Terminal bool `toml:"terminal"`
	// FrameRate paces the terminal loop; GLFW windows follow the display.
	FrameRate int `toml:"frame_rate"`
}

// Renderer holds the drawing settings.
type Renderer struct {
	PresentMode   string     `toml:"present_mode"`
	MSAA          int        `toml:"msaa"`
	ForceSoftware bool       `toml:"force_software"`
	ClearColor    [4]float32 `toml:"clear_color"`
	Culling       bool       `toml:"culling"`
}

// Viewer holds the session settings.
type Viewer struct {
	// StorePath is the TOML file the camera is persisted to. Empty keeps it in memory.
	StorePath string `toml:"store_path"`
	// Workers bounds the solid conversion goroutines; 0 uses one per CPU.
	Workers int `toml:"workers"`
	// Watch reloads the payload file when it changes.
	Watch bool `toml:"watch"`
	// Profiling logs frame statistics every ProfileInterval seconds.
	Profiling       bool    `toml:"profiling"`
	ProfileInterval float64 `toml:"profile_interval"`
	Drag            float32 `toml:"drag"`
	AutoRotate      bool    `toml:"auto_rotate"`
}

// Log holds the logger settings.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in settings.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: Window{
			Title:     "jscad-view",
			Width:     1280,
			Height:    720,
			FrameRate: 30,
		},
		Renderer: Renderer{
			PresentMode: PresentVSync,
			MSAA:        4,
			ClearColor:  [4]float32{1, 1, 1, 1},
			Culling:     true,
		},
		Viewer: Viewer{
			StorePath:       DefaultStorePath(),
			Watch:           true,
			ProfileInterval: 1,
			Drag:            0.27,
		},
		Log: Log{
			Level:  "info",
			Format: LogText,
		},
	}
}

// DefaultStorePath returns the camera store location under the user config directory,
// or an empty string when that directory is unknown.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "jscad-view", "camera.toml")
}

// Load reads a settings file over the defaults. A missing file yields the defaults.
//
// Parameters:
//   - path: the settings file
//
// Returns:
//   - Config: the merged settings
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML settings into cfg. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//   - cfg: the settings to overwrite
//
// Returns:
//   - error: a decode error, including the offending key for unknown fields
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.New(strict.String())
		}
		return err
	}
	return nil
}

// Save writes the settings as TOML, creating the parent directory.
//
// Parameters:
//   - path: the destination file
//
// Returns:
//   - error: an error if encoding or writing fails
func (c Config) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Encode writes the settings as TOML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: an error if encoding fails
func (c Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks the enumerated and ranged fields.
//
// Returns:
//   - error: the joined validation failures
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate must be positive, got %d", c.Window.FrameRate))
	}
	switch c.Renderer.PresentMode {
	case PresentVSync, PresentUncapped:
	default:
		errs = append(errs, fmt.Errorf("unknown present_mode %q", c.Renderer.PresentMode))
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		errs = append(errs, fmt.Errorf("msaa must be 1 or 4, got %d", c.Renderer.MSAA))
	}
	if c.Viewer.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Viewer.Workers))
	}
	if c.Viewer.Drag < 0 || c.Viewer.Drag > 1 {
		errs = append(errs, fmt.Errorf("drag must be within [0, 1], got %g", c.Viewer.Drag))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case LogText, LogJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level with the slog level names (debug, info, warn, error).
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}

// NewLogger builds the logger described by the settings.
//
// Parameters:
//   - w: the log destination
//
// Returns:
//   - *slog.Logger: a text or JSON logger at the configured level
func (l Log) NewLogger(w io.Writer) *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == LogJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
