package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Facing modes accepted in the camera section.
const (
	FacingUser        = "user"
	FacingEnvironment = "environment"
)

// Source types accepted in the camera section.
const (
	SourceV4L2   = "v4l2"
	SourceScreen = "screen"
	SourceImage  = "image"
)

// Range is a min/ideal/max hint for one capture dimension. Zero bounds are unset.
type Range struct {
	Min   int `json:"min" yaml:"min" toml:"min"`
	Ideal int `json:"ideal" yaml:"ideal" toml:"ideal"`
	Max   int `json:"max" yaml:"max" toml:"max"`
}

// Constraints describe one rung of the acquisition ladder.
type Constraints struct {
	Width     Range `json:"width" yaml:"width" toml:"width"`
	Height    Range `json:"height" yaml:"height" toml:"height"`
	FrameRate Range `json:"frame_rate" yaml:"frame_rate" toml:"frame_rate"`
}

// CameraConfig selects the feed source and the resolution hints.
type CameraConfig struct {
	Source      string      `json:"source" yaml:"source" toml:"source"`                   // v4l2, screen or image
	FrontDevice string      `json:"front_device" yaml:"front_device" toml:"front_device"` // device used for facing "user"
	BackDevice  string      `json:"back_device" yaml:"back_device" toml:"back_device"`    // device used for facing "environment"
	Facing      string      `json:"facing" yaml:"facing" toml:"facing"`                   // initial facing mode
	Preferred   Constraints `json:"preferred" yaml:"preferred" toml:"preferred"`
	Fallback    Constraints `json:"fallback" yaml:"fallback" toml:"fallback"`
	FrameWaitMs int         `json:"frame_wait_ms" yaml:"frame_wait_ms" toml:"frame_wait_ms"` // whole seconds; V4L2 waits in second steps
}

// CaptureConfig tunes the snapshot state machine.
type CaptureConfig struct {
	RetryDelayMs int `json:"retry_delay_ms" yaml:"retry_delay_ms" toml:"retry_delay_ms"`
	MaxRetries   int `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
}

// OverlayConfig points at the decorative frame drawn over every photo.
// Path empty means the embedded default; Disabled skips the overlay entirely.
type OverlayConfig struct {
	Path     string `json:"path" yaml:"path" toml:"path"`
	Disabled bool   `json:"disabled" yaml:"disabled" toml:"disabled"`
}

// OutputConfig controls where saved photos land.
type OutputConfig struct {
	SaveDir string `json:"save_dir" yaml:"save_dir" toml:"save_dir"`
	Prefix  string `json:"prefix" yaml:"prefix" toml:"prefix"`
}

// DisplayConfig holds window and fullscreen behaviour.
type DisplayConfig struct {
	Width          int  `json:"width" yaml:"width" toml:"width"`
	Height         int  `json:"height" yaml:"height" toml:"height"`
	Fullscreen     bool `json:"fullscreen" yaml:"fullscreen" toml:"fullscreen"` // fullscreen control available
	AutoFullscreen bool `json:"auto_fullscreen" yaml:"auto_fullscreen" toml:"auto_fullscreen"`
	NoticeMs       int  `json:"notice_ms" yaml:"notice_ms" toml:"notice_ms"`
	TickMs         int  `json:"tick_ms" yaml:"tick_ms" toml:"tick_ms"`
	Dark           bool `json:"dark" yaml:"dark" toml:"dark"`
}

// Config holds runtime configuration for the capture widget.
// Fields may be loaded from a JSON, YAML or TOML file and overridden by command-line flags.
type Config struct {
	Debug   bool          `json:"debug" yaml:"debug" toml:"debug"`
	Camera  CameraConfig  `json:"camera" yaml:"camera" toml:"camera"`
	Capture CaptureConfig `json:"capture" yaml:"capture" toml:"capture"`
	Overlay OverlayConfig `json:"overlay" yaml:"overlay" toml:"overlay"`
	Output  OutputConfig  `json:"output" yaml:"output" toml:"output"`
	Display DisplayConfig `json:"display" yaml:"display" toml:"display"`
}

// DefaultPreferred mirrors the resolution hints requested for a desktop webcam.
func DefaultPreferred() Constraints {
	return Constraints{
		Width:     Range{Min: 640, Ideal: 1280, Max: 1920},
		Height:    Range{Min: 480, Ideal: 720, Max: 1080},
		FrameRate: Range{Min: 24, Ideal: 30},
	}
}

// DefaultFallback is the basic rung tried when the preferred hints fail.
func DefaultFallback() Constraints {
	return Constraints{
		Width:  Range{Min: 320, Ideal: 640},
		Height: Range{Min: 240, Ideal: 480},
	}
}

// DefaultSaveDir returns the XDG pictures directory with an app subfolder.
func DefaultSaveDir() string {
	base := xdg.UserDirs.Pictures
	if base == "" {
		base = "."
	}
	return filepath.Join(base, "camsnap")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "camsnap", "config.json")
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug: false,
		Camera: CameraConfig{
			Source:      SourceV4L2,
			FrontDevice: "/dev/video0",
			Facing:      FacingUser,
			Preferred:   DefaultPreferred(),
			Fallback:    DefaultFallback(),
			FrameWaitMs: 1000,
		},
		Capture: CaptureConfig{
			RetryDelayMs: 100,
			MaxRetries:   20,
		},
		Output: OutputConfig{
			SaveDir: DefaultSaveDir(),
			Prefix:  "photo",
		},
		Display: DisplayConfig{
			Width:      960,
			Height:     720,
			Fullscreen: true,
			NoticeMs:   3000,
			TickMs:     33,
			Dark:       true,
		},
	}
}

// Validate clamps/normalizes values to safe ranges. It only fails on values that cannot
// be repaired, such as an unknown source type.
func (c *Config) Validate() error {
	switch c.Camera.Source {
	case "":
		c.Camera.Source = SourceV4L2
	case SourceV4L2, SourceScreen, SourceImage:
	default:
		return fmt.Errorf("camera.source %q is not one of v4l2, screen, image", c.Camera.Source)
	}
	if c.Camera.Facing != FacingUser && c.Camera.Facing != FacingEnvironment {
		c.Camera.Facing = FacingUser
	}
	if c.Camera.Source == SourceV4L2 && c.Camera.FrontDevice == "" && c.Camera.BackDevice == "" {
		c.Camera.FrontDevice = "/dev/video0"
	}
	if c.Camera.Preferred == (Constraints{}) {
		c.Camera.Preferred = DefaultPreferred()
	}
	if c.Camera.Fallback == (Constraints{}) {
		c.Camera.Fallback = DefaultFallback()
	}
	// V4L2 select timeouts are whole seconds; round so the configured wait is the real one.
	c.Camera.FrameWaitMs = (c.Camera.FrameWaitMs + 500) / 1000 * 1000
	if c.Camera.FrameWaitMs <= 0 {
		c.Camera.FrameWaitMs = 1000
	}
	if c.Capture.RetryDelayMs <= 0 {
		c.Capture.RetryDelayMs = 100
	}
	if c.Capture.MaxRetries <= 0 {
		c.Capture.MaxRetries = 20
	}
	if c.Output.SaveDir == "" {
		c.Output.SaveDir = DefaultSaveDir()
	}
	if strings.TrimSpace(c.Output.Prefix) == "" {
		c.Output.Prefix = "photo"
	}
	if c.Display.Width < 320 {
		c.Display.Width = 960
	}
	if c.Display.Height < 240 {
		c.Display.Height = 720
	}
	if c.Display.NoticeMs <= 0 {
		c.Display.NoticeMs = 3000
	}
	if c.Display.TickMs <= 0 || c.Display.TickMs > 1000 {
		c.Display.TickMs = 33
	}
	return nil
}

// RetryDelay returns the wait before re-attempting a capture on a not-ready feed.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Capture.RetryDelayMs) * time.Millisecond
}

// NoticeDuration returns how long the fullscreen notice stays visible.
func (c *Config) NoticeDuration() time.Duration {
	return time.Duration(c.Display.NoticeMs) * time.Millisecond
}

// Tick returns the live preview refresh interval.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Display.TickMs) * time.Millisecond
}

// FrameWait returns how long the feed loop blocks for a single device frame.
func (c *Config) FrameWait() time.Duration {
	return time.Duration(c.Camera.FrameWaitMs) * time.Millisecond
}

type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

// Load attempts to read configuration from the given file path. The format follows the
// extension (.json, .yaml/.yml, .toml). If the file does not exist it returns
// DefaultConfig(). On decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	switch formatOf(path) {
	case formatYAML:
		err = yaml.Unmarshal(data, cfg)
	case formatTOML:
		err = toml.Unmarshal(data, cfg)
	default:
		err = json.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("decode config %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in the format implied by its extension.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case formatYAML:
		data, err = yaml.Marshal(c)
	case formatTOML:
		data, err = toml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
