package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"overlay-compositor/internal/viewport"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths. Relative values resolve against BaseDir.
	BaseDir    string `json:"-"`
	StylesPath string `json:"styles_path"`
	AssetBase  string `json:"asset_base"` // directory or http(s) URL for texture refs
	Recording  string `json:"recording"`
	FrameImage string `json:"frame_image"`
	OutputDir  string `json:"output_dir"`

	// Display
	Fit             string  `json:"fit"`
	ContainerWidth  float64 `json:"container_width"`
	ContainerHeight float64 `json:"container_height"`
	ShowLandmarks   *bool   `json:"show_landmarks"`
	DrawFrame       *bool   `json:"draw_frame"`

	// Loop
	TickRate     int   `json:"tick_rate"`
	StaleAfterMS int   `json:"stale_after_ms"`
	DurationMS   int64 `json:"duration_ms"`

	// Output
	SnapshotEvery int `json:"snapshot_every"`
	SnapshotWidth int `json:"snapshot_width"`
	Workers       int `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	StylesPath string
	AssetBase  string
	Recording  string
	FrameImage string
	OutputDir  string
	Fit        string
	Duration   time.Duration
	Workers    int
}

// Resolve applies flags, fills defaults and makes paths absolute against
// BaseDir. It fails when Fit is not a known mode.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	setString(&c.StylesPath, flags.StylesPath)
	setString(&c.AssetBase, flags.AssetBase)
	setString(&c.Recording, flags.Recording)
	setString(&c.FrameImage, flags.FrameImage)
	setString(&c.OutputDir, flags.OutputDir)
	setString(&c.Fit, flags.Fit)
	if flags.Duration > 0 {
		c.DurationMS = flags.Duration.Milliseconds()
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}
	c.StylesPath = c.abs(c.StylesPath)
	c.Recording = c.abs(c.Recording)
	c.FrameImage = c.abs(c.FrameImage)
	if c.OutputDir == "" {
		c.OutputDir = "overlay-frames"
	}
	c.OutputDir = c.abs(c.OutputDir)
	if c.AssetBase != "" && !isURL(c.AssetBase) {
		c.AssetBase = c.abs(c.AssetBase)
	}

	// Defaults for render settings
	if c.Fit == "" {
		c.Fit = viewport.Contain.String()
	}
	if _, err := viewport.ParseFit(c.Fit); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ContainerWidth <= 0 {
		c.ContainerWidth = 1280
	}
	if c.ContainerHeight <= 0 {
		c.ContainerHeight = 720
	}
	if c.ShowLandmarks == nil {
		c.ShowLandmarks = boolPtr(true)
	}
	if c.DrawFrame == nil {
		c.DrawFrame = boolPtr(true)
	}
	if c.TickRate <= 0 {
		c.TickRate = 60
	}
	if c.StaleAfterMS <= 0 {
		c.StaleAfterMS = 2000
	}
	if c.SnapshotEvery <= 0 {
		c.SnapshotEvery = 30
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// FitMode returns the parsed Fit. Call after Resolve.
func (c Config) FitMode() viewport.Fit {
	f, _ := viewport.ParseFit(c.Fit)
	return f
}

// StaleAfter returns StaleAfterMS as a duration.
func (c Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterMS) * time.Millisecond
}

// Duration returns DurationMS as a duration; zero means unbounded.
func (c Config) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}

func (c Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func boolPtr(b bool) *bool { return &b }

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
