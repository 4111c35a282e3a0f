package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"LeapPaint/internal/stroke"
)

// Config holds the application settings read from the environment.
type Config struct {
	LogLevel string `env:"LEAPPAINT_LOG_LEVEL" envDefault:"info"`

	MovingAverageWindow          int     `env:"LEAPPAINT_MOVING_AVERAGE_WINDOW"           envDefault:"6"`
	MaxSegmentLength             float32 `env:"LEAPPAINT_MAX_SEGMENT_LENGTH"              envDefault:"0.03"`
	MinThicknessMinSegmentLength float32 `env:"LEAPPAINT_MIN_THICKNESS_MIN_SEGMENT_LENGTH" envDefault:"0.001"`
	MaxThicknessMinSegmentLength float32 `env:"LEAPPAINT_MAX_THICKNESS_MIN_SEGMENT_LENGTH" envDefault:"0.007"`
	ThicknessMin                 float32 `env:"LEAPPAINT_THICKNESS_MIN"                   envDefault:"0.002"`
	ThicknessMax                 float32 `env:"LEAPPAINT_THICKNESS_MAX"                   envDefault:"0.012"`

	// PixelsPerMeter scales scene metres onto the canvas.
	PixelsPerMeter float32 `env:"LEAPPAINT_PIXELS_PER_METER" envDefault:"2000"`

	BridgeEnabled bool `env:"LEAPPAINT_BRIDGE_ENABLED" envDefault:"false"`
	BridgePort    int  `env:"LEAPPAINT_BRIDGE_PORT"    envDefault:"8888"`
	MDNSEnabled   bool `env:"LEAPPAINT_MDNS_ENABLED"   envDefault:"false"`

	// SceneFile is loaded at startup when set.
	SceneFile string `env:"LEAPPAINT_SCENE_FILE"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:                     "info",
		MovingAverageWindow:          6,
		MaxSegmentLength:             0.03,
		MinThicknessMinSegmentLength: 0.001,
		MaxThicknessMinSegmentLength: 0.007,
		ThicknessMin:                 0.002,
		ThicknessMax:                 0.012,
		PixelsPerMeter:               2000,
		BridgePort:                   8888,
	}
}

// Parse reads the configuration from the environment and validates it.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is Parse that falls back to Default on failure.
func Load() Config {
	cfg, err := Parse()
	if err != nil {
		stroke.Logger().Error("invalid configuration; using defaults", "component", "config", "error", err)
		return Default()
	}
	return cfg
}

// Validate reports settings the stroke pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if _, err := ResolveLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.MovingAverageWindow < 1 {
		errs = append(errs, fmt.Errorf("moving average window must be positive, got %d", c.MovingAverageWindow))
	}
	if c.MaxSegmentLength <= 0 {
		errs = append(errs, fmt.Errorf("max segment length must be positive, got %g", c.MaxSegmentLength))
	}
	if c.MinThicknessMinSegmentLength < 0 || c.MaxThicknessMinSegmentLength < 0 {
		errs = append(errs, errors.New("min segment lengths must not be negative"))
	}
	if c.MinThicknessMinSegmentLength > c.MaxSegmentLength || c.MaxThicknessMinSegmentLength > c.MaxSegmentLength {
		errs = append(errs, errors.New("min segment lengths must not exceed the max segment length"))
	}
	if c.ThicknessMin <= 0 || c.ThicknessMax < c.ThicknessMin {
		errs = append(errs, fmt.Errorf("thickness range [%g, %g] is invalid", c.ThicknessMin, c.ThicknessMax))
	}
	if c.PixelsPerMeter <= 0 {
		errs = append(errs, fmt.Errorf("pixels per meter must be positive, got %g", c.PixelsPerMeter))
	}
	if c.BridgePort < 1 || c.BridgePort > 65535 {
		errs = append(errs, fmt.Errorf("bridge port %d out of range", c.BridgePort))
	}
	return errors.Join(errs...)
}
