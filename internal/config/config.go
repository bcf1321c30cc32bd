package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the user's config.toml. Fields left out of the file keep their
// defaults.
type Config struct {
	Theme      string        `toml:"theme"`
	Endpoint   string        `toml:"endpoint"`
	SiteID     string        `toml:"site_id"`
	Steps      []string      `toml:"steps"`
	Interval   string        `toml:"interval"`
	Variant    string        `toml:"variant"`
	Credential string        `toml:"credential"`
	Width      float64       `toml:"width"`
	Height     float64       `toml:"height"`
	DPR        float64       `toml:"dpr"`
	Timeout    time.Duration `toml:"-"`
	TimeoutStr string        `toml:"timeout"`
	MaxHistory int           `toml:"max_history"`
	LogLevel   string        `toml:"log_level"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Theme:      "solarized-dark",
		Steps:      []string{"/", "/analytics", "/subscription"},
		Interval:   "90d",
		Variant:    "area",
		Width:      800,
		Height:     480,
		DPR:        1,
		Timeout:    15 * time.Second,
		TimeoutStr: "15s",
		MaxHistory: 60,
		LogLevel:   "info",
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.TimeoutStr != "" {
		d, err := time.ParseDuration(cfg.TimeoutStr)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: timeout: %w", path, err)
		}
		cfg.Timeout = d
	}
	return cfg, cfg.Validate()
}

// Validate reports settings that cannot be used as given.
func (c *Config) Validate() error {
	var errs []error
	if err := CheckSize(c.Width, c.Height); err != nil {
		errs = append(errs, err)
	}
	if err := CheckDPR(c.DPR); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s must not be negative", c.Timeout))
	}
	if slices.Contains(c.Steps, "") {
		errs = append(errs, errors.New("steps must not contain empty paths"))
	}
	return errors.Join(errs...)
}

// MaxDPR bounds the device-pixel ratio of raster output.
const MaxDPR = 4

// CheckSize reports a chart size that is not finite and positive.
func CheckSize(w, h float64) error {
	if !(w > 0) || !(h > 0) || math.IsInf(w, 1) || math.IsInf(h, 1) {
		return fmt.Errorf("chart size %gx%g must be finite and positive", w, h)
	}
	return nil
}

// CheckDPR reports a device-pixel ratio outside [0, MaxDPR]. Zero means 1.
func CheckDPR(r float64) error {
	if !(r >= 0 && r <= MaxDPR) {
		return fmt.Errorf("dpr %g must be between 0 and %d", r, MaxDPR)
	}
	return nil
}

// SaveConfig writes cfg to path as TOML.
func SaveConfig(cfg *Config, path string) error {
	cfg.TimeoutStr = cfg.Timeout.String()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
