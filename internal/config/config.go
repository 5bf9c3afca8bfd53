// Package config holds the tunable constants of the measurement pipeline
// and their JSON file persistence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"plant-monitor/internal/calib"
	"plant-monitor/internal/segment"
	"plant-monitor/internal/stabilize"
)

// Config is the full tunable surface. Fields load from a JSON file and may
// be overridden by command-line flags.
type Config struct {
	CameraID int `json:"camera_id"`

	// Plant color windows; the pair covers the red hue wrap-around.
	PlantRange1 segment.HSVRange `json:"plant_range_1"`
	PlantRange2 segment.HSVRange `json:"plant_range_2"`

	MorphIterations   int     `json:"morph_iterations"`
	MinLeafAreaPixels float64 `json:"min_leaf_area_pixels"`

	// Reference object detection.
	ReferenceRange         segment.HSVRange `json:"reference_range"`
	ReferenceWidthMM       float64          `json:"reference_width_mm"`
	MinReferenceAreaPixels float64          `json:"min_reference_area_pixels"`

	HistoryDepth int `json:"history_depth"`

	// Best-frame sampling policy.
	SampleWindowMS int `json:"sample_window_ms"`
	SamplePeriodMS int `json:"sample_period_ms"`

	CaptureDir string `json:"capture_dir"`
	CSVPath    string `json:"csv_path"`
}

// Default returns the tuned defaults for a red-leaved plant with a 10 mm
// blue reference tab.
func Default() *Config {
	seg := segment.DefaultParams()
	ref := calib.DefaultParams()
	return &Config{
		CameraID:               0,
		PlantRange1:            seg.Range1,
		PlantRange2:            seg.Range2,
		MorphIterations:        seg.MorphIterations,
		MinLeafAreaPixels:      100,
		ReferenceRange:         ref.Range,
		ReferenceWidthMM:       ref.WidthMM,
		MinReferenceAreaPixels: ref.MinAreaPixels,
		HistoryDepth:           stabilize.DefaultDepth,
		SampleWindowMS:         2000,
		SamplePeriodMS:         100,
		CaptureDir:             "captures",
		CSVPath:                "growth_log.csv",
	}
}

// Load reads a config file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects impossible values and clamps soft ones to safe ranges.
// A non-positive reference width cannot yield a ratio and is an error; the
// rest fall back to defaults.
func (c *Config) Validate() error {
	if c.ReferenceWidthMM <= 0 {
		return fmt.Errorf("reference width must be positive, got %v mm", c.ReferenceWidthMM)
	}
	if err := validRange("plant_range_1", c.PlantRange1); err != nil {
		return err
	}
	if !c.PlantRange2.Zero() {
		if err := validRange("plant_range_2", c.PlantRange2); err != nil {
			return err
		}
	}
	if err := validRange("reference_range", c.ReferenceRange); err != nil {
		return err
	}

	if c.MorphIterations <= 0 {
		c.MorphIterations = 3
	}
	if c.MinLeafAreaPixels <= 0 {
		c.MinLeafAreaPixels = 100
	}
	if c.MinReferenceAreaPixels <= 0 {
		c.MinReferenceAreaPixels = 200
	}
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = stabilize.DefaultDepth
	}
	if c.SampleWindowMS <= 0 {
		c.SampleWindowMS = 2000
	}
	if c.SamplePeriodMS <= 0 {
		c.SamplePeriodMS = 100
	}
	return nil
}

func validRange(name string, r segment.HSVRange) error {
	if r.HueMin < 0 || r.HueMax > 180 || r.HueMin > r.HueMax {
		return fmt.Errorf("%s: hue bounds [%v, %v] outside 0-180", name, r.HueMin, r.HueMax)
	}
	if r.SatMin > r.SatMax || r.ValMin > r.ValMax || r.SatMax > 255 || r.ValMax > 255 {
		return fmt.Errorf("%s: saturation/value bounds invalid", name)
	}
	return nil
}

// SegmentParams returns the plant segmentation parameters.
func (c *Config) SegmentParams() segment.Params {
	return segment.Params{
		Range1:          c.PlantRange1,
		Range2:          c.PlantRange2,
		MorphIterations: c.MorphIterations,
		KernelSize:      3,
	}
}

// CalibParams returns the reference detection parameters.
func (c *Config) CalibParams() calib.Params {
	return calib.Params{
		Range:         c.ReferenceRange,
		WidthMM:       c.ReferenceWidthMM,
		MinAreaPixels: c.MinReferenceAreaPixels,
	}
}

// SampleWindow returns the best-frame window duration.
func (c *Config) SampleWindow() time.Duration {
	return time.Duration(c.SampleWindowMS) * time.Millisecond
}

// SamplePeriod returns the best-frame polling period.
func (c *Config) SamplePeriod() time.Duration {
	return time.Duration(c.SamplePeriodMS) * time.Millisecond
}
