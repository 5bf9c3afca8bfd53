package config

import (
	"path/filepath"
	"strings"
	"testing"

	"plant-monitor/internal/segment"
)

func TestValidate_RejectsNonPositiveReferenceWidth(t *testing.T) {
	cfg := Default()
	cfg.ReferenceWidthMM = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero reference width accepted")
	}
}

func TestValidate_RejectsBadHueBounds(t *testing.T) {
	cfg := Default()
	cfg.PlantRange1.HueMax = 200
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "plant_range_1") {
		t.Errorf("err = %v, want plant_range_1 hue error", err)
	}
}

func TestValidate_ClampsSoftValues(t *testing.T) {
	cfg := Default()
	cfg.MorphIterations = -1
	cfg.HistoryDepth = 0
	cfg.SampleWindowMS = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.MorphIterations != 3 || cfg.HistoryDepth != 30 || cfg.SampleWindowMS != 2000 {
		t.Errorf("soft values not clamped: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantmon.json")

	cfg := Default()
	cfg.ReferenceWidthMM = 25
	cfg.PlantRange2.HueMax = 175
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ReferenceWidthMM != 25 {
		t.Errorf("reference width = %v, want 25", loaded.ReferenceWidthMM)
	}
	if loaded.PlantRange2.HueMax != 175 {
		t.Errorf("plant range 2 hue max = %v, want 175", loaded.PlantRange2.HueMax)
	}
}

func TestLoad_DisabledSecondRangePasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantmon.json")

	cfg := Default()
	cfg.PlantRange2 = segment.HSVRange{}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("all-zero second range rejected: %v", err)
	}
}
