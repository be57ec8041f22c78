package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsFile(t *testing.T) {
	cfg := MustLoadDefaultTuning()

	if cfg.DistancePerPulse == nil || *cfg.DistancePerPulse <= 0 {
		t.Fatalf("DistancePerPulse must be set and positive, got %v", cfg.DistancePerPulse)
	}
	if cfg.GridSize == nil || *cfg.GridSize <= 0 {
		t.Fatalf("GridSize must be set and positive, got %v", cfg.GridSize)
	}
	if cfg.TickInterval == nil || *cfg.TickInterval == "" {
		t.Fatalf("TickInterval must be set, got %v", cfg.TickInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must pass Validate(): %v", err)
	}

	spec := cfg.RobotSpec()
	if spec.GridWidth != 51 || spec.GridHeight != 51 {
		t.Errorf("unexpected grid dimensions from defaults: %dx%d", spec.GridWidth, spec.GridHeight)
	}

	cc := cfg.ControllerConfig()
	if cc.TickInterval != 100*time.Millisecond {
		t.Errorf("TickInterval = %v, want 100ms", cc.TickInterval)
	}
	if cc.WatchdogInterval != 3*time.Second {
		t.Errorf("WatchdogInterval = %v, want 3s", cc.WatchdogInterval)
	}
}

func TestEmptyTuningConfigFallsBackToDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.DistancePerPulse != nil {
		t.Error("expected DistancePerPulse to be nil")
	}

	spec := cfg.RobotSpec()
	if spec.MaxPps != 60 {
		t.Errorf("MaxPps = %v, want the documented default 60", spec.MaxPps)
	}
	cc := cfg.ControllerConfig()
	if cc.CommandInterval != 600*time.Millisecond {
		t.Errorf("CommandInterval = %v, want 600ms", cc.CommandInterval)
	}
}

func TestLoadTuningConfigPartialOverridesOnlyListedFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	partialJSON := `{
  "max_pps": 90,
  "watchdog_interval": "5s"
}`
	if err := os.WriteFile(configPath, []byte(partialJSON), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	spec := cfg.RobotSpec()
	if spec.MaxPps != 90 {
		t.Errorf("MaxPps = %v, want 90", spec.MaxPps)
	}
	if spec.GridSize != 0.2 {
		t.Errorf("GridSize = %v, want the default 0.2 (untouched by the partial file)", spec.GridSize)
	}

	cc := cfg.ControllerConfig()
	if cc.WatchdogInterval != 5*time.Second {
		t.Errorf("WatchdogInterval = %v, want 5s", cc.WatchdogInterval)
	}
	if cc.TickInterval != 100*time.Millisecond {
		t.Errorf("TickInterval = %v, want the default 100ms", cc.TickInterval)
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	if _, err := LoadTuningConfig("/nonexistent/path/to/config.json"); err == nil {
		t.Error("expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")

	if err := os.WriteFile(configPath, []byte(`{"max_pps": `), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadTuningConfig(configPath); err == nil {
		t.Error("expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{name: "empty config is valid", cfg: &TuningConfig{}, wantErr: false},
		{name: "defaults file is valid", cfg: MustLoadDefaultTuning(), wantErr: false},
		{
			name:    "negative distance_per_pulse",
			cfg:     &TuningConfig{DistancePerPulse: ptrFloat64(-1)},
			wantErr: true,
		},
		{
			name:    "non-positive grid_size",
			cfg:     &TuningConfig{GridSize: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "sensor_min_deg past sensor_max_deg",
			cfg:     &TuningConfig{SensorMinDeg: ptrInt(10), SensorMaxDeg: ptrInt(-10)},
			wantErr: true,
		},
		{
			name:    "invalid duration",
			cfg:     &TuningConfig{TickInterval: ptrString("not-a-duration")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	if _, err := LoadTuningConfig("/some/path/config.yaml"); err == nil {
		t.Error("expected error for non-.json extension, got nil")
	}
}

func TestLoadTuningConfigRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	largeData := make([]byte, 2*1024*1024)
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("failed to write large file: %v", err)
	}

	if _, err := LoadTuningConfig(configPath); err == nil {
		t.Error("expected error for file size > 1MB, got nil")
	}
}

func TestLoadExampleConfigFile(t *testing.T) {
	cfg, err := LoadTuningConfig("../../config/tuning.example.json")
	if err != nil {
		t.Fatalf("failed to load example: %v", err)
	}
	spec := cfg.RobotSpec()
	if spec.MaxPps != 80 {
		t.Errorf("MaxPps = %v, want 80", spec.MaxPps)
	}
	if spec.RobotRadius != 0.18 {
		t.Errorf("RobotRadius = %v, want 0.18", spec.RobotRadius)
	}
}
