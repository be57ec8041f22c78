package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/m-marini/wheelly/internal/controller"
	"github.com/m-marini/wheelly/internal/robot"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the JSON-serializable tunable set for a Wheelly
// deployment: the robot's physical/decay constants plus the controller's
// timing knobs, all optional so a deployment file only needs to override
// what differs from the defaults.
type TuningConfig struct {
	// RobotSpec params
	DistancePerPulse    *float64 `json:"distance_per_pulse,omitempty"`
	MaxPps              *float64 `json:"max_pps,omitempty"`
	Acceleration        *float64 `json:"acceleration,omitempty"`
	MaxAngularVelocity  *float64 `json:"max_angular_velocity,omitempty"`
	ReceptiveAngle      *float64 `json:"receptive_angle,omitempty"`
	MaxDistance         *float64 `json:"max_distance,omitempty"`
	DecayTau            *float64 `json:"decay_tau,omitempty"`
	CleanIntervalMillis *int64   `json:"clean_interval_millis,omitempty"`
	EchoPersistenceMillis    *int64 `json:"echo_persistence_millis,omitempty"`
	ContactPersistenceMillis *int64 `json:"contact_persistence_millis,omitempty"`
	CorrelationIntervalMillis *int64 `json:"correlation_interval_millis,omitempty"`
	MarkerSize          *float64 `json:"marker_size,omitempty"`
	MarkerSmoothingTau  *float64 `json:"marker_smoothing_tau,omitempty"`
	SensorMinDeg        *int     `json:"sensor_min_deg,omitempty"`
	SensorMaxDeg        *int     `json:"sensor_max_deg,omitempty"`
	GridSize            *float64 `json:"grid_size,omitempty"`
	GridWidth           *int     `json:"grid_width,omitempty"`
	GridHeight          *int     `json:"grid_height,omitempty"`
	RobotRadius         *float64 `json:"robot_radius,omitempty"`

	// Controller timing params (duration strings, like "500ms")
	TickInterval            *string `json:"tick_interval,omitempty"`
	CommandInterval         *string `json:"command_interval,omitempty"`
	WatchdogInterval        *string `json:"watchdog_interval,omitempty"`
	ConnectionRetryInterval *string `json:"connection_retry_interval,omitempty"`
	ReactionInterval        *string `json:"reaction_interval,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields unset. Use
// LoadTuningConfig/MustLoadDefaultTuning to load actual values.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to have a .json extension and be under the max file size.
// Fields omitted from the JSON retain their default values, so partial
// configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultTuning loads the canonical tuning defaults from
// DefaultConfigPath, searching from the current directory up through
// common parent directories. Panics if the file cannot be loaded,
// intended for test setup and package-level defaults.
func MustLoadDefaultTuning() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
		"../../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that set fields hold sane values.
func (c *TuningConfig) Validate() error {
	if c.DistancePerPulse != nil && *c.DistancePerPulse <= 0 {
		return fmt.Errorf("distance_per_pulse must be positive, got %f", *c.DistancePerPulse)
	}
	if c.GridSize != nil && *c.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %f", *c.GridSize)
	}
	if c.SensorMinDeg != nil && c.SensorMaxDeg != nil && *c.SensorMinDeg > *c.SensorMaxDeg {
		return fmt.Errorf("sensor_min_deg (%d) must not exceed sensor_max_deg (%d)", *c.SensorMinDeg, *c.SensorMaxDeg)
	}
	for _, d := range []*string{c.TickInterval, c.CommandInterval, c.WatchdogInterval, c.ConnectionRetryInterval, c.ReactionInterval} {
		if d != nil && *d != "" {
			if _, err := time.ParseDuration(*d); err != nil {
				return fmt.Errorf("invalid duration %q: %w", *d, err)
			}
		}
	}
	return nil
}

// RobotSpec projects the tuning document into a robot.Spec, filling every
// unset field with its documented default.
func (c *TuningConfig) RobotSpec() robot.Spec {
	return robot.Spec{
		DistancePerPulse:    getFloat64(c.DistancePerPulse, 0.000639),
		MaxPps:              getFloat64(c.MaxPps, 60),
		Acceleration:        getFloat64(c.Acceleration, 1),
		MaxAngularVelocity:  getFloat64(c.MaxAngularVelocity, 5),
		ReceptiveAngle:      getFloat64(c.ReceptiveAngle, 15),
		MaxDistance:         getFloat64(c.MaxDistance, 3),
		DecayTau:            getFloat64(c.DecayTau, 30000),
		CleanInterval:       getInt64(c.CleanIntervalMillis, 30000),
		EchoPersistence:     getInt64(c.EchoPersistenceMillis, 300000),
		ContactPersistence:  getInt64(c.ContactPersistenceMillis, 300000),
		CorrelationInterval: getInt64(c.CorrelationIntervalMillis, 1000),
		MarkerSize:          getFloat64(c.MarkerSize, 0.3),
		MarkerSmoothingTau:  getFloat64(c.MarkerSmoothingTau, 2000),
		SensorMinDeg:        getInt(c.SensorMinDeg, -90),
		SensorMaxDeg:        getInt(c.SensorMaxDeg, 90),
		GridSize:            getFloat64(c.GridSize, 0.2),
		GridWidth:           getInt(c.GridWidth, 51),
		GridHeight:          getInt(c.GridHeight, 51),
		RobotRadius:         getFloat64(c.RobotRadius, 0.15),
	}
}

// ControllerConfig projects the tuning document into a controller.Config,
// filling every unset field with its documented default.
func (c *TuningConfig) ControllerConfig() controller.Config {
	return controller.Config{
		TickInterval:            getDuration(c.TickInterval, "100ms"),
		CommandInterval:         getDuration(c.CommandInterval, "600ms"),
		WatchdogInterval:        getDuration(c.WatchdogInterval, "3s"),
		ConnectionRetryInterval: getDuration(c.ConnectionRetryInterval, "2s"),
		ReactionInterval:        getDuration(c.ReactionInterval, "300ms"),
	}
}

func getFloat64(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func getInt64(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}

func getDuration(p *string, def string) time.Duration {
	s := def
	if p != nil && *p != "" {
		s = *p
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
