// Package robot defines the wire-level vocabulary shared by the physical
// and simulated robot: the read-only Spec parameter record, the
// tagged status message variants, the line protocol parser/encoder, and
// the Transport interface the controller drives.
package robot

// Spec is the read-only set of physical/tuning constants the controller
// and modellers need. It is always built explicitly (never a package
// global) so tests can supply their own.
type Spec struct {
	DistancePerPulse    float64
	MaxPps              float64
	Acceleration        float64
	MaxAngularVelocity  float64
	ReceptiveAngle      float64
	MaxDistance         float64
	DecayTau            float64
	CleanInterval       int64
	EchoPersistence     int64
	ContactPersistence  int64
	CorrelationInterval int64
	MarkerSize          float64
	MarkerSmoothingTau  float64
	SensorMinDeg        int
	SensorMaxDeg        int
	GridSize            float64
	GridWidth           int
	GridHeight          int
	RobotRadius         float64
}
