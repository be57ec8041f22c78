package robot

import "github.com/m-marini/wheelly/internal/geom"

// MotionMessage reports the robot's pose and drive state.
type MotionMessage struct {
	SimTime    int64
	XPulses    float64
	YPulses    float64
	DirDeg     int
	LeftSpeed  float64
	RightSpeed float64
	Imu        int
	CanMove    bool
	LeftPower  int
	RightPower int
	LeftTarget float64
	RightTarget float64
}

// ProxyMessage reports a single directional range-sensor reading.
type ProxyMessage struct {
	SimTime      int64
	SensorDirDeg int
	EchoDelayUs  int64
	XPulses      float64
	YPulses      float64
	DirDeg       int
}

// LidarMessage is the newer front/rear distance variant of the range
// sensor reading.
type LidarMessage struct {
	SimTime      int64
	FrontDistMm  float64
	RearDistMm   float64
	XPulses      float64
	YPulses      float64
	YawDeg       int
	HeadDeg      int
}

// ContactsMessage reports the contact-sensor bumpers and whether the
// robot is still free to move in each direction.
type ContactsMessage struct {
	SimTime     int64
	Front       bool
	Rear        bool
	CanForward  bool
	CanBackward bool
}

// SupplyMessage reports the battery/supply voltage sensor.
type SupplyMessage struct {
	SimTime int64
	Voltage float64
}

// CameraMessage reports a single camera detection.
type CameraMessage struct {
	SimTime int64
	Label   string
	Dx      float64
	Dy      float64
}

// Status is a snapshot of the latest message of each kind plus the robot
// spec and simulation time, as described in spec.md's RobotStatus record.
type Status struct {
	SimTime  int64
	Spec     Spec
	Motion   MotionMessage
	Proxy    ProxyMessage
	Contacts ContactsMessage
	Supply   SupplyMessage
	Camera   CameraMessage
}

// SensorLocation returns the world-space position implied by Motion's
// pulse counters, via the given distance-per-pulse scale.
func (m MotionMessage) SensorLocation(distancePerPulse float64) geom.Point {
	return geom.Point{X: m.XPulses * distancePerPulse, Y: m.YPulses * distancePerPulse}
}

// Direction returns the robot's heading as a Complex.
func (m MotionMessage) Direction() geom.Complex {
	return geom.FromDeg(float64(m.DirDeg))
}
