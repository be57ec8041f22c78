package simrobot

import (
	"math"

	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/robot"
	"github.com/m-marini/wheelly/internal/units"
)

// Config is the simulator-only tuning the wire protocol has no room for:
// the obstacle layout, the initial pose, and the message/camera/stalemate
// cadences the physical robot's firmware would otherwise impose.
type Config struct {
	Spec              robot.Spec
	Obstacles         ObstacleMap
	InitialPose       geom.Point
	InitialDirDeg     int
	MessageInterval   int64
	CameraInterval    int64
	StalemateInterval int64
}

// Robot is a deterministic 2D physics stand-in for the physical robot: it
// satisfies robot.Source directly in-process, integrating pose and emitting
// the same Status snapshot the wire protocol would produce, with no line
// framing in between.
type Robot struct {
	cfg Config

	simTime int64
	pose    geom.Point
	dir     geom.Complex
	speed   float64 // signed pulses/s along dir

	targetDir   geom.Complex
	targetSpeed float64
	scanDirDeg  int

	collided        bool
	stalemateSince  int64
	stalemateActive bool

	lastCameraTime int64
	status         robot.Status
}

// NewRobot builds a Robot at cfg's initial pose, halted.
func NewRobot(cfg Config) *Robot {
	r := &Robot{
		cfg:     cfg,
		pose:    cfg.InitialPose,
		dir:     geom.FromDeg(float64(cfg.InitialDirDeg)),
		status:  robot.Status{Spec: cfg.Spec},
	}
	r.targetDir = r.dir
	return r
}

// Connect is a no-op: the simulator has no external connection to open.
func (r *Robot) Connect() error {
	return nil
}

// Configure is a no-op: cfg already fixed the simulator's tuning.
func (r *Robot) Configure() error {
	return nil
}

// Move sets the commanded heading and speed, in pulses/s, clamped to the
// spec's MaxPps.
func (r *Robot) Move(dirDeg int, speed float64) error {
	r.targetDir = geom.FromDeg(float64(dirDeg))
	maxPps := r.cfg.Spec.MaxPps
	if speed > maxPps {
		speed = maxPps
	} else if speed < -maxPps {
		speed = -maxPps
	}
	r.targetSpeed = speed
	return nil
}

// Scan points the range sensor at dirDeg relative to the robot's heading.
func (r *Robot) Scan(dirDeg int) error {
	r.scanDirDeg = dirDeg
	return nil
}

// Halt commands zero speed, holding the current heading.
func (r *Robot) Halt() error {
	r.targetDir = r.dir
	r.targetSpeed = 0
	return nil
}

// Tick advances the physics model by dtMillis and returns the refreshed
// Status: ramp heading and speed toward their commanded targets, integrate
// pose, detect collisions against cfg.Obstacles, watch for a stalemate
// (commanded to move but pinned by a collision), and recompute the range
// echo and any camera detection.
func (r *Robot) Tick(dtMillis int64) (robot.Status, error) {
	spec := r.cfg.Spec
	dtSec := float64(dtMillis) / 1000
	r.simTime += dtMillis

	r.dir = approachAngular(r.dir, r.targetDir, spec.MaxAngularVelocity*dtSec)
	r.speed = approachLinear(r.speed, r.targetSpeed, spec.Acceleration*dtSec)

	speedMps := r.speed * spec.DistancePerPulse
	candidate := integratePosition(r.pose, r.dir, speedMps, dtSec)

	r.collided = false
	if dist, _, ok := r.cfg.Obstacles.Nearest(candidate, geom.DEG0, math.Pi); ok && dist <= spec.RobotRadius {
		r.collided = true
		r.speed = 0
	} else {
		r.pose = candidate
	}

	r.updateStalemate(dtMillis)

	r.status.SimTime = r.simTime
	r.status.Motion = robot.MotionMessage{
		SimTime:    r.simTime,
		XPulses:    units.MetersToPulses(r.pose.X, spec.DistancePerPulse),
		YPulses:    units.MetersToPulses(r.pose.Y, spec.DistancePerPulse),
		DirDeg:     r.dir.ToIntDeg(),
		LeftSpeed:  r.speed,
		RightSpeed: r.speed,
		CanMove:    !r.collided,
		LeftTarget: r.targetSpeed,
		RightTarget: r.targetSpeed,
	}
	// A stalemate is only active while the robot is still in collision, so
	// it adds no contact on a collision-free tick; what it changes is the
	// side. A collision zeroes r.speed, so once the robot has been pinned
	// long enough for the watchdog to fire, the commanded direction
	// (targetSpeed) decides whether the contact is Front or Rear.
	stalemate := r.Stalemate()
	r.status.Contacts = robot.ContactsMessage{
		SimTime:     r.simTime,
		Front:       (r.collided && r.speed >= 0) || (stalemate && r.targetSpeed >= 0),
		Rear:        (r.collided && r.speed < 0) || (stalemate && r.targetSpeed < 0),
		CanForward:  !(r.collided && r.targetSpeed >= 0),
		CanBackward: !(r.collided && r.targetSpeed < 0),
	}
	r.status.Proxy = r.scanEcho()
	if r.simTime-r.lastCameraTime >= r.cfg.CameraInterval {
		r.lastCameraTime = r.simTime
		if cam, ok := r.cameraEvent(); ok {
			r.status.Camera = cam
		}
	}
	return r.status, nil
}

// updateStalemate raises a contact once the robot has been commanded to
// move but pinned in collision for cfg.StalemateInterval, the watchdog the
// controller relies on to stop retrying a command that can never succeed.
func (r *Robot) updateStalemate(dtMillis int64) {
	if r.collided && r.targetSpeed != 0 {
		if !r.stalemateActive {
			r.stalemateActive = true
			r.stalemateSince = r.simTime
		}
		return
	}
	r.stalemateActive = false
}

// Stalemate reports whether the robot has been pinned against an obstacle,
// still commanded to move, for at least cfg.StalemateInterval.
func (r *Robot) Stalemate() bool {
	return r.stalemateActive && r.simTime-r.stalemateSince >= r.cfg.StalemateInterval
}

// scanEcho raycasts from the sensor's current pose along the commanded
// scan direction (relative to the robot's heading) and reports the nearest
// obstacle surface within spec.MaxDistance, or no echo beyond it.
func (r *Robot) scanEcho() robot.ProxyMessage {
	spec := r.cfg.Spec
	sensorDir := r.dir.Add(geom.FromDeg(float64(r.scanDirDeg)))
	p := robot.ProxyMessage{
		SimTime:      r.simTime,
		SensorDirDeg: sensorDir.ToIntDeg(),
		XPulses:      units.MetersToPulses(r.pose.X, spec.DistancePerPulse),
		YPulses:      units.MetersToPulses(r.pose.Y, spec.DistancePerPulse),
		DirDeg:       r.dir.ToIntDeg(),
	}
	dist, _, ok := r.cfg.Obstacles.Nearest(r.pose, sensorDir, spec.ReceptiveAngle)
	if !ok || dist > spec.MaxDistance {
		return p
	}
	p.EchoDelayUs = units.DistanceToEchoDelayUs(dist, 1)
	return p
}

// cameraEvent reports the nearest obstacle within the robot's forward
// receptive angle as a label/offset pair, mirroring what the physical
// camera's marker detector would publish.
func (r *Robot) cameraEvent() (robot.CameraMessage, bool) {
	dist, label, ok := r.cfg.Obstacles.Nearest(r.pose, r.dir, r.cfg.Spec.ReceptiveAngle)
	if !ok || dist > r.cfg.Spec.MaxDistance {
		return robot.CameraMessage{}, false
	}
	return robot.CameraMessage{
		SimTime: r.simTime,
		Label:   label,
		Dx:      dist * r.dir.X,
		Dy:      dist * r.dir.Y,
	}, true
}

// Close is a no-op: the simulator owns no external resource.
func (r *Robot) Close() error {
	return nil
}
