package robot

import (
	"fmt"
	"strconv"
	"strings"
)

// Transport is the line-oriented connection PhysicalSource drives: Read
// blocks for the next status line, Write sends one command line, Close
// releases the underlying connection. internal/robot/transport_serial.go
// implements this over go.bug.st/serial for the physical robot;
// internal/simrobot does not use a Transport and implements Source
// directly in-process instead.
type Transport interface {
	Read() (line string, err error)
	Write(cmd string) error
	Close() error
}

// EncodeMove renders a move command: "mv <deg> <speed>".
func EncodeMove(dirDeg int, speed float64) string {
	return fmt.Sprintf("mv %d %g\n", dirDeg, speed)
}

// EncodeScan renders a scan command: "sc <deg>".
func EncodeScan(dirDeg int) string {
	return fmt.Sprintf("sc %d\n", dirDeg)
}

// EncodeHalt renders the halt command: "ha".
func EncodeHalt() string {
	return "ha\n"
}

// ParseLine dispatches a status line to the matching message type by its
// first space-delimited token, mirroring the allow-list-and-dispatch shape
// of the original command table but keyed on the wire's status tags
// instead of a fixed command set. Unrecognised or malformed lines produce
// a *ProtocolError rather than a panic.
func ParseLine(line string) (any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, &ProtocolError{Line: line, Err: fmt.Errorf("empty line")}
	}
	switch fields[0] {
	case "mt":
		return parseMotion(fields[1:], line)
	case "px":
		return parseProxy(fields[1:], line)
	case "ld":
		return parseLidar(fields[1:], line)
	case "ct":
		return parseContacts(fields[1:], line)
	case "sv":
		return parseSupply(fields[1:], line)
	case "cm":
		return parseCamera(fields[1:], line)
	default:
		return nil, &ProtocolError{Line: line, Err: fmt.Errorf("unknown status tag %q", fields[0])}
	}
}

func parseMotion(f []string, line string) (MotionMessage, error) {
	if len(f) < 11 {
		return MotionMessage{}, &ProtocolError{Line: line, Err: fmt.Errorf("motion: want 11 fields, got %d", len(f))}
	}
	var m MotionMessage
	var err error
	if m.SimTime, err = parseInt64(f[0]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if m.XPulses, err = parseFloat(f[1]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if m.YPulses, err = parseFloat(f[2]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if m.DirDeg, err = parseInt(f[3]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if m.LeftSpeed, err = parseFloat(f[4]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if m.RightSpeed, err = parseFloat(f[5]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if m.Imu, err = parseInt(f[6]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	m.CanMove = f[7] == "1"
	if m.LeftPower, err = parseInt(f[8]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if m.RightPower, err = parseInt(f[9]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if m.LeftTarget, err = parseFloat(f[10]); err != nil {
		return MotionMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if len(f) > 11 {
		if m.RightTarget, err = parseFloat(f[11]); err != nil {
			return MotionMessage{}, &ProtocolError{Line: line, Err: err}
		}
	}
	return m, nil
}

func parseProxy(f []string, line string) (ProxyMessage, error) {
	if len(f) < 6 {
		return ProxyMessage{}, &ProtocolError{Line: line, Err: fmt.Errorf("proxy: want 6 fields, got %d", len(f))}
	}
	var p ProxyMessage
	var err error
	if p.SimTime, err = parseInt64(f[0]); err != nil {
		return ProxyMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if p.SensorDirDeg, err = parseInt(f[1]); err != nil {
		return ProxyMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if p.EchoDelayUs, err = parseInt64(f[2]); err != nil {
		return ProxyMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if p.XPulses, err = parseFloat(f[3]); err != nil {
		return ProxyMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if p.YPulses, err = parseFloat(f[4]); err != nil {
		return ProxyMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if p.DirDeg, err = parseInt(f[5]); err != nil {
		return ProxyMessage{}, &ProtocolError{Line: line, Err: err}
	}
	return p, nil
}

func parseLidar(f []string, line string) (LidarMessage, error) {
	if len(f) < 6 {
		return LidarMessage{}, &ProtocolError{Line: line, Err: fmt.Errorf("lidar: want 6 fields, got %d", len(f))}
	}
	var l LidarMessage
	var err error
	if l.SimTime, err = parseInt64(f[0]); err != nil {
		return LidarMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if l.FrontDistMm, err = parseFloat(f[1]); err != nil {
		return LidarMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if l.RearDistMm, err = parseFloat(f[2]); err != nil {
		return LidarMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if l.XPulses, err = parseFloat(f[3]); err != nil {
		return LidarMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if l.YPulses, err = parseFloat(f[4]); err != nil {
		return LidarMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if l.YawDeg, err = parseInt(f[5]); err != nil {
		return LidarMessage{}, &ProtocolError{Line: line, Err: err}
	}
	if len(f) > 6 {
		if l.HeadDeg, err = parseInt(f[6]); err != nil {
			return LidarMessage{}, &ProtocolError{Line: line, Err: err}
		}
	}
	return l, nil
}

func parseContacts(f []string, line string) (ContactsMessage, error) {
	if len(f) < 5 {
		return ContactsMessage{}, &ProtocolError{Line: line, Err: fmt.Errorf("contacts: want 5 fields, got %d", len(f))}
	}
	simTime, err := parseInt64(f[0])
	if err != nil {
		return ContactsMessage{}, &ProtocolError{Line: line, Err: err}
	}
	return ContactsMessage{
		SimTime:     simTime,
		Front:       f[1] == "1",
		Rear:        f[2] == "1",
		CanForward:  f[3] == "1",
		CanBackward: f[4] == "1",
	}, nil
}

func parseSupply(f []string, line string) (SupplyMessage, error) {
	if len(f) < 2 {
		return SupplyMessage{}, &ProtocolError{Line: line, Err: fmt.Errorf("supply: want 2 fields, got %d", len(f))}
	}
	simTime, err := parseInt64(f[0])
	if err != nil {
		return SupplyMessage{}, &ProtocolError{Line: line, Err: err}
	}
	voltage, err := parseFloat(f[1])
	if err != nil {
		return SupplyMessage{}, &ProtocolError{Line: line, Err: err}
	}
	return SupplyMessage{SimTime: simTime, Voltage: voltage}, nil
}

func parseCamera(f []string, line string) (CameraMessage, error) {
	if len(f) < 4 {
		return CameraMessage{}, &ProtocolError{Line: line, Err: fmt.Errorf("camera: want 4 fields, got %d", len(f))}
	}
	simTime, err := parseInt64(f[0])
	if err != nil {
		return CameraMessage{}, &ProtocolError{Line: line, Err: err}
	}
	dx, err := parseFloat(f[2])
	if err != nil {
		return CameraMessage{}, &ProtocolError{Line: line, Err: err}
	}
	dy, err := parseFloat(f[3])
	if err != nil {
		return CameraMessage{}, &ProtocolError{Line: line, Err: err}
	}
	return CameraMessage{SimTime: simTime, Label: f[1], Dx: dx, Dy: dy}, nil
}

func parseInt64(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse int64 %q: %w", s, err)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse int %q: %w", s, err)
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse float %q: %w", s, err)
	}
	return v, nil
}
