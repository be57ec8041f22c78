package robot

import "errors"

// PhysicalSource drives a physical robot over a Transport, parsing status
// lines into typed messages and folding them into a running Status
// snapshot.
type PhysicalSource struct {
	transport Transport
	spec      Spec
	status    Status
}

// NewPhysicalSource wraps transport as a Source using spec's tuning
// constants for fields the wire protocol doesn't carry.
func NewPhysicalSource(transport Transport, spec Spec) *PhysicalSource {
	return &PhysicalSource{transport: transport, spec: spec, status: Status{Spec: spec}}
}

// Connect is a no-op: the transport is already dialed by the caller.
func (s *PhysicalSource) Connect() error {
	return nil
}

// Configure sends no commands of its own; the physical robot configures
// itself at power-on.
func (s *PhysicalSource) Configure() error {
	return nil
}

// Move issues a move command.
func (s *PhysicalSource) Move(dirDeg int, speed float64) error {
	return s.transport.Write(EncodeMove(dirDeg, speed))
}

// Scan issues a scan command.
func (s *PhysicalSource) Scan(dirDeg int) error {
	return s.transport.Write(EncodeScan(dirDeg))
}

// Halt issues a halt command.
func (s *PhysicalSource) Halt() error {
	return s.transport.Write(EncodeHalt())
}

// Tick reads and folds in the next status line. dtMillis is unused: the
// physical robot's wall clock paces itself; the controller only calls Tick
// often enough to keep up with the incoming stream.
func (s *PhysicalSource) Tick(dtMillis int64) (Status, error) {
	line, err := s.transport.Read()
	if err != nil {
		return Status{}, err
	}
	msg, err := ParseLine(line)
	if err != nil {
		var protoErr *ProtocolError
		if errors.As(err, &protoErr) {
			return s.status, nil
		}
		return Status{}, err
	}
	switch m := msg.(type) {
	case MotionMessage:
		s.status.Motion = m
		s.status.SimTime = m.SimTime
	case ProxyMessage:
		s.status.Proxy = m
	case ContactsMessage:
		s.status.Contacts = m
	case SupplyMessage:
		s.status.Supply = m
	case CameraMessage:
		s.status.Camera = m
	}
	return s.status, nil
}

// Close closes the underlying transport.
func (s *PhysicalSource) Close() error {
	return s.transport.Close()
}
