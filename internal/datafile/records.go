package datafile

import (
	"fmt"
	"sort"

	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/gridmap"
	"github.com/m-marini/wheelly/internal/marker"
	"github.com/m-marini/wheelly/internal/robot"
)

// This file encodes/decodes the higher-level core records field-by-field
// using the primitive codec in codec.go, one write/read pair per wire
// record with a fixed field order, mirroring the teacher's
// visualiser.frame_codec one-record-per-function convention.

// EncodeCell writes everything but Location: the caller already knows
// where each cell sits from the enclosing Topology.
func EncodeCell(w *Writer, c gridmap.Cell) {
	w.WriteLong(c.EchoTime)
	w.WriteDouble(c.EchoWeight)
	w.WriteLong(c.ContactTime)
	w.WriteLong(c.LabeledTime)
	w.WriteDouble(c.LabeledWeight)
}

// DecodeCell reads a Cell's evidence fields, placing it at location.
func DecodeCell(r *Reader, location geom.Point) (gridmap.Cell, error) {
	echoTime, err := r.ReadLong()
	if err != nil {
		return gridmap.Cell{}, err
	}
	echoWeight, err := r.ReadDouble()
	if err != nil {
		return gridmap.Cell{}, err
	}
	contactTime, err := r.ReadLong()
	if err != nil {
		return gridmap.Cell{}, err
	}
	labeledTime, err := r.ReadLong()
	if err != nil {
		return gridmap.Cell{}, err
	}
	labeledWeight, err := r.ReadDouble()
	if err != nil {
		return gridmap.Cell{}, err
	}
	return gridmap.Cell{
		Location:      location,
		EchoTime:      echoTime,
		EchoWeight:    echoWeight,
		ContactTime:   contactTime,
		LabeledTime:   labeledTime,
		LabeledWeight: labeledWeight,
	}, nil
}

// EncodeRadarMap writes the topology (from which Vertices/VerticesByCells
// are always rebuilt, never persisted) followed by every cell's evidence.
func EncodeRadarMap(w *Writer, m gridmap.RadarMap) {
	w.WriteDouble(m.Topology.Origin.X)
	w.WriteDouble(m.Topology.Origin.Y)
	w.WriteInt(int32(m.Topology.Width))
	w.WriteInt(int32(m.Topology.Height))
	w.WriteDouble(m.Topology.GridSize)
	w.WriteLong(m.CleanTimestamp)
	w.WriteInt(int32(len(m.Cells)))
	for _, c := range m.Cells {
		EncodeCell(w, c)
	}
}

// DecodeRadarMap reads back a RadarMap written by EncodeRadarMap.
func DecodeRadarMap(r *Reader) (gridmap.RadarMap, error) {
	ox, err := r.ReadDouble()
	if err != nil {
		return gridmap.RadarMap{}, err
	}
	oy, err := r.ReadDouble()
	if err != nil {
		return gridmap.RadarMap{}, err
	}
	width, err := r.ReadInt()
	if err != nil {
		return gridmap.RadarMap{}, err
	}
	height, err := r.ReadInt()
	if err != nil {
		return gridmap.RadarMap{}, err
	}
	gridSize, err := r.ReadDouble()
	if err != nil {
		return gridmap.RadarMap{}, err
	}
	cleanTimestamp, err := r.ReadLong()
	if err != nil {
		return gridmap.RadarMap{}, err
	}
	n, err := r.ReadInt()
	if err != nil {
		return gridmap.RadarMap{}, err
	}

	topo := gridmap.NewTopology(geom.Point{X: ox, Y: oy}, int(width), int(height), gridSize)
	m := gridmap.NewRadarMap(topo)
	if int(n) != len(m.Cells) {
		return gridmap.RadarMap{}, fmt.Errorf("datafile: radar map cell count mismatch: got %d, want %d", n, len(m.Cells))
	}
	cells := make([]gridmap.Cell, n)
	for i := range cells {
		c, err := DecodeCell(r, m.Cells[i].Location)
		if err != nil {
			return gridmap.RadarMap{}, err
		}
		cells[i] = c
	}
	m.Cells = cells
	m.CleanTimestamp = cleanTimestamp
	return m, nil
}

// EncodeLabelMarker writes a single fused marker record.
func EncodeLabelMarker(w *Writer, m marker.LabelMarker) {
	w.WriteString(m.Label)
	w.WriteDouble(m.Location.X)
	w.WriteDouble(m.Location.Y)
	w.WriteDouble(m.Weight)
	w.WriteLong(m.MarkerTime)
	w.WriteLong(m.CleanTime)
}

// DecodeLabelMarker reads back a LabelMarker written by EncodeLabelMarker.
func DecodeLabelMarker(r *Reader) (marker.LabelMarker, error) {
	label, err := r.ReadString()
	if err != nil {
		return marker.LabelMarker{}, err
	}
	x, err := r.ReadDouble()
	if err != nil {
		return marker.LabelMarker{}, err
	}
	y, err := r.ReadDouble()
	if err != nil {
		return marker.LabelMarker{}, err
	}
	weight, err := r.ReadDouble()
	if err != nil {
		return marker.LabelMarker{}, err
	}
	markerTime, err := r.ReadLong()
	if err != nil {
		return marker.LabelMarker{}, err
	}
	cleanTime, err := r.ReadLong()
	if err != nil {
		return marker.LabelMarker{}, err
	}
	return marker.LabelMarker{
		Label:      label,
		Location:   geom.Point{X: x, Y: y},
		Weight:     weight,
		MarkerTime: markerTime,
		CleanTime:  cleanTime,
	}, nil
}

// EncodeMarkers writes the marker set in label-sorted order, so the byte
// stream (and therefore the round-trip comparison) is deterministic despite
// the map's unspecified iteration order.
func EncodeMarkers(w *Writer, markers map[string]marker.LabelMarker) {
	labels := make([]string, 0, len(markers))
	for label := range markers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	w.WriteInt(int32(len(labels)))
	for _, label := range labels {
		EncodeLabelMarker(w, markers[label])
	}
}

// DecodeMarkers reads back a marker set written by EncodeMarkers.
func DecodeMarkers(r *Reader) (map[string]marker.LabelMarker, error) {
	n, err := r.ReadInt()
	if err != nil {
		return nil, err
	}
	result := make(map[string]marker.LabelMarker, n)
	for i := int32(0); i < n; i++ {
		m, err := DecodeLabelMarker(r)
		if err != nil {
			return nil, err
		}
		result[m.Label] = m
	}
	return result, nil
}

// EncodeCorrelatedCameraEvent writes a single fused camera/range event.
func EncodeCorrelatedCameraEvent(w *Writer, e marker.CorrelatedCameraEvent) {
	w.WriteLong(e.CameraTime)
	w.WriteLong(e.ProxyTime)
	w.WriteString(e.Label)
	w.WriteDouble(e.SensorLocation.X)
	w.WriteDouble(e.SensorLocation.Y)
	w.WriteDouble(e.SensorDirection.X)
	w.WriteDouble(e.SensorDirection.Y)
	w.WriteDouble(e.Distance)
}

// DecodeCorrelatedCameraEvent reads back an event written by
// EncodeCorrelatedCameraEvent.
func DecodeCorrelatedCameraEvent(r *Reader) (marker.CorrelatedCameraEvent, error) {
	cameraTime, err := r.ReadLong()
	if err != nil {
		return marker.CorrelatedCameraEvent{}, err
	}
	proxyTime, err := r.ReadLong()
	if err != nil {
		return marker.CorrelatedCameraEvent{}, err
	}
	label, err := r.ReadString()
	if err != nil {
		return marker.CorrelatedCameraEvent{}, err
	}
	slx, err := r.ReadDouble()
	if err != nil {
		return marker.CorrelatedCameraEvent{}, err
	}
	sly, err := r.ReadDouble()
	if err != nil {
		return marker.CorrelatedCameraEvent{}, err
	}
	sdx, err := r.ReadDouble()
	if err != nil {
		return marker.CorrelatedCameraEvent{}, err
	}
	sdy, err := r.ReadDouble()
	if err != nil {
		return marker.CorrelatedCameraEvent{}, err
	}
	distance, err := r.ReadDouble()
	if err != nil {
		return marker.CorrelatedCameraEvent{}, err
	}
	return marker.CorrelatedCameraEvent{
		CameraTime:      cameraTime,
		ProxyTime:       proxyTime,
		Label:           label,
		SensorLocation:  geom.Point{X: slx, Y: sly},
		SensorDirection: geom.Complex{X: sdx, Y: sdy},
		Distance:        distance,
	}, nil
}

// EncodeSpec writes a robot.Spec's tuning constants.
func EncodeSpec(w *Writer, s robot.Spec) {
	w.WriteDouble(s.DistancePerPulse)
	w.WriteDouble(s.MaxPps)
	w.WriteDouble(s.Acceleration)
	w.WriteDouble(s.MaxAngularVelocity)
	w.WriteDouble(s.ReceptiveAngle)
	w.WriteDouble(s.MaxDistance)
	w.WriteDouble(s.DecayTau)
	w.WriteLong(s.CleanInterval)
	w.WriteLong(s.EchoPersistence)
	w.WriteLong(s.ContactPersistence)
	w.WriteLong(s.CorrelationInterval)
	w.WriteDouble(s.MarkerSize)
	w.WriteDouble(s.MarkerSmoothingTau)
	w.WriteInt(int32(s.SensorMinDeg))
	w.WriteInt(int32(s.SensorMaxDeg))
	w.WriteDouble(s.GridSize)
	w.WriteInt(int32(s.GridWidth))
	w.WriteInt(int32(s.GridHeight))
	w.WriteDouble(s.RobotRadius)
}

// DecodeSpec reads back a robot.Spec written by EncodeSpec.
func DecodeSpec(r *Reader) (robot.Spec, error) {
	var s robot.Spec
	var err error
	if s.DistancePerPulse, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	if s.MaxPps, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	if s.Acceleration, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	if s.MaxAngularVelocity, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	if s.ReceptiveAngle, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	if s.MaxDistance, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	if s.DecayTau, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	if s.CleanInterval, err = r.ReadLong(); err != nil {
		return robot.Spec{}, err
	}
	if s.EchoPersistence, err = r.ReadLong(); err != nil {
		return robot.Spec{}, err
	}
	if s.ContactPersistence, err = r.ReadLong(); err != nil {
		return robot.Spec{}, err
	}
	if s.CorrelationInterval, err = r.ReadLong(); err != nil {
		return robot.Spec{}, err
	}
	if s.MarkerSize, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	if s.MarkerSmoothingTau, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	sensorMinDeg, err := r.ReadInt()
	if err != nil {
		return robot.Spec{}, err
	}
	s.SensorMinDeg = int(sensorMinDeg)
	sensorMaxDeg, err := r.ReadInt()
	if err != nil {
		return robot.Spec{}, err
	}
	s.SensorMaxDeg = int(sensorMaxDeg)
	if s.GridSize, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	gridWidth, err := r.ReadInt()
	if err != nil {
		return robot.Spec{}, err
	}
	s.GridWidth = int(gridWidth)
	gridHeight, err := r.ReadInt()
	if err != nil {
		return robot.Spec{}, err
	}
	s.GridHeight = int(gridHeight)
	if s.RobotRadius, err = r.ReadDouble(); err != nil {
		return robot.Spec{}, err
	}
	return s, nil
}

// EncodeRobotStatus writes the composite status snapshot: spec plus the
// latest message of each kind.
func EncodeRobotStatus(w *Writer, s robot.Status) {
	w.WriteLong(s.SimTime)
	EncodeSpec(w, s.Spec)

	w.WriteLong(s.Motion.SimTime)
	w.WriteDouble(s.Motion.XPulses)
	w.WriteDouble(s.Motion.YPulses)
	w.WriteInt(int32(s.Motion.DirDeg))
	w.WriteDouble(s.Motion.LeftSpeed)
	w.WriteDouble(s.Motion.RightSpeed)
	w.WriteInt(int32(s.Motion.Imu))
	w.WriteBool(s.Motion.CanMove)
	w.WriteInt(int32(s.Motion.LeftPower))
	w.WriteInt(int32(s.Motion.RightPower))
	w.WriteDouble(s.Motion.LeftTarget)
	w.WriteDouble(s.Motion.RightTarget)

	w.WriteLong(s.Proxy.SimTime)
	w.WriteInt(int32(s.Proxy.SensorDirDeg))
	w.WriteLong(s.Proxy.EchoDelayUs)
	w.WriteDouble(s.Proxy.XPulses)
	w.WriteDouble(s.Proxy.YPulses)
	w.WriteInt(int32(s.Proxy.DirDeg))

	w.WriteLong(s.Contacts.SimTime)
	w.WriteBool(s.Contacts.Front)
	w.WriteBool(s.Contacts.Rear)
	w.WriteBool(s.Contacts.CanForward)
	w.WriteBool(s.Contacts.CanBackward)

	w.WriteLong(s.Supply.SimTime)
	w.WriteDouble(s.Supply.Voltage)

	w.WriteLong(s.Camera.SimTime)
	w.WriteString(s.Camera.Label)
	w.WriteDouble(s.Camera.Dx)
	w.WriteDouble(s.Camera.Dy)
}

// DecodeRobotStatus reads back a Status written by EncodeRobotStatus.
func DecodeRobotStatus(r *Reader) (robot.Status, error) {
	var s robot.Status
	var err error
	if s.SimTime, err = r.ReadLong(); err != nil {
		return robot.Status{}, err
	}
	if s.Spec, err = DecodeSpec(r); err != nil {
		return robot.Status{}, err
	}

	if s.Motion.SimTime, err = r.ReadLong(); err != nil {
		return robot.Status{}, err
	}
	if s.Motion.XPulses, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	if s.Motion.YPulses, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	dirDeg, err := r.ReadInt()
	if err != nil {
		return robot.Status{}, err
	}
	s.Motion.DirDeg = int(dirDeg)
	if s.Motion.LeftSpeed, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	if s.Motion.RightSpeed, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	imu, err := r.ReadInt()
	if err != nil {
		return robot.Status{}, err
	}
	s.Motion.Imu = int(imu)
	if s.Motion.CanMove, err = r.ReadBool(); err != nil {
		return robot.Status{}, err
	}
	leftPower, err := r.ReadInt()
	if err != nil {
		return robot.Status{}, err
	}
	s.Motion.LeftPower = int(leftPower)
	rightPower, err := r.ReadInt()
	if err != nil {
		return robot.Status{}, err
	}
	s.Motion.RightPower = int(rightPower)
	if s.Motion.LeftTarget, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	if s.Motion.RightTarget, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}

	if s.Proxy.SimTime, err = r.ReadLong(); err != nil {
		return robot.Status{}, err
	}
	sensorDirDeg, err := r.ReadInt()
	if err != nil {
		return robot.Status{}, err
	}
	s.Proxy.SensorDirDeg = int(sensorDirDeg)
	if s.Proxy.EchoDelayUs, err = r.ReadLong(); err != nil {
		return robot.Status{}, err
	}
	if s.Proxy.XPulses, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	if s.Proxy.YPulses, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	proxyDirDeg, err := r.ReadInt()
	if err != nil {
		return robot.Status{}, err
	}
	s.Proxy.DirDeg = int(proxyDirDeg)

	if s.Contacts.SimTime, err = r.ReadLong(); err != nil {
		return robot.Status{}, err
	}
	if s.Contacts.Front, err = r.ReadBool(); err != nil {
		return robot.Status{}, err
	}
	if s.Contacts.Rear, err = r.ReadBool(); err != nil {
		return robot.Status{}, err
	}
	if s.Contacts.CanForward, err = r.ReadBool(); err != nil {
		return robot.Status{}, err
	}
	if s.Contacts.CanBackward, err = r.ReadBool(); err != nil {
		return robot.Status{}, err
	}

	if s.Supply.SimTime, err = r.ReadLong(); err != nil {
		return robot.Status{}, err
	}
	if s.Supply.Voltage, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}

	if s.Camera.SimTime, err = r.ReadLong(); err != nil {
		return robot.Status{}, err
	}
	if s.Camera.Label, err = r.ReadString(); err != nil {
		return robot.Status{}, err
	}
	if s.Camera.Dx, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	if s.Camera.Dy, err = r.ReadDouble(); err != nil {
		return robot.Status{}, err
	}
	return s, nil
}

// EncodeSector writes a single polar-map sector summary.
func EncodeSector(w *Writer, s gridmap.Sector) {
	w.WriteBool(s.Known)
	w.WriteBool(s.Hindered)
	w.WriteDouble(s.Distance)
	w.WriteDouble(s.Direction.X)
	w.WriteDouble(s.Direction.Y)
	w.WriteInt(int32(s.CellIndex))
}

// DecodeSector reads back a Sector written by EncodeSector.
func DecodeSector(r *Reader) (gridmap.Sector, error) {
	var s gridmap.Sector
	var err error
	if s.Known, err = r.ReadBool(); err != nil {
		return gridmap.Sector{}, err
	}
	if s.Hindered, err = r.ReadBool(); err != nil {
		return gridmap.Sector{}, err
	}
	if s.Distance, err = r.ReadDouble(); err != nil {
		return gridmap.Sector{}, err
	}
	if s.Direction.X, err = r.ReadDouble(); err != nil {
		return gridmap.Sector{}, err
	}
	if s.Direction.Y, err = r.ReadDouble(); err != nil {
		return gridmap.Sector{}, err
	}
	cellIndex, err := r.ReadInt()
	if err != nil {
		return gridmap.Sector{}, err
	}
	s.CellIndex = int(cellIndex)
	return s, nil
}

// EncodePolarMap writes a PolarMap's sectors.
func EncodePolarMap(w *Writer, p gridmap.PolarMap) {
	w.WriteInt(int32(p.NumSectors))
	for _, s := range p.Sectors {
		EncodeSector(w, s)
	}
}

// DecodePolarMap reads back a PolarMap written by EncodePolarMap.
func DecodePolarMap(r *Reader) (gridmap.PolarMap, error) {
	n, err := r.ReadInt()
	if err != nil {
		return gridmap.PolarMap{}, err
	}
	sectors := make([]gridmap.Sector, n)
	for i := range sectors {
		s, err := DecodeSector(r)
		if err != nil {
			return gridmap.PolarMap{}, err
		}
		sectors[i] = s
	}
	return gridmap.PolarMap{NumSectors: int(n), Sectors: sectors}, nil
}

// EncodeWorldModel writes the upstream fields a WorldModel is derived from
// (spec, status, radar map, markers, polar map). GridMap and SafePoints are
// pure functions of those fields (marker.NewWorldModel), so they are
// recomputed on decode rather than persisted twice.
func EncodeWorldModel(w *Writer, m marker.WorldModel) {
	EncodeSpec(w, m.Spec)
	EncodeRobotStatus(w, m.RobotStatus)
	EncodeRadarMap(w, m.RadarMap)
	EncodeMarkers(w, m.Markers)
	EncodePolarMap(w, m.PolarMap)
}

// DecodeWorldModel reads back a WorldModel written by EncodeWorldModel,
// rebuilding GridMap/SafePoints via marker.NewWorldModel.
func DecodeWorldModel(r *Reader) (marker.WorldModel, error) {
	spec, err := DecodeSpec(r)
	if err != nil {
		return marker.WorldModel{}, err
	}
	status, err := DecodeRobotStatus(r)
	if err != nil {
		return marker.WorldModel{}, err
	}
	radarMap, err := DecodeRadarMap(r)
	if err != nil {
		return marker.WorldModel{}, err
	}
	markers, err := DecodeMarkers(r)
	if err != nil {
		return marker.WorldModel{}, err
	}
	polarMap, err := DecodePolarMap(r)
	if err != nil {
		return marker.WorldModel{}, err
	}
	return marker.NewWorldModel(spec, status, radarMap, markers, polarMap, spec.RobotRadius), nil
}

// Command is the tagged union of the three commands the controller queues
// and the wire protocol accepts: move, scan, and halt.
type Command struct {
	Kind  CommandKind
	Move  MoveCommand
	Scan  ScanCommand
}

// CommandKind discriminates a Command's active field.
type CommandKind int32

const (
	CommandMove CommandKind = iota
	CommandScan
	CommandHalt
)

// MoveCommand is a commanded heading and speed.
type MoveCommand struct {
	DirDeg int
	Speed  float64
}

// ScanCommand is a commanded sensor scan direction.
type ScanCommand struct {
	DirDeg int
}

// EncodeCommand writes a tagged command record.
func EncodeCommand(w *Writer, c Command) {
	w.WriteInt(int32(c.Kind))
	switch c.Kind {
	case CommandMove:
		w.WriteInt(int32(c.Move.DirDeg))
		w.WriteDouble(c.Move.Speed)
	case CommandScan:
		w.WriteInt(int32(c.Scan.DirDeg))
	case CommandHalt:
	}
}

// DecodeCommand reads back a Command written by EncodeCommand.
func DecodeCommand(r *Reader) (Command, error) {
	kind, err := r.ReadInt()
	if err != nil {
		return Command{}, err
	}
	switch CommandKind(kind) {
	case CommandMove:
		dirDeg, err := r.ReadInt()
		if err != nil {
			return Command{}, err
		}
		speed, err := r.ReadDouble()
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CommandMove, Move: MoveCommand{DirDeg: int(dirDeg), Speed: speed}}, nil
	case CommandScan:
		dirDeg, err := r.ReadInt()
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CommandScan, Scan: ScanCommand{DirDeg: int(dirDeg)}}, nil
	case CommandHalt:
		return Command{Kind: CommandHalt}, nil
	default:
		return Command{}, fmt.Errorf("datafile: unknown command kind %d", kind)
	}
}
