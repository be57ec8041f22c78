package gridmap

import (
	"github.com/m-marini/wheelly/internal/area"
	"github.com/m-marini/wheelly/internal/geom"
)

// Signal is a single directional range-sensor reading: the sensor pose and
// the measured distance (0 meaning "no echo in range").
type Signal struct {
	SensorLocation  geom.Point
	SensorDirection geom.Complex
	Distance        float64
	Timestamp       int64
}

// IsEcho reports whether the signal represents an actual echo rather than
// "nothing in range".
func (s Signal) IsEcho() bool {
	return s.Distance > 0
}

// RadarMap is the immutable occupancy grid: a Topology, its Cells, and the
// precomputed vertex/corner index tables used by the AreaExpression bulk
// accelerator.
type RadarMap struct {
	Topology        Topology
	Cells           []Cell
	Vertices        []geom.Point
	VerticesByCells [][]int
	CleanTimestamp  int64
}

// NewRadarMap builds an empty map over the given topology.
func NewRadarMap(topology Topology) RadarMap {
	cells := make([]Cell, topology.NumCells())
	for idx := range cells {
		i, j := topology.CellCoords(idx)
		cells[idx] = NewCell(topology.CellCenter(i, j))
	}
	return RadarMap{
		Topology:        topology,
		Cells:           cells,
		Vertices:        topology.Vertices(),
		VerticesByCells: topology.VerticesByCell(),
	}
}

// CellAt returns the cell containing p, or ok=false if p falls outside the
// grid.
func (m RadarMap) CellAt(p geom.Point) (Cell, bool) {
	i, j, ok := m.Topology.LocationToCell(p)
	if !ok {
		return Cell{}, false
	}
	return m.Cells[m.Topology.CellIndex(i, j)], true
}

// Update applies a single sensor signal to the map, following the per-cell
// range-cone update rule (see the cell package doc): cells outside the
// sensor's radial field of view are left untouched; for candidates, the
// arc-square intersection with the cell square decides whether the signal
// confirms (addEchogenic), refutes (addAnechoic), or has no bearing on
// that cell.
func (m RadarMap) Update(signal Signal, receptiveAngle, maxDistance, decayTau float64) RadarMap {
	candidates := area.RadialSensorArea(signal.SensorLocation, signal.SensorDirection, receptiveAngle, maxDistance)
	mask := area.FilterByArea(candidates, m.Vertices, m.VerticesByCells)

	newCells := make([]Cell, len(m.Cells))
	copy(newCells, m.Cells)

	for idx, hit := range mask {
		if !hit {
			continue
		}
		i, j := m.Topology.CellCoords(idx)
		center := m.Topology.CellCenter(i, j)
		near, far, ok := geom.ArcSquareIntersect(signal.SensorLocation, signal.SensorDirection, receptiveAngle, center, m.Topology.GridSize)
		if !ok {
			continue
		}
		nearD := signal.SensorLocation.Distance(near)
		farD := signal.SensorLocation.Distance(far)

		if nearD == 0 || nearD > maxDistance || (signal.IsEcho() && nearD > signal.Distance) {
			continue
		}
		if signal.IsEcho() && farD >= signal.Distance {
			newCells[idx] = newCells[idx].AddEchogenic(signal.Timestamp, decayTau)
		} else {
			newCells[idx] = newCells[idx].AddAnechoic(signal.Timestamp, decayTau)
		}
	}

	next := m
	next.Cells = newCells
	return next
}

// Clean erases stale evidence. If now hasn't yet reached
// cleanTimestamp+cleanInterval, the map is returned unchanged; otherwise
// every cell whose echo/contact evidence has aged past the respective
// persistence window has that evidence erased, and cleanTimestamp is
// advanced to now.
func (m RadarMap) Clean(now int64, cleanInterval int64, echoPersistence, contactPersistence int64) RadarMap {
	if now < m.CleanTimestamp+cleanInterval {
		return m
	}
	newCells := make([]Cell, len(m.Cells))
	for idx, c := range m.Cells {
		if c.EchoTime != 0 && c.EchoTime+echoPersistence < now {
			c = c.CleanEcho()
		}
		if c.ContactTime != 0 && c.ContactTime+contactPersistence < now {
			c = c.CleanContact()
		}
		newCells[idx] = c
	}
	next := m
	next.Cells = newCells
	next.CleanTimestamp = now
	return next
}
