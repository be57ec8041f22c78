package marker

import (
	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/gridmap"
	"github.com/m-marini/wheelly/internal/robot"
)

// CellState is a display/policy-facing reduction of a gridmap.Cell's raw
// evidence weights to one of four states.
type CellState int

const (
	CellUnknown CellState = iota
	CellAnechoic
	CellEchogenic
	CellLabeled
)

// WorldModel is the read-only aggregate a policy consumes: the latest
// RobotStatus plus everything derived from it (RadarMap, fused markers,
// PolarMap, a display-oriented GridMap, and the SafePoints a planner could
// aim for). Like gridmap.RadarMap and marker.LabelMarker, it has no
// mutation methods — only the NewWorldModel constructor below.
type WorldModel struct {
	Spec        robot.Spec
	RobotStatus robot.Status
	RadarMap    gridmap.RadarMap
	Markers     map[string]LabelMarker
	PolarMap    gridmap.PolarMap
	GridMap     [][]CellState
	SafePoints  []geom.Point
}

// NewWorldModel derives a WorldModel from the latest status and the
// upstream RadarMap/markers/PolarMap layers. robotRadius is used to size
// the SafePoints clearance query.
func NewWorldModel(spec robot.Spec, status robot.Status, radarMap gridmap.RadarMap, markers map[string]LabelMarker, polarMap gridmap.PolarMap, robotRadius float64) WorldModel {
	return WorldModel{
		Spec:        spec,
		RobotStatus: status,
		RadarMap:    radarMap,
		Markers:     markers,
		PolarMap:    polarMap,
		GridMap:     buildGridMap(radarMap, markers),
		SafePoints:  SafePoints(radarMap, markers, robotRadius),
	}
}

// buildGridMap reduces radarMap's per-cell evidence to CellState, then
// overlays any fused marker's cell as CellLabeled: markers live in their
// own map, not in the RadarMap's cells, so this is the only place the two
// are merged into a single picture.
func buildGridMap(radarMap gridmap.RadarMap, markers map[string]LabelMarker) [][]CellState {
	t := radarMap.Topology
	grid := make([][]CellState, t.Height)
	for j := range grid {
		grid[j] = make([]CellState, t.Width)
		for i := range grid[j] {
			c := radarMap.Cells[t.CellIndex(i, j)]
			switch {
			case c.Labeled():
				grid[j][i] = CellLabeled
			case c.Echogenic():
				grid[j][i] = CellEchogenic
			case c.Anechoic():
				grid[j][i] = CellAnechoic
			default:
				grid[j][i] = CellUnknown
			}
		}
	}
	for _, m := range markers {
		if i, j, ok := t.LocationToCell(m.Location); ok {
			grid[j][i] = CellLabeled
		}
	}
	return grid
}
