package marker

import (
	"github.com/m-marini/wheelly/internal/area"
	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/gridmap"
)

// SafePoints returns the centres of the unknown-or-anechoic cells that lie
// entirely more than robotRadius from every echogenic or labeled cell (and
// from every fused marker). It builds one "danger disc" AreaExpression per
// obstacle and reuses area.FilterByArea's any-corner-OR accelerator to find
// every cell that touches a disc in a single pass; a cell is safe when none
// of its four corners do.
func SafePoints(radarMap gridmap.RadarMap, markers map[string]LabelMarker, robotRadius float64) []geom.Point {
	var obstacles []geom.Point
	for _, c := range radarMap.Cells {
		if c.Echogenic() || c.Labeled() {
			obstacles = append(obstacles, c.Location)
		}
	}
	for _, m := range markers {
		obstacles = append(obstacles, m.Location)
	}

	if len(obstacles) == 0 {
		return candidateSafeLocations(radarMap, nil)
	}

	discs := make([]area.Expression, len(obstacles))
	for i, center := range obstacles {
		discs[i] = area.Ineq(area.Circle(center, robotRadius))
	}
	danger := area.Or(discs...)
	touchesDanger := area.FilterByArea(danger, radarMap.Vertices, radarMap.VerticesByCells)

	return candidateSafeLocations(radarMap, touchesDanger)
}

// candidateSafeLocations collects the locations of unknown-or-anechoic
// cells whose index is not flagged in touchesDanger (nil meaning "no
// obstacles at all, every such cell qualifies").
func candidateSafeLocations(radarMap gridmap.RadarMap, touchesDanger []bool) []geom.Point {
	var points []geom.Point
	for idx, c := range radarMap.Cells {
		if touchesDanger != nil && touchesDanger[idx] {
			continue
		}
		if c.Unknown() || c.Anechoic() {
			points = append(points, c.Location)
		}
	}
	return points
}
