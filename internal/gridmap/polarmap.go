package gridmap

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/m-marini/wheelly/internal/geom"
)

// Sector is the per-sector summary of the nearest echogenic obstacle
// around the robot.
type Sector struct {
	Known     bool
	Hindered  bool
	Distance  float64
	Direction geom.Complex
	CellIndex int
}

// PolarMap partitions the plane around a centre point into numSectors
// equal angular sectors and records, for each, the nearest echogenic
// obstacle found in the underlying RadarMap.
type PolarMap struct {
	NumSectors int
	Sectors    []Sector
}

// SectorIndex rounds dir to the index of its nearest sector centre.
func (p PolarMap) SectorIndex(dir geom.Complex) int {
	width := 360.0 / float64(p.NumSectors)
	idx := int(math.Round(dir.ToDeg() / width))
	idx = ((idx % p.NumSectors) + p.NumSectors) % p.NumSectors
	return idx
}

// BuildPolarMap reduces a RadarMap to a PolarMap as seen from center: for
// each sector, Known is set if any non-unknown cell falls in it, and
// Hindered/Distance/Direction/CellIndex describe the nearest echogenic
// cell in that sector, if any.
func BuildPolarMap(m RadarMap, center geom.Point, numSectors int) PolarMap {
	sectors := make([]Sector, numSectors)
	p := PolarMap{NumSectors: numSectors, Sectors: sectors}

	known := make([]bool, numSectors)
	candIdx := make([][]int, numSectors)
	candDist := make([][]float64, numSectors)
	candDir := make([][]geom.Complex, numSectors)

	for idx, c := range m.Cells {
		if c.Unknown() {
			continue
		}
		dir := geom.Direction(center, c.Location)
		si := p.SectorIndex(dir)
		known[si] = true
		if c.Echogenic() {
			candIdx[si] = append(candIdx[si], idx)
			candDist[si] = append(candDist[si], center.Distance(c.Location))
			candDir[si] = append(candDir[si], dir)
		}
	}

	for si := range sectors {
		sectors[si].Known = known[si]
		if len(candDist[si]) == 0 {
			continue
		}
		// The nearest echogenic cell in the sector, found as the argmin over
		// the candidate distances gathered above.
		mi := floats.MinIdx(candDist[si])
		sectors[si].Hindered = true
		sectors[si].Distance = candDist[si][mi]
		sectors[si].Direction = candDir[si][mi]
		sectors[si].CellIndex = candIdx[si][mi]
	}
	return p
}
