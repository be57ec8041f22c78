package gridmap_test

import (
	"testing"

	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/gridmap"
)

func TestPolarMapSectorIndex(t *testing.T) {
	p := gridmap.PolarMap{NumSectors: 4}
	if idx := p.SectorIndex(geom.DEG0); idx != 0 {
		t.Errorf("DEG0 -> sector %d, want 0", idx)
	}
	if idx := p.SectorIndex(geom.DEG90); idx != 1 {
		t.Errorf("DEG90 -> sector %d, want 1", idx)
	}
	if idx := p.SectorIndex(geom.DEG180); idx != 2 {
		t.Errorf("DEG180 -> sector %d, want 2", idx)
	}
	if idx := p.SectorIndex(geom.DEG270); idx != 3 {
		t.Errorf("DEG270 -> sector %d, want 3", idx)
	}
}

func TestBuildPolarMapFindsNearestEchogenicCell(t *testing.T) {
	topo := gridmap.NewTopology(geom.Point{}, 11, 11, 0.2)
	m := gridmap.NewRadarMap(topo)
	signal := gridmap.Signal{
		SensorLocation:  geom.Point{X: 0, Y: 0},
		SensorDirection: geom.DEG0,
		Distance:        0.8,
		Timestamp:       1000,
	}
	m = m.Update(signal, receptiveAngle, maxDistance, decayTau)

	pm := gridmap.BuildPolarMap(m, geom.Point{X: 0, Y: 0}, 8)
	si := pm.SectorIndex(geom.DEG0)
	sector := pm.Sectors[si]
	if !sector.Known {
		t.Error("forward sector should be known after update")
	}
	if !sector.Hindered {
		t.Error("forward sector should be hindered by the echogenic cell")
	}
	if sector.Distance <= 0 {
		t.Errorf("expected a positive nearest distance, got %v", sector.Distance)
	}
}
