package gridmap_test

import (
	"testing"

	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/gridmap"
)

func TestTopologyCellIndexRoundTrip(t *testing.T) {
	topo := gridmap.NewTopology(geom.Point{}, 8, 8, 1.0)
	for j := 0; j < 8; j++ {
		for i := 0; i < 8; i++ {
			idx := topo.CellIndex(i, j)
			gi, gj := topo.CellCoords(idx)
			if gi != i || gj != j {
				t.Errorf("CellCoords(CellIndex(%d,%d)) = (%d,%d)", i, j, gi, gj)
			}
		}
	}
}

func TestTopologyCellIndexOutOfBounds(t *testing.T) {
	topo := gridmap.NewTopology(geom.Point{}, 8, 8, 1.0)
	if topo.CellIndex(-1, 0) != -1 {
		t.Error("expected -1 for out-of-bounds column")
	}
	if topo.CellIndex(0, 8) != -1 {
		t.Error("expected -1 for out-of-bounds row")
	}
}

func TestTopologyLocationToCell(t *testing.T) {
	topo := gridmap.NewTopology(geom.Point{}, 8, 8, 1.0)
	i, j, ok := topo.LocationToCell(geom.Point{X: 0, Y: 0})
	if !ok {
		t.Fatal("expected origin to be on the grid")
	}
	center := topo.CellCenter(i, j)
	if center.Distance(geom.Point{X: 0.5, Y: 0.5}) > 1e-9 {
		t.Errorf("unexpected cell centre %v", center)
	}

	_, _, ok = topo.LocationToCell(geom.Point{X: 100, Y: 100})
	if ok {
		t.Error("expected far point to be off the grid")
	}
}

func TestTopologyVerticesByCellCount(t *testing.T) {
	topo := gridmap.NewTopology(geom.Point{}, 4, 3, 1.0)
	vertices := topo.Vertices()
	if len(vertices) != 5*4 {
		t.Fatalf("expected %d vertices, got %d", 5*4, len(vertices))
	}
	cells := topo.VerticesByCell()
	if len(cells) != 12 {
		t.Fatalf("expected 12 cells, got %d", len(cells))
	}
	for _, corners := range cells {
		if len(corners) != 4 {
			t.Errorf("expected 4 corners per cell, got %d", len(corners))
		}
	}
}

func TestSegmentTraversal(t *testing.T) {
	topo := gridmap.NewTopology(geom.Point{}, 8, 8, 1.0)
	cells := gridmap.Segment(topo, geom.Point{X: -4, Y: 0}, geom.Point{X: 4, Y: 0})
	if len(cells) == 0 {
		t.Fatal("expected a non-empty traversal")
	}
	first := cells[0]
	last := cells[len(cells)-1]
	fi, _ := topo.CellCoords(first)
	li, _ := topo.CellCoords(last)
	if fi >= li {
		t.Errorf("expected traversal to move from low to high column, got %d -> %d", fi, li)
	}
}
