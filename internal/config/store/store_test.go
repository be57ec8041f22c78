package store

import (
	"path/filepath"
	"testing"

	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/gridmap"
	"github.com/m-marini/wheelly/internal/marker"
	"github.com/m-marini/wheelly/internal/robot"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), t.Name()+".db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func smallWorldModel(t *testing.T) marker.WorldModel {
	t.Helper()
	topology := gridmap.NewTopology(geom.Point{X: 0, Y: 0}, 3, 3, 0.2)
	radarMap := gridmap.NewRadarMap(topology)
	spec := robot.Spec{GridSize: 0.2, GridWidth: 3, GridHeight: 3, RobotRadius: 0.1, MaxDistance: 3}
	polarMap := gridmap.BuildPolarMap(radarMap, geom.Point{X: 0, Y: 0}, 8)
	return marker.NewWorldModel(spec, robot.Status{}, radarMap, map[string]marker.LabelMarker{}, polarMap, spec.RobotRadius)
}

func TestOpenCreatesSchemaAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open (re-migrate) failed: %v", err)
	}
	defer s2.Close()
}

func TestSaveAndLoadLatestWorldModelRoundTrips(t *testing.T) {
	s := setupTestStore(t)
	wm := smallWorldModel(t)

	if _, err := s.SaveWorldModel("default", 1000, wm); err != nil {
		t.Fatalf("SaveWorldModel failed: %v", err)
	}

	loaded, ok, err := s.LoadLatestWorldModel("default")
	if err != nil {
		t.Fatalf("LoadLatestWorldModel failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected a snapshot to be found")
	}
	if loaded.Spec != wm.Spec {
		t.Errorf("Spec mismatch: got %+v, want %+v", loaded.Spec, wm.Spec)
	}
	if len(loaded.RadarMap.Cells) != len(wm.RadarMap.Cells) {
		t.Errorf("RadarMap cell count mismatch: got %d, want %d", len(loaded.RadarMap.Cells), len(wm.RadarMap.Cells))
	}
}

func TestLoadLatestWorldModelMissingReturnsFalse(t *testing.T) {
	s := setupTestStore(t)

	_, ok, err := s.LoadLatestWorldModel("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a name with no snapshots")
	}
}

func TestSaveWorldModelKeepsHistoryNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	wm := smallWorldModel(t)

	if _, err := s.SaveWorldModel("default", 1000, wm); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if _, err := s.SaveWorldModel("default", 2000, wm); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	metas, err := s.ListSnapshots("default", 10)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(metas))
	}
	if metas[0].TakenUnixMillis != 2000 {
		t.Errorf("expected newest snapshot first, got %+v", metas[0])
	}
}
