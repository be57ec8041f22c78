package dump

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot/vg"

	"github.com/m-marini/wheelly/internal/fsutil"
	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/gridmap"
)

func smallMap(t *testing.T) gridmap.RadarMap {
	t.Helper()
	topology := gridmap.NewTopology(geom.Point{X: 0, Y: 0}, 5, 5, 0.2)
	m := gridmap.NewRadarMap(topology)
	m.Cells[0] = m.Cells[0].AddEchogenic(1000, 30000)
	m.Cells[1] = m.Cells[1].AddAnechoic(1000, 30000)
	return m
}

func TestSaveLoadRoundTrips(t *testing.T) {
	m := smallMap(t)
	path := filepath.Join(t.TempDir(), "grid.bin")
	fs := fsutil.OSFileSystem{}

	if err := Save(fs, path, m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Cells) != len(m.Cells) {
		t.Fatalf("cell count mismatch: got %d, want %d", len(loaded.Cells), len(m.Cells))
	}
	if loaded.Cells[0].EchoWeight != m.Cells[0].EchoWeight {
		t.Errorf("EchoWeight mismatch: got %v, want %v", loaded.Cells[0].EchoWeight, m.Cells[0].EchoWeight)
	}
}

func TestSaveLoadRoundTripsInMemory(t *testing.T) {
	m := smallMap(t)
	fs := fsutil.NewMemoryFileSystem()
	path := filepath.Join(t.TempDir(), "grid.bin")

	if err := Save(fs, path, m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Cells[1].Anechoic() != m.Cells[1].Anechoic() {
		t.Errorf("Anechoic mismatch: got %v, want %v", loaded.Cells[1].Anechoic(), m.Cells[1].Anechoic())
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(fsutil.OSFileSystem{}, filepath.Join(t.TempDir(), "missing.bin"))
	if err == nil {
		t.Fatalf("expected an error loading a missing file")
	}
}

func TestSaveRejectsPathOutsideAllowedDirs(t *testing.T) {
	m := smallMap(t)
	if err := Save(fsutil.NewMemoryFileSystem(), "/etc/wheelly-grid.bin", m); err == nil {
		t.Fatalf("expected Save to reject a path outside the temp/cwd directories")
	}
}

func TestPlotCellWeightsWritesFile(t *testing.T) {
	m := smallMap(t)
	path := filepath.Join(t.TempDir(), "grid.png")

	if err := PlotCellWeights(m, 6*vg.Inch, 6*vg.Inch, path); err != nil {
		t.Fatalf("PlotCellWeights failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected plot file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Errorf("expected a non-empty PNG file")
	}
}

func TestPlotPolarMapWritesFile(t *testing.T) {
	m := smallMap(t)
	p := gridmap.BuildPolarMap(m, geom.Point{X: 0, Y: 0}, 8)
	path := filepath.Join(t.TempDir(), "polar.png")

	if err := PlotPolarMap(p, 6*vg.Inch, 6*vg.Inch, path); err != nil {
		t.Fatalf("PlotPolarMap failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty plot file, err=%v", err)
	}
}

func TestRenderCellWeightsHTMLProducesMarkup(t *testing.T) {
	m := smallMap(t)
	buf, err := RenderCellWeightsHTML(m)
	if err != nil {
		t.Fatalf("RenderCellWeightsHTML failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty HTML output")
	}
}

func TestRenderPolarMapHTMLProducesMarkup(t *testing.T) {
	m := smallMap(t)
	p := gridmap.BuildPolarMap(m, geom.Point{X: 0, Y: 0}, 8)
	buf, err := RenderPolarMapHTML(p)
	if err != nil {
		t.Fatalf("RenderPolarMapHTML failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty HTML output")
	}
}
