// Package dump provides file and HTML/PNG glue for RadarMap snapshots: a
// thin datafile-codec wrapper for saving/loading a grid to/from disk, and
// gonum/plot + go-echarts renderers for offline debugging, mirroring the
// teacher's internal/lidar/l3grid/background_persistence.go and
// internal/lidar/monitor/gridplotter.go.
package dump

import (
	"fmt"

	"github.com/m-marini/wheelly/internal/datafile"
	"github.com/m-marini/wheelly/internal/fsutil"
	"github.com/m-marini/wheelly/internal/gridmap"
	"github.com/m-marini/wheelly/internal/security"
)

// Save validates that path stays within the temp directory or the
// current working directory, encodes m via internal/datafile and
// writes it through fs. Pass fsutil.OSFileSystem{} in production;
// fsutil.NewMemoryFileSystem() in tests.
func Save(fs fsutil.FileSystem, path string, m gridmap.RadarMap) error {
	if err := security.ValidateExportPath(path); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	w := datafile.NewWriter()
	datafile.EncodeRadarMap(w, m)
	if err := fs.WriteFile(path, w.Bytes(), 0644); err != nil {
		return fmt.Errorf("dump: write %q: %w", path, err)
	}
	return nil
}

// Load reads and decodes a RadarMap previously written by Save.
func Load(fs fsutil.FileSystem, path string) (gridmap.RadarMap, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return gridmap.RadarMap{}, fmt.Errorf("dump: read %q: %w", path, err)
	}
	r := datafile.NewReader(data)
	m, err := datafile.DecodeRadarMap(r)
	if err != nil {
		return gridmap.RadarMap{}, fmt.Errorf("dump: decode %q: %w", path, err)
	}
	return m, nil
}
