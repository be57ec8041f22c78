// Package gridmap implements the occupancy grid: a fixed rectangular cell
// grid with per-cell echogenic/anechoic/contact evidence accumulation,
// temporal decay, geometric update from a directional range sensor, and a
// polar projection used by downstream policy code.
package gridmap

import "github.com/m-marini/wheelly/internal/geom"

// Topology is the immutable layout of a rectangular cell grid: origin,
// cell counts, and cell size. Cells are laid out row-major with row index
// increasing northward (+y).
type Topology struct {
	Origin   geom.Point
	Width    int
	Height   int
	GridSize float64
}

// NewTopology builds a Topology whose grid is centred on origin: origin in
// world coordinates falls at the centre of the grid.
func NewTopology(origin geom.Point, width, height int, gridSize float64) Topology {
	return Topology{Origin: origin, Width: width, Height: height, GridSize: gridSize}
}

// NumCells returns the total number of cells.
func (t Topology) NumCells() int {
	return t.Width * t.Height
}

// CellIndex converts a cell (column i, row j) to a flat index, or -1 if out
// of bounds.
func (t Topology) CellIndex(i, j int) int {
	if i < 0 || i >= t.Width || j < 0 || j >= t.Height {
		return -1
	}
	return j*t.Width + i
}

// CellCoords converts a flat cell index back to (i,j).
func (t Topology) CellCoords(index int) (i, j int) {
	return index % t.Width, index / t.Width
}

// CellCenter returns the world-space centre of cell (i,j).
func (t Topology) CellCenter(i, j int) geom.Point {
	halfW := float64(t.Width) * t.GridSize / 2
	halfH := float64(t.Height) * t.GridSize / 2
	return geom.Point{
		X: t.Origin.X - halfW + (float64(i)+0.5)*t.GridSize,
		Y: t.Origin.Y - halfH + (float64(j)+0.5)*t.GridSize,
	}
}

// LocationToCell maps a world point to the cell (i,j) containing it, or
// ok=false if the point is outside the grid.
func (t Topology) LocationToCell(p geom.Point) (i, j int, ok bool) {
	halfW := float64(t.Width) * t.GridSize / 2
	halfH := float64(t.Height) * t.GridSize / 2
	fi := (p.X - t.Origin.X + halfW) / t.GridSize
	fj := (p.Y - t.Origin.Y + halfH) / t.GridSize
	i = int(fi)
	j = int(fj)
	if fi < 0 || fj < 0 || i >= t.Width || j >= t.Height {
		return 0, 0, false
	}
	return i, j, true
}

// Vertices returns the (width+1)*(height+1) grid corner points, row-major.
func (t Topology) Vertices() []geom.Point {
	vw, vh := t.Width+1, t.Height+1
	halfW := float64(t.Width) * t.GridSize / 2
	halfH := float64(t.Height) * t.GridSize / 2
	vertices := make([]geom.Point, 0, vw*vh)
	for j := 0; j < vh; j++ {
		for i := 0; i < vw; i++ {
			vertices = append(vertices, geom.Point{
				X: t.Origin.X - halfW + float64(i)*t.GridSize,
				Y: t.Origin.Y - halfH + float64(j)*t.GridSize,
			})
		}
	}
	return vertices
}

// VerticesByCell returns, for each cell in row-major order, the indices of
// its 4 corners into the Vertices() slice.
func (t Topology) VerticesByCell() [][]int {
	vw := t.Width + 1
	result := make([][]int, 0, t.NumCells())
	for j := 0; j < t.Height; j++ {
		for i := 0; i < t.Width; i++ {
			bl := j*vw + i
			br := bl + 1
			tl := bl + vw
			tr := tl + 1
			result = append(result, []int{bl, br, tl, tr})
		}
	}
	return result
}

// Segment performs 2D DDA traversal, returning the ordered cell indices
// that the segment p0->p1 passes through.
func Segment(t Topology, p0, p1 geom.Point) []int {
	i0, j0, ok0 := t.LocationToCell(p0)
	i1, j1, ok1 := t.LocationToCell(p1)
	if !ok0 && !ok1 {
		return nil
	}

	steps := absInt(i1 - i0)
	if s := absInt(j1 - j0); s > steps {
		steps = s
	}
	if steps == 0 {
		if ok0 {
			return []int{t.CellIndex(i0, j0)}
		}
		return nil
	}

	seen := make(map[int]bool)
	var result []int
	for s := 0; s <= steps; s++ {
		frac := float64(s) / float64(steps)
		x := p0.X + frac*(p1.X-p0.X)
		y := p0.Y + frac*(p1.Y-p0.Y)
		if i, j, ok := t.LocationToCell(geom.Point{X: x, Y: y}); ok {
			idx := t.CellIndex(i, j)
			if !seen[idx] {
				seen[idx] = true
				result = append(result, idx)
			}
		}
	}
	return result
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
