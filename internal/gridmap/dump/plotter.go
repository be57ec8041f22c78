package dump

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/m-marini/wheelly/internal/gridmap"
)

// viridisStops mirrors the teacher's echarts_handlers.go gradient, reused
// here to color-code echo weight in the HTML scatter.
var viridisStops = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// PlotCellWeights renders the grid's cells as a PNG scatter, one point per
// cell, split into three overlaid series by cell category (unknown, free,
// obstacle), each drawn with its own fixed marker size; the numeric weight
// itself is not plotted. Follows the multi-series-per-plot layout of the
// teacher's generateRingPlot.
func PlotCellWeights(m gridmap.RadarMap, width, height vg.Length, path string) error {
	p := plot.New()
	p.Title.Text = "Grid cell echo weight"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	var echogenic, anechoic, unknown plotter.XYs
	for _, c := range m.Cells {
		pt := plotter.XY{X: c.Location.X, Y: c.Location.Y}
		switch {
		case c.Unknown():
			unknown = append(unknown, pt)
		case c.Echogenic():
			echogenic = append(echogenic, pt)
		case c.Anechoic():
			anechoic = append(anechoic, pt)
		default:
			unknown = append(unknown, pt)
		}
	}

	if len(unknown) > 0 {
		s, err := plotter.NewScatter(unknown)
		if err != nil {
			return fmt.Errorf("dump: plot unknown cells: %w", err)
		}
		s.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(s)
		p.Legend.Add("unknown", s)
	}
	if len(anechoic) > 0 {
		s, err := plotter.NewScatter(anechoic)
		if err != nil {
			return fmt.Errorf("dump: plot anechoic cells: %w", err)
		}
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add("free", s)
	}
	if len(echogenic) > 0 {
		s, err := plotter.NewScatter(echogenic)
		if err != nil {
			return fmt.Errorf("dump: plot echogenic cells: %w", err)
		}
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		p.Legend.Add("obstacle", s)
	}

	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("dump: save plot %q: %w", path, err)
	}
	return nil
}

// PlotPolarMap renders a PolarMap's per-sector nearest-obstacle distance
// as a single closed polyline in polar coordinates, in the style of the
// teacher's per-ring line plots.
func PlotPolarMap(p gridmap.PolarMap, width, height vg.Length, path string) error {
	pl := plot.New()
	pl.Title.Text = "Polar map"
	pl.X.Label.Text = "x (m)"
	pl.Y.Label.Text = "y (m)"

	pts := make(plotter.XYs, 0, p.NumSectors+1)
	sectorWidth := 360.0 / float64(p.NumSectors)
	for i, sec := range p.Sectors {
		dist := sec.Distance
		if !sec.Hindered {
			continue
		}
		angle := float64(i) * sectorWidth * math.Pi / 180
		pts = append(pts, plotter.XY{X: dist * math.Cos(angle), Y: dist * math.Sin(angle)})
	}
	if len(pts) == 0 {
		return fmt.Errorf("dump: polar map has no hindered sectors to plot")
	}
	pts = append(pts, pts[0])

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("dump: build polar line: %w", err)
	}
	line.Width = vg.Points(1)
	pl.Add(line)

	if err := pl.Save(width, height, path); err != nil {
		return fmt.Errorf("dump: save polar plot %q: %w", path, err)
	}
	return nil
}

// RenderCellWeightsHTML renders the grid's cells as an interactive
// go-echarts scatter, colour-mapped by echo weight with the same
// viridis-style gradient the teacher uses for its heatmap charts.
func RenderCellWeightsHTML(m gridmap.RadarMap) (*bytes.Buffer, error) {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "960px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Grid cell echo weight"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (m)"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisStops},
		}),
	)

	data := make([]opts.ScatterData, len(m.Cells))
	for i, c := range m.Cells {
		data[i] = opts.ScatterData{Value: []interface{}{c.Location.X, c.Location.Y, c.EchoWeight}}
	}
	scatter.AddSeries("cells", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return nil, fmt.Errorf("dump: render cell scatter: %w", err)
	}
	return &buf, nil
}

// RenderPolarMapHTML renders a PolarMap's per-sector nearest-obstacle
// distance as a go-echarts bar chart, one bar per sector.
func RenderPolarMapHTML(p gridmap.PolarMap) (*bytes.Buffer, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "960px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Polar map sector distances"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sector"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "distance (m)"}),
	)

	labels := make([]string, p.NumSectors)
	values := make([]opts.BarData, p.NumSectors)
	for i, sec := range p.Sectors {
		labels[i] = fmt.Sprintf("%d", i)
		d := 0.0
		if sec.Hindered {
			d = sec.Distance
		}
		values[i] = opts.BarData{Value: d}
	}
	bar.SetXAxis(labels).AddSeries("distance", values)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return nil, fmt.Errorf("dump: render polar bar chart: %w", err)
	}
	return &buf, nil
}
