// Package chart renders the dashboard PNG assets. A single Renderer is
// constructed per run and carries the process-wide output settings; the
// process is short-lived, so there is no teardown.
package chart

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/safetystack/dashgen/internal/analytics"
)

// Renderer writes chart images for the dashboard.
type Renderer struct {
	dpi float64
}

// NewRenderer returns a Renderer at the dashboard's fixed 160 DPI.
func NewRenderer() *Renderer {
	return &Renderer{dpi: 160}
}

// HorizontalBar renders counts as a horizontal bar chart (10×5 in) at
// path. Counts are drawn in the order given; pass them ascending so the
// largest bar lands at the top. An empty input produces no file and
// reports produced=false.
func (r *Renderer) HorizontalBar(counts []analytics.CategoryCount, title, path string) (produced bool, err error) {
	if len(counts) == 0 {
		return false, nil
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Count"

	vals := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		vals[i] = float64(c.Count)
		labels[i] = c.Value
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(14))
	if err != nil {
		return false, fmt.Errorf("bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(labels...)

	if err := r.save(p, 10*vg.Inch, 5*vg.Inch, path); err != nil {
		return false, err
	}
	return true, nil
}

// DailyLine renders per-day counts as a line chart (10×4 in) at path.
// An empty input produces no file and reports produced=false.
func (r *Renderer) DailyLine(points []analytics.DailyCount, title, path string) (produced bool, err error) {
	if len(points) == 0 {
		return false, nil
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Count"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Day.Unix())
		xys[i].Y = float64(pt.Count)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return false, fmt.Errorf("line chart: %w", err)
	}
	p.Add(line)

	if err := r.save(p, 10*vg.Inch, 4*vg.Inch, path); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Renderer) save(p *plot.Plot, w, h vg.Length, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(int(r.dpi)))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
