package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Slices below this share get no percentage label
const minLabeledPercent = 3.0

// pieChart draws value shares as circle sectors, counterclockwise from twelve o'clock
type pieChart struct {
	values []float64
	colors []color.Color
	total  float64
}

func newPieChart(values []float64) *pieChart {
	pc := &pieChart{values: values, colors: make([]color.Color, len(values))}
	for i, v := range values {
		pc.total += v
		pc.colors[i] = plotutil.Color(i)
	}
	return pc
}

// Plot implements plot.Plotter. The pie stays circular whatever the canvas
// aspect, so geometry comes from the canvas rather than the data transforms.
func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	if pc.total <= 0 {
		return
	}
	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) * 0.45

	sty := plt.X.Tick.Label
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YCenter
	sty.Color = color.White

	start := math.Pi / 2
	for i, v := range pc.values {
		sweep := 2 * math.Pi * v / pc.total
		if sweep <= 0 {
			continue
		}

		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, start, sweep)
		path.Close()
		c.SetColor(pc.colors[i])
		c.Fill(path)

		if pct := v * 100 / pc.total; pct >= minLabeledPercent {
			mid := start + sweep/2
			at := vg.Point{
				X: center.X + radius*0.65*vg.Length(math.Cos(mid)),
				Y: center.Y + radius*0.65*vg.Length(math.Sin(mid)),
			}
			c.FillText(sty, at, fmt.Sprintf("%.1f%%", pct))
		}
		start += sweep
	}
}

// swatch is a legend thumbnail filled with one slice color
type swatch struct {
	color color.Color
}

// Thumbnail implements plot.Thumbnailer
func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

func addPie(p *plot.Plot, c Chart) {
	pc := newPieChart(c.Values)
	p.Add(pc)
	p.HideAxes()
	p.X.Label.Text = ""
	p.Y.Label.Text = ""

	labels := shortLabels(c.Labels)
	for i := range pc.values {
		name := fmt.Sprintf("#%d", i+1)
		if i < len(labels) {
			name = labels[i]
		}
		if pc.total > 0 {
			name = fmt.Sprintf("%s (%.0f)", name, pc.values[i])
		}
		p.Legend.Add(name, swatch{color: pc.colors[i]})
	}
	p.Legend.Left = false
	p.Legend.Top = true
}
