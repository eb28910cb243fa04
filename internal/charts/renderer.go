package charts

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"leadlens/internal/config"
	"leadlens/internal/errors"
)

const (
	histogramBins   = 30
	maxLabelRunes   = 40
	renderWorkers   = 4
	titleFontPoints = 16
)

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// Image is a rendered chart
type Image struct {
	Name string
	Path string
	Data []byte
}

// Renderer draws charts as PNG files under one directory and keeps their
// bytes so callers can embed them without reading the files back
type Renderer struct {
	dir    string
	width  vg.Length
	height vg.Length
	logger *slog.Logger
}

// NewRenderer creates a renderer writing into dir
func NewRenderer(cfg config.ChartsConfig, dir string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		dir:    dir,
		width:  vg.Length(cfg.WidthInches) * vg.Inch,
		height: vg.Length(cfg.HeightInches) * vg.Inch,
		logger: logger.With(slog.String("component", "charts")),
	}
}

// Render draws one chart and writes it, replacing any previous image of the same name
func (r *Renderer) Render(ctx context.Context, c Chart) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, errors.NewAppValidationError(fmt.Sprintf("chart %s has no data", c.Name))
	}

	p, err := r.build(c)
	if err != nil {
		return nil, errors.NewExportError("failed to build chart", err).WithContext("chart", c.Name)
	}

	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, errors.NewExportError("failed to render chart", err).WithContext("chart", c.Name)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.NewExportError("failed to encode chart", err).WithContext("chart", c.Name)
	}

	img := &Image{Name: c.Name, Path: filepath.Join(r.dir, c.Name), Data: buf.Bytes()}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, errors.NewStorageError("failed to create chart directory", err)
	}
	if err := os.WriteFile(img.Path, img.Data, 0644); err != nil {
		return nil, errors.NewStorageError("failed to write chart", err).WithContext("path", img.Path)
	}

	r.logger.DebugContext(ctx, "chart rendered",
		slog.String("chart", c.Name),
		slog.String("kind", string(c.Kind)),
		slog.Int("bytes", len(img.Data)))
	return img, nil
}

// RenderAll draws independent charts concurrently. Charts without data are
// skipped. Results keep the input order; the first error cancels the rest.
func (r *Renderer) RenderAll(ctx context.Context, charts []Chart) ([]*Image, error) {
	results := make([]*Image, len(charts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderWorkers)
	for i, c := range charts {
		if c.Empty() {
			r.logger.InfoContext(ctx, "chart skipped, no data", slog.String("chart", c.Name))
			continue
		}
		i, c := i, c
		g.Go(func() error {
			img, err := r.Render(gctx, c)
			if err != nil {
				return err
			}
			results[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images := make([]*Image, 0, len(results))
	for _, img := range results {
		if img != nil {
			images = append(images, img)
		}
	}
	r.logger.InfoContext(ctx, "charts rendered",
		slog.Int("requested", len(charts)),
		slog.Int("rendered", len(images)))
	return images, nil
}

func (r *Renderer) build(c Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(titleFontPoints)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	var err error
	switch c.Kind {
	case KindBar:
		err = r.addBars(p, c, false)
	case KindHBar:
		err = r.addBars(p, c, true)
	case KindPie:
		addPie(p, c)
	case KindGroupedBar:
		err = r.addGroupedBars(p, c)
	case KindHistogram:
		err = addHistogram(p, c)
	case KindHeatMap:
		err = addHeatMap(p, c)
	default:
		err = fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	return p, err
}

// barWidth fits n bars (or groups) into the plotting extent
func barWidth(extent vg.Length, n int) vg.Length {
	w := extent * 0.7 / vg.Length(n)
	if max := vg.Points(40); w > max {
		w = max
	}
	return w
}

func (r *Renderer) addBars(p *plot.Plot, c Chart, horizontal bool) error {
	labels := shortLabels(c.Labels)
	values := append([]float64(nil), c.Values...)
	texts := make([]string, len(values))
	for i, v := range values {
		texts[i] = fmt.Sprintf("%.0f", v)
		if i < len(c.Percents) {
			texts[i] = fmt.Sprintf("%.0f (%.1f%%)", v, c.Percents[i])
		}
	}
	// Largest first reads top-down on a horizontal chart
	if horizontal {
		reverse(labels)
		reverse(values)
		reverse(texts)
	}

	extent := r.width
	if horizontal {
		extent = r.height
	}
	bars, err := plotter.NewBarChart(plotter.Values(values), barWidth(extent, len(values)))
	if err != nil {
		return err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	bars.Horizontal = horizontal
	p.Add(bars)

	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		if horizontal {
			xys[i] = plotter.XY{X: v, Y: float64(i)}
		} else {
			xys[i] = plotter.XY{X: float64(i), Y: v}
		}
	}
	valueLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return err
	}
	for i := range valueLabels.TextStyle {
		if horizontal {
			valueLabels.TextStyle[i].XAlign = draw.XLeft
			valueLabels.TextStyle[i].YAlign = draw.YCenter
		} else {
			valueLabels.TextStyle[i].XAlign = draw.XCenter
		}
	}
	valueLabels.Offset = vg.Point{X: vg.Points(3), Y: vg.Points(3)}
	p.Add(valueLabels)

	maxValue := 0.0
	for _, v := range values {
		maxValue = math.Max(maxValue, v)
	}
	if horizontal {
		p.NominalY(labels...)
		p.X.Min = 0
		p.X.Max = maxValue * 1.2
	} else {
		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
		p.Y.Min = 0
		p.Y.Max = maxValue * 1.15
	}
	return nil
}

func (r *Renderer) addGroupedBars(p *plot.Plot, c Chart) error {
	width := barWidth(r.width, len(c.Labels)*len(c.Series))
	for k, s := range c.Series {
		values := make(plotter.Values, len(c.Labels))
		copy(values, s.Values)
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(k)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(k)-float64(len(c.Series)-1)/2) * width
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}
	p.Legend.Top = true
	p.NominalX(shortLabels(c.Labels)...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	return nil
}

func addHistogram(p *plot.Plot, c Chart) error {
	h, err := plotter.NewHist(plotter.Values(c.Samples), histogramBins)
	if err != nil {
		return err
	}
	h.FillColor = barColor
	p.Add(h)
	p.Y.Label.Text = "Frequency"
	return nil
}

// matrixGrid exposes a square matrix as a heat map grid
type matrixGrid [][]float64

func (g matrixGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g matrixGrid) Z(c, r int) float64 { return g[r][c] }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

func addHeatMap(p *plot.Plot, c Chart) error {
	grid := matrixGrid(c.Matrix)
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	var xys plotter.XYs
	var texts []string
	for row := range c.Matrix {
		for col, v := range c.Matrix[row] {
			if math.IsNaN(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(col), Y: float64(row)})
			texts = append(texts, fmt.Sprintf("%.2f", v))
		}
	}
	if len(xys) > 0 {
		values, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return err
		}
		for i := range values.TextStyle {
			values.TextStyle[i].XAlign = draw.XCenter
			values.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(values)
	}

	labels := shortLabels(c.Labels)
	p.NominalX(labels...)
	p.NominalY(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return nil
}

func shortLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		runes := []rune(l)
		if len(runes) > maxLabelRunes {
			l = string(runes[:maxLabelRunes-1]) + "…"
		}
		out[i] = l
	}
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
