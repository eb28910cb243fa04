package deck

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"leadlens/internal/config"
	"leadlens/internal/errors"
)

// 16:9 layout in EMU
const (
	emuPerInch = 914400

	marginLeft    = int64(0.4 * emuPerInch)
	contentWidth  = int64(9.2 * emuPerInch)
	slideWidth    = int64(10.0 * emuPerInch)
	contentTop    = int64(1.0 * emuPerInch)
	contentHeight = int64(4.3 * emuPerInch)

	fontTitle     = 36
	fontSubtitle  = 20
	fontHeading   = 28
	fontBody      = 14
	fontSmall     = 12
	fontTableHead = 11
	fontTableCell = 10
	fontFooter    = 9

	colorPrimary = "FF1F4E79"
	colorAccent  = "FF4472C4"
	colorMuted   = "FF94A3B8"
	colorText    = "FF334155"
	colorPanel   = "FFF8FAFC"
	colorStripe  = "FFF1F5F9"

	tableSeparator = "  │  "
)

func solidFill(argb string) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(argb))
}

func alignCenter(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}

// Builder assembles the analysis presentation
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a deck builder
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "deck"))}
}

// Build renders the presentation and returns the pptx bytes
func (b *Builder) Build(data DeckData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Lead Data Analysis Report"
	}

	p := ppt.New()
	p.GetDocumentProperties().Title = data.Title
	p.GetDocumentProperties().Creator = config.AppName

	b.addTitleSlide(p.GetActiveSlide(), data)
	b.addTextSlide(p.CreateSlide(), "Executive Summary", summaryLines(data))
	b.addTextSlide(p.CreateSlide(), "Dataset Overview", overviewLines(data))
	for _, c := range data.Charts {
		b.addChartSlide(p.CreateSlide(), c)
	}
	if rows := roleRows(data.Roles); len(rows) > 0 {
		b.addTableSlide(p.CreateSlide(), "Role Analysis",
			[]string{"Category", "Leads", "Share", "Top Countries"}, rows)
	}
	if lines := regionLines(data); len(lines) > 0 {
		b.addTextSlide(p.CreateSlide(), "Regional Classification", lines)
	}
	if rows := qualityRows(data.Profile); len(rows) > 0 {
		b.addTableSlide(p.CreateSlide(), "Data Quality Insights",
			[]string{"Column", "Missing", "Missing %"}, rows)
	}
	b.addTextSlide(p.CreateSlide(), "Key Insights & Findings", insightLines(data))
	b.addTextSlide(p.CreateSlide(), "Recommendations", recommendationLines(data))
	b.addClosingSlide(p.CreateSlide(), data)

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, errors.NewExportError("failed to create presentation writer", err)
	}
	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, errors.NewExportError("failed to write presentation", err)
	}
	return buf.Bytes(), nil
}

// Save builds the presentation and writes it to path
func (b *Builder) Save(ctx context.Context, path string, data DeckData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := b.Build(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return errors.NewStorageError("failed to write presentation", err).WithContext("path", path)
	}

	b.logger.InfoContext(ctx, "presentation written",
		slog.String("path", path),
		slog.Int("charts", len(data.Charts)),
		slog.Int("bytes", len(out)))
	return nil
}

func (b *Builder) addBar(slide *ppt.Slide, y, height int64) {
	bar := slide.CreateRichTextShape()
	bar.SetOffsetX(0).SetOffsetY(y)
	bar.SetWidth(slideWidth).SetHeight(height)
	bar.SetFill(solidFill(colorAccent))
}

type textStyle int

const (
	styleTitle textStyle = iota
	styleSubtitle
	styleNote
	styleFooter
)

func (b *Builder) addCenteredText(slide *ppt.Slide, text string, y, height int64, style textStyle) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(marginLeft).SetOffsetY(y)
	shape.SetWidth(contentWidth).SetHeight(height)
	tr := shape.CreateTextRun(text)
	switch style {
	case styleTitle:
		tr.GetFont().SetSize(fontTitle).SetBold(true).SetColor(ppt.NewColor(colorPrimary))
	case styleSubtitle:
		tr.GetFont().SetSize(fontSubtitle).SetColor(ppt.NewColor(colorAccent))
	case styleNote:
		tr.GetFont().SetSize(fontSmall).SetColor(ppt.NewColor(colorMuted))
	default:
		tr.GetFont().SetSize(fontFooter).SetColor(ppt.NewColor(colorMuted))
	}
	alignCenter(shape.GetActiveParagraph())
}

// addLogo places the logo in the top right corner, or a labeled box when
// there is no usable image
func (b *Builder) addLogo(slide *ppt.Slide, logo []byte) {
	x := int64(8.2 * emuPerInch)
	y := int64(0.3 * emuPerInch)
	w := int64(1.4 * emuPerInch)
	h := int64(0.7 * emuPerInch)

	if mime := http.DetectContentType(logo); len(logo) > 0 && strings.HasPrefix(mime, "image/") {
		img := slide.CreateDrawingShape()
		img.SetImageData(logo, mime)
		img.SetOffsetX(x).SetOffsetY(y)
		img.SetWidth(w).SetHeight(h)
		return
	}

	placeholder := slide.CreateRichTextShape()
	placeholder.SetOffsetX(x).SetOffsetY(y)
	placeholder.SetWidth(w).SetHeight(h)
	placeholder.SetFill(solidFill(colorPanel))
	tr := placeholder.CreateTextRun("LOGO")
	tr.GetFont().SetSize(fontSmall).SetBold(true).SetColor(ppt.NewColor(colorMuted))
	alignCenter(placeholder.GetActiveParagraph())
}

func (b *Builder) addTitleSlide(slide *ppt.Slide, data DeckData) {
	b.addBar(slide, 0, int64(0.15*emuPerInch))
	b.addLogo(slide, data.Logo)

	b.addCenteredText(slide, data.Title, int64(1.6*emuPerInch), int64(1.0*emuPerInch), styleTitle)
	if data.Subtitle != "" {
		b.addCenteredText(slide, data.Subtitle, int64(2.7*emuPerInch), int64(0.7*emuPerInch), styleSubtitle)
	}
	if !data.Generated.IsZero() {
		b.addCenteredText(slide, data.Generated.Format("January 2, 2006"), int64(4.0*emuPerInch), int64(0.4*emuPerInch), styleNote)
	}
	b.addCenteredText(slide, "Generated by "+config.AppName, int64(4.8*emuPerInch), int64(0.3*emuPerInch), styleFooter)

	b.addBar(slide, int64(5.5*emuPerInch), int64(0.125*emuPerInch))
}

func (b *Builder) addHeader(slide *ppt.Slide, title string) {
	b.addBar(slide, 0, int64(0.08*emuPerInch))

	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(marginLeft).SetOffsetY(int64(0.3 * emuPerInch))
	shape.SetWidth(contentWidth).SetHeight(int64(0.6 * emuPerInch))
	tr := shape.CreateTextRun(title)
	tr.GetFont().SetSize(fontHeading).SetBold(true).SetColor(ppt.NewColor(colorPrimary))
}

func (b *Builder) addTextSlide(slide *ppt.Slide, title string, lines []string) {
	b.addHeader(slide, title)
	if len(lines) == 0 {
		lines = []string{"No data available."}
	}

	body := slide.CreateRichTextShape()
	body.SetOffsetX(marginLeft).SetOffsetY(contentTop)
	body.SetWidth(contentWidth).SetHeight(contentHeight)
	for i, line := range lines {
		if i > 0 {
			body.CreateParagraph()
		}
		if strings.TrimSpace(line) == "" {
			tr := body.CreateTextRun(" ")
			tr.GetFont().SetSize(6)
			continue
		}
		tr := body.CreateTextRun(line)
		// Section lines end with a colon
		if strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " ") {
			tr.GetFont().SetSize(fontBody).SetBold(true).SetColor(ppt.NewColor(colorPrimary))
			continue
		}
		tr.GetFont().SetSize(fontBody).SetColor(ppt.NewColor(colorText))
	}
}

func (b *Builder) addChartSlide(slide *ppt.Slide, c ChartSlide) {
	b.addHeader(slide, c.Title)

	img := slide.CreateDrawingShape()
	img.SetImageData(c.Image, "image/png")
	img.SetOffsetX(int64(1.2 * emuPerInch)).SetOffsetY(contentTop)
	img.SetWidth(int64(7.6 * emuPerInch)).SetHeight(int64(4.4 * emuPerInch))
}

// addTableSlide draws a header band and striped rows, at most maxTableRows
func (b *Builder) addTableSlide(slide *ppt.Slide, title string, headers []string, rows [][]string) {
	b.addHeader(slide, title)

	total := len(rows)
	if total > maxTableRows {
		rows = rows[:maxTableRows]
	}

	const headerHeight, rowHeight = 0.35, 0.3
	y := 1.0

	header := slide.CreateRichTextShape()
	header.SetOffsetX(marginLeft).SetOffsetY(int64(y * emuPerInch))
	header.SetWidth(contentWidth).SetHeight(int64(headerHeight * emuPerInch))
	header.SetFill(solidFill(colorAccent))
	htr := header.CreateTextRun(strings.Join(headers, tableSeparator))
	htr.GetFont().SetSize(fontTableHead).SetBold(true).SetColor(ppt.ColorWhite)
	alignCenter(header.GetActiveParagraph())
	y += headerHeight

	for i, row := range rows {
		shape := slide.CreateRichTextShape()
		shape.SetOffsetX(marginLeft).SetOffsetY(int64(y * emuPerInch))
		shape.SetWidth(contentWidth).SetHeight(int64(rowHeight * emuPerInch))
		if i%2 == 0 {
			shape.SetFill(solidFill(colorPanel))
		} else {
			shape.SetFill(solidFill(colorStripe))
		}
		tr := shape.CreateTextRun(strings.Join(row, tableSeparator))
		tr.GetFont().SetSize(fontTableCell).SetColor(ppt.NewColor(colorText))
		alignCenter(shape.GetActiveParagraph())
		y += rowHeight
	}

	if total > len(rows) {
		b.addCenteredText(slide, fmt.Sprintf("Showing %d of %d rows", len(rows), total),
			int64(5.2*emuPerInch), int64(0.25*emuPerInch), styleFooter)
	}
}

func (b *Builder) addClosingSlide(slide *ppt.Slide, data DeckData) {
	b.addBar(slide, 0, int64(0.15*emuPerInch))
	b.addLogo(slide, data.Logo)

	b.addCenteredText(slide, "Thank You", int64(2.0*emuPerInch), int64(1.0*emuPerInch), styleTitle)
	b.addCenteredText(slide, "Questions?", int64(3.2*emuPerInch), int64(0.5*emuPerInch), styleSubtitle)

	b.addBar(slide, int64(5.5*emuPerInch), int64(0.125*emuPerInch))
}
