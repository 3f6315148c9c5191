package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkLength = 5

	// Border sizes in pixels, used only when annotations are drawn
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	subcarrierLabelStep = 5
	targetTimeLabels    = 8
)

// RenderConfig holds all configuration options for heatmap visualization
type RenderConfig struct {
	ColorTheme ColorTheme
	CellWidth  int // Horizontal pixels per subcarrier
	FontPath   string
	FontSize   float64
	RxAntenna  int
	TxAntenna  int
	Annotate   bool
}

// HeatmapRenderer draws accumulated CSI power rows as a heatmap image,
// one pixel row per frame.
type HeatmapRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewHeatmapRenderer creates a heatmap renderer with the given
// configuration. Annotations require a font; without one the heatmap is
// rendered borderless.
func NewHeatmapRenderer(config RenderConfig) (*HeatmapRenderer, error) {
	if config.CellWidth < 1 {
		config.CellWidth = 1
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.Annotate && config.FontPath == "" {
		return nil, fmt.Errorf("annotations require a font file")
	}
	return &HeatmapRenderer{config: config}, nil
}

// Render creates an image of the heatmap data.
func (r *HeatmapRenderer) Render(data *HeatmapData) (*image.RGBA, error) {
	var borders struct{ Top, Left, Bottom, Right int }
	if r.config.Annotate {
		borders.Top = defaultTopBorder
		borders.Left = defaultLeftBorder
		borders.Bottom = defaultBottomBorder
		borders.Right = defaultRightBorder
	}

	cellsWidth := data.Width * r.config.CellWidth
	fullWidth := cellsWidth + borders.Left + borders.Right
	fullHeight := data.Height + borders.Top + borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	bounds := data.BoundsTracker.Current()
	if r.colorMap == nil {
		r.colorMap = NewColorMapper(r.config.ColorTheme, bounds)
	} else {
		r.colorMap.UpdateBounds(bounds)
	}

	if r.config.Annotate {
		ann, err := newAnnotator(annotatorConfig{
			FontPath:  r.config.FontPath,
			FontSize:  r.config.FontSize,
			CellWidth: r.config.CellWidth,
			RxAntenna: r.config.RxAntenna,
			TxAntenna: r.config.TxAntenna,
			Borders:   borders,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, data); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	area := image.Rect(borders.Left, borders.Top, borders.Left+cellsWidth, borders.Top+data.Height)
	r.renderCells(img, area, data)

	return img, nil
}

func (r *HeatmapRenderer) renderCells(img *image.RGBA, area image.Rectangle, data *HeatmapData) {
	for y, row := range data.Rows {
		imgY := area.Min.Y + y
		for sc, power := range row {
			c := r.colorMap.GetColor(power)
			x0 := area.Min.X + sc*r.config.CellWidth
			for x := x0; x < x0+r.config.CellWidth; x++ {
				img.Set(x, imgY, c)
			}
		}
	}
}

type annotatorConfig struct {
	FontPath  string
	FontSize  float64
	CellWidth int
	RxAntenna int
	TxAntenna int
	Borders   struct{ Top, Left, Bottom, Right int }
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	fontBytes, err := os.ReadFile(config.FontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}
	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, data *HeatmapData) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawSubcarrierScale(img, data); err != nil {
		return fmt.Errorf("drawing subcarrier scale: %w", err)
	}
	if err := a.drawTimeScale(img, data); err != nil {
		return fmt.Errorf("drawing time scale: %w", err)
	}
	if err := a.drawInfoBar(img, data); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}
	return nil
}

func (a *annotator) drawSubcarrierScale(img *image.RGBA, data *HeatmapData) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.Borders.Top - fontHeight/2

	for sc := 0; sc < data.Width; sc += subcarrierLabelStep {
		x := a.config.Borders.Left + sc*a.config.CellWidth + a.config.CellWidth/2

		for y := a.config.Borders.Top - tickMarkLength; y < a.config.Borders.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := fmt.Sprintf("%d", sc)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing subcarrier label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, data *HeatmapData) error {
	if data.Height == 0 {
		return nil
	}

	rowStep := data.Height / targetTimeLabels
	if rowStep < 1 {
		rowStep = 1
	}

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for y := 0; y < data.Height; y += rowStep {
		imgY := y + a.config.Borders.Top

		for x := a.config.Borders.Left - tickMarkLength; x < a.config.Borders.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		textY := imgY + fontHeight/2 - metrics.Descent.Round()
		label := fmt.Sprintf("%.2fs", data.Offsets[y])
		pt := freetype.Pt(10, textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, data *HeatmapData) error {
	units := "raw"
	if data.Scaled {
		units = "sqrt(SNR)"
	}
	info := fmt.Sprintf("Subcarriers: %d; Span: %.2fs - %.2fs; Antennas: rx %d / tx %d; Units: %s",
		data.Width, data.OffsetStart, data.OffsetEnd,
		a.config.RxAntenna, a.config.TxAntenna, units)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(info, pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}
