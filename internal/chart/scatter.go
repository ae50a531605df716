package chart

import (
	"errors"
	"image"
	"strconv"

	"github.com/ignite/value-matrix/internal/matrix"
)

// ErrNilReport indicates a render was attempted without a report.
var ErrNilReport = errors.New("nil report")

// Scatter geometry: y spans the five tier stages with headroom above
// and below; zones and threshold lines stop at stage 4.5.
const (
	scatterYMin   = -0.2
	scatterYMax   = 4.7
	scatterYZones = 4.5
)

// ScatterConfig controls the rendered scatter image.
type ScatterConfig struct {
	Width     int
	Height    int
	ShowZones bool
}

// DefaultScatterConfig returns the standard 900x600 render with
// quadrant zones visible.
func DefaultScatterConfig() ScatterConfig {
	return ScatterConfig{Width: 900, Height: 600, ShowZones: true}
}

func (c ScatterConfig) withDefaults() ScatterConfig {
	d := DefaultScatterConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	return c
}

// scatterLayout maps data space onto pixels.
type scatterLayout struct {
	plot       image.Rectangle
	xMin, xMax float64
	yMin, yMax float64
}

func newScatterLayout(width, height int, scaleMax float64) scatterLayout {
	if scaleMax <= 0 {
		scaleMax = 1
	}
	return scatterLayout{
		plot: image.Rect(120, 40, width-30, height-60),
		xMin: -0.05 * scaleMax,
		xMax: 1.05 * scaleMax,
		yMin: scatterYMin,
		yMax: scatterYMax,
	}
}

func (l scatterLayout) xPix(v float64) int {
	frac := (v - l.xMin) / (l.xMax - l.xMin)
	return l.plot.Min.X + int(frac*float64(l.plot.Dx())+0.5)
}

func (l scatterLayout) yPix(v float64) int {
	frac := (v - l.yMin) / (l.yMax - l.yMin)
	return l.plot.Max.Y - int(frac*float64(l.plot.Dy())+0.5)
}

// RenderScatter draws the quadrant scatter for a report as a PNG:
// value score on x, engagement stage on y, one bubble per record sized
// and colored by its classification.
func RenderScatter(report *matrix.Report, cfg ScatterConfig) ([]byte, error) {
	if report == nil {
		return nil, ErrNilReport
	}
	cfg = cfg.withDefaults()

	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	fillRect(img, img.Bounds(), paperColor)

	l := newScatterLayout(cfg.Width, cfg.Height, report.ScaleMax)
	fillRect(img, l.plot, plotColor)

	// Data-space drawing goes through the plot sub-image so bubbles
	// clip at the plot edge.
	plot := img.SubImage(l.plot).(*image.RGBA)

	// Gridlines
	for i := 0; i <= 4; i++ {
		x := l.xPix(report.ScaleMax * float64(i) / 4)
		vLine(plot, x, l.plot.Min.Y, l.plot.Max.Y, gridColor)
	}
	for _, tier := range matrix.Tiers() {
		y := l.yPix(tier.Stage)
		hLine(plot, l.plot.Min.X, l.plot.Max.X, y, gridColor)
	}

	th := report.Thresholds
	if cfg.ShowZones {
		drawZones(plot, l, th, report.ScaleMax)
	}

	// Threshold cross-hairs
	dashedVLine(plot, l.xPix(th.Score), l.yPix(scatterYZones), l.yPix(0), thresholdColor)
	dashedHLine(plot, l.xPix(0), l.xPix(report.ScaleMax), l.yPix(th.Stage), thresholdColor)

	if cfg.ShowZones {
		drawZoneLabels(plot, l, th, report.ScaleMax)
	}

	for _, rec := range report.Records {
		cx := l.xPix(rec.ValueScore)
		cy := l.yPix(rec.Stage)
		r := int(rec.BubbleSize / 2)
		if r < 3 {
			r = 3
		}
		fillCircle(plot, cx, cy, r, hexColor(rec.Color))
		ringCircle(plot, cx, cy, r, 2, outlineColor)
	}

	drawScatterAxes(img, l, report.ScaleMax)
	drawStringCentered(img, cfg.Width/2, 25, textColor, "Sales Value Matrix")

	return encodePNG(img)
}

func drawZones(plot *image.RGBA, l scatterLayout, th matrix.Thresholds, scaleMax float64) {
	zones := []struct {
		quadrant       matrix.Quadrant
		x0, y0, x1, y1 float64
	}{
		{matrix.QuadrantStrategic, th.Score, th.Stage, scaleMax, scatterYZones},
		{matrix.QuadrantGrowth, 0, th.Stage, th.Score, scatterYZones},
		{matrix.QuadrantHighValue, th.Score, 0, scaleMax, th.Stage},
		{matrix.QuadrantBasic, 0, 0, th.Score, th.Stage},
	}
	for _, z := range zones {
		rect := image.Rect(l.xPix(z.x0), l.yPix(z.y1), l.xPix(z.x1), l.yPix(z.y0))
		fillRect(plot, rect, withAlpha(hexColor(z.quadrant.Color()), 20))
	}
}

func drawZoneLabels(plot *image.RGBA, l scatterLayout, th matrix.Thresholds, scaleMax float64) {
	labels := []struct {
		quadrant matrix.Quadrant
		x, y     float64
	}{
		{matrix.QuadrantStrategic, (th.Score + scaleMax) / 2, (th.Stage + scatterYZones) / 2},
		{matrix.QuadrantGrowth, th.Score / 2, (th.Stage + scatterYZones) / 2},
		{matrix.QuadrantHighValue, (th.Score + scaleMax) / 2, th.Stage / 2},
		{matrix.QuadrantBasic, th.Score / 2, th.Stage / 2},
	}
	for _, lb := range labels {
		drawStringCentered(plot, l.xPix(lb.x), l.yPix(lb.y), hexColor(lb.quadrant.Color()), string(lb.quadrant))
	}
}

func drawScatterAxes(img *image.RGBA, l scatterLayout, scaleMax float64) {
	// X ticks at quarters of the scale
	for i := 0; i <= 4; i++ {
		v := scaleMax * float64(i) / 4
		drawStringCentered(img, l.xPix(v), l.plot.Max.Y+18, textColor, formatTick(v))
	}
	drawStringCentered(img, l.plot.Min.X+l.plot.Dx()/2, l.plot.Max.Y+42, textColor, "Value Adoption Score")

	// Y ticks labeled with tier names
	for _, tier := range matrix.Tiers() {
		label := tier.Label
		drawString(img, l.plot.Min.X-8-stringWidth(label), l.yPix(tier.Stage)+4, textColor, label)
	}
	drawStringVertical(img, 6, l.plot.Min.Y+l.plot.Dy()/2-stringWidth("Engagement Level")/2, textColor, "Engagement Level")
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
