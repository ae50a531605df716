package chart

import (
	"image"
	"image/color"

	"github.com/ignite/value-matrix/internal/matrix"
)

// Heatmap cell palette.
var (
	adoptedColor    = color.NRGBA{0x4c, 0x72, 0xb0, 0xff}
	notAdoptedColor = color.NRGBA{0xf0, 0xf0, 0xf0, 0xff}
	checkColor      = color.NRGBA{0x2c, 0x3e, 0x50, 0xff}
	crossColor      = color.NRGBA{0xad, 0xb5, 0xbd, 0xff}
)

// HeatmapConfig controls cell geometry; the canvas sizes itself from
// the record and feature counts.
type HeatmapConfig struct {
	CellWidth  int
	CellHeight int
}

// DefaultHeatmapConfig returns the standard cell size.
func DefaultHeatmapConfig() HeatmapConfig {
	return HeatmapConfig{CellWidth: 46, CellHeight: 28}
}

func (c HeatmapConfig) withDefaults() HeatmapConfig {
	d := DefaultHeatmapConfig()
	if c.CellWidth <= 0 {
		c.CellWidth = d.CellWidth
	}
	if c.CellHeight <= 0 {
		c.CellHeight = d.CellHeight
	}
	return c
}

// heatmapLayout is the computed grid geometry.
type heatmapLayout struct {
	left, top     int
	right, bottom int
	cellW, cellH  int
	cols, rows    int
}

func newHeatmapLayout(report *matrix.Report, cfg HeatmapConfig) heatmapLayout {
	l := heatmapLayout{
		top:   40,
		right: 20,
		cellW: cfg.CellWidth,
		cellH: cfg.CellHeight,
		cols:  len(report.Records),
		rows:  len(report.Features),
	}

	// Left margin fits the longest feature name, capped
	maxFeature := 0
	for _, f := range report.Features {
		if w := stringWidth(f); w > maxFeature {
			maxFeature = w
		}
	}
	l.left = maxFeature + 16
	if l.left > 160 {
		l.left = 160
	}

	// Bottom margin fits the longest identifier, rotated
	maxID := 0
	for _, rec := range report.Records {
		if w := stringWidth(rec.ID); w > maxID {
			maxID = w
		}
	}
	l.bottom = maxID + 16
	if l.bottom > 130 {
		l.bottom = 130
	}
	if l.bottom < 30 {
		l.bottom = 30
	}
	return l
}

func (l heatmapLayout) width() int  { return l.left + l.cols*l.cellW + l.right }
func (l heatmapLayout) height() int { return l.top + l.rows*l.cellH + l.bottom }

// cellRect returns the pixel rectangle of the cell at feature row r,
// record column c.
func (l heatmapLayout) cellRect(r, c int) image.Rectangle {
	x := l.left + c*l.cellW
	y := l.top + r*l.cellH
	return image.Rect(x, y, x+l.cellW, y+l.cellH)
}

// RenderHeatmap draws the feature-adoption grid as a PNG: one column
// per record ordered by value score descending, one row per feature,
// adopted cells in blue with a check, the rest light gray with a cross.
func RenderHeatmap(report *matrix.Report, cfg HeatmapConfig) ([]byte, error) {
	if report == nil {
		return nil, ErrNilReport
	}
	cfg = cfg.withDefaults()

	l := newHeatmapLayout(report, cfg)
	img := image.NewRGBA(image.Rect(0, 0, l.width(), l.height()))
	fillRect(img, img.Bounds(), paperColor)

	ranked := report.RankedByScore()

	for c, rec := range ranked {
		for r := range report.Features {
			rect := l.cellRect(r, c)
			adopted := r < len(rec.Breakdown) && rec.Breakdown[r].Adopted
			if adopted {
				fillRect(img, rect, adoptedColor)
				drawCheck(img, rect)
			} else {
				fillRect(img, rect, notAdoptedColor)
				drawCross(img, rect)
			}
		}
	}

	// Feature labels, right-aligned against the grid
	maxChars := (l.left - 12) / 7
	for r, f := range report.Features {
		label := truncate(f, maxChars)
		y := l.top + r*l.cellH + l.cellH/2 + 4
		drawString(img, l.left-8-stringWidth(label), y, textColor, label)
	}

	// Identifier labels, rotated under each column
	idChars := (l.bottom - 10) / 7
	for c, rec := range ranked {
		label := truncate(rec.ID, idChars)
		x := l.left + c*l.cellW + l.cellW/2 - face.Height/2
		drawStringVertical(img, x, l.top+l.rows*l.cellH+6, textColor, label)
	}

	drawString(img, l.left, 24, textColor, "Feature Adoption")
	drawHeatmapLegend(img, l)

	return encodePNG(img)
}

func drawHeatmapLegend(img *image.RGBA, l heatmapLayout) {
	const swatch = 12
	x := l.width() - l.right - stringWidth("Not Adopted") - swatch - 4
	fillRect(img, image.Rect(x, 14, x+swatch, 14+swatch), notAdoptedColor)
	drawString(img, x+swatch+4, 24, textColor, "Not Adopted")

	x -= stringWidth("Adopted") + swatch + 20
	fillRect(img, image.Rect(x, 14, x+swatch, 14+swatch), adoptedColor)
	drawString(img, x+swatch+4, 24, textColor, "Adopted")
}

func drawCheck(img *image.RGBA, rect image.Rectangle) {
	cx := rect.Min.X + rect.Dx()/2
	cy := rect.Min.Y + rect.Dy()/2
	s := rect.Dx()
	if rect.Dy() < s {
		s = rect.Dy()
	}
	thickLine(img, cx-s/4, cy, cx-s/10, cy+s/6, checkColor)
	thickLine(img, cx-s/10, cy+s/6, cx+s/4, cy-s/4, checkColor)
}

func drawCross(img *image.RGBA, rect image.Rectangle) {
	cx := rect.Min.X + rect.Dx()/2
	cy := rect.Min.Y + rect.Dy()/2
	s := rect.Dx()
	if rect.Dy() < s {
		s = rect.Dy()
	}
	a := s / 5
	thickLine(img, cx-a, cy-a, cx+a, cy+a, crossColor)
	thickLine(img, cx-a, cy+a, cx+a, cy-a, crossColor)
}
