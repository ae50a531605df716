// Package chart renders report visuals as PNG images: the quadrant
// scatter and the feature-adoption heatmap. Rasterization is plain
// image/draw work with a fixed bitmap font, no browser in the loop.
package chart

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Shared palette. Quadrant colors come from the records themselves.
var (
	paperColor     = color.NRGBA{0xf8, 0xf9, 0xfa, 0xff}
	plotColor      = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	gridColor      = color.NRGBA{0xf0, 0xf2, 0xf6, 0xff}
	textColor      = color.NRGBA{0x34, 0x3a, 0x40, 0xff}
	thresholdColor = color.NRGBA{0x55, 0x55, 0x55, 0xff}
	outlineColor   = color.NRGBA{0xff, 0xff, 0xff, 0xff}
)

var face = basicfont.Face7x13

// hexColor parses a #RRGGBB string. Unparseable input comes back gray,
// matching the unclassified fallback.
func hexColor(s string) color.NRGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{0x77, 0x77, 0x77, 0xff}
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(s[1+2*i])
		lo, ok2 := hexNibble(s[2+2*i])
		if !ok1 || !ok2 {
			return color.NRGBA{0x77, 0x77, 0x77, 0xff}
		}
		v[i] = hi<<4 | lo
	}
	return color.NRGBA{v[0], v[1], v[2], 0xff}
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// withAlpha returns c at the given opacity.
func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, a}
}

// ========== Primitives ==========

func fillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func hLine(dst *image.RGBA, x0, x1, y int, c color.Color) {
	fillRect(dst, image.Rect(x0, y, x1, y+1), c)
}

func vLine(dst *image.RGBA, x, y0, y1 int, c color.Color) {
	fillRect(dst, image.Rect(x, y0, x+1, y1), c)
}

// dashedHLine draws a 2px horizontal dashed line (6 on, 4 off).
func dashedHLine(dst *image.RGBA, x0, x1, y int, c color.Color) {
	for x := x0; x < x1; x += 10 {
		end := x + 6
		if end > x1 {
			end = x1
		}
		fillRect(dst, image.Rect(x, y-1, end, y+1), c)
	}
}

// dashedVLine draws a 2px vertical dashed line (6 on, 4 off).
func dashedVLine(dst *image.RGBA, x, y0, y1 int, c color.Color) {
	for y := y0; y < y1; y += 10 {
		end := y + 6
		if end > y1 {
			end = y1
		}
		fillRect(dst, image.Rect(x-1, y, x+1, end), c)
	}
}

// line draws a 1px segment between two points.
func line(dst *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		dst.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// thickLine draws a segment at roughly 2px weight.
func thickLine(dst *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	line(dst, x0, y0, x1, y1, c)
	line(dst, x0, y0+1, x1, y1+1, c)
	line(dst, x0+1, y0, x1+1, y1, c)
}

// fillCircle draws a filled disc.
func fillCircle(dst *image.RGBA, cx, cy, r int, c color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				dst.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

// ringCircle draws a circle outline of the given stroke width.
func ringCircle(dst *image.RGBA, cx, cy, r, width int, c color.Color) {
	inner := r - width
	if inner < 0 {
		inner = 0
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := dx*dx + dy*dy
			if d <= r*r && d > inner*inner {
				dst.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ========== Text ==========

func stringWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawString renders s with its baseline at (x, y).
func drawString(dst *image.RGBA, x, y int, c color.Color, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawStringCentered renders s horizontally centered on cx.
func drawStringCentered(dst *image.RGBA, cx, y int, c color.Color, s string) {
	drawString(dst, cx-stringWidth(s)/2, y, c, s)
}

// drawStringVertical renders s rotated 90° counter-clockwise, reading
// bottom to top, with the top-left of the rotated block at (x, y).
func drawStringVertical(dst *image.RGBA, x, y int, c color.Color, s string) {
	w := stringWidth(s)
	h := face.Height
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	drawString(tmp, 0, face.Ascent, c, s)

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if _, _, _, a := tmp.At(sx, sy).RGBA(); a > 0 {
				dst.Set(x+sy, y+(w-1-sx), tmp.At(sx, sy))
			}
		}
	}
}

// truncate shortens s to at most n characters, ellipsized.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// encodePNG finishes a render.
func encodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
