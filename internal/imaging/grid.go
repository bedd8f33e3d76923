package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

var (
	gridColor  = color.NRGBA{R: 0, G: 120, B: 215, A: 60}
	labelColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	labelBg    = color.NRGBA{R: 0, G: 0, B: 0, A: 160}
)

// drawGrid draws world-space grid lines every spacing units across the
// canvas, labelling each intersection with its world coordinates when
// showCoordinates is set. Lines closer than 8 pixels are skipped.
func drawGrid(img *image.NRGBA, v viewport, spacing float64, showCoordinates bool) {
	if spacing*v.scale < 8 {
		return
	}

	topLeft := v.toWorld(0, 0)
	bottomRight := v.toWorld(float64(v.width), float64(v.height))

	var xs, ys []int
	startX, n := gridSteps(topLeft.X, bottomRight.X, spacing, v.width)
	for i := 0; i < n; i++ {
		px, _ := v.toPixel(geometry.Pt((startX+float64(i))*spacing, 0))
		xs = append(xs, int(math.Round(px)))
	}
	startY, n := gridSteps(topLeft.Y, bottomRight.Y, spacing, v.height)
	for i := 0; i < n; i++ {
		_, py := v.toPixel(geometry.Pt(0, (startY+float64(i))*spacing))
		ys = append(ys, int(math.Round(py)))
	}

	line := image.NewUniform(gridColor)
	for _, x := range xs {
		draw.Draw(img, image.Rect(x, 0, x+1, v.height), line, image.Point{}, draw.Over)
	}
	for _, y := range ys {
		draw.Draw(img, image.Rect(0, y, v.width, y+1), line, image.Point{}, draw.Over)
	}

	if !showCoordinates {
		return
	}
	for _, y := range ys {
		for _, x := range xs {
			w := v.toWorld(float64(x), float64(y))
			label := fmt.Sprintf("%d,%d", int(math.Round(w.X)), int(math.Round(w.Y)))
			drawLabel(img, x+2, y+2, label, labelColor, labelBg)
		}
	}
}

// gridSteps returns the first multiple of spacing at or after lo, in units of
// spacing, and how many multiples fall in [lo, hi], at most pixels+1. The
// count is computed up front since wx += spacing stops advancing once wx is
// large enough that spacing is below its precision.
func gridSteps(lo, hi, spacing float64, pixels int) (float64, int) {
	start := math.Ceil(lo / spacing)
	steps := math.Floor(hi/spacing) - start + 1
	if math.IsNaN(steps) || steps <= 0 {
		return start, 0
	}
	return start, int(math.Min(steps, float64(pixels+1)))
}

// glyphs is a 3x5 pixel font for coordinate labels.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
	'-': {"000", "000", "111", "000", "000"},
}

// drawLabel draws text at (x, y) on a filled background box.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.Color) {
	const (
		charWidth   = 4
		labelHeight = 7
	)
	box := image.Rect(x-1, y-1, x+len(text)*charWidth, y+labelHeight)
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	bounds := img.Bounds()
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if p := image.Pt(cx+col, y+row); p.In(bounds) {
					img.Set(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}
