package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

// supersample is the factor previews are drawn at before being scaled down,
// which smooths edges.
const supersample = 2

// Output size bounds, in pixels, for either side of a preview.
const (
	MinPreviewSize = 16
	MaxPreviewSize = 4096
)

// CheckPreviewSize reports whether w x h lies within the preview size bounds.
func CheckPreviewSize(w, h int) error {
	if w < MinPreviewSize || h < MinPreviewSize || w > MaxPreviewSize || h > MaxPreviewSize {
		return fmt.Errorf("size %dx%d out of range [%d, %d]", w, h, MinPreviewSize, MaxPreviewSize)
	}
	return nil
}

// PreviewOptions controls how a stroke preview is drawn.
type PreviewOptions struct {
	// Width and Height are the output size in pixels.
	Width  int
	Height int

	// Padding is the margin in output pixels kept free around the drawing.
	Padding int

	// Background, Stroke and Shape are "#RRGGBB" colors for the canvas, the
	// freehand stroke and the recognized shape.
	Background string
	Stroke     string
	Shape      string

	// Blur is the Gaussian radius, in output pixels, applied to the freehand
	// layer. Zero draws it sharp.
	Blur float64

	// GridSpacing draws a world-space grid every GridSpacing units when
	// positive. ShowCoordinates labels its intersections.
	GridSpacing     float64
	ShowCoordinates bool
}

// PreviewResult contains the rendered preview.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Scale is output pixels per world unit.
	Scale float64 `json:"scale"`
}

// RenderPreview draws a freehand stroke and, optionally, the shape it was
// recognized as, and returns the picture as a base64 PNG.
//
// Parameters:
//   - stroke: the raw freehand samples.
//   - strokeWidth: pen width in world units.
//   - shape: display points of the recognized shape; nil to draw only the
//     stroke.
//   - opts: size, colors and decorations.
//
// Returns:
//   - *PreviewResult: the encoded image and the world-to-pixel scale.
//   - error: Non-nil if a color is invalid, the size is not positive or
//     encoding fails.
//
// # Layout
//
// The view is fitted to the bounding box of the stroke and shape together,
// preserving aspect ratio and centered inside the padding. Y grows downward,
// as in the stroke's own coordinates.
func RenderPreview(stroke []geometry.Point, strokeWidth float64, shape []geometry.Point, opts PreviewOptions) (*PreviewResult, error) {
	if err := CheckPreviewSize(opts.Width, opts.Height); err != nil {
		return nil, fmt.Errorf("invalid preview %w", err)
	}
	bg, err := parseColor(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	strokeColor, err := parseColor(opts.Stroke)
	if err != nil {
		return nil, fmt.Errorf("stroke: %w", err)
	}
	shapeColor, err := parseColor(opts.Shape)
	if err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}

	w, h := opts.Width*supersample, opts.Height*supersample
	view := fitView(append(append([]geometry.Point{}, stroke...), shape...), w, h, opts.Padding*supersample)

	canvas := imaging.New(w, h, bg)
	if opts.GridSpacing > 0 {
		drawGrid(canvas, view, opts.GridSpacing, opts.ShowCoordinates)
	}

	penPx := math.Max(1, strokeWidth*view.scale)

	freehand := image.NewRGBA(image.Rect(0, 0, w, h))
	drawPolyline(freehand, view.project(stroke), penPx, strokeColor)
	var layer image.Image = freehand
	if opts.Blur > 0 {
		layer = blur.Gaussian(freehand, opts.Blur*supersample)
	}
	canvas = imaging.Overlay(canvas, layer, image.Point{}, 1.0)

	if len(shape) > 0 {
		drawPolyline(canvas, view.project(shape), math.Max(2, penPx*0.6), shapeColor)
	}

	out := imaging.Resize(canvas, opts.Width, opts.Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       opts.Width,
		Height:      opts.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Scale:       view.scale / supersample,
	}, nil
}

// parseColor parses "#RRGGBB" or "#RGB" into an opaque color.
func parseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// viewport maps world coordinates to canvas pixels.
type viewport struct {
	scale         float64
	offX, offY    float64
	width, height int
	minX, minY    float64
}

func fitView(points []geometry.Point, w, h, pad int) viewport {
	b := geometry.BoundsOf(points)
	bw := math.Max(1, b.Width())
	bh := math.Max(1, b.Height())

	availW := math.Max(1, float64(w-2*pad))
	availH := math.Max(1, float64(h-2*pad))
	scale := math.Min(availW/bw, availH/bh)

	return viewport{
		scale:  scale,
		offX:   (float64(w) - bw*scale) / 2,
		offY:   (float64(h) - bh*scale) / 2,
		width:  w,
		height: h,
		minX:   b.MinX,
		minY:   b.MinY,
	}
}

func (v viewport) toPixel(p geometry.Point) (float64, float64) {
	return v.offX + (p.X-v.minX)*v.scale, v.offY + (p.Y-v.minY)*v.scale
}

func (v viewport) toWorld(px, py float64) geometry.Point {
	return geometry.Point{X: v.minX + (px-v.offX)/v.scale, Y: v.minY + (py-v.offY)/v.scale}
}

func (v viewport) project(points []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		x, y := v.toPixel(p)
		out[i] = geometry.Point{X: x, Y: y}
	}
	return out
}

// drawPolyline fills a round-capped, round-joined pen of the given width
// along pts. Every piece is wound the same way so overlaps do not cancel.
func drawPolyline(dst draw.Image, pts []geometry.Point, width float64, c color.Color) {
	if len(pts) == 0 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	hw := width / 2

	for _, p := range pts {
		addDisc(z, p, hw)
	}
	for i := 1; i < len(pts); i++ {
		a, e := pts[i-1], pts[i]
		l := a.Dist(e)
		if l < 1e-9 {
			continue
		}
		nx, ny := -(e.Y-a.Y)/l*hw, (e.X-a.X)/l*hw
		z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		z.LineTo(float32(e.X+nx), float32(e.Y+ny))
		z.LineTo(float32(e.X-nx), float32(e.Y-ny))
		z.LineTo(float32(a.X-nx), float32(a.Y-ny))
		z.ClosePath()
	}

	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// discSides is the polygon resolution of round caps.
const discSides = 16

func addDisc(z *vector.Rasterizer, c geometry.Point, r float64) {
	for i := 0; i < discSides; i++ {
		theta := -float64(i) / discSides * 2 * math.Pi
		x := float32(c.X + r*math.Cos(theta))
		y := float32(c.Y + r*math.Sin(theta))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}
