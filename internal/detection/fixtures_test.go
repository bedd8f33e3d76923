package detection

import (
	"math"
	"math/rand/v2"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

const testSeed = 42

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(testSeed, testSeed^pcgIncrement))
}

// segmentStroke samples n points from a to b. Odd samples are pushed jitter
// pixels to one side of the segment, even samples to the other.
func segmentStroke(a, b geometry.Point, n int, jitter float64) []geometry.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	nx, ny := -dy/l, dx/l

	pts := make([]geometry.Point, n)
	for i := range pts {
		f := float64(i) / float64(n-1)
		off := jitter
		if i%2 == 0 {
			off = -jitter
		}
		pts[i] = geometry.Point{X: a.X + dx*f + nx*off, Y: a.Y + dy*f + ny*off}
	}
	return pts
}

// arcStroke samples n points on a circle starting at angle 0 and sweeping
// sweepDeg degrees. Samples alternate jitter pixels inside and outside the
// radius.
func arcStroke(cx, cy, r, sweepDeg float64, n int, jitter float64) []geometry.Point {
	pts := make([]geometry.Point, n)
	for i := range pts {
		theta := float64(i) / float64(n-1) * sweepDeg * math.Pi / 180
		rr := r + jitter
		if i%2 == 0 {
			rr = r - jitter
		}
		pts[i] = geometry.Point{X: cx + rr*math.Cos(theta), Y: cy + rr*math.Sin(theta)}
	}
	return pts
}

// quadraticStroke samples y = a(x-h)² + k at n evenly spaced x in [x0, x1].
func quadraticStroke(a, h, k, x0, x1 float64, n int) []geometry.Point {
	pts := make([]geometry.Point, n)
	for i := range pts {
		x := x0 + (x1-x0)*float64(i)/float64(n-1)
		pts[i] = geometry.Point{X: x, Y: a*(x-h)*(x-h) + k}
	}
	return pts
}

// transpose swaps X and Y of every point.
func transpose(points []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[i] = geometry.Point{X: p.Y, Y: p.X}
	}
	return out
}

func diagOf(points []geometry.Point) float64 {
	return math.Max(1, geometry.BoundsOf(points).Diagonal())
}
