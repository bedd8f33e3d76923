package geometry

import (
	"math"

	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// MinSimplifyDistance is the floor applied by SimplifyDistance.
const MinSimplifyDistance = 1.5

// SimplifyDistance returns the radial reduction distance used for a stroke
// of the given width.
func SimplifyDistance(width float64) float64 {
	return math.Max(MinSimplifyDistance, width*0.5)
}

// Simplify walks points once and keeps a point only when it is at least
// minDist from the previously kept point. The first point is always kept and
// the last original point is appended if the walk dropped it, so the result
// spans the same stroke. The input slice is not modified.
//
// Simplify never fails: a stroke that collapses returns whatever survived,
// possibly a single point, and callers decide whether that is enough.
// Applying Simplify twice with the same distance returns the same points.
func Simplify(points []Point, minDist float64) []Point {
	if len(points) == 0 {
		return []Point{}
	}
	if len(points) == 1 {
		return []Point{points[0]}
	}

	// Radial keeps points strictly beyond its threshold; the next smaller
	// double turns that into d >= minDist.
	threshold := math.Nextafter(minDist, math.Inf(-1))
	reduced := simplify.Radial(planar.Distance, threshold).LineString(lineString(points))

	out := make([]Point, len(reduced))
	for i, p := range reduced {
		out[i] = fromOrb(p)
	}
	return out
}

// Downsample picks at most max points spread evenly by index, always
// including both endpoints. Shorter inputs are returned unchanged.
func Downsample(points []Point, max int) []Point {
	if max < 2 || len(points) <= max {
		return points
	}
	out := make([]Point, max)
	n := len(points)
	for i := 0; i < max; i++ {
		idx := int(math.Floor(float64(i) / float64(max-1) * float64(n-1)))
		out[i] = points[idx]
	}
	return out
}
