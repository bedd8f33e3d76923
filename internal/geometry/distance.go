package geometry

import (
	"math"

	"github.com/paulmach/orb/planar"
)

// degenerateLen is the length below which a segment is treated as a point.
const degenerateLen = 1e-6

// PathLength sums the distances between consecutive points.
//
// Compared with the chord between the first and last point this measures how
// far the pen actually travelled, which is what straightness is judged on.
func PathLength(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	return planar.Length(lineString(points))
}

// PointToLineDistance returns the perpendicular distance from p to the
// infinite line through a and b. When a and b coincide the distance to a is
// returned.
func PointToLineDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	denom := math.Hypot(dx, dy)
	if denom < degenerateLen {
		return p.Dist(a)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / denom
}

// PointToSegmentDistance returns the distance from p to the closest point of
// segment ab. A zero-length segment degrades to point distance.
func PointToSegmentDistance(p, a, b Point) float64 {
	return planar.DistanceFromSegment(a.orb(), b.orb(), p.orb())
}

// PointToPolylineDistance returns the smallest segment distance from p to
// the polyline. Polylines with fewer than two points are infinitely far away.
func PointToPolylineDistance(p Point, polyline []Point) float64 {
	if len(polyline) < 2 {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for i := 1; i < len(polyline); i++ {
		if d := PointToSegmentDistance(p, polyline[i-1], polyline[i]); d < best {
			best = d
		}
	}
	return best
}

// Closedness is the gap between the first and last point relative to diag.
// Values near zero mean the stroke ends where it started.
func Closedness(points []Point, diag float64) float64 {
	if len(points) < 2 || diag <= 0 {
		return 0
	}
	return points[0].Dist(points[len(points)-1]) / diag
}
