package detection

import (
	"math"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

// Display resolution of regenerated shapes.
const (
	CircleSegments   = 120
	ParabolaSegments = 140

	minParabolaSegments = 30
)

// Materialize regenerates a display polyline from an analytic shape.
//
// A line yields its two endpoints. A circle yields CircleSegments+1 points
// starting at angle 0, the last repeating the first. A parabola yields
// ParabolaSegments+1 points evenly spaced in t across [TMin, TMax].
func Materialize(s Shape) []geometry.Point {
	switch v := s.(type) {
	case Line:
		return []geometry.Point{v.P1, v.P2}
	case Circle:
		return circlePoints(v, CircleSegments)
	case Parabola:
		return parabolaPoints(v, ParabolaSegments)
	default:
		return nil
	}
}

func circlePoints(c Circle, segments int) []geometry.Point {
	pts := make([]geometry.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		pts = append(pts, geometry.Point{
			X: c.CX + math.Cos(theta)*c.R,
			Y: c.CY + math.Sin(theta)*c.R,
		})
	}
	return pts
}

func parabolaPoints(p Parabola, segments int) []geometry.Point {
	segments = max(minParabolaSegments, segments)
	pts := make([]geometry.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := p.TMin + (p.TMax-p.TMin)*float64(i)/float64(segments)
		pts = append(pts, p.At(t))
	}
	return pts
}
