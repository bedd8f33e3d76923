package detection

import (
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

// Kind identifies which family a recognized shape belongs to.
type Kind int

const (
	// KindLine is a straight segment.
	KindLine Kind = iota

	// KindCircle is a full (or nearly full) circle.
	KindCircle

	// KindParabola is a quadratic curve in one of two orientations.
	KindParabola
)

// Kinds lists every shape kind in arbitration order.
var Kinds = []Kind{KindLine, KindCircle, KindParabola}

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindCircle:
		return "circle"
	case KindParabola:
		return "parabola"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind accepts "line", "circle" or "parabola" in any case.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown shape kind %q", s)
}

// Orientation selects the independent axis of a parabola.
type Orientation int

const (
	// YOfX means y = a·t² + b·t + c with t = x - origin.
	YOfX Orientation = iota

	// XOfY means x = a·t² + b·t + c with t = y - origin.
	XOfY
)

func (o Orientation) String() string {
	if o == XOfY {
		return "x_of_y"
	}
	return "y_of_x"
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// split returns the parameter t and the dependent value of p.
func (o Orientation) split(p geometry.Point, origin float64) (t, v float64) {
	if o == XOfY {
		return p.Y - origin, p.X
	}
	return p.X - origin, p.Y
}

// join is the inverse of split.
func (o Orientation) join(t, v, origin float64) geometry.Point {
	if o == XOfY {
		return geometry.Point{X: v, Y: origin + t}
	}
	return geometry.Point{X: origin + t, Y: v}
}

// Shape is the analytic form of a recognized stroke. The concrete type is
// always one of Line, Circle or Parabola.
type Shape interface {
	Kind() Kind
	isShape()
}

// Line is a segment between two refined endpoints.
type Line struct {
	P1 geometry.Point `json:"p1"`
	P2 geometry.Point `json:"p2"`
}

// Circle is given by its center and radius.
type Circle struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	R  float64 `json:"r"`
}

// Parabola is the quadratic v = A·t² + B·t + C where t is measured from
// Origin along the axis chosen by Orientation. The fitted stroke spans
// [TMin, TMax].
type Parabola struct {
	Orientation Orientation `json:"orientation"`
	Origin      float64     `json:"origin"`
	A           float64     `json:"a"`
	B           float64     `json:"b"`
	C           float64     `json:"c"`
	TMin        float64     `json:"t_min"`
	TMax        float64     `json:"t_max"`
}

func (Line) Kind() Kind     { return KindLine }
func (Circle) Kind() Kind   { return KindCircle }
func (Parabola) Kind() Kind { return KindParabola }

func (Line) isShape()     {}
func (Circle) isShape()   {}
func (Parabola) isShape() {}

// Length returns the distance between the endpoints.
func (l Line) Length() float64 {
	return l.P1.Dist(l.P2)
}

// Center returns the circle center as a point.
func (c Circle) Center() geometry.Point {
	return geometry.Point{X: c.CX, Y: c.CY}
}

// At evaluates the parabola at parameter t.
func (p Parabola) At(t float64) geometry.Point {
	return p.Orientation.join(t, p.A*t*t+p.B*t+p.C, p.Origin)
}

// Vertex returns the turning point of the parabola in world space. ok is
// false when the curve is too flat to have a meaningful vertex.
func (p Parabola) Vertex() (v geometry.Point, ok bool) {
	if math.Abs(p.A) < 1e-12 {
		return geometry.Point{}, false
	}
	t := -p.B / (2 * p.A)
	v = p.At(t)
	return v, v.IsFinite()
}

// VertexForm rewrites the parabola as v = a·(u - h)² + k in world
// coordinates, where u is x for YOfX and y for XOfY.
func (p Parabola) VertexForm() (a, h, k float64, ok bool) {
	if math.Abs(p.A) < 1e-12 {
		return 0, 0, 0, false
	}
	t := -p.B / (2 * p.A)
	h = p.Origin + t
	k = p.C - p.B*p.B/(4*p.A)
	return p.A, h, k, geometry.IsFinite(h) && geometry.IsFinite(k)
}

// finite reports whether every parameter of s is a finite number.
func finite(s Shape) bool {
	switch v := s.(type) {
	case Line:
		return v.P1.IsFinite() && v.P2.IsFinite()
	case Circle:
		return geometry.IsFinite(v.CX) && geometry.IsFinite(v.CY) && geometry.IsFinite(v.R) && v.R > 0
	case Parabola:
		for _, f := range []float64{v.Origin, v.A, v.B, v.C, v.TMin, v.TMax} {
			if !geometry.IsFinite(f) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
