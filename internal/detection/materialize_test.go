package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

func TestMaterialize_Line(t *testing.T) {
	l := Line{P1: geometry.Pt(1, 2), P2: geometry.Pt(30, 40)}

	assert.Equal(t, []geometry.Point{l.P1, l.P2}, Materialize(l))
}

func TestMaterialize_Circle(t *testing.T) {
	c := Circle{CX: 100, CY: 100, R: 50}

	pts := Materialize(c)

	require.Len(t, pts, CircleSegments+1)
	assert.InDelta(t, 150, pts[0].X, 1e-9)
	assert.InDelta(t, 100, pts[0].Y, 1e-9)
	assert.InDelta(t, pts[0].X, pts[len(pts)-1].X, 1e-9, "closed")
	assert.InDelta(t, pts[0].Y, pts[len(pts)-1].Y, 1e-9, "closed")
	for i, p := range pts {
		assert.InDelta(t, 50, p.Dist(c.Center()), 1e-9, "point %d", i)
	}
}

func TestMaterialize_Parabola(t *testing.T) {
	tests := []struct {
		name        string
		p           Parabola
		first, last geometry.Point
	}{
		{
			name:  "y of x",
			p:     Parabola{Orientation: YOfX, Origin: 100, A: 0.01, C: 50, TMin: -100, TMax: 100},
			first: geometry.Pt(0, 150),
			last:  geometry.Pt(200, 150),
		},
		{
			name:  "x of y",
			p:     Parabola{Orientation: XOfY, Origin: 20, A: 1, B: 0, C: 0, TMin: 0, TMax: 10},
			first: geometry.Pt(0, 20),
			last:  geometry.Pt(100, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := Materialize(tt.p)

			require.Len(t, pts, ParabolaSegments+1)
			assert.InDelta(t, tt.first.X, pts[0].X, 1e-9)
			assert.InDelta(t, tt.first.Y, pts[0].Y, 1e-9)
			assert.InDelta(t, tt.last.X, pts[len(pts)-1].X, 1e-9)
			assert.InDelta(t, tt.last.Y, pts[len(pts)-1].Y, 1e-9)
		})
	}
}

func TestMaterialize_Nil(t *testing.T) {
	assert.Nil(t, Materialize(nil))
}
