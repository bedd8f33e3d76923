package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

func TestFitQuadratic(t *testing.T) {
	// y = 2t² - 3t + 1 with t = x - 5.
	var pts []geometry.Point
	for x := 0.0; x <= 10; x++ {
		tt := x - 5
		pts = append(pts, geometry.Pt(x, 2*tt*tt-3*tt+1))
	}

	a, b, c, ok := fitQuadratic(pts, YOfX, 5)

	require.True(t, ok)
	assert.InDelta(t, 2, a, 1e-9)
	assert.InDelta(t, -3, b, 1e-9)
	assert.InDelta(t, 1, c, 1e-9)

	a, b, c, ok = fitQuadratic(transpose(pts), XOfY, 5)

	require.True(t, ok)
	assert.InDelta(t, 2, a, 1e-9)
	assert.InDelta(t, -3, b, 1e-9)
	assert.InDelta(t, 1, c, 1e-9)
}

func TestFitQuadratic_Degenerate(t *testing.T) {
	_, _, _, ok := fitQuadratic([]geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, YOfX, 0)
	assert.False(t, ok, "two points")

	// Every point shares one x, so y cannot be a function of x.
	column := []geometry.Point{{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}, {X: 3, Y: 3}}
	_, _, _, ok = fitQuadratic(column, YOfX, 3)
	assert.False(t, ok, "vertical column")
}

func TestFitQuadraticTrimmed_KeepsFraction(t *testing.T) {
	pts := quadraticStroke(0.01, 100, 50, 0, 200, 60)

	fit, ok := fitQuadraticTrimmed(pts, YOfX, 0.675, diagOf(pts))

	require.True(t, ok)
	assert.InDelta(t, 40.0/60.0, fit.inlierRatio, 1e-12)
	assert.InDelta(t, 0, fit.rmseNorm, 1e-9)
	assert.InDelta(t, 100, fit.shape.Origin, 1e-9)
	assert.InDelta(t, -100, fit.shape.TMin, 1e-9)
	assert.InDelta(t, 100, fit.shape.TMax, 1e-9)
}

func TestEstimateParabola_BothOrientations(t *testing.T) {
	base := quadraticStroke(0.01, 100, 50, 0, 200, 60)

	tests := []struct {
		name        string
		points      []geometry.Point
		orientation Orientation
		vertex      geometry.Point
	}{
		{"opening downward on screen", base, YOfX, geometry.Pt(100, 50)},
		{"opening sideways", transpose(base), XOfY, geometry.Pt(50, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := EstimateParabola(tt.points, diagOf(tt.points), sensitivity.Derive(50))

			require.False(t, est.Rejected, "reason: %s", est.Reason)
			p := est.Shape.(Parabola)
			assert.Equal(t, tt.orientation, p.Orientation)
			assert.InDelta(t, 0.01, p.A, 1e-9)
			assert.Greater(t, est.Score, 0.99)

			v, ok := p.Vertex()
			require.True(t, ok)
			assert.InDelta(t, tt.vertex.X, v.X, 1e-6)
			assert.InDelta(t, tt.vertex.Y, v.Y, 1e-6)
		})
	}
}

func TestEstimateParabola_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		points []geometry.Point
		reason Reason
	}{
		{"too few points", quadraticStroke(0.01, 100, 50, 0, 200, 9), ReasonTooFewPoints},
		{"too small", quadraticStroke(0.1, 5, 0, 0, 10, 12), ReasonTooSmall},
		{"closed loop", arcStroke(100, 100, 50, 360, 60, 0), ReasonScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := EstimateParabola(tt.points, diagOf(tt.points), sensitivity.Derive(50))

			assert.True(t, est.Rejected)
			assert.Equal(t, tt.reason, est.Reason)
		})
	}
}

func TestEstimateParabola_LoopPenalty(t *testing.T) {
	p := sensitivity.Derive(50)
	pts := arcStroke(100, 100, 50, 360, 60, 0)

	est := EstimateParabola(pts, diagOf(pts), p)

	assert.Less(t, est.Metrics["closedness"], p.ParabolaClosedMax)
	assert.LessOrEqual(t, est.Score, parabolaLoopFactor)
}

func TestEstimateParabola_StraightStroke(t *testing.T) {
	pts := segmentStroke(geometry.Pt(0, 0), geometry.Pt(200, 200), 25, 0)

	est := EstimateParabola(pts, diagOf(pts), sensitivity.Derive(50))

	// A straight stroke fits perfectly but has no curvature to earn.
	assert.InDelta(t, 0, est.Metrics["curv_score"], 1e-9)
	assert.Less(t, est.Score, 0.8)
}

func TestParabola_VertexForm(t *testing.T) {
	p := Parabola{Orientation: YOfX, Origin: 10, A: 2, B: -4, C: 7, TMin: -5, TMax: 5}

	a, h, k, ok := p.VertexForm()

	require.True(t, ok)
	// 2t² - 4t + 7 = 2(t-1)² + 5, and t = x - 10.
	assert.InDelta(t, 2, a, 1e-12)
	assert.InDelta(t, 11, h, 1e-12)
	assert.InDelta(t, 5, k, 1e-12)

	v, ok := p.Vertex()
	require.True(t, ok)
	assert.InDelta(t, 11, v.X, 1e-12)
	assert.InDelta(t, 5, v.Y, 1e-12)
}

func TestParabola_FlatHasNoVertex(t *testing.T) {
	p := Parabola{Orientation: XOfY, A: 0, B: 1, C: 2, TMin: 0, TMax: 1}

	_, ok := p.Vertex()
	assert.False(t, ok)

	_, _, _, ok = p.VertexForm()
	assert.False(t, ok)
}
