package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

// assertSegment checks that l joins a and b in either direction.
func assertSegment(t *testing.T, a, b geometry.Point, l Line, delta float64) {
	t.Helper()
	if l.P1.Dist(a) > l.P1.Dist(b) {
		l.P1, l.P2 = l.P2, l.P1
	}
	assert.InDelta(t, a.X, l.P1.X, delta, "p1.x")
	assert.InDelta(t, a.Y, l.P1.Y, delta, "p1.y")
	assert.InDelta(t, b.X, l.P2.X, delta, "p2.x")
	assert.InDelta(t, b.Y, l.P2.Y, delta, "p2.y")
}

func TestEstimateLine_Exact(t *testing.T) {
	a, b := geometry.Pt(10, 20), geometry.Pt(210, 120)
	pts := segmentStroke(a, b, 40, 0)

	est := EstimateLine(pts, diagOf(pts), 4, sensitivity.Derive(50), testRand())

	require.False(t, est.Rejected, "reason: %s", est.Reason)
	assert.Equal(t, KindLine, est.Kind)
	assert.InDelta(t, 1.0, est.Score, 1e-6)
	assertSegment(t, a, b, est.Shape.(Line), 1e-6)
	assert.InDelta(t, 1.0, est.Metrics["inlier_ratio"], 1e-12)
	assert.InDelta(t, 1.0, est.Metrics["straightness"], 1e-9)
}

func TestEstimateLine_Jitter(t *testing.T) {
	a, b := geometry.Pt(10, 20), geometry.Pt(210, 120)
	pts := segmentStroke(a, b, 40, 0.25)

	est := EstimateLine(pts, diagOf(pts), 4, sensitivity.Derive(50), testRand())

	require.False(t, est.Rejected, "reason: %s", est.Reason)
	assert.Greater(t, est.Score, 0.9)
	assert.Less(t, est.Score, 1.0)
	assertSegment(t, a, b, est.Shape.(Line), 0.5)
}

func TestEstimateLine_Rejections(t *testing.T) {
	corner := append(
		segmentStroke(geometry.Pt(0, 0), geometry.Pt(100, 0), 20, 0),
		segmentStroke(geometry.Pt(100, 0), geometry.Pt(100, 100), 20, 0)[1:]...,
	)

	tests := []struct {
		name   string
		points []geometry.Point
		reason Reason
	}{
		{"single point", []geometry.Point{{X: 1, Y: 1}}, ReasonTooFewPoints},
		{"right angle", corner, ReasonInliers},
		{"circle", arcStroke(100, 100, 50, 350, 60, 0), ReasonInliers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := EstimateLine(tt.points, diagOf(tt.points), 4, sensitivity.Derive(50), testRand())

			assert.True(t, est.Rejected)
			assert.Equal(t, tt.reason, est.Reason)
			_, ok := est.Candidate()
			assert.False(t, ok)
		})
	}
}

func TestFitLinePCA(t *testing.T) {
	t.Run("vertical", func(t *testing.T) {
		pts := []geometry.Point{{X: 5, Y: 40}, {X: 5, Y: 10}, {X: 5, Y: 25}}

		l, ok := fitLinePCA(pts)

		require.True(t, ok)
		assertSegment(t, geometry.Pt(5, 10), geometry.Pt(5, 40), l, 1e-9)
		assert.InDelta(t, 30, l.Length(), 1e-9)
	})

	t.Run("too few points", func(t *testing.T) {
		_, ok := fitLinePCA([]geometry.Point{{X: 1, Y: 2}})
		assert.False(t, ok)
	})

	t.Run("symmetric scatter", func(t *testing.T) {
		// Two points on each side of y=0 pull the axis horizontal.
		pts := []geometry.Point{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 100, Y: 1}, {X: 100, Y: -1}}

		l, ok := fitLinePCA(pts)

		require.True(t, ok)
		assertSegment(t, geometry.Pt(0, 0), geometry.Pt(100, 0), l, 1e-9)
	})
}
