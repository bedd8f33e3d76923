package detection

import (
	"encoding/json"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/logging"
)

func newTestRecognizer() *Recognizer {
	return New(WithSeed(testSeed))
}

// gaussianJitter moves every point by independent normal noise of the given
// standard deviation on both axes.
func gaussianJitter(points []geometry.Point, std float64, seed uint64) []geometry.Point {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[i] = geometry.Point{X: p.X + rng.NormFloat64()*std, Y: p.Y + rng.NormFloat64()*std}
	}
	return out
}

func TestRecognize_DiagonalLineScenario(t *testing.T) {
	pts := segmentStroke(geometry.Pt(0, 0), geometry.Pt(200, 200), 25, 0)

	res := newTestRecognizer().Recognize(pts, 4, 50)

	require.True(t, res.Recognized())
	require.Equal(t, KindLine, res.Candidate.Kind)
	assertSegment(t, geometry.Pt(0, 0), geometry.Pt(200, 200), res.Candidate.Shape.(Line), 1e-6)
	assert.Len(t, res.Points, 2)
}

func TestRecognize_CircleScenario(t *testing.T) {
	pts := arcStroke(100, 100, 50, 350, 60, 0)

	res := newTestRecognizer().Recognize(pts, 4, 50)

	require.True(t, res.Recognized())
	require.Equal(t, KindCircle, res.Candidate.Kind)
	c := res.Candidate.Shape.(Circle)
	assert.InDelta(t, 100, c.CX, 0.5)
	assert.InDelta(t, 100, c.CY, 0.5)
	assert.InDelta(t, 50, c.R, 0.5)
	assert.Len(t, res.Points, CircleSegments+1)
}

func TestRecognize_LineRoundTrip(t *testing.T) {
	a, b := geometry.Pt(0, 0), geometry.Pt(300, 150)
	pts := gaussianJitter(segmentStroke(a, b, 50, 0), 0.25, 7)

	res := newTestRecognizer().Recognize(pts, 4, 50)

	require.True(t, res.Recognized())
	require.Equal(t, KindLine, res.Candidate.Kind)
	assertSegment(t, a, b, res.Candidate.Shape.(Line), 2)
}

func TestRecognize_CircleRoundTrip(t *testing.T) {
	const r = 60
	pts := gaussianJitter(arcStroke(200, 150, r, 345, 72, 0), 0.25, 11)

	res := newTestRecognizer().Recognize(pts, 4, 50)

	require.True(t, res.Recognized())
	require.Equal(t, KindCircle, res.Candidate.Kind)
	c := res.Candidate.Shape.(Circle)
	assert.Less(t, math.Abs(c.R-r), 0.05*r)
	assert.Less(t, math.Hypot(c.CX-200, c.CY-150), 0.05*r)
}

func TestRecognize_ParabolaRoundTrip(t *testing.T) {
	pts := quadraticStroke(0.01, 100, 50, 0, 200, 60)

	res := newTestRecognizer().Recognize(pts, 4, 50)

	require.True(t, res.Recognized())
	require.Equal(t, KindParabola, res.Candidate.Kind)
	assert.Len(t, res.Points, ParabolaSegments+1)

	a, h, k, ok := res.Candidate.Shape.(Parabola).VertexForm()
	require.True(t, ok)
	assert.InDelta(t, 0.01, a, 1e-6)
	assert.InDelta(t, 100, h, 1e-4)
	assert.InDelta(t, 50, k, 1e-4)
}

func TestRecognize_TinyZigZag(t *testing.T) {
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 4, Y: 1}, {X: 8, Y: 0}}

	for s := 0; s <= 100; s += 10 {
		res := newTestRecognizer().Recognize(pts, 4, s)
		assert.False(t, res.Recognized(), "sensitivity %d", s)
	}
}

func TestRecognize_SmallStroke(t *testing.T) {
	// Twelve points about 2 px apart that survive simplification, inside a
	// box whose diagonal is under MinDiagonal.
	pts := arcStroke(0, 0, 4, 330, 12, 0)

	d := newTestRecognizer().Diagnose(pts, 0, 50)

	assert.Equal(t, ReasonTooSmall, d.Skipped)
	assert.Empty(t, d.Estimates)
	assert.False(t, newTestRecognizer().Recognize(pts, 0, 50).Recognized())
}

func TestRecognize_SamplesAtSimplifyDistance(t *testing.T) {
	// Integer samples 2 px apart with a 4 px pen sit exactly at the
	// simplification distance and must all be kept.
	var pts []geometry.Point
	for i := 0; i < 16; i++ {
		pts = append(pts, geometry.Pt(float64(2*i), 0))
	}

	d := newTestRecognizer().Diagnose(pts, 4, 50)
	assert.Equal(t, 16, d.SimplifiedCount)
	assert.Empty(t, d.Skipped)

	res := newTestRecognizer().Recognize(pts, 4, 50)
	require.True(t, res.Recognized())
	assert.Equal(t, KindLine, res.Candidate.Kind)
}

func TestRecognize_MonotonicSensitivity(t *testing.T) {
	tests := []struct {
		name   string
		points []geometry.Point
		kind   Kind
	}{
		{"line", segmentStroke(geometry.Pt(10, 20), geometry.Pt(210, 120), 40, 0.25), KindLine},
		{"circle", arcStroke(100, 100, 50, 350, 60, 0), KindCircle},
		{"parabola", quadraticStroke(0.01, 100, 50, 0, 200, 60), KindParabola},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accepted := -1
			for s := 0; s <= 100; s += 10 {
				res := newTestRecognizer().Recognize(tt.points, 4, s)
				if res.Recognized() && res.Candidate.Kind == tt.kind {
					if accepted < 0 {
						accepted = s
					}
					continue
				}
				assert.Less(t, accepted, 0, "accepted at %d but not at %d", accepted, s)
			}
			assert.GreaterOrEqual(t, accepted, 0, "never accepted")
			assert.LessOrEqual(t, accepted, 50)
		})
	}
}

func TestRecognize_IgnoresNonFinitePoints(t *testing.T) {
	pts := segmentStroke(geometry.Pt(0, 0), geometry.Pt(200, 200), 25, 0)
	pts = append(pts[:10:10], append([]geometry.Point{{X: math.NaN(), Y: 3}, {X: math.Inf(1), Y: 0}}, pts[10:]...)...)

	res := newTestRecognizer().Recognize(pts, math.NaN(), 50)

	require.True(t, res.Recognized())
	assert.Equal(t, KindLine, res.Candidate.Kind)
}

func TestRecognize_Deterministic(t *testing.T) {
	pts := gaussianJitter(arcStroke(200, 150, 60, 345, 72, 0), 0.25, 11)
	r := newTestRecognizer()

	first := r.Diagnose(pts, 4, 50)
	second := r.Diagnose(pts, 4, 50)

	assert.Equal(t, first, second)
}

func TestRecognize_ConcurrentUse(t *testing.T) {
	pts := arcStroke(100, 100, 50, 350, 60, 0)
	r := newTestRecognizer()
	want := r.Recognize(pts, 4, 50)

	const workers = 8
	results := make([]Result, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Recognize(pts, 4, 50)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestRecognize_PackageLevel(t *testing.T) {
	pts := segmentStroke(geometry.Pt(0, 0), geometry.Pt(200, 200), 25, 0)

	res := Recognize(pts, 4, 50)

	require.True(t, res.Recognized())
	assert.Equal(t, KindLine, res.Candidate.Kind)
}

func TestCandidates(t *testing.T) {
	r := newTestRecognizer()

	got := r.Candidates(quadraticStroke(0.01, 100, 50, 0, 200, 60), 4, 50)
	require.NotEmpty(t, got)
	assert.Equal(t, KindParabola, got[0].Kind)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}

	assert.Empty(t, r.Candidates([]geometry.Point{{X: 0, Y: 0}}, 4, 50))
}

func TestConvert(t *testing.T) {
	r := newTestRecognizer()
	pts := quadraticStroke(0.01, 100, 50, 0, 200, 60)

	res, ok := r.Convert(pts, 4, 50, KindParabola)
	require.True(t, ok)
	assert.Equal(t, KindParabola, res.Candidate.Kind)
	assert.Len(t, res.Points, ParabolaSegments+1)

	_, ok = r.Convert(pts, 4, 50, KindCircle)
	assert.False(t, ok)
}

func TestDiagnose(t *testing.T) {
	t.Run("circle", func(t *testing.T) {
		d := newTestRecognizer().Diagnose(arcStroke(100, 100, 50, 350, 60, 0), 4, 50)

		assert.Empty(t, d.Skipped)
		require.Len(t, d.Estimates, len(Kinds))
		require.NotNil(t, d.Accepted)
		assert.Equal(t, KindCircle, *d.Accepted)

		byKind := map[Kind]Estimate{}
		for _, e := range d.Estimates {
			byKind[e.Kind] = e
		}
		assert.True(t, byKind[KindLine].Rejected)
		assert.Equal(t, ReasonInliers, byKind[KindLine].Reason)
		assert.False(t, byKind[KindCircle].Rejected)
		assert.Equal(t, ReasonScore, byKind[KindParabola].Reason)
		assert.Equal(t, 60, d.SimplifiedCount)
	})

	t.Run("too few points", func(t *testing.T) {
		d := newTestRecognizer().Diagnose([]geometry.Point{{X: 0, Y: 0}, {X: 9, Y: 9}}, 4, 150)

		assert.Equal(t, ReasonTooFewPoints, d.Skipped)
		assert.Nil(t, d.Accepted)
		assert.Equal(t, 100, d.Sensitivity)
		assert.Equal(t, 1.0, d.Params.S)
	})

	t.Run("downsampled points", func(t *testing.T) {
		pts := arcStroke(500, 500, 400, 350, 400, 0)

		d := newTestRecognizer().Diagnose(pts, 4, 50)

		assert.Len(t, d.Points, DiagnosticPoints)
		assert.Equal(t, 400, d.SimplifiedCount)
	})
}

func TestRecognizer_LogsVerdicts(t *testing.T) {
	h := logging.NewBufferedLogHandler(&slog.HandlerOptions{Level: slog.LevelDebug})
	r := New(WithSeed(testSeed), WithLogger(slog.New(h)))

	r.Recognize(arcStroke(100, 100, 50, 350, 60, 0), 4, 50)

	assert.Equal(t, 4, h.Lines())
	assert.True(t, h.Contains(`"msg":"estimator verdict"`) || h.Contains("estimator verdict"))
	assert.True(t, h.Contains(`"kind":"circle"`))
	assert.True(t, h.Contains("stroke recognized"))
}

func TestResult_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Result{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recognized":false}`, string(data))

	res := Result{
		Candidate: &Candidate{Kind: KindCircle, Shape: Circle{CX: 1, CY: 2, R: 3}, Score: 0.9},
		Points:    []geometry.Point{{X: 4, Y: 2}},
	}
	data, err = json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"recognized": true,
		"candidate": {"kind": "circle", "shape": {"cx": 1, "cy": 2, "r": 3}, "score": 0.9},
		"points": [{"x": 4, "y": 2}]
	}`, string(data))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Circle")
	require.NoError(t, err)
	assert.Equal(t, KindCircle, k)

	_, err = ParseKind("ellipse")
	assert.Error(t, err)

	var parsed Kind
	require.NoError(t, json.Unmarshal([]byte(`"parabola"`), &parsed))
	assert.Equal(t, KindParabola, parsed)
}
