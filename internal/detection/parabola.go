package detection

import (
	"math"
	"slices"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

// Parabola estimator constants.
const (
	parabolaMinPoints  = 10
	parabolaMinDiag    = 20
	parabolaMinScore   = 0.45
	parabolaCurvSat    = 0.7
	parabolaLoopFactor = 0.35
	parabolaIterations = 3
	parabolaMinKeep    = 8
)

// EstimateParabola decides whether points trace a quadratic curve opening
// along either axis.
//
// Parameters:
//   - points: simplified stroke, in drawing order.
//   - diag: bounding-box diagonal of points, used for curvature and closedness.
//   - p: tolerances for the current sensitivity.
//
// # Algorithm
//
// Two trimmed least-squares fits are run, y as a function of x and x as a
// function of y, and the one with the lower normalized RMSE is kept. Each
// fit repeats three times: solve the normal equations over the active set,
// then keep the max(8, n·keepFrac) points of the whole stroke with the
// smallest residuals.
//
// The score combines:
//
//	0.55  RMSE falloff against ParabolaRMSETol
//	0.25  curvature |a|·range²/diag, saturating at 0.7
//	0.20  kept ratio against ParabolaInlierFrac
//
// Strokes whose ends nearly meet are loops, not parabolas: their score is
// multiplied by 0.35. Scores below 0.45 are rejected.
//
// The estimator is deterministic.
func EstimateParabola(points []geometry.Point, diag float64, p sensitivity.Params) Estimate {
	est := Estimate{Kind: KindParabola}
	if len(points) < parabolaMinPoints {
		return est.reject(ReasonTooFewPoints)
	}

	closedness := geometry.Closedness(points, diag)
	localDiag := math.Max(1, geometry.BoundsOf(points).Diagonal())
	if localDiag < parabolaMinDiag {
		return est.reject(ReasonTooSmall)
	}

	var fits []quadFit
	for _, o := range []Orientation{YOfX, XOfY} {
		if f, ok := fitQuadraticTrimmed(points, o, p.ParabolaInlierFrac, localDiag); ok {
			fits = append(fits, f)
		}
	}
	if len(fits) == 0 {
		return est.reject(ReasonFitFailed)
	}
	best := slices.MinFunc(fits, func(a, b quadFit) int {
		switch {
		case a.rmseNorm < b.rmseNorm:
			return -1
		case a.rmseNorm > b.rmseNorm:
			return 1
		}
		return 0
	})
	est.Shape = best.shape

	extent := math.Max(1e-6, best.shape.TMax-best.shape.TMin)
	curv := math.Abs(best.shape.A) * extent * extent / diag

	rmseScore := geometry.Clamp01(1 - best.rmseNorm/p.ParabolaRMSETol)
	curvScore := geometry.Clamp01((curv - p.ParabolaCurvMin) / (parabolaCurvSat - p.ParabolaCurvMin))
	inlierScore := geometry.Clamp01(best.inlierRatio / math.Max(1e-6, p.ParabolaInlierFrac))

	score := 0.55*rmseScore + 0.25*curvScore + 0.20*inlierScore
	if closedness < p.ParabolaClosedMax {
		score *= parabolaLoopFactor
	}

	est.Score = score
	est.Metrics = Metrics{
		"rmse_norm":    best.rmseNorm,
		"curv":         curv,
		"inlier_ratio": best.inlierRatio,
		"inlier_frac":  p.ParabolaInlierFrac,
		"closedness":   closedness,
		"rmse_score":   rmseScore,
		"curv_score":   curvScore,
		"inlier_score": inlierScore,
	}
	if score < parabolaMinScore {
		return est.reject(ReasonScore)
	}
	return est
}

// quadFit is one orientation's trimmed fit.
type quadFit struct {
	shape       Parabola
	rmseNorm    float64
	maxAbs      float64
	inlierRatio float64
}

// fitQuadraticTrimmed fits v = a·t² + b·t + c in orientation o, dropping the
// worst residuals on each pass. RMSE is measured over every point and
// normalized by diag.
func fitQuadraticTrimmed(points []geometry.Point, o Orientation, keepFrac, diag float64) (quadFit, bool) {
	frac := math.Max(0.5, math.Min(0.95, keepFrac))

	var origin float64
	for _, pt := range points {
		t, _ := o.split(pt, 0)
		origin += t
	}
	origin /= float64(len(points))

	type residual struct {
		pt  geometry.Point
		err float64
	}

	keepN := max(parabolaMinKeep, int(math.Floor(float64(len(points))*frac)))
	keepN = min(keepN, len(points))

	active := points
	var a, b, c float64
	for iter := 0; iter < parabolaIterations; iter++ {
		var ok bool
		a, b, c, ok = fitQuadratic(active, o, origin)
		if !ok {
			return quadFit{}, false
		}

		res := make([]residual, len(points))
		for i, pt := range points {
			t, v := o.split(pt, origin)
			res[i] = residual{pt: pt, err: math.Abs(v - (a*t*t + b*t + c))}
		}
		slices.SortStableFunc(res, func(x, y residual) int {
			switch {
			case x.err < y.err:
				return -1
			case x.err > y.err:
				return 1
			}
			return 0
		})

		next := make([]geometry.Point, keepN)
		for i := range next {
			next[i] = res[i].pt
		}
		active = next
	}

	var sum2, maxAbs float64
	tMin, tMax := math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		t, v := o.split(pt, origin)
		e := v - (a*t*t + b*t + c)
		sum2 += e * e
		maxAbs = math.Max(maxAbs, math.Abs(e))
		tMin = math.Min(tMin, t)
		tMax = math.Max(tMax, t)
	}

	shape := Parabola{Orientation: o, Origin: origin, A: a, B: b, C: c, TMin: tMin, TMax: tMax}
	if !finite(shape) {
		return quadFit{}, false
	}
	return quadFit{
		shape:       shape,
		rmseNorm:    math.Sqrt(sum2/float64(len(points))) / diag,
		maxAbs:      maxAbs,
		inlierRatio: float64(len(active)) / float64(len(points)),
	}, true
}

// fitQuadratic solves the least-squares normal equations for
// v = a·t² + b·t + c with t measured from origin.
func fitQuadratic(points []geometry.Point, o Orientation, origin float64) (a, b, c float64, ok bool) {
	if len(points) < 3 {
		return 0, 0, 0, false
	}

	var s4, s3, s2, s1, s0, sv2, sv1, sv0 float64
	for _, pt := range points {
		t, v := o.split(pt, origin)
		t2 := t * t
		s4 += t2 * t2
		s3 += t2 * t
		s2 += t2
		s1 += t
		s0++
		sv2 += v * t2
		sv1 += v * t
		sv0 += v
	}

	m := [3][3]float64{
		{s4, s3, s2},
		{s3, s2, s1},
		{s2, s1, s0},
	}
	sol, ok := geometry.Solve3x3(m, [3]float64{sv2, sv1, sv0})
	if !ok {
		return 0, 0, 0, false
	}
	return sol[0], sol[1], sol[2], true
}
