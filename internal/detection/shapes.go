package detection

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

// Circle estimator constants.
const (
	circleMinPoints     = 6
	circleMinInliers    = 14
	circleMinEps        = 3.5
	circleMinRadius     = 6
	circleMaxRadiusDiag = 2 // radii above diag·2 are treated as noise
	circleMinScore      = 0.45
	circleArcFloor      = 0.72

	// Sensitivities above which open strokes are entertained.
	circleOpenGateS  = 0.65
	circleInlierGate = 0.70
	circleLooseS     = 0.80

	// degenerateDet rejects near-collinear triples.
	degenerateDet = 1e-6
)

// EstimateCircle decides whether points trace a circle.
//
// Parameters:
//   - points: simplified stroke, in drawing order.
//   - diag: bounding-box diagonal of points.
//   - width: stroke width; sizes the inlier band around the radius.
//   - p: tolerances for the current sensitivity.
//   - rng: source for the sample-consensus draws.
//
// # Algorithm
//
//  1. Gates: at least 6 points; bounding-box aspect within
//     [CircleAspectMin, 1/CircleAspectMin]; unless sensitivity is in the
//     looser range, the gap between the first and last point must not exceed
//     CircleClosedMax of the diagonal.
//  2. Sample consensus: circles through three random points, discarding
//     collinear triples and radii outside [6, diag·2], scored by the number
//     of points within eps of the radius.
//  3. Refinement: an algebraic least-squares fit over the best inliers, or
//     over every point when consensus was too weak.
//  4. Angular coverage: 2π minus the largest angular gap between points as
//     seen from the fitted center. Shallow arcs fail here.
//  5. Score: weighted sum of radial std, mean absolute radial error,
//     coverage, inlier ratio and closedness, each normalized against its
//     tolerance. Closedness matters less at high sensitivity, and clean open
//     arcs are floored at 0.72 there.
//
// # Score Weights
//
//	radial std   0.34
//	mean |err|   0.24
//	coverage     0.22
//	inliers      0.14
//	closedness   0.14 (0.06 when sensitivity >= 80)
func EstimateCircle(points []geometry.Point, diag, width float64, p sensitivity.Params, rng *rand.Rand) Estimate {
	est := Estimate{Kind: KindCircle}
	n := len(points)
	if n < circleMinPoints {
		return est.reject(ReasonTooFewPoints)
	}

	bounds := geometry.BoundsOf(points)
	aspect := bounds.Width() / math.Max(1e-6, bounds.Height())
	aspectMax := 1 / math.Max(1e-6, p.CircleAspectMin)
	if aspect < p.CircleAspectMin || aspect > aspectMax {
		est.Metrics = Metrics{"aspect": aspect}
		return est.reject(ReasonAspect)
	}

	closedness := geometry.Closedness(points, diag)
	tooOpen := closedness > p.CircleClosedMax
	if tooOpen && p.S < circleOpenGateS {
		est.Metrics = Metrics{"closedness": closedness}
		return est.reject(ReasonClosedness)
	}

	eps := math.Max(math.Max(width*1.8, diag*p.CircleEpsNorm), circleMinEps)
	iterations := clampInt(n*3, 50, 140)

	var best Circle
	bestCount := 0
	for iter := 0; iter < iterations; iter++ {
		i := rng.IntN(n)
		j := rng.IntN(n)
		k := rng.IntN(n)
		if j == i {
			j = (j + 1) % n
		}
		if k == i || k == j {
			k = (k + 2) % n
		}

		c, ok := circleFrom3(points[i], points[j], points[k])
		if !ok || c.R < circleMinRadius || c.R > diag*circleMaxRadiusDiag {
			continue
		}
		if count := countRadialInliers(points, c, eps); count > bestCount {
			best, bestCount = c, count
		}
	}

	var (
		refined     Circle
		ok          bool
		inlierRatio float64
		fallback    bool
	)
	if bestCount > 0 && float64(bestCount) >= math.Max(circleMinInliers, float64(n)*p.CircleInlierMin) {
		inlierRatio = float64(bestCount) / float64(n)
		refined, ok = fitCircleKasa(radialInliers(points, best, eps))
	} else {
		fallback = true
		refined, ok = fitCircleKasa(points)
		if ok {
			inlierRatio = float64(countRadialInliers(points, refined, eps)) / float64(n)
		}
	}
	if !ok {
		return est.reject(ReasonFitFailed)
	}
	est.Shape = refined
	est.Metrics = Metrics{"inlier_ratio": inlierRatio, "closedness": closedness}

	if inlierRatio < p.CircleInlierMin && p.S < circleInlierGate {
		return est.reject(ReasonInliers)
	}

	coverage := angularCoverage(points, refined.CX, refined.CY)
	if coverage < p.CircleCoverageMin {
		est.Metrics["coverage"] = coverage
		return est.reject(ReasonCoverage)
	}

	meanAbs, std := radialErrorStats(points, refined)
	radialStdNorm := std / math.Max(1e-6, refined.R)
	meanAbsNorm := meanAbs / math.Max(1e-6, refined.R)

	radialStdScore := geometry.Clamp01(1 - radialStdNorm/p.CircleRadialStdTol)
	meanAbsScore := geometry.Clamp01(1 - meanAbsNorm/p.CircleMeanAbsTol)
	closedDenom := p.CircleClosedMax
	if tooOpen {
		closedDenom *= 2.6
	}
	closedScore := geometry.Clamp01(1 - closedness/math.Max(1e-6, closedDenom))
	coverageScore := geometry.Clamp01((coverage - p.CircleCoverageMin) / (2*math.Pi - p.CircleCoverageMin))
	inlierScore := geometry.Clamp01(inlierRatio / math.Max(1e-6, p.CircleInlierMin))

	wClosed := 0.14
	if p.S >= circleLooseS {
		wClosed = 0.06
	}
	score := 0.34*radialStdScore +
		0.24*meanAbsScore +
		0.22*coverageScore +
		0.14*inlierScore +
		wClosed*closedScore

	if p.S >= circleLooseS &&
		radialStdNorm < p.CircleRadialStdTol*0.55 &&
		meanAbsNorm < p.CircleMeanAbsTol*0.55 {
		score = math.Max(score, circleArcFloor)
	}
	score = geometry.Clamp01(score)

	est.Score = score
	est.Metrics = Metrics{
		"radial_std_norm":  radialStdNorm,
		"mean_abs_norm":    meanAbsNorm,
		"closedness":       closedness,
		"coverage":         coverage,
		"inlier_ratio":     inlierRatio,
		"radial_std_score": radialStdScore,
		"mean_abs_score":   meanAbsScore,
		"coverage_score":   coverageScore,
		"inlier_score":     inlierScore,
		"closed_score":     closedScore,
		"used_fallback":    boolMetric(fallback),
	}

	switch {
	case tooOpen && p.S < circleLooseS:
		return est.reject(ReasonClosedness)
	case score < circleMinScore:
		return est.reject(ReasonScore)
	}
	return est
}

// circleFrom3 returns the circle through three points. ok is false for
// collinear or coincident points.
func circleFrom3(p1, p2, p3 geometry.Point) (Circle, bool) {
	a := p1.X - p2.X
	b := p1.Y - p2.Y
	c := p1.X - p3.X
	d := p1.Y - p3.Y
	e := ((p1.X*p1.X - p2.X*p2.X) + (p1.Y*p1.Y - p2.Y*p2.Y)) / 2
	f := ((p1.X*p1.X - p3.X*p3.X) + (p1.Y*p1.Y - p3.Y*p3.Y)) / 2

	det := a*d - b*c
	if math.Abs(det) < degenerateDet {
		return Circle{}, false
	}

	cx := (d*e - b*f) / det
	cy := (-c*e + a*f) / det
	circle := Circle{CX: cx, CY: cy, R: math.Hypot(p1.X-cx, p1.Y-cy)}
	return circle, finite(circle)
}

// fitCircleKasa fits x² + y² = A·x + B·y + C by linear least squares.
// Coordinates are centered on their mean first to keep the normal equations
// well conditioned far from the origin.
func fitCircleKasa(points []geometry.Point) (Circle, bool) {
	if len(points) < 3 {
		return Circle{}, false
	}

	var mx, my float64
	for _, p := range points {
		mx += p.X
		my += p.Y
	}
	mx /= float64(len(points))
	my /= float64(len(points))

	var sxx, syy, sxy, sx, sy, sxz, syz, sz float64
	for _, p := range points {
		x := p.X - mx
		y := p.Y - my
		z := x*x + y*y
		sxx += x * x
		syy += y * y
		sxy += x * y
		sx += x
		sy += y
		sxz += x * z
		syz += y * z
		sz += z
	}

	m := [3][3]float64{
		{sxx, sxy, sx},
		{sxy, syy, sy},
		{sx, sy, float64(len(points))},
	}
	sol, ok := geometry.Solve3x3(m, [3]float64{sxz, syz, sz})
	if !ok {
		return Circle{}, false
	}

	A, B, C := sol[0], sol[1], sol[2]
	r2 := (A*A+B*B)/4 + C
	if r2 <= 0 {
		return Circle{}, false
	}
	c := Circle{CX: A/2 + mx, CY: B/2 + my, R: math.Sqrt(r2)}
	return c, finite(c)
}

func radialError(p geometry.Point, c Circle) float64 {
	return math.Hypot(p.X-c.CX, p.Y-c.CY) - c.R
}

func countRadialInliers(points []geometry.Point, c Circle, eps float64) int {
	count := 0
	for _, p := range points {
		if math.Abs(radialError(p, c)) <= eps {
			count++
		}
	}
	return count
}

func radialInliers(points []geometry.Point, c Circle, eps float64) []geometry.Point {
	out := make([]geometry.Point, 0, len(points))
	for _, p := range points {
		if math.Abs(radialError(p, c)) <= eps {
			out = append(out, p)
		}
	}
	return out
}

// angularCoverage returns how much of the full turn the points sweep around
// (cx, cy): 2π minus the widest empty gap between neighbouring angles.
func angularCoverage(points []geometry.Point, cx, cy float64) float64 {
	if len(points) < 3 {
		return 0
	}
	angles := make([]float64, len(points))
	for i, p := range points {
		angles[i] = math.Atan2(p.Y-cy, p.X-cx)
	}
	slices.Sort(angles)

	maxGap := angles[0] + 2*math.Pi - angles[len(angles)-1]
	for i := 1; i < len(angles); i++ {
		maxGap = math.Max(maxGap, angles[i]-angles[i-1])
	}
	return 2*math.Pi - maxGap
}

// radialErrorStats returns the mean absolute and the standard deviation of
// the signed radial error.
func radialErrorStats(points []geometry.Point, c Circle) (meanAbs, std float64) {
	var sumAbs, sum, sum2 float64
	for _, p := range points {
		e := radialError(p, c)
		sumAbs += math.Abs(e)
		sum += e
		sum2 += e * e
	}
	n := float64(len(points))
	mean := sum / n
	return sumAbs / n, math.Sqrt(math.Max(0, sum2/n-mean*mean))
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
