package detection

import (
	"math"
	"math/rand/v2"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

// Line estimator constants.
const (
	lineMinScore    = 0.55
	lineMinInliers  = 10
	lineMinEps      = 2.5
	linePairSpacing = 0.1 // of the bounding diagonal
)

// EstimateLine decides whether points form a straight segment.
//
// Parameters:
//   - points: simplified stroke, in drawing order.
//   - diag: bounding-box diagonal of points.
//   - width: stroke width; wider pens get a wider inlier band.
//   - p: tolerances for the current sensitivity.
//   - rng: source for the sample-consensus draws.
//
// # Algorithm
//
//  1. Sample consensus: repeatedly pick two points at least diag·0.1 apart
//     and count points within eps of the line through them, keeping the pair
//     with the most inliers.
//  2. Refinement: the principal axis of the inliers' covariance gives the
//     direction; the extreme projections of the inliers give the endpoints.
//  3. Scoring against every point: RMSE and max perpendicular distance
//     (normalized by diag), straightness (chord / path length) and inlier
//     ratio, each turned into a [0,1] falloff against its tolerance. The
//     score is their product.
//
// Rejected when fewer than two points are given, when too few inliers are
// found, or when the score is below 0.55.
func EstimateLine(points []geometry.Point, diag, width float64, p sensitivity.Params, rng *rand.Rand) Estimate {
	est := Estimate{Kind: KindLine}
	n := len(points)
	if n < 2 {
		return est.reject(ReasonTooFewPoints)
	}

	eps := math.Max(math.Max(width*1.5, diag*p.LineEpsNorm), lineMinEps)
	iterations := clampInt(n*2, 32, 96)
	minPair := diag * linePairSpacing

	bestI, bestJ, bestCount := -1, -1, 0
	for iter := 0; iter < iterations; iter++ {
		i := rng.IntN(n)
		j := rng.IntN(n)
		if j == i {
			j = (j + 1) % n
		}
		a, b := points[i], points[j]
		if a.Dist(b) < minPair {
			continue
		}

		count := 0
		for _, pt := range points {
			if geometry.PointToLineDistance(pt, a, b) <= eps {
				count++
			}
		}
		if count > bestCount {
			bestI, bestJ, bestCount = i, j, count
		}
	}

	inlierRatio := float64(bestCount) / float64(n)
	est.Metrics = Metrics{"inlier_ratio": inlierRatio}
	if bestI < 0 || float64(bestCount) < math.Max(lineMinInliers, float64(n)*p.LineInlierMin) {
		return est.reject(ReasonInliers)
	}

	a, b := points[bestI], points[bestJ]
	inliers := make([]geometry.Point, 0, bestCount)
	for _, pt := range points {
		if geometry.PointToLineDistance(pt, a, b) <= eps {
			inliers = append(inliers, pt)
		}
	}

	fit, ok := fitLinePCA(inliers)
	if !ok {
		return est.reject(ReasonFitFailed)
	}
	est.Shape = fit

	straightness := math.Min(1, fit.Length()/math.Max(1e-6, geometry.PathLength(points)))

	var sum2, maxD float64
	for _, pt := range points {
		d := geometry.PointToLineDistance(pt, fit.P1, fit.P2)
		sum2 += d * d
		if d > maxD {
			maxD = d
		}
	}
	rmseNorm := math.Sqrt(sum2/float64(n)) / diag
	maxNorm := maxD / diag

	score := geometry.Clamp01(1 - rmseNorm/p.LineRMSETol)
	score *= geometry.Clamp01(1 - maxNorm/p.LineMaxTol)
	score *= geometry.Clamp01((straightness - p.LineStraightMin) / (1 - p.LineStraightMin))
	score *= geometry.Clamp01((inlierRatio - p.LineInlierMin) / (1 - p.LineInlierMin))

	est.Score = score
	est.Metrics = Metrics{
		"rmse_norm":    rmseNorm,
		"max_norm":     maxNorm,
		"straightness": straightness,
		"inlier_ratio": inlierRatio,
	}
	if score < lineMinScore {
		return est.reject(ReasonScore)
	}
	return est
}

// fitLinePCA fits a segment through points along their principal axis.
// The endpoints are the extreme projections onto that axis.
func fitLinePCA(points []geometry.Point) (Line, bool) {
	if len(points) < 2 {
		return Line{}, false
	}

	var meanX, meanY float64
	for _, p := range points {
		meanX += p.X
		meanY += p.Y
	}
	meanX /= float64(len(points))
	meanY /= float64(len(points))

	var sxx, sxy, syy float64
	for _, p := range points {
		dx := p.X - meanX
		dy := p.Y - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}

	vx, vy := geometry.PrincipalAxis(sxx, sxy, syy)

	tMin, tMax := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		t := (p.X-meanX)*vx + (p.Y-meanY)*vy
		tMin = math.Min(tMin, t)
		tMax = math.Max(tMax, t)
	}

	l := Line{
		P1: geometry.Point{X: meanX + vx*tMin, Y: meanY + vy*tMin},
		P2: geometry.Point{X: meanX + vx*tMax, Y: meanY + vy*tMax},
	}
	return l, finite(l)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
