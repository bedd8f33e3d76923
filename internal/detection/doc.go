// Package detection recognizes freehand strokes as lines, circles or
// parabolas.
//
// A stroke is an ordered list of pointer samples. The package decides whether
// it was meant as one of three analytic shapes and, if so, returns the exact
// parameters together with a dense polyline for display. Strokes that match
// nothing well enough are left unrecognized so the caller keeps the freehand
// points.
//
// # Pipeline
//
// Every recognition call follows the same steps:
//
//  1. Preparation: non-finite samples are dropped and the stroke is
//     simplified by radial distance (see geometry.Simplify). Strokes with
//     fewer than MinPoints points or a bounding diagonal below MinDiagonal
//     are skipped.
//  2. Estimation: EstimateLine, EstimateCircle and EstimateParabola run on the
//     same simplified points with the same sensitivity.Params. Each returns
//     an Estimate that is either a scored candidate or a rejection with a
//     Reason.
//  3. Arbitration: candidates are ranked by score and the top one is accepted
//     when it reaches the acceptance floor of its own kind.
//  4. Materialization: Materialize turns the accepted Shape into display
//     points.
//
// # Shapes
//
// Shape is a closed set implemented by Line, Circle and Parabola. Code that
// needs the concrete parameters switches on the type:
//
//	switch s := c.Shape.(type) {
//	case detection.Line:
//	    // s.P1, s.P2
//	case detection.Circle:
//	    // s.CX, s.CY, s.R
//	case detection.Parabola:
//	    // s.At(t) for t in [s.TMin, s.TMax]
//	}
//
// # Scores
//
// Scores lie in [0, 1]. Each estimator builds its score from normalized
// error metrics (RMSE, radial spread, straightness, coverage) falling off
// against sensitivity-dependent tolerances. Scores are comparable across
// kinds only for ranking; acceptance always uses the per-kind floor.
//
// # Randomness
//
// The line and circle estimators use sample consensus. A Recognizer created
// with WithSeed replays the same random stream on every call and is fully
// deterministic. Without a seed each call draws a fresh stream; results on
// clean input are stable but metrics may vary slightly between calls.
//
// # Coordinate System
//
// Coordinates are screen pixels: origin at top-left, X rightward, Y
// downward. Nothing in the package depends on the handedness except the
// sign of a parabola's leading coefficient.
package detection
