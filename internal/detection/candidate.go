package detection

import (
	"encoding/json"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

// Reason explains why an estimator produced no candidate.
type Reason string

const (
	ReasonTooFewPoints Reason = "too-few-points"
	ReasonTooSmall     Reason = "too-small"
	ReasonInliers      Reason = "inliers"
	ReasonAspect       Reason = "aspect"
	ReasonClosedness   Reason = "closedness"
	ReasonFitFailed    Reason = "fit-failed"
	ReasonCoverage     Reason = "coverage"
	ReasonScore        Reason = "score"
)

// Metrics are the named quality signals an estimator computed, for
// diagnostics and logging.
type Metrics map[string]float64

// Candidate is an accepted estimator output.
type Candidate struct {
	// Kind duplicates Shape.Kind() so the JSON form is self-describing.
	Kind Kind `json:"kind"`

	// Shape holds the analytic parameters: Line, Circle or Parabola.
	Shape Shape `json:"shape"`

	// Score is the fit quality in [0, 1]; higher is better.
	Score float64 `json:"score"`

	// Metrics are the quality signals the score was built from.
	Metrics Metrics `json:"metrics,omitempty"`
}

// Estimate is the full verdict of one estimator, accepted or not.
//
// A rejected Estimate may still carry a Shape when the fit itself succeeded
// and only a later gate failed.
type Estimate struct {
	Kind     Kind    `json:"kind"`
	Shape    Shape   `json:"shape,omitempty"`
	Score    float64 `json:"score"`
	Rejected bool    `json:"rejected"`
	Reason   Reason  `json:"reason,omitempty"`
	Metrics  Metrics `json:"metrics,omitempty"`
}

func (e Estimate) reject(reason Reason) Estimate {
	e.Rejected = true
	e.Reason = reason
	return e
}

// Candidate returns the estimate as a Candidate. ok is false when the
// estimator rejected the stroke.
func (e Estimate) Candidate() (c Candidate, ok bool) {
	if e.Rejected || e.Shape == nil {
		return Candidate{}, false
	}
	return Candidate{Kind: e.Kind, Shape: e.Shape, Score: e.Score, Metrics: e.Metrics}, true
}

// acceptFloor is the per-shape score a candidate must reach to be accepted.
func acceptFloor(p sensitivity.Params, k Kind) float64 {
	switch k {
	case KindLine:
		return p.AcceptLine
	case KindCircle:
		return p.AcceptCircle
	case KindParabola:
		return p.AcceptParabola
	default:
		return p.AcceptScore
	}
}

// Result is the outcome of one recognition call. The zero value means the
// stroke was not recognized and the caller keeps the freehand points.
type Result struct {
	// Candidate is the winning shape, nil when unrecognized.
	Candidate *Candidate `json:"candidate,omitempty"`

	// Points is a dense polyline regenerated from the analytic shape.
	Points []geometry.Point `json:"points,omitempty"`
}

// Recognized reports whether a shape was accepted.
func (r Result) Recognized() bool {
	return r.Candidate != nil
}

// MarshalJSON adds the "recognized" flag to the encoded result.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		Recognized bool `json:"recognized"`
		plain
	}{r.Recognized(), plain(r)})
}
