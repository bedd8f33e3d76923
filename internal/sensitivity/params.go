// Package sensitivity turns the single 0-100 sensitivity knob into the full
// set of tolerances and acceptance floors used by the shape estimators.
//
// Every field is a linear interpolation between a strict bound (sensitivity
// 0) and a loose bound (sensitivity 100). Strict bounds are never looser than
// loose ones, so raising sensitivity never makes a shape harder to accept.
package sensitivity

import "math"

// Default is the sensitivity used when the caller does not choose one.
const Default = 50

// Params holds the per-call tolerances derived from a sensitivity value.
// It is a plain value: compute it once per recognition and pass it along.
type Params struct {
	// S is the normalized sensitivity in [0, 1].
	S float64 `json:"s"`

	AcceptScore    float64 `json:"accept_score"`
	AcceptLine     float64 `json:"accept_line"`
	AcceptCircle   float64 `json:"accept_circle"`
	AcceptParabola float64 `json:"accept_parabola"`

	LineRMSETol     float64 `json:"line_rmse_tol"`
	LineMaxTol      float64 `json:"line_max_tol"`
	LineStraightMin float64 `json:"line_straight_min"`
	LineInlierMin   float64 `json:"line_inlier_min"`
	LineEpsNorm     float64 `json:"line_eps_norm"`

	CircleClosedMax    float64 `json:"circle_closed_max"`
	CircleRadialStdTol float64 `json:"circle_radial_std_tol"`
	CircleMeanAbsTol   float64 `json:"circle_mean_abs_tol"`
	CircleCoverageMin  float64 `json:"circle_coverage_min"` // radians
	CircleAspectMin    float64 `json:"circle_aspect_min"`
	CircleInlierMin    float64 `json:"circle_inlier_min"`
	CircleEpsNorm      float64 `json:"circle_eps_norm"`

	ParabolaRMSETol    float64 `json:"parabola_rmse_tol"`
	ParabolaInlierFrac float64 `json:"parabola_inlier_frac"`
	ParabolaCurvMin    float64 `json:"parabola_curv_min"`
	ParabolaClosedMax  float64 `json:"parabola_closed_max"`
}

// span is one strict/loose pair.
type span struct {
	strict, loose float64
}

func (b span) at(s float64) float64 {
	return b.strict + (b.loose-b.strict)*s
}

// bounds lists every interpolated field. The order matches Params.
var bounds = []struct {
	name  string
	span  span
	field func(*Params) *float64
}{
	{"accept_score", span{0.96, 0.62}, func(p *Params) *float64 { return &p.AcceptScore }},
	{"accept_line", span{0.96, 0.70}, func(p *Params) *float64 { return &p.AcceptLine }},
	{"accept_circle", span{0.96, 0.45}, func(p *Params) *float64 { return &p.AcceptCircle }},
	{"accept_parabola", span{0.96, 0.42}, func(p *Params) *float64 { return &p.AcceptParabola }},

	{"line_rmse_tol", span{0.018, 0.070}, func(p *Params) *float64 { return &p.LineRMSETol }},
	{"line_max_tol", span{0.045, 0.120}, func(p *Params) *float64 { return &p.LineMaxTol }},
	{"line_straight_min", span{0.90, 0.65}, func(p *Params) *float64 { return &p.LineStraightMin }},
	{"line_inlier_min", span{0.82, 0.60}, func(p *Params) *float64 { return &p.LineInlierMin }},
	{"line_eps_norm", span{0.010, 0.020}, func(p *Params) *float64 { return &p.LineEpsNorm }},

	{"circle_closed_max", span{0.12, 0.50}, func(p *Params) *float64 { return &p.CircleClosedMax }},
	{"circle_radial_std_tol", span{0.08, 0.22}, func(p *Params) *float64 { return &p.CircleRadialStdTol }},
	{"circle_mean_abs_tol", span{0.05, 0.12}, func(p *Params) *float64 { return &p.CircleMeanAbsTol }},
	{"circle_coverage_min", span{5.6, 2.8}, func(p *Params) *float64 { return &p.CircleCoverageMin }},
	{"circle_aspect_min", span{0.85, 0.25}, func(p *Params) *float64 { return &p.CircleAspectMin }},
	{"circle_inlier_min", span{0.82, 0.45}, func(p *Params) *float64 { return &p.CircleInlierMin }},
	{"circle_eps_norm", span{0.012, 0.024}, func(p *Params) *float64 { return &p.CircleEpsNorm }},

	{"parabola_rmse_tol", span{0.020, 0.180}, func(p *Params) *float64 { return &p.ParabolaRMSETol }},
	{"parabola_inlier_frac", span{0.85, 0.50}, func(p *Params) *float64 { return &p.ParabolaInlierFrac }},
	{"parabola_curv_min", span{0.20, 0.02}, func(p *Params) *float64 { return &p.ParabolaCurvMin }},
	// Closedness below this marks a stroke as a loop and penalizes the
	// parabola, so the strict end is the larger value.
	{"parabola_closed_max", span{0.35, 0.10}, func(p *Params) *float64 { return &p.ParabolaClosedMax }},
}

// Normalize clamps sensitivity to [0, 100] and scales it to [0, 1].
func Normalize(sensitivity int) float64 {
	return math.Max(0, math.Min(100, float64(sensitivity))) / 100
}

// Derive computes Params for a sensitivity value. Out-of-range values are
// clamped to [0, 100].
func Derive(sensitivity int) Params {
	s := Normalize(sensitivity)
	p := Params{S: s}
	for _, b := range bounds {
		*b.field(&p) = b.span.at(s)
	}
	return p
}

// Fields returns every interpolated value keyed by its snake_case name.
func (p Params) Fields() map[string]float64 {
	out := make(map[string]float64, len(bounds)+1)
	out["s"] = p.S
	for _, b := range bounds {
		out[b.name] = *b.field(&p)
	}
	return out
}
