package detection

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/logging"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

// Recognition preconditions on the simplified stroke.
const (
	// MinPoints is the fewest simplified points worth recognizing.
	MinPoints = 10

	// MinDiagonal is the smallest bounding diagonal, in pixels, worth
	// recognizing. Tiny scribbles stay freehand at every sensitivity.
	MinDiagonal = 12

	// DiagnosticPoints caps the points echoed back by Diagnose.
	DiagnosticPoints = 160
)

// pcgIncrement decorrelates the two PCG words derived from one seed.
const pcgIncrement = 0x9e3779b97f4a7c15

// Recognizer turns freehand strokes into analytic shapes.
//
// A Recognizer holds only its options and is safe for concurrent use. Every
// call draws from its own random stream: fixed when a seed is configured,
// fresh otherwise.
type Recognizer struct {
	seed   uint64
	seeded bool
	logger *slog.Logger
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithSeed makes every call use the same PCG stream, so identical input
// always yields identical output.
func WithSeed(seed uint64) Option {
	return func(r *Recognizer) {
		r.seed = seed
		r.seeded = true
	}
}

// WithLogger sets the logger for per-estimator debug records. The default is
// the process-wide logger from the logging package.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recognizer) {
		r.logger = l
	}
}

// New creates a Recognizer.
func New(opts ...Option) *Recognizer {
	r := &Recognizer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recognizer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.Logger()
}

func (r *Recognizer) newRand() *rand.Rand {
	if r.seeded {
		return rand.New(rand.NewPCG(r.seed, r.seed^pcgIncrement))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// prepared is a stroke that passed the recognition preconditions.
type prepared struct {
	points []geometry.Point
	diag   float64
	width  float64
	params sensitivity.Params
}

// prepare sanitizes and simplifies a stroke. reason is non-empty when the
// stroke is not worth recognizing.
func prepare(points []geometry.Point, width float64, s int) (prepared, Reason) {
	if !geometry.IsFinite(width) || width < 0 {
		width = 0
	}
	pr := prepared{width: width, params: sensitivity.Derive(s)}

	clean := make([]geometry.Point, 0, len(points))
	for _, p := range points {
		if p.IsFinite() {
			clean = append(clean, p)
		}
	}
	if len(clean) < MinPoints {
		return pr, ReasonTooFewPoints
	}

	pr.points = geometry.Simplify(clean, geometry.SimplifyDistance(width))
	if len(pr.points) < MinPoints {
		return pr, ReasonTooFewPoints
	}

	pr.diag = math.Max(1, geometry.BoundsOf(pr.points).Diagonal())
	if pr.diag < MinDiagonal {
		return pr, ReasonTooSmall
	}
	return pr, ""
}

// estimate runs every estimator on the same simplified points and params.
func (r *Recognizer) estimate(pr prepared) []Estimate {
	rng := r.newRand()
	ests := []Estimate{
		EstimateLine(pr.points, pr.diag, pr.width, pr.params, rng),
		EstimateCircle(pr.points, pr.diag, pr.width, pr.params, rng),
		EstimateParabola(pr.points, pr.diag, pr.params),
	}

	log := r.log()
	for _, e := range ests {
		log.Debug("estimator verdict",
			"kind", e.Kind,
			"score", e.Score,
			"rejected", e.Rejected,
			"reason", e.Reason)
	}
	return ests
}

// candidates keeps the non-rejected estimates, best score first.
func candidates(ests []Estimate) []Candidate {
	var out []Candidate
	for _, e := range ests {
		if c, ok := e.Candidate(); ok {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return out
}

func resultOf(c Candidate) Result {
	return Result{Candidate: &c, Points: Materialize(c.Shape)}
}

// Recognize classifies a stroke.
//
// Parameters:
//   - points: raw pointer samples in drawing order.
//   - width: stroke width in pixels.
//   - s: sensitivity 0-100; out-of-range values are clamped.
//
// Returns:
//   - The winning shape and its regenerated points, or the zero Result when
//     the stroke should stay freehand.
//
// # Arbitration
//
// All three estimators run on the same simplified points. The candidates are
// ranked by score and only the top one is considered: it is accepted when its
// score reaches the acceptance floor of its own kind, otherwise the stroke is
// unrecognized even if a lower-ranked candidate would have cleared its floor.
func (r *Recognizer) Recognize(points []geometry.Point, width float64, s int) Result {
	pr, reason := prepare(points, width, s)
	if reason != "" {
		r.log().Debug("stroke skipped", "reason", reason, "points", len(points))
		return Result{}
	}

	ranked := candidates(r.estimate(pr))
	if len(ranked) == 0 {
		return Result{}
	}
	best := ranked[0]
	if best.Score < acceptFloor(pr.params, best.Kind) {
		r.log().Debug("top candidate below floor",
			"kind", best.Kind,
			"score", best.Score,
			"floor", acceptFloor(pr.params, best.Kind))
		return Result{}
	}

	r.log().Debug("stroke recognized", "kind", best.Kind, "score", best.Score)
	return resultOf(best)
}

// Candidates returns every shape that clears its own acceptance floor, best
// score first, so a caller can offer the user a choice. The list is empty
// when nothing qualifies.
func (r *Recognizer) Candidates(points []geometry.Point, width float64, s int) []Candidate {
	pr, reason := prepare(points, width, s)
	if reason != "" {
		return nil
	}

	var out []Candidate
	for _, c := range candidates(r.estimate(pr)) {
		if c.Score >= acceptFloor(pr.params, c.Kind) {
			out = append(out, c)
		}
	}
	return out
}

// Convert snaps a stroke to the requested kind when that kind is among the
// Candidates. ok is false otherwise.
func (r *Recognizer) Convert(points []geometry.Point, width float64, s int, kind Kind) (Result, bool) {
	for _, c := range r.Candidates(points, width, s) {
		if c.Kind == kind {
			return resultOf(c), true
		}
	}
	return Result{}, false
}

// Diagnosis explains a recognition decision.
type Diagnosis struct {
	Sensitivity int                `json:"sensitivity"`
	Params      sensitivity.Params `json:"params"`
	Width       float64            `json:"width"`

	// RawCount and SimplifiedCount are point counts before and after
	// simplification.
	RawCount        int     `json:"raw_count"`
	SimplifiedCount int     `json:"simplified_count"`
	Diagonal        float64 `json:"diagonal"`

	// Skipped is set when the stroke failed a precondition and no estimator
	// ran.
	Skipped Reason `json:"skipped,omitempty"`

	Estimates []Estimate `json:"estimates,omitempty"`

	// Accepted is the recognized kind, nil when the stroke stays freehand.
	Accepted *Kind `json:"accepted,omitempty"`

	// Points is the simplified stroke, downsampled to DiagnosticPoints.
	Points []geometry.Point `json:"points,omitempty"`
}

// Diagnose runs the same pipeline as Recognize and reports every
// estimator's verdict, including rejected ones and their reasons.
func (r *Recognizer) Diagnose(points []geometry.Point, width float64, s int) Diagnosis {
	pr, reason := prepare(points, width, s)
	d := Diagnosis{
		Sensitivity: max(0, min(100, s)),
		Params:      pr.params,
		Width:       pr.width,
		RawCount:    len(points),
		Skipped:     reason,
	}
	if pr.points != nil {
		d.SimplifiedCount = len(pr.points)
		d.Diagonal = pr.diag
		d.Points = geometry.Downsample(pr.points, DiagnosticPoints)
	}
	if reason != "" {
		return d
	}

	d.Estimates = r.estimate(pr)
	if ranked := candidates(d.Estimates); len(ranked) > 0 {
		if best := ranked[0]; best.Score >= acceptFloor(pr.params, best.Kind) {
			kind := best.Kind
			d.Accepted = &kind
		}
	}
	return d
}

// Recognize classifies a stroke with a default Recognizer.
func Recognize(points []geometry.Point, width float64, s int) Result {
	return New().Recognize(points, width, s)
}
