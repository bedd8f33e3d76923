package stroke

import (
	"math"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

// Measurement describes the extent and shape of a stroke.
type Measurement struct {
	PointCount      int `json:"point_count"`
	SimplifiedCount int `json:"simplified_count"`

	// PathLength is the length of the simplified polyline.
	PathLength float64 `json:"path_length"`

	// Chord is the straight distance from the first to the last point.
	Chord float64 `json:"chord"`

	// Straightness is Chord / PathLength, 1 for a perfectly straight stroke.
	Straightness float64 `json:"straightness"`

	// Closedness is Chord / Diagonal, near 0 for a closed loop.
	Closedness float64 `json:"closedness"`

	Bounds   geometry.Bounds `json:"bounds"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Diagonal float64         `json:"diagonal"`

	// Direction is the first-to-last displacement.
	Direction DistanceResult `json:"direction"`

	Alignment AlignmentResult `json:"alignment"`
}

// Measure computes a Measurement after the same simplification recognition
// uses for a pen of the given width. Values are rounded to two decimals.
func Measure(points []geometry.Point, width float64) Measurement {
	simplified := geometry.Simplify(points, geometry.SimplifyDistance(width))

	m := Measurement{
		PointCount:      len(points),
		SimplifiedCount: len(simplified),
	}
	if len(simplified) == 0 {
		return m
	}

	first, last := simplified[0], simplified[len(simplified)-1]
	bounds := geometry.BoundsOf(simplified)
	diag := bounds.Diagonal()
	length := geometry.PathLength(simplified)
	chord := first.Dist(last)

	m.PathLength = round2(length)
	m.Chord = round2(chord)
	if length > 0 {
		m.Straightness = round3(chord / length)
	}
	m.Closedness = round3(geometry.Closedness(simplified, diag))
	m.Bounds = bounds
	m.Width = round2(bounds.Width())
	m.Height = round2(bounds.Height())
	m.Diagonal = round2(diag)
	m.Direction = MeasureDistance(first, last)
	m.Alignment = CheckAlignment(simplified, math.Max(1, width))
	return m
}

// DistanceResult contains measurement information between two points.
type DistanceResult struct {
	DistancePixels float64 `json:"distance_pixels"`
	DeltaX         float64 `json:"delta_x"`
	DeltaY         float64 `json:"delta_y"`

	// AngleDegrees is 0 for rightward and 90 for downward.
	AngleDegrees float64 `json:"angle_degrees"`
}

// MeasureDistance calculates the distance and direction from a to b.
func MeasureDistance(a, b geometry.Point) DistanceResult {
	d := b.Sub(a)
	angle := math.Atan2(d.Y, d.X) * 180 / math.Pi

	return DistanceResult{
		DistancePixels: round2(a.Dist(b)),
		DeltaX:         round2(d.X),
		DeltaY:         round2(d.Y),
		AngleDegrees:   math.Round(angle*10) / 10,
	}
}

// AlignmentResult contains alignment check information.
type AlignmentResult struct {
	HorizontallyAligned bool    `json:"horizontally_aligned"`
	VerticallyAligned   bool    `json:"vertically_aligned"`
	HorizontalVariance  float64 `json:"horizontal_variance"`
	VerticalVariance    float64 `json:"vertical_variance"`
	AverageY            float64 `json:"average_y"`
	AverageX            float64 `json:"average_x"`
}

// CheckAlignment checks if points lie on a horizontal or vertical line,
// within tolerance pixels of standard deviation.
func CheckAlignment(points []geometry.Point, tolerance float64) AlignmentResult {
	if len(points) < 2 {
		return AlignmentResult{
			HorizontallyAligned: true,
			VerticallyAligned:   true,
		}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	avgX := sumX / float64(len(points))
	avgY := sumY / float64(len(points))

	var varX, varY float64
	for _, p := range points {
		dx := p.X - avgX
		dy := p.Y - avgY
		varX += dx * dx
		varY += dy * dy
	}
	varX = math.Sqrt(varX / float64(len(points)))
	varY = math.Sqrt(varY / float64(len(points)))

	return AlignmentResult{
		HorizontallyAligned: varY <= tolerance,
		VerticallyAligned:   varX <= tolerance,
		HorizontalVariance:  round2(varY),
		VerticalVariance:    round2(varX),
		AverageY:            round2(avgY),
		AverageX:            round2(avgX),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
