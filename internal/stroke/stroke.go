package stroke

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

// ErrNoPoints is returned for a stroke without samples.
var ErrNoPoints = errors.New("stroke has no points")

// Stroke is an ordered list of pointer samples with its drawing settings.
type Stroke struct {
	// Points are the samples in drawing order.
	Points []geometry.Point `json:"points"`

	// Width is the pen width in pixels. Zero means unset.
	Width float64 `json:"width,omitempty"`

	// Sensitivity is the recognition sensitivity 0-100, nil when unset.
	Sensitivity *int `json:"sensitivity,omitempty"`
}

// Parse decodes a stroke document and validates it.
func Parse(data []byte) (*Stroke, error) {
	var s Stroke
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode stroke: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the stroke has points and sane settings.
func (s *Stroke) Validate() error {
	if len(s.Points) == 0 {
		return ErrNoPoints
	}
	if s.Width < 0 || !geometry.IsFinite(s.Width) {
		return fmt.Errorf("invalid stroke width %v", s.Width)
	}
	if s.Sensitivity != nil && (*s.Sensitivity < 0 || *s.Sensitivity > 100) {
		return fmt.Errorf("sensitivity %d out of range [0, 100]", *s.Sensitivity)
	}
	return nil
}

// WidthOr returns the stroke width, or def when unset.
func (s *Stroke) WidthOr(def float64) float64 {
	if s.Width > 0 {
		return s.Width
	}
	return def
}

// SensitivityOr returns the stroke sensitivity, or def when unset.
func (s *Stroke) SensitivityOr(def int) int {
	if s.Sensitivity != nil {
		return *s.Sensitivity
	}
	return def
}
