package stroke

import (
	"fmt"
	"os"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

// Info summarizes a stroke file without recognizing it.
type Info struct {
	// PointCount is the number of raw samples.
	PointCount int `json:"point_count"`

	// Width and Sensitivity are as stored in the file; zero and nil when
	// absent.
	Width       float64 `json:"width,omitempty"`
	Sensitivity *int    `json:"sensitivity,omitempty"`

	// Bounds is the bounding box of the raw samples.
	Bounds geometry.Bounds `json:"bounds"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadInfo loads a stroke through cache and describes it.
//
// Parameters:
//   - cache: The stroke cache to load through. Must not be nil.
//   - path: Path to the stroke file.
//
// Returns:
//   - *Info: Summary of the stroke.
//   - error: Non-nil if the stroke cannot be loaded or the file cannot be
//     stat'd.
func LoadInfo(cache *Cache, path string) (*Info, error) {
	s, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &Info{
		PointCount:    len(s.Points),
		Width:         s.Width,
		Sensitivity:   s.Sensitivity,
		Bounds:        geometry.BoundsOf(s.Points),
		FileSizeBytes: stat.Size(),
	}, nil
}
