package stroke

import (
	"fmt"
	"os"
	"sync"
)

// Cache provides thread-safe caching of loaded stroke files to avoid
// redundant disk reads.
//
// Strokes are keyed by the exact path string passed to Load. Different paths
// to the same file (relative vs absolute) are separate entries. Cached
// strokes stay in memory until Evict or Clear.
//
// Callers must treat returned strokes as read-only; they are shared between
// every Load of the same path.
//
// # Example Usage
//
//	cache := stroke.NewCache()
//	s, err := cache.Load("/path/to/stroke.json")
//	if err != nil {
//	    return err
//	}
//	res := detection.Recognize(s.Points, s.WidthOr(4), s.SensitivityOr(50))
type Cache struct {
	mu      sync.RWMutex
	strokes map[string]*Stroke
}

// NewCache creates an empty cache, safe for concurrent use.
func NewCache() *Cache {
	return &Cache{
		strokes: make(map[string]*Stroke),
	}
}

// Load returns the stroke at path, reading and decoding the file on the
// first call.
//
// # Errors
//
//   - the file does not exist or cannot be read
//   - the file is not a valid stroke document (see Parse)
func (c *Cache) Load(path string) (*Stroke, error) {
	c.mu.RLock()
	if s, ok := c.strokes[path]; ok {
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stroke file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.mu.Lock()
	c.strokes[path] = s
	c.mu.Unlock()

	return s, nil
}

// Len returns the number of cached strokes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.strokes)
}

// Clear removes every cached stroke.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.strokes = make(map[string]*Stroke)
	c.mu.Unlock()
}

// Evict removes one path from the cache. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.strokes, path)
	c.mu.Unlock()
}
