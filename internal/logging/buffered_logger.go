package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// BufferedLogHandler is a slog.Handler that keeps records in memory as JSON
// lines, so tests can assert on what the recognizer reported.
//
//	handler := logging.NewBufferedLogHandler(nil)
//	rec := detection.New(detection.WithLogger(slog.New(handler)))
//	rec.Recognize(points, 4, 50)
//	if handler.Contains(`"kind":"circle"`) { ... }
type BufferedLogHandler struct {
	level      slog.Leveler
	buffer     *bytes.Buffer
	mu         *sync.Mutex // shared with handlers derived via WithAttrs/WithGroup
	preAttrs   []slog.Attr
	groupNames []string
}

// NewBufferedLogHandler returns an empty handler. A nil opts captures every
// level.
func NewBufferedLogHandler(opts *slog.HandlerOptions) *BufferedLogHandler {
	h := &BufferedLogHandler{
		buffer: &bytes.Buffer{},
		mu:     &sync.Mutex{},
	}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled implements slog.Handler.
func (h *BufferedLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferedLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := logEntry{
		Level:    r.Level.String(),
		Message:  r.Message,
		DateTime: r.Time.Format(time.DateTime),
		Attrs:    make(map[string]any, len(h.preAttrs)+r.NumAttrs()),
	}

	for _, attr := range h.preAttrs {
		entry.Attrs[attr.Key] = attr.Value.Resolve().Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		h.addAttr(entry.Attrs, attr)
		return true
	})

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	h.buffer.Write(data)
	h.buffer.WriteByte('\n')

	return nil
}

// addAttr stores attr under its dotted group path.
func (h *BufferedLogHandler) addAttr(into map[string]any, attr slog.Attr) {
	into[h.key(attr.Key)] = attr.Value.Resolve().Any()
}

func (h *BufferedLogHandler) key(k string) string {
	if len(h.groupNames) == 0 {
		return k
	}
	return strings.Join(h.groupNames, ".") + "." + k
}

// WithAttrs implements slog.Handler.
func (h *BufferedLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()

	newAttrs := make([]slog.Attr, len(h.preAttrs), len(h.preAttrs)+len(attrs))
	copy(newAttrs, h.preAttrs)
	// Attributes keep the groups open at the time they were attached.
	for _, a := range attrs {
		newAttrs = append(newAttrs, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}

	return &BufferedLogHandler{
		level:      h.level,
		buffer:     h.buffer,
		mu:         h.mu,
		preAttrs:   newAttrs,
		groupNames: h.groupNames,
	}
}

// WithGroup implements slog.Handler.
func (h *BufferedLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	newGroups := make([]string, len(h.groupNames), len(h.groupNames)+1)
	copy(newGroups, h.groupNames)
	newGroups = append(newGroups, name)

	return &BufferedLogHandler{
		level:      h.level,
		buffer:     h.buffer,
		mu:         h.mu,
		preAttrs:   h.preAttrs,
		groupNames: newGroups,
	}
}

// String returns everything captured so far.
func (h *BufferedLogHandler) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffer.String()
}

// Reset discards captured output.
func (h *BufferedLogHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buffer.Reset()
}

// Contains reports whether the captured output contains s.
func (h *BufferedLogHandler) Contains(s string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Contains(h.buffer.Bytes(), []byte(s))
}

// Lines returns the number of captured records.
func (h *BufferedLogHandler) Lines() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Count(h.buffer.Bytes(), []byte{'\n'})
}

type logEntry struct {
	Level    string         `json:"level"`
	Message  string         `json:"message"`
	DateTime string         `json:"datetime"`
	Attrs    map[string]any `json:"attrs,omitempty"`
}
