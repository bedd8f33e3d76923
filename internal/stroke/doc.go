// Package stroke models freehand strokes as they arrive from clients and
// from stroke files on disk.
//
// A stroke file is a JSON document:
//
//	{
//	  "points": [{"x": 10, "y": 20, "pressure": 0.5}, ...],
//	  "width": 4,
//	  "sensitivity": 50
//	}
//
// Per-sample pressure is accepted and ignored. Width and sensitivity are
// optional; callers fill them from configuration when absent.
//
// Cache keeps decoded strokes in memory keyed by path, and the measurement
// helpers describe a stroke's extent and straightness without running
// recognition.
package stroke
