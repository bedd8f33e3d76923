// Package server implements the MCP (Model Context Protocol) server for
// stroke recognition tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the recognizer
// through the MCP protocol, so an assistant or a drawing front end can turn
// freehand strokes into clean shapes and inspect why a stroke was or was not
// recognized.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Recognition:
//   - stroke_recognize: Best shape, or recognized=false
//   - stroke_candidates: Every shape clearing its own threshold
//   - stroke_diagnose: Per-estimator verdicts and rejection reasons
//   - sensitivity_params: Thresholds derived from a sensitivity
//
// Stroke Information:
//   - stroke_load: Load a stroke file and summarize it
//   - stroke_simplify: Minimum-distance simplification
//
// Measurement:
//   - stroke_measure: Length, straightness, closedness, bounds
//   - stroke_measure_distance: Distance and angle between two points
//   - stroke_check_alignment: Horizontal/vertical alignment test
//
// Rendering:
//   - stroke_preview: PNG of the stroke with its recognized shape
//
// # Strokes
//
// Every stroke tool takes either inline "points" or the "path" of a JSON
// stroke file:
//
//	{"points": [{"x": 0, "y": 0}, {"x": 4, "y": 1}], "width": 4, "sensitivity": 50}
//
// Width and sensitivity come from the tool arguments, then the file, then
// the server configuration. Files are cached by path for the lifetime of the
// process; stroke_load with reload=true refreshes an entry.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC errors with code -32000 and the
// error text in data. Malformed tools/call params use -32602 and unknown
// methods -32601.
package server
