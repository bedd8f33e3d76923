// Package imaging renders stroke previews for the MCP server.
//
// A preview shows the freehand stroke as drawn and, on top of it, the
// regenerated points of the shape it was recognized as, so a client can
// judge a recognition at a glance. Previews are returned as base64 PNG.
//
// # Coordinate System
//
// Stroke coordinates are world units with Y increasing downward, the same
// convention as image pixels. RenderPreview fits the drawing into the output
// size preserving aspect ratio, and reports the resulting pixels-per-unit
// scale.
//
// # Rendering
//
// Drawing happens at twice the output resolution and is scaled down with a
// Lanczos filter for smooth edges. The freehand layer can be softened with a
// Gaussian blur so the crisp recognized shape stands out. An optional
// world-space grid with coordinate labels helps read positions off the
// image.
package imaging
