package server

import "github.com/ironsheep/stroke-tools-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pointSchema describes one stroke sample.
var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x": map[string]interface{}{"type": "number"},
		"y": map[string]interface{}{"type": "number"},
	},
	"required": []string{"x", "y"},
}

// strokeInputSchema returns an object schema accepting a stroke by path or
// inline points, plus the tool-specific properties in extra.
func strokeInputSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to a JSON stroke file. Mutually exclusive with points.",
		},
		"points": map[string]interface{}{
			"type":        "array",
			"description": "Stroke samples in drawing order, e.g. [{\"x\":0,\"y\":0},...]. Y grows downward.",
			"items":       pointSchema,
		},
		"width": map[string]interface{}{
			"type":        "number",
			"description": "Pen width in pixels. Overrides the file's width and the server default.",
		},
		"sensitivity": map[string]interface{}{
			"type":        "integer",
			"description": "Recognition sensitivity, 0 (strict) to 100 (loose). Overrides the file's value and the server default.",
			"minimum":     0,
			"maximum":     100,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
}

var kindSchema = map[string]interface{}{
	"type":        "string",
	"description": "Force this shape instead of the best one. It must still clear its own threshold.",
	"enum":        []string{"line", "circle", "parabola"},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Recognition
		{
			Name:        "stroke_recognize",
			Description: "Recognize a freehand stroke as a line, circle or parabola. Returns the accepted shape with its score and a dense polyline to draw, or recognized=false when the stroke should stay freehand.",
			InputSchema: strokeInputSchema(map[string]interface{}{
				"kind": kindSchema,
			}),
		},
		{
			Name:        "stroke_candidates",
			Description: "List every shape that clears its own acceptance threshold, best first. Use this to offer the user a choice of conversions.",
			InputSchema: strokeInputSchema(nil),
		},
		{
			Name:        "stroke_diagnose",
			Description: "Explain a recognition decision: derived parameters, simplification counts and each estimator's verdict, including rejection reasons.",
			InputSchema: strokeInputSchema(nil),
		},
		{
			Name:        "sensitivity_params",
			Description: "Show the thresholds derived from a sensitivity value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sensitivity": map[string]interface{}{
						"type":        "integer",
						"description": "Sensitivity, 0 (strict) to 100 (loose). Defaults to the server setting.",
						"minimum":     0,
						"maximum":     100,
					},
				},
			},
		},

		// Stroke Information
		{
			Name:        "stroke_load",
			Description: "Load a stroke file and return its point count, bounds and stored settings. Loaded strokes are cached by path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the JSON stroke file",
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Discard the cached copy and read the file again",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stroke_simplify",
			Description: "Drop samples closer than the width-dependent spacing used before recognition. Optionally downsample the result.",
			InputSchema: strokeInputSchema(map[string]interface{}{
				"max_points": map[string]interface{}{
					"type":        "integer",
					"description": "Downsample to at most this many points; 0 keeps all",
					"default":     0,
				},
			}),
		},

		// Measurement
		{
			Name:        "stroke_measure",
			Description: "Measure a stroke: path length, chord, straightness, closedness, bounds and overall direction.",
			InputSchema: strokeInputSchema(nil),
		},
		{
			Name:        "stroke_measure_distance",
			Description: "Measure the distance and angle between two points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x1": map[string]interface{}{
						"type":        "number",
						"description": "First point X coordinate",
					},
					"y1": map[string]interface{}{
						"type":        "number",
						"description": "First point Y coordinate",
					},
					"x2": map[string]interface{}{
						"type":        "number",
						"description": "Second point X coordinate",
					},
					"y2": map[string]interface{}{
						"type":        "number",
						"description": "Second point Y coordinate",
					},
				},
				"required": []string{"x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "stroke_check_alignment",
			Description: "Check whether the stroke's samples are horizontally or vertically aligned within a tolerance.",
			InputSchema: strokeInputSchema(map[string]interface{}{
				"tolerance": map[string]interface{}{
					"type":        "number",
					"description": "Allowed deviation in pixels",
					"default":     5,
				},
			}),
		},

		// Rendering
		{
			Name:        "stroke_preview",
			Description: "Render the stroke, and the shape it is recognized as, to a base64-encoded PNG.",
			InputSchema: strokeInputSchema(map[string]interface{}{
				"kind": kindSchema,
				"recognize": map[string]interface{}{
					"type":        "boolean",
					"description": "Draw the recognized shape over the stroke",
					"default":     true,
				},
				"image_width": map[string]interface{}{
					"type":        "integer",
					"description": "Output width in pixels. Defaults to the server setting.",
					"minimum":     imaging.MinPreviewSize,
					"maximum":     imaging.MaxPreviewSize,
				},
				"image_height": map[string]interface{}{
					"type":        "integer",
					"description": "Output height in pixels. Defaults to the server setting.",
					"minimum":     imaging.MinPreviewSize,
					"maximum":     imaging.MaxPreviewSize,
				},
				"grid_spacing": map[string]interface{}{
					"type":        "number",
					"description": "Draw a coordinate grid every N world units; 0 disables it",
					"default":     0,
				},
				"show_coordinates": map[string]interface{}{
					"type":        "boolean",
					"description": "Label grid intersections with coordinates",
					"default":     true,
				},
				"blur": map[string]interface{}{
					"type":        "number",
					"description": "Gaussian blur radius for the freehand layer. Defaults to the server setting.",
				},
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
