package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/stroke-tools-mcp/internal/detection"
	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/imaging"
	"github.com/ironsheep/stroke-tools-mcp/internal/logging"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
	"github.com/ironsheep/stroke-tools-mcp/internal/stroke"
)

// previewPadding is the margin, in output pixels, around preview drawings.
const previewPadding = 24

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "stroke_recognize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors, and results that cannot be encoded as JSON, return a
// JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		logging.Logger().Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	text, err := marshalResult(result)
	if err != nil {
		logging.Logger().Error("failed to encode tool result", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Resolves the stroke from inline points or a cached file
//  3. Fills unset width and sensitivity from the configuration
//  4. Calls the appropriate detection/stroke/imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Recognition
	case "stroke_recognize":
		return s.handleStrokeRecognize(args)
	case "stroke_candidates":
		return s.handleStrokeCandidates(args)
	case "stroke_diagnose":
		return s.handleStrokeDiagnose(args)
	case "sensitivity_params":
		return s.handleSensitivityParams(args)

	// Stroke Information
	case "stroke_load":
		return s.handleStrokeLoad(args)
	case "stroke_simplify":
		return s.handleStrokeSimplify(args)

	// Measurement
	case "stroke_measure":
		return s.handleStrokeMeasure(args)
	case "stroke_measure_distance":
		return s.handleStrokeMeasureDistance(args)
	case "stroke_check_alignment":
		return s.handleStrokeCheckAlignment(args)

	// Rendering
	case "stroke_preview":
		return s.handleStrokePreview(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// marshalResult converts a tool result to a pretty-printed JSON string.
func marshalResult(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(b), nil
}

// === Stroke Resolution ===

// strokeArgs selects a stroke either inline or by file. Width and
// Sensitivity override what the file carries.
type strokeArgs struct {
	Path        string           `json:"path,omitempty"`
	Points      []geometry.Point `json:"points,omitempty"`
	Width       *float64         `json:"width,omitempty"`
	Sensitivity *int             `json:"sensitivity,omitempty"`
}

// resolvedStroke is a stroke with every setting filled in.
type resolvedStroke struct {
	points      []geometry.Point
	width       float64
	sensitivity int
}

var errNoStroke = errors.New("either path or points is required")

// resolveStroke loads or wraps the stroke in a and applies, in order, the
// explicit arguments, the file's own settings and the configured defaults.
func (s *Server) resolveStroke(a strokeArgs) (resolvedStroke, error) {
	var st *stroke.Stroke
	switch {
	case a.Path != "" && len(a.Points) > 0:
		return resolvedStroke{}, errors.New("path and points are mutually exclusive")
	case a.Path != "":
		loaded, err := s.cache.Load(a.Path)
		if err != nil {
			return resolvedStroke{}, err
		}
		st = loaded
	case len(a.Points) > 0:
		st = &stroke.Stroke{Points: a.Points}
	default:
		return resolvedStroke{}, errNoStroke
	}

	override := stroke.Stroke{Points: st.Points, Width: st.Width, Sensitivity: st.Sensitivity}
	if a.Width != nil {
		if *a.Width <= 0 {
			return resolvedStroke{}, fmt.Errorf("width must be positive, got %v", *a.Width)
		}
		override.Width = *a.Width
	}
	if a.Sensitivity != nil {
		override.Sensitivity = a.Sensitivity
	}
	if err := override.Validate(); err != nil {
		return resolvedStroke{}, err
	}

	return resolvedStroke{
		points:      override.Points,
		width:       override.WidthOr(s.cfg.Recognition.StrokeWidth),
		sensitivity: override.SensitivityOr(s.cfg.Recognition.Sensitivity),
	}, nil
}

func decodeArgs(args json.RawMessage, into interface{}) error {
	if err := json.Unmarshal(args, into); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Recognition Handlers ===

type strokeRecognizeArgs struct {
	strokeArgs
	Kind string `json:"kind,omitempty"`
}

// vertexForm is a parabola written as v = a·(t - h)² + k.
type vertexForm struct {
	A float64 `json:"a"`
	H float64 `json:"h"`
	K float64 `json:"k"`
}

type strokeRecognizeResult struct {
	Result      detection.Result `json:"result"`
	Sensitivity int              `json:"sensitivity"`
	Width       float64          `json:"width"`
	VertexForm  *vertexForm      `json:"vertex_form,omitempty"`
}

func (s *Server) handleStrokeRecognize(args json.RawMessage) (interface{}, error) {
	var a strokeRecognizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	rs, err := s.resolveStroke(a.strokeArgs)
	if err != nil {
		return nil, err
	}

	var res detection.Result
	if a.Kind != "" {
		kind, err := detection.ParseKind(a.Kind)
		if err != nil {
			return nil, err
		}
		// A kind that did not clear its threshold leaves res unrecognized.
		res, _ = s.recognizer.Convert(rs.points, rs.width, rs.sensitivity, kind)
	} else {
		res = s.recognizer.Recognize(rs.points, rs.width, rs.sensitivity)
	}

	out := strokeRecognizeResult{Result: res, Sensitivity: rs.sensitivity, Width: rs.width}
	if res.Recognized() {
		if p, ok := res.Candidate.Shape.(detection.Parabola); ok {
			if va, vh, vk, ok := p.VertexForm(); ok {
				out.VertexForm = &vertexForm{A: va, H: vh, K: vk}
			}
		}
	}
	return out, nil
}

type strokeCandidatesResult struct {
	Candidates  []detection.Candidate `json:"candidates"`
	Sensitivity int                   `json:"sensitivity"`
	Width       float64               `json:"width"`
}

func (s *Server) handleStrokeCandidates(args json.RawMessage) (interface{}, error) {
	var a strokeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	rs, err := s.resolveStroke(a)
	if err != nil {
		return nil, err
	}

	cands := s.recognizer.Candidates(rs.points, rs.width, rs.sensitivity)
	if cands == nil {
		cands = []detection.Candidate{}
	}
	return strokeCandidatesResult{Candidates: cands, Sensitivity: rs.sensitivity, Width: rs.width}, nil
}

func (s *Server) handleStrokeDiagnose(args json.RawMessage) (interface{}, error) {
	var a strokeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	rs, err := s.resolveStroke(a)
	if err != nil {
		return nil, err
	}
	return s.recognizer.Diagnose(rs.points, rs.width, rs.sensitivity), nil
}

type sensitivityParamsArgs struct {
	Sensitivity *int `json:"sensitivity"`
}

type sensitivityParamsResult struct {
	Sensitivity int                `json:"sensitivity"`
	Params      map[string]float64 `json:"params"`
}

func (s *Server) handleSensitivityParams(args json.RawMessage) (interface{}, error) {
	var a sensitivityParamsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	v := s.cfg.Recognition.Sensitivity
	if a.Sensitivity != nil {
		v = *a.Sensitivity
	}
	if v < 0 || v > 100 {
		return nil, fmt.Errorf("sensitivity %d out of range [0, 100]", v)
	}
	return sensitivityParamsResult{Sensitivity: v, Params: sensitivity.Derive(v).Fields()}, nil
}

// === Stroke Information Handlers ===

type strokeLoadArgs struct {
	Path string `json:"path"`

	// Reload drops any cached copy first, picking up edits to the file.
	Reload bool `json:"reload,omitempty"`
}

func (s *Server) handleStrokeLoad(args json.RawMessage) (interface{}, error) {
	var a strokeLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	return stroke.LoadInfo(s.cache, a.Path)
}

type strokeSimplifyArgs struct {
	strokeArgs
	MaxPoints int `json:"max_points,omitempty"`
}

type strokeSimplifyResult struct {
	OriginalCount   int              `json:"original_count"`
	SimplifiedCount int              `json:"simplified_count"`
	MinDistance     float64          `json:"min_distance"`
	Points          []geometry.Point `json:"points"`
}

func (s *Server) handleStrokeSimplify(args json.RawMessage) (interface{}, error) {
	var a strokeSimplifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MaxPoints < 0 {
		return nil, fmt.Errorf("max_points must not be negative, got %d", a.MaxPoints)
	}
	rs, err := s.resolveStroke(a.strokeArgs)
	if err != nil {
		return nil, err
	}

	minDist := geometry.SimplifyDistance(rs.width)
	simplified := geometry.Simplify(rs.points, minDist)
	out := strokeSimplifyResult{
		OriginalCount:   len(rs.points),
		SimplifiedCount: len(simplified),
		MinDistance:     minDist,
		Points:          simplified,
	}
	if a.MaxPoints > 0 {
		out.Points = geometry.Downsample(simplified, a.MaxPoints)
	}
	return out, nil
}

// === Measurement Handlers ===

func (s *Server) handleStrokeMeasure(args json.RawMessage) (interface{}, error) {
	var a strokeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	rs, err := s.resolveStroke(a)
	if err != nil {
		return nil, err
	}
	return stroke.Measure(rs.points, rs.width), nil
}

type strokeMeasureDistanceArgs struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (s *Server) handleStrokeMeasureDistance(args json.RawMessage) (interface{}, error) {
	var a strokeMeasureDistanceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return stroke.MeasureDistance(geometry.Pt(a.X1, a.Y1), geometry.Pt(a.X2, a.Y2)), nil
}

type strokeCheckAlignmentArgs struct {
	strokeArgs
	Tolerance float64 `json:"tolerance"`
}

func (s *Server) handleStrokeCheckAlignment(args json.RawMessage) (interface{}, error) {
	var a strokeCheckAlignmentArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Tolerance == 0 {
		a.Tolerance = 5
	}
	rs, err := s.resolveStroke(a.strokeArgs)
	if err != nil {
		return nil, err
	}
	return stroke.CheckAlignment(rs.points, a.Tolerance), nil
}

// === Rendering Handlers ===

type strokePreviewArgs struct {
	strokeArgs
	Kind            string   `json:"kind,omitempty"`
	Recognize       *bool    `json:"recognize,omitempty"`
	ImageWidth      int      `json:"image_width,omitempty"`
	ImageHeight     int      `json:"image_height,omitempty"`
	GridSpacing     float64  `json:"grid_spacing,omitempty"`
	ShowCoordinates *bool    `json:"show_coordinates,omitempty"`
	Blur            *float64 `json:"blur,omitempty"`
}

type strokePreviewResult struct {
	*imaging.PreviewResult

	// Kind is the shape drawn over the stroke, empty when none was.
	Kind  string  `json:"kind,omitempty"`
	Score float64 `json:"score,omitempty"`
}

func (s *Server) handleStrokePreview(args json.RawMessage) (interface{}, error) {
	var a strokePreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	rs, err := s.resolveStroke(a.strokeArgs)
	if err != nil {
		return nil, err
	}

	opts := imaging.PreviewOptions{
		Width:           s.cfg.Preview.Width,
		Height:          s.cfg.Preview.Height,
		Padding:         previewPadding,
		Background:      s.cfg.Preview.Background,
		Stroke:          s.cfg.Preview.Stroke,
		Shape:           s.cfg.Preview.Shape,
		Blur:            s.cfg.Preview.Blur,
		GridSpacing:     a.GridSpacing,
		ShowCoordinates: true,
	}
	if a.ImageWidth != 0 {
		opts.Width = a.ImageWidth
	}
	if a.ImageHeight != 0 {
		opts.Height = a.ImageHeight
	}
	if err := imaging.CheckPreviewSize(opts.Width, opts.Height); err != nil {
		return nil, fmt.Errorf("image %w", err)
	}
	if a.ShowCoordinates != nil {
		opts.ShowCoordinates = *a.ShowCoordinates
	}
	if a.Blur != nil {
		if *a.Blur < 0 {
			return nil, fmt.Errorf("blur must not be negative, got %v", *a.Blur)
		}
		opts.Blur = *a.Blur
	}

	var res detection.Result
	if a.Recognize == nil || *a.Recognize {
		if a.Kind != "" {
			kind, err := detection.ParseKind(a.Kind)
			if err != nil {
				return nil, err
			}
			res, _ = s.recognizer.Convert(rs.points, rs.width, rs.sensitivity, kind)
		} else {
			res = s.recognizer.Recognize(rs.points, rs.width, rs.sensitivity)
		}
	}

	preview, err := imaging.RenderPreview(rs.points, rs.width, res.Points, opts)
	if err != nil {
		return nil, err
	}

	out := strokePreviewResult{PreviewResult: preview}
	if res.Recognized() {
		out.Kind = res.Candidate.Kind.String()
		out.Score = res.Candidate.Score
	}
	return out, nil
}
