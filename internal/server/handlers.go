package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
	"github.com/ironsheep/answer-sheet-roi/internal/imaging"
	"github.com/ironsheep/answer-sheet-roi/internal/ocr"
	"github.com/ironsheep/answer-sheet-roi/internal/pipeline"
)

// errNoEngine is returned by the OCR tools when no backend is running.
var errNoEngine = errors.New("OCR engine unavailable; check sheet_ocr_info")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sheet_locate_markers").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Printf("tool=%s err=%v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "sheet_locate_markers":
		return s.handleLocateMarkers(ctx, args)
	case "sheet_process_directory":
		return s.handleProcessDirectory(ctx, args)
	case "sheet_project_regions":
		return s.handleProjectRegions(args)
	case "sheet_ocr_info":
		return s.handleOCRInfo()
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// defaultCropMargin frames region snapshots so the drawn outline is visible.
const defaultCropMargin = 8

type locateMarkersArgs struct {
	Path         string `json:"path"`
	IncludeCrops bool   `json:"include_crops"`
	CropMargin   *int   `json:"crop_margin"`
}

// RegionCrop is a snapshot of one annotated region.
type RegionCrop struct {
	Match  int    `json:"match"`
	Region string `json:"region"`
	*imaging.CropResult
}

// LocateResult is returned by sheet_locate_markers.
type LocateResult struct {
	File    string           `json:"file"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	Matches []pipeline.Match `json:"matches"`
	Rows    [][]string       `json:"rows"`
	Crops   []RegionCrop     `json:"crops,omitempty"`
}

func (s *Server) handleLocateMarkers(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a locateMarkersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if s.engine == nil {
		return nil, errNoEngine
	}

	res, err := pipeline.New(s.opts, s.engine, s.logger).ProcessFile(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = r.Fields()
	}
	b := res.Image.Bounds()
	out := LocateResult{
		File:    res.Filename,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Matches: res.Matches,
		Rows:    rows,
	}

	if a.IncludeCrops {
		margin := defaultCropMargin
		if a.CropMargin != nil {
			margin = *a.CropMargin
		}
		for i, m := range res.Matches {
			for _, r := range m.Regions {
				crop, err := imaging.CropQuad(res.Image, r.Corners, margin, 1.0)
				if err != nil {
					// Regions may fall entirely off the scan.
					s.logger.Printf("file=%s region=%s crop skipped: %v", res.Filename, r.Name, err)
					continue
				}
				out.Crops = append(out.Crops, RegionCrop{Match: i, Region: r.Name, CropResult: crop})
			}
		}
	}

	return out, nil
}

type processDirectoryArgs struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	CSVPath   string `json:"csv_path"`
}

func (s *Server) handleProcessDirectory(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a processDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.engine == nil {
		return nil, errNoEngine
	}

	opts := s.opts
	if a.InputDir != "" {
		opts.InputDir = a.InputDir
	}
	if a.OutputDir != "" {
		opts.OutputDir = a.OutputDir
	}
	if a.CSVPath != "" {
		opts.CSVPath = a.CSVPath
	}

	return pipeline.New(opts, s.engine, s.logger).Run(ctx)
}

type projectRegionsArgs struct {
	TopLeft    *geometry.Point `json:"top_left"`
	TopRight   *geometry.Point `json:"top_right"`
	BottomLeft *geometry.Point `json:"bottom_left"`
}

func (s *Server) handleProjectRegions(args json.RawMessage) (interface{}, error) {
	var a projectRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.TopLeft == nil || a.TopRight == nil || a.BottomLeft == nil {
		return nil, fmt.Errorf("top_left, top_right and bottom_left are required")
	}

	tl, tr, bl := *a.TopLeft, *a.TopRight, *a.BottomLeft
	br := geometry.Pt(tr.X+bl.X-tl.X, tr.Y+bl.Y-tl.Y)
	d := ocr.Detection{
		Quad:       geometry.Quad{tl, tr, br, bl},
		Text:       s.opts.Template.Marker,
		Confidence: 1,
	}

	return s.opts.Template.Apply(nil, d, s.opts.Style), nil
}

// OCRInfoResult is returned by sheet_ocr_info.
type OCRInfoResult struct {
	ocr.Info
	Engine   string `json:"engine"`
	Running  bool   `json:"running"`
	Language string `json:"language"`
	Level    string `json:"level"`
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	res := OCRInfoResult{
		Language: s.ocrOpts.Language,
		Level:    s.ocrOpts.Level,
	}
	if t, ok := s.engine.(*ocr.Tesseract); ok {
		res.Info = ocr.Info{Available: true, Version: t.Version(), Backend: "gosseract"}
	} else {
		res.Info = ocr.GetInfo(s.ocrOpts)
	}
	if s.engine != nil {
		res.Engine = s.engine.Name()
		res.Running = true
	}
	return res, nil
}
