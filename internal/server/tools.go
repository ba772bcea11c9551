package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pointSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "integer"},
			"y": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x", "y"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "sheet_locate_markers",
			Description: "Run OCR on one answer-sheet image and return every accepted marker with its rotation angle, " +
				"scale factors and the corners of each region of interest. Nothing is written to disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"include_crops": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a base64 PNG snapshot of every annotated region. Default false",
						"default":     false,
					},
					"crop_margin": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context around each snapshot. Default 8",
						"default":     8,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "sheet_process_directory",
			Description: "Process every image in a directory: annotate the regions of interest, save the annotated " +
				"copies and write the coordinate file. Returns a run summary including skipped images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of scanned images. Defaults to the server's configured input directory",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for annotated images. Defaults to the configured output directory",
					},
					"csv_path": map[string]interface{}{
						"type":        "string",
						"description": "Coordinate file path. Defaults to the configured path",
					},
				},
			},
		},
		{
			Name: "sheet_project_regions",
			Description: "Compute region corners for a marker given its top-left, top-right and bottom-left corners. " +
				"Pure geometry, no OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"top_left":    pointSchema("Marker top-left corner"),
					"top_right":   pointSchema("Marker top-right corner"),
					"bottom_left": pointSchema("Marker bottom-left corner"),
				},
				"required": []string{"top_left", "top_right", "bottom_left"},
			},
		},
		{
			Name:        "sheet_ocr_info",
			Description: "Report the OCR backend, its version and whether it is available.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
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
