package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// frameProperties returns the schema properties shared by every tool that
// analyzes a frame, merged with the tool's own properties.
func frameProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the frame image file",
		},
		"prev_path": map[string]interface{}{
			"type":        "string",
			"description": "Optional previous frame used for motion gating. Ignored when its analysis size differs.",
		},
		"preset": map[string]interface{}{
			"type":        "string",
			"description": "Named threshold preset (built in: objects, center, motion)",
		},
		"edge_threshold": map[string]interface{}{
			"type":        "number",
			"description": "Minimum Sobel gradient magnitude |gx|+|gy| for an edge pixel",
		},
		"motion_threshold": map[string]interface{}{
			"type":        "number",
			"description": "Minimum luminance change since the previous frame. 0 disables motion gating",
		},
		"min_area": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum region size in analysis pixels. 0 or omitted scales with the analysis frame",
		},
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Analysis downscale factor (default 0.22). Values <= 0 or >= 1 analyze at native resolution",
		},
		"min_side": map[string]interface{}{
			"type":        "integer",
			"description": "Smallest analysis width or height (default 96)",
		},
		"blur_radius": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian pre-smoothing radius applied after scaling. 0 disables",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

var sessionIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Session whose rolling previous frame is used and advanced",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frame Information
		{
			Name:        "frame_load",
			Description: "Load a frame image file and return its dimensions, format and size. The decoded frame is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "frame_detect",
			Description: "Detect candidate object regions in a frame: Sobel edges, optional motion gating against a previous frame, then 8-connected regions sorted by area (largest first). Returns bounding boxes and centroids in analysis and source coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": frameProperties(map[string]interface{}{
					"session_id": sessionIDProperty,
					"non_blocking": map[string]interface{}{
						"type":        "boolean",
						"description": "With session_id: fail with a busy error instead of waiting when the session is analyzing another frame",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_summarize",
			Description: "Treat all edge pixels of a frame as one object and return their centroid, bounds and count. Center and bounds are omitted when fewer than min_edge_count edges are found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": frameProperties(map[string]interface{}{
					"min_edge_count": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum edge pixels for a center. Defaults to the preset value or the min area policy",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_sequence",
			Description: "Analyze recorded frames in order, gating each frame against the one before it. Pass paths for one sequence or sequences for several independent ones analyzed in parallel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": frameProperties(map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Ordered frame paths of one sequence",
					},
					"sequences": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
						"description": "Independent ordered sequences",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum sequences analyzed at once (default from config)",
					},
				}),
			},
		},

		// Presentation
		{
			Name:        "frame_edge_mask",
			Description: "Render the gated edge mask of a frame at analysis resolution as a base64 PNG (white = edge).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": frameProperties(nil),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "frame_overlay",
			Description: "Draw detected region boxes, centroids and labels on the source frame and return it as a base64 PNG. The primary (largest) region is drawn thicker.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": frameProperties(map[string]interface{}{
					"session_id": sessionIDProperty,
					"primary_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color of the primary region box (default #50DC78)",
						"default":     "#50DC78",
					},
					"line_width": map[string]interface{}{
						"type":        "integer",
						"description": "Box stroke width in source pixels (default 2)",
						"default":     2,
					},
					"show_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw '#n area=A' labels (default true)",
						"default":     true,
					},
					"max_regions": map[string]interface{}{
						"type":        "integer",
						"description": "Draw at most this many regions. 0 draws all",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_crop_region",
			Description: "Detect regions in a frame and return the n-th region (0 = primary) cropped from the source image as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": frameProperties(map[string]interface{}{
					"session_id": sessionIDProperty,
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Region index in area order (default 0)",
						"default":     0,
					},
					"pad": map[string]interface{}{
						"type":        "integer",
						"description": "Padding in source pixels around the region",
					},
				}),
				"required": []string{"path"},
			},
		},

		// Sessions
		{
			Name:        "session_open",
			Description: "Open a session that remembers the previous frame's luminance between frame_detect calls, enabling motion gating for a live stream.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "session_close",
			Description: "Close a session and release its previous frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session to close",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "session_reset",
			Description: "Forget a session's previous frame, e.g. after a camera switch. The next frame is analyzed without motion gating.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session to reset",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "session_list",
			Description: "List open sessions with their frame and drop counters.",
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
