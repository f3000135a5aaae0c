package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
	"github.com/ironsheep/motion-regions-mcp/internal/imaging"
	"github.com/ironsheep/motion-regions-mcp/internal/sequence"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "frame_detect", "session_open").
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
// Argument errors return a JSON-RPC error response with code -32602, tool
// execution errors with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	s.debugf("tool %s finished in %s (err=%v)", params.Name, time.Since(start), err)
	if errors.Is(err, errInvalidArgs) {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if err != nil {
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Resolves thresholds from config, preset and overrides
//  3. Loads frames from cache and prepares them at analysis resolution
//  4. Calls the appropriate detection/imaging/session function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Frame Information
	case "frame_load":
		return s.handleFrameLoad(args)

	// Detection
	case "frame_detect":
		return s.handleFrameDetect(args)
	case "frame_summarize":
		return s.handleFrameSummarize(args)
	case "frame_sequence":
		return s.handleFrameSequence(args)

	// Presentation
	case "frame_edge_mask":
		return s.handleFrameEdgeMask(args)
	case "frame_overlay":
		return s.handleFrameOverlay(args)
	case "frame_crop_region":
		return s.handleFrameCropRegion(args)

	// Sessions
	case "session_open":
		return s.handleSessionOpen(args)
	case "session_close":
		return s.handleSessionClose(args)
	case "session_reset":
		return s.handleSessionReset(args)
	case "session_list":
		return s.handleSessionList(args)

	default:
		return nil, invalidArgs("unknown tool: %s", name)
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as the zero
// value.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return invalidArgs("%v", err)
	}
	return nil
}

// === Frame Information Handlers ===

type frameLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameLoad(args json.RawMessage) (interface{}, error) {
	var a frameLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

// === Detection Handlers ===

// DetectResult is the response of frame_detect.
type DetectResult struct {
	Path           string                   `json:"path"`
	SessionID      string                   `json:"session_id,omitempty"`
	AnalysisWidth  int                      `json:"analysis_width"`
	AnalysisHeight int                      `json:"analysis_height"`
	ScaleX         float64                  `json:"scale_x"`
	ScaleY         float64                  `json:"scale_y"`
	Config         detection.Config         `json:"config"`
	MotionGated    bool                     `json:"motion_gated"`
	RegionCount    int                      `json:"region_count"`
	Regions        []detection.Region       `json:"regions"`
	SourceRegions  []detection.ScaledRegion `json:"source_regions"`
	Primary        *detection.ScaledRegion  `json:"primary,omitempty"`
}

func (s *Server) handleFrameDetect(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	an, err := s.analyze(&a)
	if err != nil {
		return nil, err
	}

	f := an.frame()
	sx, sy := an.prepared.ScaleX, an.prepared.ScaleY
	out := &DetectResult{
		Path:           a.Path,
		SessionID:      a.SessionID,
		AnalysisWidth:  f.Width,
		AnalysisHeight: f.Height,
		ScaleX:         sx,
		ScaleY:         sy,
		Config:         an.settings.detection,
		MotionGated:    an.result.MotionGated,
		RegionCount:    len(an.result.Regions),
		Regions:        an.result.Regions,
		SourceRegions:  make([]detection.ScaledRegion, 0, len(an.result.Regions)),
	}
	for _, r := range an.result.Regions {
		out.SourceRegions = append(out.SourceRegions, r.Scale(sx, sy))
	}
	if p, ok := detection.Primary(an.result.Regions); ok {
		scaled := p.Scale(sx, sy)
		out.Primary = &scaled
	}
	return out, nil
}

type frameSummarizeArgs struct {
	frameArgs
	MinEdgeCount *int `json:"min_edge_count"`
}

// SummaryResult is the response of frame_summarize.
type SummaryResult struct {
	Path           string           `json:"path"`
	AnalysisWidth  int              `json:"analysis_width"`
	AnalysisHeight int              `json:"analysis_height"`
	MinEdgeCount   int              `json:"min_edge_count"`
	MotionGated    bool             `json:"motion_gated"`
	SourceCenter   *detection.Point `json:"source_center,omitempty"`
	detection.EdgeSummary
}

func (s *Server) handleFrameSummarize(args json.RawMessage) (interface{}, error) {
	var a frameSummarizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, mask, gated, err := s.edgeMask(&a.frameArgs)
	if err != nil {
		return nil, err
	}

	f := p.frame()
	minEdges := s.cfg.MinArea.For(f.Width, f.Height)
	if p.settings.minEdgeCount > minEdges {
		minEdges = p.settings.minEdgeCount
	}
	if a.MinEdgeCount != nil {
		if *a.MinEdgeCount < 0 {
			return nil, invalidArgs("min_edge_count must not be negative, got %d", *a.MinEdgeCount)
		}
		minEdges = *a.MinEdgeCount
	}

	summary := detection.Summarize(mask, minEdges)
	out := &SummaryResult{
		Path:           a.Path,
		AnalysisWidth:  f.Width,
		AnalysisHeight: f.Height,
		MinEdgeCount:   minEdges,
		MotionGated:    gated,
		EdgeSummary:    summary,
	}
	if summary.Center != nil {
		out.SourceCenter = &detection.Point{
			X: summary.Center.X * p.prepared.ScaleX,
			Y: summary.Center.Y * p.prepared.ScaleY,
		}
	}
	return out, nil
}

type frameSequenceArgs struct {
	frameArgs
	Paths     []string   `json:"paths"`
	Sequences [][]string `json:"sequences"`
	Workers   int        `json:"workers"`
}

func (s *Server) handleFrameSequence(args json.RawMessage) (interface{}, error) {
	var a frameSequenceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 && len(a.Sequences) == 0 {
		return nil, invalidArgs("paths or sequences is required")
	}
	if len(a.Paths) > 0 && len(a.Sequences) > 0 {
		return nil, invalidArgs("paths and sequences are mutually exclusive")
	}
	switch {
	case a.PrevPath != "":
		return nil, invalidArgs("prev_path is not supported by frame_sequence, each frame is gated against the one before it")
	case a.SessionID != "":
		return nil, invalidArgs("session_id is not supported by frame_sequence")
	case a.NonBlocking:
		return nil, invalidArgs("non_blocking is not supported by frame_sequence")
	}
	if a.Workers == 0 {
		a.Workers = s.cfg.Workers
	}

	st, err := s.resolveSettings(&a.frameArgs)
	if err != nil {
		return nil, err
	}
	opts := sequence.Options{
		Analysis: st.analysis,
		Config:   st.detection,
		Resolve:  s.cfg.Resolve,
	}
	if s.debug {
		opts.Logger = log.New(os.Stderr, "[debug] sequence: ", log.LstdFlags)
	}

	ctx := context.Background()
	if len(a.Paths) > 0 {
		frames, err := sequence.Run(ctx, a.Paths, s.cache, opts)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"frame_count": len(frames),
			"frames":      frames,
		}, nil
	}

	results, err := sequence.RunAll(ctx, a.Sequences, a.Workers, s.cache, opts)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"sequence_count": len(results),
		"sequences":      results,
	}, nil
}

// === Presentation Handlers ===

func (s *Server) handleFrameEdgeMask(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	_, mask, _, err := s.edgeMask(&a)
	if err != nil {
		return nil, err
	}
	return imaging.RenderEdgeMask(mask)
}

type frameOverlayArgs struct {
	frameArgs
	PrimaryColor string `json:"primary_color"`
	LineWidth    int    `json:"line_width"`
	ShowLabels   *bool  `json:"show_labels"`
	MaxRegions   int    `json:"max_regions"`
}

func (s *Server) handleFrameOverlay(args json.RawMessage) (interface{}, error) {
	var a frameOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.PrimaryColor == "" {
		a.PrimaryColor = imaging.DefaultPrimaryColor
	}
	if a.LineWidth == 0 {
		a.LineWidth = 2
	}
	showLabels := true
	if a.ShowLabels != nil {
		showLabels = *a.ShowLabels
	}

	an, err := s.analyze(&a.frameArgs)
	if err != nil {
		return nil, err
	}
	return imaging.RenderOverlay(an.source, an.result.Regions, an.prepared.ScaleX, an.prepared.ScaleY, imaging.OverlayOptions{
		PrimaryColor: a.PrimaryColor,
		LineWidth:    a.LineWidth,
		ShowLabels:   showLabels,
		MaxRegions:   a.MaxRegions,
	})
}

type frameCropRegionArgs struct {
	frameArgs
	Index int `json:"index"`
	Pad   int `json:"pad"`
}

func (s *Server) handleFrameCropRegion(args json.RawMessage) (interface{}, error) {
	var a frameCropRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Index < 0 || a.Pad < 0 {
		return nil, invalidArgs("index and pad must not be negative")
	}

	an, err := s.analyze(&a.frameArgs)
	if err != nil {
		return nil, err
	}
	regions := an.result.Regions
	if a.Index >= len(regions) {
		return nil, fmt.Errorf("region index %d out of range (%d regions detected)", a.Index, len(regions))
	}
	return imaging.CropRegion(an.source, regions[a.Index], an.prepared.ScaleX, an.prepared.ScaleY, a.Pad)
}

// === Session Handlers ===

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleSessionOpen(args json.RawMessage) (interface{}, error) {
	sess := s.sessions.Open()
	s.debugf("opened session %s (%d open)", sess.ID, s.sessions.Len())
	return sess.Stats(), nil
}

func (s *Server) handleSessionClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(a.SessionID)
	if err != nil {
		return nil, invalidArgs("%v", err)
	}
	stats := sess.Stats()
	if err := s.sessions.Close(a.SessionID); err != nil {
		return nil, invalidArgs("%v", err)
	}
	return map[string]interface{}{
		"closed":  true,
		"session": stats,
	}, nil
}

func (s *Server) handleSessionReset(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(a.SessionID)
	if err != nil {
		return nil, invalidArgs("%v", err)
	}
	sess.Reset()
	return sess.Stats(), nil
}

func (s *Server) handleSessionList(args json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"sessions": s.sessions.List(),
	}, nil
}
