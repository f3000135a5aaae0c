// Package server implements the MCP (Model Context Protocol) server for
// motion-gated region detection.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection
// engine through the MCP protocol, so MCP clients can find candidate object
// regions in camera frames and recorded frame sequences.
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
// Frame Information:
//   - frame_load: Load a frame and get metadata
//
// Detection:
//   - frame_detect: Regions of one frame, optionally motion gated
//   - frame_summarize: Single centroid over all edge pixels
//   - frame_sequence: Ordered frames, each gated against the one before
//
// Presentation:
//   - frame_edge_mask: Edge mask as PNG
//   - frame_overlay: Region boxes drawn on the source frame
//   - frame_crop_region: Crop one detected region
//
// Sessions:
//   - session_open, session_close, session_reset, session_list
//
// # Frames and Coordinates
//
// Frames are downscaled to an analysis resolution before detection (see
// imaging.AnalysisOptions). Regions are reported in analysis pixels; tools
// that return source coordinates multiply by the reported scale factors.
//
// # Motion Gating
//
// Motion gating needs the previous frame's luminance. Stateless calls pass
// prev_path; streams open a session, whose rolling buffer is read and
// replaced by every frame_detect, frame_overlay or frame_crop_region call
// carrying its session_id. Calls on one session are serialized, and
// non_blocking drops a frame instead of waiting.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses with:
//   - code: -32602 (invalid arguments), -32000 (tool execution failure),
//     -32601 (unknown method) or -32700 (unparsable request)
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
