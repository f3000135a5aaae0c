package server

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
	"github.com/ironsheep/motion-regions-mcp/internal/imaging"
	"github.com/ironsheep/motion-regions-mcp/internal/session"
)

// errInvalidArgs marks argument errors, which are reported to the client as
// JSON-RPC invalid params rather than tool failures.
var errInvalidArgs = errors.New("invalid arguments")

func invalidArgs(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errInvalidArgs, fmt.Sprintf(format, args...))
}

// frameArgs are the arguments shared by every tool that analyzes one frame.
// Pointer fields distinguish an explicit zero from an omitted value.
type frameArgs struct {
	Path      string `json:"path"`
	PrevPath  string `json:"prev_path"`
	SessionID string `json:"session_id"`
	Preset    string `json:"preset"`

	EdgeThreshold   *float64 `json:"edge_threshold"`
	MotionThreshold *float64 `json:"motion_threshold"`
	MinArea         *int     `json:"min_area"`

	Scale      *float64 `json:"scale"`
	MinSide    *int     `json:"min_side"`
	BlurRadius *float64 `json:"blur_radius"`

	// NonBlocking drops the frame instead of waiting when the session is
	// already analyzing another one.
	NonBlocking bool `json:"non_blocking"`
}

// settings are the resolved thresholds and analysis options for a call.
type settings struct {
	detection    detection.Config
	analysis     imaging.AnalysisOptions
	minEdgeCount int
}

// resolveSettings starts from the configured defaults or the named preset
// and applies explicit overrides. MinArea is left at zero when the caller
// did not set it, so the size-dependent policy can be applied later.
func (s *Server) resolveSettings(a *frameArgs) (settings, error) {
	st := settings{
		detection: s.cfg.Detection,
		analysis:  s.cfg.Analysis,
	}
	if a.Preset != "" {
		p, err := s.cfg.Preset(a.Preset)
		if err != nil {
			return st, invalidArgs("%v", err)
		}
		st.detection = p.Detection
		st.minEdgeCount = p.MinEdgeCount
	}

	if a.EdgeThreshold != nil {
		st.detection.EdgeThreshold = *a.EdgeThreshold
	}
	if a.MotionThreshold != nil {
		st.detection.MotionThreshold = *a.MotionThreshold
	}
	if a.MinArea != nil {
		if *a.MinArea < 0 {
			return st, invalidArgs("min_area must not be negative, got %d", *a.MinArea)
		}
		st.detection.MinArea = *a.MinArea
	}
	if a.Scale != nil {
		st.analysis.Scale = *a.Scale
	}
	if a.MinSide != nil {
		st.analysis.MinSide = *a.MinSide
	}
	if a.BlurRadius != nil {
		st.analysis.BlurRadius = *a.BlurRadius
	}
	return st, nil
}

// preparedFrame is a loaded frame at analysis resolution with its settings.
type preparedFrame struct {
	source   image.Image
	prepared *imaging.PreparedFrame
	settings settings
}

func (p *preparedFrame) frame() *detection.Frame { return p.prepared.Frame }

func (s *Server) prepare(a *frameArgs) (*preparedFrame, error) {
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}
	if a.PrevPath != "" && a.SessionID != "" {
		return nil, invalidArgs("prev_path and session_id are mutually exclusive")
	}

	st, err := s.resolveSettings(a)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	prepared, err := imaging.PrepareFrame(img, st.analysis)
	if err != nil {
		return nil, err
	}

	f := prepared.Frame
	st.detection = s.cfg.Resolve(st.detection, f.Width, f.Height)

	return &preparedFrame{source: img, prepared: prepared, settings: st}, nil
}

// previousLuma prepares the frame at path with the same analysis options and
// returns its luminance. An empty path means no previous frame.
func (s *Server) previousLuma(path string, opts imaging.AnalysisOptions) (*detection.Luma, error) {
	if path == "" {
		return nil, nil
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("previous frame: %w", err)
	}
	prepared, err := imaging.PrepareFrame(img, opts)
	if err != nil {
		return nil, fmt.Errorf("previous frame: %w", err)
	}
	luma, err := detection.Luminance(prepared.Frame)
	if err != nil {
		return nil, fmt.Errorf("previous frame: %w", err)
	}
	return luma, nil
}

// analysis is the outcome of running detection on one frame.
type analysis struct {
	*preparedFrame
	result *detection.Result
}

// analyze runs the full detection pipeline for a. With a session the
// session's rolling buffer supplies the previous frame and is advanced;
// otherwise prev_path, if any, is used.
func (s *Server) analyze(a *frameArgs) (*analysis, error) {
	p, err := s.prepare(a)
	if err != nil {
		return nil, err
	}
	cfg := p.settings.detection

	if a.SessionID != "" {
		sess, err := s.sessions.Get(a.SessionID)
		if err != nil {
			return nil, invalidArgs("%v", err)
		}
		var res *detection.Result
		if a.NonBlocking {
			res, err = sess.TryAnalyze(p.frame(), cfg)
		} else {
			res, err = sess.Analyze(p.frame(), cfg)
		}
		if errors.Is(err, session.ErrBusy) {
			s.debugf("session %s busy, dropped %s", a.SessionID, a.Path)
		}
		if err != nil {
			return nil, err
		}
		return &analysis{preparedFrame: p, result: res}, nil
	}

	prev, err := s.previousLuma(a.PrevPath, p.settings.analysis)
	if err != nil {
		return nil, err
	}
	res, err := detection.Detect(p.frame(), prev, cfg)
	if err != nil {
		return nil, err
	}
	return &analysis{preparedFrame: p, result: res}, nil
}

// edgeMask computes the gated edge mask of a frame without extracting
// regions. Sessions are not consulted because the mask must not advance a
// session's rolling buffer.
func (s *Server) edgeMask(a *frameArgs) (*preparedFrame, *detection.EdgeMask, bool, error) {
	if a.SessionID != "" {
		return nil, nil, false, invalidArgs("session_id is not supported by this tool, use prev_path")
	}
	p, err := s.prepare(a)
	if err != nil {
		return nil, nil, false, err
	}
	luma, err := detection.Luminance(p.frame())
	if err != nil {
		return nil, nil, false, err
	}
	prev, err := s.previousLuma(a.PrevPath, p.settings.analysis)
	if err != nil {
		return nil, nil, false, err
	}
	cfg := p.settings.detection
	return p, detection.ComputeEdgeMask(luma, prev, cfg), detection.MotionGated(luma, prev, cfg), nil
}
