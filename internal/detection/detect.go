package detection

// Result is the output of one Detect call.
type Result struct {
	// Luma is the luminance buffer of the analyzed frame. Pass it back as the
	// previous frame on the next call to enable motion gating.
	Luma *Luma `json:"-"`

	// Regions are the detected components, largest first. Never nil.
	Regions []Region `json:"regions"`

	// MotionGated is true when prev was usable and the motion gate applied.
	MotionGated bool `json:"motion_gated"`
}

// Detect runs the full pipeline on one frame: luminance reduction, Sobel
// edge and motion gating against prev, then region extraction.
//
// Parameters:
//   - f: The frame to analyze. Must satisfy Frame.Validate.
//   - prev: The Luma returned by the previous call, or nil. A prev of a
//     different size is ignored and motion gating is skipped for this call.
//   - cfg: Detection thresholds.
//
// Returns:
//   - *Result: The frame's luminance and its regions sorted by area descending.
//   - error: ErrMalformedFrame or ErrFrameTooSmall (wrapped) for invalid frames.
//
// Detect holds no state between calls and is safe to call concurrently as
// long as a prev buffer is not being written elsewhere at the same time.
func Detect(f *Frame, prev *Luma, cfg Config) (*Result, error) {
	luma, err := Luminance(f)
	if err != nil {
		return nil, err
	}

	mask := ComputeEdgeMask(luma, prev, cfg)

	return &Result{
		Luma:        luma,
		Regions:     ExtractRegions(mask, cfg.MinArea),
		MotionGated: MotionGated(luma, prev, cfg),
	}, nil
}
