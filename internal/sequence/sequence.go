// Package sequence analyzes recorded frame sequences from disk.
//
// Frames of one sequence are analyzed in order against a private rolling
// luminance buffer, so frame N is motion-gated against frame N-1. Separate
// sequences are independent and may run in parallel; every worker owns its
// own buffer.
package sequence

import (
	"context"
	"fmt"
	"image"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
	"github.com/ironsheep/motion-regions-mcp/internal/imaging"
)

// Loader returns the decoded image for a frame path.
// *imaging.ImageCache satisfies it.
type Loader interface {
	Load(path string) (image.Image, error)
}

// evictor is implemented by loaders that cache decoded images. Sequence
// frames are read once, so Run drops them after analysis.
type evictor interface {
	Evict(path string)
}

// Resolver finalizes the detection config for a frame of the given analysis
// size, e.g. to apply a min area policy. A nil Resolver uses the config as is.
type Resolver func(cfg detection.Config, width, height int) detection.Config

// Options configures a run.
type Options struct {
	Analysis imaging.AnalysisOptions
	Config   detection.Config
	Resolve  Resolver

	// Logger receives per-frame debug lines when non-nil.
	Logger *log.Logger
}

// FrameResult is the detection outcome of one frame of a sequence.
type FrameResult struct {
	Index   int                     `json:"index"`
	Path    string                  `json:"path"`
	Width   int                     `json:"analysis_width"`
	Height  int                     `json:"analysis_height"`
	ScaleX  float64                 `json:"scale_x"`
	ScaleY  float64                 `json:"scale_y"`
	MinArea int                     `json:"min_area"`
	Gated   bool                    `json:"motion_gated"`
	Regions []detection.Region      `json:"regions"`
	Primary *detection.ScaledRegion `json:"primary,omitempty"`
}

// Run analyzes paths in order. It stops at the first load or detection
// error, or when ctx is cancelled between frames, returning the results
// gathered so far alongside the error.
func Run(ctx context.Context, paths []string, loader Loader, opts Options) ([]FrameResult, error) {
	results := make([]FrameResult, 0, len(paths))
	var prev *detection.Luma

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		img, err := loader.Load(path)
		if err != nil {
			return results, fmt.Errorf("frame %d: %w", i, err)
		}

		prepared, err := imaging.PrepareFrame(img, opts.Analysis)
		if e, ok := loader.(evictor); ok {
			e.Evict(path)
		}
		if err != nil {
			return results, fmt.Errorf("frame %d (%s): %w", i, path, err)
		}
		f := prepared.Frame

		cfg := opts.Config
		if opts.Resolve != nil {
			cfg = opts.Resolve(cfg, f.Width, f.Height)
		}

		res, err := detection.Detect(f, prev, cfg)
		if err != nil {
			return results, fmt.Errorf("frame %d (%s): %w", i, path, err)
		}
		prev = res.Luma

		fr := FrameResult{
			Index:   i,
			Path:    path,
			Width:   f.Width,
			Height:  f.Height,
			ScaleX:  prepared.ScaleX,
			ScaleY:  prepared.ScaleY,
			MinArea: cfg.MinArea,
			Gated:   res.MotionGated,
			Regions: res.Regions,
		}
		if p, ok := detection.Primary(res.Regions); ok {
			s := p.Scale(prepared.ScaleX, prepared.ScaleY)
			fr.Primary = &s
		}
		results = append(results, fr)

		if opts.Logger != nil {
			opts.Logger.Printf("frame %d %s: %dx%d, %d regions, gated=%v", i, path, f.Width, f.Height, len(res.Regions), res.MotionGated)
		}
	}

	return results, nil
}

// RunAll analyzes several independent sequences with at most workers running
// at once. Results are returned in the order of sequences. The first error
// cancels the remaining sequences.
func RunAll(ctx context.Context, sequences [][]string, workers int, loader Loader, opts Options) ([][]FrameResult, error) {
	if workers < 1 {
		workers = 1
	}

	out := make([][]FrameResult, len(sequences))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, paths := range sequences {
		g.Go(func() error {
			res, err := Run(ctx, paths, loader, opts)
			if err != nil {
				return fmt.Errorf("sequence %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
