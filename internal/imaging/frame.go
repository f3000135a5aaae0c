package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
)

// AnalysisOptions controls how a captured image is reduced to the frame that
// is handed to the detection engine.
type AnalysisOptions struct {
	// Scale is the downscale factor applied to both dimensions. Values <= 0
	// or >= 1 analyze the image at its native resolution.
	Scale float64 `json:"scale" yaml:"scale"`

	// MinSide is the smallest analysis width or height produced by scaling.
	// It never upscales beyond the source dimensions.
	MinSide int `json:"min_side" yaml:"min_side"`

	// BlurRadius applies a Gaussian pre-smoothing of this radius after
	// scaling. Zero disables smoothing.
	BlurRadius float64 `json:"blur_radius" yaml:"blur_radius"`
}

// DefaultAnalysisOptions mirrors the analysis resolution used by live camera
// front ends: roughly a fifth of the capture with a 96 pixel floor.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{Scale: 0.22, MinSide: 96}
}

// PreparedFrame is a frame at analysis resolution plus the factors that map
// analysis coordinates back to the source image.
type PreparedFrame struct {
	Frame *detection.Frame

	// ScaleX and ScaleY are sourceWidth/analysisWidth and
	// sourceHeight/analysisHeight.
	ScaleX float64
	ScaleY float64
}

// AnalysisSize returns the analysis dimensions for a source of the given size.
//
// Each side becomes max(MinSide, floor(side*Scale)), capped at the source side.
func AnalysisSize(width, height int, opts AnalysisOptions) (int, int) {
	if opts.Scale <= 0 || opts.Scale >= 1 {
		return width, height
	}
	scaleSide := func(side int) int {
		s := int(math.Floor(float64(side) * opts.Scale))
		if s < opts.MinSide {
			s = opts.MinSide
		}
		if s > side {
			s = side
		}
		return s
	}
	return scaleSide(width), scaleSide(height)
}

// PrepareFrame downscales img to analysis resolution, optionally smooths it,
// and flattens it into an RGBA detection frame.
//
// Returns an error if the source image is empty.
func PrepareFrame(img image.Image, opts AnalysisOptions) (*PreparedFrame, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty source image %dx%d", width, height)
	}

	aw, ah := AnalysisSize(width, height, opts)

	var scaled image.Image = img
	if aw != width || ah != height {
		scaled = imaging.Resize(img, aw, ah, imaging.Linear)
	}
	if opts.BlurRadius > 0 {
		scaled = blur.Gaussian(scaled, opts.BlurRadius)
	}

	return &PreparedFrame{
		Frame:  FrameFromImage(scaled),
		ScaleX: float64(width) / float64(aw),
		ScaleY: float64(height) / float64(ah),
	}, nil
}

// FrameFromImage flattens any image into a detection frame of the same size
// with non-premultiplied RGBA samples.
func FrameFromImage(img image.Image) *detection.Frame {
	nrgba := imaging.Clone(img)
	width, height := nrgba.Rect.Dx(), nrgba.Rect.Dy()

	frame := &detection.Frame{
		Width:  width,
		Height: height,
		Pix:    make([]byte, 4*width*height),
	}
	for y := 0; y < height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*width]
		copy(frame.Pix[4*y*width:], src)
	}
	return frame
}
