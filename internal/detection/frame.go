package detection

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned for frames that violate the engine's preconditions.
// Both indicate a programming error at the call site rather than a
// recoverable runtime condition.
var (
	// ErrMalformedFrame means the pixel buffer length is not 4*Width*Height.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrFrameTooSmall means the frame has no interior pixels (Width or Height <= 2).
	ErrFrameTooSmall = errors.New("frame too small")
)

// Frame is a decoded RGBA video frame.
//
// Pix holds Width*Height samples of 4 bytes each (R, G, B, A), row-major with
// the origin at the top-left corner. The engine only borrows the buffer for
// the duration of one call and never modifies it.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// Validate checks the frame against the engine's preconditions.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("nil frame: %w", ErrMalformedFrame)
	}
	if f.Width < 0 || f.Height < 0 {
		return fmt.Errorf("negative dimensions %dx%d: %w", f.Width, f.Height, ErrMalformedFrame)
	}
	if f.Width != 0 && f.Height > math.MaxInt/4/f.Width {
		return fmt.Errorf("dimensions %dx%d overflow the pixel buffer: %w", f.Width, f.Height, ErrMalformedFrame)
	}
	if len(f.Pix) != 4*f.Width*f.Height {
		return fmt.Errorf("buffer length %d, want %d for %dx%d: %w",
			len(f.Pix), 4*f.Width*f.Height, f.Width, f.Height, ErrMalformedFrame)
	}
	if f.Width <= 2 || f.Height <= 2 {
		return fmt.Errorf("%dx%d has no interior pixels: %w", f.Width, f.Height, ErrFrameTooSmall)
	}
	return nil
}

// Luma is a single-channel luminance buffer with values in [0, 255].
//
// A Luma returned by Detect is owned by the caller, who may hand it back as
// the previous frame on the next call. Luma values are never shared with the
// engine between calls.
type Luma struct {
	Width  int
	Height int
	Pix    []float32
}

// matches reports whether l can be indexed against a frame of the given size.
func (l *Luma) matches(width, height int) bool {
	return l != nil && width >= 0 && height >= 0 &&
		l.Width == width && l.Height == height && len(l.Pix) == width*height
}

// Luminance converts a frame to a luminance buffer using ITU-R BT.601 weights.
//
// Each output value is 0.299*R + 0.587*G + 0.114*B of the corresponding sample;
// alpha is ignored.
func Luminance(f *Frame) (*Luma, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	luma := &Luma{
		Width:  f.Width,
		Height: f.Height,
		Pix:    make([]float32, f.Width*f.Height),
	}
	for i, j := 0, 0; i < len(f.Pix); i, j = i+4, j+1 {
		r := float64(f.Pix[i])
		g := float64(f.Pix[i+1])
		b := float64(f.Pix[i+2])
		luma.Pix[j] = float32(0.299*r + 0.587*g + 0.114*b)
	}
	return luma, nil
}
