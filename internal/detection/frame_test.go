package detection

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// newSolidFrame creates a frame filled with a single gray level.
func newSolidFrame(width, height int, v uint8) *Frame {
	f := &Frame{Width: width, Height: height, Pix: make([]byte, 4*width*height)}
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = v
		f.Pix[i+1] = v
		f.Pix[i+2] = v
		f.Pix[i+3] = 255
	}
	return f
}

// fillRect paints the inclusive rectangle (x1,y1)-(x2,y2) with a gray level.
func fillRect(f *Frame, x1, y1, x2, y2 int, v uint8) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			i := 4 * (y*f.Width + x)
			f.Pix[i] = v
			f.Pix[i+1] = v
			f.Pix[i+2] = v
		}
	}
}

// newNoiseFrame creates a frame with pseudo-random RGBA samples.
func newNoiseFrame(width, height int, seed int64) *Frame {
	rng := rand.New(rand.NewSource(seed))
	f := &Frame{Width: width, Height: height, Pix: make([]byte, 4*width*height)}
	rng.Read(f.Pix)
	return f
}

func TestFrameValidate(t *testing.T) {
	tests := []struct {
		name    string
		frame   *Frame
		wantErr error
	}{
		{"valid", newSolidFrame(3, 3, 0), nil},
		{"nil frame", nil, ErrMalformedFrame},
		{"short buffer", &Frame{Width: 4, Height: 4, Pix: make([]byte, 60)}, ErrMalformedFrame},
		{"long buffer", &Frame{Width: 4, Height: 4, Pix: make([]byte, 68)}, ErrMalformedFrame},
		{"negative width", &Frame{Width: -4, Height: -4, Pix: make([]byte, 64)}, ErrMalformedFrame},
		{"oversized dimensions", &Frame{Width: math.MaxInt / 2, Height: math.MaxInt / 2}, ErrMalformedFrame},
		{"oversized height", &Frame{Width: 3, Height: math.MaxInt / 4}, ErrMalformedFrame},
		{"two pixels wide", newSolidFrame(2, 10, 0), ErrFrameTooSmall},
		{"two pixels high", newSolidFrame(10, 2, 0), ErrFrameTooSmall},
		{"empty", &Frame{}, ErrFrameTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetect_OversizedFrame(t *testing.T) {
	f := &Frame{Width: math.MaxInt / 2, Height: math.MaxInt / 2}
	if _, err := Detect(f, nil, Config{EdgeThreshold: 50}); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestLuminance_KnownColors(t *testing.T) {
	f := &Frame{Width: 3, Height: 3, Pix: make([]byte, 36)}
	samples := [][4]byte{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 255, 0},
		{0, 0, 0, 255},
		{128, 128, 128, 255},
		{10, 20, 30, 255},
		{200, 100, 50, 17},
		{1, 2, 3, 4},
	}
	for i, s := range samples {
		copy(f.Pix[4*i:], s[:])
	}

	luma, err := Luminance(f)
	if err != nil {
		t.Fatalf("Luminance failed: %v", err)
	}

	for i, s := range samples {
		want := float32(0.299*float64(s[0]) + 0.587*float64(s[1]) + 0.114*float64(s[2]))
		if luma.Pix[i] != want {
			t.Errorf("sample %d %v: got %v, want %v", i, s, luma.Pix[i], want)
		}
	}
}

func TestLuminance_AlphaIgnored(t *testing.T) {
	opaque := newSolidFrame(4, 4, 90)
	clear := newSolidFrame(4, 4, 90)
	for i := 3; i < len(clear.Pix); i += 4 {
		clear.Pix[i] = 0
	}

	a, _ := Luminance(opaque)
	b, _ := Luminance(clear)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("pixel %d differs with alpha: %v vs %v", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestLuminance_LengthAndRange(t *testing.T) {
	sizes := [][2]int{{3, 3}, {8, 8}, {17, 5}, {64, 48}}

	for i, sz := range sizes {
		f := newNoiseFrame(sz[0], sz[1], int64(i+1))
		luma, err := Luminance(f)
		if err != nil {
			t.Fatalf("%dx%d: Luminance failed: %v", sz[0], sz[1], err)
		}
		if len(luma.Pix) != sz[0]*sz[1] {
			t.Errorf("%dx%d: length %d, want %d", sz[0], sz[1], len(luma.Pix), sz[0]*sz[1])
		}
		if luma.Width != sz[0] || luma.Height != sz[1] {
			t.Errorf("dimensions: got %dx%d, want %dx%d", luma.Width, luma.Height, sz[0], sz[1])
		}
		for j, v := range luma.Pix {
			if v < 0 || v > 255 {
				t.Fatalf("%dx%d: pixel %d out of range: %v", sz[0], sz[1], j, v)
			}
		}
	}

	white, _ := Luminance(newSolidFrame(3, 3, 255))
	for _, v := range white.Pix {
		if v > 255 {
			t.Fatalf("white luminance exceeds 255: %v", v)
		}
	}
}

func TestLuminance_Malformed(t *testing.T) {
	_, err := Luminance(&Frame{Width: 10, Height: 10, Pix: make([]byte, 10)})
	if !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame, got %v", err)
	}
}
