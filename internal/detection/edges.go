package detection

import "math"

// Config holds the per-run detection thresholds.
type Config struct {
	// EdgeThreshold is the L1 Sobel gradient magnitude below which a pixel is
	// never an edge, regardless of motion.
	EdgeThreshold float64 `json:"edge_threshold" yaml:"edge_threshold"`

	// MotionThreshold is the minimum luminance change from the previous frame
	// required to keep an edge pixel. Zero or negative disables motion gating.
	MotionThreshold float64 `json:"motion_threshold" yaml:"motion_threshold"`

	// MinArea is the minimum pixel count for a connected component to be
	// reported as a region.
	MinArea int `json:"min_area" yaml:"min_area"`
}

// EdgeMask is a binary per-pixel edge map. Bits[y*Width+x] is 1 when the pixel
// passed the gradient threshold and, when active, the motion gate.
// Border pixels are always 0.
type EdgeMask struct {
	Width  int
	Height int
	Bits   []uint8
}

// NewEdgeMask allocates an empty mask.
func NewEdgeMask(width, height int) *EdgeMask {
	return &EdgeMask{
		Width:  width,
		Height: height,
		Bits:   make([]uint8, width*height),
	}
}

// valid reports whether Bits holds exactly Width*Height entries.
func (m *EdgeMask) valid() bool {
	return m != nil && m.Width >= 0 && m.Height >= 0 && len(m.Bits) == m.Width*m.Height
}

// Count returns the number of set pixels.
func (m *EdgeMask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b != 0 {
			n++
		}
	}
	return n
}

// ComputeEdgeMask builds the edge mask for cur, optionally gated by motion
// against prev.
//
// For every interior pixel the 3x3 Sobel gradients gx and gy are computed and
// the pixel becomes an edge when |gx| + |gy| >= cfg.EdgeThreshold. When prev
// has the same dimensions as cur and cfg.MotionThreshold > 0, an edge pixel is
// additionally dropped if its luminance changed by less than
// cfg.MotionThreshold since prev. A nil or differently sized prev disables
// the motion gate for this call, which is the expected first-frame behavior.
//
// A nil cur, or one whose Pix does not hold Width*Height samples, yields an
// empty zero-sized mask.
func ComputeEdgeMask(cur, prev *Luma, cfg Config) *EdgeMask {
	if cur == nil || !cur.matches(cur.Width, cur.Height) {
		return &EdgeMask{}
	}
	width, height := cur.Width, cur.Height
	mask := NewEdgeMask(width, height)
	gray := cur.Pix

	gated := MotionGated(cur, prev, cfg)

	for y := 1; y < height-1; y++ {
		row := y * width
		for x := 1; x < width-1; x++ {
			idx := row + x

			g00 := float64(gray[idx-width-1])
			g01 := float64(gray[idx-width])
			g02 := float64(gray[idx-width+1])
			g10 := float64(gray[idx-1])
			g12 := float64(gray[idx+1])
			g20 := float64(gray[idx+width-1])
			g21 := float64(gray[idx+width])
			g22 := float64(gray[idx+width+1])

			gx := -g00 - 2*g10 - g20 + g02 + 2*g12 + g22
			gy := -g00 - 2*g01 - g02 + g20 + 2*g21 + g22
			if math.Abs(gx)+math.Abs(gy) < cfg.EdgeThreshold {
				continue
			}

			if gated {
				diff := math.Abs(float64(gray[idx]) - float64(prev.Pix[idx]))
				if diff < cfg.MotionThreshold {
					continue
				}
			}

			mask.Bits[idx] = 1
		}
	}

	return mask
}

// MotionGated reports whether ComputeEdgeMask applies the motion gate for
// cur: the threshold is positive and prev has the same dimensions.
func MotionGated(cur, prev *Luma, cfg Config) bool {
	return cfg.MotionThreshold > 0 && cur != nil && prev.matches(cur.Width, cur.Height)
}
