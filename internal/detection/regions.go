package detection

import (
	"image"
	"sort"
)

// Region summarizes one connected component of edge pixels.
//
// Coordinates are in pixels of the analyzed frame. The bounding box is
// inclusive on both ends: MinX <= x <= MaxX and MinY <= y <= MaxY for every
// pixel of the component. The centroid is the mean coordinate of those pixels
// and therefore always lies inside the box.
type Region struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`

	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`

	// Area is the number of edge pixels in the component.
	Area int `json:"area"`
}

// Width is the inclusive horizontal extent of the bounding box.
func (r Region) Width() int { return r.MaxX - r.MinX + 1 }

// Height is the inclusive vertical extent of the bounding box.
func (r Region) Height() int { return r.MaxY - r.MinY + 1 }

// Rect returns the bounding box as an image.Rectangle (exclusive max).
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.MinX, r.MinY, r.MaxX+1, r.MaxY+1)
}

// ScaledRegion is a Region mapped into another coordinate space, typically
// from the downscaled analysis frame back to the capture resolution.
type ScaledRegion struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Area    int     `json:"area"`
}

// Scale maps the region by independent horizontal and vertical factors.
func (r Region) Scale(sx, sy float64) ScaledRegion {
	return ScaledRegion{
		X:       float64(r.MinX) * sx,
		Y:       float64(r.MinY) * sy,
		Width:   float64(r.Width()) * sx,
		Height:  float64(r.Height()) * sy,
		CenterX: r.CenterX * sx,
		CenterY: r.CenterY * sy,
		Area:    r.Area,
	}
}

// Primary returns the largest region, which callers use as the anchor for
// overlays. It reports false when regions is empty.
func Primary(regions []Region) (Region, bool) {
	if len(regions) == 0 {
		return Region{}, false
	}
	return regions[0], true
}

// ExtractRegions labels the 8-connected components of mask and returns those
// with at least minArea pixels, sorted by area descending.
//
// Components are discovered in raster order (top-to-bottom, left-to-right)
// and the sort is stable, so regions of equal area keep their discovery
// order. Components smaller than minArea are discarded but their pixels stay
// visited. An empty mask, or one whose Bits does not hold Width*Height
// entries, yields an empty, non-nil slice.
//
// # Algorithm
//
//  1. Scan interior pixels in raster order, skipping visited and unset pixels
//  2. Flood-fill from each new seed with an explicit stack of pixel indices,
//     never leaving the 1-pixel interior border
//  3. Accumulate count, coordinate sums and min/max while filling
//  4. Keep the component when count >= minArea
//  5. Stable sort by area descending
//
// Visited marks are set before a pixel is pushed and never cleared, so the
// fill terminates even when every interior pixel is set.
func ExtractRegions(mask *EdgeMask, minArea int) []Region {
	if !mask.valid() {
		return make([]Region, 0)
	}
	width, height := mask.Width, mask.Height
	regions := make([]Region, 0)
	if width <= 2 || height <= 2 {
		return regions
	}

	visited := make([]bool, width*height)
	var stack []int

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			seed := y*width + x
			if mask.Bits[seed] == 0 || visited[seed] {
				continue
			}

			c := component{minX: x, minY: y, maxX: x, maxY: y}
			visited[seed] = true
			stack = append(stack[:0], seed)

			for len(stack) > 0 {
				idx := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				cx := idx % width
				cy := idx / width
				c.add(cx, cy)

				// 8-connected neighbors
				for oy := -1; oy <= 1; oy++ {
					for ox := -1; ox <= 1; ox++ {
						if ox == 0 && oy == 0 {
							continue
						}
						nx, ny := cx+ox, cy+oy
						if nx <= 0 || nx >= width-1 || ny <= 0 || ny >= height-1 {
							continue
						}
						n := ny*width + nx
						if mask.Bits[n] == 0 || visited[n] {
							continue
						}
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}

			if c.count < minArea {
				continue
			}
			regions = append(regions, c.region())
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Area > regions[j].Area
	})

	return regions
}

// component accumulates statistics for a region while it is being filled.
type component struct {
	count      int
	sumX, sumY int
	minX, minY int
	maxX, maxY int
}

func (c *component) add(x, y int) {
	c.count++
	c.sumX += x
	c.sumY += y
	if x < c.minX {
		c.minX = x
	}
	if y < c.minY {
		c.minY = y
	}
	if x > c.maxX {
		c.maxX = x
	}
	if y > c.maxY {
		c.maxY = y
	}
}

func (c *component) region() Region {
	return Region{
		MinX:    c.minX,
		MinY:    c.minY,
		MaxX:    c.maxX,
		MaxY:    c.maxY,
		CenterX: float64(c.sumX) / float64(c.count),
		CenterY: float64(c.sumY) / float64(c.count),
		Area:    c.count,
	}
}
