package detection

// Point is a floating-point pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is an inclusive pixel bounding box.
type Bounds struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// EdgeSummary aggregates every edge pixel of a mask into a single object,
// without connected-component labeling.
type EdgeSummary struct {
	// Center is the mean coordinate of all edge pixels, nil when too few
	// edges were found.
	Center *Point `json:"center"`

	// Bounds encloses all edge pixels, nil when too few edges were found.
	Bounds *Bounds `json:"bounds"`

	// EdgeCount is the number of edge pixels, reported even below the minimum.
	EdgeCount int `json:"edge_count"`
}

// Summarize treats all edge pixels of mask as one object. Center and Bounds
// are only set when at least minEdgeCount pixels are edges. An inconsistent
// mask summarizes to zero edges.
func Summarize(mask *EdgeMask, minEdgeCount int) EdgeSummary {
	if !mask.valid() {
		return EdgeSummary{}
	}
	var c component
	c.minX, c.minY = mask.Width, mask.Height
	c.maxX, c.maxY = -1, -1

	for y := 1; y < mask.Height-1; y++ {
		row := y * mask.Width
		for x := 1; x < mask.Width-1; x++ {
			if mask.Bits[row+x] != 0 {
				c.add(x, y)
			}
		}
	}

	summary := EdgeSummary{EdgeCount: c.count}
	if c.count == 0 || c.count < minEdgeCount {
		return summary
	}

	r := c.region()
	summary.Center = &Point{X: r.CenterX, Y: r.CenterY}
	summary.Bounds = &Bounds{MinX: r.MinX, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY}
	return summary
}
