package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
)

// OverlayOptions controls how detected regions are drawn.
type OverlayOptions struct {
	// PrimaryColor is the hex color of the largest region's box.
	// Invalid or empty values fall back to DefaultPrimaryColor.
	PrimaryColor string

	// LineWidth is the stroke width of secondary boxes. The primary box is
	// drawn one pixel thicker. Defaults to 2.
	LineWidth int

	// ShowLabels draws "#n area=A" above each box.
	ShowLabels bool

	// MaxRegions limits how many regions are drawn. Zero draws all.
	MaxRegions int
}

// DefaultPrimaryColor highlights the primary region.
const DefaultPrimaryColor = "#50DC78"

// OverlayResult contains the annotated image.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Regions     int    `json:"regions_drawn"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// RenderOverlay draws region bounding boxes and centroids on a copy of img.
//
// Regions are in analysis coordinates and are mapped to img with scaleX and
// scaleY. The first region is treated as the primary one and gets a thicker
// box in the primary color; the others get distinct hues.
func RenderOverlay(img image.Image, regions []detection.Region, scaleX, scaleY float64, opts OverlayOptions) (*OverlayResult, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	primary, err := colorful.Hex(opts.PrimaryColor)
	if err != nil {
		primary, _ = colorful.Hex(DefaultPrimaryColor)
	}
	lineWidth := opts.LineWidth
	if lineWidth <= 0 {
		lineWidth = 2
	}

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	drawn := regions
	if opts.MaxRegions > 0 && len(drawn) > opts.MaxRegions {
		drawn = drawn[:opts.MaxRegions]
	}

	// Paint back to front so the primary box ends up on top.
	for i := len(drawn) - 1; i >= 0; i-- {
		r := drawn[i]
		c := regionColor(i)
		stroke := lineWidth
		if i == 0 {
			c = toRGBA(primary)
			stroke++
		}

		s := r.Scale(scaleX, scaleY)
		box := image.Rect(
			int(s.X), int(s.Y),
			int(math.Ceil(s.X+s.Width)), int(math.Ceil(s.Y+s.Height)),
		)
		strokeRect(result, box, stroke, c)

		center := image.Pt(int(s.CenterX), int(s.CenterY))
		dot := image.Rect(center.X-2, center.Y-2, center.X+3, center.Y+3)
		draw.Draw(result, dot.Intersect(result.Bounds()), image.NewUniform(color.RGBA{90, 180, 255, 255}), image.Point{}, draw.Src)

		if opts.ShowLabels {
			drawLabel(result, box.Min.X, box.Min.Y-4, fmt.Sprintf("#%d area=%d", i+1, r.Area), c)
		}
	}

	encoded, err := encodePNGBase64(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       width,
		Height:      height,
		Regions:     len(drawn),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// regionColor returns a stable, well separated hue for the i-th region.
func regionColor(i int) color.RGBA {
	hue := math.Mod(float64(i)*137.508, 360)
	return toRGBA(colorful.Hsv(hue, 0.55, 0.95))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// strokeRect draws the outline of box with the given width, inside box.
func strokeRect(img *image.RGBA, box image.Rectangle, width int, c color.RGBA) {
	src := image.NewUniform(c)
	clip := img.Bounds()
	edges := []image.Rectangle{
		image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+width),
		image.Rect(box.Min.X, box.Max.Y-width, box.Max.X, box.Max.Y),
		image.Rect(box.Min.X, box.Min.Y, box.Min.X+width, box.Max.Y),
		image.Rect(box.Max.X-width, box.Min.Y, box.Max.X, box.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(clip), src, image.Point{}, draw.Src)
	}
}

// drawLabel writes text with its baseline at (x, y) on a dark backing box.
// Labels that would leave the image are pushed back inside.
func drawLabel(img *image.RGBA, x, y int, text string, fg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}

	w := d.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()

	bounds := img.Bounds()
	if y-ascent < bounds.Min.Y {
		y = bounds.Min.Y + ascent
	}
	if x+w > bounds.Max.X {
		x = bounds.Max.X - w
	}
	if x < bounds.Min.X {
		x = bounds.Min.X
	}

	bg := image.Rect(x-2, y-ascent-1, x+w+2, y+descent+1).Intersect(bounds)
	draw.Draw(img, bg, image.NewUniform(color.RGBA{15, 23, 42, 200}), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
