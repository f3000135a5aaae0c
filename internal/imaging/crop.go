package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
)

// CropResult contains the cropped image data
type CropResult struct {
	X1          int    `json:"x1"`
	Y1          int    `json:"y1"`
	X2          int    `json:"x2"`
	Y2          int    `json:"y2"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropRegion extracts a detected region from the source image.
//
// The region's analysis coordinates are mapped back to the source with
// scaleX/scaleY (see PreparedFrame), grown by pad pixels on every side and
// clipped to the image bounds.
func CropRegion(img image.Image, r detection.Region, scaleX, scaleY float64, pad int) (*CropResult, error) {
	bounds := img.Bounds()
	s := r.Scale(scaleX, scaleY)

	rect := image.Rect(
		int(s.X)-pad,
		int(s.Y)-pad,
		int(s.X+s.Width)+pad,
		int(s.Y+s.Height)+pad,
	).Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds", r.MinX, r.MinY, r.MaxX, r.MaxY)
	}

	cropped := imaging.Crop(img, rect)

	encoded, err := encodePNGBase64(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X1:          rect.Min.X,
		Y1:          rect.Min.Y,
		X2:          rect.Max.X,
		Y2:          rect.Max.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
