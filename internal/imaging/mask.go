package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
)

// MaskImageResult contains an edge mask rendered as a base64 PNG.
//
// The image is grayscale: white pixels (255) are edges that survived the
// gradient threshold and motion gate, black pixels (0) are not.
type MaskImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	EdgeCount   int    `json:"edge_count"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// RenderEdgeMask encodes a detection edge mask as a grayscale PNG.
func RenderEdgeMask(mask *detection.EdgeMask) (*MaskImageResult, error) {
	gray := image.NewGray(image.Rect(0, 0, mask.Width, mask.Height))
	count := 0
	for i, b := range mask.Bits {
		if b != 0 {
			gray.Pix[(i/mask.Width)*gray.Stride+i%mask.Width] = 255
			count++
		}
	}

	encoded, err := encodePNGBase64(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge mask: %w", err)
	}

	return &MaskImageResult{
		Width:       mask.Width,
		Height:      mask.Height,
		EdgeCount:   count,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
