package imaging

import (
	"testing"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
)

func TestCropRegion(t *testing.T) {
	img := createSquareImage(100, 100, 40, 40, 59, 59)
	r := detection.Region{MinX: 20, MinY: 20, MaxX: 29, MaxY: 29, Area: 36}

	result, err := CropRegion(img, r, 2, 2, 0)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}

	if result.X1 != 40 || result.Y1 != 40 || result.X2 != 60 || result.Y2 != 60 {
		t.Errorf("rect: got (%d,%d)-(%d,%d), want (40,40)-(60,60)", result.X1, result.Y1, result.X2, result.Y2)
	}
	if result.Width != 20 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 20x20", result.Width, result.Height)
	}

	out := decodeBase64PNG(t, result.ImageBase64)
	if r, g, b := rgb8(out.At(10, 10)); r != 255 || g != 255 || b != 255 {
		t.Errorf("cropped content: got (%d,%d,%d), want white", r, g, b)
	}
}

func TestCropRegion_PaddingIsClipped(t *testing.T) {
	img := createSquareImage(50, 50, 10, 10, 20, 20)
	r := detection.Region{MinX: 1, MinY: 1, MaxX: 10, MaxY: 10, Area: 20}

	result, err := CropRegion(img, r, 1, 1, 5)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if result.X1 != 0 || result.Y1 != 0 || result.X2 != 16 || result.Y2 != 16 {
		t.Errorf("rect: got (%d,%d)-(%d,%d), want (0,0)-(16,16)", result.X1, result.Y1, result.X2, result.Y2)
	}
}

func TestCropRegion_OutOfBounds(t *testing.T) {
	img := createSquareImage(30, 30, 5, 5, 10, 10)
	r := detection.Region{MinX: 40, MinY: 40, MaxX: 45, MaxY: 45, Area: 10}

	if _, err := CropRegion(img, r, 1, 1, 0); err == nil {
		t.Error("CropRegion should fail for a region outside the image")
	}
}
