package imaging

import (
	"image/color"
	"testing"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
)

func TestRenderOverlay(t *testing.T) {
	img := createInMemoryImage(100, 80, color.Black)
	regions := []detection.Region{
		{MinX: 10, MinY: 10, MaxX: 29, MaxY: 29, CenterX: 20, CenterY: 20, Area: 60},
		{MinX: 50, MinY: 40, MaxX: 59, MaxY: 49, CenterX: 55, CenterY: 45, Area: 20},
	}

	result, err := RenderOverlay(img, regions, 1, 1, OverlayOptions{PrimaryColor: "#FF0000"})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}

	if result.Width != 100 || result.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", result.Width, result.Height)
	}
	if result.Regions != 2 {
		t.Errorf("Regions: got %d, want 2", result.Regions)
	}

	out := decodeBase64PNG(t, result.ImageBase64)

	// Primary box uses the primary color on its left edge.
	if r, g, b := rgb8(out.At(10, 15)); r != 255 || g != 0 || b != 0 {
		t.Errorf("primary box at (10,15): got (%d,%d,%d), want (255,0,0)", r, g, b)
	}

	// Secondary box is drawn but not in the primary color.
	r, g, b := rgb8(out.At(50, 44))
	if r == 0 && g == 0 && b == 0 {
		t.Error("secondary box not drawn at (50,44)")
	}
	if r == 255 && g == 0 && b == 0 {
		t.Error("secondary box should not use the primary color")
	}

	// Inside the boxes away from the centroid the image is untouched.
	if r, g, b := rgb8(out.At(15, 25)); r != 0 || g != 0 || b != 0 {
		t.Errorf("interior pixel modified: (%d,%d,%d)", r, g, b)
	}
}

func TestRenderOverlay_ScaleAndLimit(t *testing.T) {
	img := createInMemoryImage(200, 200, color.Black)
	regions := []detection.Region{
		{MinX: 10, MinY: 10, MaxX: 19, MaxY: 19, CenterX: 15, CenterY: 15, Area: 30},
		{MinX: 60, MinY: 60, MaxX: 69, MaxY: 69, CenterX: 65, CenterY: 65, Area: 10},
	}

	result, err := RenderOverlay(img, regions, 2, 2, OverlayOptions{MaxRegions: 1, ShowLabels: true})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}
	if result.Regions != 1 {
		t.Errorf("Regions: got %d, want 1", result.Regions)
	}

	out := decodeBase64PNG(t, result.ImageBase64)
	if r, g, b := rgb8(out.At(20, 30)); r == 0 && g == 0 && b == 0 {
		t.Error("scaled primary box not drawn at (20,30)")
	}
	if r, g, b := rgb8(out.At(120, 130)); r != 0 || g != 0 || b != 0 {
		t.Errorf("region beyond MaxRegions drawn: (%d,%d,%d)", r, g, b)
	}
}

func TestRenderOverlay_InvalidColorFallsBack(t *testing.T) {
	img := createInMemoryImage(40, 40, color.Black)
	regions := []detection.Region{{MinX: 5, MinY: 5, MaxX: 20, MaxY: 20, CenterX: 12, CenterY: 12, Area: 40}}

	result, err := RenderOverlay(img, regions, 1, 1, OverlayOptions{PrimaryColor: "not-a-color"})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}

	out := decodeBase64PNG(t, result.ImageBase64)
	if r, g, b := rgb8(out.At(5, 10)); r != 0x50 || g != 0xDC || b != 0x78 {
		t.Errorf("fallback color: got (%d,%d,%d), want (80,220,120)", r, g, b)
	}
}

func TestRenderOverlay_NoRegions(t *testing.T) {
	img := createInMemoryImage(20, 20, color.White)

	result, err := RenderOverlay(img, nil, 1, 1, OverlayOptions{})
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}
	if result.Regions != 0 {
		t.Errorf("Regions: got %d, want 0", result.Regions)
	}
}

func TestRegionColor_Distinct(t *testing.T) {
	seen := make(map[color.RGBA]bool)
	for i := 1; i <= 8; i++ {
		c := regionColor(i)
		if seen[c] {
			t.Errorf("region color %d repeats %v", i, c)
		}
		seen[c] = true
	}
}
