// Package detection implements the motion-gated edge segmentation engine.
//
// The engine turns a single RGBA frame into a short list of candidate object
// regions (bounding box, centroid, pixel area) using only pixel arithmetic.
// No model, classifier, or tracker is involved.
//
// # Pipeline
//
// Detect runs three stages, each also exported on its own:
//
//  1. Luminance: RGBA -> float luminance using ITU-R BT.601 weights
//     (0.299*R + 0.587*G + 0.114*B)
//  2. ComputeEdgeMask: 3x3 Sobel gradient, L1 magnitude |gx| + |gy| against
//     an edge threshold, optionally gated by the luminance change since the
//     previous frame
//  3. ExtractRegions: 8-connected component labeling with an explicit stack,
//     minimum area filter, stable sort by area descending
//
// # Rolling Previous Frame
//
// The engine keeps no state between calls. Motion gating uses the Luma that
// the caller received from the previous Detect call and passes back in:
//
//	var prev *detection.Luma
//	for frame := range frames {
//	    res, err := detection.Detect(frame, prev, cfg)
//	    if err != nil {
//	        return err
//	    }
//	    prev = res.Luma
//	    draw(res.Regions)
//	}
//
// A nil prev, or one whose dimensions differ from the current frame, disables
// motion gating for that call only.
//
// # Coordinate System
//
// Coordinates are pixels of the analyzed frame with (0, 0) at the top-left.
// Border pixels never become edges, so every region lies inside
// [1, Width-2] x [1, Height-2].
//
// # Performance
//
// Every stage is a single O(Width*Height) pass. Callers trade accuracy for
// throughput by downscaling frames before calling Detect.
package detection
