// Package imaging is the frame source and presentation layer around the
// detection engine.
//
// It loads captured frames from disk, reduces them to analysis resolution,
// flattens them into detection.Frame values, and renders detection results
// (edge masks, region overlays, region crops) back into images for the caller.
// The engine itself never touches files or encoders.
//
// # Coordinate System
//
// Detection works on a downscaled copy of the capture. PrepareFrame returns
// the factors (ScaleX, ScaleY) that map analysis pixels back to the source;
// the rendering functions take those factors so boxes land on the source
// image:
//
//	prepared, _ := imaging.PrepareFrame(img, imaging.DefaultAnalysisOptions())
//	res, _ := detection.Detect(prepared.Frame, prev, cfg)
//	overlay, _ := imaging.RenderOverlay(img, res.Regions, prepared.ScaleX, prepared.ScaleY, imaging.OverlayOptions{})
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless.
package imaging
