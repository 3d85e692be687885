// Package view maps sequence positions to angles on the canvas and works
// out which part of the sequence a zoomed view can see.
//
// A [State] is built once per render call by [NewState] and threaded
// through every drawing stage; nothing in this package keeps state between
// calls.
//
// # Positions
//
// Positions are continuous: base b occupies [b-1, b] on an axis running
// from 0 to N. Angles are radians in screen space (y grows downward), so
// increasing positions turn clockwise.
//
// # Zoom
//
// A requested zoom Z is split in two. The primary zoom is Z clamped to
// [1, ZoomMax] and scales the backbone radius. Anything above ZoomMax
// becomes the virtual zoom, clamped to [1, VirtualZoomMax], which leaves
// the radius alone and stretches angles around the centre base instead:
//
//	angle(b) = centerAngle − Δ(b)·(2π/N)·(virtual + zoom)/zoom
//
// Δ is the signed distance from b to the centre base measured inside the
// visible window, which may be split in two where it crosses the origin.
package view
