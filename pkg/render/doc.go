// Package render draws a circular sequence map onto a [canvas.Surface].
//
// # Overview
//
// A [Renderer] holds one [scene.Map] and draws it in either of two views:
//
//   - [Renderer.RenderFull] shows the whole sequence.
//   - [Renderer.RenderZoomed] magnifies the map around a base. Zoom beyond
//     [view.ZoomMax] becomes virtual zoom, which stretches bases apart
//     without growing the backbone radius further.
//
// Each call builds a fresh [view.State], draws the backbone and rings
// (collecting label candidates on the way), lays the labels out with the
// [labels] engine, and then draws the ruler, the title and the legends.
// The returned [Result] lists the bounding box of every drawn label. Image
// map writers and the HTTP server use these boxes for hit testing.
//
// # Label reuse
//
// A renderer keeps the labels placed by its last call. Passing reuse to
// [Renderer.RenderZoomed] skips layout and redraws those labels at the
// same offsets from their anchors, so panning at a fixed zoom does not
// reshuffle them.
//
// # Subpackages
//
//   - [view]: zoom clamping, visible windows and the base-to-angle mapping
//   - [clip]: cutting circular intervals down to the visible windows
//   - [ring]: ring layout and feature drawing
//   - [labels]: the label layout engine
//   - [ticks]: the ruler
//   - [canvas]: the drawing surface interface and an in-memory recorder
//   - [sink]: SVG and PNG surfaces and the label bounds JSON export
//
// [view]: github.com/matzehuels/cgmap/pkg/render/view
// [clip]: github.com/matzehuels/cgmap/pkg/render/clip
// [ring]: github.com/matzehuels/cgmap/pkg/render/ring
// [labels]: github.com/matzehuels/cgmap/pkg/render/labels
// [ticks]: github.com/matzehuels/cgmap/pkg/render/ticks
// [canvas]: github.com/matzehuels/cgmap/pkg/render/canvas
// [sink]: github.com/matzehuels/cgmap/pkg/render/sink
package render
