// Package sink provides drawing surfaces and exports for rendered maps.
//
// # Overview
//
// A "sink" is where a render ends up. This package provides:
//
//   - [SVGSurface]: vector output through svgo. Hyperlinks become <a>
//     wrappers and mouseover text a <title> child, so browsers show it as
//     a tooltip.
//   - [PNGSurface]: raster output through gg, with text set in Go Regular.
//   - [RenderLabelsJSON]: the label bounds of a [render.Result], for image
//     map writers and other hit-testing tools.
//
// Both surfaces implement [canvas.Surface] and measure text with the same
// font metrics, so a layout computed on one matches the other.
//
// Basic usage:
//
//	var buf bytes.Buffer
//	s := sink.NewSVGSurface(&buf, 800, 800)
//	res := renderer.RenderFull(s, render.ViewOptions{})
//	s.End()
//	labels, err := sink.RenderLabelsJSON(res)
//
// [canvas.Surface]: github.com/matzehuels/cgmap/pkg/render/canvas.Surface
// [render.Result]: github.com/matzehuels/cgmap/pkg/render.Result
package sink
