// Package canvas defines the drawing capability the renderer needs.
//
// Angles are in radians, measured clockwise from 3 o'clock because the y
// axis points down. Colours carry their own alpha; callers fold opacity in
// before drawing.
package canvas

import (
	"image/color"
	"math"

	"github.com/matzehuels/cgmap/pkg/geom"
)

// Surface is a 2D drawing target. Implementations clip to their own bounds.
type Surface interface {
	// Size returns the drawable width and height in pixels.
	Size() (w, h float64)

	// StrokeArc strokes the circle arc of radius r about c from angle a0 to
	// a1 (a0 < a1).
	StrokeArc(c geom.Point, r, a0, a1 float64, st Stroke)
	StrokeLine(a, b geom.Point, st Stroke)
	FillPolygon(pts []geom.Point, fill color.NRGBA)
	FillRect(r geom.Rect, fill color.NRGBA)
	StrokeRect(r geom.Rect, st Stroke)

	// MeasureText returns the width and height of text set at size.
	MeasureText(text string, size float64) (w, h float64)
	// DrawText draws text with its bounding box's top-left corner at p.
	DrawText(text string, p geom.Point, size float64, c color.NRGBA)

	// BeginLink and EndLink bracket drawing that belongs to a hyperlink or
	// mouseover. Raster surfaces ignore them.
	BeginLink(href, title string)
	EndLink()
}

// Stroke describes a line.
type Stroke struct {
	Color color.NRGBA
	Width float64
	Cap   Cap
}

// Cap is a line-end style.
type Cap int

const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

// arcStep is the largest angle between points of a polygonised arc.
const arcStep = math.Pi / 180

// ArcPoints returns points along the arc of radius r about c from a0 to a1,
// inclusive of both ends. The step is sized so neighbouring points are
// never more than about one degree or two pixels apart.
func ArcPoints(c geom.Point, r, a0, a1 float64) []geom.Point {
	span := a1 - a0
	step := arcStep
	if r > 0 {
		step = min(step, 2/r)
	}
	n := max(int(math.Ceil(math.Abs(span)/step)), 1)
	pts := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, geom.Polar(c, r, a0+span*float64(i)/float64(n)))
	}
	return pts
}

// Band returns the closed outline of the annulus sector between radii rIn
// and rOut and angles a0 and a1. Any tip points are inserted after the
// outer arc reaches a1, which turns the sector into an arrow body.
func Band(c geom.Point, rIn, rOut, a0, a1 float64, tip ...geom.Point) []geom.Point {
	pts := ArcPoints(c, rOut, a0, a1)
	pts = append(pts, tip...)
	return append(pts, ArcPoints(c, rIn, a1, a0)...)
}
