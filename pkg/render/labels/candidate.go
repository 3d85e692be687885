package labels

import (
	"image/color"
	"math"

	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/scene"
)

// Side is the side of the rings a label sits on.
type Side int

const (
	Outer Side = iota
	Inner
)

func (s Side) String() string {
	if s == Inner {
		return "inner"
	}
	return "outer"
}

// Candidate is a label waiting for, or holding, a placement.
type Candidate struct {
	ID   scene.RangeID
	Text string

	// Anchor is the angle of the labelled feature; Angle is where the label
	// currently sits.
	Anchor float64
	Angle  float64
	Side   Side

	// AnchorRadius is where the leader line leaves the feature. Radius is
	// where it meets the label box; it grows outward (or inward for inner
	// labels) when the label is extended.
	AnchorRadius float64
	Radius       float64

	W, H float64
	// Box is the unpadded label box for the current Angle and Radius.
	Box geom.Rect

	Forced bool

	FontSize  float64
	Color     color.NRGBA
	Hyperlink string
	Mouseover string
}

// Point is where the leader line meets the label box.
func (c *Candidate) Point(centre geom.Point) geom.Point {
	return geom.Polar(centre, c.Radius, c.Angle)
}

// AnchorPoint is where the leader line leaves the feature.
func (c *Candidate) AnchorPoint(centre geom.Point) geom.Point {
	return geom.Polar(centre, c.AnchorRadius, c.Anchor)
}

// Place recomputes Box from Angle and Radius. The box touches the leader
// point on the side facing the map centre for outer labels and on the
// side facing away from it for inner labels, so text never sits on top of
// its own leader line.
func (c *Candidate) Place(centre geom.Point) {
	p := c.Point(centre)
	cos, sin := math.Cos(c.Angle), math.Sin(c.Angle)
	var x, y float64
	if c.Side == Outer {
		x = p.X + (cos-1)/2*c.W
		y = p.Y + (sin-1)/2*c.H
	} else {
		x = p.X - (cos+1)/2*c.W
		y = p.Y - (sin+1)/2*c.H
	}
	c.Box = geom.RectXYWH(x, y, c.W, c.H)
}

// convert moves an inner label to the outer side at radius r, back at its
// anchor angle.
func (c *Candidate) convert(r float64, centre geom.Point) {
	c.Side = Outer
	c.Radius = r
	c.Angle = c.Anchor
	c.Place(centre)
}

func clash(a, b *Candidate, pad float64) bool {
	return a.Box.Inset(pad / 2).Overlaps(b.Box.Inset(pad / 2))
}
