package view

import (
	"math"

	"github.com/matzehuels/cgmap/pkg/geom"
)

const (
	// ZoomMax caps the primary zoom multiplier.
	ZoomMax = 6000.0
	// VirtualZoomMax caps the virtual zoom multiplier.
	VirtualZoomMax = 100000.0

	// windowMargin inflates the measured visible span on each side.
	windowMargin = 0.2
	// probeStep is the arc length, in pixels at the backbone, between
	// successive window probes.
	probeStep = 2.0
)

// Request describes one render call.
type Request struct {
	SequenceLength int
	OriginDegrees  float64

	// Zoom is the requested magnification before clamping; values at or
	// below 1 draw the whole map.
	Zoom float64
	// Center is the base the zoomed view is centred on.
	Center int

	Canvas geom.Rect

	// BackboneRadius is the unzoomed backbone radius in pixels.
	BackboneRadius float64
	// InnerOffset and OuterOffset are the distances, in pixels, from the
	// backbone to the innermost and outermost drawn radii. Ring thickness
	// does not scale with zoom, so these stay fixed while the radius grows.
	InnerOffset, OuterOffset float64
}

// State is the per-render view: clamped zoom values, the centre point, and
// the visible windows. It is a value; stages receive it by copy.
type State struct {
	N      int
	Origin float64 // radians

	Zoom        float64
	VirtualZoom float64
	Virtual     bool

	Center      int
	CenterAngle float64

	Windows

	// Centre is the pixel position of the map centre; it may lie far
	// outside the canvas when zoomed.
	Centre geom.Point
	// Radius is the zoomed backbone radius.
	Radius      float64
	InnerOffset float64
	OuterOffset float64
	Canvas      geom.Rect
}

// SplitZoom clamps a requested zoom into its primary and virtual parts.
func SplitZoom(z float64) (zoom, virtual float64, active bool) {
	if math.IsNaN(z) || z <= 1 {
		return 1, 1, false
	}
	if z <= ZoomMax {
		return z, 1, false
	}
	return ZoomMax, min(max(z-ZoomMax, 1), VirtualZoomMax), true
}

// NewState clamps req and computes the visible windows.
func NewState(req Request) State {
	n := max(req.SequenceLength, 1)
	s := State{
		N:           n,
		Origin:      geom.Radians(req.OriginDegrees),
		Center:      min(max(req.Center, 0), n),
		Canvas:      req.Canvas,
		InnerOffset: req.InnerOffset,
		OuterOffset: req.OuterOffset,
	}
	s.Zoom, s.VirtualZoom, s.Virtual = SplitZoom(req.Zoom)
	s.Radius = req.BackboneRadius * s.Zoom
	s.CenterAngle = s.plainAngle(float64(s.Center))

	cc := req.Canvas.Center()
	if !s.Zoomed() {
		s.Centre = cc
		s.Windows = Windows{Entire: true}
		return s
	}
	anchor := geom.Polar(geom.Point{}, s.Radius, s.CenterAngle)
	s.Centre = geom.Point{X: cc.X - anchor.X, Y: cc.Y - anchor.Y}
	s.Windows = s.visibleWindows()
	return s
}

// Zoomed reports whether the view is magnified.
func (s State) Zoomed() bool { return s.Zoom > 1 }

// Stretch is the angular magnification contributed by virtual zoom.
func (s State) Stretch() float64 {
	if !s.Virtual {
		return 1
	}
	return (s.VirtualZoom + s.Zoom) / s.Zoom
}

// RadiansPerBase is the angle one base spans in this view.
func (s State) RadiansPerBase() float64 {
	return 2 * math.Pi / float64(s.N) * s.Stretch()
}

// InnerRadius is the innermost drawn radius.
func (s State) InnerRadius() float64 { return max(s.Radius-s.InnerOffset, 0) }

// OuterRadius is the outermost drawn radius.
func (s State) OuterRadius() float64 { return s.Radius + s.OuterOffset }

func (s State) plainAngle(pos float64) float64 {
	return 2*math.Pi*pos/float64(s.N) - s.Origin
}

// Angle maps the continuous position pos to radians.
func (s State) Angle(pos float64) float64 {
	if !s.Zoomed() {
		return s.plainAngle(pos)
	}
	if pos == float64(s.Center) {
		return s.CenterAngle
	}
	return s.CenterAngle - s.delta(pos)*s.RadiansPerBase()
}

// Degrees is Angle in degrees.
func (s State) Degrees(pos float64) float64 {
	return geom.Degrees(s.Angle(pos))
}

// Point returns the canvas point at position pos and radius r.
func (s State) Point(pos, r float64) geom.Point {
	return geom.Polar(s.Centre, r, s.Angle(pos))
}

// delta returns centre − pos measured along the visible window.
func (s State) delta(pos float64) float64 {
	c, n := float64(s.Center), float64(s.N)
	if s.Entire {
		return circularDelta(c, pos, n)
	}
	cOne, cTwo := s.One.Contains(c), s.Two.Contains(c)
	bOne, bTwo := s.One.Contains(pos), s.Two.Contains(pos)
	switch {
	case cOne && bOne:
		return c - pos
	case cOne && bTwo:
		// Two continues past the end of the sequence.
		return c - (pos + n)
	case cTwo && bOne:
		// One precedes the origin.
		return (c + n) - pos
	case cTwo && bTwo:
		return c - pos
	}
	return circularDelta(c, pos, n)
}

// circularDelta returns c − pos folded into (−n/2, n/2].
func circularDelta(c, pos, n float64) float64 {
	d := math.Mod(c-pos, n)
	if d > n/2 {
		d -= n
	} else if d <= -n/2 {
		d += n
	}
	return d
}

// visibleWindows walks probes away from the centre in both directions
// until the drawn band leaves the canvas.
func (s State) visibleWindows() Windows {
	if s.Radius <= 0 || s.Canvas.Empty() {
		return windowsAround(float64(s.Center), 0, 0, s.N)
	}
	step := probeStep / s.Radius
	fwd, fwdFull := s.probe(step)
	back, backFull := s.probe(-step)
	if fwdFull || backFull {
		return Windows{Entire: true}
	}
	perBase := s.RadiansPerBase()
	fwdBases := fwd / perBase * (1 + windowMargin)
	backBases := back / perBase * (1 + windowMargin)
	return windowsAround(float64(s.Center), backBases, fwdBases, s.N)
}

// probe returns the angle travelled before the radial band at
// CenterAngle+travel stops touching the canvas, and whether a full turn
// completed first.
func (s State) probe(step float64) (float64, bool) {
	inner, outer := s.InnerRadius(), s.OuterRadius()
	var travel float64
	for math.Abs(travel) < 2*math.Pi {
		next := travel + step
		theta := s.CenterAngle + next
		a := geom.Polar(s.Centre, inner, theta)
		b := geom.Polar(s.Centre, outer, theta)
		if !geom.SegmentIntersects(a, b, s.Canvas) {
			return math.Abs(travel), false
		}
		travel = next
	}
	return 2 * math.Pi, true
}
