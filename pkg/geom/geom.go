// Package geom holds the small amount of plane geometry the renderer needs:
// points, axis-aligned rectangles and polar conversion around a map centre.
//
// Screen coordinates are used throughout: x grows to the right and y grows
// downward, so increasing angles turn clockwise on the canvas.
package geom

import "math"

// Point is a position in canvas pixels.
type Point struct {
	X, Y float64
}

// Polar returns the point at radius r and angle theta (radians) around c.
func Polar(c Point, r, theta float64) Point {
	return Point{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect is an axis-aligned rectangle with Min at the top-left corner.
type Rect struct {
	Min, Max Point
}

// RectXYWH builds a rectangle from its top-left corner and size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + w, y + h}}
}

// W returns the rectangle width.
func (r Rect) W() float64 { return r.Max.X - r.Min.X }

// H returns the rectangle height.
func (r Rect) H() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Inset grows r by d on every side; negative d shrinks it.
func (r Rect) Inset(d float64) Rect {
	return Rect{Min: Point{r.Min.X - d, r.Min.Y - d}, Max: Point{r.Max.X + d, r.Max.Y + d}}
}

// Overlaps reports whether r and s share interior area. Rectangles that
// merely touch along an edge do not overlap.
func (r Rect) Overlaps(s Rect) bool {
	return overlap(r.Min.X, r.Max.X, s.Min.X, s.Max.X) > 0 &&
		overlap(r.Min.Y, r.Max.Y, s.Min.Y, s.Max.Y) > 0
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Within reports whether r lies completely inside s.
func (r Rect) Within(s Rect) bool {
	return r.Min.X >= s.Min.X && r.Min.Y >= s.Min.Y && r.Max.X <= s.Max.X && r.Max.Y <= s.Max.Y
}

// Corners returns the four corners of r, clockwise from the top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{r.Min, {r.Max.X, r.Min.Y}, r.Max, {r.Min.X, r.Max.Y}}
}

// NearestDist returns the distance from p to the closest point of r, zero
// when p is inside.
func (r Rect) NearestDist(p Point) float64 {
	dx := max(r.Min.X-p.X, 0, p.X-r.Max.X)
	dy := max(r.Min.Y-p.Y, 0, p.Y-r.Max.Y)
	return math.Hypot(dx, dy)
}

// FarthestDist returns the distance from p to the farthest corner of r.
func (r Rect) FarthestDist(p Point) float64 {
	var d float64
	for _, c := range r.Corners() {
		d = max(d, c.Dist(p))
	}
	return d
}

func overlap(a1, a2, b1, b2 float64) float64 {
	return max(0, min(a2, b2)-max(a1, b1))
}

// NormalizeAngle maps theta into [0, 2π).
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}

// AngleDiff returns the signed shortest rotation from a to b, in (-π, π].
func AngleDiff(a, b float64) float64 {
	d := NormalizeAngle(b - a)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// SegmentIntersects reports whether the segment ab touches r, using
// Liang-Barsky clipping.
func SegmentIntersects(a, b Point, r Rect) bool {
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return false
			}
			t1 = min(t1, t)
		}
		return true
	}
	return clip(-dx, a.X-r.Min.X) && clip(dx, r.Max.X-a.X) &&
		clip(-dy, a.Y-r.Min.Y) && clip(dy, r.Max.Y-a.Y)
}
