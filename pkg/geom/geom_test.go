package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestPolar(t *testing.T) {
	c := Point{100, 100}
	tests := []struct {
		name  string
		theta float64
		want  Point
	}{
		{"east", 0, Point{110, 100}},
		{"south (screen)", math.Pi / 2, Point{100, 110}},
		{"west", math.Pi, Point{90, 100}},
		{"north (screen)", -math.Pi / 2, Point{100, 90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Polar(c, 10, tt.theta)
			if math.Abs(got.X-tt.want.X) > eps || math.Abs(got.Y-tt.want.Y) > eps {
				t.Errorf("Polar(%v) = %v, want %v", tt.theta, got, tt.want)
			}
		})
	}
}

func TestRectOverlaps(t *testing.T) {
	a := RectXYWH(0, 0, 10, 10)
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"identical", RectXYWH(0, 0, 10, 10), true},
		{"partial", RectXYWH(5, 5, 10, 10), true},
		{"inside", RectXYWH(2, 2, 2, 2), true},
		{"touching edge", RectXYWH(10, 0, 5, 5), false},
		{"disjoint", RectXYWH(20, 20, 5, 5), false},
		{"same column apart", RectXYWH(0, 11, 10, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectDistances(t *testing.T) {
	r := RectXYWH(10, 0, 10, 10)
	o := Point{0, 0}
	if got := r.NearestDist(o); math.Abs(got-10) > eps {
		t.Errorf("NearestDist = %v, want 10", got)
	}
	if got := r.FarthestDist(o); math.Abs(got-math.Hypot(20, 10)) > eps {
		t.Errorf("FarthestDist = %v, want %v", got, math.Hypot(20, 10))
	}
	if got := r.NearestDist(Point{15, 5}); got != 0 {
		t.Errorf("NearestDist inside = %v, want 0", got)
	}
}

func TestAngles(t *testing.T) {
	if got := NormalizeAngle(-math.Pi / 2); math.Abs(got-3*math.Pi/2) > eps {
		t.Errorf("NormalizeAngle(-π/2) = %v", got)
	}
	if got := NormalizeAngle(5 * math.Pi); math.Abs(got-math.Pi) > eps {
		t.Errorf("NormalizeAngle(5π) = %v", got)
	}
	if got := AngleDiff(0.1, 2*math.Pi-0.1); math.Abs(got+0.2) > eps {
		t.Errorf("AngleDiff across seam = %v, want -0.2", got)
	}
	if got := Degrees(Radians(123.5)); math.Abs(got-123.5) > eps {
		t.Errorf("degree round trip = %v", got)
	}
}

func TestSegmentIntersects(t *testing.T) {
	r := RectXYWH(0, 0, 10, 10)
	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"inside", Point{1, 1}, Point{2, 2}, true},
		{"crossing", Point{-5, 5}, Point{15, 5}, true},
		{"one end inside", Point{5, 5}, Point{50, 50}, true},
		{"outside left", Point{-5, 0}, Point{-1, 10}, false},
		{"diagonal miss", Point{11, -1}, Point{20, 5}, false},
		{"corner graze", Point{-1, 1}, Point{1, -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersects(tt.a, tt.b, r); got != tt.want {
				t.Errorf("SegmentIntersects = %v, want %v", got, tt.want)
			}
		})
	}
}
