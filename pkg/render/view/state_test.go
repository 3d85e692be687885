package view

import (
	"math"
	"testing"

	"github.com/matzehuels/cgmap/pkg/geom"
)

const eps = 1e-9

func sameAngle(a, b float64) bool {
	return math.Abs(geom.AngleDiff(a, b)) < 1e-7
}

func baseRequest() Request {
	return Request{
		SequenceLength: 10000,
		OriginDegrees:  90,
		Zoom:           1,
		Canvas:         geom.RectXYWH(0, 0, 600, 600),
		BackboneRadius: 200,
		InnerOffset:    40,
		OuterOffset:    40,
	}
}

func TestAngleUnzoomed(t *testing.T) {
	for _, center := range []int{0, 1, 2500, 9999, 10000} {
		req := baseRequest()
		req.Center = center
		s := NewState(req)
		for _, b := range []float64{0, 1, 17, 2500, 5000, 9999, 10000} {
			want := 2*math.Pi*b/10000 - math.Pi/2
			if got := s.Angle(b); math.Abs(got-want) > eps {
				t.Errorf("center=%d: Angle(%v) = %v, want %v", center, b, got, want)
			}
		}
	}
}

func TestAngleExample(t *testing.T) {
	req := baseRequest()
	req.Center = 5000
	s := NewState(req)

	// Half way round the sequence sits π away from the origin, which the
	// 90° rotation puts at 12 o'clock; base 5000 is therefore at 6 o'clock.
	if got := s.Angle(5000) - s.Angle(0); math.Abs(got-math.Pi) > eps {
		t.Errorf("Angle(5000)-Angle(0) = %v, want π", got)
	}
	if got := s.Angle(5000); math.Abs(got-math.Pi/2) > eps {
		t.Errorf("Angle(5000) = %v, want π/2", got)
	}
	if got := s.Degrees(5000); math.Abs(got-90) > 1e-7 {
		t.Errorf("Degrees(5000) = %v, want 90", got)
	}
	p := s.Point(0, 200)
	if math.Abs(p.X-300) > 1e-7 || math.Abs(p.Y-100) > 1e-7 {
		t.Errorf("origin should be at 12 o'clock, got %v", p)
	}
}

func TestAngleCenterContinuity(t *testing.T) {
	for _, zoom := range []float64{1, 2, 50, ZoomMax, ZoomMax * 3} {
		for _, center := range []int{0, 3, 5000, 9998, 10000} {
			req := baseRequest()
			req.Zoom, req.Center = zoom, center
			s := NewState(req)
			want := 2*math.Pi*float64(center)/10000 - math.Pi/2
			if got := s.Angle(float64(center)); got != s.CenterAngle || math.Abs(got-want) > eps {
				t.Errorf("zoom=%v center=%d: Angle(center) = %v, want %v", zoom, center, got, want)
			}
		}
	}
}

func TestZoomedAngleMatchesPlainWithoutVirtual(t *testing.T) {
	req := baseRequest()
	req.Zoom, req.Center = 40, 9990
	s := NewState(req)
	if s.Entire || !s.Two.Used() {
		t.Fatalf("expected a split window, got %+v", s.Windows)
	}
	for _, b := range []float64{9950, 9989, 9999.5, 10000, 0, 3, 20} {
		if !s.Drawable(b) {
			continue
		}
		want := 2*math.Pi*b/10000 - math.Pi/2
		if !sameAngle(s.Angle(b), want) {
			t.Errorf("Angle(%v) = %v, want %v (mod 2π)", b, s.Angle(b), want)
		}
	}
}

func TestZoomedCenterOnCanvas(t *testing.T) {
	req := baseRequest()
	req.Zoom, req.Center = 25, 1234
	s := NewState(req)
	p := s.Point(float64(s.Center), s.Radius)
	if math.Abs(p.X-300) > 1e-6 || math.Abs(p.Y-300) > 1e-6 {
		t.Errorf("centre base should land on the canvas centre, got %v", p)
	}
	if s.Radius != 200*25 {
		t.Errorf("Radius = %v, want %v", s.Radius, 200*25.0)
	}
}

func TestSplitZoom(t *testing.T) {
	tests := []struct {
		in         float64
		zoom, virt float64
		virtualOn  bool
	}{
		{0.2, 1, 1, false},
		{1, 1, 1, false},
		{math.NaN(), 1, 1, false},
		{10, 10, 1, false},
		{ZoomMax, ZoomMax, 1, false},
		{ZoomMax + 0.5, ZoomMax, 1, true},
		{ZoomMax * 2, ZoomMax, ZoomMax, true},
		{ZoomMax + VirtualZoomMax*10, ZoomMax, VirtualZoomMax, true},
	}
	for _, tt := range tests {
		z, v, on := SplitZoom(tt.in)
		if z != tt.zoom || v != tt.virt || on != tt.virtualOn {
			t.Errorf("SplitZoom(%v) = %v, %v, %v; want %v, %v, %v", tt.in, z, v, on, tt.zoom, tt.virt, tt.virtualOn)
		}
	}
}

func TestVirtualZoomStretches(t *testing.T) {
	req := baseRequest()
	req.SequenceLength = 1_000_000
	req.Center = 500_000
	req.Zoom = ZoomMax * 2
	s := NewState(req)
	if !s.Virtual {
		t.Fatal("virtual zoom should be active above ZoomMax")
	}
	if got := s.Stretch(); math.Abs(got-2) > eps {
		t.Fatalf("Stretch = %v, want 2", got)
	}
	plain := 2 * math.Pi / 1e6
	got := s.Angle(500_001) - s.Angle(500_000)
	if math.Abs(got-2*plain) > 1e-12 {
		t.Errorf("one base spans %v rad, want %v", got, 2*plain)
	}
}

func TestCenterClamped(t *testing.T) {
	req := baseRequest()
	req.Zoom, req.Center = 10, 20000
	if s := NewState(req); s.Center != 10000 {
		t.Errorf("Center = %d, want 10000", s.Center)
	}
	req.Center = -5
	if s := NewState(req); s.Center != 0 {
		t.Errorf("Center = %d, want 0", s.Center)
	}
}

func TestWindowsContainCenter(t *testing.T) {
	for _, zoom := range []float64{2, 5, 30, 500, ZoomMax, ZoomMax * 4} {
		for _, center := range []int{0, 1, 10, 4000, 9990, 10000} {
			req := baseRequest()
			req.Zoom, req.Center = zoom, center
			s := NewState(req)
			if s.Entire {
				continue
			}
			if !s.Drawable(float64(center)) {
				t.Errorf("zoom=%v center=%d: centre not in %+v", zoom, center, s.Windows)
			}
			if s.Two.Used() {
				// The two windows meet at the origin.
				if s.One.Stop != s.N || s.Two.Start != 1 {
					t.Errorf("zoom=%v center=%d: windows not contiguous %+v", zoom, center, s.Windows)
				}
				if s.One.Start <= s.Two.Stop {
					t.Errorf("zoom=%v center=%d: windows overlap %+v", zoom, center, s.Windows)
				}
			}
			if s.One.Start > s.One.Stop {
				t.Errorf("zoom=%v center=%d: inverted window %+v", zoom, center, s.One)
			}
		}
	}
}

func TestWindowsShrinkWithZoom(t *testing.T) {
	prev := math.MaxInt
	for _, zoom := range []float64{2, 8, 32, 128, 512} {
		req := baseRequest()
		req.Zoom, req.Center = zoom, 5000
		s := NewState(req)
		span := s.Span(s.N)
		if span > prev {
			t.Errorf("zoom=%v: span %d grew from %d", zoom, span, prev)
		}
		prev = span
	}
	if prev >= 10000 {
		t.Errorf("high zoom should not show the entire sequence, span = %d", prev)
	}
}

func TestLowZoomSeesEverything(t *testing.T) {
	req := baseRequest()
	req.Canvas = geom.RectXYWH(0, 0, 2000, 2000)
	req.Zoom, req.Center = 1.05, 100
	s := NewState(req)
	if !s.Entire {
		t.Errorf("slight zoom on a small map should still see every base, got %+v", s.Windows)
	}
	for _, b := range []int{1, 5000, 10000} {
		if !s.BaseIsDrawable(b) {
			t.Errorf("BaseIsDrawable(%d) = false with entire view", b)
		}
	}
}

func TestBaseIsDrawable(t *testing.T) {
	w := Windows{One: Window{9001, 10000}, Two: Window{1, 500}}
	tests := []struct {
		b    int
		want bool
	}{
		{9000, false}, {9001, true}, {10000, true}, {1, true}, {500, true}, {501, false}, {5000, false},
	}
	for _, tt := range tests {
		if got := w.BaseIsDrawable(tt.b); got != tt.want {
			t.Errorf("BaseIsDrawable(%d) = %v, want %v", tt.b, got, tt.want)
		}
	}
	if got := w.Span(10000); got != 1500 {
		t.Errorf("Span = %d, want 1500", got)
	}
}

func TestDegenerateCanvas(t *testing.T) {
	req := baseRequest()
	req.Canvas = geom.Rect{}
	req.Zoom, req.Center = 50, 300
	s := NewState(req)
	if s.Entire {
		t.Fatal("empty canvas should not report the entire sequence")
	}
	if !s.One.ContainsBase(300) && !s.One.ContainsBase(301) {
		t.Errorf("degenerate window should still hold the centre, got %+v", s.One)
	}
}

func TestWindowsAround(t *testing.T) {
	tests := []struct {
		name    string
		c, b, f float64
		want    Windows
	}{
		{"inside", 500, 100, 100, Windows{One: Window{401, 600}}},
		{"crosses origin backwards", 50, 100, 100, Windows{One: Window{951, 1000}, Two: Window{1, 150}}},
		{"crosses end forwards", 950, 100, 100, Windows{One: Window{851, 1000}, Two: Window{1, 50}}},
		{"everything", 500, 600, 600, Windows{Entire: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowsAround(tt.c, tt.b, tt.f, 1000); got != tt.want {
				t.Errorf("windowsAround = %+v, want %+v", got, tt.want)
			}
		})
	}
}
