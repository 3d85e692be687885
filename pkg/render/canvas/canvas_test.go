package canvas

import (
	"math"
	"testing"

	"github.com/matzehuels/cgmap/pkg/geom"
)

func TestArcPoints(t *testing.T) {
	c := geom.Point{X: 100, Y: 100}
	pts := ArcPoints(c, 50, 0, math.Pi/2)
	if len(pts) < 2 {
		t.Fatalf("got %d points, want at least 2", len(pts))
	}
	first, last := pts[0], pts[len(pts)-1]
	if math.Abs(first.X-150) > 1e-9 || math.Abs(first.Y-100) > 1e-9 {
		t.Errorf("first point = %v, want (150,100)", first)
	}
	// Quarter turn clockwise on screen lands at 6 o'clock.
	if math.Abs(last.X-100) > 1e-9 || math.Abs(last.Y-150) > 1e-9 {
		t.Errorf("last point = %v, want (100,150)", last)
	}
	for _, p := range pts {
		if d := p.Dist(c); math.Abs(d-50) > 1e-9 {
			t.Fatalf("point %v at distance %v, want 50", p, d)
		}
	}
}

func TestBand(t *testing.T) {
	c := geom.Point{}
	pts := Band(c, 10, 20, 0, 0.1)
	if got := pts[0].Dist(c); math.Abs(got-20) > 1e-9 {
		t.Errorf("band starts at radius %v, want 20", got)
	}
	if got := pts[len(pts)-1].Dist(c); math.Abs(got-10) > 1e-9 {
		t.Errorf("band ends at radius %v, want 10", got)
	}

	tip := geom.Polar(c, 15, 0.2)
	arrow := Band(c, 10, 20, 0, 0.1, tip)
	if len(arrow) != len(pts)+1 {
		t.Fatalf("arrow has %d points, want %d", len(arrow), len(pts)+1)
	}
	outer := len(ArcPoints(c, 20, 0, 0.1))
	if arrow[outer] != tip {
		t.Errorf("tip at index %d = %v, want %v", outer, arrow[outer], tip)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(200, 100)
	if w, h := r.Size(); w != 200 || h != 100 {
		t.Errorf("Size() = %v,%v", w, h)
	}
	w, h := r.MeasureText("abcd", 10)
	if w != 24 || h != 10 {
		t.Errorf("MeasureText = %v,%v, want 24,10", w, h)
	}
	r.BeginLink("https://example.org", "tip")
	r.DrawText("abcd", geom.Point{X: 5, Y: 5}, 10, Stroke{}.Color)
	r.EndLink()
	if got := r.Texts(); len(got) != 1 || got[0] != "abcd" {
		t.Errorf("Texts() = %v", got)
	}
	if got := r.Filter(OpText)[0].Rect; got != geom.RectXYWH(5, 5, 24, 10) {
		t.Errorf("text rect = %v", got)
	}
	if len(r.Calls) != 3 {
		t.Errorf("recorded %d calls, want 3", len(r.Calls))
	}
}
