// Package ticks generates the ruler drawn just inside the innermost ring.
//
// Major ticks are spaced at a "nice" base interval (1, 2 or 5 times a
// power of ten) chosen so that neighbouring majors sit a comfortable
// distance apart at the current zoom. When there is room, each major
// interval is split into ten parts with a longer tick at the midpoint.
// Major ticks carry a number label on the side facing the map centre.
package ticks

import (
	"image/color"
	"math"

	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
	"github.com/matzehuels/cgmap/pkg/render/styles"
	"github.com/matzehuels/cgmap/pkg/render/view"
)

const (
	// majorGap is the target distance, in pixels along the ruler, between
	// major ticks at density 1.
	majorGap = 70.0
	// minorGap is the smallest distance between sub-ticks.
	minorGap = 4.0
	// labelGap separates a tick's inner end from its label.
	labelGap = 2.0

	minorScale = 0.4
	midScale   = 0.7
)

// Config holds ruler settings.
type Config struct {
	// Radius is where ticks start; they point toward the centre.
	Radius    float64
	Length    float64
	Thickness float64
	FontSize  float64
	Color     color.NRGBA
	// Density scales the number of major ticks; 0 means 1.
	Density float64
}

// Kind grades a tick.
type Kind int

const (
	Minor Kind = iota
	Mid
	Major
)

// Tick is one ruler mark.
type Tick struct {
	// Base is the sequence position the tick marks; 0 is the origin.
	Base  int
	Kind  Kind
	Angle float64
	// From is on the ruler radius, To at the tick's inner end.
	From, To geom.Point
	// Box bounds the tick line.
	Box geom.Rect

	// Label is empty when the tick is unlabelled.
	Label    string
	LabelBox geom.Rect
}

// Spacing returns the number of bases between major ticks.
func Spacing(st view.State, density float64) int {
	if density <= 0 {
		density = 1
	}
	pxPerBase := st.Radius * st.RadiansPerBase()
	if pxPerBase <= 0 || math.IsInf(pxPerBase, 0) {
		return max(st.N, 1)
	}
	want := majorGap / density / pxPerBase
	return nice(want)
}

// nice returns the smallest value of the 1, 2, 5 series not below v.
func nice(v float64) int {
	if v <= 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= v {
			return int(math.Round(m * mag))
		}
	}
	return int(math.Round(10 * mag))
}

// Generate lays out the ruler for st. measure sizes the number labels.
func Generate(st view.State, cfg Config, s canvas.Surface) []Tick {
	if st.N <= 0 || cfg.Radius <= 0 {
		return nil
	}
	major := Spacing(st, cfg.Density)
	step := major
	if major >= 10 && float64(major/10)*st.Radius*st.RadiansPerBase() >= minorGap {
		step = major / 10
	}

	var ticks []Tick
	seen := map[int]bool{}
	var lastLabel geom.Rect
	emit := func(pos int) {
		base := pos % st.N
		if seen[base] || !st.Drawable(float64(pos)) {
			return
		}
		seen[base] = true
		t := newTick(st, cfg, pos, base, major, step)
		if t.Kind == Major {
			text := styles.FormatBases(base)
			w, h := s.MeasureText(text, cfg.FontSize)
			box := labelBox(t.To, t.Angle, w, h)
			if lastLabel.Empty() || !box.Overlaps(lastLabel) {
				t.Label, t.LabelBox = text, box
				lastLabel = box
			}
		}
		ticks = append(ticks, t)
	}

	if st.Entire {
		for pos := 0; pos < st.N; pos += step {
			emit(pos)
		}
		return dropSeamClash(ticks)
	}
	for _, w := range []view.Window{st.One, st.Two} {
		if !w.Used() {
			continue
		}
		first := ((w.Start - 1 + step - 1) / step) * step
		for pos := first; pos <= w.Stop; pos += step {
			emit(pos)
		}
	}
	return ticks
}

func newTick(st view.State, cfg Config, pos, base, major, step int) Tick {
	kind := Minor
	switch {
	case base%major == 0:
		kind = Major
	case step*10 == major && base%(major/2) == 0:
		kind = Mid
	}
	length := cfg.Length
	switch kind {
	case Minor:
		length *= minorScale
	case Mid:
		length *= midScale
	}
	a := st.Angle(float64(pos))
	from := geom.Polar(st.Centre, cfg.Radius, a)
	to := geom.Polar(st.Centre, cfg.Radius-length, a)
	box := geom.Rect{
		Min: geom.Point{X: math.Min(from.X, to.X), Y: math.Min(from.Y, to.Y)},
		Max: geom.Point{X: math.Max(from.X, to.X), Y: math.Max(from.Y, to.Y)},
	}.Inset(max(cfg.Thickness, 1) / 2)
	return Tick{Base: base, Kind: kind, Angle: a, From: from, To: to, Box: box}
}

// labelBox places a w×h label just inside p, facing the centre.
func labelBox(p geom.Point, a, w, h float64) geom.Rect {
	q := geom.Point{X: p.X - labelGap*math.Cos(a), Y: p.Y - labelGap*math.Sin(a)}
	x := q.X - (math.Cos(a)+1)/2*w
	y := q.Y - (math.Sin(a)+1)/2*h
	return geom.RectXYWH(x, y, w, h)
}

// dropSeamClash removes the label of the last major tick when it collides
// with the origin label on a full circle.
func dropSeamClash(ticks []Tick) []Tick {
	if len(ticks) < 2 || ticks[0].Label == "" {
		return ticks
	}
	for i := len(ticks) - 1; i > 0; i-- {
		if ticks[i].Label == "" {
			continue
		}
		if ticks[i].LabelBox.Overlaps(ticks[0].LabelBox) {
			ticks[i].Label, ticks[i].LabelBox = "", geom.Rect{}
		}
		break
	}
	return ticks
}

// Reserved returns the label boxes of ts.
func Reserved(ts []Tick) []geom.Rect {
	var out []geom.Rect
	for _, t := range ts {
		if t.Label != "" {
			out = append(out, t.LabelBox)
		}
	}
	return out
}

// Draw strokes the ticks and their labels.
func Draw(s canvas.Surface, ts []Tick, cfg Config) {
	st := canvas.Stroke{Color: cfg.Color, Width: max(cfg.Thickness, 0.5), Cap: canvas.CapButt}
	for _, t := range ts {
		s.StrokeLine(t.From, t.To, st)
	}
	for _, t := range ts {
		if t.Label != "" {
			s.DrawText(t.Label, t.LabelBox.Min, cfg.FontSize, cfg.Color)
		}
	}
}
