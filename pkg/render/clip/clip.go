// Package clip intersects circular base intervals with the visible
// windows of a view. Feature drawing and label anchoring both go through
// [Clip], so a range is split the same way wherever it is used.
package clip

import (
	"github.com/matzehuels/cgmap/pkg/render/view"
)

// Interval is a 1-based inclusive run of bases. Start > Stop wraps through
// the origin.
type Interval struct {
	Start, Stop int
}

// Wraps reports whether iv runs through the origin.
func (iv Interval) Wraps() bool { return iv.Start > iv.Stop }

// Segment is a visible, non-wrapping piece of an interval.
type Segment struct {
	Start, Stop int
	Window      view.WindowID
	// First and Last report whether the piece keeps the interval's true
	// start or stop; arrowheads and "start" anchoring depend on them.
	First, Last bool
}

// Len returns the number of bases in s.
func (s Segment) Len() int { return s.Stop - s.Start + 1 }

// From and To return the continuous positions bounding s.
func (s Segment) From() float64 { return float64(s.Start - 1) }
func (s Segment) To() float64   { return float64(s.Stop) }

// Clip returns the visible pieces of iv on a sequence of length n, in
// sequence order starting from iv.Start. An interval that wraps the origin
// always yields separate pieces on either side of it, even when the whole
// sequence is visible.
func Clip(iv Interval, w view.Windows, n int) []Segment {
	pieces := split(iv, n)
	var out []Segment
	for i, p := range pieces {
		first := i == 0
		last := i == len(pieces)-1
		if w.Entire {
			out = append(out, Segment{Start: p.Start, Stop: p.Stop, Window: view.WindowAll, First: first, Last: last})
			continue
		}
		// Visit the windows in the order a wrapping run meets them so the
		// output stays in sequence order.
		for _, win := range orderedWindows(w, p) {
			lo, hi := max(p.Start, win.w.Start), min(p.Stop, win.w.Stop)
			if lo > hi {
				continue
			}
			out = append(out, Segment{
				Start:  lo,
				Stop:   hi,
				Window: win.id,
				First:  first && lo == p.Start,
				Last:   last && hi == p.Stop,
			})
		}
	}
	return out
}

// split breaks iv at the origin.
func split(iv Interval, n int) []Interval {
	if n <= 0 {
		return nil
	}
	start := min(max(iv.Start, 1), n)
	stop := min(max(iv.Stop, 1), n)
	if start <= stop {
		return []Interval{{start, stop}}
	}
	return []Interval{{start, n}, {1, stop}}
}

type taggedWindow struct {
	w  view.Window
	id view.WindowID
}

// orderedWindows returns the used windows ordered by where they meet p.
func orderedWindows(w view.Windows, p Interval) []taggedWindow {
	out := make([]taggedWindow, 0, 2)
	if w.One.Used() {
		out = append(out, taggedWindow{w.One, view.WindowOne})
	}
	if w.Two.Used() {
		out = append(out, taggedWindow{w.Two, view.WindowTwo})
	}
	if len(out) == 2 && out[1].w.Start < out[0].w.Start {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

// Visible reports whether any part of iv is visible.
func Visible(iv Interval, w view.Windows, n int) bool {
	return len(Clip(iv, w, n)) > 0
}

// Longest returns the index of the longest segment, or -1 for none.
func Longest(segs []Segment) int {
	best := -1
	for i, s := range segs {
		if best < 0 || s.Len() > segs[best].Len() {
			best = i
		}
	}
	return best
}

// Anchor picks the continuous position a label for iv should point at:
// the interval's midpoint when it is visible, otherwise the middle of the
// longest visible segment. ok is false when nothing is visible.
func Anchor(iv Interval, segs []Segment, n int) (pos float64, ok bool) {
	if len(segs) == 0 {
		return 0, false
	}
	mid := midpoint(iv, n)
	for _, s := range segs {
		if mid >= s.From() && mid <= s.To() {
			return mid, true
		}
	}
	s := segs[Longest(segs)]
	return (s.From() + s.To()) / 2, true
}

func midpoint(iv Interval, n int) float64 {
	length := iv.Stop - iv.Start + 1
	if iv.Wraps() {
		length += n
	}
	mid := float64(iv.Start-1) + float64(length)/2
	if mid > float64(n) {
		mid -= float64(n)
	}
	return mid
}
