package view

import "math"

// Window is a 1-based, inclusive run of visible bases. The zero Window
// (Start == 0) marks an unused second window.
type Window struct {
	Start, Stop int
}

// Used reports whether w holds a range.
func (w Window) Used() bool { return w.Start != 0 }

// Contains reports whether the continuous position pos lies in w.
func (w Window) Contains(pos float64) bool {
	return w.Used() && pos >= float64(w.Start-1) && pos <= float64(w.Stop)
}

// ContainsBase reports whether base b lies in w.
func (w Window) ContainsBase(b int) bool {
	return w.Used() && b >= w.Start && b <= w.Stop
}

// Len returns the number of bases in w.
func (w Window) Len() int {
	if !w.Used() {
		return 0
	}
	return w.Stop - w.Start + 1
}

// Windows is the visible part of the sequence. When Entire is false, One
// and Two together form one contiguous circular run containing the centre
// base; Two is only used when that run crosses the origin.
type Windows struct {
	One, Two Window
	Entire   bool
}

// WindowID tags which window a clipped piece fell into.
type WindowID int

const (
	WindowAll WindowID = iota // whole sequence visible
	WindowOne
	WindowTwo
)

func (id WindowID) String() string {
	switch id {
	case WindowOne:
		return "one"
	case WindowTwo:
		return "two"
	}
	return "all"
}

// BaseIsDrawable reports whether base b is visible.
func (w Windows) BaseIsDrawable(b int) bool {
	return w.Entire || w.One.ContainsBase(b) || w.Two.ContainsBase(b)
}

// Drawable reports whether the continuous position pos is visible.
func (w Windows) Drawable(pos float64) bool {
	return w.Entire || w.One.Contains(pos) || w.Two.Contains(pos)
}

// Span returns the number of visible bases.
func (w Windows) Span(n int) int {
	if w.Entire {
		return n
	}
	return w.One.Len() + w.Two.Len()
}

// windowsAround converts a run of visible positions [c-back, c+fwd] into
// one or two windows on a sequence of length n.
func windowsAround(c, back, fwd float64, n int) Windows {
	nf := float64(n)
	if back+fwd >= nf {
		return Windows{Entire: true}
	}
	lo, hi := c-back, c+fwd
	var w Windows
	switch {
	case lo < 0:
		w = Windows{One: clampWindow(lo+nf, nf, n), Two: clampWindow(0, hi, n)}
	case hi > nf:
		w = Windows{One: clampWindow(lo, nf, n), Two: clampWindow(0, hi-nf, n)}
	default:
		return Windows{One: clampWindow(lo, hi, n)}
	}
	if w.One.Start <= w.Two.Stop {
		// Rounding out to whole bases closed the gap.
		return Windows{Entire: true}
	}
	return w
}

// clampWindow turns the continuous run [lo, hi] into the bases it touches.
func clampWindow(lo, hi float64, n int) Window {
	start := int(math.Floor(lo)) + 1
	stop := int(math.Ceil(hi))
	start = min(max(start, 1), n)
	stop = min(max(stop, start), n)
	return Window{Start: start, Stop: stop}
}
