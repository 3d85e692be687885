package canvas

import (
	"image/color"

	"github.com/matzehuels/cgmap/pkg/geom"
)

// Op names a recorded drawing call.
type Op string

const (
	OpArc      Op = "arc"
	OpLine     Op = "line"
	OpPolygon  Op = "polygon"
	OpFillRect Op = "fill-rect"
	OpRect     Op = "rect"
	OpText     Op = "text"
	OpLink     Op = "link"
	OpEndLink  Op = "end-link"
)

// Call is one recorded drawing call. Only the fields relevant to Op are set.
type Call struct {
	Op     Op
	Center geom.Point
	Radius float64
	A0, A1 float64
	Points []geom.Point
	Rect   geom.Rect
	Stroke Stroke
	Color  color.NRGBA
	Text   string
	Size   float64
	Href   string
	Title  string
}

// Recorder is a Surface that records calls instead of drawing. Text is
// measured with a fixed advance of CharWidth·size per rune and a height of
// size.
type Recorder struct {
	W, H      float64
	CharWidth float64
	Calls     []Call
}

// NewRecorder returns a Recorder of the given size.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{W: w, H: h, CharWidth: 0.6}
}

func (r *Recorder) Size() (float64, float64) { return r.W, r.H }

func (r *Recorder) StrokeArc(c geom.Point, radius, a0, a1 float64, st Stroke) {
	r.Calls = append(r.Calls, Call{Op: OpArc, Center: c, Radius: radius, A0: a0, A1: a1, Stroke: st})
}

func (r *Recorder) StrokeLine(a, b geom.Point, st Stroke) {
	r.Calls = append(r.Calls, Call{Op: OpLine, Points: []geom.Point{a, b}, Stroke: st})
}

func (r *Recorder) FillPolygon(pts []geom.Point, fill color.NRGBA) {
	r.Calls = append(r.Calls, Call{Op: OpPolygon, Points: append([]geom.Point(nil), pts...), Color: fill})
}

func (r *Recorder) FillRect(rect geom.Rect, fill color.NRGBA) {
	r.Calls = append(r.Calls, Call{Op: OpFillRect, Rect: rect, Color: fill})
}

func (r *Recorder) StrokeRect(rect geom.Rect, st Stroke) {
	r.Calls = append(r.Calls, Call{Op: OpRect, Rect: rect, Stroke: st})
}

func (r *Recorder) MeasureText(text string, size float64) (float64, float64) {
	return float64(len([]rune(text))) * r.CharWidth * size, size
}

func (r *Recorder) DrawText(text string, p geom.Point, size float64, c color.NRGBA) {
	w, h := r.MeasureText(text, size)
	r.Calls = append(r.Calls, Call{Op: OpText, Text: text, Rect: geom.RectXYWH(p.X, p.Y, w, h), Size: size, Color: c})
}

func (r *Recorder) BeginLink(href, title string) {
	r.Calls = append(r.Calls, Call{Op: OpLink, Href: href, Title: title})
}

func (r *Recorder) EndLink() { r.Calls = append(r.Calls, Call{Op: OpEndLink}) }

// Filter returns the recorded calls with the given op.
func (r *Recorder) Filter(op Op) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the text of every recorded DrawText call.
func (r *Recorder) Texts() []string {
	var out []string
	for _, c := range r.Filter(OpText) {
		out = append(out, c.Text)
	}
	return out
}
