package sink

import (
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/cgmap/pkg/fonts"
	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
)

// DefaultScale is the PNG pixel density relative to map units.
const DefaultScale = 2.0

// PNGOption configures a PNGSurface.
type PNGOption func(*PNGSurface)

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(scale float64) PNGOption {
	return func(s *PNGSurface) {
		if scale > 0 {
			s.scale = scale
		}
	}
}

// PNGSurface rasterises drawing calls. Links are ignored.
type PNGSurface struct {
	dc    *gg.Context
	w, h  float64
	scale float64
	faces map[float64]font.Face
}

// NewPNGSurface returns a surface of the given size in map units.
func NewPNGSurface(width, height float64, opts ...PNGOption) *PNGSurface {
	s := &PNGSurface{w: width, h: height, scale: DefaultScale, faces: map[float64]font.Face{}}
	for _, opt := range opts {
		opt(s)
	}
	px := func(v float64) int { return max(int(math.Ceil(v*s.scale)), 1) }
	s.dc = gg.NewContext(px(width), px(height))
	s.dc.Scale(s.scale, s.scale)
	return s
}

// EncodePNG writes the image.
func (s *PNGSurface) EncodePNG(w io.Writer) error { return s.dc.EncodePNG(w) }

func (s *PNGSurface) Size() (float64, float64) { return s.w, s.h }

func (s *PNGSurface) StrokeArc(c geom.Point, r, a0, a1 float64, st canvas.Stroke) {
	if r <= 0 || a1 <= a0 {
		return
	}
	s.dc.NewSubPath()
	s.dc.DrawArc(c.X, c.Y, r, a0, a1)
	s.stroke(st)
}

func (s *PNGSurface) StrokeLine(a, b geom.Point, st canvas.Stroke) {
	s.dc.NewSubPath()
	s.dc.MoveTo(a.X, a.Y)
	s.dc.LineTo(b.X, b.Y)
	s.stroke(st)
}

func (s *PNGSurface) FillPolygon(pts []geom.Point, fill color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	s.dc.NewSubPath()
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	s.dc.ClosePath()
	s.dc.SetColor(fill)
	s.dc.Fill()
}

func (s *PNGSurface) FillRect(r geom.Rect, fill color.NRGBA) {
	if fill.A == 0 || r.Empty() {
		return
	}
	s.dc.DrawRectangle(r.Min.X, r.Min.Y, r.W(), r.H())
	s.dc.SetColor(fill)
	s.dc.Fill()
}

func (s *PNGSurface) StrokeRect(r geom.Rect, st canvas.Stroke) {
	s.dc.DrawRectangle(r.Min.X, r.Min.Y, r.W(), r.H())
	s.stroke(st)
}

func (s *PNGSurface) MeasureText(text string, size float64) (float64, float64) {
	w, m := fonts.Measure(text, size)
	return w, m.Height()
}

// DrawText sets text in device space so glyphs are rasterised at the
// scaled size rather than stretched.
func (s *PNGSurface) DrawText(text string, p geom.Point, size float64, c color.NRGBA) {
	face, err := s.face(size * s.scale)
	if err != nil {
		return
	}
	_, m := fonts.Measure(text, size)
	s.dc.Push()
	s.dc.Identity()
	s.dc.SetFontFace(face)
	s.dc.SetColor(c)
	s.dc.DrawString(text, p.X*s.scale, (p.Y+m.Ascent)*s.scale)
	s.dc.Pop()
}

func (s *PNGSurface) BeginLink(string, string) {}
func (s *PNGSurface) EndLink()                 {}

func (s *PNGSurface) face(size float64) (font.Face, error) {
	if f, ok := s.faces[size]; ok {
		return f, nil
	}
	f, err := fonts.NewFace(size)
	if err != nil {
		return nil, err
	}
	s.faces[size] = f
	return f, nil
}

func (s *PNGSurface) stroke(st canvas.Stroke) {
	s.dc.SetColor(st.Color)
	// Line width is in device pixels; the path itself is transformed.
	s.dc.SetLineWidth(st.Width * s.scale)
	switch st.Cap {
	case canvas.CapRound:
		s.dc.SetLineCapRound()
	case canvas.CapSquare:
		s.dc.SetLineCapSquare()
	default:
		s.dc.SetLineCapButt()
	}
	s.dc.Stroke()
}
