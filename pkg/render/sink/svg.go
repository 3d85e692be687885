package sink

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo/float"

	"github.com/matzehuels/cgmap/pkg/fonts"
	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
	"github.com/matzehuels/cgmap/pkg/render/styles"
)

// SVGOption configures an SVGSurface.
type SVGOption func(*SVGSurface)

// WithSVGTitle sets the document <title>.
func WithSVGTitle(t string) SVGOption { return func(s *SVGSurface) { s.title = t } }

// WithDecimals sets the number of decimals written for coordinates.
func WithDecimals(d int) SVGOption { return func(s *SVGSurface) { s.decimals = d } }

// SVGSurface writes drawing calls as SVG elements. Call End once drawing
// is done.
type SVGSurface struct {
	canvas   *svg.SVG
	w, h     float64
	title    string
	decimals int
	// open records, innermost last, whether each open link is an <a>
	// (true) or a mouseover-only <g> (false).
	open []bool
}

// NewSVGSurface starts an SVG document of the given size on w.
func NewSVGSurface(w io.Writer, width, height float64, opts ...SVGOption) *SVGSurface {
	s := &SVGSurface{canvas: svg.New(w), w: width, h: height, decimals: 2}
	for _, opt := range opts {
		opt(s)
	}
	s.canvas.Decimals = s.decimals
	s.canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %s %s"`, s.num(width), s.num(height)))
	if s.title != "" {
		s.canvas.Title(s.title)
	}
	return s
}

// End closes any open links and the document.
func (s *SVGSurface) End() {
	for len(s.open) > 0 {
		s.EndLink()
	}
	s.canvas.End()
}

func (s *SVGSurface) Size() (float64, float64) { return s.w, s.h }

func (s *SVGSurface) StrokeArc(c geom.Point, r, a0, a1 float64, st canvas.Stroke) {
	if r <= 0 || a1 <= a0 {
		return
	}
	if a1-a0 >= 2*math.Pi-1e-9 {
		s.canvas.Circle(c.X, c.Y, r, s.strokeAttrs(st)...)
		return
	}
	p0, p1 := geom.Polar(c, r, a0), geom.Polar(c, r, a1)
	large := 0
	if a1-a0 > math.Pi {
		large = 1
	}
	d := fmt.Sprintf("M%s %s A%s %s 0 %d 1 %s %s",
		s.num(p0.X), s.num(p0.Y), s.num(r), s.num(r), large, s.num(p1.X), s.num(p1.Y))
	s.canvas.Path(d, s.strokeAttrs(st)...)
}

func (s *SVGSurface) StrokeLine(a, b geom.Point, st canvas.Stroke) {
	s.canvas.Line(a.X, a.Y, b.X, b.Y, s.strokeAttrs(st)...)
}

func (s *SVGSurface) FillPolygon(pts []geom.Point, fill color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	s.canvas.Polygon(xs, ys, fillAttrs(fill)...)
}

func (s *SVGSurface) FillRect(r geom.Rect, fill color.NRGBA) {
	if fill.A == 0 || r.Empty() {
		return
	}
	s.canvas.Rect(r.Min.X, r.Min.Y, r.W(), r.H(), fillAttrs(fill)...)
}

func (s *SVGSurface) StrokeRect(r geom.Rect, st canvas.Stroke) {
	s.canvas.Rect(r.Min.X, r.Min.Y, r.W(), r.H(), s.strokeAttrs(st)...)
}

func (s *SVGSurface) MeasureText(text string, size float64) (float64, float64) {
	w, m := fonts.Measure(text, size)
	return w, m.Height()
}

// DrawText places the baseline one ascent below p.
func (s *SVGSurface) DrawText(text string, p geom.Point, size float64, c color.NRGBA) {
	_, m := fonts.Measure(text, size)
	attrs := []string{
		fmt.Sprintf(`font-family="%s"`, fonts.FontFamily),
		fmt.Sprintf(`font-size="%s"`, s.num(size)),
	}
	attrs = append(attrs, fillAttrs(c)...)
	s.canvas.Text(p.X, p.Y+m.Ascent, text, attrs...)
}

// BeginLink opens an <a> for href, or a <g> when there is only mouseover
// text. The title becomes a <title> child.
func (s *SVGSurface) BeginLink(href, title string) {
	if href != "" {
		s.canvas.Link(styles.EscapeXML(href), title)
	} else {
		s.canvas.Group(`class="mouseover"`)
	}
	s.open = append(s.open, href != "")
	if title != "" {
		s.canvas.Title(title)
	}
}

func (s *SVGSurface) EndLink() {
	if len(s.open) == 0 {
		return
	}
	anchor := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	if anchor {
		s.canvas.LinkEnd()
	} else {
		s.canvas.Gend()
	}
}

func (s *SVGSurface) num(v float64) string {
	return strconv.FormatFloat(v, 'f', s.decimals, 64)
}

func (s *SVGSurface) strokeAttrs(st canvas.Stroke) []string {
	attrs := []string{
		`fill="none"`,
		fmt.Sprintf(`stroke="%s"`, styles.Hex(st.Color)),
		fmt.Sprintf(`stroke-width="%s"`, s.num(st.Width)),
		fmt.Sprintf(`stroke-linecap="%s"`, capName(st.Cap)),
	}
	if st.Color.A < 255 {
		attrs = append(attrs, fmt.Sprintf(`stroke-opacity="%.3f"`, styles.Opacity(st.Color)))
	}
	return attrs
}

func fillAttrs(c color.NRGBA) []string {
	attrs := []string{fmt.Sprintf(`fill="%s"`, styles.Hex(c))}
	if c.A < 255 {
		attrs = append(attrs, fmt.Sprintf(`fill-opacity="%.3f"`, styles.Opacity(c)))
	}
	return attrs
}

func capName(c canvas.Cap) string {
	switch c {
	case canvas.CapRound:
		return "round"
	case canvas.CapSquare:
		return "square"
	}
	return "butt"
}
