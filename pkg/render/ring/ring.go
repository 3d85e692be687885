// Package ring draws feature ranges on their rings and collects the label
// candidates they produce.
//
// Every range goes through [clip.Clip] against the view's windows; the
// visible pieces are converted to angular spans, widened to the minimum
// drawable length, and drawn as a plain arc, an arrow, or (when the span is
// shorter than an arrowhead) a free-standing triangle.
package ring

import (
	"image/color"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
	"github.com/matzehuels/cgmap/pkg/render/clip"
	"github.com/matzehuels/cgmap/pkg/render/labels"
	"github.com/matzehuels/cgmap/pkg/render/styles"
	"github.com/matzehuels/cgmap/pkg/render/view"
	"github.com/matzehuels/cgmap/pkg/scene"
)

// Config holds the feature drawing settings.
type Config struct {
	// ArrowheadLength is the arc length of an arrowhead, in pixels.
	ArrowheadLength float64
	// MinFeatureLength is the shortest arc drawn, in pixels.
	MinFeatureLength float64
	// ShiftSmallFeatures centres widened features and small arrowheads on
	// the feature instead of starting them at its first base.
	ShiftSmallFeatures bool
	// ShadingProportion is the highlight and shadow band width as a
	// fraction of feature thickness; ShadingOpacity their opacity.
	ShadingProportion float64
	ShadingOpacity    float64
	// MaxLabelRunes shortens longer labels; 0 keeps them whole.
	MaxLabelRunes int
}

// DefaultConfig returns the standard feature drawing settings.
func DefaultConfig() Config {
	return Config{
		ArrowheadLength:    6,
		MinFeatureLength:   1,
		ShiftSmallFeatures: true,
		ShadingProportion:  0.15,
		ShadingOpacity:     0.5,
	}
}

// Renderer draws the rings of one map in one view.
type Renderer struct {
	Map    *scene.Map
	State  view.State
	Layout Layout
	Config Config
	Logger *log.Logger

	// Skip holds ranges that failed validation.
	Skip map[scene.RangeID]bool

	// OuterLabelRadius and InnerLabelRadius are where outer and inner
	// labels start.
	OuterLabelRadius float64
	InnerLabelRadius float64
}

// span is a drawable angular interval. first and last report whether it
// includes the range's true start and stop.
type span struct {
	a0, a1      float64
	first, last bool
}

// Draw draws every valid range and returns a label candidate for each
// visible, label-eligible one.
func (r *Renderer) Draw(s canvas.Surface) []labels.Candidate {
	logger := r.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	var (
		cands []labels.Candidate
		drawn int
	)
	r.Map.EachRange(func(id scene.RangeID, f *scene.Feature, rg *scene.Range) {
		if r.Skip[id] {
			return
		}
		ring := r.Map.Rings[f.Ring]
		band := r.Layout.Bands[f.Ring]
		segs := clip.Clip(clip.Interval{Start: rg.Start, Stop: rg.Stop}, r.State.Windows, r.State.N)
		if len(segs) == 0 {
			return
		}
		radius, thick := r.geometry(band, rg)
		if rg.Decoration != scene.Hidden {
			r.drawRange(s, ring, rg, segs, radius, thick)
			drawn++
		}
		if c, ok := r.candidate(s, id, ring, rg, segs, radius, thick); ok {
			cands = append(cands, c)
		}
	})
	logger.Debug("drew rings", "rings", len(r.Map.Rings), "ranges", drawn, "label_candidates", len(cands))
	return cands
}

// geometry returns the centre radius and thickness of a range, keeping the
// drawn shape inside its ring.
func (r *Renderer) geometry(band Band, rg *scene.Range) (radius, thick float64) {
	prop := rg.ProportionOfThickness
	if prop <= 0 || prop > 1 {
		prop = 1
	}
	thick = band.Thickness * prop
	adj := min(max(rg.RadiusAdjustment, -1), 1)
	radius = r.State.Radius + band.Offset + adj*(band.Thickness-thick)/2
	return radius, thick
}

func (r *Renderer) drawRange(s canvas.Surface, ring scene.Ring, rg *scene.Range, segs []clip.Segment, radius, thick float64) {
	fill := styles.WithOpacity(rg.Color, opacity(ring, rg))
	shaded := rg.ShadingFor(ring)
	if rg.Hyperlink != "" || rg.Mouseover != "" {
		s.BeginLink(rg.Hyperlink, rg.Mouseover)
		defer s.EndLink()
	}
	for _, sp := range r.spans(segs) {
		sp = r.inflate(sp, radius)
		switch rg.Decoration {
		case scene.Clockwise:
			r.arrow(s, sp, radius, thick, fill, shaded, true)
		case scene.Counterclockwise:
			r.arrow(s, sp, radius, thick, fill, shaded, false)
		default:
			r.arc(s, sp.a0, sp.a1, radius, thick, fill, shaded)
		}
	}
}

func opacity(ring scene.Ring, rg *scene.Range) float64 {
	switch {
	case rg.Opacity > 0:
		return rg.Opacity
	case ring.Opacity > 0:
		return ring.Opacity
	}
	return 1
}

// spans converts clipped segments to angular spans, joining pieces that
// meet at the origin.
func (r *Renderer) spans(segs []clip.Segment) []span {
	perBase := r.State.RadiansPerBase()
	out := make([]span, 0, len(segs))
	for i, seg := range segs {
		length := float64(seg.Len()) * perBase
		if i > 0 && segs[i-1].Stop == r.State.N && seg.Start == 1 {
			prev := &out[len(out)-1]
			prev.a1 += length
			prev.last = seg.Last
			continue
		}
		a0 := r.State.Angle(seg.From())
		out = append(out, span{a0: a0, a1: a0 + length, first: seg.First, last: seg.Last})
	}
	return out
}

// inflate widens sp to the minimum feature length.
func (r *Renderer) inflate(sp span, radius float64) span {
	minLen := r.Config.MinFeatureLength
	if radius <= 0 || minLen <= 0 || (sp.a1-sp.a0)*radius >= minLen {
		return sp
	}
	ext := minLen / radius
	if r.Config.ShiftSmallFeatures {
		mid := (sp.a0 + sp.a1) / 2
		sp.a0, sp.a1 = mid-ext/2, mid+ext/2
	} else {
		sp.a1 = sp.a0 + ext
	}
	return sp
}

func (r *Renderer) arc(s canvas.Surface, a0, a1, radius, thick float64, fill color.NRGBA, shaded bool) {
	s.StrokeArc(r.State.Centre, radius, a0, a1, canvas.Stroke{Color: fill, Width: thick, Cap: canvas.CapButt})
	if shaded {
		r.shade(s, a0, a1, radius, thick, fill)
	}
}

// shade restrokes a lighter band along the outer edge and a darker one
// along the inner edge.
func (r *Renderer) shade(s canvas.Surface, a0, a1, radius, thick float64, fill color.NRGBA) {
	w := r.Config.ShadingProportion * thick
	if w <= 0 {
		return
	}
	op := r.Config.ShadingOpacity
	s.StrokeArc(r.State.Centre, radius+thick/2-w/2, a0, a1,
		canvas.Stroke{Color: styles.WithOpacity(styles.Highlight(fill), op), Width: w, Cap: canvas.CapButt})
	s.StrokeArc(r.State.Centre, radius-thick/2+w/2, a0, a1,
		canvas.Stroke{Color: styles.WithOpacity(styles.Shadow(fill), op), Width: w, Cap: canvas.CapButt})
}

// arrow draws sp with a head at its stop (clockwise) or start. A span that
// does not reach the true end it points at has no head.
func (r *Renderer) arrow(s canvas.Surface, sp span, radius, thick float64, fill color.NRGBA, shaded, clockwise bool) {
	if radius <= 0 {
		return
	}
	head := r.Config.ArrowheadLength / radius
	if head <= 0 || (clockwise && !sp.last) || (!clockwise && !sp.first) {
		r.arc(s, sp.a0, sp.a1, radius, thick, fill, shaded)
		return
	}
	c := r.State.Centre
	rIn, rOut := radius-thick/2, radius+thick/2

	if sp.a1-sp.a0 < head {
		lo := sp.a0
		if r.Config.ShiftSmallFeatures {
			lo = (sp.a0+sp.a1)/2 - head/2
		}
		s.FillPolygon(triangle(c, rIn, rOut, radius, lo, lo+head, clockwise), fill)
		return
	}

	// The body runs from the tail to the neck; the band outline reaches
	// the tip between its outer and inner arcs.
	tail, neck, tip := sp.a0, sp.a1-head, sp.a1
	if !clockwise {
		tail, neck, tip = sp.a1, sp.a0+head, sp.a0
	}
	s.FillPolygon(canvas.Band(c, rIn, rOut, tail, neck, geom.Polar(c, radius, tip)), fill)
	if shaded {
		r.shade(s, min(tail, neck), max(tail, neck), radius, thick, fill)
	}
}

// triangle is an arrowhead with no body between angles lo and hi.
func triangle(c geom.Point, rIn, rOut, radius, lo, hi float64, clockwise bool) []geom.Point {
	if clockwise {
		return []geom.Point{geom.Polar(c, rOut, lo), geom.Polar(c, radius, hi), geom.Polar(c, rIn, lo)}
	}
	return []geom.Point{geom.Polar(c, radius, lo), geom.Polar(c, rOut, hi), geom.Polar(c, rIn, hi)}
}

func (r *Renderer) candidate(s canvas.Surface, id scene.RangeID, ring scene.Ring, rg *scene.Range, segs []clip.Segment, radius, thick float64) (labels.Candidate, bool) {
	st := r.Map.Style
	if rg.Label == "" || !(rg.ForceLabel || (ring.ShowLabels && st.ShowLabels)) {
		return labels.Candidate{}, false
	}
	pos, ok := clip.Anchor(clip.Interval{Start: rg.Start, Stop: rg.Stop}, segs, r.State.N)
	if !ok {
		return labels.Candidate{}, false
	}
	size := rg.FontSize
	if size <= 0 {
		size = st.LabelFontSize
	}
	textColor := rg.LabelColor
	if textColor.A == 0 {
		textColor = st.TextColor
	}
	text, mouseover := rg.Label, rg.Mouseover
	if r.Config.MaxLabelRunes > 0 {
		text = styles.Truncate(rg.Label, r.Config.MaxLabelRunes)
		if text != rg.Label && mouseover == "" {
			mouseover = rg.Label
		}
	}
	w, h := s.MeasureText(text, size)
	c := labels.Candidate{
		ID:           id,
		Text:         text,
		Anchor:       r.State.Angle(pos),
		Side:         labels.Outer,
		AnchorRadius: radius + thick/2,
		Radius:       r.OuterLabelRadius,
		W:            w,
		H:            h,
		Forced:       rg.ForceLabel,
		FontSize:     size,
		Color:        textColor,
		Hyperlink:    rg.Hyperlink,
		Mouseover:    mouseover,
	}
	if ring.Strand == scene.Reverse {
		c.Side = labels.Inner
		c.AnchorRadius = radius - thick/2
		c.Radius = r.InnerLabelRadius
	}
	c.Angle = c.Anchor
	return c, true
}
