package render

import (
	"io"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
	"github.com/matzehuels/cgmap/pkg/render/labels"
	"github.com/matzehuels/cgmap/pkg/render/ring"
	"github.com/matzehuels/cgmap/pkg/render/ticks"
	"github.com/matzehuels/cgmap/pkg/render/view"
	"github.com/matzehuels/cgmap/pkg/scene"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConfig replaces the renderer settings.
func WithConfig(c Config) Option { return func(r *Renderer) { r.cfg = c } }

// ViewOptions switches parts of a single render off.
type ViewOptions struct {
	// BackboneRadius overrides the map style when positive.
	BackboneRadius float64

	HideLabels  bool
	HideRuler   bool
	HideLegends bool
	HideTitle   bool
}

// Renderer draws one map. It is safe for concurrent use; calls are
// serialised only around the last-labels cache.
type Renderer struct {
	m      *scene.Map
	cfg    Config
	logger *log.Logger

	mu   sync.Mutex
	last map[scene.RangeID]savedLabel
}

// savedLabel is a placed label relative to its anchor.
type savedLabel struct {
	side        labels.Side
	angleOffset float64
	radiusShift float64
}

// New returns a renderer for m.
func New(m *scene.Map, opts ...Option) *Renderer {
	r := &Renderer{
		m:      m,
		cfg:    DefaultConfig(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cfg = r.cfg.withDefaults()
	return r
}

// Map returns the rendered scene.
func (r *Renderer) Map() *scene.Map { return r.m }

// Config returns the effective settings.
func (r *Renderer) Config() Config { return r.cfg }

// RenderFull draws the whole map.
func (r *Renderer) RenderFull(s canvas.Surface, vo ViewOptions) *Result {
	return r.render(s, 1, 0, vo, false)
}

// RenderZoomed draws the map magnified by zoom around base center. With
// reuse set, the labels placed by the previous call are redrawn at the
// same offsets instead of being laid out again; labels for features that
// had none last time are left out.
func (r *Renderer) RenderZoomed(s canvas.Surface, zoom float64, center int, vo ViewOptions, reuse bool) *Result {
	return r.render(s, zoom, center, vo, reuse)
}

func (r *Renderer) render(s canvas.Surface, zoom float64, center int, vo ViewOptions, reuse bool) *Result {
	start := time.Now()
	m := r.m
	w, h := s.Size()
	res := &Result{}
	if m == nil || w <= 0 || h <= 0 || m.SequenceLength <= 0 {
		r.logger.Warn("nothing to render", "width", w, "height", h)
		return res
	}
	style := m.Style
	canvasRect := geom.RectXYWH(0, 0, w, h)

	skip := r.invalidRanges()
	layout := ring.NewLayout(m)

	tickCfg := ticks.Config{
		Length:    style.TickLength,
		Thickness: style.TickThickness,
		FontSize:  style.RulerFontSize,
		Color:     style.RulerColor,
		Density:   r.cfg.TickDensity,
	}
	showRuler := style.ShowRuler && !vo.HideRuler
	inward := layout.Inward
	if showRuler {
		inward += rulerInset + rulerExtent(s, tickCfg)
	}

	st := view.NewState(view.Request{
		SequenceLength: m.SequenceLength,
		OriginDegrees:  m.OriginDegrees,
		Zoom:           zoom,
		Center:         center,
		Canvas:         canvasRect,
		BackboneRadius: r.backboneRadius(vo, w, h),
		InnerOffset:    inward,
		OuterOffset:    layout.Outward,
	})
	res.State = st

	s.FillRect(canvasRect, style.Background)
	drawBackbone(s, st, style, m.Linear)

	showLabels := !vo.HideLabels
	rr := ring.Renderer{
		Map:              m,
		State:            st,
		Layout:           layout,
		Config:           r.cfg.ring(),
		Logger:           r.logger,
		Skip:             skip,
		OuterLabelRadius: st.OuterRadius() + r.cfg.LabelGap,
		InnerLabelRadius: max(st.InnerRadius()-r.cfg.LabelGap, 0),
	}
	cands := rr.Draw(s)

	var tks []ticks.Tick
	if showRuler {
		tickCfg.Radius = st.Radius - layout.Inward - rulerInset
		tks = ticks.Generate(st, tickCfg, s)
	}

	titles := titleBlocks(s, m, st, vo)
	var legends []legendBox
	if !vo.HideLegends {
		legends = layoutLegends(s, m, canvasRect)
	}

	var placed []labels.Candidate
	if showLabels && len(cands) > 0 {
		g := labels.Geometry{
			Centre:      st.Centre,
			Canvas:      canvasRect,
			OuterEdge:   st.OuterRadius(),
			InnerEdge:   st.InnerRadius(),
			OuterRadius: rr.OuterLabelRadius,
			Reserved:    reserved(titles, legends, tks),
			Seam:        st.Angle(0),
		}
		if st.Zoomed() {
			g.Seam = st.CenterAngle + math.Pi
		}
		if reuse {
			placed = r.reuse(cands, st)
			res.Reused = true
		} else {
			lr := labels.NewEngine(r.cfg.labels(), r.logger).Layout(cands, g)
			placed = lr.Placed
			r.save(placed, st)
		}
		res.Total = len(cands)
		res.Placed = len(placed)
		res.Dropped = res.Total - res.Placed
		drawLabels(s, placed, st.Centre, style)
	}

	if showRuler {
		ticks.Draw(s, tks, tickCfg)
	}
	for _, b := range titles {
		drawText(s, b, style)
	}
	for _, lb := range legends {
		drawLegend(s, lb, style)
	}
	if style.ShowBorder {
		s.StrokeRect(canvasRect.Inset(-0.5), canvas.Stroke{Color: style.BorderColor, Width: 1})
	}

	res.Labels = collectBounds(placed, tks, titles, legends)
	r.logger.Debug("rendered map",
		"zoom", st.Zoom, "virtual_zoom", st.VirtualZoom, "center", st.Center,
		"labels", res.Placed, "dropped", res.Dropped, "reused", res.Reused,
		"elapsed", time.Since(start))
	return res
}

// invalidRanges validates every range and returns those to skip.
func (r *Renderer) invalidRanges() map[scene.RangeID]bool {
	skip := map[scene.RangeID]bool{}
	r.m.EachRange(func(id scene.RangeID, _ *scene.Feature, _ *scene.Range) {
		if err := r.m.ValidateRange(id); err != nil {
			r.logger.Warn("skipping range", "range", id, "err", err)
			skip[id] = true
		}
	})
	return skip
}

// backboneRadius clamps the requested radius to the canvas.
func (r *Renderer) backboneRadius(vo ViewOptions, w, h float64) float64 {
	want := r.m.Style.BackboneRadius
	if vo.BackboneRadius > 0 {
		want = vo.BackboneRadius
	}
	side := min(w, h)
	got := min(max(want, side*minRadiusFrac), side*maxRadiusFrac)
	if got != want {
		r.logger.Info("adjusted backbone radius", "requested", want, "radius", got)
	}
	return got
}

// rulerExtent is the radial depth of the ruler including its labels.
func rulerExtent(s canvas.Surface, cfg ticks.Config) float64 {
	w, h := s.MeasureText("000000", cfg.FontSize)
	return cfg.Length + 2 + max(w, h)
}

func reserved(titles []textBlock, legends []legendBox, tks []ticks.Tick) []geom.Rect {
	var out []geom.Rect
	for _, b := range titles {
		out = append(out, b.box)
	}
	for _, lb := range legends {
		if !lb.legend.AllowLabelClash {
			out = append(out, lb.box)
		}
	}
	return append(out, ticks.Reserved(tks)...)
}

func drawLabels(s canvas.Surface, placed []labels.Candidate, centre geom.Point, style scene.Style) {
	line := canvas.Stroke{Color: style.LabelLineColor, Width: style.LabelLineThickness, Cap: canvas.CapRound}
	for i := range placed {
		c := &placed[i]
		linked := c.Hyperlink != "" || c.Mouseover != ""
		if linked {
			s.BeginLink(c.Hyperlink, c.Mouseover)
		}
		if style.LabelLineThickness > 0 {
			s.StrokeLine(c.AnchorPoint(centre), c.Point(centre), line)
		}
		s.DrawText(c.Text, c.Box.Min, c.FontSize, c.Color)
		if linked {
			s.EndLink()
		}
	}
}

// save records placed labels relative to their anchors and base radii.
func (r *Renderer) save(placed []labels.Candidate, st view.State) {
	last := make(map[scene.RangeID]savedLabel, len(placed))
	for _, c := range placed {
		last[c.ID] = savedLabel{
			side:        c.Side,
			angleOffset: c.Angle - c.Anchor,
			radiusShift: c.Radius - r.baseRadius(c.Side, st),
		}
	}
	r.mu.Lock()
	r.last = last
	r.mu.Unlock()
}

// reuse places cands from the saved layout. Without a saved layout every
// candidate goes back to its anchor unadjusted.
func (r *Renderer) reuse(cands []labels.Candidate, st view.State) []labels.Candidate {
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()

	out := make([]labels.Candidate, 0, len(cands))
	for _, c := range cands {
		if last != nil {
			sl, ok := last[c.ID]
			if !ok {
				continue
			}
			c.Side = sl.side
			c.Angle = c.Anchor + sl.angleOffset
			c.Radius = r.baseRadius(sl.side, st) + sl.radiusShift
		}
		c.Place(st.Centre)
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b labels.Candidate) int {
		switch {
		case a.Forced == b.Forced:
			return 0
		case b.Forced:
			return -1
		}
		return 1
	})
	r.logger.Debug("reused labels", "saved", len(last), "placed", len(out))
	return out
}

func (r *Renderer) baseRadius(side labels.Side, st view.State) float64 {
	if side == labels.Inner {
		return max(st.InnerRadius()-r.cfg.LabelGap, 0)
	}
	return st.OuterRadius() + r.cfg.LabelGap
}
