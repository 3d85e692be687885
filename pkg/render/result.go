package render

import (
	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render/labels"
	"github.com/matzehuels/cgmap/pkg/render/ticks"
	"github.com/matzehuels/cgmap/pkg/render/view"
)

// BoundsKind says what drew a LabelBounds record.
type BoundsKind string

const (
	KindFeature BoundsKind = "feature"
	KindTick    BoundsKind = "tick"
	KindTitle   BoundsKind = "title"
	KindCaption BoundsKind = "caption"
	KindLegend  BoundsKind = "legend"
)

// LabelBounds is the pixel box of one drawn piece of text.
type LabelBounds struct {
	Kind      BoundsKind `json:"kind"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Text      string     `json:"text"`
	Hyperlink string     `json:"hyperlink,omitempty"`
	Mouseover string     `json:"mouseover,omitempty"`
	// Base is the sequence position of a ruler tick and nil for other kinds.
	Base *int `json:"base,omitempty"`
}

// Box returns the bounds as a rectangle.
func (b LabelBounds) Box() geom.Rect { return geom.RectXYWH(b.X, b.Y, b.Width, b.Height) }

func newBounds(kind BoundsKind, r geom.Rect, text string) LabelBounds {
	return LabelBounds{Kind: kind, X: r.Min.X, Y: r.Min.Y, Width: r.W(), Height: r.H(), Text: text}
}

// Result reports what a render call drew.
type Result struct {
	// Labels holds feature labels in draw order, then one record per ruler
	// tick, the title and caption, and legend entries. Unlabelled ticks
	// carry the box of the tick line and empty text.
	Labels []LabelBounds `json:"labels"`

	// Placed, Dropped and Total count feature labels.
	Placed  int `json:"placed"`
	Dropped int `json:"dropped"`
	Total   int `json:"total"`
	// Reused is set when labels were redrawn from the previous call.
	Reused bool `json:"reused,omitempty"`

	State view.State `json:"-"`
}

// FeatureLabels returns the feature label bounds only.
func (r *Result) FeatureLabels() []LabelBounds {
	var out []LabelBounds
	for _, b := range r.Labels {
		if b.Kind == KindFeature {
			out = append(out, b)
		}
	}
	return out
}

func collectBounds(placed []labels.Candidate, tks []ticks.Tick, titles []textBlock, legends []legendBox) []LabelBounds {
	var out []LabelBounds
	for _, c := range placed {
		b := newBounds(KindFeature, c.Box, c.Text)
		b.Hyperlink, b.Mouseover = c.Hyperlink, c.Mouseover
		out = append(out, b)
	}
	for _, t := range tks {
		box := t.Box
		if t.Label != "" {
			box = t.LabelBox
		}
		b := newBounds(KindTick, box, t.Label)
		base := t.Base
		b.Base = &base
		out = append(out, b)
	}
	for _, t := range titles {
		out = append(out, newBounds(t.kind, t.box, t.text))
	}
	for _, lb := range legends {
		for _, row := range lb.rows {
			b := newBounds(KindLegend, row.text, row.item.Text)
			b.Hyperlink, b.Mouseover = row.item.Hyperlink, row.item.Mouseover
			out = append(out, b)
		}
	}
	return out
}
