package scene

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/matzehuels/cgmap/pkg/errors"
)

// Strand selects which side of the backbone a ring sits on.
type Strand int

const (
	// Forward rings stack outward from the backbone; their labels go outside.
	Forward Strand = iota
	// Reverse rings stack inward from the backbone; their labels go inside.
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "reverse"
	}
	return "forward"
}

// ParseStrand converts "forward"/"reverse" (or "+"/"-") to a Strand.
func ParseStrand(s string) (Strand, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward", "+", "direct":
		return Forward, nil
	case "reverse", "-":
		return Reverse, nil
	}
	return Forward, errors.New(errors.ErrCodeInvalidScene, "unknown strand %q", s)
}

// Decoration selects how a range is drawn.
type Decoration int

const (
	Standard Decoration = iota
	Clockwise
	Counterclockwise
	Hidden
)

var decorationNames = map[Decoration]string{
	Standard:         "arc",
	Clockwise:        "clockwise-arrow",
	Counterclockwise: "counterclockwise-arrow",
	Hidden:           "hidden",
}

func (d Decoration) String() string {
	if s, ok := decorationNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Decoration(%d)", int(d))
}

// ParseDecoration accepts the names produced by Decoration.String.
func ParseDecoration(s string) (Decoration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "standard" {
		return Standard, nil
	}
	for d, name := range decorationNames {
		if name == s {
			return d, nil
		}
	}
	return Standard, errors.New(errors.ErrCodeInvalidScene, "unknown decoration %q", s)
}

// Map is a complete, resolved scene.
type Map struct {
	Title          string
	SequenceLength int
	Linear         bool
	// OriginDegrees rotates base 0 away from the 3 o'clock reference
	// direction; 90 puts the origin at 12 o'clock.
	OriginDegrees float64

	Rings    []Ring
	Features []Feature
	Legends  []Legend
	Style    Style
}

// Style holds map-wide visual settings.
type Style struct {
	BackboneRadius    float64
	BackboneThickness float64
	BackboneColor     color.NRGBA
	Background        color.NRGBA
	TextColor         color.NRGBA
	RulerColor        color.NRGBA
	LabelLineColor    color.NRGBA

	LabelFontSize  float64
	RulerFontSize  float64
	TitleFontSize  float64
	LegendFontSize float64

	LabelLineThickness float64
	TickThickness      float64
	TickLength         float64

	ShowTitle   bool
	ShowLength  bool
	ShowRuler   bool
	ShowLabels  bool
	ShowBorder  bool
	BorderColor color.NRGBA
}

// DefaultStyle returns the settings used when a loader leaves fields unset.
func DefaultStyle() Style {
	black := color.NRGBA{0, 0, 0, 255}
	return Style{
		BackboneRadius:     190,
		BackboneThickness:  5,
		BackboneColor:      color.NRGBA{128, 128, 128, 255},
		Background:         color.NRGBA{255, 255, 255, 255},
		TextColor:          black,
		RulerColor:         black,
		LabelLineColor:     color.NRGBA{64, 64, 64, 255},
		LabelFontSize:      10,
		RulerFontSize:      8,
		TitleFontSize:      16,
		LegendFontSize:     10,
		LabelLineThickness: 1,
		TickThickness:      1,
		TickLength:         6,
		ShowTitle:          true,
		ShowLength:         true,
		ShowRuler:          true,
		ShowLabels:         true,
		BorderColor:        black,
	}
}

// Ring is a concentric lane of same-strand features.
type Ring struct {
	Strand     Strand
	Thickness  float64
	Spacing    float64 // gap between this ring and the previous one on its side
	Shading    bool
	Opacity    float64
	ShowLabels bool
}

// Feature groups ranges drawn on one ring.
type Feature struct {
	Ring   int
	Name   string
	Ranges []Range
}

// Range is one drawn span of a feature.
type Range struct {
	Start, Stop int
	Decoration  Decoration
	Color       color.NRGBA
	Opacity     float64
	// Shading overrides the ring default when set.
	Shading *bool
	// ProportionOfThickness shrinks the drawn thickness; (0, 1].
	ProportionOfThickness float64
	// RadiusAdjustment moves a thinned range inside its ring; -1 is the
	// inner edge, 1 the outer edge.
	RadiusAdjustment float64

	Label      string
	LabelColor color.NRGBA
	FontSize   float64
	ForceLabel bool
	Hyperlink  string
	Mouseover  string
}

// RangeID addresses a range inside a Map.
type RangeID struct {
	Feature int
	Range   int
}

func (id RangeID) String() string { return fmt.Sprintf("f%d.r%d", id.Feature, id.Range) }

// Wraps reports whether r runs through the origin.
func (r Range) Wraps() bool { return r.Start > r.Stop }

// Length returns the number of bases covered by r on a sequence of length n.
func (r Range) Length(n int) int {
	if r.Wraps() {
		return n - r.Start + 1 + r.Stop
	}
	return r.Stop - r.Start + 1
}

// Midpoint returns the continuous position halfway along r, in [0, n).
func (r Range) Midpoint(n int) float64 {
	mid := float64(r.Start-1) + float64(r.Length(n))/2
	if mid >= float64(n) {
		mid -= float64(n)
	}
	return mid
}

// ShadingFor resolves the range's shading flag against its ring default.
func (r Range) ShadingFor(ring Ring) bool {
	if r.Shading != nil {
		return *r.Shading
	}
	return ring.Shading
}

// Range returns the range addressed by id, or false when id is out of bounds.
func (m *Map) Range(id RangeID) (*Range, bool) {
	if id.Feature < 0 || id.Feature >= len(m.Features) {
		return nil, false
	}
	f := &m.Features[id.Feature]
	if id.Range < 0 || id.Range >= len(f.Ranges) {
		return nil, false
	}
	return &f.Ranges[id.Range], true
}

// EachRange calls fn for every range in feature order.
func (m *Map) EachRange(fn func(id RangeID, f *Feature, r *Range)) {
	for fi := range m.Features {
		f := &m.Features[fi]
		for ri := range f.Ranges {
			fn(RangeID{fi, ri}, f, &f.Ranges[ri])
		}
	}
}

// ValidateRange checks a single range against the map's sequence.
func (m *Map) ValidateRange(id RangeID) error {
	f := &m.Features[id.Feature]
	if f.Ring < 0 || f.Ring >= len(m.Rings) {
		return errors.New(errors.ErrCodeInvalidScene, "feature %d refers to missing ring %d", id.Feature, f.Ring)
	}
	r := f.Ranges[id.Range]
	if err := errors.ValidateRange(r.Start, r.Stop, m.SequenceLength, m.Linear); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "%s (%s)", id, f.Name)
	}
	return nil
}

// Validate reports every structural problem in m. Problems with individual
// ranges are not fatal to rendering: the renderer skips them with a
// warning. Validate exists for loaders and tooling that want a full report.
func (m *Map) Validate() error {
	if m.SequenceLength <= 0 {
		return errors.New(errors.ErrCodeInvalidScene, "sequence length must be positive, got %d", m.SequenceLength)
	}
	var errs []error
	m.EachRange(func(id RangeID, _ *Feature, _ *Range) {
		errs = append(errs, m.ValidateRange(id))
	})
	return errors.Join(errs...)
}

// RingsOn returns the indices of the rings on strand s in drawing order,
// nearest to the backbone first.
func (m *Map) RingsOn(s Strand) []int {
	var out []int
	for i, r := range m.Rings {
		if r.Strand == s {
			out = append(out, i)
		}
	}
	return out
}
