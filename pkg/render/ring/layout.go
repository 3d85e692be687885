package ring

import "github.com/matzehuels/cgmap/pkg/scene"

// Band is a ring's radial placement relative to the backbone. Offsets do
// not scale with zoom.
type Band struct {
	// Offset is the signed distance from the backbone to the ring's centre
	// line: positive outward (forward strand), negative inward.
	Offset    float64
	Thickness float64
}

// Inner returns the band's inner edge offset.
func (b Band) Inner() float64 { return b.Offset - b.Thickness/2 }

// Outer returns the band's outer edge offset.
func (b Band) Outer() float64 { return b.Offset + b.Thickness/2 }

// Layout is the radial placement of every ring of a map.
type Layout struct {
	// Bands is indexed like scene.Map.Rings.
	Bands []Band
	// Inward and Outward are the distances from the backbone to the
	// innermost and outermost drawn edges.
	Inward, Outward float64
}

// NewLayout stacks forward rings outward and reverse rings inward from the
// backbone, nearest first, separated by each ring's spacing.
func NewLayout(m *scene.Map) Layout {
	l := Layout{Bands: make([]Band, len(m.Rings))}
	half := m.Style.BackboneThickness / 2

	cursor := half
	for _, i := range m.RingsOn(scene.Forward) {
		r := m.Rings[i]
		cursor += max(r.Spacing, 0)
		l.Bands[i] = Band{Offset: cursor + r.Thickness/2, Thickness: r.Thickness}
		cursor += r.Thickness
	}
	l.Outward = cursor

	cursor = half
	for _, i := range m.RingsOn(scene.Reverse) {
		r := m.Rings[i]
		cursor += max(r.Spacing, 0)
		l.Bands[i] = Band{Offset: -(cursor + r.Thickness/2), Thickness: r.Thickness}
		cursor += r.Thickness
	}
	l.Inward = cursor
	return l
}
