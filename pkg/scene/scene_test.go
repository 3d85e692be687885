package scene

import (
	"testing"

	"github.com/matzehuels/cgmap/pkg/errors"
)

func testMap() *Map {
	return &Map{
		SequenceLength: 1000,
		Rings: []Ring{
			{Strand: Forward, Thickness: 20},
			{Strand: Reverse, Thickness: 20},
			{Strand: Forward, Thickness: 10},
		},
		Features: []Feature{
			{Ring: 0, Name: "bla", Ranges: []Range{{Start: 10, Stop: 100}, {Start: 990, Stop: 10}}},
			{Ring: 1, Name: "ori", Ranges: []Range{{Start: 500, Stop: 1001}}},
			{Ring: 7, Name: "lost", Ranges: []Range{{Start: 1, Stop: 2}}},
		},
		Style: DefaultStyle(),
	}
}

func TestRangeGeometry(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		wantLen int
		wantMid float64
	}{
		{"plain", Range{Start: 1, Stop: 100}, 100, 50},
		{"single base", Range{Start: 10, Stop: 10}, 1, 9.5},
		{"wraps origin", Range{Start: 991, Stop: 10}, 20, 0},
		{"wrap mostly after origin", Range{Start: 1000, Stop: 20}, 21, 9.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Length(1000); got != tt.wantLen {
				t.Errorf("Length = %d, want %d", got, tt.wantLen)
			}
			if got := tt.r.Midpoint(1000); got != tt.wantMid {
				t.Errorf("Midpoint = %v, want %v", got, tt.wantMid)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	m := testMap()
	err := m.Validate()
	if err == nil {
		t.Fatal("Validate should report the out-of-range stop and the missing ring")
	}
	if !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("expected INVALID_RANGE in %v", err)
	}
	if !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("expected INVALID_SCENE in %v", err)
	}

	if err := m.ValidateRange(RangeID{0, 1}); err != nil {
		t.Errorf("wrapping range on circular map should be valid: %v", err)
	}
	m.Linear = true
	if err := m.ValidateRange(RangeID{0, 1}); err == nil {
		t.Error("wrapping range on linear map should be rejected")
	}
}

func TestValidateEmptySequence(t *testing.T) {
	m := &Map{}
	if !errors.Is(m.Validate(), errors.ErrCodeInvalidScene) {
		t.Error("zero-length sequence should be INVALID_SCENE")
	}
}

func TestRangeLookup(t *testing.T) {
	m := testMap()
	r, ok := m.Range(RangeID{0, 1})
	if !ok || r.Start != 990 {
		t.Fatalf("Range(f0.r1) = %v, %v", r, ok)
	}
	if _, ok := m.Range(RangeID{0, 5}); ok {
		t.Error("out-of-bounds range index should not resolve")
	}
	if _, ok := m.Range(RangeID{-1, 0}); ok {
		t.Error("negative feature index should not resolve")
	}

	var n int
	m.EachRange(func(RangeID, *Feature, *Range) { n++ })
	if n != 4 {
		t.Errorf("EachRange visited %d ranges, want 4", n)
	}
}

func TestRingsOn(t *testing.T) {
	m := testMap()
	fwd := m.RingsOn(Forward)
	if len(fwd) != 2 || fwd[0] != 0 || fwd[1] != 2 {
		t.Errorf("RingsOn(Forward) = %v, want [0 2]", fwd)
	}
	if rev := m.RingsOn(Reverse); len(rev) != 1 || rev[0] != 1 {
		t.Errorf("RingsOn(Reverse) = %v, want [1]", rev)
	}
}

func TestParsers(t *testing.T) {
	for _, d := range []Decoration{Standard, Clockwise, Counterclockwise, Hidden} {
		got, err := ParseDecoration(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDecoration(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDecoration("zigzag"); err == nil {
		t.Error("ParseDecoration should reject unknown names")
	}
	if s, err := ParseStrand("-"); err != nil || s != Reverse {
		t.Errorf("ParseStrand(-) = %v, %v", s, err)
	}
	if p, err := ParseLegendPosition("lower-left"); err != nil || p != LowerLeft {
		t.Errorf("ParseLegendPosition = %v, %v", p, err)
	}
	if _, err := ParseLegendPosition("middle"); err == nil {
		t.Error("ParseLegendPosition should reject unknown names")
	}
}
