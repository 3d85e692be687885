package styles

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}, true},
		{"#0f0", color.NRGBA{0, 255, 0, 255}, true},
		{"#0000ff80", color.NRGBA{0, 0, 255, 128}, true},
		{"navy", color.NRGBA{0, 0, 128, 255}, true},
		{" Black ", color.NRGBA{0, 0, 0, 255}, true},
		{"not-a-colour", color.NRGBA{}, false},
		{"#12", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseColor(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.NRGBA{1, 2, 255, 10}); got != "#0102ff" {
		t.Errorf("Hex = %q", got)
	}
	if got := HexAlpha(color.NRGBA{1, 2, 255, 10}); got != "#0102ff0a" {
		t.Errorf("HexAlpha = %q", got)
	}
}

func TestHighlightShadow(t *testing.T) {
	c := color.NRGBA{200, 40, 40, 200}
	lum := func(c color.NRGBA) int { return int(c.R) + int(c.G) + int(c.B) }
	if h := Highlight(c); lum(h) <= lum(c) || h.A != c.A {
		t.Errorf("Highlight(%v) = %v, want lighter with same alpha", c, h)
	}
	if s := Shadow(c); lum(s) >= lum(c) || s.A != c.A {
		t.Errorf("Shadow(%v) = %v, want darker with same alpha", c, s)
	}
}

func TestWithOpacity(t *testing.T) {
	c := color.NRGBA{10, 20, 30, 255}
	if got := WithOpacity(c, 0.5).A; got != 128 {
		t.Errorf("alpha = %d, want 128", got)
	}
	if got := WithOpacity(c, 2).A; got != 255 {
		t.Errorf("alpha = %d, want clamped 255", got)
	}
}

func TestFormatBases(t *testing.T) {
	tests := map[int]string{
		950:       "950 bp",
		1000:      "1 kbp",
		12500:     "12.5 kbp",
		12345:     "12345 bp",
		2_000_000: "2 Mbp",
		1_500_000: "1.5 Mbp",
	}
	for in, want := range tests {
		if got := FormatBases(in); got != want {
			t.Errorf("FormatBases(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("replication origin", 8); got != "replic.." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("ori", 8); got != "ori" {
		t.Errorf("Truncate = %q", got)
	}
}
