package styles

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/cgmap/pkg/errors"
)

var (
	White = color.NRGBA{255, 255, 255, 255}
	Black = color.NRGBA{0, 0, 0, 255}
)

const (
	highlightBlend = 0.55
	shadowBlend    = 0.45
)

var named = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"red":     "#ff0000",
	"maroon":  "#800000",
	"orange":  "#ffa500",
	"yellow":  "#ffff00",
	"olive":   "#808000",
	"lime":    "#00ff00",
	"green":   "#008000",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"blue":    "#0000ff",
	"navy":    "#000080",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
}

// ParseColor accepts "#rrggbb", "#rgb", "#rrggbbaa" and a small set of
// CSS colour names.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := named[s]; ok {
		s = hex
	}
	alpha := uint8(255)
	if len(s) == 9 && s[0] == '#' {
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid colour %q", s)
		}
		alpha, s = a, s[:7]
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid colour %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, alpha}, nil
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexAlpha formats c as "#rrggbb", or "#rrggbbaa" when c is translucent.
func HexAlpha(c color.NRGBA) string {
	if c.A == 255 {
		return Hex(c)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Opacity returns the alpha of c in [0, 1].
func Opacity(c color.NRGBA) float64 { return float64(c.A) / 255 }

// WithOpacity scales the alpha of c by op, clamped to [0, 1].
func WithOpacity(c color.NRGBA, op float64) color.NRGBA {
	op = min(max(op, 0), 1)
	c.A = uint8(float64(c.A)*op + 0.5)
	return c
}

// Highlight is the lighter band drawn along a shaded feature's outer edge.
func Highlight(c color.NRGBA) color.NRGBA { return blend(c, White, highlightBlend) }

// Shadow is the darker band drawn along a shaded feature's inner edge.
func Shadow(c color.NRGBA) color.NRGBA { return blend(c, Black, shadowBlend) }

func blend(c, toward color.NRGBA, t float64) color.NRGBA {
	a, _ := colorful.MakeColor(opaque(c))
	b, _ := colorful.MakeColor(opaque(toward))
	r, g, bl := a.BlendLab(b, t).Clamped().RGB255()
	return color.NRGBA{r, g, bl, c.A}
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 255
	return c
}
