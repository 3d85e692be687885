package scene

import (
	"image/color"
	"strings"

	"github.com/matzehuels/cgmap/pkg/errors"
)

// LegendPosition anchors a legend box on the canvas.
type LegendPosition int

const (
	UpperRight LegendPosition = iota
	UpperLeft
	LowerRight
	LowerLeft
	UpperCenter
	LowerCenter
)

var legendPositions = map[string]LegendPosition{
	"upper-right":  UpperRight,
	"upper-left":   UpperLeft,
	"lower-right":  LowerRight,
	"lower-left":   LowerLeft,
	"upper-center": UpperCenter,
	"lower-center": LowerCenter,
}

// ParseLegendPosition accepts names such as "upper-left".
func ParseLegendPosition(s string) (LegendPosition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UpperRight, nil
	}
	if p, ok := legendPositions[s]; ok {
		return p, nil
	}
	return UpperRight, errors.New(errors.ErrCodeInvalidScene, "unknown legend position %q", s)
}

// Legend is a box of captioned colour swatches.
type Legend struct {
	Position LegendPosition
	FontSize float64
	// AllowLabelClash lets feature labels overlap the legend box.
	AllowLabelClash bool
	Background      color.NRGBA
	Items           []LegendItem
}

// LegendItem is one line of a legend.
type LegendItem struct {
	Text       string
	Color      color.NRGBA // swatch colour
	DrawSwatch bool
	Hyperlink  string
	Mouseover  string
	TextColor  color.NRGBA
}
