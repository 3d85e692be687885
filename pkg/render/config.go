package render

import (
	"github.com/matzehuels/cgmap/pkg/errors"
	"github.com/matzehuels/cgmap/pkg/render/labels"
	"github.com/matzehuels/cgmap/pkg/render/ring"
)

const (
	// DefaultLabelGap is the leader length, in pixels, from the outermost
	// (or innermost) drawn edge to where labels start.
	DefaultLabelGap = 12.0

	// minRadiusFrac and maxRadiusFrac bound the backbone radius as a
	// fraction of the shorter canvas side.
	minRadiusFrac = 0.05
	maxRadiusFrac = 0.45

	// rulerInset separates the ruler from the innermost ring.
	rulerInset = 2.0
	// edgeMargin keeps legends off the canvas edge.
	edgeMargin = 10.0
)

// Config holds the renderer settings that are not part of the scene. The
// zero value of a field keeps the default unless noted.
type Config struct {
	// Quality is the label layout effort, 1-10.
	Quality int `json:"quality,omitempty" toml:"quality"`
	// Seed fixes label layout shuffles; 0 seeds from the clock.
	Seed uint64 `json:"seed,omitempty" toml:"seed"`
	// MaxLabels caps the labels considered; 0 is no cap.
	MaxLabels      int  `json:"max_labels,omitempty" toml:"max_labels"`
	RandomizeQuota bool `json:"randomize_quota,omitempty" toml:"randomize_quota"`
	// ConvertInner moves clashing inner labels outside the map.
	ConvertInner bool `json:"convert_inner,omitempty" toml:"convert_inner"`

	LabelGap float64 `json:"label_gap,omitempty" toml:"label_gap"`
	// MaxLabelRunes shortens longer feature labels, keeping the full text
	// as the mouseover; 0 keeps labels whole.
	MaxLabelRunes int `json:"max_label_runes,omitempty" toml:"max_label_runes"`

	ArrowheadLength    float64 `json:"arrowhead_length,omitempty" toml:"arrowhead_length"`
	MinFeatureLength   float64 `json:"min_feature_length,omitempty" toml:"min_feature_length"`
	ShiftSmallFeatures bool    `json:"shift_small_features" toml:"shift_small_features"`
	ShadingProportion  float64 `json:"shading_proportion,omitempty" toml:"shading_proportion"`
	ShadingOpacity     float64 `json:"shading_opacity,omitempty" toml:"shading_opacity"`

	// TickDensity scales the number of ruler ticks.
	TickDensity float64 `json:"tick_density,omitempty" toml:"tick_density"`
}

// DefaultConfig returns the standard renderer settings.
func DefaultConfig() Config {
	rc := ring.DefaultConfig()
	return Config{
		Quality:            labels.DefaultQuality,
		LabelGap:           DefaultLabelGap,
		ArrowheadLength:    rc.ArrowheadLength,
		MinFeatureLength:   rc.MinFeatureLength,
		ShiftSmallFeatures: rc.ShiftSmallFeatures,
		ShadingProportion:  rc.ShadingProportion,
		ShadingOpacity:     rc.ShadingOpacity,
		TickDensity:        1,
	}
}

// Validate checks ranges that have no sensible clamp.
func (c Config) Validate() error {
	if c.Quality < 0 || c.Quality > labels.MaxQuality {
		return errors.New(errors.ErrCodeInvalidOptions, "quality must be between 1 and %d, got %d", labels.MaxQuality, c.Quality)
	}
	if c.MaxLabels < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max labels cannot be negative")
	}
	if c.MaxLabelRunes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max label runes cannot be negative")
	}
	if c.TickDensity < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "tick density cannot be negative")
	}
	if c.ShadingOpacity < 0 || c.ShadingOpacity > 1 {
		return errors.New(errors.ErrCodeInvalidOptions, "shading opacity must be within [0, 1]")
	}
	return nil
}

// withDefaults fills zero numeric fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Quality <= 0 {
		c.Quality = d.Quality
	}
	if c.LabelGap <= 0 {
		c.LabelGap = d.LabelGap
	}
	if c.ArrowheadLength <= 0 {
		c.ArrowheadLength = d.ArrowheadLength
	}
	if c.MinFeatureLength <= 0 {
		c.MinFeatureLength = d.MinFeatureLength
	}
	if c.ShadingProportion <= 0 {
		c.ShadingProportion = d.ShadingProportion
	}
	if c.ShadingOpacity <= 0 {
		c.ShadingOpacity = d.ShadingOpacity
	}
	if c.TickDensity <= 0 {
		c.TickDensity = d.TickDensity
	}
	return c
}

func (c Config) ring() ring.Config {
	return ring.Config{
		ArrowheadLength:    c.ArrowheadLength,
		MinFeatureLength:   c.MinFeatureLength,
		ShiftSmallFeatures: c.ShiftSmallFeatures,
		ShadingProportion:  c.ShadingProportion,
		ShadingOpacity:     c.ShadingOpacity,
		MaxLabelRunes:      c.MaxLabelRunes,
	}
}

func (c Config) labels() labels.Config {
	return labels.Config{
		Quality:        c.Quality,
		Seed:           c.Seed,
		MaxLabels:      c.MaxLabels,
		RandomizeQuota: c.RandomizeQuota,
		ConvertInner:   c.ConvertInner,
	}
}
