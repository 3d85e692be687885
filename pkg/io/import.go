package io

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/matzehuels/cgmap/pkg/errors"
	"github.com/matzehuels/cgmap/pkg/render/styles"
	"github.com/matzehuels/cgmap/pkg/scene"
)

// ReadJSON decodes a JSON scene from r into a Map.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or has unknown fields
//   - sequence_length is not positive
//   - A strand, decoration, legend position or colour is not recognised
//
// Errors are wrapped with context describing which ring, feature or range
// caused the problem. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*scene.Map, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if doc.SequenceLength <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "sequence_length must be positive, got %d", doc.SequenceLength)
	}

	m := &scene.Map{
		Title:          doc.Title,
		SequenceLength: doc.SequenceLength,
		Linear:         doc.Linear,
		OriginDegrees:  doc.Origin,
		Style:          scene.DefaultStyle(),
	}
	if doc.Style != nil {
		if err := applyStyle(&m.Style, doc.Style); err != nil {
			return nil, fmt.Errorf("style: %w", err)
		}
	}

	for i, rg := range doc.Rings {
		strand, err := scene.ParseStrand(rg.Strand)
		if err != nil {
			return nil, fmt.Errorf("ring %d: %w", i, err)
		}
		m.Rings = append(m.Rings, scene.Ring{
			Strand:     strand,
			Thickness:  rg.Thickness,
			Spacing:    rg.Spacing,
			Shading:    rg.Shading,
			Opacity:    rg.Opacity,
			ShowLabels: rg.ShowLabels,
		})
	}

	for i, fe := range doc.Features {
		f := scene.Feature{Ring: fe.Ring, Name: fe.Name}
		for j, re := range fe.Ranges {
			rg, err := toRange(re)
			if err != nil {
				return nil, fmt.Errorf("feature %d (%s) range %d: %w", i, fe.Name, j, err)
			}
			f.Ranges = append(f.Ranges, rg)
		}
		m.Features = append(m.Features, f)
	}

	for i, lg := range doc.Legends {
		l, err := toLegend(lg)
		if err != nil {
			return nil, fmt.Errorf("legend %d: %w", i, err)
		}
		m.Legends = append(m.Legends, l)
	}
	return m, nil
}

// ImportJSON reads a JSON scene file at path.
func ImportJSON(path string) (*scene.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	m, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func toRange(re rangeEntry) (scene.Range, error) {
	deco, err := scene.ParseDecoration(re.Decoration)
	if err != nil {
		return scene.Range{}, err
	}
	c, err := parseColor(re.Color)
	if err != nil {
		return scene.Range{}, err
	}
	lc, err := parseColor(re.LabelColor)
	if err != nil {
		return scene.Range{}, err
	}
	return scene.Range{
		Start:                 re.Start,
		Stop:                  re.Stop,
		Decoration:            deco,
		Color:                 c,
		Opacity:               re.Opacity,
		Shading:               re.Shading,
		ProportionOfThickness: re.ProportionOfThickness,
		RadiusAdjustment:      re.RadiusAdjustment,
		Label:                 re.Label,
		LabelColor:            lc,
		FontSize:              re.FontSize,
		ForceLabel:            re.ForceLabel,
		Hyperlink:             re.Hyperlink,
		Mouseover:             re.Mouseover,
	}, nil
}

func toLegend(lg legend) (scene.Legend, error) {
	pos, err := scene.ParseLegendPosition(lg.Position)
	if err != nil {
		return scene.Legend{}, err
	}
	bg, err := parseColor(lg.Background)
	if err != nil {
		return scene.Legend{}, err
	}
	l := scene.Legend{Position: pos, FontSize: lg.FontSize, AllowLabelClash: lg.AllowLabelClash, Background: bg}
	for k, it := range lg.Items {
		c, err := parseColor(it.Color)
		if err != nil {
			return scene.Legend{}, fmt.Errorf("item %d: %w", k, err)
		}
		tc, err := parseColor(it.TextColor)
		if err != nil {
			return scene.Legend{}, fmt.Errorf("item %d: %w", k, err)
		}
		l.Items = append(l.Items, scene.LegendItem{
			Text:       it.Text,
			Color:      c,
			DrawSwatch: it.Swatch,
			Hyperlink:  it.Hyperlink,
			Mouseover:  it.Mouseover,
			TextColor:  tc,
		})
	}
	return l, nil
}

func applyStyle(dst *scene.Style, s *style) error {
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setFloat(&dst.BackboneRadius, s.BackboneRadius)
	setFloat(&dst.BackboneThickness, s.BackboneThickness)
	setFloat(&dst.LabelFontSize, s.LabelFontSize)
	setFloat(&dst.RulerFontSize, s.RulerFontSize)
	setFloat(&dst.TitleFontSize, s.TitleFontSize)
	setFloat(&dst.LegendFontSize, s.LegendFontSize)
	setFloat(&dst.LabelLineThickness, s.LabelLineThickness)
	setFloat(&dst.TickThickness, s.TickThickness)
	setFloat(&dst.TickLength, s.TickLength)
	setBool(&dst.ShowTitle, s.ShowTitle)
	setBool(&dst.ShowLength, s.ShowLength)
	setBool(&dst.ShowRuler, s.ShowRuler)
	setBool(&dst.ShowLabels, s.ShowLabels)
	setBool(&dst.ShowBorder, s.ShowBorder)

	colors := []struct {
		dst *color.NRGBA
		src string
	}{
		{&dst.BackboneColor, s.BackboneColor},
		{&dst.Background, s.Background},
		{&dst.TextColor, s.TextColor},
		{&dst.RulerColor, s.RulerColor},
		{&dst.LabelLineColor, s.LabelLineColor},
		{&dst.BorderColor, s.BorderColor},
	}
	for _, c := range colors {
		if c.src == "" {
			continue
		}
		v, err := styles.ParseColor(c.src)
		if err != nil {
			return err
		}
		*c.dst = v
	}
	return nil
}

// parseColor maps "" to the unset colour.
func parseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	return styles.ParseColor(s)
}
