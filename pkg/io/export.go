package io

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/matzehuels/cgmap/pkg/render/styles"
	"github.com/matzehuels/cgmap/pkg/scene"
)

type document struct {
	Title          string    `json:"title,omitempty"`
	SequenceLength int       `json:"sequence_length"`
	Linear         bool      `json:"linear,omitempty"`
	Origin         float64   `json:"origin,omitempty"`
	Style          *style    `json:"style,omitempty"`
	Rings          []ring    `json:"rings,omitempty"`
	Features       []feature `json:"features,omitempty"`
	Legends        []legend  `json:"legends,omitempty"`
}

// style uses pointers so absent fields keep their defaults.
type style struct {
	BackboneRadius     *float64 `json:"backbone_radius,omitempty"`
	BackboneThickness  *float64 `json:"backbone_thickness,omitempty"`
	BackboneColor      string   `json:"backbone_color,omitempty"`
	Background         string   `json:"background,omitempty"`
	TextColor          string   `json:"text_color,omitempty"`
	RulerColor         string   `json:"ruler_color,omitempty"`
	LabelLineColor     string   `json:"label_line_color,omitempty"`
	BorderColor        string   `json:"border_color,omitempty"`
	LabelFontSize      *float64 `json:"label_font_size,omitempty"`
	RulerFontSize      *float64 `json:"ruler_font_size,omitempty"`
	TitleFontSize      *float64 `json:"title_font_size,omitempty"`
	LegendFontSize     *float64 `json:"legend_font_size,omitempty"`
	LabelLineThickness *float64 `json:"label_line_thickness,omitempty"`
	TickThickness      *float64 `json:"tick_thickness,omitempty"`
	TickLength         *float64 `json:"tick_length,omitempty"`
	ShowTitle          *bool    `json:"show_title,omitempty"`
	ShowLength         *bool    `json:"show_length,omitempty"`
	ShowRuler          *bool    `json:"show_ruler,omitempty"`
	ShowLabels         *bool    `json:"show_labels,omitempty"`
	ShowBorder         *bool    `json:"show_border,omitempty"`
}

type ring struct {
	Strand     string  `json:"strand,omitempty"`
	Thickness  float64 `json:"thickness"`
	Spacing    float64 `json:"spacing,omitempty"`
	Shading    bool    `json:"shading,omitempty"`
	Opacity    float64 `json:"opacity,omitempty"`
	ShowLabels bool    `json:"show_labels,omitempty"`
}

type feature struct {
	Ring   int          `json:"ring"`
	Name   string       `json:"name,omitempty"`
	Ranges []rangeEntry `json:"ranges"`
}

type rangeEntry struct {
	Start                 int     `json:"start"`
	Stop                  int     `json:"stop"`
	Decoration            string  `json:"decoration,omitempty"`
	Color                 string  `json:"color,omitempty"`
	Opacity               float64 `json:"opacity,omitempty"`
	Shading               *bool   `json:"shading,omitempty"`
	ProportionOfThickness float64 `json:"proportion_of_thickness,omitempty"`
	RadiusAdjustment      float64 `json:"radius_adjustment,omitempty"`
	Label                 string  `json:"label,omitempty"`
	LabelColor            string  `json:"label_color,omitempty"`
	FontSize              float64 `json:"font_size,omitempty"`
	ForceLabel            bool    `json:"force_label,omitempty"`
	Hyperlink             string  `json:"hyperlink,omitempty"`
	Mouseover             string  `json:"mouseover,omitempty"`
}

type legend struct {
	Position        string       `json:"position,omitempty"`
	FontSize        float64      `json:"font_size,omitempty"`
	AllowLabelClash bool         `json:"allow_label_clash,omitempty"`
	Background      string       `json:"background,omitempty"`
	Items           []legendItem `json:"items"`
}

type legendItem struct {
	Text      string `json:"text"`
	Color     string `json:"color,omitempty"`
	Swatch    bool   `json:"swatch,omitempty"`
	Hyperlink string `json:"hyperlink,omitempty"`
	Mouseover string `json:"mouseover,omitempty"`
	TextColor string `json:"text_color,omitempty"`
}

var positionNames = map[scene.LegendPosition]string{
	scene.UpperRight:  "upper-right",
	scene.UpperLeft:   "upper-left",
	scene.LowerRight:  "lower-right",
	scene.LowerLeft:   "lower-left",
	scene.UpperCenter: "upper-center",
	scene.LowerCenter: "lower-center",
}

// WriteJSON encodes m as JSON and writes it to w. The output can be read
// back with [ReadJSON].
func WriteJSON(m *scene.Map, w io.Writer) error {
	out := document{
		Title:          m.Title,
		SequenceLength: m.SequenceLength,
		Linear:         m.Linear,
		Origin:         m.OriginDegrees,
		Style:          fromStyle(m.Style),
	}
	for _, r := range m.Rings {
		out.Rings = append(out.Rings, ring{
			Strand:     r.Strand.String(),
			Thickness:  r.Thickness,
			Spacing:    r.Spacing,
			Shading:    r.Shading,
			Opacity:    r.Opacity,
			ShowLabels: r.ShowLabels,
		})
	}
	for _, f := range m.Features {
		fe := feature{Ring: f.Ring, Name: f.Name, Ranges: make([]rangeEntry, 0, len(f.Ranges))}
		for _, r := range f.Ranges {
			fe.Ranges = append(fe.Ranges, rangeEntry{
				Start:                 r.Start,
				Stop:                  r.Stop,
				Decoration:            r.Decoration.String(),
				Color:                 colorString(r.Color),
				Opacity:               r.Opacity,
				Shading:               r.Shading,
				ProportionOfThickness: r.ProportionOfThickness,
				RadiusAdjustment:      r.RadiusAdjustment,
				Label:                 r.Label,
				LabelColor:            colorString(r.LabelColor),
				FontSize:              r.FontSize,
				ForceLabel:            r.ForceLabel,
				Hyperlink:             r.Hyperlink,
				Mouseover:             r.Mouseover,
			})
		}
		out.Features = append(out.Features, fe)
	}
	for _, l := range m.Legends {
		lg := legend{
			Position:        positionNames[l.Position],
			FontSize:        l.FontSize,
			AllowLabelClash: l.AllowLabelClash,
			Background:      colorString(l.Background),
			Items:           make([]legendItem, 0, len(l.Items)),
		}
		for _, it := range l.Items {
			lg.Items = append(lg.Items, legendItem{
				Text:      it.Text,
				Color:     colorString(it.Color),
				Swatch:    it.DrawSwatch,
				Hyperlink: it.Hyperlink,
				Mouseover: it.Mouseover,
				TextColor: colorString(it.TextColor),
			})
		}
		out.Legends = append(out.Legends, lg)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes m to a JSON file at path.
func ExportJSON(m *scene.Map, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}

func fromStyle(s scene.Style) *style {
	return &style{
		BackboneRadius:     &s.BackboneRadius,
		BackboneThickness:  &s.BackboneThickness,
		BackboneColor:      colorString(s.BackboneColor),
		Background:         colorString(s.Background),
		TextColor:          colorString(s.TextColor),
		RulerColor:         colorString(s.RulerColor),
		LabelLineColor:     colorString(s.LabelLineColor),
		BorderColor:        colorString(s.BorderColor),
		LabelFontSize:      &s.LabelFontSize,
		RulerFontSize:      &s.RulerFontSize,
		TitleFontSize:      &s.TitleFontSize,
		LegendFontSize:     &s.LegendFontSize,
		LabelLineThickness: &s.LabelLineThickness,
		TickThickness:      &s.TickThickness,
		TickLength:         &s.TickLength,
		ShowTitle:          &s.ShowTitle,
		ShowLength:         &s.ShowLength,
		ShowRuler:          &s.ShowRuler,
		ShowLabels:         &s.ShowLabels,
		ShowBorder:         &s.ShowBorder,
	}
}

// colorString leaves unset (fully transparent black) colours out.
func colorString(c color.NRGBA) string {
	if c == (color.NRGBA{}) {
		return ""
	}
	return styles.HexAlpha(c)
}
