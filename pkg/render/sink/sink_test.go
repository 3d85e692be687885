package sink

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
	"github.com/matzehuels/cgmap/pkg/scene"
)

var red = color.NRGBA{200, 0, 0, 255}

func testMap() *scene.Map {
	m := &scene.Map{
		Title:          "pUC19",
		SequenceLength: 2686,
		Style:          scene.DefaultStyle(),
		Rings: []scene.Ring{
			{Strand: scene.Forward, Thickness: 10, Spacing: 2, ShowLabels: true},
		},
		Features: []scene.Feature{
			{Ring: 0, Name: "bla", Ranges: []scene.Range{{
				Start: 1626, Stop: 2486, Decoration: scene.Counterclockwise, Color: red,
				Label: "bla", Hyperlink: "https://example.org/?gene=bla&x=1", Mouseover: "beta-lactamase",
			}}},
			{Ring: 0, Name: "lacZ", Ranges: []scene.Range{{
				Start: 146, Stop: 469, Decoration: scene.Clockwise, Color: red, Label: "lacZ<alpha>",
			}}},
		},
	}
	m.Style.BackboneRadius = 120
	return m
}

func TestSVGSurfaceElements(t *testing.T) {
	tests := []struct {
		name string
		draw func(s *SVGSurface)
		want []string
	}{
		{
			name: "arc",
			draw: func(s *SVGSurface) {
				s.StrokeArc(geom.Point{X: 50, Y: 50}, 10, 0, math.Pi/2, canvas.Stroke{Color: red, Width: 2})
			},
			want: []string{`<path d="M60.00 50.00 A10.00 10.00 0 0 1 50.00 60.00"`, `stroke="#c80000"`, `stroke-linecap="butt"`},
		},
		{
			name: "large arc",
			draw: func(s *SVGSurface) {
				s.StrokeArc(geom.Point{X: 50, Y: 50}, 10, 0, 3*math.Pi/2, canvas.Stroke{Color: red, Width: 2})
			},
			want: []string{` 0 1 1 `},
		},
		{
			name: "full circle",
			draw: func(s *SVGSurface) {
				s.StrokeArc(geom.Point{X: 50, Y: 50}, 10, 1, 1+2*math.Pi, canvas.Stroke{Color: red, Width: 2})
			},
			want: []string{`<circle`, `fill="none"`},
		},
		{
			name: "translucent fill",
			draw: func(s *SVGSurface) {
				s.FillPolygon([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}, color.NRGBA{0, 0, 255, 128})
			},
			want: []string{`<polygon`, `fill="#0000ff"`, `fill-opacity="0.502"`},
		},
		{
			name: "escaped text",
			draw: func(s *SVGSurface) {
				s.DrawText("a<b & c", geom.Point{X: 1, Y: 1}, 10, red)
			},
			want: []string{`a&lt;b &amp; c</text>`, `font-size="10.00"`},
		},
		{
			name: "link",
			draw: func(s *SVGSurface) {
				s.BeginLink("https://example.org/?a=1&b=2", "tip")
				s.EndLink()
			},
			want: []string{`xlink:href="https://example.org/?a=1&amp;b=2"`, `<title>tip</title>`, `</a>`},
		},
		{
			name: "mouseover only",
			draw: func(s *SVGSurface) {
				s.BeginLink("", "tip")
				s.EndLink()
			},
			want: []string{`<g class="mouseover"`, `<title>tip</title>`, `</g>`},
		},
		{
			name: "unclosed link",
			draw: func(s *SVGSurface) { s.BeginLink("https://example.org", "") },
			want: []string{`</a>`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSVGSurface(&buf, 100, 100)
			tt.draw(s)
			s.End()
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			if !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
				t.Error("document not closed")
			}
		})
	}
}

func TestSVGRenderMap(t *testing.T) {
	var buf bytes.Buffer
	s := NewSVGSurface(&buf, 500, 500, WithSVGTitle("pUC19 map"))
	res := render.New(testMap()).RenderFull(s, render.ViewOptions{})
	s.End()
	out := buf.String()

	if res.Placed == 0 {
		t.Fatal("no labels placed")
	}
	for _, want := range []string{`<title>pUC19 map</title>`, `pUC19</text>`, `lacZ&lt;alpha&gt;`, `<title>beta-lactamase</title>`} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Count(out, "<a ") != strings.Count(out, "</a>") {
		t.Error("unbalanced links")
	}
}

func TestPNGRenderMap(t *testing.T) {
	s := NewPNGSurface(300, 200, WithScale(1.5))
	if w, h := s.Size(); w != 300 || h != 200 {
		t.Fatalf("Size() = %v, %v", w, h)
	}
	render.New(testMap()).RenderFull(s, render.ViewOptions{})
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG() error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 450 || b.Dy() != 300 {
		t.Errorf("image size = %dx%d, want 450x300", b.Dx(), b.Dy())
	}
}

func TestSurfacesMeasureAlike(t *testing.T) {
	var buf bytes.Buffer
	sv := NewSVGSurface(&buf, 10, 10)
	pn := NewPNGSurface(10, 10)
	for _, text := range []string{"ori", "lacZ alpha", ""} {
		w1, h1 := sv.MeasureText(text, 11)
		w2, h2 := pn.MeasureText(text, 11)
		if w1 != w2 || h1 != h2 {
			t.Errorf("%q: svg %v x %v, png %v x %v", text, w1, h1, w2, h2)
		}
	}
}

func TestRenderLabelsJSON(t *testing.T) {
	res := render.New(testMap()).RenderZoomed(canvas.NewRecorder(400, 400), 3, 300, render.ViewOptions{}, false)
	data, err := RenderLabelsJSON(res, WithJSONTitle("pUC19"))
	if err != nil {
		t.Fatalf("RenderLabelsJSON() error: %v", err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Title != "pUC19" || out.Width != 400 || out.Height != 400 {
		t.Errorf("header = %q %vx%v", out.Title, out.Width, out.Height)
	}
	if out.Zoom != 3 || out.Center != 300 || out.SequenceLength != 2686 {
		t.Errorf("view = zoom %v center %d n %d", out.Zoom, out.Center, out.SequenceLength)
	}
	if len(out.Labels) != len(res.Labels) {
		t.Errorf("labels = %d, want %d", len(out.Labels), len(res.Labels))
	}

	empty, err := RenderLabelsJSON(&render.Result{}, WithJSONCompact())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(empty), `"labels":[]`) {
		t.Errorf("empty result = %s", empty)
	}
}
