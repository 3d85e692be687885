package render

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
	"github.com/matzehuels/cgmap/pkg/scene"
)

var blue = color.NRGBA{0, 0, 200, 255}

// testMap spreads n labelled features around a 1000 bp map, alternating
// between a forward and a reverse ring.
func testMap(n int) *scene.Map {
	m := &scene.Map{
		Title:          "pTest",
		SequenceLength: 1000,
		Style:          scene.DefaultStyle(),
		Rings: []scene.Ring{
			{Strand: scene.Forward, Thickness: 12, Spacing: 2, ShowLabels: true},
			{Strand: scene.Reverse, Thickness: 12, Spacing: 2, ShowLabels: true},
		},
	}
	m.Style.BackboneRadius = 150
	for i := range n {
		start := 1 + i*1000/n
		m.Features = append(m.Features, scene.Feature{
			Ring: i % 2,
			Name: fmt.Sprintf("gene%d", i),
			Ranges: []scene.Range{{
				Start:      start,
				Stop:       start + 20,
				Decoration: scene.Clockwise,
				Color:      blue,
				Label:      fmt.Sprintf("gene%d", i),
			}},
		})
	}
	return m
}

func newTestRenderer(m *scene.Map) *Renderer {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return New(m, WithConfig(cfg))
}

func TestRenderFullLabels(t *testing.T) {
	m := testMap(12)
	rec := canvas.NewRecorder(600, 600)
	res := newTestRenderer(m).RenderFull(rec, ViewOptions{})

	if res.Total != 12 {
		t.Fatalf("Total = %d, want 12", res.Total)
	}
	if res.Placed+res.Dropped != res.Total {
		t.Errorf("Placed %d + Dropped %d != Total %d", res.Placed, res.Dropped, res.Total)
	}
	if res.Placed == 0 {
		t.Fatal("no labels placed")
	}
	feats := res.FeatureLabels()
	if len(feats) != res.Placed {
		t.Errorf("feature bounds = %d, want %d", len(feats), res.Placed)
	}
	canvasRect := geom.RectXYWH(0, 0, 600, 600)
	for i, a := range feats {
		if !a.Box().Within(canvasRect) {
			t.Errorf("label %q leaves the canvas: %+v", a.Text, a.Box())
		}
		for _, b := range feats[i+1:] {
			if a.Box().Overlaps(b.Box()) {
				t.Errorf("labels %q and %q overlap", a.Text, b.Text)
			}
		}
		for _, other := range res.Labels {
			if other.Kind == KindFeature {
				continue
			}
			if a.Box().Overlaps(other.Box()) {
				t.Errorf("label %q overlaps %s %q", a.Text, other.Kind, other.Text)
			}
		}
	}
}

func TestRenderDrawsRangesAndBackbone(t *testing.T) {
	m := testMap(4)
	rec := canvas.NewRecorder(600, 600)
	newTestRenderer(m).RenderFull(rec, ViewOptions{HideLabels: true, HideRuler: true})

	arcs := rec.Filter(canvas.OpArc)
	if len(arcs) == 0 {
		t.Fatal("no arcs drawn")
	}
	backbone := arcs[0]
	if math.Abs(backbone.A1-backbone.A0-2*math.Pi) > 1e-9 {
		t.Errorf("backbone sweep = %v, want full circle", backbone.A1-backbone.A0)
	}
	if backbone.Radius != 150 {
		t.Errorf("backbone radius = %v, want 150", backbone.Radius)
	}
	if got := len(rec.Filter(canvas.OpPolygon)); got != 4 {
		t.Errorf("arrow polygons = %d, want 4", got)
	}
}

func TestRenderLinearBackboneGap(t *testing.T) {
	m := testMap(0)
	m.Linear = true
	rec := canvas.NewRecorder(600, 600)
	newTestRenderer(m).RenderFull(rec, ViewOptions{HideRuler: true})

	arcs := rec.Filter(canvas.OpArc)
	if len(arcs) != 1 {
		t.Fatalf("arcs = %d, want 1", len(arcs))
	}
	if sweep := arcs[0].A1 - arcs[0].A0; sweep >= 2*math.Pi {
		t.Errorf("linear backbone sweep = %v, want a gap", sweep)
	}
}

func TestRenderDegenerate(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		m    *scene.Map
	}{
		{"zero width", 0, 400, testMap(3)},
		{"negative height", 400, -1, testMap(3)},
		{"empty sequence", 400, 400, &scene.Map{Style: scene.DefaultStyle()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := canvas.NewRecorder(tt.w, tt.h)
			res := New(tt.m).RenderFull(rec, ViewOptions{})
			if res == nil {
				t.Fatal("nil result")
			}
			if len(rec.Calls) != 0 || len(res.Labels) != 0 {
				t.Errorf("drew %d calls and %d labels, want none", len(rec.Calls), len(res.Labels))
			}
		})
	}
}

func TestRenderSkipsInvalidRanges(t *testing.T) {
	m := testMap(4)
	m.Features = append(m.Features,
		scene.Feature{Ring: 0, Ranges: []scene.Range{{Start: 0, Stop: 10, Label: "bad start"}}},
		scene.Feature{Ring: 0, Ranges: []scene.Range{{Start: 5, Stop: 5000, Label: "bad stop"}}},
		scene.Feature{Ring: 7, Ranges: []scene.Range{{Start: 5, Stop: 50, Label: "bad ring"}}},
	)
	rec := canvas.NewRecorder(600, 600)
	res := newTestRenderer(m).RenderFull(rec, ViewOptions{})
	if res.Total != 4 {
		t.Errorf("Total = %d, want 4", res.Total)
	}
	for _, txt := range rec.Texts() {
		if slices.Contains([]string{"bad start", "bad stop", "bad ring"}, txt) {
			t.Errorf("invalid range label %q drawn", txt)
		}
	}
}

func TestBackboneRadiusClamped(t *testing.T) {
	tests := []struct {
		name     string
		radius   float64
		override float64
		want     float64
	}{
		{"fits", 150, 0, 150},
		{"too large", 500, 0, 0.45 * 400},
		{"too small", 1, 0, 0.05 * 400},
		{"override", 150, 120, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMap(0)
			m.Style.BackboneRadius = tt.radius
			res := New(m).RenderFull(canvas.NewRecorder(400, 600), ViewOptions{BackboneRadius: tt.override})
			if math.Abs(res.State.Radius-tt.want) > 1e-9 {
				t.Errorf("radius = %v, want %v", res.State.Radius, tt.want)
			}
		})
	}
}

func TestTitleAndCaption(t *testing.T) {
	m := testMap(0)
	rec := canvas.NewRecorder(600, 600)
	res := newTestRenderer(m).RenderFull(rec, ViewOptions{})
	texts := rec.Texts()
	for _, want := range []string{"pTest", "1000 bp"} {
		if !slices.Contains(texts, want) {
			t.Errorf("texts %v missing %q", texts, want)
		}
	}
	kinds := map[BoundsKind]int{}
	for _, b := range res.Labels {
		kinds[b.Kind]++
	}
	if kinds[KindTitle] != 1 || kinds[KindCaption] != 1 {
		t.Errorf("bounds kinds = %v", kinds)
	}
	if kinds[KindTick] == 0 {
		t.Error("no ruler labels")
	}

	rec = canvas.NewRecorder(600, 600)
	newTestRenderer(m).RenderZoomed(rec, 20, 500, ViewOptions{}, false)
	if slices.Contains(rec.Texts(), "pTest") {
		t.Error("title drawn with the centre off the canvas")
	}
}

func TestTickBounds(t *testing.T) {
	res := newTestRenderer(testMap(0)).RenderFull(canvas.NewRecorder(600, 600), ViewOptions{})

	seen := map[int]bool{}
	var labelled, unlabelled int
	for _, b := range res.Labels {
		if b.Kind != KindTick {
			if b.Base != nil {
				t.Errorf("%s bounds %q carries a base", b.Kind, b.Text)
			}
			continue
		}
		if b.Base == nil {
			t.Fatalf("tick bounds %q without base", b.Text)
		}
		if seen[*b.Base] {
			t.Errorf("two tick bounds for base %d", *b.Base)
		}
		seen[*b.Base] = true
		if b.Width <= 0 || b.Height <= 0 {
			t.Errorf("tick %d has empty box", *b.Base)
		}
		if b.Text == "" {
			unlabelled++
		} else {
			labelled++
		}
	}
	if labelled == 0 || unlabelled == 0 {
		t.Errorf("tick bounds: %d labelled, %d unlabelled; want both", labelled, unlabelled)
	}
	if !seen[0] {
		t.Fatal("no bounds for the origin tick")
	}

	for _, b := range res.Labels {
		if b.Kind == KindTick && *b.Base == 0 {
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), `"base":0`) {
				t.Errorf("origin tick JSON %s lacks base", data)
			}
		}
	}
}

func TestLegendReservesSpace(t *testing.T) {
	m := testMap(24)
	m.Legends = []scene.Legend{{
		Position: scene.UpperRight,
		Items: []scene.LegendItem{
			{Text: "forward genes", Color: blue, DrawSwatch: true},
			{Text: "reverse genes", Color: blue, DrawSwatch: true, Hyperlink: "https://example.org"},
		},
	}}
	rec := canvas.NewRecorder(500, 500)
	res := newTestRenderer(m).RenderFull(rec, ViewOptions{})

	var legend []LabelBounds
	for _, b := range res.Labels {
		if b.Kind == KindLegend {
			legend = append(legend, b)
		}
	}
	if len(legend) != 2 {
		t.Fatalf("legend bounds = %d, want 2", len(legend))
	}
	if legend[1].Hyperlink != "https://example.org" {
		t.Errorf("legend hyperlink = %q", legend[1].Hyperlink)
	}
	if legend[0].X+legend[0].Width > 500-edgeMargin {
		t.Errorf("legend too far right: %+v", legend[0])
	}
	for _, f := range res.FeatureLabels() {
		for _, l := range legend {
			if f.Box().Overlaps(l.Box()) {
				t.Errorf("label %q overlaps legend entry %q", f.Text, l.Text)
			}
		}
	}
	if got := len(rec.Filter(canvas.OpLink)); got < 1 {
		t.Errorf("links = %d, want at least 1", got)
	}
}

func TestHideLabels(t *testing.T) {
	res := newTestRenderer(testMap(8)).RenderFull(canvas.NewRecorder(600, 600), ViewOptions{HideLabels: true})
	if res.Total != 0 || len(res.FeatureLabels()) != 0 {
		t.Errorf("Total = %d, feature bounds = %d, want none", res.Total, len(res.FeatureLabels()))
	}
}

func TestRenderZoomedReuse(t *testing.T) {
	m := testMap(40)
	r := newTestRenderer(m)

	first := r.RenderZoomed(canvas.NewRecorder(600, 600), 4, 100, ViewOptions{}, false)
	if first.Placed == 0 {
		t.Fatal("no labels in zoomed view")
	}
	again := r.RenderZoomed(canvas.NewRecorder(600, 600), 4, 100, ViewOptions{}, true)
	if !again.Reused {
		t.Error("Reused not set")
	}
	a, b := first.FeatureLabels(), again.FeatureLabels()
	if len(a) != len(b) {
		t.Fatalf("reused %d labels, want %d", len(b), len(a))
	}
	byText := map[string]LabelBounds{}
	for _, l := range a {
		byText[l.Text] = l
	}
	for _, l := range b {
		want, ok := byText[l.Text]
		if !ok {
			t.Errorf("reused label %q was not placed before", l.Text)
			continue
		}
		if math.Abs(l.X-want.X) > 1e-6 || math.Abs(l.Y-want.Y) > 1e-6 {
			t.Errorf("label %q moved from (%v,%v) to (%v,%v)", l.Text, want.X, want.Y, l.X, l.Y)
		}
	}
}

func TestReuseOmitsUnsavedLabels(t *testing.T) {
	m := testMap(40)
	r := newTestRenderer(m)
	r.RenderZoomed(canvas.NewRecorder(600, 600), 10, 100, ViewOptions{}, false)
	moved := r.RenderZoomed(canvas.NewRecorder(600, 600), 10, 600, ViewOptions{}, true)
	if moved.Placed != 0 {
		t.Errorf("placed %d labels away from the saved view, want 0", moved.Placed)
	}
	if moved.Total == 0 {
		t.Error("no candidates around base 600")
	}
}

func TestRendererConcurrentUse(t *testing.T) {
	r := newTestRenderer(testMap(20))
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RenderZoomed(canvas.NewRecorder(400, 400), float64(1+i), 100*i, ViewOptions{}, i%2 == 1)
		}()
	}
	wg.Wait()
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"quality too high", func(c *Config) { c.Quality = 11 }, true},
		{"negative max labels", func(c *Config) { c.MaxLabels = -1 }, true},
		{"negative density", func(c *Config) { c.TickDensity = -2 }, true},
		{"opacity above one", func(c *Config) { c.ShadingOpacity = 1.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
