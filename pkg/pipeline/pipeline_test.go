package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/errors"
	"github.com/matzehuels/cgmap/pkg/observability"
	"github.com/matzehuels/cgmap/pkg/render"
)

const testScene = `{
  "title": "pTest",
  "sequence_length": 3000,
  "rings": [{"strand": "forward", "thickness": 10, "show_labels": true}],
  "features": [
    {"ring": 0, "name": "a", "ranges": [{"start": 100, "stop": 400, "decoration": "clockwise-arrow", "color": "#36c", "label": "geneA"}]},
    {"ring": 0, "name": "b", "ranges": [{"start": 900, "stop": 1300, "color": "#c63", "label": "geneB"}]},
    {"ring": 0, "name": "c", "ranges": [{"start": 2500, "stop": 200, "color": "#3c6", "label": "geneC", "hyperlink": "https://example.org/c"}]}
  ]
}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"negative width", Options{Width: -1}, true},
		{"huge canvas", Options{Height: MaxCanvas + 1}, true},
		{"negative zoom", Options{Zoom: -2}, true},
		{"negative center", Options{Center: -5}, true},
		{"bad format", Options{Formats: []string{"gif"}}, true},
		{"bad quality", Options{Render: render.Config{Quality: 99}}, true},
		{"zoomed", Options{Zoom: 40, Center: 1500}, false},
		{"nan width", Options{Width: math.NaN()}, true},
		{"nan zoom", Options{Zoom: math.NaN()}, true},
		{"huge scale", Options{Scale: 1e12, Formats: []string{FormatPNG}}, true},
		{"max scale", Options{Scale: MaxScale, Formats: []string{FormatPNG}}, false},
		{"nan scale", Options{Scale: math.NaN()}, true},
		{"png area", Options{Width: MaxCanvas, Height: MaxCanvas, Formats: []string{FormatPNG}}, true},
		{"svg ignores area", Options{Width: MaxCanvas, Height: MaxCanvas, Formats: []string{FormatSVG}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForRender() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	opts := Options{}
	opts.SetViewDefaults()
	opts.SetRenderDefaults()

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight || opts.Zoom != 1 {
		t.Errorf("view defaults = %gx%g zoom %g", opts.Width, opts.Height, opts.Zoom)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Render.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Render.Seed)
	}
	if opts.Render.Quality != render.DefaultConfig().Quality {
		t.Errorf("Quality should default, got %d", opts.Render.Quality)
	}

	random := Options{Randomize: true}
	random.SetRenderDefaults()
	if random.Render.Seed != 0 {
		t.Errorf("Randomize should keep seed 0, got %d", random.Render.Seed)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Zoom: 3}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts.Render
	opts.Render.Quality = 99 // invalid, but validation must not run again
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if first.Seed != opts.Render.Seed {
		t.Error("Seed changed on second call")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if k := opts.ArtifactKeyOpts(FormatSVG); k.Scale != 0 {
		t.Errorf("svg key should ignore scale, got %g", k.Scale)
	}
	if k := opts.ArtifactKeyOpts(FormatPNG); k.Scale != 3 {
		t.Errorf("png key scale = %g, want 3", k.Scale)
	}
	a := opts.ArtifactKeyOpts(FormatSVG).ConfigHash
	opts.Render.ConvertInner = !opts.Render.ConvertInner
	if a == opts.ArtifactKeyOpts(FormatSVG).ConfigHash {
		t.Error("config hash ignores renderer settings")
	}
}

func TestLoadScene(t *testing.T) {
	ctx := context.Background()
	sc, err := LoadScene(ctx, []byte(testScene), nil)
	if err != nil {
		t.Fatalf("LoadScene() error: %v", err)
	}
	if sc.Map.Title != "pTest" || len(sc.Map.Features) != 3 || len(sc.Hash) != 64 {
		t.Errorf("scene = %q, %d features, hash %q", sc.Map.Title, len(sc.Map.Features), sc.Hash)
	}

	if _, err := LoadScene(ctx, []byte(`{"title": 1}`), nil); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad document error = %v", err)
	}

	dir := t.TempDir()
	_, err = LoadSceneFile(ctx, filepath.Join(dir, "missing.json"), nil)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	path := filepath.Join(dir, "scene.json")
	if err := os.WriteFile(path, []byte(testScene), 0o644); err != nil {
		t.Fatal(err)
	}
	if sc2, err := LoadSceneFile(ctx, path, nil); err != nil || sc2.Hash != sc.Hash {
		t.Errorf("LoadSceneFile() = %v, %v", sc2, err)
	}
}

func TestExecuteAllFormats(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), []byte(testScene), Options{
		Width:   600,
		Height:  500,
		Formats: []string{FormatJSON, FormatSVG, FormatPNG},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !bytes.HasPrefix(res.Artifacts[FormatSVG], []byte("<?xml")) {
		t.Errorf("svg artifact starts %q", res.Artifacts[FormatSVG][:min(20, len(res.Artifacts[FormatSVG]))])
	}
	if !bytes.HasPrefix(res.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}

	var labels struct {
		Width  float64 `json:"width"`
		Total  int     `json:"total"`
		Placed int     `json:"placed"`
		Labels []struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"labels"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &labels); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if labels.Width != 600 || labels.Total != 3 || labels.Placed == 0 {
		t.Errorf("labels header = %+v", labels)
	}
	if res.Render == nil || res.Render.Placed != labels.Placed {
		t.Errorf("Render result does not match the label export")
	}
	if res.CacheInfo.RenderHit {
		t.Error("first run cannot hit the cache")
	}
}

func TestExecuteLabelsOnly(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), []byte(testScene), Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Artifacts) != 1 || res.Render == nil || res.Render.Total != 3 {
		t.Errorf("artifacts %d, render %+v", len(res.Artifacts), res.Render)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	first, err := runner.Execute(ctx, []byte(testScene), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(ctx, []byte(testScene), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit || second.Render != nil {
		t.Errorf("second run: hit=%v render=%v", second.CacheInfo.RenderHit, second.Render)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	refreshed := opts
	refreshed.Refresh = true
	third, err := runner.Execute(ctx, []byte(testScene), refreshed)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("Refresh should bypass the cache")
	}

	zoomed := opts
	zoomed.Zoom = 8
	fourth, err := runner.Execute(ctx, []byte(testScene), zoomed)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("a different zoom must not hit the cache")
	}
}

func TestRenderWithReuse(t *testing.T) {
	ctx := context.Background()
	sc, err := LoadScene(ctx, []byte(testScene), nil)
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, nil, nil)
	rd := render.New(sc.Map, render.WithConfig(render.Config{Seed: 7}))

	_, full, err := runner.RenderWith(ctx, rd, Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	_, zoomed, err := runner.RenderWith(ctx, rd, Options{Zoom: 2, Center: 250, Reuse: true, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !zoomed.Reused || full.Reused {
		t.Errorf("reused flags: full %v, zoomed %v", full.Reused, zoomed.Reused)
	}
}

type countingRenderHooks struct {
	observability.NoopRenderHooks
	mu       sync.Mutex
	starts   int
	complete []observability.LabelStats
}

func (h *countingRenderHooks) OnRenderStart(context.Context, string, []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *countingRenderHooks) OnRenderComplete(_ context.Context, _ string, s observability.LabelStats, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.complete = append(h.complete, s)
}

func TestRenderHooks(t *testing.T) {
	hooks := &countingRenderHooks{}
	observability.SetRenderHooks(hooks)
	defer observability.Reset()

	runner := NewRunner(nil, nil, nil)
	if _, err := runner.Execute(context.Background(), []byte(testScene), Options{}); err != nil {
		t.Fatal(err)
	}
	if hooks.starts != 1 || len(hooks.complete) != 1 || hooks.complete[0].Total != 3 {
		t.Errorf("hooks saw %d starts, %+v", hooks.starts, hooks.complete)
	}
}
