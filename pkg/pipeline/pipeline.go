// Package pipeline provides the load → render → encode pipeline shared by
// the CLI and the map server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Load: decode and validate a JSON scene document
//  2. Render: draw the map once per requested format (SVG, PNG, label JSON)
//
// Every format after the first redraws the labels placed by the first, so
// the SVG, the PNG, and the label bounds of one run always agree.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, sceneJSON, pipeline.Options{
//	    Zoom:    8,
//	    Center:  1200,
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Servers that keep one renderer per view call [Runner.RenderWith] so
// label reuse sees the previous request.
package pipeline

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/errors"
	"github.com/matzehuels/cgmap/pkg/render"
	"github.com/matzehuels/cgmap/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 800.0

	// DefaultSeed fixes label layout so repeated runs produce identical
	// output. Options.Randomize opts out.
	DefaultSeed = uint64(42)

	// MaxCanvas bounds either canvas side.
	MaxCanvas = 20000.0

	// MaxScale bounds the PNG pixel density.
	MaxScale = 4.0

	// MaxPixels bounds the raster size of a PNG, in pixels after scaling.
	MaxPixels = 64 << 20
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// View options
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Zoom   float64 `json:"zoom,omitempty"`
	Center int     `json:"center,omitempty"`
	// Reuse redraws the labels of the previous render of the same renderer.
	Reuse bool `json:"reuse,omitempty"`

	// BackboneRadius overrides the scene style when positive.
	BackboneRadius float64 `json:"backbone_radius,omitempty"`
	HideLabels     bool    `json:"hide_labels,omitempty"`
	HideRuler      bool    `json:"hide_ruler,omitempty"`
	HideLegends    bool    `json:"hide_legends,omitempty"`
	HideTitle      bool    `json:"hide_title,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	// Scale is the PNG pixel density.
	Scale float64 `json:"scale,omitempty"`
	// Randomize leaves a zero seed unset so every run shuffles differently.
	Randomize bool          `json:"randomize,omitempty"`
	Render    render.Config `json:"render"`

	// Refresh skips cached artifacts; fresh output is still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// SceneHash is the content hash of the scene document.
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Render describes the drawn view. It is nil when every artifact came
	// from the cache.
	Render *render.Result

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Features   int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetViewDefaults sets default canvas size and zoom.
func (o *Options) SetViewDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Zoom == 0 {
		o.Zoom = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = sink.DefaultScale
	}
	if o.Render == (render.Config{}) {
		o.Render = render.DefaultConfig()
	}
	if o.Render.Seed == 0 && !o.Randomize {
		o.Render.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetViewDefaults()
	o.SetRenderDefaults()
	if !(o.Width >= 0 && o.Width <= MaxCanvas && o.Height >= 0 && o.Height <= MaxCanvas) {
		return errors.New(errors.ErrCodeInvalidOptions, "canvas %gx%g outside 1..%g", o.Width, o.Height, MaxCanvas)
	}
	if !(o.Zoom >= 0) || math.IsInf(o.Zoom, 1) {
		return errors.New(errors.ErrCodeInvalidOptions, "zoom cannot be negative, got %g", o.Zoom)
	}
	if o.Center < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "center cannot be negative, got %d", o.Center)
	}
	if !(o.Scale > 0 && o.Scale <= MaxScale) {
		return errors.New(errors.ErrCodeInvalidOptions, "scale %g outside (0, %g]", o.Scale, MaxScale)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if slices.Contains(o.Formats, FormatPNG) {
		if px := o.Width * o.Height * o.Scale * o.Scale; px > MaxPixels {
			return errors.New(errors.ErrCodeInvalidOptions, "png of %.0f pixels exceeds %d; lower width, height or scale", px, MaxPixels)
		}
	}
	if err := o.Render.Validate(); err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	return nil
}

// Zoomed reports whether the run draws a magnified view.
func (o *Options) Zoomed() bool {
	return o.Zoom > 1
}

// ViewOptions returns the per-render switches.
func (o *Options) ViewOptions() render.ViewOptions {
	return render.ViewOptions{
		BackboneRadius: o.BackboneRadius,
		HideLabels:     o.HideLabels,
		HideRuler:      o.HideRuler,
		HideLegends:    o.HideLegends,
		HideTitle:      o.HideTitle,
	}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	cfgHash, _ := cache.HashJSON(struct {
		Render         render.Config
		BackboneRadius float64
		HideTitle      bool
	}{o.Render, o.BackboneRadius, o.HideTitle})
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Height:      o.Height,
		Zoom:        o.Zoom,
		Center:      o.Center,
		Quality:     o.Render.Quality,
		Seed:        o.Render.Seed,
		HideLabels:  o.HideLabels,
		HideRuler:   o.HideRuler,
		HideLegends: o.HideLegends,
		ConfigHash:  cfgHash,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
