package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/config"
	"github.com/matzehuels/cgmap/pkg/errors"
	"github.com/matzehuels/cgmap/pkg/httputil"
	"github.com/matzehuels/cgmap/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command. Only
// flags the user set override the settings file.
type renderFlags struct {
	output  string
	formats string

	width, height  float64
	zoom           float64
	center         int
	backboneRadius float64
	scale          float64

	quality      int
	seed         uint64
	maxLabels    int
	randomize    bool
	convertInner bool

	hideLabels  bool
	hideRuler   bool
	hideLegends bool
	hideTitle   bool

	noCache bool
	refresh bool
}

// renderCommand creates the render command for drawing scene documents.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [scene.json | URL]",
		Short: "Render a scene document to SVG, PNG or label JSON",
		Long: `Render a scene document.

The scene may be a local file or an http(s) URL; downloads are cached.
Without --zoom the whole map is drawn. With --zoom greater than 1 the view
is magnified around --center, a base position on the sequence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := cfg.PipelineOptions()
			flags.apply(cmd.Flags().Changed, &opts)
			return c.runRender(cmd.Context(), args[0], flags, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	f.Float64Var(&flags.width, "width", pipeline.DefaultWidth, "canvas width")
	f.Float64Var(&flags.height, "height", pipeline.DefaultHeight, "canvas height")
	f.Float64VarP(&flags.zoom, "zoom", "z", 1, "magnification; values above 1 draw a zoomed view")
	f.IntVarP(&flags.center, "center", "c", 0, "base position the zoomed view is centred on")
	f.Float64Var(&flags.backboneRadius, "backbone-radius", 0, "backbone radius (default from the scene style)")
	f.Float64Var(&flags.scale, "scale", 0, "PNG pixel density")
	f.IntVarP(&flags.quality, "quality", "q", 0, "label layout effort, 1-10")
	f.Uint64Var(&flags.seed, "seed", pipeline.DefaultSeed, "label layout seed")
	f.IntVar(&flags.maxLabels, "max-labels", 0, "cap on labels considered (0 for none)")
	f.BoolVar(&flags.randomize, "randomize", false, "shuffle labels differently on every run")
	f.BoolVar(&flags.convertInner, "convert-inner", false, "move clashing inner labels outside the map")
	f.BoolVar(&flags.hideLabels, "hide-labels", false, "omit feature labels")
	f.BoolVar(&flags.hideRuler, "hide-ruler", false, "omit the ruler")
	f.BoolVar(&flags.hideLegends, "hide-legends", false, "omit legends")
	f.BoolVar(&flags.hideTitle, "hide-title", false, "omit title and caption")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the artifact cache")
	f.BoolVar(&flags.refresh, "refresh", false, "ignore cached artifacts and render again")

	return cmd
}

// apply copies the flags the user set onto opts.
func (f renderFlags) apply(changed func(string) bool, opts *pipeline.Options) {
	if f.formats != "" {
		opts.Formats = parseFormats(f.formats)
	}
	set := func(name string, fn func()) {
		if changed(name) {
			fn()
		}
	}
	set("width", func() { opts.Width = f.width })
	set("height", func() { opts.Height = f.height })
	set("zoom", func() { opts.Zoom = f.zoom })
	set("center", func() { opts.Center = f.center })
	set("backbone-radius", func() { opts.BackboneRadius = f.backboneRadius })
	set("scale", func() { opts.Scale = f.scale })
	set("quality", func() { opts.Render.Quality = f.quality })
	set("seed", func() { opts.Render.Seed = f.seed })
	set("max-labels", func() { opts.Render.MaxLabels = f.maxLabels })
	set("randomize", func() { opts.Randomize = f.randomize })
	set("convert-inner", func() { opts.Render.ConvertInner = f.convertInner })
	set("hide-labels", func() { opts.HideLabels = f.hideLabels })
	set("hide-ruler", func() { opts.HideRuler = f.hideRuler })
	set("hide-legends", func() { opts.HideLegends = f.hideLegends })
	set("hide-title", func() { opts.HideTitle = f.hideTitle })
	opts.Refresh = f.refresh
}

// runRender loads the scene, renders every requested format and writes the
// files next to the input unless --output says otherwise.
func (c *CLI) runRender(ctx context.Context, input string, flags renderFlags, cfg config.File, opts pipeline.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sc, err := c.loadScene(ctx, input, runner, flags.refresh)
	if err != nil {
		return err
	}
	c.Logger.Debug("Loaded scene", "features", len(sc.Map.Features), "length", sc.Map.SequenceLength)
	if httputil.IsURL(input) {
		input = path.Base(input)
	}

	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s", filepath.Base(input)))
	spin.Start()
	res, err := runner.ExecuteScene(ctx, sc, opts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("Rendered " + strings.Join(opts.Formats, ", "))

	paths := outputPaths(flags.output, input, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeOutput(paths[format], res.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", StyleHighlight.Render(titleOr(sc, input)))
	printRenderStats(res)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	if res.Render != nil && res.Render.Dropped > 0 {
		printWarning("%d of %d labels did not fit", res.Render.Dropped, res.Render.Total)
		printNextStep("Try a zoomed view", fmt.Sprintf("%s render %s --zoom 4 --center %d", appName, input, sc.Map.SequenceLength/2))
	}
	return nil
}

// loadScene reads a scene from a file, or downloads it when input is an
// http(s) URL. Downloads share the runner's cache.
func (c *CLI) loadScene(ctx context.Context, input string, runner *pipeline.Runner, refresh bool) (*pipeline.Scene, error) {
	if !httputil.IsURL(input) {
		return pipeline.LoadSceneFile(ctx, input, c.Logger)
	}
	client := httputil.NewClient(
		httputil.WithCache(runner.Cache, cache.TTLScene),
		httputil.WithLogger(c.Logger),
	)
	data, err := client.Fetch(ctx, input, refresh)
	if err != nil {
		return nil, err
	}
	sc, err := pipeline.LoadScene(ctx, data, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return sc, nil
}

func titleOr(sc *pipeline.Scene, input string) string {
	if sc.Map.Title != "" {
		return sc.Map.Title
	}
	return filepath.Base(input)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension, it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its file. A single format with an
// explicit --output is written exactly there. Label JSON gets a
// ".labels.json" suffix so it never overwrites a scene document.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		if f == pipeline.FormatJSON {
			paths[f] = base + ".labels.json"
			continue
		}
		paths[f] = base + "." + f
	}
	return paths
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
