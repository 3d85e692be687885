package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/observability"
	"github.com/matzehuels/cgmap/pkg/render"
)

// cacheWriteDelay is the first backoff step for retried cache writes.
const cacheWriteDelay = 50 * time.Millisecond

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching logic lives in one place.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ArtifactTTL bounds how long rendered artifacts stay cached. Zero
	// means cache.TTLArtifact.
	ArtifactTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the scene document in data and renders it with caching.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	sc, err := LoadScene(ctx, data, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)
	r.Logger.Debug("loaded scene",
		"features", len(sc.Map.Features),
		"length", sc.Map.SequenceLength,
		"duration", loadTime)

	result, err := r.ExecuteScene(ctx, sc, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// ExecuteScene renders an already loaded scene with caching. Cached
// artifacts are used only when every requested format is present and the
// run does not depend on a previous layout.
func (r *Runner) ExecuteScene(ctx context.Context, sc *Scene, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		SceneHash: sc.Hash,
		Stats:     Stats{Features: len(sc.Map.Features)},
	}

	if !opts.Refresh && !opts.Reuse {
		if artifacts, ok := r.cachedArtifacts(ctx, sc.Hash, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			r.Logger.Debug("artifacts from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	rd := render.New(sc.Map, render.WithConfig(opts.Render), render.WithLogger(opts.Logger))
	renderStart := time.Now()
	artifacts, res, err := r.RenderWith(ctx, rd, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Render = res
	result.Stats.RenderTime = time.Since(renderStart)

	if !opts.Reuse {
		r.storeArtifacts(ctx, sc.Hash, opts, artifacts)
	}
	return result, nil
}

// RenderWith draws with an existing renderer and does not touch the
// cache. Servers keep one renderer per view session and call this so
// label reuse sees the previous request.
func (r *Runner) RenderWith(ctx context.Context, rd *render.Renderer, opts Options) (map[string][]byte, *render.Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}

	view := "full"
	if opts.Zoomed() {
		view = "zoomed"
	}
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, view, opts.Formats)
	start := time.Now()

	artifacts, res, err := Render(rd, opts)

	var stats observability.LabelStats
	if res != nil {
		stats = observability.LabelStats{Placed: res.Placed, Dropped: res.Dropped, Total: res.Total, Reused: res.Reused}
	}
	hooks.OnRenderComplete(ctx, view, stats, time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}

	r.Logger.Info("rendered map",
		"formats", opts.Formats,
		"zoom", opts.Zoom,
		"labels", stats.Placed,
		"dropped", stats.Dropped,
		"duration", time.Since(start))
	return artifacts, res, nil
}

func (r *Runner) cachedArtifacts(ctx context.Context, sceneHash string, opts Options) (map[string][]byte, bool) {
	hooks := observability.Cache()
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "err", err)
		}
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		hooks.OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	return artifacts, true
}

// storeArtifacts writes each artifact back. Failures are logged; a
// render never fails because the cache is unavailable.
func (r *Runner) storeArtifacts(ctx context.Context, sceneHash string, opts Options, artifacts map[string][]byte) {
	hooks := observability.Cache()
	ttl := r.ArtifactTTL
	if ttl <= 0 {
		ttl = cache.TTLArtifact
	}
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		err := cache.RetryWithBackoff(ctx, cacheWriteDelay, func() error {
			return r.Cache.Set(ctx, key, data, ttl)
		})
		if err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
