package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pubfig/pkg/buildinfo"
	"github.com/matzehuels/pubfig/pkg/cache"
	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/observability"
	"github.com/matzehuels/pubfig/pkg/style"
)

// Runner encapsulates pipeline execution with caching.
// The CLI and the server both use it so caching behaves the same way.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete load → build → render → write pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	in, err := load(ctx, opts)
	result.Outcome = in.outcome
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Points = in.outcome.Series.Len()

	// Stage 2: Build
	buildStart := time.Now()
	fig, err := Build(ctx, opts.Kind, in.data, opts.Labels)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", opts.Kind, err)
	}
	result.Stats.BuildTime = time.Since(buildStart)

	// Stage 3: Render
	key := r.Keyer.ArtifactKey(in.digest, cache.ArtifactKeyOpts{
		Kind:    string(opts.Kind),
		Format:  opts.Config.OutputFormat(),
		Profile: quickProfile{Config: cacheProfile(opts.Config), Labels: opts.Labels, Degree: opts.FitDegree},
		Version: buildinfo.Version,
	})
	if err := r.render(ctx, key, fig, opts.Config, opts.Refresh, result); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	// Stage 4: Write
	if !opts.NoWrite {
		if err := chart.WriteFile(opts.Config.Output, result.Artifact); err != nil {
			return nil, err
		}
		result.Path = opts.Config.Output
	}

	r.Logger.Info("rendered figure",
		"kind", opts.Kind,
		"data", in.outcome.Label(),
		"points", result.Stats.Points,
		"bytes", result.Stats.Bytes,
		"cached", result.CacheHit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// quickProfile is everything besides the data that shapes a Quick figure.
type quickProfile struct {
	Config style.RenderConfig `json:"config"`
	Labels chart.Labels       `json:"labels"`
	Degree int                `json:"degree"`
}

// RenderFigure renders a ready-made figure, such as a gallery entry, and
// writes it to cfg.Output. name identifies the figure in the cache; it
// must change whenever the figure's content does.
func (r *Runner) RenderFigure(ctx context.Context, name string, fig chart.Figure, cfg style.RenderConfig, refresh bool) (*Result, error) {
	res, err := r.EncodeFigure(ctx, name, fig, cfg, refresh)
	if err != nil {
		return nil, err
	}
	if err := chart.WriteFile(cfg.Output, res.Artifact); err != nil {
		return nil, err
	}
	res.Path = cfg.Output
	r.Logger.Info("rendered figure",
		"name", name,
		"bytes", res.Stats.Bytes,
		"cached", res.CacheHit,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// EncodeFigure is RenderFigure without writing a file.
func (r *Runner) EncodeFigure(ctx context.Context, name string, fig chart.Figure, cfg style.RenderConfig, refresh bool) (*Result, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "figure name is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := r.Keyer.ArtifactKey(name, cache.ArtifactKeyOpts{
		Kind:    "figure",
		Format:  cfg.OutputFormat(),
		Profile: cacheProfile(cfg),
		Version: buildinfo.Version,
	})
	res := &Result{}
	if err := r.render(ctx, key, fig, cfg, refresh, res); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return res, nil
}

// render fills res.Artifact from the cache or by encoding fig. Cache
// failures are logged and otherwise ignored: the cache never decides
// whether a render succeeds.
func (r *Runner) render(ctx context.Context, key string, fig chart.Figure, cfg style.RenderConfig, refresh bool, res *Result) error {
	start := time.Now()
	defer func() { res.Stats.RenderTime = time.Since(start) }()

	if !refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Debug("cache read failed", "err", err)
		case hit:
			observability.Cache().OnCacheHit(ctx, "artifact")
			res.Artifact, res.CacheHit = data, true
			res.Stats.Bytes = len(data)
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	data, err := Render(ctx, fig, cfg)
	if err != nil {
		return err
	}
	res.Artifact = data
	res.Stats.Bytes = len(data)

	if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
		r.Logger.Debug("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return nil
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
