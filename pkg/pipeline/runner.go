package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/masktower/pkg/buildinfo"
	"github.com/matzehuels/masktower/pkg/cache"
	"github.com/matzehuels/masktower/pkg/config"
	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/observability"
	"github.com/matzehuels/masktower/pkg/sink"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer selects the DefaultKeyer, a nil
// cache disables caching.
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
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Load reads and validates the layout named by opts and returns it with
// the hash of its bytes.
func (r *Runner) Load(ctx context.Context, opts Options) (*config.Layout, string, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", err
	}
	path := opts.LayoutPath
	observability.Pipeline().OnLoadStart(ctx, path)
	start := time.Now()

	l, hash, err := load(opts)
	arrays := 0
	if l != nil {
		arrays = len(l.Arrays)
	}
	observability.Pipeline().OnLoadComplete(ctx, path, arrays, time.Since(start), err)
	return l, hash, err
}

func load(opts Options) (*config.Layout, string, error) {
	if len(opts.Layout) > 0 {
		l, err := config.Parse(opts.Layout, opts.LayoutFormat)
		return l, cache.Hash(opts.Layout), err
	}
	data, err := os.ReadFile(opts.LayoutPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", opts.LayoutPath)
		}
		return nil, "", err
	}
	l, err := config.ParseFile(opts.LayoutPath, data)
	return l, cache.Hash(data), err
}

// Execute runs load, compile and render, serving artifacts from the cache
// where possible.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{RunID: uuid.NewString(), Artifacts: make(map[string][]byte)}
	logger := r.Logger.With("run", res.RunID[:8])

	start := time.Now()
	layout, hash, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Layout, res.LayoutHash = layout, hash
	res.Stats.LoadTime = time.Since(start)
	logger.Debug("loaded layout", "name", layout.Name, "arrays", len(layout.Arrays), "hash", hash[:12])

	keyOpts := cache.ArtifactKeyOpts{
		Version:     buildinfo.CacheVersion(),
		StrictNames: opts.StrictNames || layout.StrictNames,
		Detailed:    opts.Detailed,
	}

	if !opts.Refresh {
		if r.fromCache(ctx, hash, keyOpts, opts.Formats, res) {
			logger.Info("served from cache", "formats", opts.Formats)
			return res, nil
		}
	}

	start = time.Now()
	compiled, err := Compile(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	res.Compiled = compiled
	res.Stats.CompileTime = time.Since(start)
	res.Summary = sink.Summarize(compiled.Library)
	res.Summary.RunID = res.RunID
	res.Summary.Arrays = compiled.Arrays
	res.Stats.Cells = compiled.Library.Len()
	for _, a := range compiled.Arrays {
		res.Stats.Placed += a.Placed
	}
	logger.Info("compiled layout",
		"cells", res.Stats.Cells,
		"placed", res.Stats.Placed,
		"skipped_duplicates", compiled.Library.Skipped(),
		"duration", res.Stats.CompileTime)

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start = time.Now()
	artifacts, err := Render(ctx, compiled, res.Summary, opts.Formats, opts)
	res.Stats.RenderTime = time.Since(start)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, res.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	logger.Info("rendered outputs", "formats", opts.Formats, "duration", res.Stats.RenderTime)

	r.store(ctx, hash, keyOpts, res)
	return res, nil
}

// fromCache fills res when every format and the summary are cached.
func (r *Runner) fromCache(ctx context.Context, hash string, keyOpts cache.ArtifactKeyOpts, formats []string, res *Result) bool {
	raw, ok := r.get(ctx, r.Keyer.SummaryKey(hash, keyOpts), "summary")
	if !ok {
		return false
	}
	var summary sink.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return false
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, f := range formats {
		keyOpts.Format = f
		data, ok := r.get(ctx, r.Keyer.ArtifactKey(hash, keyOpts), f)
		if !ok {
			return false
		}
		artifacts[f] = data
	}

	res.Summary = summary
	res.Artifacts = artifacts
	res.Stats.Cells = len(summary.Cells)
	for _, a := range summary.Arrays {
		res.Stats.Placed += a.Placed
	}
	res.CacheInfo = CacheInfo{Hits: len(artifacts), RenderHit: true}
	return true
}

func (r *Runner) get(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes the summary and every artifact. Failures are logged, not
// returned: the run itself succeeded.
func (r *Runner) store(ctx context.Context, hash string, keyOpts cache.ArtifactKeyOpts, res *Result) {
	r.set(ctx, r.Keyer.SummaryKey(hash, keyOpts), "summary", mustJSON(res.Summary))
	for f, data := range res.Artifacts {
		keyOpts.Format = f
		r.set(ctx, r.Keyer.ArtifactKey(hash, keyOpts), f, data)
	}
}

func (r *Runner) set(ctx context.Context, key, keyType string, data []byte) {
	if data == nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
