package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/tagcloud/pkg/cache"
	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so caching logic lives in one place.
//
// The Runner keeps no per-run state, so multiple goroutines can share one
// Runner with different options. Concurrent requests for the same layout
// key are computed once. A Runner must not be copied after first use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	flight singleflight.Group
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

// Execute runs layout and render with caching.
func (r *Runner) Execute(ctx context.Context, tags []cloud.Tag, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.Logger.Debug("running pipeline", "tags", len(tags), "options", opts.String())

	result := &Result{
		TagsHash: HashTags(tags),
	}
	result.Stats.TagCount = len(tags)

	// Stage 1: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, tags, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"tags", len(l.Placements),
		"overlaps", l.Stats.OverlappingPairs,
		"out_of_bounds", l.Stats.OutOfBounds,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes a layout with caching and reports whether it
// came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, tags []cloud.Tag, opts Options) (document.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return document.Layout{}, false, err
	}

	cacheKey := r.Keyer.LayoutKey(HashTags(tags), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, cacheKey, keyTypeLayout); ok {
			if l, err := document.UnmarshalLayout(cached); err == nil {
				return l, true, nil
			}
			r.Logger.Debug("discarding unreadable cached layout", "key", cacheKey)
		}
	}

	v, err, shared := r.flight.Do(cacheKey, func() (any, error) {
		hooks := observability.Pipeline()
		hooks.OnLayoutStart(ctx, len(tags), opts.Radius)
		start := time.Now()
		l, err := ComputeLayout(tags, opts)
		hooks.OnLayoutComplete(ctx, l.Result().Stats, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if data, err := document.MarshalLayout(l); err == nil {
			r.store(ctx, cacheKey, keyTypeLayout, data, cache.LayoutTTL)
		}
		return l, nil
	})
	if err != nil {
		return document.Layout{}, false, err
	}
	if shared {
		r.Logger.Debug("shared in-flight layout", "key", cacheKey)
	}
	return v.(document.Layout), false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, tags []cloud.Tag, opts Options) (document.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, tags, opts)
	return l, err
}

// RenderWithCacheInfo renders artifacts with caching and reports whether
// every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l document.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutHash, err := layoutKeyHash(l)
	if err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, ok := r.lookup(ctx, key, keyTypeArtifact)
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, key, keyTypeArtifact, data, cache.ArtifactTTL)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l document.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// HashTags returns the content hash of a tag set. Input order is part of
// the hash because it breaks ties between equal weights.
func HashTags(tags []cloud.Tag) string {
	data, err := document.MarshalTags(document.FromTags(tags))
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// lookup reads a cache entry. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes a cache entry. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// layoutKeyHash hashes a layout for artifact keys. Timing varies between
// identical runs, so it is left out.
func layoutKeyHash(l document.Layout) (string, error) {
	l.Stats.ElapsedMS = 0
	data, err := document.MarshalLayout(l)
	if err != nil {
		return "", fmt.Errorf("serialize layout for cache key: %w", err)
	}
	return cache.Hash(data), nil
}
