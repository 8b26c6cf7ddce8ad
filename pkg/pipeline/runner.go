package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thermogrid/pkg/cache"
	"github.com/matzehuels/thermogrid/pkg/dataset"
	"github.com/matzehuels/thermogrid/pkg/heatmap"
	"github.com/matzehuels/thermogrid/pkg/observability"
)

// Runner executes pipeline stages with caching.
//
// A Runner holds no per-run state, so one Runner can serve concurrent runs
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// Loaded is a decoded dataset together with the hash of its source bytes.
type Loaded struct {
	Dataset dataset.Dataset
	Hash    string
	Source  string
	Bytes   int
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects DefaultKeyer and a nil logger selects log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs fetch → mount → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()
	result := &Result{}

	// Stage 1: fetch
	source := opts.Source()
	hooks.OnFetchStart(ctx, source)
	start := time.Now()
	loaded, hit, err := r.FetchWithCacheInfo(ctx, opts)
	result.Stats.FetchTime = time.Since(start)
	if err != nil {
		hooks.OnFetchComplete(ctx, source, 0, result.Stats.FetchTime, err)
		return nil, fmt.Errorf("fetch: %w", err)
	}
	hooks.OnFetchComplete(ctx, source, loaded.Dataset.Len(), result.Stats.FetchTime, nil)
	result.Dataset = loaded.Dataset
	result.DatasetHash = loaded.Hash
	result.Stats.Records = loaded.Dataset.Len()
	result.Stats.Bytes = loaded.Bytes
	result.CacheInfo.FetchHit = hit

	r.Logger.Info("loaded dataset",
		"records", result.Stats.Records,
		"cached", hit,
		"duration", result.Stats.FetchTime)

	// Stage 2: mount
	hooks.OnMountStart(ctx, result.Stats.Records)
	start = time.Now()
	view, err := r.Mount(ctx, loaded, opts)
	result.Stats.MountTime = time.Since(start)
	if err != nil {
		hooks.OnMountComplete(ctx, 0, result.Stats.MountTime, err)
		return nil, fmt.Errorf("mount: %w", err)
	}
	hooks.OnMountComplete(ctx, len(view.Marks), result.Stats.MountTime, nil)
	result.View = view
	result.Stats.Marks = len(view.Marks)

	r.Logger.Info("mounted chart",
		"marks", result.Stats.Marks,
		"buckets", len(view.Legend.Buckets),
		"duration", result.Stats.MountTime)

	// Stage 3: render
	hooks.OnRenderStart(ctx, opts.Formats)
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, loaded, view, opts)
	result.Stats.RenderTime = time.Since(start)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo loads the dataset and reports whether the raw bytes came
// from cache. Only network sources are cached; local files are always read.
// Bytes that fail to decode are never written to the cache.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (*Loaded, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}
	source := opts.Source()

	if opts.IsFile() {
		raw, err := dataset.ReadFile(opts.Input)
		if err != nil {
			return nil, false, err
		}
		loaded, err := decodeLoaded(source, raw)
		return loaded, false, err
	}

	key := r.Keyer.DatasetKey(source)
	if !opts.Refresh {
		if raw, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if loaded, err := decodeLoaded(source, raw); err == nil {
				return loaded, true, nil
			}
			// Undecodable entry: fall through and refetch.
			r.Logger.Debug("discarding cached dataset", "key", key)
		}
	}

	client := dataset.NewClient(opts.Timeout, opts.Headers)
	raw, err := client.FetchRaw(ctx, source)
	if err != nil {
		return nil, false, err
	}
	loaded, err := decodeLoaded(source, raw)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, raw, cache.TTLDataset); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
	}
	return loaded, false, nil
}

// Fetch calls FetchWithCacheInfo and drops the cache hit flag.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*Loaded, error) {
	loaded, _, err := r.FetchWithCacheInfo(ctx, opts)
	return loaded, err
}

// Mount builds the chart view for loaded. An empty dataset mounts a
// degenerate chart and logs a warning.
func (r *Runner) Mount(_ context.Context, loaded *Loaded, opts Options) (*heatmap.View, error) {
	opts.SetDefaults()
	chart, err := heatmap.NewChart(opts.Chart)
	if err != nil {
		return nil, err
	}
	if loaded.Dataset.Empty() {
		r.Logger.Warn("dataset has no records; rendering an empty grid", "source", loaded.Source)
	}
	if err := chart.Mount(loaded.Dataset); err != nil {
		return nil, err
	}
	view, err := chart.View()
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("chart mounted", "id", view.ID, "title", view.Title)
	return view, nil
}

// RenderWithCacheInfo renders every requested format and reports whether all
// of them came from cache. Artifacts are keyed by the dataset hash plus the
// options that affect output.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, loaded *Loaded, view *heatmap.View, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(loaded.Hash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(view, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(loaded.Hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return rendered, false, nil
}

// Render calls RenderWithCacheInfo and drops the cache hit flag.
func (r *Runner) Render(ctx context.Context, loaded *Loaded, view *heatmap.View, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, loaded, view, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func decodeLoaded(source string, raw []byte) (*Loaded, error) {
	ds, err := dataset.DecodeBytes(raw)
	if err != nil {
		return nil, err
	}
	return &Loaded{Dataset: ds, Hash: cache.Hash(raw), Source: source, Bytes: len(raw)}, nil
}
