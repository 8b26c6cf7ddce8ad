// Package pipeline runs the fetch → mount → render chain behind the CLI.
//
// # Stages
//
//  1. Fetch: download the dataset (or read a local file) and decode it
//  2. Mount: build scales, marks, legend and axes with [heatmap.Chart]
//  3. Render: serialize the mounted view to SVG, PNG, PDF or JSON
//
// Fetched bytes and rendered artifacts are cached through [cache.Cache]. A
// fetch or schema failure ends the run before anything is rendered.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{pipeline.FormatSVG, pipeline.FormatJSON}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// Stages can also run one at a time:
//
//	loaded, err := runner.Fetch(ctx, opts)
//	view, err := runner.Mount(ctx, loaded, opts)
//	artifacts, err := runner.Render(ctx, loaded, view, opts)
package pipeline

import (
	"strings"
	"time"

	"github.com/matzehuels/thermogrid/pkg/cache"
	"github.com/matzehuels/thermogrid/pkg/dataset"
	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/heatmap"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options configures a pipeline run.
type Options struct {
	// Source. Input, when set, takes precedence over URL.
	URL     string
	Input   string
	Timeout time.Duration
	Headers map[string]string
	Refresh bool // bypass the dataset cache

	// Chart configuration, normally started from heatmap.DefaultOptions.
	Chart heatmap.Options

	// Render options
	Formats  []string
	Tooltips bool    // SVG hover script and tooltip element
	Scale    float64 // PNG zoom factor
}

// Result holds the outputs of Execute.
type Result struct {
	Dataset     dataset.Dataset
	DatasetHash string
	View        *heatmap.View
	Artifacts   map[string][]byte
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats records sizes and stage timings.
type Stats struct {
	Records    int
	Marks      int
	Bytes      int // raw dataset size
	FetchTime  time.Duration
	MountTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	FetchHit  bool
	RenderHit bool // every requested format came from cache
}

// DefaultOptions returns options that fetch DefaultURL and render an SVG with
// tooltips using the default chart configuration.
func DefaultOptions() Options {
	return Options{
		URL:      dataset.DefaultURL,
		Timeout:  dataset.DefaultTimeout,
		Chart:    heatmap.DefaultOptions(),
		Formats:  []string{FormatSVG},
		Tooltips: true,
	}
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks every entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// SetDefaults fills zero-valued fields. Boolean fields and the tooltip's
// vertical offset are left alone because zero is a meaningful value for them;
// callers that want their defaults must start from DefaultOptions. A zero
// horizontal offset is always filled since it would cover the cell.
func (o *Options) SetDefaults() {
	if o.URL == "" && o.Input == "" {
		o.URL = dataset.DefaultURL
	}
	if o.Timeout <= 0 {
		o.Timeout = dataset.DefaultTimeout
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}

	def := heatmap.DefaultOptions()
	c := &o.Chart
	if c.Frame.Width == 0 {
		c.Frame.Width = def.Frame.Width
	}
	if c.Frame.Height == 0 {
		c.Frame.Height = def.Frame.Height
	}
	if c.CellWidth == 0 {
		c.CellWidth = def.CellWidth
	}
	if c.XTicks == 0 {
		c.XTicks = def.XTicks
	}
	if c.Color.Palette == "" {
		c.Color.Palette = def.Color.Palette
	}
	if c.Legend.Buckets == 0 {
		c.Legend.Buckets = def.Legend.Buckets
	}
	if c.Legend.Width == 0 {
		c.Legend.Width = def.Legend.Width
	}
	if c.Legend.MaxTicks == 0 {
		c.Legend.MaxTicks = def.Legend.MaxTicks
	}
	if c.Legend.Unit == "" {
		c.Legend.Unit = def.Legend.Unit
	}
	if c.Tooltip.OffsetX == 0 {
		c.Tooltip.OffsetX = def.Tooltip.OffsetX
	}
	if c.Tooltip.Opacity == 0 {
		c.Tooltip.Opacity = def.Tooltip.Opacity
	}
	if c.Tooltip.Unit == "" {
		c.Tooltip.Unit = c.Legend.Unit
	}
}

// Source returns the file path or URL the dataset is read from.
func (o *Options) Source() string {
	if o.Input != "" {
		return o.Input
	}
	return o.URL
}

// IsFile reports whether the dataset comes from a local file.
func (o *Options) IsFile() bool { return o.Input != "" }

// ValidateForFetch checks the dataset source.
func (o *Options) ValidateForFetch() error {
	o.SetDefaults()
	if o.IsFile() {
		return errors.ValidatePath(o.Input)
	}
	return errors.ValidateURL(strings.TrimSpace(o.URL))
}

// ValidateForRender checks the chart and output options.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return o.Chart.Validate()
}

// ArtifactKeyOpts returns the cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Palette:     o.Chart.Color.Palette,
		Reverse:     o.Chart.Color.Reverse,
		Width:       o.Chart.Frame.Width,
		Height:      o.Chart.Frame.Height,
		CellWidth:   o.Chart.CellWidth,
		XTicks:      o.Chart.XTicks,
		Buckets:     o.Chart.Legend.Buckets,
		LegendWidth: o.Chart.Legend.Width,
		LegendTicks: o.Chart.Legend.MaxTicks,
		Unit:        o.Chart.Legend.Unit,
		OffsetX:     o.Chart.Tooltip.OffsetX,
		OffsetY:     o.Chart.Tooltip.OffsetY,
		Opacity:     o.Chart.Tooltip.Opacity,
	}
	// Raster and JSON output never carry tooltips.
	if format == FormatSVG {
		k.Tooltips = o.Tooltips
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
