package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thermogrid/pkg/heatmap"
	"github.com/matzehuels/thermogrid/pkg/pipeline"
)

// defaultBase is the output base name when neither -o nor --input names one.
const defaultBase = "heatmap"

// sourceFlags are shared by every command that reads a dataset.
type sourceFlags struct {
	url      string
	input    string
	noCache  bool
	refresh  bool
	redisURL string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.url, "url", "", "dataset URL (default: the freeCodeCamp global temperature dataset)")
	cmd.Flags().StringVarP(&s.input, "input", "i", "", "read the dataset from a local JSON file")
	cmd.Flags().BoolVar(&s.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&s.refresh, "refresh", false, "refetch the dataset even if cached")
	cmd.Flags().StringVar(&s.redisURL, "redis-url", "", "use a Redis cache (or set "+envRedisURL+")")
	cmd.MarkFlagsMutuallyExclusive("url", "input")
}

func (s *sourceFlags) apply(opts *pipeline.Options) {
	if s.url != "" {
		opts.URL = s.url
	}
	opts.Input = s.input
	opts.Refresh = s.refresh
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src        sourceFlags
		formatsStr string
		output     string
		noTooltips bool
	)
	opts := pipeline.DefaultOptions()
	ch := &opts.Chart

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the temperature heatmap to SVG, PNG, PDF or JSON",
		Long: `Render the temperature heatmap.

The dataset is fetched (or read with --input), mounted into a chart with one
cell per monthly record, and written in each requested format. SVG output
carries hover tooltips unless --no-tooltips is set; PNG and PDF need
rsvg-convert on PATH.

Fetched datasets and rendered outputs are cached locally for faster
subsequent runs.`,
		Example: `  thermogrid render
  thermogrid render -f svg,png -o out/heatmap
  thermogrid render --input data.json --palette viridis --reverse=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			opts.Tooltips = !noTooltips
			c.cfg().applyTo(&opts, cmd.Flags())
			src.apply(&opts)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			if output == "-" && len(opts.Formats) > 1 {
				return fmt.Errorf("cannot write %d formats to stdout", len(opts.Formats))
			}
			cs := c.cacheSettingsFrom(cmd, src.noCache, src.redisURL)
			return c.runRender(cmd.Context(), opts, output, cs)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&ch.Color.Palette, "palette", ch.Color.Palette, "color palette: "+strings.Join(heatmap.PaletteNames(), ", "))
	cmd.Flags().BoolVar(&ch.Color.Reverse, "reverse", ch.Color.Reverse, "map the warmest temperature to the start of the palette")
	cmd.Flags().Float64Var(&ch.Frame.Width, "width", ch.Frame.Width, "plot area width in pixels")
	cmd.Flags().Float64Var(&ch.Frame.Height, "height", ch.Frame.Height, "plot area height in pixels")
	cmd.Flags().Float64Var(&ch.CellWidth, "cell-width", ch.CellWidth, "cell width in pixels")
	cmd.Flags().IntVar(&ch.XTicks, "x-ticks", ch.XTicks, "maximum number of year ticks")
	cmd.Flags().IntVar(&ch.Legend.Buckets, "buckets", ch.Legend.Buckets, "number of legend color buckets")
	cmd.Flags().Float64Var(&ch.Legend.Width, "legend-width", ch.Legend.Width, "legend width in pixels")
	cmd.Flags().IntVar(&ch.Legend.MaxTicks, "legend-ticks", ch.Legend.MaxTicks, "maximum number of legend ticks")
	cmd.Flags().StringVar(&ch.Legend.Unit, "unit", ch.Legend.Unit, "temperature unit label")
	cmd.Flags().Float64Var(&ch.Tooltip.OffsetX, "tooltip-x", ch.Tooltip.OffsetX, "tooltip horizontal offset from the cell")
	cmd.Flags().Float64Var(&ch.Tooltip.OffsetY, "tooltip-y", ch.Tooltip.OffsetY, "tooltip vertical offset from the cell")
	cmd.Flags().BoolVar(&noTooltips, "no-tooltips", false, "omit the hover script and tooltip element from SVG")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG zoom factor (default 2)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout, "dataset request timeout")

	return cmd
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, cs cacheSettings) error {
	// The tooltip unit always follows the legend unit.
	opts.Chart.Tooltip.Unit = opts.Chart.Legend.Unit

	runner, err := c.newRunner(ctx, cs)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, "Preparing...")
	restore := spinner.track()
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	restore()
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.Input,
		output:    output,
		stats:     result.Stats,
		cache:     result.CacheInfo,
	}); err != nil {
		return err
	}
	prog.done(result.View.Title)
	return nil
}

// artifactWriteParams describes a set of rendered outputs to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stats     pipeline.Stats
	cache     pipeline.CacheInfo
}

// writeArtifacts writes each artifact to its output path in format order.
func writeArtifacts(p artifactWriteParams) error {
	var written []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(p.output, p.input, format, len(p.formats))
		if err := writeFile(path, data); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		if path != "-" {
			written = append(written, path)
		}
	}

	if len(written) == 0 {
		return nil
	}
	printSuccess("Rendered heatmap")
	for _, path := range written {
		printFile(path)
	}
	printStats(p.stats, p.cache, true)
	return nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// outputPath picks the file for one format. A single format writes to output
// as given; several formats share a base path with per-format extensions.
func outputPath(output, input, format string, count int) string {
	if output == "-" {
		return output
	}
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path. It strips a known format extension
// from output, or falls back to the input file name with a "-heatmap" suffix
// so a JSON export never overwrites its own input.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input != "" {
		return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + "-" + defaultBase
	}
	return defaultBase
}
