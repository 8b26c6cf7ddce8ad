package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thermogrid/pkg/dataset"
	"github.com/matzehuels/thermogrid/pkg/pipeline"
)

// defaultFetchOutput is where fetch writes when -o is not given.
const defaultFetchOutput = "global-temperature.json"

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
	)
	opts := pipeline.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and validate the temperature dataset",
		Long: `Download the temperature dataset, validate it against the expected schema,
and write it as indented JSON.

The written file can be rendered offline with 'thermogrid render --input'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.cfg().applyTo(&opts, cmd.Flags())
			src.apply(&opts)
			if err := opts.ValidateForFetch(); err != nil {
				return err
			}
			cs := c.cacheSettingsFrom(cmd, src.noCache, src.redisURL)
			return c.runFetch(cmd.Context(), opts, output, cs)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", defaultFetchOutput, "output file, or - for stdout")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout, "request timeout")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, opts pipeline.Options, output string, cs cacheSettings) error {
	runner, err := c.newRunner(ctx, cs)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, "Fetching dataset...")
	spinner.enter(stageFetch, "Fetching "+opts.Source()+"...")
	spinner.Start()

	loaded, hit, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Stop()

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	if err := dataset.Encode(out, loaded.Dataset); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", output, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if output == "-" {
		return nil
	}

	printSuccess("Fetched dataset")
	printFile(output)
	printDatasetSummary(loaded)
	printStats(pipeline.Stats{Records: loaded.Dataset.Len()}, pipeline.CacheInfo{FetchHit: hit}, false)
	prog.done(fmt.Sprintf("Fetched %d records", loaded.Dataset.Len()))
	return nil
}
