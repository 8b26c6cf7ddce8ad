// Package pkg holds the thermogrid libraries.
//
// # Overview
//
// Thermogrid renders a monthly temperature-anomaly dataset as a year × month
// heatmap. Data flows through the packages in one direction:
//
//	dataset URL or file
//	         ↓
//	    [dataset] (fetch, decode, validate)
//	         ↓
//	    [heatmap] (scales, marks, legend, axes, hover state)
//	         ↓
//	    [render/sink] (SVG, JSON; PNG and PDF via [render])
//
// [pipeline] wires these steps together behind a [cache] and reports
// progress through [observability] hooks. [errors] defines the coded errors
// every package returns.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{pipeline.FormatSVG}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("heatmap.svg", result.Artifacts["svg"], 0644)
//
// [dataset]: github.com/matzehuels/thermogrid/pkg/dataset
// [heatmap]: github.com/matzehuels/thermogrid/pkg/heatmap
// [render]: github.com/matzehuels/thermogrid/pkg/render
// [render/sink]: github.com/matzehuels/thermogrid/pkg/render/sink
// [pipeline]: github.com/matzehuels/thermogrid/pkg/pipeline
// [cache]: github.com/matzehuels/thermogrid/pkg/cache
// [observability]: github.com/matzehuels/thermogrid/pkg/observability
// [errors]: github.com/matzehuels/thermogrid/pkg/errors
package pkg
