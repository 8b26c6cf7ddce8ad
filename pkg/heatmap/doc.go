// Package heatmap maps temperature-anomaly records to positioned, colored
// cells with axes, a color legend and hover tooltips.
//
// # Overview
//
// The mapping runs in four stages that share one set of scales:
//
//  1. [BuildScales] derives a year scale (x), a month band scale (y) and a
//     temperature color scale from the dataset's extent.
//  2. [Layout] turns every record into a [Mark]: a rectangle and a fill.
//  3. [BuildLegend] samples the temperature domain into a ramp of
//     [LegendBucket] swatches on an independent, niced linear scale.
//  4. [Interaction] derives tooltip state from a hovered mark.
//
// [Chart] ties the stages together behind an explicit Mount/Teardown
// lifecycle and exposes the result as a [View] for sinks to draw.
//
// # Month Convention
//
// Records carry calendar months 1-12. Everything inside this package works
// with 0-based band indices; [BandScale.Band] and [Mark.MonthIndex] are the
// only places the offset is applied, so layout, axis labels and tooltips
// always agree on which band a month occupies.
//
// # Color Orientation
//
// [ColorOptions].Reverse decides which end of the palette the warmest
// temperature lands on. The default spectral palette starts at deep red, so
// the default Reverse=true renders warm months red and cool months blue.
//
// # Empty Data
//
// An empty dataset is not an error. Scales get the degenerate domain [0,0],
// Layout returns no marks and the legend still holds its configured number of
// zero-valued buckets with a single tick, so sinks can draw an empty frame.
//
// # Usage
//
//	chart, err := heatmap.NewChart(heatmap.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	if err := chart.Mount(ds); err != nil {
//	    return err
//	}
//	view, _ := chart.View()
//	svg := sink.RenderSVG(view)
package heatmap
