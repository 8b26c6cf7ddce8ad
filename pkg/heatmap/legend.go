package heatmap

import (
	"fmt"
	"math"

	"github.com/matzehuels/thermogrid/pkg/dataset"
)

// LegendBucket is one swatch of the legend ramp.
type LegendBucket struct {
	Value float64
	X     float64
	Fill  string
}

// Legend is the discretized color ramp plus its axis.
type Legend struct {
	Buckets     []LegendBucket
	Ticks       []Tick
	Width       float64
	SwatchWidth float64
	// Scale positions bucket values; its domain is the niced bucket range.
	Scale *LinearScale
}

// BuildLegend samples the temperature domain of ds into opts.Buckets swatches
// colored by color. Bucket i has value min + i*(max-min)/N, so the last
// bucket stops one step short of max.
//
// Positions come from a separate linear scale fitted to the bucket values and
// widened to nice tick boundaries, spanning [0, opts.Width].
func BuildLegend(ds dataset.Dataset, color *ColorScale, opts LegendOptions) (Legend, error) {
	if err := opts.validate(); err != nil {
		return Legend{}, err
	}

	e, _ := ds.Extent()
	n := opts.Buckets
	step := (e.MaxTemp - e.MinTemp) / float64(n)

	values := make([]float64, n)
	for i := range values {
		values[i] = e.MinTemp + float64(i)*step
	}

	ls := NewLinearScale(values[0], values[n-1], 0, opts.Width)
	ls.Nice(opts.MaxTicks)

	buckets := make([]LegendBucket, n)
	for i, v := range values {
		buckets[i] = LegendBucket{Value: v, X: ls.Map(v), Fill: color.Hex(v)}
	}

	tickValues := ls.Ticks(opts.MaxTicks, false)
	ticks := make([]Tick, len(tickValues))
	for i, v := range tickValues {
		ticks[i] = Tick{Value: v, Position: ls.Map(v), Label: formatDegrees(v, opts.Unit)}
	}

	return Legend{
		Buckets:     buckets,
		Ticks:       ticks,
		Width:       opts.Width,
		SwatchWidth: math.Max(1, opts.Width/float64(n)),
		Scale:       ls,
	}, nil
}

// formatDegrees renders v as a rounded integer with unit appended.
func formatDegrees(v float64, unit string) string {
	return fmt.Sprintf("%d%s", int(math.Round(v)), unit)
}
