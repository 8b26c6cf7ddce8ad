package heatmap

import (
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/thermogrid/pkg/dataset"
	"github.com/matzehuels/thermogrid/pkg/errors"
)

func twoRecordDataset() dataset.Dataset {
	return dataset.Dataset{
		BaseTemperature: 8.66,
		MonthlyVariance: []dataset.Record{
			{Year: 1753, Month: 1, Variance: -1.5},
			{Year: 2015, Month: 12, Variance: 1.2},
		},
	}
}

func mustScales(t *testing.T, ds dataset.Dataset) Scales {
	t.Helper()
	s, err := BuildScales(ds, Frame{Width: 1000, Height: 480}, ColorOptions{Palette: PaletteSpectral, Reverse: true})
	require.NoError(t, err)
	return s
}

func TestTemperatureInvariantThroughLayout(t *testing.T) {
	ds := dataset.Dataset{
		BaseTemperature: 8.66,
		MonthlyVariance: []dataset.Record{
			{Year: 1753, Month: 1, Variance: -1.366},
			{Year: 1800, Month: 7, Variance: 0.123},
			{Year: 2015, Month: 12, Variance: 1.103},
		},
	}
	marks := Layout(ds, mustScales(t, ds), DefaultCellWidth)
	require.Len(t, marks, 3)
	for i, m := range marks {
		r := ds.MonthlyVariance[i]
		assert.Equal(t, r, m.Record, "marks preserve input order")
		assert.Equal(t, r.Variance+ds.BaseTemperature, m.Temperature)
	}
}

func TestLayoutSingleRecord(t *testing.T) {
	ds := dataset.Dataset{
		BaseTemperature: 8.66,
		MonthlyVariance: []dataset.Record{{Year: 1900, Month: 1, Variance: -2.0}},
	}
	s := mustScales(t, ds)
	marks := Layout(ds, s, DefaultCellWidth)
	require.Len(t, marks, 1)

	m := marks[0]
	assert.InDelta(t, 6.66, m.Temperature, 1e-12)
	assert.Equal(t, s.X.Map(1900), m.X)
	// A single year is a degenerate domain and lands mid-range.
	assert.Equal(t, 500.0, m.X)
	// January is band index 0.
	assert.Equal(t, 0, m.MonthIndex())
	assert.Equal(t, 0.0, m.Y)
	assert.Equal(t, s.Y.Bandwidth(), m.Height)
	assert.Equal(t, DefaultCellWidth, m.Width)
}

func TestBandScale(t *testing.T) {
	y := NewBandScale(MonthCount, 0, 480)
	assert.Equal(t, 40.0, y.Bandwidth())
	assert.Equal(t, 0.0, y.Band(1))
	assert.Equal(t, 440.0, y.Band(12))
	assert.Equal(t, 20.0, y.Center(0))
	assert.Equal(t, 11, y.Index(12))
}

func TestLinearScale(t *testing.T) {
	x := NewLinearScale(1753, 2015, 0, 1000)
	assert.Equal(t, 0.0, x.Map(1753))
	assert.Equal(t, 1000.0, x.Map(2015))

	lo, hi := x.Domain()
	assert.Equal(t, 1753.0, lo)
	assert.Equal(t, 2015.0, hi)

	ticks := x.Ticks(20, true)
	require.NotEmpty(t, ticks)
	assert.LessOrEqual(t, len(ticks), 20)
	for _, v := range ticks {
		assert.Equal(t, math.Trunc(v), v, "year ticks are whole numbers")
		assert.GreaterOrEqual(t, v, 1753.0)
		assert.LessOrEqual(t, v, 2015.0)
	}
}

func TestLinearScaleDegenerate(t *testing.T) {
	x := NewLinearScale(0, 0, 0, 300)
	assert.Equal(t, 150.0, x.Map(0))
	assert.Equal(t, []float64{0}, x.Ticks(10, false))
	assert.Nil(t, x.Ticks(0, false))

	x.Nice(10)
	lo, hi := x.Domain()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestColorScaleOrientation(t *testing.T) {
	p, err := PaletteByName(PaletteSpectral)
	require.NoError(t, err)

	warmHigh := NewColorScale(2, 12, p, true)
	assert.Equal(t, "#9e0142", warmHigh.Hex(12))
	assert.Equal(t, "#5e4fa2", warmHigh.Hex(2))

	coolHigh := NewColorScale(2, 12, p, false)
	assert.Equal(t, "#9e0142", coolHigh.Hex(2))
	assert.Equal(t, "#5e4fa2", coolHigh.Hex(12))
}

func TestColorScaleMonotonicAndDeterministic(t *testing.T) {
	p, err := PaletteByName(PalettePlasma)
	require.NoError(t, err)
	c := NewColorScale(5, 15, p, false)

	prev := -1.0
	for v := 5.0; v <= 15.0; v += 0.25 {
		pos := c.Position(v)
		assert.Greater(t, pos, prev)
		prev = pos
		assert.Equal(t, c.Hex(v), c.Hex(v))
	}

	// Clamped outside the domain.
	assert.Equal(t, c.Hex(5), c.Hex(-100))
	assert.Equal(t, c.Hex(15), c.Hex(100))
}

func TestColorScaleDegenerate(t *testing.T) {
	p, err := PaletteByName(PaletteViridis)
	require.NoError(t, err)
	c := NewColorScale(8.66, 8.66, p, true)
	assert.Equal(t, 0.0, c.Position(8.66))
	assert.Equal(t, "#440154", c.Hex(8.66))
	assert.Equal(t, 0.0, c.Position(math.NaN()))
}

func TestPaletteByName(t *testing.T) {
	for _, name := range PaletteNames() {
		p, err := PaletteByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name)
		assert.Greater(t, p.Stops(), 1)
	}

	p, err := PaletteByName("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette, p.Name)

	_, err = PaletteByName("rainbow")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidPalette, errors.GetCode(err))
}

func TestLegendBuckets(t *testing.T) {
	ds := twoRecordDataset()
	s := mustScales(t, ds)

	legend, err := BuildLegend(ds, s.Color, LegendOptions{Buckets: 1000, Width: 450, MaxTicks: 10, Unit: "°C"})
	require.NoError(t, err)
	require.Len(t, legend.Buckets, 1000)

	minAbs, maxAbs := 7.16, 9.86
	assert.InDelta(t, minAbs, legend.Buckets[0].Value, 1e-9)
	assert.InDelta(t, minAbs+999*(maxAbs-minAbs)/1000, legend.Buckets[999].Value, 1e-9)
	assert.Less(t, legend.Buckets[999].Value, maxAbs)

	for i := 1; i < len(legend.Buckets); i++ {
		assert.GreaterOrEqual(t, legend.Buckets[i].Value, legend.Buckets[i-1].Value)
		assert.GreaterOrEqual(t, legend.Buckets[i].X, legend.Buckets[i-1].X)
	}

	// Legend swatches share the cell color scale.
	for _, b := range []LegendBucket{legend.Buckets[0], legend.Buckets[500]} {
		assert.Equal(t, s.Color.Hex(b.Value), b.Fill)
	}
}

func TestLegendScaleIsNiced(t *testing.T) {
	ds := twoRecordDataset()
	s := mustScales(t, ds)
	legend, err := BuildLegend(ds, s.Color, LegendOptions{Buckets: 1000, Width: 450, MaxTicks: 10, Unit: "°C"})
	require.NoError(t, err)

	lo, hi := legend.Scale.Domain()
	assert.LessOrEqual(t, lo, legend.Buckets[0].Value)
	assert.GreaterOrEqual(t, hi, legend.Buckets[999].Value)
	r0, r1 := legend.Scale.Range()
	assert.Equal(t, 0.0, r0)
	assert.Equal(t, 450.0, r1)

	require.NotEmpty(t, legend.Ticks)
	assert.LessOrEqual(t, len(legend.Ticks), 10)
	for _, tick := range legend.Ticks {
		assert.True(t, strings.HasSuffix(tick.Label, "°C"), tick.Label)
		assert.GreaterOrEqual(t, tick.Position, 0.0)
		assert.LessOrEqual(t, tick.Position, 450.0)
	}
}

func TestLegendRejectsNonPositiveBuckets(t *testing.T) {
	ds := twoRecordDataset()
	s := mustScales(t, ds)
	for _, n := range []int{0, -1} {
		_, err := BuildLegend(ds, s.Color, LegendOptions{Buckets: n, Width: 450, MaxTicks: 10})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
	}
}

func TestLegendSingleBucket(t *testing.T) {
	ds := twoRecordDataset()
	s := mustScales(t, ds)
	legend, err := BuildLegend(ds, s.Color, LegendOptions{Buckets: 1, Width: 450, MaxTicks: 10})
	require.NoError(t, err)
	require.Len(t, legend.Buckets, 1)
	assert.InDelta(t, 7.16, legend.Buckets[0].Value, 1e-9)
	assert.Equal(t, 225.0, legend.Buckets[0].X)
}

func TestFormatDegrees(t *testing.T) {
	assert.Equal(t, "8°C", formatDegrees(7.6, "°C"))
	assert.Equal(t, "-2°C", formatDegrees(-1.5, "°C"))
	assert.Equal(t, "0K", formatDegrees(-0.2, "K"))
}

func TestEmptyDataset(t *testing.T) {
	ds := dataset.Dataset{BaseTemperature: 8.66, MonthlyVariance: []dataset.Record{}}

	chart, err := NewChart(DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, chart.Mount(ds))

	marks, err := chart.Marks()
	require.NoError(t, err)
	assert.Empty(t, marks)

	legend, err := chart.Legend()
	require.NoError(t, err)
	require.Len(t, legend.Buckets, DefaultBuckets)
	for _, b := range legend.Buckets {
		assert.Equal(t, 0.0, b.Value)
		assert.False(t, math.IsNaN(b.X))
	}
	require.Len(t, legend.Ticks, 1)
	assert.Equal(t, "0°C", legend.Ticks[0].Label)

	view, err := chart.View()
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Equal(t, "No data: base temperature 8.66°C", view.Title)
}

func TestEndToEnd(t *testing.T) {
	ds := twoRecordDataset()

	chart, err := NewChart(DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, chart.Mount(ds))

	view, err := chart.View()
	require.NoError(t, err)
	require.Len(t, view.Marks, 2)

	lo, hi := view.Scales.X.Domain()
	assert.Equal(t, 1753.0, lo)
	assert.Equal(t, 2015.0, hi)
	assert.Equal(t, "1753 - 2015: base temperature 8.66°C", view.Title)

	ix, err := chart.Interaction()
	require.NoError(t, err)
	state := ix.OnEnter(view.Marks[0])
	text := state.Text()
	for _, want := range []string{"January", "1753", "7.16", "-1.50"} {
		assert.Contains(t, text, want)
	}
	assert.True(t, state.Visible)
	assert.Equal(t, DefaultTooltipAlpha, state.Opacity)
	assert.Equal(t, view.Marks[0].X+DefaultTooltipX, state.X)
	assert.Equal(t, view.Marks[0].Y+DefaultTooltipY, state.Y)

	// December is the last band.
	assert.Equal(t, 11, view.Marks[1].MonthIndex())
	assert.Equal(t, view.Scales.Y.Band(12), view.Marks[1].Y)
}

func TestInteraction(t *testing.T) {
	ds := twoRecordDataset()
	marks := Layout(ds, mustScales(t, ds), DefaultCellWidth)
	ix := NewInteraction(ds, DefaultOptions().Tooltip)

	assert.False(t, ix.Current().Visible)

	first := ix.OnEnter(marks[0])
	second := ix.OnEnter(marks[1])
	assert.NotEqual(t, first.Lines, second.Lines)
	assert.Equal(t, second, ix.Current(), "entering a mark replaces the previous tooltip")
	assert.Equal(t, []string{"December, 2015", "9.86°C", "(Change: +1.20°C)"}, second.Lines)

	exit := ix.OnExit()
	assert.False(t, exit.Visible)
	assert.Equal(t, 0.0, exit.Opacity)
	assert.Equal(t, exit, ix.Current())
}

func TestTooltipDoesNotCoverCell(t *testing.T) {
	ds := twoRecordDataset()
	opts := DefaultOptions()
	chart, err := NewChart(opts)
	require.NoError(t, err)
	require.NoError(t, chart.Mount(ds))

	marks, _ := chart.Marks()
	ix, _ := chart.Interaction()
	for _, m := range marks {
		state := ix.OnEnter(m)
		assert.GreaterOrEqual(t, state.X, m.X+m.Width)
	}
}

func TestChartLifecycle(t *testing.T) {
	chart, err := NewChart(DefaultOptions())
	require.NoError(t, err)

	_, err = chart.Marks()
	assert.True(t, stderrors.Is(err, ErrNotMounted))
	_, err = chart.View()
	assert.True(t, stderrors.Is(err, ErrNotMounted))
	_, err = chart.Interaction()
	assert.True(t, stderrors.Is(err, ErrNotMounted))

	require.NoError(t, chart.Mount(twoRecordDataset()))
	assert.True(t, chart.Mounted())
	first, _ := chart.View()

	require.NoError(t, chart.Mount(twoRecordDataset()))
	second, _ := chart.View()
	assert.NotEqual(t, first.ID, second.ID, "each mount gets a fresh id")

	chart.Teardown()
	assert.False(t, chart.Mounted())
	_, err = chart.Legend()
	assert.True(t, stderrors.Is(err, ErrNotMounted))
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		code   errors.Code
	}{
		{"defaults", func(*Options) {}, ""},
		{"zero width", func(o *Options) { o.Frame.Width = 0 }, errors.ErrCodeInvalidInput},
		{"zero cell", func(o *Options) { o.CellWidth = 0 }, errors.ErrCodeInvalidInput},
		{"no x ticks", func(o *Options) { o.XTicks = 0 }, errors.ErrCodeInvalidInput},
		{"bad palette", func(o *Options) { o.Color.Palette = "jet" }, errors.ErrCodeInvalidPalette},
		{"zero buckets", func(o *Options) { o.Legend.Buckets = 0 }, errors.ErrCodeInvalidInput},
		{"offset covers cell", func(o *Options) { o.Tooltip.OffsetX = o.CellWidth - 1 }, errors.ErrCodeInvalidInput},
		{"opacity", func(o *Options) { o.Tooltip.Opacity = 1.5 }, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestAxes(t *testing.T) {
	y := MonthAxis(NewBandScale(MonthCount, 0, 480))
	require.Len(t, y.Ticks, 12)
	assert.Equal(t, "January", y.Ticks[0].Label)
	assert.Equal(t, "December", y.Ticks[11].Label)
	assert.Equal(t, 20.0, y.Ticks[0].Position)

	x := YearAxis(NewLinearScale(1753, 2015, 0, 1000), 20)
	require.NotEmpty(t, x.Ticks)
	assert.Equal(t, "Year", x.Label)
	for _, tick := range x.Ticks {
		assert.NotContains(t, tick.Label, ".")
	}

	assert.Equal(t, "", MonthName(12))
	assert.Equal(t, "", MonthName(-1))
}
