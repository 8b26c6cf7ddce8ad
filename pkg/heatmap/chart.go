package heatmap

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/thermogrid/pkg/dataset"
	"github.com/matzehuels/thermogrid/pkg/errors"
)

// ErrNotMounted is returned by Chart accessors before Mount or after Teardown.
var ErrNotMounted = errors.New(errors.ErrCodeInvalidInput, "chart is not mounted")

// View is everything a sink needs to draw one mounted chart.
type View struct {
	ID              string
	Title           string
	Frame           Frame
	BaseTemperature float64
	Empty           bool
	Scales          Scales
	Marks           []Mark
	Legend          Legend
	XAxis           Axis
	YAxis           Axis
	Tooltip         TooltipOptions
}

// Chart owns the derived state of one dataset render. Mount replaces that
// state wholesale; nothing is updated incrementally.
type Chart struct {
	opts        Options
	view        *View
	interaction *Interaction
}

// NewChart validates opts and returns an unmounted chart.
func NewChart(opts Options) (*Chart, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Chart{opts: opts}, nil
}

// Options returns the chart configuration.
func (c *Chart) Options() Options { return c.opts }

// Mount derives scales, marks, legend and axes from ds. Any previous mount
// is discarded, including on error.
func (c *Chart) Mount(ds dataset.Dataset) error {
	c.Teardown()

	scales, err := BuildScales(ds, c.opts.Frame, c.opts.Color)
	if err != nil {
		return err
	}
	legend, err := BuildLegend(ds, scales.Color, c.opts.Legend)
	if err != nil {
		return err
	}

	c.view = &View{
		ID:              uuid.NewString(),
		Title:           Title(ds, c.opts.Legend.Unit),
		Frame:           c.opts.Frame,
		BaseTemperature: ds.BaseTemperature,
		Empty:           ds.Empty(),
		Scales:          scales,
		Marks:           Layout(ds, scales, c.opts.CellWidth),
		Legend:          legend,
		XAxis:           YearAxis(scales.X, c.opts.XTicks),
		YAxis:           MonthAxis(scales.Y),
		Tooltip:         c.opts.Tooltip,
	}
	c.interaction = NewInteraction(ds, c.opts.Tooltip)
	return nil
}

// Teardown drops all derived state. It is safe to call on an unmounted chart.
func (c *Chart) Teardown() {
	c.view = nil
	c.interaction = nil
}

// Mounted reports whether the chart holds derived state.
func (c *Chart) Mounted() bool { return c.view != nil }

// View returns the mounted view.
func (c *Chart) View() (*View, error) {
	if c.view == nil {
		return nil, ErrNotMounted
	}
	return c.view, nil
}

// Marks returns the mounted cells.
func (c *Chart) Marks() ([]Mark, error) {
	if c.view == nil {
		return nil, ErrNotMounted
	}
	return c.view.Marks, nil
}

// Legend returns the mounted legend.
func (c *Chart) Legend() (Legend, error) {
	if c.view == nil {
		return Legend{}, ErrNotMounted
	}
	return c.view.Legend, nil
}

// Interaction returns the hover state bound to the mounted dataset.
func (c *Chart) Interaction() (*Interaction, error) {
	if c.interaction == nil {
		return nil, ErrNotMounted
	}
	return c.interaction, nil
}

// Title formats the chart heading for ds.
func Title(ds dataset.Dataset, unit string) string {
	e, ok := ds.Extent()
	if !ok {
		return fmt.Sprintf("No data: base temperature %.2f%s", ds.BaseTemperature, unit)
	}
	return fmt.Sprintf("%d - %d: base temperature %.2f%s", e.MinYear, e.MaxYear, ds.BaseTemperature, unit)
}
