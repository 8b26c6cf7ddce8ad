package heatmap

import (
	"github.com/matzehuels/thermogrid/pkg/errors"
)

// Presentation defaults.
const (
	DefaultWidth        = 1270.0 // inner plot width in pixels
	DefaultHeight       = 430.0  // inner plot height in pixels
	DefaultCellWidth    = 10.0
	DefaultXTicks       = 20
	DefaultBuckets      = 1000
	DefaultLegendWidth  = 450.0
	DefaultLegendTicks  = 10
	DefaultUnit         = "°C"
	DefaultTooltipX     = 16.0
	DefaultTooltipY     = 16.0
	DefaultTooltipAlpha = 0.8
	DefaultReverse      = true
)

// Options configures a Chart.
type Options struct {
	Frame     Frame
	CellWidth float64 // fixed cell width, independent of year spacing
	XTicks    int     // maximum number of year-axis ticks
	Color     ColorOptions
	Legend    LegendOptions
	Tooltip   TooltipOptions
}

// ColorOptions selects the palette and its orientation.
type ColorOptions struct {
	Palette string
	// Reverse maps the warmest temperature to the start of the palette.
	Reverse bool
}

// LegendOptions configures the legend ramp.
type LegendOptions struct {
	Buckets  int
	Width    float64
	MaxTicks int
	Unit     string
}

// TooltipOptions configures tooltip placement and appearance.
type TooltipOptions struct {
	OffsetX float64
	OffsetY float64
	Opacity float64
	Unit    string
}

// DefaultOptions returns the standard chart configuration.
func DefaultOptions() Options {
	return Options{
		Frame:     Frame{Width: DefaultWidth, Height: DefaultHeight},
		CellWidth: DefaultCellWidth,
		XTicks:    DefaultXTicks,
		Color:     ColorOptions{Palette: DefaultPalette, Reverse: DefaultReverse},
		Legend: LegendOptions{
			Buckets:  DefaultBuckets,
			Width:    DefaultLegendWidth,
			MaxTicks: DefaultLegendTicks,
			Unit:     DefaultUnit,
		},
		Tooltip: TooltipOptions{
			OffsetX: DefaultTooltipX,
			OffsetY: DefaultTooltipY,
			Opacity: DefaultTooltipAlpha,
			Unit:    DefaultUnit,
		},
	}
}

// Validate checks that o can produce a chart.
func (o Options) Validate() error {
	if o.Frame.Width <= 0 || o.Frame.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame must be positive, got %vx%v", o.Frame.Width, o.Frame.Height)
	}
	if o.CellWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cell width must be positive, got %v", o.CellWidth)
	}
	if o.XTicks < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "x ticks must be >= 1, got %d", o.XTicks)
	}
	if _, err := PaletteByName(o.Color.Palette); err != nil {
		return err
	}
	if err := o.Legend.validate(); err != nil {
		return err
	}
	if o.Tooltip.OffsetX < o.CellWidth {
		return errors.New(errors.ErrCodeInvalidInput,
			"tooltip x offset %v would cover the %v-wide cell", o.Tooltip.OffsetX, o.CellWidth)
	}
	if o.Tooltip.Opacity <= 0 || o.Tooltip.Opacity > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "tooltip opacity must be in (0, 1], got %v", o.Tooltip.Opacity)
	}
	return nil
}

func (o LegendOptions) validate() error {
	if o.Buckets < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "legend bucket count must be >= 1, got %d", o.Buckets)
	}
	if o.Width <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "legend width must be positive, got %v", o.Width)
	}
	if o.MaxTicks < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "legend ticks must be >= 1, got %d", o.MaxTicks)
	}
	return nil
}
