package heatmap

import (
	"fmt"
	"strings"

	"github.com/matzehuels/thermogrid/pkg/dataset"
)

// TooltipState is the single tooltip's visibility, placement and text.
type TooltipState struct {
	Visible bool
	Opacity float64
	X, Y    float64
	Lines   []string
}

// Text joins the tooltip lines with newlines.
func (t TooltipState) Text() string { return strings.Join(t.Lines, "\n") }

// Interaction tracks hover state for one mounted chart. At most one tooltip
// is visible at a time; entering a mark replaces whatever was shown before.
// It is not safe for concurrent use.
type Interaction struct {
	temperature func(dataset.Record) float64
	opts        TooltipOptions
	current     TooltipState
}

// NewInteraction creates hidden hover state for ds.
func NewInteraction(ds dataset.Dataset, opts TooltipOptions) *Interaction {
	return &Interaction{temperature: ds.Temperature, opts: opts}
}

// OnEnter shows the tooltip for m, offset from the mark's origin.
func (i *Interaction) OnEnter(m Mark) TooltipState {
	i.current = TooltipState{
		Visible: true,
		Opacity: i.opts.Opacity,
		X:       m.X + i.opts.OffsetX,
		Y:       m.Y + i.opts.OffsetY,
		Lines:   TooltipLines(m.Record, i.temperature(m.Record), i.opts.Unit),
	}
	return i.current
}

// OnExit hides the tooltip.
func (i *Interaction) OnExit() TooltipState {
	i.current = TooltipState{}
	return i.current
}

// Current returns the most recent state.
func (i *Interaction) Current() TooltipState { return i.current }

// TooltipLines formats the hover text for r at absolute temperature temp.
func TooltipLines(r dataset.Record, temp float64, unit string) []string {
	return []string{
		fmt.Sprintf("%s, %d", MonthName(r.Month-1), r.Year),
		fmt.Sprintf("%.2f%s", temp, unit),
		fmt.Sprintf("(Change: %+.2f%s)", r.Variance, unit),
	}
}
