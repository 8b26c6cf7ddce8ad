package heatmap

import (
	"math"

	"github.com/aclements/go-moremath/scale"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/thermogrid/pkg/dataset"
)

// MonthCount is the fixed size of the month band domain.
const MonthCount = 12

// Frame is the usable plotting area, excluding margins.
type Frame struct {
	Width  float64
	Height float64
}

// Scales are the three mappings shared by layout, legend and interaction.
type Scales struct {
	X     *LinearScale
	Y     *BandScale
	Color *ColorScale
}

// BuildScales derives the year, month and color scales from ds.
// An empty dataset yields degenerate [0,0] domains.
func BuildScales(ds dataset.Dataset, frame Frame, color ColorOptions) (Scales, error) {
	palette, err := PaletteByName(color.Palette)
	if err != nil {
		return Scales{}, err
	}

	e, _ := ds.Extent()
	return Scales{
		X:     NewLinearScale(float64(e.MinYear), float64(e.MaxYear), 0, frame.Width),
		Y:     NewBandScale(MonthCount, 0, frame.Height),
		Color: NewColorScale(e.MinTemp, e.MaxTemp, palette, color.Reverse),
	}, nil
}

// LinearScale maps a continuous domain onto a pixel range.
type LinearScale struct {
	domain scale.Linear
	r0, r1 float64
}

// NewLinearScale maps [d0, d1] onto [r0, r1]. A zero-width domain maps every
// input to the middle of the range.
func NewLinearScale(d0, d1, r0, r1 float64) *LinearScale {
	return &LinearScale{domain: scale.Linear{Min: d0, Max: d1}, r0: r0, r1: r1}
}

// Map returns the pixel position of x.
func (s *LinearScale) Map(x float64) float64 {
	return s.r0 + s.domain.Map(x)*(s.r1-s.r0)
}

// Domain returns the input bounds.
func (s *LinearScale) Domain() (lo, hi float64) { return s.domain.Min, s.domain.Max }

// Range returns the output bounds.
func (s *LinearScale) Range() (lo, hi float64) { return s.r0, s.r1 }

// Nice widens the domain outward to the nearest tick boundaries for at most
// maxTicks ticks.
func (s *LinearScale) Nice(maxTicks int) {
	if s.degenerate() {
		return
	}
	s.domain.Nice(scale.TickOptions{Max: maxTicks, MinLevel: -1000, MaxLevel: 1000})
}

// Ticks returns at most maxTicks tick values inside the domain. With integer
// set, ticks never fall between whole numbers.
func (s *LinearScale) Ticks(maxTicks int, integer bool) []float64 {
	if maxTicks <= 0 {
		return nil
	}
	if s.degenerate() {
		return []float64{s.domain.Min}
	}

	o := scale.TickOptions{Max: maxTicks, MinLevel: -1000, MaxLevel: 1000}
	if integer {
		o.MinLevel = 0
	}
	ls := s.domain
	if ls.Min > ls.Max {
		ls.Min, ls.Max = ls.Max, ls.Min
	}
	level, ok := o.FindLevel(ls, 0)
	if !ok {
		return nil
	}
	return ls.TicksAtLevel(level).([]float64)
}

func (s *LinearScale) degenerate() bool {
	return s.domain.Min == s.domain.Max
}

// BandScale divides a pixel range into n equal bands, one per month.
// Band indices are 0-based; [BandScale.Band] takes the 1-based calendar month.
type BandScale struct {
	n      int
	r0, r1 float64
}

// NewBandScale creates a scale of n bands across [r0, r1].
func NewBandScale(n int, r0, r1 float64) *BandScale {
	return &BandScale{n: n, r0: r0, r1: r1}
}

// Bandwidth returns the height of one band.
func (s *BandScale) Bandwidth() float64 {
	if s.n <= 0 {
		return 0
	}
	return (s.r1 - s.r0) / float64(s.n)
}

// Index converts a 1-based calendar month to its 0-based band index.
func (s *BandScale) Index(month int) int { return month - 1 }

// Band returns the start of the band for a 1-based calendar month.
func (s *BandScale) Band(month int) float64 {
	return s.r0 + float64(s.Index(month))*s.Bandwidth()
}

// Center returns the middle of the band at 0-based index i.
func (s *BandScale) Center(i int) float64 {
	return s.r0 + (float64(i)+0.5)*s.Bandwidth()
}

// Len returns the number of bands.
func (s *BandScale) Len() int { return s.n }

// ColorScale maps absolute temperatures onto a palette.
type ColorScale struct {
	domain  scale.Linear
	palette Palette
	reverse bool
}

// NewColorScale maps [lo, hi] onto p. With reverse set, hi maps to the start
// of the palette and lo to its end. Inputs outside the domain are clamped.
func NewColorScale(lo, hi float64, p Palette, reverse bool) *ColorScale {
	ls := scale.Linear{Min: lo, Max: hi}
	ls.SetClamp(true)
	return &ColorScale{domain: ls, palette: p, reverse: reverse}
}

// Position returns the palette parameter in [0, 1] for v. A degenerate
// domain always yields 0.
func (c *ColorScale) Position(v float64) float64 {
	if c.domain.Min == c.domain.Max || math.IsNaN(v) {
		return 0
	}
	t := c.domain.Map(v)
	if c.reverse {
		t = 1 - t
	}
	return t
}

// Color returns the color for v.
func (c *ColorScale) Color(v float64) colorful.Color {
	return c.palette.At(c.Position(v))
}

// Hex returns the color for v as a #rrggbb string.
func (c *ColorScale) Hex(v float64) string {
	return c.Color(v).Hex()
}

// Domain returns the temperature bounds.
func (c *ColorScale) Domain() (lo, hi float64) { return c.domain.Min, c.domain.Max }

// Palette returns the palette in use.
func (c *ColorScale) Palette() Palette { return c.palette }

// Reversed reports whether hi maps to the palette start.
func (c *ColorScale) Reversed() bool { return c.reverse }
