package heatmap

import (
	"github.com/matzehuels/thermogrid/pkg/dataset"
)

// Mark is the positioned, colored projection of one record.
type Mark struct {
	X, Y          float64
	Width, Height float64
	Fill          string // #rrggbb
	Record        dataset.Record
	Temperature   float64 // absolute temperature of Record
}

// MonthIndex returns the 0-based month of the mark's record.
func (m Mark) MonthIndex() int { return m.Record.Month - 1 }

// Layout projects every record of ds to a mark, preserving input order.
// Marks are not deduplicated; a later mark at the same cell paints over an
// earlier one.
func Layout(ds dataset.Dataset, s Scales, cellWidth float64) []Mark {
	marks := make([]Mark, 0, ds.Len())
	height := s.Y.Bandwidth()
	for _, r := range ds.MonthlyVariance {
		temp := ds.Temperature(r)
		marks = append(marks, Mark{
			X:           s.X.Map(float64(r.Year)),
			Y:           s.Y.Band(r.Month),
			Width:       cellWidth,
			Height:      height,
			Fill:        s.Color.Hex(temp),
			Record:      r,
			Temperature: temp,
		})
	}
	return marks
}
