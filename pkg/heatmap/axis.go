package heatmap

import "fmt"

// monthNames is indexed by 0-based month.
var monthNames = [MonthCount]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name for a 0-based month index, or "" when
// i is out of range.
func MonthName(i int) string {
	if i < 0 || i >= MonthCount {
		return ""
	}
	return monthNames[i]
}

// Tick is one labeled axis position.
type Tick struct {
	Value    float64
	Position float64
	Label    string
}

// Axis is a labeled sequence of ticks.
type Axis struct {
	Label string
	Ticks []Tick
}

// YearAxis returns integer year ticks, at most maxTicks of them.
func YearAxis(x *LinearScale, maxTicks int) Axis {
	values := x.Ticks(maxTicks, true)
	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Value: v, Position: x.Map(v), Label: fmt.Sprintf("%d", int(v))}
	}
	return Axis{Label: "Year", Ticks: ticks}
}

// MonthAxis returns one tick per month, centered in its band.
func MonthAxis(y *BandScale) Axis {
	ticks := make([]Tick, y.Len())
	for i := range ticks {
		ticks[i] = Tick{Value: float64(i), Position: y.Center(i), Label: MonthName(i)}
	}
	return Axis{Label: "Month", Ticks: ticks}
}
