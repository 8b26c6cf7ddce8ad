package sink

import (
	"encoding/json"

	"github.com/matzehuels/thermogrid/pkg/heatmap"
)

type jsonOutput struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Width           float64    `json:"width"`
	Height          float64    `json:"height"`
	BaseTemperature float64    `json:"base_temperature"`
	Palette         string     `json:"palette"`
	Reverse         bool       `json:"reverse"`
	Domain          [2]float64 `json:"temperature_domain"`
	Marks           []jsonMark `json:"marks"`
	Legend          jsonLegend `json:"legend"`
	XAxis           jsonAxis   `json:"x_axis"`
	YAxis           jsonAxis   `json:"y_axis"`
}

type jsonMark struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"` // 0-based band index
	Variance    float64 `json:"variance"`
	Temperature float64 `json:"temperature"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Fill        string  `json:"fill"`
}

type jsonLegend struct {
	Width   float64      `json:"width"`
	Buckets []jsonBucket `json:"buckets"`
	Ticks   []jsonTick   `json:"ticks"`
}

type jsonBucket struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Fill  string  `json:"fill"`
}

type jsonAxis struct {
	Label string     `json:"label"`
	Ticks []jsonTick `json:"ticks"`
}

type jsonTick struct {
	Value    float64 `json:"value"`
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// RenderJSON exports the computed geometry of v as a pretty-printed document
// for use by other tools. Sizes are those of the plot area, without margins.
func RenderJSON(v *heatmap.View) ([]byte, error) {
	lo, hi := v.Scales.Color.Domain()
	out := jsonOutput{
		ID:              v.ID,
		Title:           v.Title,
		Width:           v.Frame.Width,
		Height:          v.Frame.Height,
		BaseTemperature: v.BaseTemperature,
		Palette:         v.Scales.Color.Palette().Name,
		Reverse:         v.Scales.Color.Reversed(),
		Domain:          [2]float64{lo, hi},
		Marks:           make([]jsonMark, len(v.Marks)),
		Legend: jsonLegend{
			Width:   v.Legend.Width,
			Buckets: make([]jsonBucket, len(v.Legend.Buckets)),
			Ticks:   toJSONTicks(v.Legend.Ticks),
		},
		XAxis: jsonAxis{Label: v.XAxis.Label, Ticks: toJSONTicks(v.XAxis.Ticks)},
		YAxis: jsonAxis{Label: v.YAxis.Label, Ticks: toJSONTicks(v.YAxis.Ticks)},
	}
	for i, m := range v.Marks {
		out.Marks[i] = jsonMark{
			Year:        m.Record.Year,
			Month:       m.MonthIndex(),
			Variance:    m.Record.Variance,
			Temperature: m.Temperature,
			X:           m.X,
			Y:           m.Y,
			Width:       m.Width,
			Height:      m.Height,
			Fill:        m.Fill,
		}
	}
	for i, b := range v.Legend.Buckets {
		out.Legend.Buckets[i] = jsonBucket{Value: b.Value, X: b.X, Fill: b.Fill}
	}
	return json.MarshalIndent(out, "", "  ")
}

func toJSONTicks(ticks []heatmap.Tick) []jsonTick {
	out := make([]jsonTick, len(ticks))
	for i, t := range ticks {
		out[i] = jsonTick{Value: t.Value, Position: t.Position, Label: t.Label}
	}
	return out
}
