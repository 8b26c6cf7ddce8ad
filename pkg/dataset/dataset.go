package dataset

import (
	"encoding/json"
	"io"
	"math"
)

// DefaultURL is the public global-temperature dataset endpoint.
const DefaultURL = "https://raw.githubusercontent.com/freeCodeCamp/ProjectReferenceData/master/global-temperature.json"

// Record is one monthly observation.
type Record struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"` // calendar month, 1-12
	Variance float64 `json:"variance"`
}

// Dataset is a base temperature plus its monthly anomaly records.
type Dataset struct {
	BaseTemperature float64  `json:"baseTemperature"`
	MonthlyVariance []Record `json:"monthlyVariance"`
}

// Extent holds the observed year and absolute-temperature bounds.
type Extent struct {
	MinYear, MaxYear int
	MinTemp, MaxTemp float64
}

// Temperature returns the absolute temperature of r.
func (d Dataset) Temperature(r Record) float64 {
	return r.Variance + d.BaseTemperature
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.MonthlyVariance) }

// Empty reports whether the dataset has no records.
func (d Dataset) Empty() bool { return len(d.MonthlyVariance) == 0 }

// Extent scans the records once for year and temperature bounds.
// ok is false for an empty dataset, in which case the zero Extent is returned.
func (d Dataset) Extent() (e Extent, ok bool) {
	if d.Empty() {
		return Extent{}, false
	}
	first := d.MonthlyVariance[0]
	e = Extent{
		MinYear: first.Year, MaxYear: first.Year,
		MinTemp: d.Temperature(first), MaxTemp: d.Temperature(first),
	}
	for _, r := range d.MonthlyVariance[1:] {
		e.MinYear = min(e.MinYear, r.Year)
		e.MaxYear = max(e.MaxYear, r.Year)
		t := d.Temperature(r)
		e.MinTemp = math.Min(e.MinTemp, t)
		e.MaxTemp = math.Max(e.MaxTemp, t)
	}
	return e, true
}

// Encode writes d as indented JSON in the same shape [Decode] accepts.
func Encode(w io.Writer, d Dataset) error {
	if d.MonthlyVariance == nil {
		d.MonthlyVariance = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
