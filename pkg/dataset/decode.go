package dataset

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"math"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

// wireDataset mirrors the JSON document with pointer fields so that a missing
// key can be told apart from a zero value.
type wireDataset struct {
	BaseTemperature *float64      `json:"baseTemperature"`
	MonthlyVariance *[]wireRecord `json:"monthlyVariance"`
}

type wireRecord struct {
	Year     *float64 `json:"year"`
	Month    *float64 `json:"month"`
	Variance *float64 `json:"variance"`
}

// Decode parses a dataset document and validates it strictly.
// Unknown fields are ignored. Every other deviation from the expected shape
// is an errors.ErrCodeSchema error naming the offending record.
func Decode(r io.Reader) (Dataset, error) {
	var w wireDataset
	dec := json.NewDecoder(r)
	if err := dec.Decode(&w); err != nil {
		return Dataset{}, schemaError(err)
	}
	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		return Dataset{}, errors.New(errors.ErrCodeSchema, "trailing data after dataset document")
	}

	if w.BaseTemperature == nil {
		return Dataset{}, errors.New(errors.ErrCodeSchema, "missing field baseTemperature")
	}
	if !finite(*w.BaseTemperature) {
		return Dataset{}, errors.New(errors.ErrCodeSchema, "baseTemperature is not finite")
	}
	if w.MonthlyVariance == nil {
		return Dataset{}, errors.New(errors.ErrCodeSchema, "missing field monthlyVariance")
	}

	ds := Dataset{
		BaseTemperature: *w.BaseTemperature,
		MonthlyVariance: make([]Record, 0, len(*w.MonthlyVariance)),
	}
	for i, wr := range *w.MonthlyVariance {
		rec, err := wr.record()
		if err != nil {
			return Dataset{}, errors.Wrap(errors.ErrCodeSchema, err, "monthlyVariance[%d]", i)
		}
		ds.MonthlyVariance = append(ds.MonthlyVariance, rec)
	}
	return ds, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (Dataset, error) {
	return Decode(bytes.NewReader(data))
}

func (w wireRecord) record() (Record, error) {
	switch {
	case w.Year == nil:
		return Record{}, errors.New(errors.ErrCodeSchema, "missing field year")
	case w.Month == nil:
		return Record{}, errors.New(errors.ErrCodeSchema, "missing field month")
	case w.Variance == nil:
		return Record{}, errors.New(errors.ErrCodeSchema, "missing field variance")
	}

	year, month, variance := *w.Year, *w.Month, *w.Variance
	if !finite(year) || year != math.Trunc(year) {
		return Record{}, errors.New(errors.ErrCodeSchema, "year %v is not an integer", year)
	}
	if year < math.MinInt32 || year > math.MaxInt32 {
		return Record{}, errors.New(errors.ErrCodeSchema, "year %v is out of range", year)
	}
	if month != math.Trunc(month) || month < 1 || month > 12 {
		return Record{}, errors.New(errors.ErrCodeSchema, "month %v is outside 1-12", month)
	}
	if !finite(variance) {
		return Record{}, errors.New(errors.ErrCodeSchema, "variance is not finite")
	}
	return Record{Year: int(year), Month: int(month), Variance: variance}, nil
}

func schemaError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return errors.Wrap(errors.ErrCodeSchema, err, "field %s has type %s", typeErr.Field, typeErr.Value)
	}
	if stderrors.Is(err, io.EOF) {
		return errors.New(errors.ErrCodeSchema, "empty document")
	}
	return errors.Wrap(errors.ErrCodeSchema, err, "malformed JSON")
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
