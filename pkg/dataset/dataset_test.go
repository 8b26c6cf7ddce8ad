package dataset

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/thermogrid/pkg/errors"
)

const sampleDoc = `{
  "baseTemperature": 8.66,
  "monthlyVariance": [
    {"year": 1753, "month": 1, "variance": -1.366},
    {"year": 1753, "month": 2, "variance": -2.223},
    {"year": 2015, "month": 9, "variance": 1.103, "note": "ignored"}
  ]
}`

func TestDecode(t *testing.T) {
	ds, err := DecodeBytes([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, 8.66, ds.BaseTemperature)
	require.Len(t, ds.MonthlyVariance, 3)
	assert.Equal(t, Record{Year: 1753, Month: 1, Variance: -1.366}, ds.MonthlyVariance[0])
	assert.Equal(t, Record{Year: 2015, Month: 9, Variance: 1.103}, ds.MonthlyVariance[2])
}

func TestDecodeEmptyRecords(t *testing.T) {
	ds, err := DecodeBytes([]byte(`{"baseTemperature": 8.66, "monthlyVariance": []}`))
	require.NoError(t, err)
	assert.True(t, ds.Empty())

	_, ok := ds.Extent()
	assert.False(t, ok)
}

func TestDecodeSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ``},
		{"not json", `<html>`},
		{"missing base", `{"monthlyVariance": []}`},
		{"missing records", `{"baseTemperature": 8.66}`},
		{"base is string", `{"baseTemperature": "8.66", "monthlyVariance": []}`},
		{"records not array", `{"baseTemperature": 8.66, "monthlyVariance": {}}`},
		{"missing year", `{"baseTemperature": 8.66, "monthlyVariance": [{"month": 1, "variance": 0}]}`},
		{"missing month", `{"baseTemperature": 8.66, "monthlyVariance": [{"year": 1753, "variance": 0}]}`},
		{"missing variance", `{"baseTemperature": 8.66, "monthlyVariance": [{"year": 1753, "month": 1}]}`},
		{"year is string", `{"baseTemperature": 8.66, "monthlyVariance": [{"year": "1753", "month": 1, "variance": 0}]}`},
		{"fractional year", `{"baseTemperature": 8.66, "monthlyVariance": [{"year": 1753.5, "month": 1, "variance": 0}]}`},
		{"year overflows int", `{"baseTemperature": 8.66, "monthlyVariance": [{"year": 1e19, "month": 1, "variance": 0}]}`},
		{"year below range", `{"baseTemperature": 8.66, "monthlyVariance": [{"year": -3000000000, "month": 1, "variance": 0}]}`},
		{"trailing document", `{"baseTemperature": 8.66, "monthlyVariance": []} {"garbage": true}`},
		{"trailing garbage", `{"baseTemperature": 8.66, "monthlyVariance": []} xyz`},
		{"month zero", `{"baseTemperature": 8.66, "monthlyVariance": [{"year": 1753, "month": 0, "variance": 0}]}`},
		{"month thirteen", `{"baseTemperature": 8.66, "monthlyVariance": [{"year": 1753, "month": 13, "variance": 0}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeSchema, errors.GetCode(err))
		})
	}
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	ds, err := DecodeBytes([]byte(sampleDoc + "\n\t \n"))
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestDecodeYearAtRangeLimit(t *testing.T) {
	ds, err := DecodeBytes([]byte(`{"baseTemperature": 8.66, "monthlyVariance": [{"year": 2147483647, "month": 1, "variance": 0}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2147483647, ds.MonthlyVariance[0].Year)
}

func TestTemperatureAndExtent(t *testing.T) {
	ds := Dataset{
		BaseTemperature: 8.66,
		MonthlyVariance: []Record{
			{Year: 1800, Month: 6, Variance: 0.5},
			{Year: 1753, Month: 1, Variance: -1.5},
			{Year: 2015, Month: 12, Variance: 2.0},
		},
	}

	assert.InDelta(t, 9.16, ds.Temperature(ds.MonthlyVariance[0]), 1e-9)

	e, ok := ds.Extent()
	require.True(t, ok)
	assert.Equal(t, 1753, e.MinYear)
	assert.Equal(t, 2015, e.MaxYear)
	assert.InDelta(t, 7.16, e.MinTemp, 1e-9)
	assert.InDelta(t, 10.66, e.MaxTemp, 1e-9)
}

func TestEncodeRoundTripShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Dataset{BaseTemperature: 8.66}))
	assert.Contains(t, buf.String(), `"monthlyVariance": []`)

	ds, err := Decode(&buf)
	require.NoError(t, err)
	assert.True(t, ds.Empty())
}

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleDoc))
	}))
	defer server.Close()

	c := NewClient(time.Second, nil)
	ds, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestClientFetchHeaders(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte(sampleDoc))
	}))
	defer server.Close()

	c := NewClient(time.Second, map[string]string{"User-Agent": "thermogrid-test"})
	_, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "thermogrid-test", got)
}

func TestClientFetchStatusError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(time.Second, nil).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetch, errors.GetCode(err))
	assert.Equal(t, 1, calls, "failed requests must not be retried")
}

func TestClientFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := NewClient(50*time.Millisecond, nil).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.GetCode(err))
}

func TestClientFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"baseTemperature": 8.66}`))
	}))
	defer server.Close()

	_, err := NewClient(time.Second, nil).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSchema, errors.GetCode(err))
}

func TestClientFetchRejectsBadURL(t *testing.T) {
	_, err := NewClient(time.Second, nil).Fetch(context.Background(), "ftp://example.com/data.json")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "global-temperature.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
	assert.True(t, errors.IsDatasetError(err))
}

func TestLoadSchemaError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(sampleDoc, `"month": 2`, `"month": "Feb"`, 1)), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSchema, errors.GetCode(err))
}
