// Package dataset loads monthly global-temperature-anomaly data.
//
// # Overview
//
// A [Dataset] is a base temperature plus a flat list of [Record] values, one
// per (year, month) observation. The absolute temperature of a record is
// always variance + base temperature; [Dataset.Temperature] is the only place
// that sum is computed so every consumer agrees on it exactly.
//
// # Sources
//
// Data arrives either over HTTP ([Client.Fetch]) or from a local file
// ([Load]). Both paths share [Decode], which treats the JSON shape as an
// external contract:
//
//	{
//	  "baseTemperature": 8.66,
//	  "monthlyVariance": [{"year": 1753, "month": 1, "variance": -1.366}, ...]
//	}
//
// A missing top-level field, a record with a missing or non-numeric field,
// a fractional year or a month outside 1-12 is rejected with
// errors.ErrCodeSchema before anything downstream sees the data. Network
// failures and non-200 responses are errors.ErrCodeFetch (or ErrCodeTimeout).
// There are no retries; a failed fetch is terminal for that run.
//
// An empty monthlyVariance array is valid and decodes to a Dataset with no
// records.
package dataset
