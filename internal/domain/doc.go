// Package domain models hourly venue weather data and the going-prediction
// features derived from it.
//
// # Data Source
//
// Hourly series come from the Open-Meteo forecast API
// (https://api.open-meteo.com/v1/forecast), requested per venue with a seven
// day lookback ending on the reference date. The API returns parallel arrays
// of ~20 measurements addressed by local-time keys of the form
// "YYYY-MM-DDTHH:00". Feature derivation requires an exact key match for the
// reference hour; a missing hour fails that single snapshot, never the run.
//
// # Unit Conventions
//
// Units follow the venue's country:
//
//	USA:       fahrenheit / mph / inch       (labels °F, mph, in)
//	elsewhere: celsius / m/s / millimeter    (labels °C, m/s, mm)
//
// Array elements may be null when the model has no value for an hour. Absent
// samples are carried as nil pointers so a true zero stays distinguishable;
// derived arithmetic substitutes a documented default of 0.
//
// # Going Classification
//
// Track going is predicted from the 0–1cm surface soil moisture (m³/m³):
//
//	<0.15 Firm | <0.25 Good | <0.35 Soft | ≥0.35 Heavy
//
// The four bands are disjoint and cover the whole range, so classification is
// total. The ground saturation index is a depth-weighted composite:
// 0.5·(0–1cm) + 0.3·(1–3cm) + 0.2·(3–9cm).
//
// # Rainfall Windows
//
// Accumulations over the N hours before the reference index are computed only
// when the full window fits in the fetched history; a clipped window yields 0
// rather than a partial sum. Two quirks of the measurement set are kept on
// purpose: rainfall_1h is the current-hour precipitation reading, not a
// delta, and rainfall_7d sums everything before the reference index
// regardless of how many days the history actually spans.
package domain
