package domain

import (
	"context"
	"time"
)

// TimeKey formats a reference time as an Open-Meteo hourly index key, e.g.
// "2026-08-23T14:00". The minute component is forced to :00 so a mid-hour
// reference maps onto its hourly bucket. Reference hours must match an index
// entry exactly.
func TimeKey(t time.Time) string {
	return t.Format("2006-01-02T15") + ":00"
}

// HourlySeries holds parallel hourly measurement arrays addressed by
// local-time keys. Elements are nil where the provider reported no value.
// A series is fetched fresh per snapshot and never mutated.
type HourlySeries struct {
	Time []string

	Temperature              []*float64
	ApparentTemperature      []*float64
	Precipitation            []*float64
	Rain                     []*float64
	WindSpeed                []*float64
	WindDirection            []*float64
	WindGusts                []*float64
	Humidity                 []*float64
	DewPoint                 []*float64
	Pressure                 []*float64
	CloudCover               []*float64
	Visibility               []*float64
	WeatherCode              []*float64
	PrecipitationProbability []*float64

	SoilMoisture0To1Cm []*float64
	SoilMoisture1To3Cm []*float64
	SoilMoisture3To9Cm []*float64
	SoilTemperature0Cm []*float64
	SoilTemperature6Cm []*float64
	Evapotranspiration []*float64
}

// IndexOf locates a time key by exact string match.
func (s HourlySeries) IndexOf(key string) (int, bool) {
	for i, t := range s.Time {
		if t == key {
			return i, true
		}
	}
	return 0, false
}

// sampleAt returns the element at idx, or nil when the array is shorter than
// the time index or the provider reported null for that hour.
func sampleAt(vals []*float64, idx int) *float64 {
	if idx < 0 || idx >= len(vals) {
		return nil
	}
	return vals[idx]
}

// valueAt is sampleAt with the documented default of 0 for absent samples.
func valueAt(vals []*float64, idx int) float64 {
	if p := sampleAt(vals, idx); p != nil {
		return *p
	}
	return 0
}

// SeriesProvider fetches the hourly series spanning the seven days up to and
// including the reference date for one venue. Implementations must return a
// fresh series per call; the engine never tolerates stale or cached hours.
type SeriesProvider interface {
	FetchHourly(ctx context.Context, venue Venue, reference time.Time) (HourlySeries, error)
}
