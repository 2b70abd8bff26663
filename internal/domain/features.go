package domain

import (
	"fmt"
	"time"
)

// rainThreshold is the precipitation level (in the request's precipitation
// unit) below which an hour counts as dry for the hours-since-rain streak.
const rainThreshold = 0.1

// ComputeFeatures derives one FeatureRecord from an hourly series at the
// venue's reference hour. It is a pure function of its inputs apart from the
// FetchedAt stamp, which comes from the package clock.
//
// The reference hour is located by exact key match against the series time
// index; if absent the call fails with ErrTimestampNotFound. That failure is
// fatal for this snapshot only.
func ComputeFeatures(series HourlySeries, venue Venue, reference time.Time) (FeatureRecord, error) {
	key := TimeKey(reference)
	idx, ok := series.IndexOf(key)
	if !ok {
		return FeatureRecord{}, fmt.Errorf("%w: %s for %s", ErrTimestampNotFound, key, venue.Name)
	}

	units := UnitsFor(venue.Country)

	rec := FeatureRecord{
		Venue:         venue.Name,
		Country:       venue.Country,
		ReferenceTime: reference,

		Temperature:              sampleAt(series.Temperature, idx),
		ApparentTemperature:      sampleAt(series.ApparentTemperature, idx),
		PrecipitationCurrent:     sampleAt(series.Precipitation, idx),
		RainCurrent:              sampleAt(series.Rain, idx),
		WindSpeed:                sampleAt(series.WindSpeed, idx),
		WindDirection:            sampleAt(series.WindDirection, idx),
		WindGusts:                sampleAt(series.WindGusts, idx),
		Humidity:                 sampleAt(series.Humidity, idx),
		DewPoint:                 sampleAt(series.DewPoint, idx),
		Pressure:                 sampleAt(series.Pressure, idx),
		CloudCover:               sampleAt(series.CloudCover, idx),
		Visibility:               sampleAt(series.Visibility, idx),
		WeatherCode:              sampleAt(series.WeatherCode, idx),
		PrecipitationProbability: sampleAt(series.PrecipitationProbability, idx),

		SoilMoisture0To1Cm: sampleAt(series.SoilMoisture0To1Cm, idx),
		SoilMoisture1To3Cm: sampleAt(series.SoilMoisture1To3Cm, idx),
		SoilMoisture3To9Cm: sampleAt(series.SoilMoisture3To9Cm, idx),
		SoilTemperature0Cm: sampleAt(series.SoilTemperature0Cm, idx),
		SoilTemperature6Cm: sampleAt(series.SoilTemperature6Cm, idx),
		Evapotranspiration: sampleAt(series.Evapotranspiration, idx),

		DataQuality:       "comprehensive",
		FetchedAt:         clock.Now(),
		TemperatureUnit:   units.TemperatureLabel,
		WindSpeedUnit:     units.WindSpeedLabel,
		PrecipitationUnit: units.PrecipitationLabel,
	}

	// rainfall_1h is the current-hour reading, not a one-hour delta.
	if idx > 0 {
		rec.Rainfall1H = valueAt(series.Precipitation, idx)
	}
	rec.Rainfall3H = windowSum(series.Precipitation, idx, 3)
	rec.Rainfall6H = windowSum(series.Precipitation, idx, 6)
	rec.Rainfall24H = windowSum(series.Precipitation, idx, 24)
	// rainfall_7d sums the entire fetched history before the reference hour.
	for i := 0; i < idx; i++ {
		rec.Rainfall7D += valueAt(series.Precipitation, i)
	}

	rec.HoursSinceRain = hoursSinceRain(series.Precipitation, idx)

	surface := valueAt(series.SoilMoisture0To1Cm, idx)
	rec.GroundSaturationIndex = surface*0.5 +
		valueAt(series.SoilMoisture1To3Cm, idx)*0.3 +
		valueAt(series.SoilMoisture3To9Cm, idx)*0.2
	rec.NetMoisture24H = rec.Rainfall24H - valueAt(series.Evapotranspiration, idx)*24
	rec.PredictedGoing = ClassifyGoing(surface)

	// Trend flags need a full three hours of history; on a tie both stay false.
	if idx >= 3 {
		past := valueAt(series.SoilMoisture0To1Cm, idx-3)
		rec.TrackDrying = surface < past
		rec.TrackWetting = surface > past
	}

	return rec, nil
}

// windowSum sums vals over the half-open window [idx-n, idx). A window that
// does not fit entirely within the history yields 0, never a partial sum.
func windowSum(vals []*float64, idx, n int) float64 {
	if idx < n {
		return 0
	}
	var sum float64
	for i := idx - n; i < idx; i++ {
		sum += valueAt(vals, i)
	}
	return sum
}

// hoursSinceRain counts consecutive dry hours immediately before idx, walking
// backward until the first hour above rainThreshold or the start of history.
func hoursSinceRain(precipitation []*float64, idx int) int {
	hours := 0
	for i := idx - 1; i >= 0; i-- {
		if valueAt(precipitation, i) > rainThreshold {
			break
		}
		hours++
	}
	return hours
}
