package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seriesBase = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

// timeIndex builds n contiguous hourly keys starting at seriesBase.
func timeIndex(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = TimeKey(seriesBase.Add(time.Duration(i) * time.Hour))
	}
	return out
}

// refAt is the reference time for index i.
func refAt(i int) time.Time {
	return seriesBase.Add(time.Duration(i) * time.Hour)
}

func fs(vals ...float64) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		v := vals[i]
		out[i] = &v
	}
	return out
}

func repeat(v float64, n int) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		val := v
		out[i] = &val
	}
	return out
}

func testVenue(country string) Venue {
	return Venue{Name: "Newbury", Lat: 51.4008, Lon: -1.3267, Country: country, Timezone: "Europe/London"}
}

func TestComputeFeatures_ReferenceLookup(t *testing.T) {
	series := HourlySeries{Time: timeIndex(5), Precipitation: repeat(0, 5)}

	t.Run("exact match", func(t *testing.T) {
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(2))
		require.NoError(t, err)
		assert.Equal(t, refAt(2), rec.ReferenceTime)
	})

	t.Run("mid-hour reference maps to its hourly bucket", func(t *testing.T) {
		_, err := ComputeFeatures(series, testVenue("UK"), refAt(2).Add(30*time.Minute))
		require.NoError(t, err)
	})

	t.Run("missing hour", func(t *testing.T) {
		_, err := ComputeFeatures(series, testVenue("UK"), refAt(99))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTimestampNotFound)
		assert.Contains(t, err.Error(), "Newbury")
	})
}

func TestComputeFeatures_RainfallWindows(t *testing.T) {
	t.Run("three hour window example", func(t *testing.T) {
		// precipitation = [0, 0, 2, 0, 0], reference index 4:
		// sum over indices 1..3 = 0+2+0 = 2.
		series := HourlySeries{Time: timeIndex(5), Precipitation: fs(0, 0, 2, 0, 0)}
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(4))
		require.NoError(t, err)
		assert.Equal(t, 2.0, rec.Rainfall3H)
	})

	t.Run("clipped windows yield zero, not partial sums", func(t *testing.T) {
		series := HourlySeries{Time: timeIndex(10), Precipitation: repeat(1, 10)}
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(2))
		require.NoError(t, err)

		// Only two hours of history: 3h/6h/24h windows do not fit.
		assert.Equal(t, 0.0, rec.Rainfall3H)
		assert.Equal(t, 0.0, rec.Rainfall6H)
		assert.Equal(t, 0.0, rec.Rainfall24H)
		// 7d has no window constraint: it sums all prior history.
		assert.Equal(t, 2.0, rec.Rainfall7D)
	})

	t.Run("windows exactly at the boundary", func(t *testing.T) {
		series := HourlySeries{Time: timeIndex(7), Precipitation: repeat(1, 7)}
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(6))
		require.NoError(t, err)

		assert.Equal(t, 3.0, rec.Rainfall3H)
		assert.Equal(t, 6.0, rec.Rainfall6H)
		assert.Equal(t, 0.0, rec.Rainfall24H) // index 6 < 24
		assert.Equal(t, 6.0, rec.Rainfall7D)
	})

	t.Run("full day window", func(t *testing.T) {
		series := HourlySeries{Time: timeIndex(30), Precipitation: repeat(0.5, 30)}
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(25))
		require.NoError(t, err)

		assert.InDelta(t, 12.0, rec.Rainfall24H, 1e-9)
		assert.InDelta(t, 12.5, rec.Rainfall7D, 1e-9)
	})

	t.Run("rainfall_1h is the current-hour reading, not a delta", func(t *testing.T) {
		series := HourlySeries{Time: timeIndex(5), Precipitation: fs(9, 0, 0, 0, 3.5)}
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(4))
		require.NoError(t, err)
		assert.Equal(t, 3.5, rec.Rainfall1H)
	})

	t.Run("rainfall_1h is zero at index zero", func(t *testing.T) {
		series := HourlySeries{Time: timeIndex(5), Precipitation: fs(9, 0, 0, 0, 0)}
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(0))
		require.NoError(t, err)
		assert.Equal(t, 0.0, rec.Rainfall1H)
		assert.Equal(t, 0.0, rec.Rainfall7D)
	})

	t.Run("non-negative for non-negative input", func(t *testing.T) {
		series := HourlySeries{Time: timeIndex(48), Precipitation: repeat(0.2, 48)}
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(40))
		require.NoError(t, err)

		assert.GreaterOrEqual(t, rec.Rainfall1H, 0.0)
		assert.GreaterOrEqual(t, rec.Rainfall3H, 0.0)
		assert.GreaterOrEqual(t, rec.Rainfall6H, 0.0)
		assert.GreaterOrEqual(t, rec.Rainfall24H, 0.0)
		assert.GreaterOrEqual(t, rec.Rainfall7D, 0.0)
	})
}

func TestComputeFeatures_HoursSinceRain(t *testing.T) {
	tests := []struct {
		name          string
		precipitation []*float64
		refIdx        int
		expected      int
	}{
		{"rain in previous hour", fs(0, 0, 0, 5, 0), 4, 0},
		{"three dry hours after rain", fs(5, 0, 0, 0, 0), 4, 3},
		{"no rain in history", fs(0, 0, 0, 0, 0), 4, 4},
		{"drizzle at threshold counts as dry", fs(0.1, 0.1, 0.1, 0.1, 0), 4, 4},
		{"just above threshold stops the scan", fs(0, 0.11, 0, 0, 0), 4, 2},
		{"reference at history start", fs(5, 0, 0, 0, 0), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := HourlySeries{Time: timeIndex(len(tt.precipitation)), Precipitation: tt.precipitation}
			rec, err := ComputeFeatures(series, testVenue("UK"), refAt(tt.refIdx))
			require.NoError(t, err)

			assert.Equal(t, tt.expected, rec.HoursSinceRain)
			assert.GreaterOrEqual(t, rec.HoursSinceRain, 0)
			assert.LessOrEqual(t, rec.HoursSinceRain, tt.refIdx)
		})
	}
}

func TestComputeFeatures_GroundConditions(t *testing.T) {
	series := HourlySeries{
		Time:               timeIndex(30),
		Precipitation:      repeat(1, 30),
		SoilMoisture0To1Cm: repeat(0.30, 30),
		SoilMoisture1To3Cm: repeat(0.20, 30),
		SoilMoisture3To9Cm: repeat(0.10, 30),
		Evapotranspiration: repeat(0.05, 30),
	}

	rec, err := ComputeFeatures(series, testVenue("UK"), refAt(25))
	require.NoError(t, err)

	// 0.5*0.30 + 0.3*0.20 + 0.2*0.10
	assert.InDelta(t, 0.23, rec.GroundSaturationIndex, 1e-9)
	// rainfall_24h (24) minus et0*24 (1.2)
	assert.InDelta(t, 22.8, rec.NetMoisture24H, 1e-9)
	assert.Equal(t, GoingSoft, rec.PredictedGoing)
}

func TestClassifyGoing(t *testing.T) {
	tests := []struct {
		moisture float64
		expected Going
	}{
		{-0.5, GoingFirm},
		{0.0, GoingFirm},
		{0.1499, GoingFirm},
		{0.15, GoingGood},
		{0.20, GoingGood}, // boundary check from the field guide: 0.20 < 0.25
		{0.2499, GoingGood},
		{0.25, GoingSoft},
		{0.3499, GoingSoft},
		{0.35, GoingHeavy},
		{0.60, GoingHeavy},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyGoing(tt.moisture), "moisture %v", tt.moisture)
	}
}

func TestComputeFeatures_TrendFlags(t *testing.T) {
	build := func(surface []*float64) HourlySeries {
		return HourlySeries{
			Time:               timeIndex(len(surface)),
			Precipitation:      repeat(0, len(surface)),
			SoilMoisture0To1Cm: surface,
		}
	}

	t.Run("drying", func(t *testing.T) {
		rec, err := ComputeFeatures(build(fs(0.30, 0.28, 0.26, 0.24)), testVenue("UK"), refAt(3))
		require.NoError(t, err)
		assert.True(t, rec.TrackDrying)
		assert.False(t, rec.TrackWetting)
	})

	t.Run("wetting", func(t *testing.T) {
		rec, err := ComputeFeatures(build(fs(0.20, 0.22, 0.24, 0.26)), testVenue("UK"), refAt(3))
		require.NoError(t, err)
		assert.False(t, rec.TrackDrying)
		assert.True(t, rec.TrackWetting)
	})

	t.Run("tie leaves both flags false", func(t *testing.T) {
		rec, err := ComputeFeatures(build(fs(0.25, 0.30, 0.20, 0.25)), testVenue("UK"), refAt(3))
		require.NoError(t, err)
		assert.False(t, rec.TrackDrying)
		assert.False(t, rec.TrackWetting)
	})

	t.Run("insufficient history leaves both flags false", func(t *testing.T) {
		rec, err := ComputeFeatures(build(fs(0.30, 0.28, 0.10)), testVenue("UK"), refAt(2))
		require.NoError(t, err)
		assert.False(t, rec.TrackDrying)
		assert.False(t, rec.TrackWetting)
	})

	t.Run("never simultaneously true", func(t *testing.T) {
		for _, surface := range [][]*float64{
			fs(0.1, 0.2, 0.3, 0.4),
			fs(0.4, 0.3, 0.2, 0.1),
			fs(0.2, 0.2, 0.2, 0.2),
		} {
			rec, err := ComputeFeatures(build(surface), testVenue("UK"), refAt(3))
			require.NoError(t, err)
			assert.False(t, rec.TrackDrying && rec.TrackWetting)
		}
	})
}

func TestComputeFeatures_UnitLabels(t *testing.T) {
	series := HourlySeries{Time: timeIndex(3), Precipitation: repeat(0, 3)}

	t.Run("USA venue", func(t *testing.T) {
		rec, err := ComputeFeatures(series, testVenue("USA"), refAt(1))
		require.NoError(t, err)
		assert.Equal(t, "°F", rec.TemperatureUnit)
		assert.Equal(t, "mph", rec.WindSpeedUnit)
		assert.Equal(t, "in", rec.PrecipitationUnit)
	})

	t.Run("UK venue", func(t *testing.T) {
		rec, err := ComputeFeatures(series, testVenue("UK"), refAt(1))
		require.NoError(t, err)
		assert.Equal(t, "°C", rec.TemperatureUnit)
		assert.Equal(t, "m/s", rec.WindSpeedUnit)
		assert.Equal(t, "mm", rec.PrecipitationUnit)
	})
}

func TestComputeFeatures_AbsentSamples(t *testing.T) {
	// Temperature array missing entirely, soil moisture null at the reference
	// hour: raw fields stay nil, derived math defaults the absent inputs to 0.
	surface := repeat(0.30, 5)
	surface[4] = nil
	series := HourlySeries{
		Time:               timeIndex(5),
		Precipitation:      repeat(0, 5),
		SoilMoisture0To1Cm: surface,
		SoilMoisture1To3Cm: repeat(0.20, 5),
	}

	rec, err := ComputeFeatures(series, testVenue("UK"), refAt(4))
	require.NoError(t, err)

	assert.Nil(t, rec.Temperature)
	assert.Nil(t, rec.SoilMoisture0To1Cm)
	assert.NotNil(t, rec.SoilMoisture1To3Cm)
	assert.InDelta(t, 0.06, rec.GroundSaturationIndex, 1e-9) // 0.3*0.20 only
	assert.Equal(t, GoingFirm, rec.PredictedGoing)           // surface defaulted to 0
}

func TestComputeFeatures_FetchedAtUsesClock(t *testing.T) {
	frozen := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	series := HourlySeries{Time: timeIndex(3), Precipitation: repeat(0, 3)}
	rec, err := ComputeFeatures(series, testVenue("UK"), refAt(1))
	require.NoError(t, err)

	assert.Equal(t, frozen, rec.FetchedAt)
	assert.Equal(t, "comprehensive", rec.DataQuality)
}
