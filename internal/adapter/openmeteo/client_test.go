package openmeteo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/turf-weather-collector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ukVenue() domain.Venue {
	return domain.Venue{Name: "Newbury", Lat: 51.4008, Lon: -1.3267, Country: "UK", Timezone: "Europe/London"}
}

func usaVenue() domain.Venue {
	return domain.Venue{Name: "Churchill Downs", Lat: 38.2048, Lon: -85.7702, Country: "USA", Timezone: "America/New_York"}
}

func TestClient_FetchHourly_Success(t *testing.T) {
	reference := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	temp := 8.4
	moisture := 0.27

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "51.4008", q.Get("latitude"))
		assert.Equal(t, "-1.3267", q.Get("longitude"))
		assert.Equal(t, "celsius", q.Get("temperature_unit"))
		assert.Equal(t, "ms", q.Get("wind_speed_unit"))
		assert.Equal(t, "mm", q.Get("precipitation_unit"))
		assert.Equal(t, "Europe/London", q.Get("timezone"))
		assert.Equal(t, "2026-03-03", q.Get("start_date"))
		assert.Equal(t, "2026-03-10", q.Get("end_date"))
		assert.Contains(t, q.Get("hourly"), "soil_moisture_0_to_1cm")
		assert.Contains(t, q.Get("hourly"), "et0_fao_evapotranspiration")

		resp := response{Hourly: hourly{
			Time:               []string{"2026-03-10T13:00", "2026-03-10T14:00"},
			Temperature2M:      []*float64{nil, &temp},
			SoilMoisture0To1Cm: []*float64{&moisture, &moisture},
		}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	series, err := c.FetchHourly(context.Background(), ukVenue(), reference)
	require.NoError(t, err)

	require.Len(t, series.Time, 2)
	idx, ok := series.IndexOf(domain.TimeKey(reference))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	require.NotNil(t, series.Temperature[1])
	assert.Equal(t, 8.4, *series.Temperature[1])
	assert.Nil(t, series.Temperature[0])
	assert.Equal(t, 0.27, *series.SoilMoisture0To1Cm[1])
}

func TestClient_FetchHourly_USAUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "fahrenheit", q.Get("temperature_unit"))
		assert.Equal(t, "mph", q.Get("wind_speed_unit"))
		assert.Equal(t, "inch", q.Get("precipitation_unit"))
		assert.Equal(t, "America/New_York", q.Get("timezone"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response{}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	_, err := c.FetchHourly(context.Background(), usaVenue(), time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestClient_FetchHourly_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"reason":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	_, err := c.FetchHourly(context.Background(), ukVenue(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_FetchHourly_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, testLogger())
	_, err := c.FetchHourly(context.Background(), ukVenue(), time.Now())
	require.Error(t, err)
}

func TestClient_FetchHourly_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly": {`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, testLogger())
	_, err := c.FetchHourly(context.Background(), ukVenue(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", time.Second, testLogger())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
