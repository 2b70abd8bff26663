// Package openmeteo implements domain.SeriesProvider against the Open-Meteo
// forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/turf-weather-collector/internal/domain"
)

// DefaultBaseURL is the public Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// lookbackDays is how far before the reference date the series begins. Seven
// days feeds the rainfall_7d accumulation.
const lookbackDays = 7

// hourlyVariables is the measurement set requested per venue, in the order
// Open-Meteo documents them.
var hourlyVariables = []string{
	"temperature_2m",
	"apparent_temperature",
	"precipitation",
	"rain",
	"wind_speed_10m",
	"wind_direction_10m",
	"wind_gusts_10m",
	"relative_humidity_2m",
	"dew_point_2m",
	"soil_moisture_0_to_1cm",
	"soil_moisture_1_to_3cm",
	"soil_moisture_3_to_9cm",
	"soil_temperature_0cm",
	"soil_temperature_6cm",
	"et0_fao_evapotranspiration",
	"pressure_msl",
	"cloud_cover",
	"visibility",
	"weather_code",
	"precipitation_probability",
}

// Client fetches hourly series over HTTP. It implements domain.SeriesProvider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// FetchHourly requests the hourly series for the seven days up to and
// including the reference date, in the venue's local timezone and country
// units. Every call hits the API; responses are never cached.
func (c *Client) FetchHourly(ctx context.Context, venue domain.Venue, reference time.Time) (domain.HourlySeries, error) {
	units := domain.UnitsFor(venue.Country)
	endDate := reference.Format("2006-01-02")
	startDate := reference.AddDate(0, 0, -lookbackDays).Format("2006-01-02")

	params := url.Values{
		"latitude":           {strconv.FormatFloat(venue.Lat, 'f', 4, 64)},
		"longitude":          {strconv.FormatFloat(venue.Lon, 'f', 4, 64)},
		"hourly":             {strings.Join(hourlyVariables, ",")},
		"temperature_unit":   {units.Temperature},
		"wind_speed_unit":    {units.WindSpeed},
		"precipitation_unit": {units.Precipitation},
		"timezone":           {venue.Timezone},
		"start_date":         {startDate},
		"end_date":           {endDate},
	}

	c.logger.Info("fetching hourly series",
		"venue", venue.Name,
		"reference", domain.TimeKey(reference),
		"start_date", startDate,
		"end_date", endDate,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.HourlySeries{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.HourlySeries{}, fmt.Errorf("decode response: %w", err)
	}

	return payload.Hourly.toSeries(), nil
}

// Open-Meteo API response types. Measurement elements are pointers because
// the API emits JSON null for hours without model output.

type response struct {
	Hourly hourly `json:"hourly"`
}

type hourly struct {
	Time                     []string   `json:"time"`
	Temperature2M            []*float64 `json:"temperature_2m"`
	ApparentTemperature      []*float64 `json:"apparent_temperature"`
	Precipitation            []*float64 `json:"precipitation"`
	Rain                     []*float64 `json:"rain"`
	WindSpeed10M             []*float64 `json:"wind_speed_10m"`
	WindDirection10M         []*float64 `json:"wind_direction_10m"`
	WindGusts10M             []*float64 `json:"wind_gusts_10m"`
	RelativeHumidity2M       []*float64 `json:"relative_humidity_2m"`
	DewPoint2M               []*float64 `json:"dew_point_2m"`
	SoilMoisture0To1Cm       []*float64 `json:"soil_moisture_0_to_1cm"`
	SoilMoisture1To3Cm       []*float64 `json:"soil_moisture_1_to_3cm"`
	SoilMoisture3To9Cm       []*float64 `json:"soil_moisture_3_to_9cm"`
	SoilTemperature0Cm       []*float64 `json:"soil_temperature_0cm"`
	SoilTemperature6Cm       []*float64 `json:"soil_temperature_6cm"`
	Et0FaoEvapotranspiration []*float64 `json:"et0_fao_evapotranspiration"`
	PressureMsl              []*float64 `json:"pressure_msl"`
	CloudCover               []*float64 `json:"cloud_cover"`
	Visibility               []*float64 `json:"visibility"`
	WeatherCode              []*float64 `json:"weather_code"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
}

func (h hourly) toSeries() domain.HourlySeries {
	return domain.HourlySeries{
		Time:                     h.Time,
		Temperature:              h.Temperature2M,
		ApparentTemperature:      h.ApparentTemperature,
		Precipitation:            h.Precipitation,
		Rain:                     h.Rain,
		WindSpeed:                h.WindSpeed10M,
		WindDirection:            h.WindDirection10M,
		WindGusts:                h.WindGusts10M,
		Humidity:                 h.RelativeHumidity2M,
		DewPoint:                 h.DewPoint2M,
		Pressure:                 h.PressureMsl,
		CloudCover:               h.CloudCover,
		Visibility:               h.Visibility,
		WeatherCode:              h.WeatherCode,
		PrecipitationProbability: h.PrecipitationProbability,
		SoilMoisture0To1Cm:       h.SoilMoisture0To1Cm,
		SoilMoisture1To3Cm:       h.SoilMoisture1To3Cm,
		SoilMoisture3To9Cm:       h.SoilMoisture3To9Cm,
		SoilTemperature0Cm:       h.SoilTemperature0Cm,
		SoilTemperature6Cm:       h.SoilTemperature6Cm,
		Evapotranspiration:       h.Et0FaoEvapotranspiration,
	}
}
