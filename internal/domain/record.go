package domain

import "time"

// Going is the qualitative track firmness classification.
type Going string

const (
	GoingFirm  Going = "Firm"
	GoingGood  Going = "Good"
	GoingSoft  Going = "Soft"
	GoingHeavy Going = "Heavy"
)

// ClassifyGoing maps the 0–1cm surface soil moisture onto a going label.
// The bands are disjoint and gapless, so every input classifies.
func ClassifyGoing(surfaceMoisture float64) Going {
	switch {
	case surfaceMoisture < 0.15:
		return GoingFirm
	case surfaceMoisture < 0.25:
		return GoingGood
	case surfaceMoisture < 0.35:
		return GoingSoft
	default:
		return GoingHeavy
	}
}

// FeatureRecord is an immutable weather snapshot at one reference hour.
// Raw and ground condition fields are nil when the provider had no value for
// that hour; derived fields always carry a value (absent inputs default to 0).
type FeatureRecord struct {
	Venue         string    `json:"venue"`
	Country       string    `json:"country"`
	ReferenceTime time.Time `json:"reference_time"`

	// Raw conditions at the reference hour.
	Temperature              *float64 `json:"temperature"`
	ApparentTemperature      *float64 `json:"apparent_temperature"`
	PrecipitationCurrent     *float64 `json:"precipitation_current"`
	RainCurrent              *float64 `json:"rain_current"`
	WindSpeed                *float64 `json:"wind_speed"`
	WindDirection            *float64 `json:"wind_direction"`
	WindGusts                *float64 `json:"wind_gusts"`
	Humidity                 *float64 `json:"humidity"`
	DewPoint                 *float64 `json:"dew_point"`
	Pressure                 *float64 `json:"pressure"`
	CloudCover               *float64 `json:"cloud_cover"`
	Visibility               *float64 `json:"visibility"`
	WeatherCode              *float64 `json:"weather_code"`
	PrecipitationProbability *float64 `json:"precipitation_probability"`

	// Ground conditions at the reference hour.
	SoilMoisture0To1Cm *float64 `json:"soil_moisture_0_1cm"`
	SoilMoisture1To3Cm *float64 `json:"soil_moisture_1_3cm"`
	SoilMoisture3To9Cm *float64 `json:"soil_moisture_3_9cm"`
	SoilTemperature0Cm *float64 `json:"soil_temperature_0cm"`
	SoilTemperature6Cm *float64 `json:"soil_temperature_6cm"`
	Evapotranspiration *float64 `json:"evapotranspiration"`

	// Backward-looking rainfall accumulations.
	Rainfall1H  float64 `json:"rainfall_1h"`
	Rainfall3H  float64 `json:"rainfall_3h"`
	Rainfall6H  float64 `json:"rainfall_6h"`
	Rainfall24H float64 `json:"rainfall_24h"`
	Rainfall7D  float64 `json:"rainfall_7d"`

	// Derived indices.
	GroundSaturationIndex float64 `json:"ground_saturation_index"`
	NetMoisture24H        float64 `json:"net_moisture_24h"`
	HoursSinceRain        int     `json:"hours_since_rain"`
	PredictedGoing        Going   `json:"predicted_going"`
	TrackDrying           bool    `json:"track_drying"`
	TrackWetting          bool    `json:"track_wetting"`

	// Metadata.
	DataQuality       string    `json:"data_quality"`
	FetchedAt         time.Time `json:"fetched_at"`
	TemperatureUnit   string    `json:"temperature_unit"`
	WindSpeedUnit     string    `json:"wind_speed_unit"`
	PrecipitationUnit string    `json:"precipitation_unit"`
}
