package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed venues.yaml
var venuesYAML []byte

// Venue is one racecourse in the static catalog.
type Venue struct {
	Name     string  `yaml:"name"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	Country  string  `yaml:"country"`
	Timezone string  `yaml:"timezone"`
}

// catalog is built once from the embedded YAML and never mutated afterwards,
// so concurrent reads need no locking.
var (
	catalog      map[string]Venue
	catalogOrder []string
)

func init() {
	var venues []Venue
	if err := yaml.Unmarshal(venuesYAML, &venues); err != nil {
		panic(fmt.Sprintf("domain: parse embedded venue catalog: %v", err))
	}
	catalog = make(map[string]Venue, len(venues))
	catalogOrder = make([]string, 0, len(venues))
	for _, v := range venues {
		catalog[v.Name] = v
		catalogOrder = append(catalogOrder, v.Name)
	}
}

// LookupVenue returns the venue for a catalog name.
func LookupVenue(name string) (Venue, bool) {
	v, ok := catalog[name]
	return v, ok
}

// Venues returns the full catalog in declaration order.
func Venues() []Venue {
	out := make([]Venue, 0, len(catalogOrder))
	for _, name := range catalogOrder {
		out = append(out, catalog[name])
	}
	return out
}

// Units describes the measurement system for a venue's country: the request
// parameters sent to Open-Meteo and the display labels stored with each
// snapshot.
type Units struct {
	Temperature   string // API parameter, "fahrenheit" or "celsius"
	WindSpeed     string // API parameter, "mph" or "ms"
	Precipitation string // API parameter, "inch" or "mm"

	TemperatureLabel   string // "°F" or "°C"
	WindSpeedLabel     string // "mph" or "m/s"
	PrecipitationLabel string // "in" or "mm"
}

// UnitsFor selects the unit system from a country code. "USA" gets imperial
// units; every other value gets metric.
func UnitsFor(country string) Units {
	if country == "USA" {
		return Units{
			Temperature:        "fahrenheit",
			WindSpeed:          "mph",
			Precipitation:      "inch",
			TemperatureLabel:   "°F",
			WindSpeedLabel:     "mph",
			PrecipitationLabel: "in",
		}
	}
	return Units{
		Temperature:        "celsius",
		WindSpeed:          "ms",
		Precipitation:      "mm",
		TemperatureLabel:   "°C",
		WindSpeedLabel:     "m/s",
		PrecipitationLabel: "mm",
	}
}
