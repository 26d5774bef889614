package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// Units selects the display convention and the provider's unit system.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits accepts "metric" or "imperial" (case-insensitive).
func ParseUnits(s string) (Units, error) {
	switch Units(strings.ToLower(strings.TrimSpace(s))) {
	case UnitsMetric:
		return UnitsMetric, nil
	case UnitsImperial:
		return UnitsImperial, nil
	default:
		return "", fmt.Errorf("unknown units mode %q", s)
	}
}

// Toggle returns the other units mode.
func (u Units) Toggle() Units {
	if u == UnitsImperial {
		return UnitsMetric
	}
	return UnitsImperial
}

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown      Condition = "unknown"
	ConditionClear        Condition = "clear"
	ConditionPartlyCloudy Condition = "partly-cloudy"
	ConditionCloudy       Condition = "cloudy"
	ConditionRain         Condition = "rain"
	ConditionDrizzle      Condition = "drizzle"
	ConditionSnow         Condition = "snow"
	ConditionStorm        Condition = "storm"
	ConditionFog          Condition = "fog"
)

// ClassifyCondition maps a provider category label (e.g. "Rain") and icon code
// (e.g. "02d") to a Condition. Icon code 02 always means partly cloudy.
func ClassifyCondition(category, icon string) Condition {
	if common.ContainsAnyFold(icon, "02d", "02n") {
		return ConditionPartlyCloudy
	}
	switch strings.ToLower(category) {
	case "clear":
		return ConditionClear
	case "clouds":
		return ConditionCloudy
	case "rain":
		return ConditionRain
	case "drizzle":
		return ConditionDrizzle
	case "thunderstorm":
		return ConditionStorm
	case "snow":
		return ConditionSnow
	case "mist", "fog", "haze", "smoke", "dust", "sand":
		return ConditionFog
	default:
		return ConditionUnknown
	}
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Location is what a query asks for: a city name, or coordinates when known.
// Coordinates take precedence over City.
type Location struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// CityLocation builds a city-name Location.
func CityLocation(city string) Location {
	return Location{City: strings.TrimSpace(city)}
}

// CoordsLocation builds a coordinate Location.
func CoordsLocation(lat, lon float64) Location {
	return Location{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// Key returns a canonical string key for indexing this location in caches.
func (l Location) Key() string {
	if l.Coords != nil {
		return "coords:" + l.Coords.String()
	}
	return "city:" + strings.ToLower(l.City)
}

// IsZero reports whether the location names nothing.
func (l Location) IsZero() bool {
	return l.Coords == nil && l.City == ""
}

// TimezoneOffset is the number of seconds east of UTC of a location.
type TimezoneOffset int

// Wall shifts t into the location's wall clock. The result is expressed in
// UTC so that its date and hour fields read as local values regardless of
// the host timezone.
func (o TimezoneOffset) Wall(t time.Time) time.Time {
	return t.UTC().Add(time.Duration(o) * time.Second)
}

// CurrentConditions is the provider's current-weather report for a location.
type CurrentConditions struct {
	Name        string         `json:"name"`
	Country     string         `json:"country,omitempty"`
	Coords      Coordinates    `json:"coords"`
	Time        time.Time      `json:"time"` // always UTC
	Offset      TimezoneOffset `json:"timezoneOffset"`
	Temperature float64        `json:"temperature"`
	FeelsLike   float64        `json:"feelsLike"`
	TempMin     float64        `json:"tempMin"`
	TempMax     float64        `json:"tempMax"`
	Humidity    float64        `json:"humidityPercent"`
	WindSpeed   float64        `json:"windSpeed"`
	PrecipMM    float64        `json:"precipMm"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
}

// DisplayName returns "Name, CC", or just the name when the country is unknown.
func (c CurrentConditions) DisplayName() string {
	if c.Country == "" {
		return c.Name
	}
	return c.Name + ", " + c.Country
}

// Condition classifies the current weather.
func (c CurrentConditions) Condition() Condition {
	return ClassifyCondition(c.Category, c.Icon)
}

// ForecastSample is one 3-hour forecast slot.
type ForecastSample struct {
	Time        time.Time `json:"time"` // always UTC
	Temperature float64   `json:"temperature"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	FeelsLike   float64   `json:"feelsLike"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	PrecipMM    float64   `json:"precipMm"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// Condition classifies the sample's weather.
func (s ForecastSample) Condition() Condition {
	return ClassifyCondition(s.Category, s.Icon)
}

// Forecast is a time-ordered list of samples with the location's offset.
type Forecast struct {
	Samples []ForecastSample `json:"samples"`
	Offset  TimezoneOffset   `json:"timezoneOffset"`
}

// DayBucket summarizes the samples that fall on one local calendar day.
type DayBucket struct {
	Date           string           `json:"date"` // YYYY-MM-DD, local
	Samples        []ForecastSample `json:"samples"`
	Min            float64          `json:"min"`
	Max            float64          `json:"max"`
	Representative ForecastSample   `json:"representative"`
}

// Report is everything one query produced.
type Report struct {
	Location Location          `json:"location"`
	Units    Units             `json:"units"`
	Current  CurrentConditions `json:"current"`
	Forecast Forecast          `json:"forecast"`
	Days     []DayBucket       `json:"days"`
}
