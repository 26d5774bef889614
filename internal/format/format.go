// Package format turns raw weather magnitudes into display strings.
//
// Every function is pure: the same inputs always produce the same output.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	msToKmh    = 3.6
	mmToInches = 0.0393701
)

// Temperature rounds to the nearest degree and appends the unit symbol.
// Values are in the units the provider was queried with.
func Temperature(v float64, units weather.Units) string {
	symbol := "°C"
	if units == weather.UnitsImperial {
		symbol = "°F"
	}
	return fmt.Sprintf("%d%s", round(v), symbol)
}

// Degrees renders a temperature without the unit letter, e.g. "22°".
func Degrees(v float64) string {
	return fmt.Sprintf("%d°", round(v))
}

// Wind renders a wind speed. Metric input is m/s and is shown in km/h;
// imperial input is already mph.
func Wind(v float64, units weather.Units) string {
	if units == weather.UnitsImperial {
		return fmt.Sprintf("%d mph", round(v))
	}
	return fmt.Sprintf("%d km/h", round(v*msToKmh))
}

// Precipitation renders millimetres with one decimal.
func Precipitation(mm float64) string {
	return fmt.Sprintf("%.1f mm", clampZero(mm))
}

// PrecipitationInches converts millimetres to inches with one decimal.
func PrecipitationInches(mm float64) string {
	return fmt.Sprintf("%.1f in", clampZero(mm*mmToInches))
}

// PrecipitationFor picks millimetres or inches to match the units mode.
func PrecipitationFor(mm float64, units weather.Units) string {
	if units == weather.UnitsImperial {
		return PrecipitationInches(mm)
	}
	return Precipitation(mm)
}

// Humidity renders a relative humidity percentage.
func Humidity(pct float64) string {
	return fmt.Sprintf("%d%%", round(pct))
}

// Date renders a wall-clock date like "Tuesday, Aug 5, 2025".
func Date(t time.Time) string {
	return t.Format("Monday, Jan 2, 2006")
}

// Weekday renders the abbreviated day name, e.g. "Tue".
func Weekday(t time.Time) string {
	return t.Format("Mon")
}

// Hour renders a 12-hour clock label such as "3 PM".
func Hour(t time.Time) string {
	return t.Format("3 PM")
}

// round rounds half away from zero. Being an int, it never renders "-0".
func round(v float64) int {
	return int(math.Round(v))
}

// clampZero keeps "%.1f" from printing "-0.0".
func clampZero(v float64) float64 {
	if v < 0.05 && v > -0.05 {
		return 0
	}
	return v
}
