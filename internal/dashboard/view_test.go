package dashboard

import (
	"testing"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestRenderDefaultsToUpcomingHours(t *testing.T) {
	r := testReport(weather.CityLocation("Paris"), weather.UnitsMetric)
	r.Current.Humidity = 63.6
	r.Current.PrecipMM = 0.42
	r.Current.FeelsLike = 19.2

	v := Render(r, -1)

	if v.SelectedDay != -1 {
		t.Errorf("expected no selected day, got %d", v.SelectedDay)
	}
	if len(v.Hours) != HourlySlots {
		t.Fatalf("expected %d hourly slots, got %d", HourlySlots, len(v.Hours))
	}
	// Current observation is at 10:00, so the strip starts at 12:00.
	if v.Hours[0].Time != "12 PM" {
		t.Errorf("expected first slot 12 PM, got %s", v.Hours[0].Time)
	}
	if v.Date != "Tuesday, Aug 5, 2025" {
		t.Errorf("unexpected date %q", v.Date)
	}
	if v.Humidity != "64%" || v.Precipitation != "0.4 mm" || v.FeelsLike != "19°C" || v.Wind != "18 km/h" {
		t.Errorf("unexpected formatted values: %+v", v)
	}
	if v.Days[0].Weekday != "Tue" || v.Days[0].High != "22°" || v.Days[0].Low != "18°" {
		t.Errorf("unexpected day view: %+v", v.Days[0])
	}
	if v.Condition != weather.ConditionClear {
		t.Errorf("expected clear, got %s", v.Condition)
	}
}

func TestRenderImperial(t *testing.T) {
	r := testReport(weather.CityLocation("Paris"), weather.UnitsImperial)
	r.Current.PrecipMM = 25.4

	v := Render(r, 0)
	if v.Temperature != "22°F" || v.Wind != "5 mph" || v.Precipitation != "1.0 in" {
		t.Errorf("unexpected imperial view: %+v", v)
	}
	if v.SelectedDay != 0 || len(v.Hours) != 8 {
		t.Errorf("expected day 0 with 8 hours, got %d/%d", v.SelectedDay, len(v.Hours))
	}
}
