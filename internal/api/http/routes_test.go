package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// stubClient answers every city except "Atlantis" (not found) and
// "Offline" (network error).
type stubClient struct{}

func (stubClient) FetchCurrent(ctx context.Context, loc weather.Location, units weather.Units) (weather.CurrentConditions, error) {
	switch loc.City {
	case "Atlantis":
		return weather.CurrentConditions{}, &weather.NotFoundError{Query: loc.City}
	case "Offline":
		return weather.CurrentConditions{}, &weather.NetworkError{Op: "current", Err: errors.New("dial tcp: timeout")}
	}
	name := loc.City
	if name == "" {
		name = "Paris"
	}
	return weather.CurrentConditions{
		Name:        name,
		Country:     "FR",
		Coords:      weather.Coordinates{Lat: 48.85, Lon: 2.35},
		Time:        time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC),
		Temperature: 21.6,
		WindSpeed:   5,
		Category:    "Clear",
		Icon:        "01d",
	}, nil
}

func (stubClient) FetchForecast(ctx context.Context, coords weather.Coordinates, units weather.Units) (weather.Forecast, error) {
	start := time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)
	var samples []weather.ForecastSample
	for i := 0; i < 24; i++ {
		samples = append(samples, weather.ForecastSample{
			Time:     start.Add(time.Duration(i*3) * time.Hour),
			TempMin:  10,
			TempMax:  20,
			Category: "Rain",
			Icon:     "10d",
		})
	}
	return weather.Forecast{Samples: samples}, nil
}

func newTestApp() *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, Deps{
		Service:      weather.NewService(stubClient{}),
		Sessions:     store.NewSessionStore(10, time.Hour),
		DefaultUnits: weather.UnitsMetric,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, target string, out interface{}) int {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, target, err)
		}
	}
	return resp.StatusCode
}

func TestCurrentWeatherValidation(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		target string
		want   int
	}{
		{"/api/v1/weather/city", http.StatusBadRequest},
		{"/api/v1/weather/city?city=Paris&units=kelvin", http.StatusBadRequest},
		{"/api/v1/weather/coords?lat=48.85", http.StatusBadRequest},
		{"/api/v1/weather/coords?lat=100&lon=2", http.StatusBadRequest},
		{"/api/v1/weather/coords?lat=abc&lon=2", http.StatusBadRequest},
		{"/api/v1/forecast", http.StatusBadRequest},
	}

	for _, tt := range tests {
		if got := do(t, app, http.MethodGet, tt.target, nil); got != tt.want {
			t.Errorf("GET %s: expected %d, got %d", tt.target, tt.want, got)
		}
	}
}

func TestCurrentWeather(t *testing.T) {
	app := newTestApp()

	var cur weather.CurrentConditions
	if got := do(t, app, http.MethodGet, "/api/v1/weather/city?city=Paris", &cur); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	if cur.Name != "Paris" || cur.Country != "FR" {
		t.Errorf("unexpected body: %+v", cur)
	}

	if got := do(t, app, http.MethodGet, "/api/v1/weather/coords?lat=48.85&lon=2.35&units=imperial", nil); got != http.StatusOK {
		t.Errorf("expected 200 for coordinates, got %d", got)
	}
}

func TestCurrentWeatherErrors(t *testing.T) {
	app := newTestApp()

	if got := do(t, app, http.MethodGet, "/api/v1/weather/city?city=Atlantis", nil); got != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got)
	}
	if got := do(t, app, http.MethodGet, "/api/v1/weather/city?city=Offline", nil); got != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", got)
	}
}

func TestForecastView(t *testing.T) {
	app := newTestApp()

	var v dashboard.View
	if got := do(t, app, http.MethodGet, "/api/v1/forecast?lat=48.85&lon=2.35&day=2", &v); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	if len(v.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(v.Days))
	}
	if v.SelectedDay != 2 || len(v.Hours) != 8 {
		t.Errorf("expected day 2 with 8 hours, got %d/%d", v.SelectedDay, len(v.Hours))
	}
	if v.Days[0].High != "20°" || v.Days[0].Condition != weather.ConditionRain {
		t.Errorf("unexpected day: %+v", v.Days[0])
	}
	if v.Temperature != "22°C" {
		t.Errorf("expected 22°C, got %s", v.Temperature)
	}
}

func TestDashboardLifecycle(t *testing.T) {
	app := newTestApp()

	var created sessionResponse
	if got := do(t, app, http.MethodPost, "/api/v1/dashboards?city=Paris", &created); got != http.StatusCreated {
		t.Fatalf("expected 201, got %d", got)
	}
	if created.ID == "" || created.Status.State != dashboard.StateLoaded {
		t.Fatalf("unexpected create response: %+v", created)
	}
	base := "/api/v1/dashboards/" + created.ID

	var toggled sessionResponse
	if got := do(t, app, http.MethodPost, base+"/units", &toggled); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	if toggled.Status.Units != weather.UnitsImperial || toggled.Status.View.Temperature != "22°F" {
		t.Errorf("unexpected toggle response: %+v", toggled.Status)
	}
	if toggled.Status.Seq != 2 {
		t.Errorf("expected toggle to issue a second query, got seq %d", toggled.Status.Seq)
	}

	var day sessionResponse
	if got := do(t, app, http.MethodPost, base+"/day?index=1", &day); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	if day.Status.View.SelectedDay != 1 {
		t.Errorf("expected selected day 1, got %d", day.Status.View.SelectedDay)
	}
	if got := do(t, app, http.MethodPost, base+"/day?index=9", nil); got != http.StatusBadRequest {
		t.Errorf("expected 400 for out of range day, got %d", got)
	}

	var located sessionResponse
	if got := do(t, app, http.MethodPost, base+"/locate?lat=59.91&lon=10.75", &located); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	if located.Status.LastQuery == nil || located.Status.LastQuery.Location.Coords == nil {
		t.Errorf("expected coordinate query, got %+v", located.Status.LastQuery)
	}

	if got := do(t, app, http.MethodDelete, base, nil); got != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", got)
	}
	if got := do(t, app, http.MethodGet, base, nil); got != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", got)
	}
}

func TestDashboardErrorsAreNonFatal(t *testing.T) {
	app := newTestApp()

	var created sessionResponse
	do(t, app, http.MethodPost, "/api/v1/dashboards", &created)
	if created.Status.State != dashboard.StateIdle {
		t.Fatalf("expected idle dashboard, got %s", created.Status.State)
	}
	base := "/api/v1/dashboards/" + created.ID

	var failed sessionResponse
	if got := do(t, app, http.MethodPost, base+"/search?city=Atlantis", &failed); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	if failed.Status.State != dashboard.StateError || !strings.Contains(failed.Status.Error, "not found") {
		t.Errorf("unexpected status: %+v", failed.Status)
	}

	if got := do(t, app, http.MethodPost, base+"/search", nil); got != http.StatusBadRequest {
		t.Errorf("expected 400 for empty search, got %d", got)
	}
	if got := do(t, app, http.MethodPost, base+"/day?index=0", nil); got != http.StatusConflict {
		t.Errorf("expected 409 without loaded data, got %d", got)
	}
	if got := do(t, app, http.MethodPost, "/api/v1/dashboards/missing/refresh", nil); got != http.StatusNotFound {
		t.Errorf("expected 404 for unknown session, got %d", got)
	}
}

func TestDashboardKeepsQueryAcrossRequests(t *testing.T) {
	app := newTestApp()

	var created sessionResponse
	if got := do(t, app, http.MethodPost, "/api/v1/dashboards?city=Lyon", &created); got != http.StatusCreated {
		t.Fatalf("expected 201, got %d", got)
	}
	base := "/api/v1/dashboards/" + created.ID

	var searched sessionResponse
	if got := do(t, app, http.MethodPost, base+"/search?city=Marseille", &searched); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}

	for i := 0; i < 300; i++ {
		target := "/api/v1/weather/city?city=QQQQQQQQ" + strconv.Itoa(i%10)
		if got := do(t, app, http.MethodGet, target, nil); got != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", target, got)
		}
	}

	var st sessionResponse
	if got := do(t, app, http.MethodGet, base, &st); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	if st.Status.LastQuery == nil || st.Status.LastQuery.Location.City != "Marseille" {
		t.Fatalf("expected last query for Marseille, got %+v", st.Status.LastQuery)
	}
	if st.Status.View == nil || st.Status.View.Location != "Marseille, FR" {
		t.Errorf("unexpected view: %+v", st.Status.View)
	}
}
