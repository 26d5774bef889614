package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

var validate = validator.New()

// OpenWeatherConfig configures an OpenWeatherClient. Zero values fall back to
// defaults; RequestsPerSecond <= 0 disables client-side rate limiting.
type OpenWeatherConfig struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	Burst             int
	Backoff           BackoffConfig
}

// OpenWeatherClient implements weather.Client for OpenWeatherMap.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherClient(client *http.Client, cfg OpenWeatherConfig) *OpenWeatherClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}

	backoff := cfg.Backoff
	if backoff.InitialInterval <= 0 {
		backoff = BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &OpenWeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
			Limiter: limiter,
		},
		circuit: cb,
	}
}

// FetchCurrent calls /weather by city name or by coordinates.
func (p *OpenWeatherClient) FetchCurrent(ctx context.Context, loc weather.Location, units weather.Units) (weather.CurrentConditions, error) {
	const op = "current"

	values := url.Values{}
	query := loc.City
	if loc.Coords != nil {
		values.Set("lat", fmt.Sprintf("%f", loc.Coords.Lat))
		values.Set("lon", fmt.Sprintf("%f", loc.Coords.Lon))
		query = loc.Coords.String()
	} else {
		values.Set("q", loc.City)
	}

	var payload currentPayload
	if err := p.get(ctx, op, "/weather", values, units, query, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	cond := payload.Weather[0]
	cur := weather.CurrentConditions{
		Name:        payload.Name,
		Country:     payload.Sys.Country,
		Coords:      weather.Coordinates{Lat: *payload.Coord.Lat, Lon: *payload.Coord.Lon},
		Time:        time.Unix(*payload.Dt, 0).UTC(),
		Offset:      weather.TimezoneOffset(*payload.Timezone),
		Temperature: *payload.Main.Temp,
		FeelsLike:   *payload.Main.FeelsLike,
		TempMin:     *payload.Main.TempMin,
		TempMax:     *payload.Main.TempMax,
		Humidity:    *payload.Main.Humidity,
		WindSpeed:   *payload.Wind.Speed,
		Category:    cond.Main,
		Description: cond.Description,
		Icon:        cond.Icon,
	}

	switch {
	case payload.Rain != nil:
		cur.PrecipMM = payload.Rain.OneH
	case payload.Snow != nil:
		cur.PrecipMM = payload.Snow.OneH
	}

	return cur, nil
}

// FetchForecast calls /forecast (5 days in 3-hour steps) by coordinates.
func (p *OpenWeatherClient) FetchForecast(ctx context.Context, coords weather.Coordinates, units weather.Units) (weather.Forecast, error) {
	const op = "forecast"

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", coords.Lat))
	values.Set("lon", fmt.Sprintf("%f", coords.Lon))

	var payload forecastPayload
	if err := p.get(ctx, op, "/forecast", values, units, coords.String(), &payload); err != nil {
		return weather.Forecast{}, err
	}

	samples := make([]weather.ForecastSample, 0, len(payload.List))
	for _, e := range payload.List {
		cond := e.Weather[0]
		s := weather.ForecastSample{
			Time:        time.Unix(*e.Dt, 0).UTC(),
			Temperature: *e.Main.Temp,
			TempMin:     *e.Main.TempMin,
			TempMax:     *e.Main.TempMax,
			FeelsLike:   *e.Main.FeelsLike,
			Humidity:    *e.Main.Humidity,
			Category:    cond.Main,
			Description: cond.Description,
			Icon:        cond.Icon,
		}
		if e.Wind != nil {
			s.WindSpeed = *e.Wind.Speed
		}
		switch {
		case e.Rain != nil:
			s.PrecipMM = e.Rain.ThreeH
		case e.Snow != nil:
			s.PrecipMM = e.Snow.ThreeH
		}
		samples = append(samples, s)
	}

	return weather.Forecast{
		Samples: samples,
		Offset:  weather.TimezoneOffset(*payload.City.Timezone),
	}, nil
}

// get performs the request, classifies the outcome into the weather error
// taxonomy, and decodes plus validates the body into out.
func (p *OpenWeatherClient) get(ctx context.Context, op, path string, values url.Values, units weather.Units, query string, out interface{}) error {
	if p.apiKey == "" {
		return &weather.NetworkError{Op: op, Err: fmt.Errorf("openweather api key is not configured")}
	}

	values.Set("appid", p.apiKey)
	values.Set("units", string(units))

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return &weather.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return &weather.NotFoundError{Query: query}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		log.Printf("ERROR: openweather %s returned status %d", op, resp.StatusCode)
		return &weather.NetworkError{Op: op, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return &weather.MalformedResponseError{Op: op, Err: err}
	}

	var envelope struct {
		Cod json.RawMessage `json:"cod"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &weather.MalformedResponseError{Op: op, Err: err}
	}
	if strings.Trim(string(envelope.Cod), `"`) == "404" {
		return &weather.NotFoundError{Query: query}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &weather.MalformedResponseError{Op: op, Err: err}
	}
	if err := validate.Struct(out); err != nil {
		return &weather.MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

// Payload shapes. Numeric fields are pointers so that "required" means
// present; zero is a perfectly valid temperature.

type mainPayload struct {
	Temp      *float64 `json:"temp" validate:"required"`
	FeelsLike *float64 `json:"feels_like" validate:"required"`
	TempMin   *float64 `json:"temp_min" validate:"required"`
	TempMax   *float64 `json:"temp_max" validate:"required"`
	Humidity  *float64 `json:"humidity" validate:"required"`
}

type windPayload struct {
	Speed *float64 `json:"speed" validate:"required"`
}

type conditionPayload struct {
	Main        string `json:"main" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type volumePayload struct {
	OneH   float64 `json:"1h"`
	ThreeH float64 `json:"3h"`
}

type currentPayload struct {
	Name  string `json:"name"`
	Coord *struct {
		Lat *float64 `json:"lat" validate:"required"`
		Lon *float64 `json:"lon" validate:"required"`
	} `json:"coord" validate:"required"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Dt       *int64             `json:"dt" validate:"required"`
	Timezone *int               `json:"timezone" validate:"required"`
	Main     *mainPayload       `json:"main" validate:"required"`
	Wind     *windPayload       `json:"wind" validate:"required"`
	Weather  []conditionPayload `json:"weather" validate:"required,min=1,dive"`
	Rain     *volumePayload     `json:"rain"`
	Snow     *volumePayload     `json:"snow"`
}

type forecastEntryPayload struct {
	Dt      *int64             `json:"dt" validate:"required"`
	Main    *mainPayload       `json:"main" validate:"required"`
	Wind    *windPayload       `json:"wind"`
	Weather []conditionPayload `json:"weather" validate:"required,min=1,dive"`
	Rain    *volumePayload     `json:"rain"`
	Snow    *volumePayload     `json:"snow"`
}

type forecastPayload struct {
	List []forecastEntryPayload `json:"list" validate:"required,dive"`
	City *struct {
		Name     string `json:"name"`
		Timezone *int   `json:"timezone" validate:"required"`
	} `json:"city" validate:"required"`
}

var _ weather.Client = (*OpenWeatherClient)(nil)
