package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// DefaultUnits is the units mode of new dashboards.
	DefaultUnits weather.Units

	HTTPTimeout time.Duration

	// CacheTTL controls how long provider responses are reused (0 = no cache).
	CacheTTL time.Duration

	// RefreshInterval controls how often the warm locations are refetched.
	RefreshInterval time.Duration

	// Outbound rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// Dashboard session retention.
	SessionMax     int           // max live sessions (0 = unlimited)
	SessionMaxIdle time.Duration // idle time before a session expires (0 = never)

	// Locations to keep warm in the cache.
	Locations []weather.Location

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		log.Printf("INFO: OPENWEATHER_API_KEY is not set; every weather query will fail")
	}
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherBaseURL)

	units, err := weather.ParseUnits(getenvDefault("DEFAULT_UNITS", string(weather.UnitsMetric)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UNITS: %w", err)
	}
	cfg.DefaultUnits = units

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.SessionMaxIdle, err = getenvDuration("SESSION_MAX_IDLE", "2h"); err != nil {
		return nil, err
	}

	cfg.RateLimitRPS = getenvFloat("RATE_LIMIT_RPS", 1)
	cfg.RateLimitBurst = getenvInt("RATE_LIMIT_BURST", 5)
	cfg.SessionMax = getenvInt("SESSION_MAX", 1000)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Locations = loadWarmLocations()

	return cfg, nil
}

// loadWarmLocations parses WEATHER_LOCATION_CITY, a comma separated list of
// city names. Blank entries are skipped.
func loadWarmLocations() []weather.Location {
	var locs []weather.Location
	for _, city := range strings.Split(os.Getenv("WEATHER_LOCATION_CITY"), ",") {
		city = strings.TrimSpace(city)
		if city == "" {
			continue
		}
		locs = append(locs, weather.CityLocation(city))
	}
	return locs
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
