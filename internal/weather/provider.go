package weather

import (
	"context"
)

// Client abstracts the weather data provider (e.g. OpenWeatherMap).
//
// Implementations report failures as *NetworkError, *NotFoundError or
// *MalformedResponseError and validate payloads before returning them.
type Client interface {
	FetchCurrent(ctx context.Context, loc Location, units Units) (CurrentConditions, error)
	FetchForecast(ctx context.Context, coords Coordinates, units Units) (Forecast, error)
}
