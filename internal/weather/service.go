package weather

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// Service orchestrates the current and forecast calls for one query and
// aggregates the forecast into days.
type Service struct {
	client Client
}

// NewService creates a new Service.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// Fetch runs one query. Coordinate queries issue both provider calls
// concurrently and fail as a whole if either fails. City queries resolve the
// coordinates through the current-conditions call first.
func (s *Service) Fetch(ctx context.Context, loc Location, units Units) (Report, error) {
	if loc.IsZero() {
		return Report{}, fmt.Errorf("empty location")
	}

	log.Printf("DEBUG: Fetch called for %s (%s)", loc.Key(), units)

	var (
		current  CurrentConditions
		forecast Forecast
	)

	if loc.Coords != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			c, err := s.client.FetchCurrent(gctx, loc, units)
			if err != nil {
				return err
			}
			current = c
			return nil
		})
		g.Go(func() error {
			f, err := s.client.FetchForecast(gctx, *loc.Coords, units)
			if err != nil {
				return err
			}
			forecast = f
			return nil
		})
		if err := g.Wait(); err != nil {
			log.Printf("fetch failed for %s: %v", loc.Key(), err)
			return Report{}, err
		}
	} else {
		c, err := s.client.FetchCurrent(ctx, loc, units)
		if err != nil {
			log.Printf("current conditions failed for %s: %v", loc.Key(), err)
			return Report{}, err
		}
		f, err := s.client.FetchForecast(ctx, c.Coords, units)
		if err != nil {
			log.Printf("forecast failed for %s: %v", loc.Key(), err)
			return Report{}, err
		}
		current, forecast = c, f
	}

	days, err := AggregateDays(forecast.Samples, forecast.Offset)
	if err != nil {
		return Report{}, &MalformedResponseError{Op: "forecast", Err: err}
	}

	return Report{
		Location: loc,
		Units:    units,
		Current:  current,
		Forecast: forecast,
		Days:     days,
	}, nil
}

// Current fetches current conditions only.
func (s *Service) Current(ctx context.Context, loc Location, units Units) (CurrentConditions, error) {
	if loc.IsZero() {
		return CurrentConditions{}, fmt.Errorf("empty location")
	}
	return s.client.FetchCurrent(ctx, loc, units)
}
