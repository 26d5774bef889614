package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Fetcher runs a weather query; *weather.Service satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, loc weather.Location, units weather.Units) (weather.Report, error)
}

// Pruner drops expired entries and reports how many went away.
type Pruner interface {
	Prune() int
}

// Scheduler periodically warms the weather cache for configured locations
// and sweeps expired cache entries and idle dashboard sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	pruners   []Pruner
	locations []weather.Location
	units     weather.Units
	interval  time.Duration
}

// New creates a new Scheduler.
func New(locations []weather.Location, units weather.Units, interval time.Duration, fetcher Fetcher, pruners ...Pruner) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		fetcher:   fetcher,
		pruners:   pruners,
		locations: locations,
		units:     units,
		interval:  interval,
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.pruners) > 0 {
		if _, err := s.scheduler.Every(1).Minute().Do(s.prune); err != nil {
			return err
		}
	}

	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; skipping cache warming")
	} else {
		minutes := int(s.interval.Minutes())
		if minutes <= 0 {
			minutes = 15
		}

		if _, err := s.scheduler.Every(minutes).Minutes().Do(s.warm); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// warm fetches every configured location concurrently.
func (s *Scheduler) warm() {
	log.Println("scheduler: running cache warming job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc // per-iteration copy; go.mod targets go1.21 (pre-1.22 loop semantics)
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := s.fetcher.Fetch(ctx, loc, s.units); err != nil {
				log.Printf("scheduler: warm failed for %s: %v", loc.Key(), err)
			}
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed cache warming job")
}

func (s *Scheduler) prune() {
	removed := 0
	for _, p := range s.pruners {
		removed += p.Prune()
	}
	if removed > 0 {
		log.Printf("scheduler: pruned %d expired entries", removed)
	}
}
