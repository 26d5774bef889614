// Package dashboard holds the per-user dashboard state machine.
package dashboard

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// State is the display state of a dashboard.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

var (
	// ErrStale is returned when a newer query was issued while this one was
	// in flight; its response has been discarded.
	ErrStale = errors.New("stale response discarded")

	ErrEmptyCity     = errors.New("city name is required")
	ErrNoQuery       = errors.New("no previous query to refresh")
	ErrNoData        = errors.New("no forecast loaded")
	ErrDayOutOfRange = errors.New("day index out of range")
)

// Fetcher runs one weather query. *weather.Service satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, loc weather.Location, units weather.Units) (weather.Report, error)
}

// Query is the immutable context of one refresh. Seq increases for every
// query a controller issues; only the latest Seq may update the display.
type Query struct {
	Seq      uint64           `json:"seq"`
	Location weather.Location `json:"location"`
	Units    weather.Units    `json:"units"`
}

// Status is a snapshot of the controller for rendering.
type Status struct {
	State     State         `json:"state"`
	Seq       uint64        `json:"seq"`
	Units     weather.Units `json:"units"`
	LastQuery *Query        `json:"lastQuery,omitempty"`
	Error     string        `json:"error,omitempty"`
	View      *View         `json:"view,omitempty"`
}

// Controller drives one dashboard: Idle/Loaded/Error -> Loading on any new
// query, Loading -> Loaded or Error once the query resolves. It never retries
// on its own. The mutex is not held while a query is in flight.
type Controller struct {
	fetcher Fetcher

	mu          sync.Mutex
	seq         uint64
	state       State
	units       weather.Units
	pending     weather.Location
	lastOK      *Query
	report      *weather.Report
	selectedDay int
	errMsg      string
}

// New creates an idle controller.
func New(fetcher Fetcher, units weather.Units) *Controller {
	if units == "" {
		units = weather.UnitsMetric
	}
	return &Controller{
		fetcher:     fetcher,
		state:       StateIdle,
		units:       units,
		selectedDay: -1,
	}
}

// Search queries by city name.
func (c *Controller) Search(ctx context.Context, city string) (Status, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return c.Status(), ErrEmptyCity
	}
	return c.run(ctx, weather.CityLocation(city), c.currentUnits())
}

// Locate queries by coordinates, e.g. from browser geolocation.
func (c *Controller) Locate(ctx context.Context, coords weather.Coordinates) (Status, error) {
	return c.run(ctx, weather.Location{Coords: &coords}, c.currentUnits())
}

// Refresh re-runs the last successful query, or the last attempted one when
// nothing has succeeded yet.
func (c *Controller) Refresh(ctx context.Context) (Status, error) {
	c.mu.Lock()
	loc := c.pending
	if c.lastOK != nil {
		loc = c.lastOK.Location
	}
	units := c.units
	c.mu.Unlock()

	if loc.IsZero() {
		return c.Status(), ErrNoQuery
	}
	return c.run(ctx, loc, units)
}

// ToggleUnits switches between metric and imperial.
func (c *Controller) ToggleUnits(ctx context.Context) (Status, error) {
	return c.SetUnits(ctx, c.currentUnits().Toggle())
}

// SetUnits changes the units mode and re-issues the last successful query
// (coordinates when known, else city text) in that mode. Without a
// successful query only the mode of the next query changes.
func (c *Controller) SetUnits(ctx context.Context, units weather.Units) (Status, error) {
	c.mu.Lock()
	c.units = units
	last := c.lastOK
	c.mu.Unlock()

	if last == nil {
		return c.Status(), nil
	}
	return c.run(ctx, last.Location, units)
}

// SelectDay picks the day whose samples fill the hourly strip. It only
// re-renders loaded data.
func (c *Controller) SelectDay(index int) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoaded || c.report == nil {
		return c.statusLocked(), ErrNoData
	}
	if index < 0 || index >= len(c.report.Days) {
		return c.statusLocked(), ErrDayOutOfRange
	}
	c.selectedDay = index
	return c.statusLocked(), nil
}

// Status returns the current snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) currentUnits() weather.Units {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.units
}

// run issues a query. Client failures move the controller to StateError and
// are not returned; the error result only reports that the outcome was not
// applied (ErrStale).
func (c *Controller) run(ctx context.Context, loc weather.Location, units weather.Units) (Status, error) {
	c.mu.Lock()
	c.seq++
	q := Query{Seq: c.seq, Location: loc, Units: units}
	c.state = StateLoading
	c.units = units
	c.pending = loc
	c.mu.Unlock()

	report, err := c.fetcher.Fetch(ctx, q.Location, q.Units)

	c.mu.Lock()
	defer c.mu.Unlock()

	if q.Seq != c.seq {
		log.Printf("DEBUG: dashboard: discarding response for query %d, latest is %d", q.Seq, c.seq)
		return c.statusLocked(), ErrStale
	}

	if err != nil {
		log.Printf("dashboard: query %d for %s failed: %v", q.Seq, loc.Key(), err)
		c.state = StateError
		c.errMsg = weather.UserMessage(err)
		c.report = nil
		return c.statusLocked(), nil
	}

	coords := report.Current.Coords
	resolved := q.Location
	resolved.Coords = &coords
	if !c.lastOK.sameLocation(resolved) || c.selectedDay >= len(report.Days) {
		c.selectedDay = -1
	}
	c.lastOK = &Query{Seq: q.Seq, Location: resolved, Units: q.Units}

	c.state = StateLoaded
	c.errMsg = ""
	c.report = &report
	return c.statusLocked(), nil
}

// sameLocation reports whether loc re-issues the query's resolved location.
// A nil query matches nothing.
func (q *Query) sameLocation(loc weather.Location) bool {
	if q == nil {
		return false
	}
	return q.Location.Key() == loc.Key() && strings.EqualFold(q.Location.City, loc.City)
}

func (c *Controller) statusLocked() Status {
	s := Status{
		State: c.state,
		Seq:   c.seq,
		Units: c.units,
		Error: c.errMsg,
	}
	if c.lastOK != nil {
		q := *c.lastOK
		s.LastQuery = &q
	}
	if c.state == StateLoaded && c.report != nil {
		v := Render(*c.report, c.selectedDay)
		s.View = &v
	}
	return s
}
