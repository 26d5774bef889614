package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// requestTimeout bounds the provider round trips made on behalf of one request.
const requestTimeout = 15 * time.Second

var validate = validator.New()

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Service      *weather.Service
	Sessions     *store.SessionStore
	DefaultUnits weather.Units
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	h := &handlers{deps: deps}
	if h.deps.DefaultUnits == "" {
		h.deps.DefaultUnits = weather.UnitsMetric
	}

	v1 := app.Group("/api/v1")

	v1.Get("/weather/city", h.currentByCity)
	v1.Get("/weather/coords", h.currentByCoords)
	v1.Get("/forecast", h.forecast)

	d := v1.Group("/dashboards")
	d.Post("/", h.createDashboard)
	d.Get("/:id", h.dashboardStatus)
	d.Delete("/:id", h.deleteDashboard)
	d.Post("/:id/search", h.search)
	d.Post("/:id/locate", h.locate)
	d.Post("/:id/refresh", h.refresh)
	d.Post("/:id/units", h.units)
	d.Post("/:id/day", h.selectDay)
}

type handlers struct {
	deps Deps
}

func (h *handlers) currentByCity(c *fiber.Ctx) error {
	var q cityQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	units, err := h.parseUnits(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	cur, err := h.deps.Service.Current(ctx, weather.CityLocation(q.City), units)
	if err != nil {
		return fetchError(err)
	}
	return c.JSON(cur)
}

func (h *handlers) currentByCoords(c *fiber.Ctx) error {
	var q coordsQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	units, err := h.parseUnits(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	cur, err := h.deps.Service.Current(ctx, weather.CoordsLocation(q.Lat, q.Lon), units)
	if err != nil {
		return fetchError(err)
	}
	return c.JSON(cur)
}

// forecast renders a full dashboard view without keeping any session state.
func (h *handlers) forecast(c *fiber.Ctx) error {
	loc, err := parseLocation(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	units, err := h.parseUnits(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	day := c.QueryInt("day", -1)

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	report, err := h.deps.Service.Fetch(ctx, loc, units)
	if err != nil {
		return fetchError(err)
	}
	return c.JSON(dashboard.Render(report, day))
}

func (h *handlers) createDashboard(c *fiber.Ctx) error {
	units, err := h.parseUnits(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctrl := dashboard.New(h.deps.Service, units)
	id := h.deps.Sessions.Create(ctrl)

	// Optional initial load.
	status := ctrl.Status()
	if loc, err := parseLocation(c); err == nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
		defer cancel()
		if loc.Coords != nil {
			status, _ = ctrl.Locate(ctx, *loc.Coords)
		} else {
			status, _ = ctrl.Search(ctx, loc.City)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(sessionResponse{ID: id, Status: status})
}

func (h *handlers) dashboardStatus(c *fiber.Ctx) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse{ID: c.Params("id"), Status: ctrl.Status()})
}

func (h *handlers) deleteDashboard(c *fiber.Ctx) error {
	if err := h.deps.Sessions.Delete(c.Params("id")); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "dashboard session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) search(c *fiber.Ctx) error {
	return h.act(c, func(ctx context.Context, ctrl *dashboard.Controller) (dashboard.Status, error) {
		return ctrl.Search(ctx, utils.CopyString(c.Query("city")))
	})
}

func (h *handlers) locate(c *fiber.Ctx) error {
	var q coordsQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.act(c, func(ctx context.Context, ctrl *dashboard.Controller) (dashboard.Status, error) {
		return ctrl.Locate(ctx, weather.Coordinates{Lat: q.Lat, Lon: q.Lon})
	})
}

func (h *handlers) refresh(c *fiber.Ctx) error {
	return h.act(c, func(ctx context.Context, ctrl *dashboard.Controller) (dashboard.Status, error) {
		return ctrl.Refresh(ctx)
	})
}

// units toggles the units mode, or sets it when ?mode= is given.
func (h *handlers) units(c *fiber.Ctx) error {
	mode := c.Query("mode")
	var units weather.Units
	if mode != "" {
		u, err := weather.ParseUnits(mode)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		units = u
	}
	return h.act(c, func(ctx context.Context, ctrl *dashboard.Controller) (dashboard.Status, error) {
		if units == "" {
			return ctrl.ToggleUnits(ctx)
		}
		return ctrl.SetUnits(ctx, units)
	})
}

func (h *handlers) selectDay(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Query("index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "index query parameter must be an integer")
	}
	return h.act(c, func(_ context.Context, ctrl *dashboard.Controller) (dashboard.Status, error) {
		return ctrl.SelectDay(index)
	})
}

// act runs a controller action. Client failures are part of the returned
// status (state "error"), so only rejected actions produce HTTP errors.
func (h *handlers) act(c *fiber.Ctx, fn func(context.Context, *dashboard.Controller) (dashboard.Status, error)) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	status, err := fn(ctx, ctrl)
	resp := sessionResponse{ID: c.Params("id"), Status: status}

	switch {
	case err == nil:
		return c.JSON(resp)
	case errors.Is(err, dashboard.ErrEmptyCity), errors.Is(err, dashboard.ErrDayOutOfRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrStale), errors.Is(err, dashboard.ErrNoQuery), errors.Is(err, dashboard.ErrNoData):
		resp.Message = err.Error()
		return c.Status(fiber.StatusConflict).JSON(resp)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func (h *handlers) session(c *fiber.Ctx) (*dashboard.Controller, error) {
	ctrl, err := h.deps.Sessions.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "dashboard session not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load dashboard session")
	}
	return ctrl, nil
}

func (h *handlers) parseUnits(c *fiber.Ctx) (weather.Units, error) {
	q := unitsQuery{Units: c.Query("units")}
	if err := validate.Struct(q); err != nil {
		return "", err
	}
	if q.Units == "" {
		return h.deps.DefaultUnits, nil
	}
	return weather.Units(q.Units), nil
}

// fetchError maps the weather error taxonomy to HTTP errors.
func fetchError(err error) error {
	var (
		nf *weather.NotFoundError
		ne *weather.NetworkError
		me *weather.MalformedResponseError
	)
	switch {
	case errors.As(err, &nf):
		return fiber.NewError(fiber.StatusNotFound, weather.UserMessage(err))
	case errors.As(err, &ne), errors.As(err, &me):
		return fiber.NewError(fiber.StatusBadGateway, weather.UserMessage(err))
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

type sessionResponse struct {
	ID      string           `json:"id"`
	Status  dashboard.Status `json:"status"`
	Message string           `json:"message,omitempty"`
}
