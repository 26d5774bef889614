package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// cityQuery holds query parameters for a city-name lookup.
type cityQuery struct {
	City string `validate:"required"`
}

func (q *cityQuery) bind(c *fiber.Ctx) error {
	// c.Query aliases the request buffer; the city may outlive the request.
	q.City = utils.CopyString(strings.TrimSpace(c.Query("city")))
	if q.City == "" {
		return errors.New("city name is required")
	}
	return validate.Struct(q)
}

// coordsQuery holds query parameters for a coordinate lookup.
type coordsQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (q *coordsQuery) bind(c *fiber.Ctx) error {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return errors.New("latitude and longitude are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return errors.New("invalid latitude")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return errors.New("invalid longitude")
	}

	q.Lat, q.Lon = lat, lon
	return validate.Struct(q)
}

// unitsQuery validates the optional units parameter.
type unitsQuery struct {
	Units string `validate:"omitempty,oneof=metric imperial"`
}

// parseLocation accepts either lat/lon or city, preferring coordinates.
func parseLocation(c *fiber.Ctx) (weather.Location, error) {
	if c.Query("lat") != "" || c.Query("lon") != "" {
		var q coordsQuery
		if err := q.bind(c); err != nil {
			return weather.Location{}, err
		}
		return weather.CoordsLocation(q.Lat, q.Lon), nil
	}

	var q cityQuery
	if err := q.bind(c); err != nil {
		return weather.Location{}, errors.New("either city or lat and lon query parameters are required")
	}
	return weather.CityLocation(q.City), nil
}
