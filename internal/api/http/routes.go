package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/shreyainlabcoat/Gotham/internal/insights"
	"github.com/shreyainlabcoat/Gotham/internal/store"
)

var validate = validator.New()

// Default search area: downtown Manhattan, matching the dashboard's initial
// view.
const (
	defaultLat      = 40.7128
	defaultLon      = -74.0060
	defaultRadiusKM = 10
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *air.Service, insightsSvc *insights.Service, watchAreas []air.AreaQuery) {
	v1 := app.Group("/api/v1")

	v1.Get("/air/current", func(c *fiber.Ctx) error {
		q, err := parseAreaQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.FetchArea(c.UserContext(), q.toArea())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch air quality data")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/air/watch", func(c *fiber.Ctx) error {
		entries := make([]watchEntry, 0, len(watchAreas))
		for _, area := range watchAreas {
			entry := watchEntry{Area: area}
			if snapshot, err := service.GetLatest(area); err == nil {
				fetchedAt := snapshot.FetchedAt
				entry.FetchedAt = &fetchedAt
				summary := snapshot.Summary
				entry.Summary = &summary
			}
			entries = append(entries, entry)
		}
		return c.JSON(fiber.Map{"areas": entries})
	})

	v1.Get("/air/watch/latest", func(c *fiber.Ctx) error {
		q, err := parseAreaQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.GetLatest(q.toArea())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no air quality data for requested area")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch air quality data")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/air/watch/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		area := req.Area.toArea()
		snapshots, err := service.GetRange(area, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no air quality history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch air quality history")
		}

		return c.JSON(fiber.Map{
			"area":      area,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Get("/air/insights", func(c *fiber.Ctx) error {
		if insightsSvc == nil || !insightsSvc.Enabled() {
			return fiber.NewError(fiber.StatusServiceUnavailable, "no AI engine configured")
		}

		q, err := parseAreaQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.FetchArea(c.UserContext(), q.toArea())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch air quality data")
		}

		insight, err := insightsSvc.Analyze(c.UserContext(), snapshot)
		if err != nil {
			if errors.Is(err, insights.ErrNoData) {
				return fiber.NewError(fiber.StatusNotFound, "not enough data for AI analysis")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to generate AI analysis")
		}

		return c.JSON(insight)
	})
}

// watchEntry is the list view of a watched area: identity plus the latest
// summary, without the full reading set.
type watchEntry struct {
	Area      air.AreaQuery `json:"area"`
	FetchedAt *time.Time    `json:"fetchedAt,omitempty"`
	Summary   *air.Summary  `json:"summary,omitempty"`
}

// areaQuery holds query parameters identifying a search area.
type areaQuery struct {
	Lat       float64       `validate:"gte=-90,lte=90"`
	Lon       float64       `validate:"gte=-180,lte=180"`
	RadiusKM  int           `validate:"gte=1,lte=25"`
	Pollutant air.Pollutant `validate:"required"`
}

func (q areaQuery) toArea() air.AreaQuery {
	return air.AreaQuery{
		Lat:       q.Lat,
		Lon:       q.Lon,
		RadiusKM:  q.RadiusKM,
		Pollutant: q.Pollutant,
	}
}

func parseAreaQuery(c *fiber.Ctx) (areaQuery, error) {
	var q areaQuery
	var err error

	if q.Lat, err = queryFloat(c, "lat", defaultLat); err != nil {
		return q, err
	}
	if q.Lon, err = queryFloat(c, "lon", defaultLon); err != nil {
		return q, err
	}
	if q.RadiusKM, err = queryInt(c, "radius", defaultRadiusKM); err != nil {
		return q, err
	}

	pollutant := c.Query("pollutant", string(air.PollutantPM25))
	if q.Pollutant, err = air.ParsePollutant(pollutant); err != nil {
		return q, err
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func queryFloat(c *fiber.Ctx, key string, def float64) (float64, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + key + " query parameter")
	}
	return v, nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid " + key + " query parameter")
	}
	return v, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Area areaQuery
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	area, err := parseAreaQuery(c)
	if err != nil {
		return err
	}
	h.Area = area

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
