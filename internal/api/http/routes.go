package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Idseleveld1810/kitebuddy/internal/cache"
	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
	"github.com/Idseleveld1810/kitebuddy/internal/scheduler"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. The updater may
// be nil when provider credentials are missing; admin update actions then
// report 503.
func RegisterRoutes(app *fiber.App, service *forecast.Service, weatherCache *cache.WeatherCache, updater *scheduler.BatchUpdater, log *logrus.Logger) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast/day", func(c *fiber.Ctx) error {
		var req dayQuery
		req.SpotID = c.Query("spotId")
		req.Date = c.Query("date")
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "missing or malformed parameters: spotId and date are required")
		}

		result, err := service.Day(c.UserContext(), req.SpotID, req.Date)
		if err != nil {
			if errors.Is(err, forecast.ErrSpotNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "spot not found: "+req.SpotID)
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(result)
	})

	v1.Get("/forecast/week", func(c *fiber.Ctx) error {
		var req weekQuery
		req.SpotID = c.Query("spotId")
		req.StartDate = c.Query("startDate")
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "missing or malformed parameters: spotId and startDate are required")
		}

		result, err := service.Week(c.UserContext(), req.SpotID, req.StartDate)
		if err != nil {
			if errors.Is(err, forecast.ErrSpotNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "spot not found: "+req.SpotID)
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(result)
	})

	v1.Get("/spots", func(c *fiber.Ctx) error {
		return c.JSON(service.Spots().All())
	})

	v1.Post("/admin/update", func(c *fiber.Ctx) error {
		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "action is required")
		}

		log.WithFields(logrus.Fields{
			"action": req.Action,
			"spotId": req.SpotID,
		}).Info("admin update request")

		// Cache actions work without a configured updater.
		switch req.Action {
		case "clear_cache":
			weatherCache.Clear()
			return c.JSON(fiber.Map{"message": "cache cleared"})
		case "cache_stats":
			return c.JSON(fiber.Map{"stats": weatherCache.GetStats()})
		}

		if updater == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable,
				"batch updater not initialized; check provider configuration")
		}

		var (
			tally scheduler.Tally
			err   error
			msg   string
		)
		switch req.Action {
		case "update_popular":
			tally, err = updater.UpdatePopularSpots(c.UserContext())
			msg = "popular spots update completed"
		case "update_all":
			tally, err = updater.UpdateAllSpots(c.UserContext())
			msg = "all spots update completed"
		case "update_spot":
			if req.SpotID == "" {
				return fiber.NewError(fiber.StatusBadRequest, "spotId required for update_spot action")
			}
			tally, err = updater.ManualUpdate(c.UserContext(), req.SpotID)
			msg = "spot " + req.SpotID + " update completed"
		default:
			return fiber.NewError(fiber.StatusBadRequest,
				"invalid action; supported: update_popular, update_all, update_spot, clear_cache, cache_stats")
		}

		if err != nil {
			if errors.Is(err, forecast.ErrUpdaterBusy) {
				return fiber.NewError(fiber.StatusConflict, "batch update already running")
			}
			if errors.Is(err, forecast.ErrSpotNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "spot not found: "+req.SpotID)
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(fiber.Map{"message": msg, "tally": tally})
	})
}

// dayQuery holds query parameters for the day endpoint.
type dayQuery struct {
	SpotID string `validate:"required"`
	Date   string `validate:"required,datetime=2006-01-02"`
}

// weekQuery holds query parameters for the week endpoint.
type weekQuery struct {
	SpotID    string `validate:"required"`
	StartDate string `validate:"required,datetime=2006-01-02"`
}

// updateRequest is the admin control-surface body.
type updateRequest struct {
	Action string `json:"action" validate:"required"`
	SpotID string `json:"spotId"`
}
