package controllers

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/meditrack/hospital-api/config"
	"github.com/meditrack/hospital-api/db"
	"github.com/meditrack/hospital-api/redis"
	"github.com/meditrack/hospital-api/scheduler"
	"github.com/meditrack/hospital-api/utils"
)

var (
	schedOnce sync.Once
	sched     *scheduler.Service
)

func schedService() *scheduler.Service {
	schedOnce.Do(func() {
		sched = scheduler.NewService(db.DB, redis.Client, utils.GetLogger())
	})
	return sched
}

// horizonWeeks resolves the caller-supplied horizon, falling back to the
// configured default.
func horizonWeeks(weeks int) int {
	if weeks > 0 {
		return weeks
	}
	if config.AppConfig.SlotHorizonWeeks > 0 {
		return config.AppConfig.SlotHorizonWeeks
	}
	return 12
}

// schedulerError maps core errors onto HTTP statuses: validation 400,
// stale/uncovered conflicts 409, persistence and everything else 500.
func schedulerError(c *fiber.Ctx, err error, msg string) error {
	switch {
	case scheduler.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: msg,
			Error:   err.Error(),
		})
	case errors.Is(err, scheduler.ErrConflictsChanged):
		body := fiber.Map{
			"message": "The schedule changed since the conflict check. Please retry.",
			"error":   err.Error(),
		}
		var cc *scheduler.ConflictsChangedError
		if errors.As(err, &cc) && cc.Report != nil {
			body["report"] = cc.Report
		}
		return c.Status(fiber.StatusConflict).JSON(body)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: msg,
			Error:   err.Error(),
		})
	}
}
