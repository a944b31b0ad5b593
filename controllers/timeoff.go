package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meditrack/hospital-api/db"
	"github.com/meditrack/hospital-api/models"
	"github.com/meditrack/hospital-api/scheduler"
	"github.com/meditrack/hospital-api/utils"
)

// GetTimeOff lists a doctor's time-off entries.
func GetTimeOff(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}
	var entries []models.TimeOffEntry
	if err := db.DB.Where("doctor_id = ?", doctorID).Order("start_date").Find(&entries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch time off",
			Error:   err.Error(),
		})
	}
	return c.JSON(entries)
}

// CreateTimeOff adds a time-off range and regenerates the slot set in the
// same commit. Overlapping ranges are allowed; the generator blocks their
// union.
func CreateTimeOff(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}

	var body struct {
		commitFields
		scheduler.TimeOffPayload
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	change := scheduler.ChangeRequest{
		Kind:       scheduler.ChangeTimeOff,
		AddTimeOff: &body.TimeOffPayload,
	}
	result, err := schedService().ApplyChange(c.Context(), uint(doctorID), change,
		body.CancelAppointmentIDs, body.Fingerprint, horizonWeeks(body.Weeks))
	if err != nil {
		return schedulerError(c, err, "Failed to save time off")
	}
	notifyCancelled(body.CancelAppointmentIDs)
	return c.Status(fiber.StatusCreated).JSON(result)
}

// DeleteTimeOff removes an entry and regenerates the freed dates. Removing an
// id that is already gone is a no-op success.
func DeleteTimeOff(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid time-off id",
			Error:   err.Error(),
		})
	}

	var entry models.TimeOffEntry
	if err := db.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch time off",
			Error:   err.Error(),
		})
	}

	change := scheduler.ChangeRequest{
		Kind:            scheduler.ChangeTimeOff,
		RemoveTimeOffID: entry.ID,
	}
	weeks := c.QueryInt("weeks")
	if _, err := schedService().ApplyChange(c.Context(), entry.DoctorID, change, nil, "", horizonWeeks(weeks)); err != nil {
		return schedulerError(c, err, "Failed to remove time off")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
