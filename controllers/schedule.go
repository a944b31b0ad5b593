package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meditrack/hospital-api/scheduler"
	"github.com/meditrack/hospital-api/utils"
)

// commitFields are shared by every schedule-mutating request: the appointment
// IDs the operator confirmed for cancellation and the fingerprint of the
// preview that confirmation was based on.
type commitFields struct {
	CancelAppointmentIDs []uint `json:"cancel_appointment_ids"`
	Fingerprint          string `json:"fingerprint"`
	Weeks                int    `json:"weeks"`
}

// GetDoctorSchedule returns the weekly shift rows with derived spans, band
// timings and the appointment duration.
func GetDoctorSchedule(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}
	schedule, err := schedService().GetWeeklySchedule(uint(doctorID))
	if err != nil {
		return schedulerError(c, err, "Failed to get schedule")
	}
	return c.JSON(schedule)
}

// UpdateDoctorSchedule replaces the doctor's band toggles wholesale. The
// request must carry the cancellations confirmed against a prior preview;
// uncovered conflicts reject with 409.
func UpdateDoctorSchedule(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}

	var body struct {
		commitFields
		Week    []scheduler.DayToggle    `json:"week"`
		Timings *scheduler.TimingPayload `json:"timings"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	change := scheduler.ChangeRequest{
		Kind:    scheduler.ChangeSchedule,
		Week:    body.Week,
		Timings: body.Timings,
	}
	result, err := schedService().ApplyChange(c.Context(), uint(doctorID), change,
		body.CancelAppointmentIDs, body.Fingerprint, horizonWeeks(body.Weeks))
	if err != nil {
		return schedulerError(c, err, "Failed to save schedule")
	}
	notifyCancelled(body.CancelAppointmentIDs)
	return c.JSON(result)
}

// UpdateDoctorTimings replaces the band boundaries without touching the
// toggles.
func UpdateDoctorTimings(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}

	var body struct {
		commitFields
		scheduler.TimingPayload
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	change := scheduler.ChangeRequest{
		Kind:    scheduler.ChangeSchedule,
		Timings: &body.TimingPayload,
	}
	result, err := schedService().ApplyChange(c.Context(), uint(doctorID), change,
		body.CancelAppointmentIDs, body.Fingerprint, horizonWeeks(body.Weeks))
	if err != nil {
		return schedulerError(c, err, "Failed to save shift timings")
	}
	notifyCancelled(body.CancelAppointmentIDs)
	return c.JSON(result)
}

// UpdateDoctorDuration sets the appointment duration used to discretize the
// doctor's bands.
func UpdateDoctorDuration(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}

	var body struct {
		commitFields
		DurationMin int `json:"duration_min"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	change := scheduler.ChangeRequest{
		Kind:        scheduler.ChangeDuration,
		DurationMin: body.DurationMin,
	}
	result, err := schedService().ApplyChange(c.Context(), uint(doctorID), change,
		body.CancelAppointmentIDs, body.Fingerprint, horizonWeeks(body.Weeks))
	if err != nil {
		return schedulerError(c, err, "Failed to save appointment duration")
	}
	notifyCancelled(body.CancelAppointmentIDs)
	return c.JSON(result)
}
