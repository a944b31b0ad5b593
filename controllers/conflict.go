package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meditrack/hospital-api/db"
	"github.com/meditrack/hospital-api/models"
	"github.com/meditrack/hospital-api/scheduler"
	"github.com/meditrack/hospital-api/utils"
)

// CheckConflicts is the dry-run preview: given a proposed change it reports
// every booked appointment and queue entry the change would invalidate,
// without mutating anything. The UI gates the commit behind this report.
func CheckConflicts(c *fiber.Ctx) error {
	var body struct {
		DoctorID   uint                    `json:"doctor_id"`
		ChangeType scheduler.ChangeKind    `json:"change_type"`
		Payload    scheduler.ChangeRequest `json:"payload"`
		Weeks      int                     `json:"weeks"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	change := body.Payload
	change.Kind = body.ChangeType
	report, err := schedService().CheckConflicts(c.Context(), body.DoctorID, change, horizonWeeks(body.Weeks))
	if err != nil {
		return schedulerError(c, err, "Failed to check conflicts")
	}
	return c.JSON(report)
}

// RegenerateSlots rebuilds the slot set from the most recently persisted
// configuration, cancelling exactly the confirmed appointments.
func RegenerateSlots(c *fiber.Ctx) error {
	var body struct {
		DoctorID             uint   `json:"doctor_id"`
		CancelAppointmentIDs []uint `json:"cancel_appointment_ids"`
		Fingerprint          string `json:"fingerprint"`
		Weeks                int    `json:"weeks"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	result, err := schedService().ApplyChange(c.Context(), body.DoctorID, scheduler.ChangeRequest{},
		body.CancelAppointmentIDs, body.Fingerprint, horizonWeeks(body.Weeks))
	if err != nil {
		return schedulerError(c, err, "Failed to regenerate slots")
	}
	notifyCancelled(body.CancelAppointmentIDs)
	return c.JSON(result)
}

// GetDoctorSlots lists a doctor's slots in a date range.
func GetDoctorSlots(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}

	query := db.DB.Where("doctor_id = ?", doctorID)
	if from := c.Query("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	var slots []models.Slot
	if err := query.Order("date, start_time").Find(&slots).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch slots",
			Error:   err.Error(),
		})
	}
	return c.JSON(slots)
}

// notifyCancelled emails the patients of cancelled appointments in the
// background. Delivery is best-effort and deliberately outside the commit
// transaction.
func notifyCancelled(ids []uint) {
	if len(ids) == 0 {
		return
	}
	go func() {
		var appts []models.Appointment
		if err := db.DB.Preload("Patient").Preload("Doctor").
			Where("id IN ? AND status = ?", ids, models.StatusCancelled).
			Find(&appts).Error; err != nil {
			return
		}
		for i := range appts {
			utils.NotifyCancellation(&appts[i])
		}
	}()
}
