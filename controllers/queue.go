package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meditrack/hospital-api/db"
	"github.com/meditrack/hospital-api/models"
	"github.com/meditrack/hospital-api/utils"
)

func queueDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", raw)
}

// CheckIn adds a patient to a doctor's daily queue, either as a walk-in or
// checked in from a scheduled appointment.
func CheckIn(c *fiber.Ctx) error {
	var body struct {
		DoctorID      uint   `json:"doctor_id"`
		PatientID     uint   `json:"patient_id"`
		AppointmentID *uint  `json:"appointment_id"`
		Date          string `json:"date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	date, err := queueDate(body.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   err.Error(),
		})
	}

	entry := models.QueueEntry{
		DoctorID:      body.DoctorID,
		PatientID:     body.PatientID,
		AppointmentID: body.AppointmentID,
		Date:          date,
		EntryType:     models.QueueWalkIn,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if body.AppointmentID != nil {
			var appt models.Appointment
			if err := tx.First(&appt, *body.AppointmentID).Error; err != nil {
				return err
			}
			if !appt.IsActive() {
				return errors.New("appointment is not active")
			}
			entry.EntryType = models.QueueScheduled
			entry.HospitalID = appt.HospitalID
			entry.PatientID = appt.PatientID
			entry.DoctorID = appt.DoctorID
		} else {
			var doctor models.Doctor
			if err := tx.First(&doctor, entry.DoctorID).Error; err != nil {
				return err
			}
			entry.HospitalID = doctor.HospitalID
		}

		var maxPos int64
		tx.Model(&models.QueueEntry{}).
			Where("doctor_id = ? AND date = ?", entry.DoctorID, entry.Date).
			Count(&maxPos)
		entry.Position = int(maxPos) + 1
		return tx.Create(&entry).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to check in patient",
			Error:   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetQueue lists a doctor's queue for a day, ordered by position.
func GetQueue(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}
	date, err := queueDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   err.Error(),
		})
	}

	var entries []models.QueueEntry
	if err := db.DB.Preload("Patient").
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Order("position").Find(&entries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch queue",
			Error:   err.Error(),
		})
	}
	return c.JSON(entries)
}

// CallNext completes the entry currently in progress and moves the first
// waiting entry into progress.
func CallNext(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid doctor id",
			Error:   err.Error(),
		})
	}
	date, err := queueDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   err.Error(),
		})
	}

	var next models.QueueEntry
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.QueueEntry{}).
			Where("doctor_id = ? AND date = ? AND status = ?", doctorID, date, models.QueueInProgress).
			Update("status", models.QueueCompleted).Error; err != nil {
			return err
		}
		if err := tx.Where("doctor_id = ? AND date = ? AND status = ?", doctorID, date, models.QueueWaiting).
			Order("position").First(&next).Error; err != nil {
			return err
		}
		return tx.Model(&next).Update("status", models.QueueInProgress).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
				Message: "No patients waiting",
				Error:   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to call next patient",
			Error:   err.Error(),
		})
	}
	return c.JSON(next)
}
