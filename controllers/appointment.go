package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meditrack/hospital-api/db"
	"github.com/meditrack/hospital-api/models"
	"github.com/meditrack/hospital-api/utils"
)

// GetAllAppointments lists appointments, optionally filtered by doctor and
// date.
func GetAllAppointments(c *fiber.Ctx) error {
	query := db.DB.Preload("Doctor").Preload("Patient")
	if doctorID := c.Query("doctor_id"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Order("date, start_time").Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch appointments",
			Error:   err.Error(),
		})
	}
	return c.JSON(appointments)
}

// GetAppointment returns an appointment by ID.
func GetAppointment(c *fiber.Ctx) error {
	id := c.Params("id")
	var appointment models.Appointment
	if err := db.DB.Preload("Doctor").Preload("Patient").First(&appointment, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
			Error:   err.Error(),
		})
	}
	return c.JSON(appointment)
}

// CreateAppointment books an open slot for a patient. The slot claim and the
// appointment insert share one transaction so a slot can never be booked
// twice.
func CreateAppointment(c *fiber.Ctx) error {
	var body struct {
		SlotID    uint `json:"slot_id"`
		PatientID uint `json:"patient_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	var appointment models.Appointment
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var slot models.Slot
		if err := tx.First(&slot, body.SlotID).Error; err != nil {
			return err
		}
		if slot.Status != models.SlotOpen {
			return errors.New("slot is already booked")
		}
		if err := tx.Model(&slot).Update("status", models.SlotBooked).Error; err != nil {
			return err
		}
		slotID := slot.ID
		appointment = models.Appointment{
			HospitalID: slot.HospitalID,
			DoctorID:   slot.DoctorID,
			PatientID:  body.PatientID,
			SlotID:     &slotID,
			Date:       slot.Date,
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Failed to book appointment",
			Error:   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// UpdateAppointmentStatus applies a state-machine transition. Cancelling
// reopens the underlying slot.
func UpdateAppointmentStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var body struct {
		Status models.AppointmentStatus `json:"status"`
		Reason string                   `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	var appointment models.Appointment
	if err := db.DB.First(&appointment, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
			Error:   err.Error(),
		})
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if body.Status == models.StatusCancelled {
			appointment.CancelReason = body.Reason
		}
		if err := appointment.UpdateStatus(tx, body.Status); err != nil {
			return err
		}
		if body.Status == models.StatusCancelled {
			if err := tx.Where("appointment_id = ?", appointment.ID).Delete(&models.QueueEntry{}).Error; err != nil {
				return err
			}
			if appointment.SlotID != nil {
				if err := tx.Model(&models.Slot{}).Where("id = ?", *appointment.SlotID).
					Update("status", models.SlotOpen).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to update appointment status",
			Error:   err.Error(),
		})
	}
	return c.JSON(appointment)
}
