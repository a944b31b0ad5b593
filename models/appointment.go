package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
)

type Appointment struct {
	gorm.Model
	Reference    string            `json:"reference" gorm:"uniqueIndex"`
	HospitalID   uint              `json:"hospital_id" gorm:"index"`
	DoctorID     uint              `json:"doctor_id" gorm:"index"`
	Doctor       Doctor            `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	PatientID    uint              `json:"patient_id" gorm:"index"`
	Patient      Patient           `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	SlotID       *uint             `json:"slot_id"`
	Date         time.Time         `json:"date" gorm:"type:date;index"`
	StartTime    string            `json:"start_time"` // "HH:MM:SS"
	EndTime      string            `json:"end_time"`
	Status       AppointmentStatus `json:"status"`
	CancelReason string            `json:"cancel_reason,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.Reference == "" {
		a.Reference = uuid.NewString()
	}
	return nil
}

// IsActive reports whether the appointment still occupies its slot. Only
// active appointments are candidates for conflict resolution.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// UpdateStatus enforces the appointment state machine and persists the
// transition.
func (a *Appointment) UpdateStatus(tx *gorm.DB, newStatus AppointmentStatus) error {
	switch a.Status {
	case StatusScheduled:
		if newStatus != StatusConfirmed && newStatus != StatusCancelled && newStatus != StatusNoShow {
			return fmt.Errorf("invalid transition from %s to %s", a.Status, newStatus)
		}
	case StatusConfirmed:
		if newStatus != StatusCompleted && newStatus != StatusCancelled && newStatus != StatusNoShow {
			return fmt.Errorf("invalid transition from %s to %s", a.Status, newStatus)
		}
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return fmt.Errorf("no transitions allowed from %s", a.Status)
	}

	a.Status = newStatus
	return tx.Save(a).Error
}
