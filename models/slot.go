package models

import (
	"time"

	"gorm.io/gorm"
)

type SlotStatus string

const (
	SlotOpen   SlotStatus = "open"
	SlotBooked SlotStatus = "booked"
)

// Slot is a derived, disposable bookable window. The generator may delete and
// recreate the future slot set for a doctor at will; booked slots are only
// removed after their appointment has been cancelled through conflict
// resolution.
type Slot struct {
	gorm.Model
	HospitalID uint       `json:"hospital_id" gorm:"index"`
	DoctorID   uint       `json:"doctor_id" gorm:"index:idx_slot_doctor_window,unique"`
	Date       time.Time  `json:"date" gorm:"type:date;index:idx_slot_doctor_window,unique"`
	StartTime  string     `json:"start_time" gorm:"index:idx_slot_doctor_window,unique"` // "HH:MM:SS"
	EndTime    string     `json:"end_time"`
	Status     SlotStatus `json:"status" gorm:"default:open"`
}

func (s *Slot) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = SlotOpen
	}
	return nil
}
