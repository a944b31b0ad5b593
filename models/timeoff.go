package models

import (
	"time"

	"gorm.io/gorm"
)

// TimeOffEntry blocks an inclusive range of calendar dates for a doctor.
// Overlapping entries are allowed; consumers take the union.
type TimeOffEntry struct {
	gorm.Model
	HospitalID uint      `json:"hospital_id" gorm:"index"`
	DoctorID   uint      `json:"doctor_id" gorm:"index"`
	StartDate  time.Time `json:"start_date" gorm:"type:date"`
	EndDate    time.Time `json:"end_date" gorm:"type:date"`
	Reason     string    `json:"reason"`
}
