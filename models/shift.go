package models

import (
	"gorm.io/gorm"
)

type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeeklyShift is one row per doctor and day-of-week (7 per doctor). Only the
// band toggles are persisted; the flattened start/end span is derived on read
// from the doctor's ShiftTimingConfig.
type WeeklyShift struct {
	gorm.Model
	HospitalID uint      `json:"hospital_id" gorm:"index"`
	DoctorID   uint      `json:"doctor_id" gorm:"index:idx_shift_doctor_day,unique"`
	DayOfWeek  DayOfWeek `json:"day_of_week" gorm:"index:idx_shift_doctor_day,unique"`
	IsWorking  bool      `json:"is_working"`
	Morning    bool      `json:"morning"`
	Evening    bool      `json:"evening"`
	Night      bool      `json:"night"`
}

// ShiftTimingConfig holds the clock-time bounds of the three bands. A row with
// a nil DoctorID is the hospital-wide default; a doctor row overrides it.
// Times are "HH:MM:SS" in the hospital's local clock. The night band may wrap
// past midnight (start >= end), in which case slot generation splits it at
// 00:00.
type ShiftTimingConfig struct {
	gorm.Model
	HospitalID   uint   `json:"hospital_id" gorm:"index"`
	DoctorID     *uint  `json:"doctor_id" gorm:"index"`
	MorningStart string `json:"morning_start" gorm:"default:06:00:00"`
	MorningEnd   string `json:"morning_end" gorm:"default:12:00:00"`
	EveningStart string `json:"evening_start" gorm:"default:12:00:00"`
	EveningEnd   string `json:"evening_end" gorm:"default:18:00:00"`
	NightStart   string `json:"night_start" gorm:"default:18:00:00"`
	NightEnd     string `json:"night_end" gorm:"default:23:00:00"`
}

// DefaultWeeklyShifts is the onboarding schedule for a new doctor: weekdays,
// day bands only.
func DefaultWeeklyShifts(hospitalID, doctorID uint) []WeeklyShift {
	shifts := make([]WeeklyShift, 0, 7)
	for day := Sunday; day <= Saturday; day++ {
		working := day != Sunday && day != Saturday
		shifts = append(shifts, WeeklyShift{
			HospitalID: hospitalID,
			DoctorID:   doctorID,
			DayOfWeek:  day,
			IsWorking:  working,
			Morning:    working,
			Evening:    working,
		})
	}
	return shifts
}
