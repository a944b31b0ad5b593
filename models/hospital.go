package models

import (
	"gorm.io/gorm"
)

type Hospital struct {
	gorm.Model
	Name     string    `json:"name"`
	Timezone string    `json:"timezone" gorm:"default:UTC"`
	Doctors  []Doctor  `json:"doctors,omitempty" gorm:"foreignKey:HospitalID"`
	Patients []Patient `json:"patients,omitempty" gorm:"foreignKey:HospitalID"`
}

type Doctor struct {
	gorm.Model
	HospitalID uint     `json:"hospital_id" gorm:"index"`
	Hospital   Hospital `json:"hospital,omitempty" gorm:"foreignKey:HospitalID"`
	Name       string   `json:"name"`
	Email      string   `json:"email" gorm:"uniqueIndex"`
	Specialty  string   `json:"specialty"`
	// Slot granularity in minutes, one of 10/15/20/30/45/60.
	AppointmentDurationMin int `json:"appointment_duration_min" gorm:"default:30"`

	WeeklyShifts []WeeklyShift  `json:"weekly_shifts,omitempty" gorm:"foreignKey:DoctorID"`
	TimeOff      []TimeOffEntry `json:"time_off,omitempty" gorm:"foreignKey:DoctorID"`
	Appointments []Appointment  `json:"appointments,omitempty" gorm:"foreignKey:DoctorID"`
}

type Patient struct {
	gorm.Model
	HospitalID uint   `json:"hospital_id" gorm:"index"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}
