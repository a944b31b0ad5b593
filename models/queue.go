package models

import (
	"time"

	"gorm.io/gorm"
)

type QueueEntryType string

const (
	QueueWalkIn    QueueEntryType = "WALK_IN"
	QueueScheduled QueueEntryType = "SCHEDULED"
)

type QueueStatus string

const (
	QueueWaiting    QueueStatus = "WAITING"
	QueueInProgress QueueStatus = "IN_PROGRESS"
	QueueCompleted  QueueStatus = "COMPLETED"
)

// QueueEntry is a checked-in patient on a doctor's daily queue. Scheduled
// entries reference their appointment and are removed when that appointment
// is cancelled by conflict resolution.
type QueueEntry struct {
	gorm.Model
	HospitalID    uint           `json:"hospital_id" gorm:"index"`
	DoctorID      uint           `json:"doctor_id" gorm:"index"`
	PatientID     uint           `json:"patient_id"`
	Patient       Patient        `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	AppointmentID *uint          `json:"appointment_id" gorm:"index"`
	Date          time.Time      `json:"date" gorm:"type:date;index"`
	EntryType     QueueEntryType `json:"entry_type"`
	Status        QueueStatus    `json:"status" gorm:"default:WAITING"`
	Position      int            `json:"position"`
}

func (q *QueueEntry) BeforeCreate(tx *gorm.DB) error {
	if q.Status == "" {
		q.Status = QueueWaiting
	}
	if q.EntryType == "" {
		q.EntryType = QueueWalkIn
	}
	return nil
}
