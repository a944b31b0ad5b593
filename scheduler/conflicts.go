package scheduler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/meditrack/hospital-api/models"
)

// Conflict is one booked artifact rendered invalid by a proposed change: the
// owning appointment and, if the patient has been checked in, its queue entry.
type Conflict struct {
	AppointmentID uint                     `json:"appointment_id"`
	PatientName   string                   `json:"patient_name"`
	Date          string                   `json:"date"`
	StartTime     string                   `json:"start_time"`
	EndTime       string                   `json:"end_time"`
	Status        models.AppointmentStatus `json:"status"`
	HasQueueEntry bool                     `json:"has_queue_entry"`
	QueueEntryID  *uint                    `json:"queue_entry_id,omitempty"`
}

type ConflictSummary struct {
	TotalAppointments int    `json:"total_appointments"`
	TotalQueueEntries int    `json:"total_queue_entries"`
	DateRange         string `json:"date_range"`
	SlotsToDelete     int    `json:"slots_to_delete"`
}

// ConflictReport is the dry-run preview result. It is transient: produced for
// the operator's confirmation dialog and, through the fingerprint, matched
// against the live state again at commit time.
type ConflictReport struct {
	Conflicts   []Conflict      `json:"conflicts"`
	Summary     ConflictSummary `json:"summary"`
	Fingerprint string          `json:"fingerprint"`
}

// ConflictAppointmentIDs lists the appointment IDs the operator must confirm
// for cancellation.
func (r *ConflictReport) ConflictAppointmentIDs() []uint {
	ids := make([]uint, 0, len(r.Conflicts))
	for _, c := range r.Conflicts {
		ids = append(ids, c.AppointmentID)
	}
	return ids
}

// BuildConflictReport classifies the booked slots among the orphans: each is
// resolved to its active appointment and, when present, the appointment's
// queue entry. Completed, cancelled and no-show appointments are never
// conflicts. Pure; safe to run repeatedly.
func BuildConflictReport(doctorID uint, orphans []models.Slot, appts []models.Appointment, queues []models.QueueEntry) ConflictReport {
	apptByWindow := make(map[string]models.Appointment)
	for _, a := range appts {
		if a.IsActive() {
			apptByWindow[DateKey(a.Date)+"|"+a.StartTime] = a
		}
	}
	queueByAppt := make(map[uint]models.QueueEntry)
	for _, q := range queues {
		if q.AppointmentID != nil && q.Status != models.QueueCompleted {
			queueByAppt[*q.AppointmentID] = q
		}
	}

	report := ConflictReport{}
	var minDate, maxDate string
	for _, s := range orphans {
		dk := DateKey(s.Date)
		if minDate == "" || dk < minDate {
			minDate = dk
		}
		if dk > maxDate {
			maxDate = dk
		}
		if s.Status != models.SlotBooked {
			continue
		}
		a, ok := apptByWindow[dk+"|"+s.StartTime]
		if !ok {
			continue
		}
		c := Conflict{
			AppointmentID: a.ID,
			PatientName:   a.Patient.Name,
			Date:          dk,
			StartTime:     a.StartTime,
			EndTime:       a.EndTime,
			Status:        a.Status,
		}
		if q, ok := queueByAppt[a.ID]; ok {
			id := q.ID
			c.HasQueueEntry = true
			c.QueueEntryID = &id
			report.Summary.TotalQueueEntries++
		}
		report.Conflicts = append(report.Conflicts, c)
	}

	report.Summary.TotalAppointments = len(report.Conflicts)
	report.Summary.SlotsToDelete = len(orphans)
	if minDate != "" {
		report.Summary.DateRange = minDate + ".." + maxDate
	}
	report.Fingerprint = fingerprint(doctorID, report.ConflictAppointmentIDs(), len(orphans))
	return report
}

// VerifyCommitCoverage enforces the commit-side half of the preview/commit
// protocol against the live report: the fingerprint the operator confirmed
// against (the caller's, or the cached preview's when the caller sent none)
// must still match, and every live conflict must appear in cancelIDs. A
// violation returns a ConflictsChangedError carrying the live report; nothing
// may be mutated after one.
func VerifyCommitCoverage(report *ConflictReport, cancelIDs []uint, fp, cachedFP string) error {
	if fp == "" {
		fp = cachedFP
	}
	if fp != "" && fp != report.Fingerprint {
		return conflictsChanged(report)
	}
	confirmed := make(map[uint]bool, len(cancelIDs))
	for _, id := range cancelIDs {
		confirmed[id] = true
	}
	for _, c := range report.Conflicts {
		if !confirmed[c.AppointmentID] {
			// Never silently cancel an appointment the operator did not list.
			return conflictsChanged(report)
		}
	}
	return nil
}

// fingerprint digests the doctor, the conflicting appointment IDs and the
// orphan count. Preview hands it to the operator; commit recomputes it from
// live state so a schedule that moved in between is detected.
func fingerprint(doctorID uint, conflictIDs []uint, slotsToDelete int) string {
	sorted := append([]uint(nil), conflictIDs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	h := sha256.New()
	fmt.Fprintf(h, "doctor:%d|slots:%d", doctorID, slotsToDelete)
	for _, id := range sorted {
		fmt.Fprintf(h, "|appt:%d", id)
	}
	return hex.EncodeToString(h.Sum(nil))
}
