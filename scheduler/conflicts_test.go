package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/meditrack/hospital-api/models"
)

const testDoctorID = 7

// bookSlot marks the slot matching the given window as booked.
func bookSlot(slots []models.Slot, date time.Time, start string) {
	for i := range slots {
		if DateKey(slots[i].Date) == DateKey(date) && slots[i].StartTime == start {
			slots[i].Status = models.SlotBooked
			return
		}
	}
}

func TestConflicts_DurationChangeShrinksSlots(t *testing.T) {
	// Doctor works Monday 09:00-12:00 at 30min with one booked appointment at
	// 10:00-10:30. A change to 45min must report exactly that appointment as
	// a conflict, delete the 6 old slots and generate 4 new ones.
	cfg := testTiming()
	cfg.MorningStart, cfg.MorningEnd = "09:00:00", "12:00:00"
	week := weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true})

	current := ScheduleState{Week: week, Bands: mustBands(t, cfg), DurationMin: 30}
	cands30, err := GenerateCandidates(current, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	existing := slotsFromCandidates(cands30, models.SlotOpen)
	bookSlot(existing, monday, "10:00:00")

	appt := models.Appointment{
		Model:     gormModel(42),
		DoctorID:  testDoctorID,
		Patient:   models.Patient{Name: "Jordan Miles"},
		Date:      monday,
		StartTime: "10:00:00",
		EndTime:   "10:30:00",
		Status:    models.StatusConfirmed,
	}

	proposed := ScheduleState{Week: week, Bands: current.Bands, DurationMin: 45}
	cands45, err := GenerateCandidates(proposed, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orphans, missing := DiffSlots(existing, cands45)

	if len(orphans) != 6 {
		t.Errorf("expected 6 slots to delete, got %d", len(orphans))
	}
	if len(missing) != 4 {
		t.Errorf("expected 4 new 45-minute slots, got %d", len(missing))
	}
	wantStarts := []string{"09:00:00", "09:45:00", "10:30:00", "11:15:00"}
	for i, c := range missing {
		if c.StartTime != wantStarts[i] {
			t.Errorf("new slot %d starts %s, want %s", i, c.StartTime, wantStarts[i])
		}
	}

	report := BuildConflictReport(testDoctorID, orphans, []models.Appointment{appt}, nil)
	if len(report.Conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(report.Conflicts))
	}
	c := report.Conflicts[0]
	if c.AppointmentID != 42 {
		t.Errorf("conflict appointment id %d, want 42", c.AppointmentID)
	}
	if c.PatientName != "Jordan Miles" {
		t.Errorf("conflict patient %q, want Jordan Miles", c.PatientName)
	}
	if report.Summary.SlotsToDelete != 6 {
		t.Errorf("summary slots_to_delete %d, want 6", report.Summary.SlotsToDelete)
	}
	if report.Summary.TotalAppointments != len(report.Conflicts) {
		t.Error("summary total_appointments must equal the conflict count")
	}
}

func TestConflicts_CompletenessForAllBookedOrphans(t *testing.T) {
	cfg := testTiming()
	cfg.MorningStart, cfg.MorningEnd = "09:00:00", "12:00:00"
	week := weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true})

	st := ScheduleState{Week: week, Bands: mustBands(t, cfg), DurationMin: 30}
	cands, err := GenerateCandidates(st, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	existing := slotsFromCandidates(cands, models.SlotOpen)
	bookSlot(existing, monday, "09:00:00")
	bookSlot(existing, monday, "11:30:00")

	appts := []models.Appointment{
		{Model: gormModel(1), DoctorID: testDoctorID, Date: monday, StartTime: "09:00:00", EndTime: "09:30:00", Status: models.StatusScheduled},
		{Model: gormModel(2), DoctorID: testDoctorID, Date: monday, StartTime: "11:30:00", EndTime: "12:00:00", Status: models.StatusConfirmed},
	}

	// Every slot becomes an orphan: the whole day is dropped.
	dropped := ScheduleState{Week: weekWith(), Bands: st.Bands, DurationMin: 30}
	empty, err := GenerateCandidates(dropped, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orphans, _ := DiffSlots(existing, empty)

	report := BuildConflictReport(testDoctorID, orphans, appts, nil)
	if len(report.Conflicts) != 2 {
		t.Fatalf("expected every booked orphan to surface, got %d conflicts", len(report.Conflicts))
	}
	seen := map[uint]bool{}
	for _, c := range report.Conflicts {
		seen[c.AppointmentID] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("missing appointment ids in conflicts: %v", seen)
	}
	if report.Summary.TotalAppointments != 2 {
		t.Errorf("summary total_appointments %d, want 2", report.Summary.TotalAppointments)
	}
}

func TestConflicts_TimeOffOverConfirmedAppointment(t *testing.T) {
	// Time-off 2025-06-09..2025-06-11 over a CONFIRMED appointment on
	// 2025-06-10 surfaces it as a conflict, with has_queue_entry reflecting
	// the day's queue.
	cfg := testTiming()
	cfg.MorningStart, cfg.MorningEnd = "09:00:00", "12:00:00"
	week := weekWith(
		models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true},
		models.WeeklyShift{DayOfWeek: models.Tuesday, IsWorking: true, Morning: true},
	)
	tuesday := monday.AddDate(0, 0, 1)

	st := ScheduleState{Week: week, Bands: mustBands(t, cfg), DurationMin: 30}
	cands, err := GenerateCandidates(st, monday, tuesday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	existing := slotsFromCandidates(cands, models.SlotOpen)
	bookSlot(existing, tuesday, "09:30:00")

	appt := models.Appointment{
		Model: gormModel(11), DoctorID: testDoctorID,
		Date: tuesday, StartTime: "09:30:00", EndTime: "10:00:00",
		Status: models.StatusConfirmed,
	}
	apptID := uint(11)
	queue := models.QueueEntry{
		Model: gormModel(3), DoctorID: testDoctorID,
		AppointmentID: &apptID, Date: tuesday,
		EntryType: models.QueueScheduled, Status: models.QueueWaiting,
	}

	timeOff := []models.TimeOffEntry{{StartDate: monday, EndDate: monday.AddDate(0, 0, 2)}}
	blocked := ScheduleState{
		Week: week, Bands: st.Bands, DurationMin: 30,
		Blocked: BlockedDates(timeOff, monday, tuesday),
	}
	empty, err := GenerateCandidates(blocked, monday, tuesday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orphans, _ := DiffSlots(existing, empty)

	report := BuildConflictReport(testDoctorID, orphans, []models.Appointment{appt}, []models.QueueEntry{queue})
	if len(report.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(report.Conflicts))
	}
	c := report.Conflicts[0]
	if c.AppointmentID != 11 {
		t.Errorf("conflict appointment id %d, want 11", c.AppointmentID)
	}
	if !c.HasQueueEntry || c.QueueEntryID == nil || *c.QueueEntryID != 3 {
		t.Errorf("expected queue entry 3 on the conflict, got has=%v id=%v", c.HasQueueEntry, c.QueueEntryID)
	}
	if report.Summary.TotalQueueEntries != 1 {
		t.Errorf("summary total_queue_entries %d, want 1", report.Summary.TotalQueueEntries)
	}
	if report.Summary.DateRange == "" {
		t.Error("expected a date range covering the orphaned slots")
	}
}

func TestConflicts_CompletedAppointmentsNeverSurface(t *testing.T) {
	existing := []models.Slot{{
		Model: gormModel(1), Date: monday, StartTime: "09:00:00", EndTime: "09:30:00",
		Status: models.SlotBooked,
	}}
	appt := models.Appointment{
		Model: gormModel(5), DoctorID: testDoctorID,
		Date: monday, StartTime: "09:00:00", EndTime: "09:30:00",
		Status: models.StatusCompleted,
	}

	report := BuildConflictReport(testDoctorID, existing, []models.Appointment{appt}, nil)
	if len(report.Conflicts) != 0 {
		t.Errorf("completed appointments must not be conflicts, got %d", len(report.Conflicts))
	}
	if report.Summary.SlotsToDelete != 1 {
		t.Errorf("the orphan slot still counts toward deletion, got %d", report.Summary.SlotsToDelete)
	}
}

// liveReport builds a one-conflict report for the commit-coverage tests.
func liveReport(t *testing.T) *ConflictReport {
	t.Helper()
	slot := models.Slot{Model: gormModel(1), Date: monday, StartTime: "09:00:00", EndTime: "09:30:00", Status: models.SlotBooked}
	appt := models.Appointment{
		Model: gormModel(21), DoctorID: testDoctorID,
		Date: monday, StartTime: "09:00:00", EndTime: "09:30:00",
		Status: models.StatusConfirmed,
	}
	report := BuildConflictReport(testDoctorID, []models.Slot{slot}, []models.Appointment{appt}, nil)
	return &report
}

func TestVerifyCommitCoverage_RejectsUnconfirmedConflicts(t *testing.T) {
	// Committing with live conflicts and an empty cancel list must fail: an
	// appointment is never cancelled without the operator listing it.
	report := liveReport(t)
	err := VerifyCommitCoverage(report, nil, "", "")
	if !errors.Is(err, ErrConflictsChanged) {
		t.Fatalf("expected ErrConflictsChanged for uncovered conflicts, got %v", err)
	}
	var cc *ConflictsChangedError
	if !errors.As(err, &cc) || cc.Report == nil {
		t.Fatal("rejection must carry the live report for the operator")
	}
	if len(cc.Report.Conflicts) != 1 || cc.Report.Conflicts[0].AppointmentID != 21 {
		t.Errorf("carried report does not match the live conflicts: %+v", cc.Report.Conflicts)
	}
}

func TestVerifyCommitCoverage_PassesWhenFullyConfirmed(t *testing.T) {
	report := liveReport(t)
	if err := VerifyCommitCoverage(report, []uint{21}, report.Fingerprint, ""); err != nil {
		t.Fatalf("fully confirmed commit must pass, got %v", err)
	}
}

func TestVerifyCommitCoverage_RejectsStaleCallerFingerprint(t *testing.T) {
	report := liveReport(t)
	err := VerifyCommitCoverage(report, []uint{21}, "deadbeef", "")
	if !errors.Is(err, ErrConflictsChanged) {
		t.Fatalf("expected ErrConflictsChanged for a stale fingerprint, got %v", err)
	}
}

func TestVerifyCommitCoverage_FallsBackToCachedFingerprint(t *testing.T) {
	// A commit that omits the fingerprint is still checked against the cached
	// preview fingerprint when one exists.
	report := liveReport(t)
	if err := VerifyCommitCoverage(report, []uint{21}, "", "deadbeef"); !errors.Is(err, ErrConflictsChanged) {
		t.Fatalf("expected stale cached fingerprint to reject, got %v", err)
	}
	if err := VerifyCommitCoverage(report, []uint{21}, "", report.Fingerprint); err != nil {
		t.Fatalf("matching cached fingerprint must pass, got %v", err)
	}
	// The caller's fingerprint wins over the cached one.
	if err := VerifyCommitCoverage(report, []uint{21}, report.Fingerprint, "deadbeef"); err != nil {
		t.Fatalf("caller fingerprint must take precedence over the cache, got %v", err)
	}
}

func TestConflicts_FingerprintTracksState(t *testing.T) {
	slot := models.Slot{Model: gormModel(1), Date: monday, StartTime: "09:00:00", EndTime: "09:30:00", Status: models.SlotBooked}
	appt := models.Appointment{
		Model: gormModel(9), DoctorID: testDoctorID,
		Date: monday, StartTime: "09:00:00", EndTime: "09:30:00",
		Status: models.StatusScheduled,
	}

	withConflict := BuildConflictReport(testDoctorID, []models.Slot{slot}, []models.Appointment{appt}, nil)
	without := BuildConflictReport(testDoctorID, nil, []models.Appointment{appt}, nil)
	if withConflict.Fingerprint == without.Fingerprint {
		t.Error("fingerprint must change when the conflict set changes")
	}

	again := BuildConflictReport(testDoctorID, []models.Slot{slot}, []models.Appointment{appt}, nil)
	if withConflict.Fingerprint != again.Fingerprint {
		t.Error("fingerprint must be stable for identical state")
	}
}
