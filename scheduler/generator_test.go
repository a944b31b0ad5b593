package scheduler

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/meditrack/hospital-api/models"
)

// monday is a fixed Monday used across the generator tests.
var monday = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func weekWith(days ...models.WeeklyShift) [7]models.WeeklyShift {
	var week [7]models.WeeklyShift
	for i := range week {
		week[i] = models.WeeklyShift{DayOfWeek: models.DayOfWeek(i)}
	}
	for _, d := range days {
		week[int(d.DayOfWeek)] = d
	}
	return week
}

func TestGenerateCandidates_Coverage(t *testing.T) {
	// Morning band 06:00-14:00, duration 30 -> exactly 16 slots, none
	// crossing 14:00.
	cfg := testTiming()
	cfg.MorningEnd = "14:00:00"
	st := ScheduleState{
		Week:        weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true}),
		Bands:       mustBands(t, cfg),
		DurationMin: 30,
	}

	slots, err := GenerateCandidates(st, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots for 06:00-14:00 at 30min, got %d", len(slots))
	}
	if slots[0].StartTime != "06:00:00" || slots[0].EndTime != "06:30:00" {
		t.Errorf("first slot %s-%s, want 06:00:00-06:30:00", slots[0].StartTime, slots[0].EndTime)
	}
	last := slots[len(slots)-1]
	if last.StartTime != "13:30:00" || last.EndTime != "14:00:00" {
		t.Errorf("last slot %s-%s, want 13:30:00-14:00:00", last.StartTime, last.EndTime)
	}
	for _, s := range slots {
		if s.EndTime > "14:00:00" {
			t.Errorf("slot %s-%s crosses the band end", s.StartTime, s.EndTime)
		}
	}
}

func TestGenerateCandidates_DropsPartialTrailingWindow(t *testing.T) {
	// 09:00-12:00 at 45min leaves 09:00, 09:45, 10:30, 11:15; the 12:00
	// remainder is shorter than the duration and is dropped, not truncated.
	cfg := testTiming()
	cfg.MorningStart, cfg.MorningEnd = "09:00:00", "12:00:00"
	st := ScheduleState{
		Week:        weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true}),
		Bands:       mustBands(t, cfg),
		DurationMin: 45,
	}

	slots, err := GenerateCandidates(st, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"09:00:00", "09:45:00", "10:30:00", "11:15:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i, s := range slots {
		if s.StartTime != want[i] {
			t.Errorf("slot %d starts %s, want %s", i, s.StartTime, want[i])
		}
	}
}

func TestGenerateCandidates_TimeOffExcludesAllDates(t *testing.T) {
	week := weekWith(
		models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true},
		models.WeeklyShift{DayOfWeek: models.Tuesday, IsWorking: true, Morning: true},
		models.WeeklyShift{DayOfWeek: models.Wednesday, IsWorking: true, Morning: true},
	)
	timeOff := []models.TimeOffEntry{{
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 2),
	}}
	to := monday.AddDate(0, 0, 6)
	st := ScheduleState{
		Week:        week,
		Bands:       mustBands(t, testTiming()),
		DurationMin: 30,
		Blocked:     BlockedDates(timeOff, monday, to),
	}

	slots, err := GenerateCandidates(st, monday, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected zero slots inside the blocked range, got %d", len(slots))
	}
}

func TestGenerateCandidates_OverlappingTimeOffUnions(t *testing.T) {
	week := weekWith(
		models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true},
		models.WeeklyShift{DayOfWeek: models.Tuesday, IsWorking: true, Morning: true},
	)
	timeOff := []models.TimeOffEntry{
		{StartDate: monday, EndDate: monday},
		{StartDate: monday, EndDate: monday.AddDate(0, 0, 1)},
	}
	to := monday.AddDate(0, 0, 1)
	st := ScheduleState{
		Week:        week,
		Bands:       mustBands(t, testTiming()),
		DurationMin: 30,
		Blocked:     BlockedDates(timeOff, monday, to),
	}

	slots, err := GenerateCandidates(st, monday, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected the union of overlapping entries to block both days, got %d slots", len(slots))
	}
}

func TestGenerateCandidates_NightWrapSplitsAtMidnight(t *testing.T) {
	// Night 22:00-06:00 on Monday: 22:00-24:00 belongs to Monday, 00:00-06:00
	// to Tuesday.
	st := ScheduleState{
		Week:        weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Night: true}),
		Bands:       mustBands(t, testTiming()),
		DurationMin: 30,
	}

	slots, err := GenerateCandidates(st, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var onMonday, onTuesday int
	for _, s := range slots {
		switch DateKey(s.Date) {
		case "2025-06-09":
			onMonday++
		case "2025-06-10":
			onTuesday++
		default:
			t.Errorf("slot on unexpected date %s", DateKey(s.Date))
		}
	}
	if onMonday != 4 {
		t.Errorf("expected 4 slots on the shift's own date (22:00-24:00), got %d", onMonday)
	}
	if onTuesday != 12 {
		t.Errorf("expected 12 spill-over slots after midnight (00:00-06:00), got %d", onTuesday)
	}
}

func TestGenerateCandidates_WrapSpilloverSuppressedByTimeOff(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	timeOff := []models.TimeOffEntry{{StartDate: tuesday, EndDate: tuesday}}
	st := ScheduleState{
		Week:        weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Night: true}),
		Bands:       mustBands(t, testTiming()),
		DurationMin: 30,
		Blocked:     BlockedDates(timeOff, monday, tuesday.AddDate(0, 0, 1)),
	}

	slots, err := GenerateCandidates(st, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range slots {
		if DateKey(s.Date) != "2025-06-09" {
			t.Errorf("expected no spill-over onto blocked date, got slot on %s", DateKey(s.Date))
		}
	}
	if len(slots) != 4 {
		t.Errorf("expected only the 22:00-24:00 half, got %d slots", len(slots))
	}
}

func TestGenerateCandidates_InvalidDuration(t *testing.T) {
	st := ScheduleState{
		Week:        weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true}),
		Bands:       mustBands(t, testTiming()),
		DurationMin: 25,
	}
	if _, err := GenerateCandidates(st, monday, monday); !IsValidation(err) {
		t.Fatalf("expected ValidationError for duration 25, got %v", err)
	}
}

func TestGenerateCandidates_InvertedHorizon(t *testing.T) {
	st := ScheduleState{
		Week:        weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true}),
		Bands:       mustBands(t, testTiming()),
		DurationMin: 30,
	}
	if _, err := GenerateCandidates(st, monday, monday.AddDate(0, 0, -1)); !IsValidation(err) {
		t.Fatalf("expected ValidationError for inverted horizon, got %v", err)
	}
}

func slotsFromCandidates(cands []Candidate, status models.SlotStatus) []models.Slot {
	out := make([]models.Slot, 0, len(cands))
	for i, c := range cands {
		out = append(out, models.Slot{
			Model:     gormModel(uint(i + 1)),
			Date:      c.Date,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Status:    status,
		})
	}
	return out
}

func TestDiffSlots_IdempotentWhenUnchanged(t *testing.T) {
	st := ScheduleState{
		Week:        weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true}),
		Bands:       mustBands(t, testTiming()),
		DurationMin: 30,
	}
	cands, err := GenerateCandidates(st, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	existing := slotsFromCandidates(cands, models.SlotOpen)

	orphans, missing := DiffSlots(existing, cands)
	if len(orphans) != 0 || len(missing) != 0 {
		t.Errorf("regeneration with no change must be a no-op, got %d orphans and %d missing",
			len(orphans), len(missing))
	}
}

func TestDiffSlots_ReopenedTimeOffOnlyCreates(t *testing.T) {
	// The previously blocked days held no slots, so lifting the time-off must
	// yield creations only.
	st := ScheduleState{
		Week:        weekWith(models.WeeklyShift{DayOfWeek: models.Monday, IsWorking: true, Morning: true}),
		Bands:       mustBands(t, testTiming()),
		DurationMin: 30,
	}
	cands, err := GenerateCandidates(st, monday, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orphans, missing := DiffSlots(nil, cands)
	if len(orphans) != 0 {
		t.Errorf("expected nothing to delete on previously blocked dates, got %d", len(orphans))
	}
	if len(missing) == 0 {
		t.Error("expected freed dates to generate slots")
	}
}
