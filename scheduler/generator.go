package scheduler

import (
	"time"

	"github.com/meditrack/hospital-api/models"
)

// ValidDurations is the enumerated set of appointment durations in minutes.
var ValidDurations = []int{10, 15, 20, 30, 45, 60}

func IsValidDuration(min int) bool {
	for _, d := range ValidDurations {
		if d == min {
			return true
		}
	}
	return false
}

// ScheduleState is the configuration a candidate slot set is derived from.
// It carries proposed values during a preview and persisted values during a
// commit; generation itself never touches storage.
type ScheduleState struct {
	Week        [7]models.WeeklyShift // indexed by day-of-week, Sunday = 0
	Bands       BandTimes
	DurationMin int
	Blocked     map[string]bool // date keys unioned from the time-off ledger
}

// Candidate is a slot that should exist: one duration-sized window inside an
// active span on a working, unblocked date.
type Candidate struct {
	Date      time.Time
	StartTime string
	EndTime   string
}

func (c Candidate) Key() string {
	return DateKey(c.Date) + "|" + c.StartTime + "|" + c.EndTime
}

func slotKey(s models.Slot) string {
	return DateKey(s.Date) + "|" + s.StartTime + "|" + s.EndTime
}

// BlockedDates materializes the union of all time-off entries intersecting
// [from, to] as a set of date keys.
func BlockedDates(entries []models.TimeOffEntry, from, to time.Time) map[string]bool {
	from, to = DateOnly(from), DateOnly(to)
	blocked := make(map[string]bool)
	for _, e := range entries {
		start, end := DateOnly(e.StartDate), DateOnly(e.EndDate)
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			blocked[DateKey(d)] = true
		}
	}
	return blocked
}

// GenerateCandidates computes the complete slot set that should exist over
// [from, to]. Non-working days and blocked dates emit nothing. Each active
// span is discretized into consecutive duration-sized windows; a trailing
// window shorter than the duration is dropped, not truncated. A wrapping
// night span is split at midnight: the first half belongs to the shift's own
// date, the second to the next calendar date. The spill-over is generated
// even when the next date's weekly pattern is non-working (it belongs to the
// shift that started the evening before) but is suppressed when the next date
// is blocked by time-off.
func GenerateCandidates(st ScheduleState, from, to time.Time) ([]Candidate, error) {
	if !IsValidDuration(st.DurationMin) {
		return nil, validationErrorf("appointment duration %d is not one of %v", st.DurationMin, ValidDurations)
	}
	from, to = DateOnly(from), DateOnly(to)
	if to.Before(from) {
		return nil, validationErrorf("horizon end %s is before start %s", DateKey(to), DateKey(from))
	}
	if st.Blocked == nil {
		st.Blocked = map[string]bool{}
	}

	var out []Candidate
	seen := make(map[string]bool)
	emit := func(date time.Time, startMin, endMin int) {
		for s := startMin; s+st.DurationMin <= endMin; s += st.DurationMin {
			c := Candidate{
				Date:      date,
				StartTime: FormatClock(s),
				EndTime:   FormatClock(s + st.DurationMin),
			}
			if k := c.Key(); !seen[k] {
				seen[k] = true
				out = append(out, c)
			}
		}
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		ws := st.Week[int(d.Weekday())]
		if !ws.IsWorking || st.Blocked[DateKey(d)] {
			continue
		}
		for _, sp := range ActiveSpans(ws, st.Bands) {
			if !sp.Wraps() {
				emit(d, sp.Start, sp.End)
				continue
			}
			emit(d, sp.Start, minutesPerDay)
			next := d.AddDate(0, 0, 1)
			if !st.Blocked[DateKey(next)] {
				emit(next, 0, sp.End)
			}
		}
	}
	return out, nil
}

// DiffSlots compares the candidate set against existing rows. Existing slots
// absent from the candidate set are orphans (deletion candidates, surfaced as
// conflicts first when booked); candidates absent from the existing rows are
// missing and must be created.
func DiffSlots(existing []models.Slot, candidates []Candidate) (orphans []models.Slot, missing []Candidate) {
	wanted := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		wanted[c.Key()] = true
	}
	have := make(map[string]bool, len(existing))
	for _, s := range existing {
		k := slotKey(s)
		have[k] = true
		if !wanted[k] {
			orphans = append(orphans, s)
		}
	}
	for _, c := range candidates {
		if !have[c.Key()] {
			missing = append(missing, c)
		}
	}
	return orphans, missing
}
