package scheduler

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

const dateLayout = "2006-01-02"

// ParseClock parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are not carried; slot boundaries are minute-aligned.
func ParseClock(s string) (int, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, validationErrorf("invalid clock time %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, validationErrorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM:SS". A value of 1440
// (end of day) wraps to "00:00:00"; callers attribute it to the owning date.
func FormatClock(min int) string {
	min = min % minutesPerDay
	return fmt.Sprintf("%02d:%02d:00", min/60, min%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, validationErrorf("invalid date %q", s)
	}
	return d, nil
}

// DateOnly truncates t to its calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey renders a date as its "YYYY-MM-DD" map key.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}
