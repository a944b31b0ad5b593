package scheduler

import "testing"

func TestParseClock_AcceptedFormats(t *testing.T) {
	cases := map[string]int{
		"06:00":    6 * 60,
		"06:30:00": 6*60 + 30,
		"23:59:59": 23*60 + 59,
		"00:00":    0,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil {
			t.Errorf("ParseClock(%q) returned error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseClock(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseClock_RejectsOutOfRangeFields(t *testing.T) {
	for _, in := range []string{"24:00", "06:60", "06:00:99", "06:00:-5", "-1:30", "garbage"} {
		if _, err := ParseClock(in); !IsValidation(err) {
			t.Errorf("ParseClock(%q) expected ValidationError, got %v", in, err)
		}
	}
}

func TestFormatClock_WrapsEndOfDay(t *testing.T) {
	if got := FormatClock(minutesPerDay); got != "00:00:00" {
		t.Errorf("FormatClock(1440) = %q, want 00:00:00", got)
	}
	if got := FormatClock(13*60 + 30); got != "13:30:00" {
		t.Errorf("FormatClock(810) = %q, want 13:30:00", got)
	}
}
