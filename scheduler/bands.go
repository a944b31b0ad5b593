package scheduler

import (
	"sort"

	"github.com/meditrack/hospital-api/models"
)

// Span is a working window in minutes since midnight. End <= Start means the
// span wraps past 00:00 (night shift); only the night band may wrap.
type Span struct {
	Start int
	End   int
}

func (s Span) Wraps() bool { return s.End <= s.Start }

// BandTimes are the resolved clock bounds of the three shift bands.
type BandTimes struct {
	Morning Span
	Evening Span
	Night   Span
}

// ResolveBandTimes parses and validates a timing config. Morning and evening
// must not wrap; the night band may wrap past midnight.
func ResolveBandTimes(cfg models.ShiftTimingConfig) (BandTimes, error) {
	var bt BandTimes
	parse := func(band, start, end string, allowWrap bool) (Span, error) {
		s, err := ParseClock(start)
		if err != nil {
			return Span{}, err
		}
		e, err := ParseClock(end)
		if err != nil {
			return Span{}, err
		}
		if s >= e && !allowWrap {
			return Span{}, validationErrorf("%s band start %s must be before end %s", band, start, end)
		}
		return Span{Start: s, End: e}, nil
	}

	var err error
	if bt.Morning, err = parse("morning", cfg.MorningStart, cfg.MorningEnd, false); err != nil {
		return bt, err
	}
	if bt.Evening, err = parse("evening", cfg.EveningStart, cfg.EveningEnd, false); err != nil {
		return bt, err
	}
	if bt.Night, err = parse("night", cfg.NightStart, cfg.NightEnd, true); err != nil {
		return bt, err
	}
	return bt, nil
}

// ActiveSpans recovers the working windows of a day band-by-band, so a day
// with morning and night active yields two disjoint spans that skip the
// evening gap. Adjacent or overlapping non-wrapping spans are merged into one
// continuous window. A wrapping night span is always kept separate and last.
func ActiveSpans(ws models.WeeklyShift, bt BandTimes) []Span {
	if !ws.IsWorking {
		return nil
	}

	var flat []Span
	var wrap *Span
	add := func(sp Span) {
		if sp.Wraps() {
			w := sp
			wrap = &w
			return
		}
		flat = append(flat, sp)
	}
	if ws.Morning {
		add(bt.Morning)
	}
	if ws.Evening {
		add(bt.Evening)
	}
	if ws.Night {
		add(bt.Night)
	}

	sort.Slice(flat, func(i, j int) bool { return flat[i].Start < flat[j].Start })
	var merged []Span
	for _, sp := range flat {
		if n := len(merged); n > 0 && sp.Start <= merged[n-1].End {
			if sp.End > merged[n-1].End {
				merged[n-1].End = sp.End
			}
			continue
		}
		merged = append(merged, sp)
	}
	if wrap != nil {
		merged = append(merged, *wrap)
	}
	return merged
}

// BuildDaySpan flattens a day's active bands into the single legacy
// shift_start/shift_end pair: earliest active band start, latest active band
// end. For a wrapping night band the returned end is an earlier clock time
// than the start; consumers must read end < start as "ends next day". Both
// values are nil when the day has no active band.
func BuildDaySpan(ws models.WeeklyShift, bt BandTimes) (shiftStart, shiftEnd *string) {
	spans := ActiveSpans(ws, bt)
	if len(spans) == 0 {
		return nil, nil
	}
	start := FormatClock(spans[0].Start)
	end := FormatClock(spans[len(spans)-1].End)
	return &start, &end
}
