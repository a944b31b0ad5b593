package scheduler

import (
	"testing"

	"github.com/meditrack/hospital-api/models"
)

func testTiming() models.ShiftTimingConfig {
	return models.ShiftTimingConfig{
		MorningStart: "06:00:00", MorningEnd: "12:00:00",
		EveningStart: "12:00:00", EveningEnd: "18:00:00",
		NightStart: "22:00:00", NightEnd: "06:00:00",
	}
}

func mustBands(t *testing.T, cfg models.ShiftTimingConfig) BandTimes {
	t.Helper()
	bt, err := ResolveBandTimes(cfg)
	if err != nil {
		t.Fatalf("unexpected error resolving bands: %v", err)
	}
	return bt
}

func TestResolveBandTimes_NightMayWrap(t *testing.T) {
	bt := mustBands(t, testTiming())
	if !bt.Night.Wraps() {
		t.Errorf("expected night band 22:00-06:00 to wrap, got %+v", bt.Night)
	}
	if bt.Morning.Wraps() || bt.Evening.Wraps() {
		t.Error("morning and evening bands must not wrap")
	}
}

func TestResolveBandTimes_RejectsInvertedDayBand(t *testing.T) {
	cfg := testTiming()
	cfg.MorningStart, cfg.MorningEnd = "12:00:00", "06:00:00"
	if _, err := ResolveBandTimes(cfg); !IsValidation(err) {
		t.Fatalf("expected ValidationError for inverted morning band, got %v", err)
	}
}

func TestActiveSpans_DisjointBands(t *testing.T) {
	bt := mustBands(t, testTiming())
	ws := models.WeeklyShift{IsWorking: true, Morning: true, Night: true}

	spans := ActiveSpans(ws, bt)
	if len(spans) != 2 {
		t.Fatalf("expected 2 disjoint spans for morning+night, got %d: %+v", len(spans), spans)
	}
	if spans[0].Start != 6*60 || spans[0].End != 12*60 {
		t.Errorf("unexpected morning span %+v", spans[0])
	}
	if !spans[1].Wraps() {
		t.Errorf("expected trailing wrapping night span, got %+v", spans[1])
	}
}

func TestActiveSpans_MergesContiguousBands(t *testing.T) {
	bt := mustBands(t, testTiming())
	ws := models.WeeklyShift{IsWorking: true, Morning: true, Evening: true}

	spans := ActiveSpans(ws, bt)
	if len(spans) != 1 {
		t.Fatalf("expected morning+evening to merge into one span, got %d", len(spans))
	}
	if spans[0].Start != 6*60 || spans[0].End != 18*60 {
		t.Errorf("unexpected merged span %+v", spans[0])
	}
}

func TestActiveSpans_NotWorking(t *testing.T) {
	bt := mustBands(t, testTiming())
	ws := models.WeeklyShift{IsWorking: false, Morning: true}
	if spans := ActiveSpans(ws, bt); spans != nil {
		t.Errorf("expected no spans on a non-working day, got %+v", spans)
	}
}

func TestBuildDaySpan_FlattenedPair(t *testing.T) {
	bt := mustBands(t, testTiming())
	ws := models.WeeklyShift{IsWorking: true, Morning: true, Evening: true}

	start, end := BuildDaySpan(ws, bt)
	if start == nil || end == nil {
		t.Fatal("expected a derived span for an active day")
	}
	if *start != "06:00:00" || *end != "18:00:00" {
		t.Errorf("got span %s-%s, want 06:00:00-18:00:00", *start, *end)
	}
}

func TestBuildDaySpan_NightWrapEndsBeforeStart(t *testing.T) {
	bt := mustBands(t, testTiming())
	ws := models.WeeklyShift{IsWorking: true, Night: true}

	start, end := BuildDaySpan(ws, bt)
	if start == nil || end == nil {
		t.Fatal("expected a derived span for a night-only day")
	}
	if *start != "22:00:00" || *end != "06:00:00" {
		t.Errorf("got span %s-%s, want 22:00:00-06:00:00", *start, *end)
	}
	if !(*end < *start) {
		t.Error("wrapping span must store end before start so consumers read it as next-day")
	}
}

func TestBuildDaySpan_NoActiveBand(t *testing.T) {
	bt := mustBands(t, testTiming())
	ws := models.WeeklyShift{IsWorking: false}

	start, end := BuildDaySpan(ws, bt)
	if start != nil || end != nil {
		t.Errorf("expected nil span for an off day, got %v-%v", start, end)
	}
}
