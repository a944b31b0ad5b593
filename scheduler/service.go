package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meditrack/hospital-api/models"
)

const (
	// MaxHorizonWeeks bounds the regeneration horizon a caller may request.
	MaxHorizonWeeks = 26

	fingerprintTTL = 10 * time.Minute
)

type ChangeKind string

const (
	ChangeNone     ChangeKind = ""
	ChangeSchedule ChangeKind = "schedule"
	ChangeDuration ChangeKind = "duration"
	ChangeTimeOff  ChangeKind = "timeoff"
)

// DayToggle is one day's proposed band configuration.
type DayToggle struct {
	DayOfWeek models.DayOfWeek `json:"day_of_week"`
	Morning   bool             `json:"morning"`
	Evening   bool             `json:"evening"`
	Night     bool             `json:"night"`
}

// TimingPayload carries proposed band boundaries ("HH:MM:SS").
type TimingPayload struct {
	MorningStart string `json:"morning_start"`
	MorningEnd   string `json:"morning_end"`
	EveningStart string `json:"evening_start"`
	EveningEnd   string `json:"evening_end"`
	NightStart   string `json:"night_start"`
	NightEnd     string `json:"night_end"`
}

// TimeOffPayload carries a proposed time-off entry (dates "YYYY-MM-DD",
// inclusive).
type TimeOffPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason,omitempty"`
}

// ChangeRequest is a proposed configuration change. During preview it is
// overlaid on the persisted state in memory only; during commit it is
// persisted inside the same transaction that regenerates the slots.
type ChangeRequest struct {
	Kind            ChangeKind      `json:"change_type"`
	Week            []DayToggle     `json:"week,omitempty"`
	Timings         *TimingPayload  `json:"timings,omitempty"`
	DurationMin     int             `json:"duration_min,omitempty"`
	AddTimeOff      *TimeOffPayload `json:"add_time_off,omitempty"`
	RemoveTimeOffID uint            `json:"remove_time_off_id,omitempty"`
}

// ApplyResult is the operator feedback after a committed change.
type ApplyResult struct {
	SlotsDeleted          int `json:"slots_deleted"`
	SlotsGenerated        int `json:"slots_generated"`
	AppointmentsCancelled int `json:"appointments_cancelled"`
}

// Service wires the pure generator and conflict logic to persistence. Commits
// for the same doctor are serialized in-process and each commit runs in a
// single database transaction.
type Service struct {
	db    *gorm.DB
	cache *redis.Client
	log   *zap.Logger
	locks sync.Map // doctorID -> *sync.Mutex
}

func NewService(db *gorm.DB, cache *redis.Client, log *zap.Logger) *Service {
	return &Service{db: db, cache: cache, log: log}
}

func (s *Service) lockFor(doctorID uint) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(doctorID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// doctorState is the persisted scheduling configuration of one doctor.
type doctorState struct {
	doctor  models.Doctor
	week    [7]models.WeeklyShift
	timing  models.ShiftTimingConfig
	timeOff []models.TimeOffEntry
}

func defaultTiming(hospitalID uint) models.ShiftTimingConfig {
	return models.ShiftTimingConfig{
		HospitalID:   hospitalID,
		MorningStart: "06:00:00", MorningEnd: "12:00:00",
		EveningStart: "12:00:00", EveningEnd: "18:00:00",
		NightStart: "18:00:00", NightEnd: "23:00:00",
	}
}

func (s *Service) loadState(doctorID uint) (*doctorState, error) {
	st := &doctorState{}
	if err := s.db.First(&st.doctor, doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationErrorf("doctor %d not found", doctorID)
		}
		return nil, persistErr("load doctor", err)
	}

	var shifts []models.WeeklyShift
	if err := s.db.Where("doctor_id = ?", doctorID).Find(&shifts).Error; err != nil {
		return nil, persistErr("load weekly shifts", err)
	}
	for i := range st.week {
		st.week[i] = models.WeeklyShift{
			HospitalID: st.doctor.HospitalID,
			DoctorID:   doctorID,
			DayOfWeek:  models.DayOfWeek(i),
		}
	}
	for _, ws := range shifts {
		if ws.DayOfWeek >= 0 && ws.DayOfWeek <= 6 {
			st.week[int(ws.DayOfWeek)] = ws
		}
	}

	// Doctor override first, then the hospital-wide default row, then the
	// built-in default bands.
	var timing models.ShiftTimingConfig
	err := s.db.Where("doctor_id = ?", doctorID).First(&timing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.Where("hospital_id = ? AND doctor_id IS NULL", st.doctor.HospitalID).First(&timing).Error
	}
	switch {
	case err == nil:
		st.timing = timing
	case errors.Is(err, gorm.ErrRecordNotFound):
		st.timing = defaultTiming(st.doctor.HospitalID)
	default:
		return nil, persistErr("load shift timings", err)
	}

	if err := s.db.Where("doctor_id = ?", doctorID).Find(&st.timeOff).Error; err != nil {
		return nil, persistErr("load time off", err)
	}
	return st, nil
}

// applyOverlay mutates an in-memory copy of the state with the proposed
// change. Used identically by preview and commit so both phases reason about
// the same hypothetical configuration.
func applyOverlay(st *doctorState, change ChangeRequest) error {
	switch change.Kind {
	case ChangeNone:
		return nil
	case ChangeSchedule:
		for _, t := range change.Week {
			if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
				return validationErrorf("invalid day of week %d", t.DayOfWeek)
			}
			ws := &st.week[int(t.DayOfWeek)]
			ws.Morning, ws.Evening, ws.Night = t.Morning, t.Evening, t.Night
			ws.IsWorking = t.Morning || t.Evening || t.Night
		}
		if change.Timings != nil {
			st.timing.MorningStart, st.timing.MorningEnd = change.Timings.MorningStart, change.Timings.MorningEnd
			st.timing.EveningStart, st.timing.EveningEnd = change.Timings.EveningStart, change.Timings.EveningEnd
			st.timing.NightStart, st.timing.NightEnd = change.Timings.NightStart, change.Timings.NightEnd
		}
		return nil
	case ChangeDuration:
		if !IsValidDuration(change.DurationMin) {
			return validationErrorf("appointment duration %d is not one of %v", change.DurationMin, ValidDurations)
		}
		st.doctor.AppointmentDurationMin = change.DurationMin
		return nil
	case ChangeTimeOff:
		if change.AddTimeOff != nil {
			start, err := ParseDate(change.AddTimeOff.StartDate)
			if err != nil {
				return err
			}
			end, err := ParseDate(change.AddTimeOff.EndDate)
			if err != nil {
				return err
			}
			if end.Before(start) {
				return validationErrorf("time-off end %s is before start %s", change.AddTimeOff.EndDate, change.AddTimeOff.StartDate)
			}
			st.timeOff = append(st.timeOff, models.TimeOffEntry{
				HospitalID: st.doctor.HospitalID,
				DoctorID:   st.doctor.ID,
				StartDate:  start,
				EndDate:    end,
				Reason:     change.AddTimeOff.Reason,
			})
		}
		if change.RemoveTimeOffID != 0 {
			// Removing an id that is already gone is a no-op success.
			kept := st.timeOff[:0]
			for _, e := range st.timeOff {
				if e.ID != change.RemoveTimeOffID {
					kept = append(kept, e)
				}
			}
			st.timeOff = kept
		}
		return nil
	default:
		return validationErrorf("unknown change type %q", change.Kind)
	}
}

func (st *doctorState) scheduleState(from, to time.Time) (ScheduleState, error) {
	bands, err := ResolveBandTimes(st.timing)
	if err != nil {
		return ScheduleState{}, err
	}
	return ScheduleState{
		Week:        st.week,
		Bands:       bands,
		DurationMin: st.doctor.AppointmentDurationMin,
		Blocked:     BlockedDates(st.timeOff, from, to),
	}, nil
}

// horizon resolves a caller-supplied horizon length into concrete bounds
// starting today.
func horizon(weeks int) (time.Time, time.Time, error) {
	if weeks < 1 || weeks > MaxHorizonWeeks {
		return time.Time{}, time.Time{}, validationErrorf("horizon must be between 1 and %d weeks, got %d", MaxHorizonWeeks, weeks)
	}
	from := DateOnly(time.Now().UTC())
	return from, from.AddDate(0, 0, weeks*7-1), nil
}

// project computes the candidate set and its diff against the stored slots
// for the (possibly overlaid) state. Read-only.
func (s *Service) project(st *doctorState, from, to time.Time) ([]Candidate, []models.Slot, []Candidate, error) {
	schedState, err := st.scheduleState(from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, nil, nil, err
	}
	candidates, err := GenerateCandidates(schedState, from, to)
	if err != nil {
		return nil, nil, nil, err
	}

	// Night-wrap spill-over may land one day past the horizon end.
	last := to
	for _, c := range candidates {
		if c.Date.After(last) {
			last = c.Date
		}
	}
	var existing []models.Slot
	if err := s.db.Where("doctor_id = ? AND date BETWEEN ? AND ?", st.doctor.ID, from, last).
		Find(&existing).Error; err != nil {
		return nil, nil, nil, persistErr("load slots", err)
	}

	orphans, missing := DiffSlots(existing, candidates)
	return candidates, orphans, missing, nil
}

func (s *Service) conflictInputs(doctorID uint, from time.Time) ([]models.Appointment, []models.QueueEntry, error) {
	var appts []models.Appointment
	if err := s.db.Preload("Patient").
		Where("doctor_id = ? AND date >= ? AND status IN ?", doctorID, from,
			[]models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed}).
		Find(&appts).Error; err != nil {
		return nil, nil, persistErr("load appointments", err)
	}
	if len(appts) == 0 {
		return appts, nil, nil
	}
	ids := make([]uint, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.ID)
	}
	var queues []models.QueueEntry
	if err := s.db.Where("appointment_id IN ?", ids).Find(&queues).Error; err != nil {
		return nil, nil, persistErr("load queue entries", err)
	}
	return appts, queues, nil
}

func fingerprintKey(doctorID uint) string {
	return fmt.Sprintf("conflict:fp:%d", doctorID)
}

// CheckConflicts is the dry-run preview: it runs the generator against the
// proposed configuration without persisting anything and reports every booked
// artifact the change would invalidate. Safe to call repeatedly and
// concurrently.
func (s *Service) CheckConflicts(ctx context.Context, doctorID uint, change ChangeRequest, weeks int) (*ConflictReport, error) {
	from, to, err := horizon(weeks)
	if err != nil {
		return nil, err
	}
	st, err := s.loadState(doctorID)
	if err != nil {
		return nil, err
	}
	if err := applyOverlay(st, change); err != nil {
		return nil, err
	}
	_, orphans, _, err := s.project(st, from, to)
	if err != nil {
		return nil, err
	}
	appts, queues, err := s.conflictInputs(doctorID, from)
	if err != nil {
		return nil, err
	}
	report := BuildConflictReport(doctorID, orphans, appts, queues)

	if s.cache != nil {
		if err := s.cache.Set(ctx, fingerprintKey(doctorID), report.Fingerprint, fingerprintTTL).Err(); err != nil {
			s.log.Warn("failed to cache conflict fingerprint", zap.Uint("doctor_id", doctorID), zap.Error(err))
		}
	}
	return &report, nil
}

// ApplyChange commits a configuration change: cancel the confirmed
// cancellations, persist the new configuration, delete invalidated slots and
// insert the new candidate set, all in one transaction. Commits for the same
// doctor are serialized. If the live conflict set is not fully covered by
// cancelIDs, or the confirmed fingerprint (the caller's, falling back to the
// cached preview's) no longer matches, it fails with a ConflictsChangedError
// carrying the live report, before any mutation.
func (s *Service) ApplyChange(ctx context.Context, doctorID uint, change ChangeRequest, cancelIDs []uint, fp string, weeks int) (*ApplyResult, error) {
	mu := s.lockFor(doctorID)
	mu.Lock()
	defer mu.Unlock()

	from, to, err := horizon(weeks)
	if err != nil {
		return nil, err
	}
	st, err := s.loadState(doctorID)
	if err != nil {
		return nil, err
	}
	if err := applyOverlay(st, change); err != nil {
		return nil, err
	}
	candidates, orphans, missing, err := s.project(st, from, to)
	if err != nil {
		return nil, err
	}
	appts, queues, err := s.conflictInputs(doctorID, from)
	if err != nil {
		return nil, err
	}
	report := BuildConflictReport(doctorID, orphans, appts, queues)

	cachedFP := ""
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, fingerprintKey(doctorID)).Result(); err == nil {
			cachedFP = v
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("failed to read cached conflict fingerprint", zap.Uint("doctor_id", doctorID), zap.Error(err))
		}
	}
	if err := VerifyCommitCoverage(&report, cancelIDs, fp, cachedFP); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		wanted[c.Key()] = true
	}

	result := &ApplyResult{SlotsDeleted: len(orphans), SlotsGenerated: len(missing)}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range cancelIDs {
			var appt models.Appointment
			if err := tx.First(&appt, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationErrorf("appointment %d not found", id)
				}
				return err
			}
			if appt.DoctorID != doctorID {
				return validationErrorf("appointment %d does not belong to doctor %d", id, doctorID)
			}
			if !appt.IsActive() {
				continue
			}
			appt.CancelReason = "schedule change"
			if err := appt.UpdateStatus(tx, models.StatusCancelled); err != nil {
				return err
			}
			if err := tx.Where("appointment_id = ?", appt.ID).Delete(&models.QueueEntry{}).Error; err != nil {
				return err
			}
			// Reopen the freed slot when it survives the regeneration.
			if appt.SlotID != nil {
				var slot models.Slot
				if err := tx.First(&slot, *appt.SlotID).Error; err == nil && wanted[slotKey(slot)] {
					if err := tx.Model(&slot).Update("status", models.SlotOpen).Error; err != nil {
						return err
					}
				}
			}
			result.AppointmentsCancelled++
		}

		if err := s.persistChange(tx, st, change); err != nil {
			return err
		}

		if len(orphans) > 0 {
			ids := make([]uint, 0, len(orphans))
			for _, o := range orphans {
				ids = append(ids, o.ID)
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.Slot{}).Error; err != nil {
				return err
			}
		}
		if len(missing) > 0 {
			slots := make([]models.Slot, 0, len(missing))
			for _, c := range missing {
				slots = append(slots, models.Slot{
					HospitalID: st.doctor.HospitalID,
					DoctorID:   doctorID,
					Date:       c.Date,
					StartTime:  c.StartTime,
					EndTime:    c.EndTime,
					Status:     models.SlotOpen,
				})
			}
			if err := tx.CreateInBatches(slots, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsValidation(err) || errors.Is(err, ErrConflictsChanged) {
			return nil, err
		}
		return nil, persistErr("apply schedule change", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, fingerprintKey(doctorID)).Err(); err != nil {
			s.log.Warn("failed to drop conflict fingerprint", zap.Uint("doctor_id", doctorID), zap.Error(err))
		}
	}
	s.log.Info("schedule change applied",
		zap.Uint("doctor_id", doctorID),
		zap.String("change_type", string(change.Kind)),
		zap.Int("slots_deleted", result.SlotsDeleted),
		zap.Int("slots_generated", result.SlotsGenerated),
		zap.Int("appointments_cancelled", result.AppointmentsCancelled))
	return result, nil
}

// persistChange writes the configuration delta inside the commit transaction.
func (s *Service) persistChange(tx *gorm.DB, st *doctorState, change ChangeRequest) error {
	switch change.Kind {
	case ChangeNone:
		return nil
	case ChangeSchedule:
		for i := range st.week {
			ws := st.week[i]
			err := tx.Where("doctor_id = ? AND day_of_week = ?", ws.DoctorID, ws.DayOfWeek).
				Assign(map[string]interface{}{
					"hospital_id": ws.HospitalID,
					"is_working":  ws.IsWorking,
					"morning":     ws.Morning,
					"evening":     ws.Evening,
					"night":       ws.Night,
				}).
				FirstOrCreate(&models.WeeklyShift{}).Error
			if err != nil {
				return err
			}
		}
		if change.Timings != nil {
			timing := st.timing
			timing.DoctorID = &st.doctor.ID
			err := tx.Where("doctor_id = ?", st.doctor.ID).
				Assign(map[string]interface{}{
					"hospital_id":   timing.HospitalID,
					"morning_start": timing.MorningStart, "morning_end": timing.MorningEnd,
					"evening_start": timing.EveningStart, "evening_end": timing.EveningEnd,
					"night_start": timing.NightStart, "night_end": timing.NightEnd,
				}).
				FirstOrCreate(&models.ShiftTimingConfig{}).Error
			if err != nil {
				return err
			}
		}
		return nil
	case ChangeDuration:
		return tx.Model(&models.Doctor{}).Where("id = ?", st.doctor.ID).
			Update("appointment_duration_min", st.doctor.AppointmentDurationMin).Error
	case ChangeTimeOff:
		if change.AddTimeOff != nil {
			entry := st.timeOff[len(st.timeOff)-1]
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		if change.RemoveTimeOffID != 0 {
			if err := tx.Delete(&models.TimeOffEntry{}, change.RemoveTimeOffID).Error; err != nil {
				return err
			}
		}
		return nil
	default:
		return validationErrorf("unknown change type %q", change.Kind)
	}
}

// WeeklySchedule is the read model for the schedule editor: the seven weekly
// rows with their derived spans, the band timings and the slot duration.
type WeeklySchedule struct {
	DoctorID    uint                     `json:"doctor_id"`
	DurationMin int                      `json:"appointment_duration_min"`
	Timings     models.ShiftTimingConfig `json:"timings"`
	Days        []ScheduleDay            `json:"days"`
}

type ScheduleDay struct {
	DayOfWeek  models.DayOfWeek `json:"day_of_week"`
	IsWorking  bool             `json:"is_working"`
	Morning    bool             `json:"morning"`
	Evening    bool             `json:"evening"`
	Night      bool             `json:"night"`
	ShiftStart *string          `json:"shift_start"`
	ShiftEnd   *string          `json:"shift_end"`
}

// GetWeeklySchedule returns the persisted schedule with the flattened
// shift_start/shift_end pair derived on read.
func (s *Service) GetWeeklySchedule(doctorID uint) (*WeeklySchedule, error) {
	st, err := s.loadState(doctorID)
	if err != nil {
		return nil, err
	}
	bands, err := ResolveBandTimes(st.timing)
	if err != nil {
		return nil, err
	}
	out := &WeeklySchedule{
		DoctorID:    doctorID,
		DurationMin: st.doctor.AppointmentDurationMin,
		Timings:     st.timing,
	}
	for _, ws := range st.week {
		start, end := BuildDaySpan(ws, bands)
		out.Days = append(out.Days, ScheduleDay{
			DayOfWeek:  ws.DayOfWeek,
			IsWorking:  ws.IsWorking,
			Morning:    ws.Morning,
			Evening:    ws.Evening,
			Night:      ws.Night,
			ShiftStart: start,
			ShiftEnd:   end,
		})
	}
	return out, nil
}

// TopUpHorizons regenerates the slot horizon for every doctor, used by the
// nightly job. Doctors whose regeneration would require cancellations are
// skipped and logged; an operator has to resolve those through the conflict
// flow.
func (s *Service) TopUpHorizons(ctx context.Context, weeks int) {
	var doctors []models.Doctor
	if err := s.db.Find(&doctors).Error; err != nil {
		s.log.Error("horizon top-up: failed to list doctors", zap.Error(err))
		return
	}
	for _, d := range doctors {
		_, err := s.ApplyChange(ctx, d.ID, ChangeRequest{}, nil, "", weeks)
		switch {
		case err == nil:
		case errors.Is(err, ErrConflictsChanged):
			s.log.Warn("horizon top-up skipped, doctor has unresolved conflicts", zap.Uint("doctor_id", d.ID))
		default:
			s.log.Error("horizon top-up failed", zap.Uint("doctor_id", d.ID), zap.Error(err))
		}
	}
}
