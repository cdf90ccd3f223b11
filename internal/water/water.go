// Package water is the application service behind every twt command. Each
// operation reads the full state, computes with the pure tracker and history
// packages, and writes the full state back.
//
// Read failures never reach the caller: the safe default is substituted and
// the failure is logged. Write failures are logged, counted, and returned on
// the outcome as WriteErr; the computed result is kept either way.
package water

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/Tiliavir/trivial-water-tracker/internal/history"
	"github.com/Tiliavir/trivial-water-tracker/internal/metrics"
	"github.com/Tiliavir/trivial-water-tracker/internal/model"
	"github.com/Tiliavir/trivial-water-tracker/internal/storage"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-water-tracker/internal/tracker"
)

// ErrInvalidProfile wraps profile validation failures.
var ErrInvalidProfile = errors.New("invalid profile")

// Service implements the water tracker operations.
type Service struct {
	repo    *storage.Repository
	history *history.Store
	clock   timecalc.Clock
	logger  zerolog.Logger
	metrics metrics.Recorder
}

// NewService wires a Service. A nil clock means the system clock.
func NewService(repo *storage.Repository, hist *history.Store, clock timecalc.Clock, logger zerolog.Logger, rec metrics.Recorder) *Service {
	if clock == nil {
		clock = timecalc.SystemClock
	}
	return &Service{repo: repo, history: hist, clock: clock, logger: logger, metrics: rec}
}

// Now returns the service clock's current instant.
func (s *Service) Now() time.Time { return s.clock() }

// Snapshot is today's progress as shown by the status gauge.
type Snapshot struct {
	Day     timecalc.DayKey
	Amount  int
	Goal    int
	Percent int
	Gauge   float64
	Status  tracker.Status
	Profile *model.Profile
}

func newSnapshot(day timecalc.DayKey, amount int, profile *model.Profile) Snapshot {
	goal := model.DailyGoal(profile)
	return Snapshot{
		Day:     day,
		Amount:  amount,
		Goal:    goal,
		Percent: tracker.Percent(amount, goal),
		Gauge:   tracker.Gauge(amount, goal),
		Status:  tracker.StatusOf(amount, goal),
		Profile: profile,
	}
}

// Today returns today's running total against the current goal.
func (s *Service) Today(ctx context.Context) Snapshot {
	today := s.clock.Today()
	snap := newSnapshot(today, tracker.Load(s.loadToday(ctx), today), s.loadProfile(ctx))
	s.metrics.SetToday(snap.Amount, snap.Goal)
	return snap
}

// AddOutcome is the result of AddWater.
type AddOutcome struct {
	Snapshot
	Added int
	// GoalReached is set on the add that crosses the goal.
	GoalReached bool
	// WriteErr reports a failed save; the new total is still returned.
	WriteErr error
}

// AddWater adds delta ml to today's total and writes the day's record
// through to the history log. Only a non-positive delta is an error.
func (s *Service) AddWater(ctx context.Context, delta int) (AddOutcome, error) {
	before := s.Today(ctx)
	res, err := tracker.Add(before.Amount, delta, before.Goal)
	if err != nil {
		return AddOutcome{Snapshot: before}, err
	}

	out := AddOutcome{
		Snapshot:    newSnapshot(before.Day, res.Amount, before.Profile),
		Added:       delta,
		GoalReached: res.GoalReached,
	}

	var errs []error
	if err := s.repo.SaveToday(ctx, model.DailyState{Amount: res.Amount, Day: before.Day}); err != nil {
		errs = append(errs, s.writeFailed(storage.KeyToday, err))
	}
	log := s.history.Upsert(s.loadHistory(ctx), before.Day, res.Amount, before.Goal)
	if err := s.repo.SaveHistory(ctx, log); err != nil {
		errs = append(errs, s.writeFailed(storage.KeyHistory, err))
	}
	out.WriteErr = errors.Join(errs...)

	s.metrics.AddWater(delta)
	s.metrics.SetToday(out.Amount, out.Goal)
	s.metrics.SetHistoryRecords(len(log))
	if res.GoalReached {
		s.metrics.IncGoalReached()
	}

	s.logger.Info().
		Str("day", before.Day.String()).
		Int("added", delta).
		Int("amount", out.Amount).
		Int("goal", out.Goal).
		Bool("goal_reached", res.GoalReached).
		Msg("water added")
	return out, nil
}

// ResetOutcome is the result of Reset.
type ResetOutcome struct {
	Snapshot
	Decision tracker.ResetDecision
	// Reset is false when confirmation was required but not given.
	Reset    bool
	WriteErr error
}

// ResetDecision reports whether resetting today needs confirmation, without
// changing anything.
func (s *Service) ResetDecision(ctx context.Context) (Snapshot, tracker.ResetDecision) {
	snap := s.Today(ctx)
	return snap, tracker.Reset(snap.Amount, snap.Goal)
}

// Reset zeroes today's total. Below the goal it only does so when confirmed.
// The history record for today is left as it is.
func (s *Service) Reset(ctx context.Context, confirmed bool) ResetOutcome {
	snap, decision := s.ResetDecision(ctx)
	amount, reset := decision.Apply(confirmed)
	out := ResetOutcome{
		Snapshot: newSnapshot(snap.Day, amount, snap.Profile),
		Decision: decision,
		Reset:    reset,
	}
	if !reset {
		return out
	}

	if err := s.repo.SaveToday(ctx, model.DailyState{Amount: 0, Day: snap.Day}); err != nil {
		out.WriteErr = s.writeFailed(storage.KeyToday, err)
	}
	s.metrics.SetToday(0, snap.Goal)
	s.logger.Info().Str("day", snap.Day.String()).Int("previous", snap.Amount).Msg("day reset")
	return out
}

// Week returns the Monday-to-Sunday view containing anchor. Days without a
// record use the current goal.
func (s *Service) Week(ctx context.Context, anchor time.Time) history.Week {
	return s.history.WeekView(s.History(ctx), anchor, model.DailyGoal(s.loadProfile(ctx)))
}

// Calendar returns the category of every recorded day.
func (s *Service) Calendar(ctx context.Context) map[timecalc.DayKey]history.Category {
	return s.history.MarkedDates(s.History(ctx))
}

// History returns the log, most recently inserted day first.
func (s *Service) History(ctx context.Context) model.HistoryLog {
	log := s.loadHistory(ctx)
	s.metrics.SetHistoryRecords(len(log))
	return log
}

// HistoryStore returns the policy-bound history operations.
func (s *Service) HistoryStore() *history.Store { return s.history }

// Category classifies one day's amount against its goal.
func (s *Service) Category(rec model.IntakeRecord) history.Category {
	return s.history.Category(rec.Amount, rec.Goal)
}

// ClearHistory removes every history record. Today's running total stays.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.repo.ClearHistory(ctx); err != nil {
		return s.writeFailed(storage.KeyHistory, err)
	}
	s.metrics.SetHistoryRecords(len(s.history.Clear()))
	s.logger.Info().Msg("history cleared")
	return nil
}

// Profile returns the saved profile, nil before the first save.
func (s *Service) Profile(ctx context.Context) *model.Profile {
	return s.loadProfile(ctx)
}

// ProfileInput is the raw form input. Age and weight are parsed leniently:
// anything that is not a whole number becomes 0.
type ProfileInput struct {
	Name   string
	Age    string
	Weight string
}

// Profile converts the input.
func (in ProfileInput) Profile() model.Profile {
	return model.Profile{
		Name:   strings.TrimSpace(in.Name),
		Age:    lenientInt(in.Age),
		Weight: lenientInt(in.Weight),
	}
}

// lenientInt reads s as a non-negative decimal integer. Leading zeros are
// dropped before conversion so "070" is 70, not octal; any prefix or sign
// makes the value 0.
func lenientInt(s string) int {
	digits := strings.TrimLeft(strings.TrimSpace(s), "0")
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0
	}
	n, err := cast.ToIntE(digits)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ProfileOutcome is the result of SaveProfile.
type ProfileOutcome struct {
	Profile model.Profile
	Goal    int
	// WriteErr reports a failed save.
	WriteErr error
}

// SaveProfile validates and stores the profile. Validation failures wrap
// ErrInvalidProfile and nothing is written.
func (s *Service) SaveProfile(ctx context.Context, in ProfileInput) (ProfileOutcome, error) {
	p := in.Profile()
	v := validate.Struct(&p)
	if !v.Validate() {
		return ProfileOutcome{}, fmt.Errorf("%w: %s", ErrInvalidProfile, v.Errors.One())
	}

	out := ProfileOutcome{Profile: p, Goal: model.DailyGoal(&p)}
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		out.WriteErr = s.writeFailed(storage.KeyProfile, err)
		return out, nil
	}
	s.logger.Info().Str("name", p.Name).Int("weight", p.Weight).Int("goal", out.Goal).Msg("profile saved")
	return out, nil
}

func (s *Service) loadToday(ctx context.Context) *model.DailyState {
	state, err := s.repo.LoadToday(ctx)
	if err != nil {
		s.readFailed(storage.KeyToday, err)
		return nil
	}
	return state
}

func (s *Service) loadProfile(ctx context.Context) *model.Profile {
	p, err := s.repo.LoadProfile(ctx)
	if err != nil {
		s.readFailed(storage.KeyProfile, err)
		return nil
	}
	return p
}

func (s *Service) loadHistory(ctx context.Context) model.HistoryLog {
	log, err := s.repo.LoadHistory(ctx)
	if err != nil {
		s.readFailed(storage.KeyHistory, err)
		return model.HistoryLog{}
	}
	return log
}

func (s *Service) readFailed(key string, err error) {
	s.metrics.IncStorageErrors("read", key)
	s.logger.Warn().Err(err).Str("key", key).Msg("read failed, using default")
}

func (s *Service) writeFailed(key string, err error) error {
	s.metrics.IncStorageErrors("write", key)
	s.logger.Error().Err(err).Str("key", key).Msg("write failed")
	return err
}
