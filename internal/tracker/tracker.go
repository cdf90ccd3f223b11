// Package tracker holds today's running water total: the day-rollover rule,
// adding water with goal-crossing detection, and resetting.
//
// All functions are pure. Callers load state from storage, pass it in, and
// persist what comes back.
package tracker

import (
	"errors"
	"math"

	"github.com/Tiliavir/trivial-water-tracker/internal/model"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

// GaugeCap is the highest percentage a progress gauge shows.
const GaugeCap = 150

// ErrInvalidDelta is returned when a non-positive amount is added.
var ErrInvalidDelta = errors.New("amount must be positive")

// Load returns the persisted amount if it belongs to today, 0 otherwise.
// A previous day's total is dropped lazily here; nothing resets at midnight.
func Load(persisted *model.DailyState, today timecalc.DayKey) int {
	if persisted == nil || persisted.Day != today || persisted.Amount < 0 {
		return 0
	}
	return persisted.Amount
}

// AddResult is the outcome of Add.
type AddResult struct {
	Amount int
	// GoalReached is set only on the add that moves the total from below
	// the goal to at or above it.
	GoalReached bool
}

// Add adds delta ml to current.
func Add(current, delta, goal int) (AddResult, error) {
	if delta <= 0 {
		return AddResult{Amount: current}, ErrInvalidDelta
	}
	next := current + delta
	return AddResult{
		Amount:      next,
		GoalReached: current < goal && next >= goal,
	}, nil
}

// ResetDecision describes what a reset request does.
type ResetDecision struct {
	// ConfirmationRequired is set when today's goal has not been met yet.
	ConfirmationRequired bool
	// Percent is round(current/goal*100), shown in the confirmation prompt.
	Percent int
	current int
}

// Reset decides whether current can be zeroed right away.
func Reset(current, goal int) ResetDecision {
	return ResetDecision{
		ConfirmationRequired: current < goal,
		Percent:              Percent(current, goal),
		current:              current,
	}
}

// Apply returns the amount after the reset. An unconfirmed reset that
// required confirmation leaves the amount unchanged.
func (d ResetDecision) Apply(confirmed bool) (amount int, reset bool) {
	if d.ConfirmationRequired && !confirmed {
		return d.current, false
	}
	return 0, true
}

// Percent returns current as a rounded percentage of goal. A non-positive
// goal yields 0.
func Percent(current, goal int) int {
	if goal <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(goal) * 100))
}

// Gauge returns the unrounded percentage capped at GaugeCap.
func Gauge(current, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Min(float64(current)/float64(goal)*100, GaugeCap)
}

// Status is the coarse progress tier shown next to the gauge.
type Status string

const (
	StatusBehind   Status = "behind"
	StatusOnTrack  Status = "on-track"
	StatusDone     Status = "done"
	StatusOverdone Status = "overdone"
)

// StatusOf buckets progress: under 50%, under 100%, up to 120%, above.
func StatusOf(current, goal int) Status {
	if goal <= 0 {
		return StatusBehind
	}
	pct := float64(current) / float64(goal) * 100
	switch {
	case pct < 50:
		return StatusBehind
	case pct < 100:
		return StatusOnTrack
	case pct <= 120:
		return StatusDone
	default:
		return StatusOverdone
	}
}

// Message is a short line for each status.
func (s Status) Message() string {
	switch s {
	case StatusOnTrack:
		return "Good progress, keep going"
	case StatusDone:
		return "Daily goal reached"
	case StatusOverdone:
		return "Well above the goal, no need to force it"
	default:
		return "Time for a glass of water"
	}
}
