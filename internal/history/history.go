// Package history maintains the capped per-day intake log and derives the
// weekly and calendar views from it.
package history

import (
	"fmt"
	"time"

	"github.com/Tiliavir/trivial-water-tracker/internal/model"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

// Policy holds the retention and categorisation constants.
type Policy struct {
	// RetentionCap is the maximum number of days kept.
	RetentionCap int
	// NearThreshold is the amount/goal ratio from which a day counts as near.
	NearThreshold float64
	// CompleteThreshold is the ratio from which a day counts as complete.
	CompleteThreshold float64
}

// DefaultPolicy keeps 30 days, with near at 70% and complete at 100%.
func DefaultPolicy() Policy {
	return Policy{
		RetentionCap:      30,
		NearThreshold:     0.70,
		CompleteThreshold: 1.0,
	}
}

// Validate reports an inconsistent policy.
func (p Policy) Validate() error {
	if p.RetentionCap < 1 {
		return fmt.Errorf("retention cap must be at least 1, got %d", p.RetentionCap)
	}
	if p.NearThreshold < 0 || p.NearThreshold > p.CompleteThreshold {
		return fmt.Errorf("near threshold %.2f must be between 0 and complete threshold %.2f", p.NearThreshold, p.CompleteThreshold)
	}
	return nil
}

// Category classifies a day on the calendar.
type Category string

const (
	CategoryComplete Category = "complete"
	CategoryNear     Category = "near"
	CategoryLow      Category = "low"
)

// Store applies a Policy to history logs. It holds no log itself: every
// method takes the current log and returns a new one.
type Store struct {
	policy Policy
}

// NewStore creates a Store. A zero cap falls back to the default policy.
func NewStore(p Policy) *Store {
	if p.RetentionCap <= 0 {
		p = DefaultPolicy()
	}
	return &Store{policy: p}
}

// Policy returns the active policy.
func (s *Store) Policy() Policy {
	return s.policy
}

// Upsert records today's amount and goal. An existing record for today is
// replaced where it stands; otherwise a new record goes to the front. The
// result is truncated to the retention cap, dropping the oldest inserts.
// log is not modified.
func (s *Store) Upsert(log model.HistoryLog, today timecalc.DayKey, amount, goal int) model.HistoryLog {
	rec := model.IntakeRecord{Day: today, Amount: amount, Goal: goal}

	var out model.HistoryLog
	if i := log.Find(today); i >= 0 {
		out = make(model.HistoryLog, len(log))
		copy(out, log)
		out[i] = rec
	} else {
		out = make(model.HistoryLog, 0, len(log)+1)
		out = append(out, rec)
		out = append(out, log...)
	}

	if len(out) > s.policy.RetentionCap {
		out = out[:s.policy.RetentionCap]
	}
	return out
}

// Clear returns an empty log.
func (s *Store) Clear() model.HistoryLog {
	return model.HistoryLog{}
}

// Category classifies amount against goal. A non-positive goal is always low.
func (s *Store) Category(amount, goal int) Category {
	if goal <= 0 {
		return CategoryLow
	}
	ratio := float64(amount) / float64(goal)
	switch {
	case ratio >= s.policy.CompleteThreshold:
		return CategoryComplete
	case ratio >= s.policy.NearThreshold:
		return CategoryNear
	default:
		return CategoryLow
	}
}

// MarkedDates maps every recorded day to its category.
func (s *Store) MarkedDates(log model.HistoryLog) map[timecalc.DayKey]Category {
	marked := make(map[timecalc.DayKey]Category, len(log))
	for _, r := range log {
		marked[r.Day] = s.Category(r.Amount, r.Goal)
	}
	return marked
}

// WeekView builds the Monday..Sunday week containing anchor. Days without a
// record get amount 0 and fallbackGoal, so they read as zero progress
// against the current goal.
func (s *Store) WeekView(log model.HistoryLog, anchor time.Time, fallbackGoal int) Week {
	var w Week
	for i, d := range timecalc.WeekDays(anchor) {
		key := timecalc.KeyOf(d)
		e := DayEntry{Date: d, Day: key, Goal: fallbackGoal}
		if r, ok := log.Lookup(key); ok {
			e.Amount = r.Amount
			e.Goal = r.Goal
			e.Recorded = true
		}
		e.Category = s.Category(e.Amount, e.Goal)
		w.Days[i] = e
	}
	return w
}
