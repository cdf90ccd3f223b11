package model

import "github.com/Tiliavir/trivial-water-tracker/internal/timecalc"

const (
	// DefaultGoal is the daily goal in ml when no usable weight is known.
	DefaultGoal = 2000
	// MLPerKg is the recommended daily intake per kilogram of body weight.
	MLPerKg = 35
)

// IntakeRecord is the cumulative amount drunk on one day together with the
// goal that was active when the record was last written.
type IntakeRecord struct {
	Day    timecalc.DayKey `json:"date"`
	Amount int             `json:"amount"`
	Goal   int             `json:"goal"`
}

// DailyState is the running total for the current day, stored under the
// "water-today" key.
type DailyState struct {
	Amount int             `json:"amount"`
	Day    timecalc.DayKey `json:"date"`
}

// HistoryLog holds at most one record per day, most recently inserted first.
type HistoryLog []IntakeRecord

// Find returns the index of day's record, or -1.
func (h HistoryLog) Find(day timecalc.DayKey) int {
	for i, r := range h {
		if r.Day == day {
			return i
		}
	}
	return -1
}

// Lookup returns day's record if present.
func (h HistoryLog) Lookup(day timecalc.DayKey) (IntakeRecord, bool) {
	if i := h.Find(day); i >= 0 {
		return h[i], true
	}
	return IntakeRecord{}, false
}

// Profile is the optional user profile. Weight is in kilograms.
type Profile struct {
	Name   string `json:"name" validate:"required|maxLen:64"`
	Age    int    `json:"age" validate:"min:0|max:150"`
	Weight int    `json:"weight" validate:"min:0|max:500"`
}

// DailyGoal derives the goal in ml from the profile weight.
func DailyGoal(p *Profile) int {
	if p == nil || p.Weight <= 0 {
		return DefaultGoal
	}
	return p.Weight * MLPerKg
}
