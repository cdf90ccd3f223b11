package timecalc

import (
	"fmt"
	"strings"
	"time"
)

// DayKey identifies a local calendar date, formatted as YYYY-MM-DD.
type DayKey string

// DayKeyLayout is the canonical layout of a DayKey.
const DayKeyLayout = "2006-01-02"

// legacyLayout matches JavaScript's Date.toDateString(), which older data
// files carry as their "date" field.
const legacyLayout = "Mon Jan 02 2006"

// Clock returns the current instant. Every "now" in the application flows
// through one so tests can pin the date.
type Clock func() time.Time

// SystemClock is the wall clock in the local timezone.
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// KeyOf returns the DayKey of t in t's own location.
func KeyOf(t time.Time) DayKey {
	return DayKey(t.Format(DayKeyLayout))
}

// Today returns the DayKey of the clock's current instant.
func (c Clock) Today() DayKey {
	return KeyOf(c())
}

// String implements fmt.Stringer.
func (k DayKey) String() string {
	return string(k)
}

// Time returns midnight of the key's date in loc.
func (k DayKey) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, string(k), loc)
}

// ParseDayKey normalises s into a DayKey. Both YYYY-MM-DD and the legacy
// "Wed Jan 17 2024" form are accepted.
func ParseDayKey(s string) (DayKey, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DayKeyLayout, s); err == nil {
		return KeyOf(t), nil
	}
	if t, err := time.Parse(legacyLayout, s); err == nil {
		return KeyOf(t), nil
	}
	return "", fmt.Errorf("cannot parse day %q", s)
}

// WeekStart returns 00:00 of the Monday on or before t. Sunday belongs to
// the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return StartOfDay(t.AddDate(0, 0, -(wd - 1)))
}

// WeekDays returns midnight of each day Monday..Sunday of t's week.
func WeekDays(t time.Time) [7]time.Time {
	var days [7]time.Time
	monday := WeekStart(t)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ShortLabel formats t as "17.1", the day.month label used on charts.
func ShortLabel(t time.Time) string {
	return fmt.Sprintf("%d.%d", t.Day(), int(t.Month()))
}

// RangeLabel formats a week span as "15.1 - 21.1.2024".
func RangeLabel(from, to time.Time) string {
	return fmt.Sprintf("%s - %s.%d", ShortLabel(from), ShortLabel(to), to.Year())
}

// FormatML formats milliliters as "1.25 l" from one liter up, "250 ml" below.
func FormatML(ml int) string {
	if ml >= 1000 || ml <= -1000 {
		l := fmt.Sprintf("%.2f", float64(ml)/1000)
		l = strings.TrimRight(strings.TrimRight(l, "0"), ".")
		return l + " l"
	}
	return fmt.Sprintf("%d ml", ml)
}
