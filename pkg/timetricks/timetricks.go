// Package timetricks holds calendar-day helpers that work on wall clocks
// rather than elapsed durations, so they stay correct on daylight saving
// transition days.
package timetricks

import (
	"time"
)

const (
	dayFormat = "20060102"
)

// SameDay reports whether t and t2 fall on the same calendar date, each read
// in its own location.
func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(dayFormat) == t2.Format(dayFormat)
}

// TrimClock returns midnight at the start of t's calendar day in t's location.
func TrimClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Clock returns the wall clock reading of t as a duration since midnight.
// It is not the elapsed time since midnight on days with a DST transition.
func Clock(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}

// Redate moves the wall clock of clock onto the calendar date of day, in
// day's location. Wall clocks that do not exist on that date (spring forward)
// are normalized the way time.Date does.
func Redate(clock time.Time, day time.Time) time.Time {
	y, m, d := day.Date()
	h, min, s := clock.Clock()
	return time.Date(y, m, d, h, min, s, clock.Nanosecond(), day.Location())
}

// AtClock returns the instant on day's calendar date whose wall clock reads
// tod.
func AtClock(day time.Time, tod time.Duration) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, int(tod), day.Location())
}

// Tomorrow returns midnight at the start of the calendar day after t.
func Tomorrow(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// UniqueDay returns a string representation of t that is unique by the day.
// For instance, two seperate times on the same calendar day return identical
// strings.
func UniqueDay(t time.Time) string {
	return t.Format(dayFormat)
}
