// Package store holds the pure operating-hours logic of the Store Registry
// component (§4.1): whether a store is open on a given local calendar date,
// and what its schedule is for that date. It never touches the database.
package store

import (
	"time"

	"github.com/venora-platform/booking-engine/internal/models"
	"github.com/venora-platform/booking-engine/internal/timezone"
)

// ScheduleFor returns the store's DaySchedule for t, evaluated in the store's
// own timezone rather than the caller's.
func ScheduleFor(s *models.Store, t time.Time) models.DaySchedule {
	day := timezone.DayOfWeek(t, s.Timezone)
	return s.GetOperatingHours()[day]
}

// IsOpenOnDate reports whether the store has any open hours on t's local
// calendar date.
func IsOpenOnDate(s *models.Store, t time.Time) bool {
	sched := ScheduleFor(s, t)
	return !sched.Closed && sched.Open != "" && sched.Close != ""
}

// WindowFor resolves the store's open/close instants for t's local calendar
// date. ok is false when the store is closed that day or the schedule is
// malformed.
func WindowFor(s *models.Store, t time.Time) (open, close time.Time, ok bool) {
	sched := ScheduleFor(s, t)
	if sched.Closed || sched.Open == "" || sched.Close == "" {
		return time.Time{}, time.Time{}, false
	}
	loc := timezone.Location(s.Timezone)
	day := timezone.StartOfDay(t, s.Timezone)

	openT, err := time.ParseInLocation("15:04", sched.Open, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	closeT, err := time.ParseInLocation("15:04", sched.Close, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	open = time.Date(day.Year(), day.Month(), day.Day(), openT.Hour(), openT.Minute(), 0, 0, loc)
	close = time.Date(day.Year(), day.Month(), day.Day(), closeT.Hour(), closeT.Minute(), 0, 0, loc)
	if !close.After(open) {
		return time.Time{}, time.Time{}, false
	}
	return open, close, true
}

// IsOpenNow reports whether instant t falls within the store's open window
// for its own local calendar date, inclusive of both endpoints.
func IsOpenNow(s *models.Store, t time.Time) bool {
	open, close, ok := WindowFor(s, t)
	if !ok {
		return false
	}
	return !t.Before(open) && !t.After(close)
}

// WithinAdvanceWindow reports whether t is no further than the store's
// configured max-advance-booking horizon from now.
func WithinAdvanceWindow(s *models.Store, now, t time.Time) bool {
	if s.MaxAdvanceBookingDays <= 0 {
		return true
	}
	limit := now.Add(time.Duration(s.MaxAdvanceBookingDays) * 24 * time.Hour)
	return !t.After(limit)
}

// PastCancellationDeadline reports whether now is later than the store's
// cancellation deadline before bookingStart, meaning cancellation is no
// longer allowed without staff override. A booking exactly at the deadline
// can still be cancelled.
func PastCancellationDeadline(s *models.Store, now, bookingStart time.Time) bool {
	if s.CancellationDeadlineH <= 0 {
		return false
	}
	deadline := bookingStart.Add(-time.Duration(s.CancellationDeadlineH) * time.Hour)
	return now.After(deadline)
}
