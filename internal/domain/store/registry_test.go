package store

import (
	"testing"
	"time"

	"github.com/venora-platform/booking-engine/internal/models"
)

func newStore(t *testing.T, tz string, hours models.OperatingHours) *models.Store {
	t.Helper()
	s := &models.Store{Timezone: tz, MaxAdvanceBookingDays: 90, CancellationDeadlineH: 24}
	if err := s.SetOperatingHours(hours); err != nil {
		t.Fatalf("SetOperatingHours: %v", err)
	}
	return s
}

func TestIsOpenOnDate(t *testing.T) {
	// 2026-01-12 is a Monday.
	hours := models.OperatingHours{
		time.Monday: {Open: "09:00", Close: "17:00"},
		time.Sunday: {Closed: true},
	}
	s := newStore(t, "UTC", hours)

	monday := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	if !IsOpenOnDate(s, monday) {
		t.Error("expected store to be open on Monday")
	}

	sunday := time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)
	if IsOpenOnDate(s, sunday) {
		t.Error("expected store to be closed on Sunday")
	}

	unscheduled := time.Date(2026, 1, 13, 8, 0, 0, 0, time.UTC) // Tuesday, no entry
	if IsOpenOnDate(s, unscheduled) {
		t.Error("expected a day with no schedule entry to be treated as closed")
	}
}

func TestWindowFor(t *testing.T) {
	hours := models.OperatingHours{
		time.Monday: {Open: "09:00", Close: "17:00"},
	}
	s := newStore(t, "America/New_York", hours)

	monday := time.Date(2026, 1, 12, 15, 0, 0, 0, time.UTC)
	open, close, ok := WindowFor(s, monday)
	if !ok {
		t.Fatal("expected an open window on Monday")
	}
	if open.Hour() != 9 || close.Hour() != 17 {
		t.Errorf("open/close = %v/%v, want 09:00/17:00 local", open, close)
	}
	loc := open.Location()
	if loc.String() != "America/New_York" {
		t.Errorf("open location = %s, want America/New_York", loc.String())
	}
}

// TestWindowForAcrossDSTSpringForward checks that a 09:00-17:00 window on
// the US spring-forward date still spans exactly 8 real hours: both
// endpoints fall after the 2am transition, so the missing clock hour
// doesn't shrink the window.
func TestWindowForAcrossDSTSpringForward(t *testing.T) {
	s := newStore(t, "America/New_York", models.OperatingHours{
		time.Sunday: {Open: "09:00", Close: "17:00"},
	})

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	transitionDay := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)

	open, close, ok := WindowFor(s, transitionDay)
	if !ok {
		t.Fatal("expected an open window on the transition day")
	}
	if got := close.Sub(open); got != 8*time.Hour {
		t.Errorf("window span = %v, want 8h", got)
	}
}

func TestWindowForClosedDay(t *testing.T) {
	s := newStore(t, "UTC", models.OperatingHours{time.Monday: {Closed: true}})
	monday := time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC)
	if _, _, ok := WindowFor(s, monday); ok {
		t.Error("expected a closed day to yield no window")
	}
}

func TestIsOpenNow(t *testing.T) {
	hours := models.OperatingHours{
		time.Monday: {Open: "09:00", Close: "17:00"},
	}
	s := newStore(t, "UTC", hours)

	inside := time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC)
	if !IsOpenNow(s, inside) {
		t.Error("expected noon on an open Monday to be within the open window")
	}

	beforeOpen := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	if IsOpenNow(s, beforeOpen) {
		t.Error("expected 08:00 to be before the 09:00 open")
	}

	atClose := time.Date(2026, 1, 12, 17, 0, 0, 0, time.UTC)
	if !IsOpenNow(s, atClose) {
		t.Error("expected the close instant itself to be included")
	}

	afterClose := time.Date(2026, 1, 12, 17, 1, 0, 0, time.UTC)
	if IsOpenNow(s, afterClose) {
		t.Error("expected a minute past close to be outside the open window")
	}
}

func TestWithinAdvanceWindow(t *testing.T) {
	s := &models.Store{MaxAdvanceBookingDays: 30}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	within := now.AddDate(0, 0, 29)
	if !WithinAdvanceWindow(s, now, within) {
		t.Error("expected a booking 29 days out to be within a 30-day window")
	}

	beyond := now.AddDate(0, 0, 31)
	if WithinAdvanceWindow(s, now, beyond) {
		t.Error("expected a booking 31 days out to exceed a 30-day window")
	}

	unlimited := &models.Store{MaxAdvanceBookingDays: 0}
	if !WithinAdvanceWindow(unlimited, now, now.AddDate(1, 0, 0)) {
		t.Error("expected a zero max-advance setting to mean no limit")
	}
}

func TestPastCancellationDeadline(t *testing.T) {
	s := &models.Store{CancellationDeadlineH: 24}
	bookingStart := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	early := bookingStart.Add(-48 * time.Hour)
	if PastCancellationDeadline(s, early, bookingStart) {
		t.Error("expected 48h before start to be well within the cancellation window")
	}

	late := bookingStart.Add(-time.Hour)
	if !PastCancellationDeadline(s, late, bookingStart) {
		t.Error("expected 1h before start to be past a 24h cancellation deadline")
	}

	noDeadline := &models.Store{CancellationDeadlineH: 0}
	if PastCancellationDeadline(noDeadline, late, bookingStart) {
		t.Error("expected a zero deadline setting to never block cancellation")
	}
}
