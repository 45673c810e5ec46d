// Package booking holds the pure booking lifecycle state machine of §4.4. It
// never touches the database; callers persist the transitions it computes.
package booking

import (
	"time"

	"github.com/venora-platform/booking-engine/internal/models"
)

// transitions enumerates every edge of the §4.4 state graph.
var transitions = map[models.BookingStatus]map[models.BookingStatus]bool{
	models.BookingPending: {
		models.BookingConfirmed: true,
		models.BookingCancelled: true,
		models.BookingNoShow:    true,
	},
	models.BookingConfirmed: {
		models.BookingInProgress: true,
		models.BookingCancelled:  true,
		models.BookingNoShow:     true,
	},
	models.BookingInProgress: {
		models.BookingCompleted: true,
		models.BookingCancelled: true,
	},
}

// CanTransition reports whether from → to is an edge of the state graph.
func CanTransition(from, to models.BookingStatus) bool {
	return transitions[from][to]
}

// InitialStatus returns the status a new booking should be admitted with,
// per the store's requireApproval setting (§4.4).
func InitialStatus(requireApproval bool) models.BookingStatus {
	if requireApproval {
		return models.BookingPending
	}
	return models.BookingConfirmed
}

// CanModify reports whether a booking's fields (other than status/notes) may
// still be changed.
func CanModify(b *models.Booking, now time.Time) bool {
	if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
		return false
	}
	return b.BookingDateTime.After(now)
}

// CanCancel reports whether a booking may still be cancelled, given the
// store's cancellation deadline.
func CanCancel(b *models.Booking, now time.Time, cancellationDeadlineHours int) bool {
	if b.Status.IsTerminal() {
		return false
	}
	deadline := time.Duration(cancellationDeadlineHours) * time.Hour
	return b.BookingDateTime.Sub(now) >= deadline
}

// CanApprove reports whether a pending booking may be approved into confirmed.
func CanApprove(b *models.Booking) bool {
	return CanTransition(b.Status, models.BookingConfirmed)
}

// CanCheckIn reports whether a confirmed booking may be checked in as
// in_progress.
func CanCheckIn(b *models.Booking) bool {
	return CanTransition(b.Status, models.BookingInProgress)
}

// ApplyApproval mutates b in place to record a pending→confirmed transition.
func ApplyApproval(b *models.Booking) {
	b.Status = models.BookingConfirmed
}

// ApplyCheckIn mutates b in place to record a confirmed→in_progress transition.
func ApplyCheckIn(b *models.Booking) {
	b.Status = models.BookingInProgress
}

// CanMarkNoShow reports whether a booking may be marked no_show: it must be
// pending or confirmed, and its start time must already have passed.
func CanMarkNoShow(b *models.Booking, now time.Time) bool {
	if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
		return false
	}
	return !b.BookingDateTime.After(now)
}

// ApplyCompletion mutates b in place to record a completed transition.
func ApplyCompletion(b *models.Booking, now time.Time) {
	b.Status = models.BookingCompleted
	b.CompletedAt = &now
}

// ApplyCancellation mutates b in place to record a cancelled transition.
// Idempotent: calling it twice leaves CancelledAt at its first value.
func ApplyCancellation(b *models.Booking, now time.Time, reason string) {
	if b.Status == models.BookingCancelled {
		return
	}
	b.Status = models.BookingCancelled
	b.CancelledAt = &now
	b.CancellationReason = reason
}

// ApplyNoShow mutates b in place to record a no_show transition.
func ApplyNoShow(b *models.Booking) {
	b.Status = models.BookingNoShow
}
