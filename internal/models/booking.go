package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

// IsTerminal reports whether the status can no longer transition (§3, §4.4).
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// BookingSource records which entry point created the booking (admin console vs.
// the public storefront vs. a direct API caller) for audit purposes only; it has no
// bearing on admission semantics.
type BookingSource string

const (
	SourceAdmin  BookingSource = "admin"
	SourcePublic BookingSource = "public"
	SourceAPI    BookingSource = "api"
)

// Booking is a customer's commitment against a treatment at a specific instant.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	StoreID    uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_store_start" json:"store_id"`

	TreatmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"treatment_id"`

	StaffID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_bookings_staff_start,where:status <> 'cancelled' AND status <> 'no_show'" json:"staff_id,omitempty"`

	TimeslotID *uuid.UUID `gorm:"type:uuid;index" json:"timeslot_id,omitempty"`

	BookingDateTime time.Time `gorm:"not null;index:idx_bookings_store_start;uniqueIndex:idx_bookings_staff_start" json:"booking_date_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`

	Status BookingStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	Price Money `gorm:"embedded" json:"price"`

	Notes             string     `gorm:"size:500" json:"notes"`
	CancellationReason string    `gorm:"size:255" json:"cancellation_reason,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`

	ReminderSent bool `gorm:"default:false" json:"reminder_sent"`

	Source BookingSource `gorm:"size:10;default:'api'" json:"source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EndTime is the exclusive end of the booked interval, derived from the snapshotted
// duration (§9: treatment-duration edits never retroactively alter existing bookings).
func (b Booking) EndTime() time.Time {
	return b.BookingDateTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Overlaps reports whether b's interval overlaps [start,end) under the half-open rule
// of §4.5 ("Overlap predicate"): a < d AND c < b, touching intervals do not overlap.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.BookingDateTime.Before(end) && start.Before(b.EndTime())
}
