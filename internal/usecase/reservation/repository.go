package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/models"
)

// Repository is the persistence collaborator the Reservation Engine reads
// and writes through. A single admission attempt runs entirely against the
// Repository handed to it by Transact, which is scoped to one serializable
// transaction (or its per-store-lock fallback, §5).
type Repository interface {
	GetStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	GetTreatment(ctx context.Context, storeID, treatmentID uuid.UUID) (*models.Treatment, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetTimeslot(ctx context.Context, timeslotID uuid.UUID) (*models.Timeslot, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)

	// FindCoveringTimeslot returns the timeslot per §4.5 rule 1: active,
	// covering [start,end), with spare capacity, whose whitelist (if any)
	// admits treatmentID and staffID. Ties broken by earliest start.
	FindCoveringTimeslot(ctx context.Context, storeID, treatmentID uuid.UUID, staffID *uuid.UUID, start, end time.Time) (*models.Timeslot, error)

	// CountOverlappingTreatmentBookings counts non-terminal bookings for
	// treatmentID overlapping [start,end), excluding excludeBookingID.
	CountOverlappingTreatmentBookings(ctx context.Context, treatmentID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int, error)

	// CountOverlappingStaffBookings counts non-terminal bookings for staffID
	// overlapping [start,end), excluding excludeBookingID.
	CountOverlappingStaffBookings(ctx context.Context, staffID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int, error)

	// RequiredResourcesFor returns the resources a treatment requires.
	RequiredResourcesFor(ctx context.Context, treatmentID uuid.UUID) ([]models.Resource, error)

	// CountOverlappingResourceBookings counts non-terminal bookings whose
	// treatment requires resourceID and whose interval overlaps [start,end).
	CountOverlappingResourceBookings(ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int, error)

	// CountStoreBookingsOnDate counts non-terminal bookings for storeID on
	// the given local calendar date.
	CountStoreBookingsOnDate(ctx context.Context, storeID uuid.UUID, localDate time.Time, tz string, excludeBookingID *uuid.UUID) (int, error)

	// CountStoreOverlappingBookings counts non-terminal bookings for storeID
	// overlapping [start,end).
	CountStoreOverlappingBookings(ctx context.Context, storeID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error

	IncrementTimeslot(ctx context.Context, timeslotID uuid.UUID) error
	DecrementTimeslot(ctx context.Context, timeslotID uuid.UUID) error
}

// UnitOfWork runs fn inside one admission-transaction boundary scoped to
// storeID: a database transaction plus (on a backend without true
// serializable isolation) the §5 per-store advisory lock. Implementations
// must roll back on any error fn returns.
type UnitOfWork interface {
	Transact(ctx context.Context, storeID uuid.UUID, fn func(ctx context.Context, repo Repository) error) error

	// Snapshot runs fn against a plain, unlocked read of current state — for
	// the §4.5 "cheap, outside the transaction" preconditions, which need no
	// isolation guarantee since the admission transaction re-validates
	// everything that matters.
	Snapshot(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
