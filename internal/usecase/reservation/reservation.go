// Package reservation implements the Reservation Engine of §4.5: the
// transactional heart of the system. Every admission decision runs the same
// five independent quota checks inside one transaction boundary and either
// writes the booking or aborts with no side effects.
package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	domstore "github.com/venora-platform/booking-engine/internal/domain/store"
	"github.com/venora-platform/booking-engine/internal/domain/booking"
	"github.com/venora-platform/booking-engine/internal/events"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/models"
)

// Engine is the Reservation Engine. It owns no database handle directly;
// every operation borrows one scoped Repository from a UnitOfWork for the
// duration of a single admission transaction.
type Engine struct {
	uow     UnitOfWork
	publish events.Publisher
	now     func() time.Time
}

func New(uow UnitOfWork, publish events.Publisher) *Engine {
	return &Engine{uow: uow, publish: publish, now: time.Now}
}

// CreateInput is the admission request of §4.5.
type CreateInput struct {
	CustomerID      uuid.UUID
	StoreID         uuid.UUID
	TreatmentID     uuid.UUID
	StaffID         *uuid.UUID
	BookingDateTime time.Time
	Notes           string
	Source          models.BookingSource
}

// Create runs the full §4.5 admission algorithm and, on success, persists
// the booking and enqueues a booking.created event.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	now := e.now()

	if err := e.checkPreconditions(ctx, in, now); err != nil {
		return nil, err
	}

	var created *models.Booking
	err := e.uow.Transact(ctx, in.StoreID, func(ctx context.Context, repo Repository) error {
		store, treatment, err := loadStoreAndTreatment(ctx, repo, in.StoreID, in.TreatmentID)
		if err != nil {
			return err
		}

		end := in.BookingDateTime.Add(treatment.Duration())

		if in.StaffID != nil {
			staff, err := repo.GetUser(ctx, *in.StaffID)
			if err != nil || !staff.IsStaffOf(in.StoreID) || !staff.IsActive {
				return errInvalidStaff()
			}
			if isCatalogIneligible(treatment, staff) {
				return errInvalidStaff()
			}
		}

		slot, err := e.runAdmissionChecks(ctx, repo, store, treatment, in.StaffID, in.BookingDateTime, end, nil)
		if err != nil {
			return err
		}

		b := &models.Booking{
			ID:              uuid.New(),
			CustomerID:      in.CustomerID,
			StoreID:         in.StoreID,
			TreatmentID:     in.TreatmentID,
			StaffID:         in.StaffID,
			BookingDateTime: in.BookingDateTime,
			DurationMinutes: treatment.DurationMinutes,
			Status:          booking.InitialStatus(store.RequireApproval),
			Price:           treatment.Price,
			Notes:           in.Notes,
			Source:          in.Source,
		}
		if slot != nil {
			b.TimeslotID = &slot.ID
		}

		if err := repo.CreateBooking(ctx, b); err != nil {
			return err
		}
		if slot != nil {
			if err := repo.IncrementTimeslot(ctx, slot.ID); err != nil {
				return err
			}
		}

		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish.Publish(events.Event{
		Type:      models.EventBookingCreated,
		StoreID:   created.StoreID,
		Timestamp: now.UTC(),
		Data:      events.BookingCreatedData{Booking: created},
	})
	return created, nil
}

// checkPreconditions runs the cheap, pre-transaction checks of §4.5.
func (e *Engine) checkPreconditions(ctx context.Context, in CreateInput, now time.Time) error {
	if in.BookingDateTime.Before(now) {
		return httperr.Validation("bookingDateTime must not be in the past")
	}
	return e.uow.Snapshot(ctx, func(ctx context.Context, repo Repository) error {
		store, treatment, err := loadStoreAndTreatment(ctx, repo, in.StoreID, in.TreatmentID)
		if err != nil {
			return err
		}
		if !domstore.WithinAdvanceWindow(store, now, in.BookingDateTime) {
			return errTooFarInAdvance()
		}
		customer, err := repo.GetUser(ctx, in.CustomerID)
		if err != nil || !customer.IsActive {
			return httperr.Validation("customer not found or inactive")
		}
		_ = treatment
		return nil
	})
}

// storeOf resolves a booking's store id with an unlocked read, so the
// caller can then take the §5 advisory lock scoped to the right store before
// starting its admission transaction.
func (e *Engine) storeOf(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, error) {
	var storeID uuid.UUID
	err := e.uow.Snapshot(ctx, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return httperr.NotFoundErr("booking not found")
		}
		storeID = b.StoreID
		return nil
	})
	return storeID, err
}

func loadStoreAndTreatment(ctx context.Context, repo Repository, storeID, treatmentID uuid.UUID) (*models.Store, *models.Treatment, error) {
	store, err := repo.GetStore(ctx, storeID)
	if err != nil || !store.IsActive {
		return nil, nil, httperr.NotFoundErr("store not found")
	}
	treatment, err := repo.GetTreatment(ctx, storeID, treatmentID)
	if err != nil || !treatment.IsActive {
		return nil, nil, errTreatmentNotFound()
	}
	return store, treatment, nil
}

func isCatalogIneligible(t *models.Treatment, staff *models.User) bool {
	if t.RequiredStaffLevel == models.LevelAny {
		return false
	}
	return staff.EffectiveSkillLevel().Rank() < t.RequiredStaffLevel.Rank()
}

// runAdmissionChecks performs the five independent quota checks of §4.5 in
// order, stopping at the first failure. It returns the covering timeslot (if
// any matched) for the caller to increment/decrement.
func (e *Engine) runAdmissionChecks(
	ctx context.Context,
	repo Repository,
	store *models.Store,
	treatment *models.Treatment,
	staffID *uuid.UUID,
	start, end time.Time,
	excludeBookingID *uuid.UUID,
) (*models.Timeslot, error) {

	if !domstore.IsOpenOnDate(store, start) {
		return nil, errStoreClosed()
	}

	// 1. Timeslot gate.
	slot, err := repo.FindCoveringTimeslot(ctx, store.ID, treatment.ID, staffID, start, end)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, errNoTimeslot()
	}

	// 2. Treatment concurrency.
	n, err := repo.CountOverlappingTreatmentBookings(ctx, treatment.ID, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}
	if n >= treatment.MaxConcurrentBookings {
		return nil, errTreatmentCapacity()
	}

	// 3. Staff conflict.
	if staffID != nil {
		n, err := repo.CountOverlappingStaffBookings(ctx, *staffID, start, end, excludeBookingID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, errStaffConflict()
		}
	}

	// 4. Resource conflict.
	resources, err := repo.RequiredResourcesFor(ctx, treatment.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range resources {
		n, err := repo.CountOverlappingResourceBookings(ctx, r.ID, start, end, excludeBookingID)
		if err != nil {
			return nil, err
		}
		if n >= r.Capacity {
			return nil, errResourceCapacity()
		}
	}

	// 5. Store quotas.
	if store.MaxDailyBookings != nil {
		n, err := repo.CountStoreBookingsOnDate(ctx, store.ID, start, store.Timezone, excludeBookingID)
		if err != nil {
			return nil, err
		}
		if n >= *store.MaxDailyBookings {
			return nil, errDailyLimit()
		}
	}
	if store.MaxConcurrentBookings != nil {
		n, err := repo.CountStoreOverlappingBookings(ctx, store.ID, start, end, excludeBookingID)
		if err != nil {
			return nil, err
		}
		if n >= *store.MaxConcurrentBookings {
			return nil, errStoreCapacity()
		}
	}

	return slot, nil
}

// ModifyInput carries the fields a reschedule/staff-change may alter.
type ModifyInput struct {
	BookingID       uuid.UUID
	BookingDateTime time.Time
	StaffID         *uuid.UUID
}

// Modify reruns the five §4.5 checks with the new parameters, excluding the
// booking's own id, and moves the covering timeslot's counter if it changed.
func (e *Engine) Modify(ctx context.Context, in ModifyInput) (*models.Booking, error) {
	now := e.now()
	var updated *models.Booking
	var oldFields []string

	storeID, err := e.storeOf(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	err = e.uow.Transact(ctx, storeID, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetBooking(ctx, in.BookingID)
		if err != nil {
			return httperr.NotFoundErr("booking not found")
		}
		if !booking.CanModify(b, now) {
			return httperr.Conflict("", "booking can no longer be modified")
		}

		store, treatment, err := loadStoreAndTreatment(ctx, repo, b.StoreID, b.TreatmentID)
		if err != nil {
			return err
		}

		staffID := in.StaffID
		if staffID != nil {
			staff, err := repo.GetUser(ctx, *staffID)
			if err != nil || !staff.IsStaffOf(b.StoreID) || !staff.IsActive || isCatalogIneligible(treatment, staff) {
				return errInvalidStaff()
			}
		}

		end := in.BookingDateTime.Add(treatment.Duration())
		newSlot, err := e.runAdmissionChecks(ctx, repo, store, treatment, staffID, in.BookingDateTime, end, &b.ID)
		if err != nil {
			return err
		}

		oldTimeslotID := b.TimeslotID
		if b.BookingDateTime != in.BookingDateTime {
			oldFields = append(oldFields, "bookingDateTime")
		}
		if (b.StaffID == nil) != (staffID == nil) || (b.StaffID != nil && staffID != nil && *b.StaffID != *staffID) {
			oldFields = append(oldFields, "staffId")
		}

		b.BookingDateTime = in.BookingDateTime
		b.StaffID = staffID
		if newSlot != nil {
			b.TimeslotID = &newSlot.ID
		} else {
			b.TimeslotID = nil
		}

		if err := repo.UpdateBooking(ctx, b); err != nil {
			return err
		}

		changed := newSlot != nil && (oldTimeslotID == nil || *oldTimeslotID != newSlot.ID)
		if changed {
			if oldTimeslotID != nil {
				if err := repo.DecrementTimeslot(ctx, *oldTimeslotID); err != nil {
					return err
				}
			}
			if err := repo.IncrementTimeslot(ctx, newSlot.ID); err != nil {
				return err
			}
		}

		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish.Publish(events.Event{
		Type:      models.EventBookingUpdated,
		StoreID:   updated.StoreID,
		Timestamp: now.UTC(),
		Data:      events.BookingUpdatedData{Booking: updated, ChangedFields: oldFields},
	})
	return updated, nil
}

// Cancel transitions a booking to cancelled, decrements its covering
// timeslot's counter, and emits booking.cancelled. Idempotent: cancelling an
// already-cancelled booking is a no-op that returns the booking unchanged.
func (e *Engine) Cancel(ctx context.Context, bookingID uuid.UUID, reason string, override bool) (*models.Booking, error) {
	now := e.now()
	var result *models.Booking
	var alreadyCancelled bool

	storeID, err := e.storeOf(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	err = e.uow.Transact(ctx, storeID, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return httperr.NotFoundErr("booking not found")
		}
		if b.Status == models.BookingCancelled {
			alreadyCancelled = true
			result = b
			return nil
		}

		if !override {
			store, err := repo.GetStore(ctx, b.StoreID)
			if err != nil {
				return httperr.NotFoundErr("store not found")
			}
			if !booking.CanCancel(b, now, store.CancellationDeadlineH) {
				return httperr.Conflict("", "booking is past its cancellation deadline")
			}
		}

		timeslotID := b.TimeslotID
		booking.ApplyCancellation(b, now, reason)
		if err := repo.UpdateBooking(ctx, b); err != nil {
			return err
		}
		if timeslotID != nil {
			if err := repo.DecrementTimeslot(ctx, *timeslotID); err != nil {
				return err
			}
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyCancelled {
		return result, nil
	}

	e.publish.Publish(events.Event{
		Type:      models.EventBookingCancelled,
		StoreID:   result.StoreID,
		Timestamp: now.UTC(),
		Data:      events.BookingCancelledData{Booking: result, CancellationReason: reason},
	})
	return result, nil
}

// Approve transitions a pending booking to confirmed. Only meaningful for
// stores with requireApproval=true, where InitialStatus admits bookings as
// pending; a staff/admin caller reviews and approves them here.
func (e *Engine) Approve(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	now := e.now()
	var result *models.Booking

	storeID, err := e.storeOf(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	err = e.uow.Transact(ctx, storeID, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return httperr.NotFoundErr("booking not found")
		}
		if !booking.CanApprove(b) {
			return httperr.Conflict("", "booking is not pending approval")
		}
		booking.ApplyApproval(b)
		if err := repo.UpdateBooking(ctx, b); err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish.Publish(events.Event{
		Type:      models.EventBookingUpdated,
		StoreID:   result.StoreID,
		Timestamp: now.UTC(),
		Data:      events.BookingUpdatedData{Booking: result, ChangedFields: []string{"status"}},
	})
	return result, nil
}

// CheckIn transitions a confirmed booking to in_progress once the customer
// has arrived, per §4.4. This is the only path into in_progress, and
// therefore the only way a booking ever becomes eligible for Complete.
func (e *Engine) CheckIn(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	now := e.now()
	var result *models.Booking

	storeID, err := e.storeOf(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	err = e.uow.Transact(ctx, storeID, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return httperr.NotFoundErr("booking not found")
		}
		if !booking.CanCheckIn(b) {
			return httperr.Conflict("", "booking is not confirmed")
		}
		booking.ApplyCheckIn(b)
		if err := repo.UpdateBooking(ctx, b); err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish.Publish(events.Event{
		Type:      models.EventBookingUpdated,
		StoreID:   result.StoreID,
		Timestamp: now.UTC(),
		Data:      events.BookingUpdatedData{Booking: result, ChangedFields: []string{"status"}},
	})
	return result, nil
}

// Complete transitions a booking to completed.
func (e *Engine) Complete(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	now := e.now()
	var result *models.Booking

	storeID, err := e.storeOf(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	err = e.uow.Transact(ctx, storeID, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return httperr.NotFoundErr("booking not found")
		}
		if !booking.CanTransition(b.Status, models.BookingCompleted) {
			return httperr.Conflict("", "booking is not in a completable state")
		}
		booking.ApplyCompletion(b, now)
		if err := repo.UpdateBooking(ctx, b); err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish.Publish(events.Event{
		Type:      models.EventBookingCompleted,
		StoreID:   result.StoreID,
		Timestamp: now.UTC(),
		Data:      events.BookingCompletedData{Booking: result, CompletedAt: *result.CompletedAt},
	})
	return result, nil
}

// MarkNoShow transitions a booking to no_show once its start time has
// passed, per §4.4.
func (e *Engine) MarkNoShow(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	now := e.now()
	var result *models.Booking

	storeID, err := e.storeOf(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	err = e.uow.Transact(ctx, storeID, func(ctx context.Context, repo Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return httperr.NotFoundErr("booking not found")
		}
		if !booking.CanMarkNoShow(b, now) {
			return httperr.Conflict("", "booking cannot be marked no_show yet")
		}
		timeslotID := b.TimeslotID
		booking.ApplyNoShow(b)
		if err := repo.UpdateBooking(ctx, b); err != nil {
			return err
		}
		if timeslotID != nil {
			if err := repo.DecrementTimeslot(ctx, *timeslotID); err != nil {
				return err
			}
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetClock overrides the engine's notion of "now"; used by tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}
