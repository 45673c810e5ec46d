package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/venora-platform/booking-engine/internal/infra/lock"
	"github.com/venora-platform/booking-engine/internal/models"
	"github.com/venora-platform/booking-engine/internal/timezone"
	"github.com/venora-platform/booking-engine/internal/usecase/reservation"
)

// nonTerminal is the SQL fragment selecting bookings still capable of
// consuming a quota — i.e. not cancelled and not no_show.
const nonTerminal = "status NOT IN ('cancelled','no_show')"

// ReservationGormRepository implements reservation.Repository against a
// single *gorm.DB handle, which may be either the process pool or a live
// transaction handed in by ReservationUnitOfWork.
type ReservationGormRepository struct {
	db *gorm.DB
}

func NewReservationGormRepository(db *gorm.DB) *ReservationGormRepository {
	return &ReservationGormRepository{db: db}
}

func excludeClause(db *gorm.DB, excludeBookingID *uuid.UUID) *gorm.DB {
	if excludeBookingID != nil {
		return db.Where("id <> ?", *excludeBookingID)
	}
	return db
}

func (r *ReservationGormRepository) GetStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	var s models.Store
	if err := r.db.WithContext(ctx).First(&s, "id = ?", storeID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ReservationGormRepository) GetTreatment(ctx context.Context, storeID, treatmentID uuid.UUID) (*models.Treatment, error) {
	var t models.Treatment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", treatmentID, storeID).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ReservationGormRepository) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ReservationGormRepository) GetTimeslot(ctx context.Context, timeslotID uuid.UUID) (*models.Timeslot, error) {
	var t models.Timeslot
	if err := r.db.WithContext(ctx).First(&t, "id = ?", timeslotID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ReservationGormRepository) GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *ReservationGormRepository) FindCoveringTimeslot(
	ctx context.Context,
	storeID, treatmentID uuid.UUID,
	staffID *uuid.UUID,
	start, end time.Time,
) (*models.Timeslot, error) {

	var slots []models.Timeslot
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"store_id = ? AND is_active = true AND start_time <= ? AND end_time >= ? AND current_bookings < max_capacity",
			storeID, start, end,
		).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}

	for _, s := range slots {
		if !s.AllowsTreatment(treatmentID) {
			continue
		}
		if staffID != nil && !s.AllowsStaff(*staffID) {
			continue
		}
		slot := s
		return &slot, nil
	}
	return nil, nil
}

func (r *ReservationGormRepository) CountOverlappingTreatmentBookings(
	ctx context.Context, treatmentID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID,
) (int, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(nonTerminal+" AND treatment_id = ? AND booking_date_time < ? AND booking_date_time + (duration_minutes || ' minutes')::interval > ?",
			treatmentID, end, start)
	q = excludeClause(q, excludeBookingID)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *ReservationGormRepository) CountOverlappingStaffBookings(
	ctx context.Context, staffID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID,
) (int, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(nonTerminal+" AND staff_id = ? AND booking_date_time < ? AND booking_date_time + (duration_minutes || ' minutes')::interval > ?",
			staffID, end, start)
	q = excludeClause(q, excludeBookingID)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *ReservationGormRepository) RequiredResourcesFor(ctx context.Context, treatmentID uuid.UUID) ([]models.Resource, error) {
	var t models.Treatment
	if err := r.db.WithContext(ctx).
		Preload("RequiredResources").
		First(&t, "id = ?", treatmentID).Error; err != nil {
		return nil, err
	}
	return t.RequiredResources, nil
}

func (r *ReservationGormRepository) CountOverlappingResourceBookings(
	ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID,
) (int, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Joins("JOIN treatment_resources tr ON tr.treatment_id = bookings.treatment_id").
		Where(
			"tr.resource_id = ? AND bookings."+nonTerminal+" AND bookings.booking_date_time < ? AND bookings.booking_date_time + (bookings.duration_minutes || ' minutes')::interval > ?",
			resourceID, end, start,
		)
	q = excludeClause(q, excludeBookingID)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *ReservationGormRepository) CountStoreBookingsOnDate(
	ctx context.Context, storeID uuid.UUID, localDate time.Time, tz string, excludeBookingID *uuid.UUID,
) (int, error) {
	dayStart := timezone.StartOfDay(localDate, tz)
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int64
	q := r.db.WithContext(ctx).Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(nonTerminal+" AND store_id = ? AND booking_date_time >= ? AND booking_date_time < ?", storeID, dayStart, dayEnd)
	q = excludeClause(q, excludeBookingID)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *ReservationGormRepository) CountStoreOverlappingBookings(
	ctx context.Context, storeID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID,
) (int, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(nonTerminal+" AND store_id = ? AND booking_date_time < ? AND booking_date_time + (duration_minutes || ' minutes')::interval > ?",
			storeID, end, start)
	q = excludeClause(q, excludeBookingID)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *ReservationGormRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *ReservationGormRepository) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *ReservationGormRepository) IncrementTimeslot(ctx context.Context, timeslotID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Timeslot{}).
		Where("id = ? AND current_bookings < max_capacity", timeslotID).
		UpdateColumn("current_bookings", gorm.Expr("current_bookings + 1")).Error
}

func (r *ReservationGormRepository) DecrementTimeslot(ctx context.Context, timeslotID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Timeslot{}).
		Where("id = ? AND current_bookings > 0", timeslotID).
		UpdateColumn("current_bookings", gorm.Expr("current_bookings - 1")).Error
}

var _ reservation.Repository = (*ReservationGormRepository)(nil)

// ReservationUnitOfWork wires the admission transaction boundary of §5:
// a database transaction, guarded by the per-store advisory lock whenever a
// concrete store id is known.
type ReservationUnitOfWork struct {
	db       *gorm.DB
	storeLck *lock.StoreLock
}

func NewReservationUnitOfWork(db *gorm.DB, storeLck *lock.StoreLock) *ReservationUnitOfWork {
	return &ReservationUnitOfWork{db: db, storeLck: storeLck}
}

func (u *ReservationUnitOfWork) Transact(ctx context.Context, storeID uuid.UUID, fn func(ctx context.Context, repo reservation.Repository) error) error {
	if storeID != uuid.Nil && u.storeLck != nil {
		handle, err := u.storeLck.Acquire(ctx, storeID)
		if err != nil {
			return err
		}
		defer func() { _ = handle.Release(ctx) }()
	}

	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewReservationGormRepository(tx))
	})
}

func (u *ReservationUnitOfWork) Snapshot(ctx context.Context, fn func(ctx context.Context, repo reservation.Repository) error) error {
	return fn(ctx, NewReservationGormRepository(u.db))
}
