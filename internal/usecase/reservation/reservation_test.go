package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/events"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/models"
)

// memRepo is an in-memory Repository backing the fake unit of work below. It
// intentionally holds no locking of its own — serialization is the fake
// UnitOfWork's job, mirroring how the GORM implementation splits the same
// concerns (§4.5, §5).
type memRepo struct {
	mu         *sync.Mutex
	stores     map[uuid.UUID]*models.Store
	treatments map[uuid.UUID]*models.Treatment
	users      map[uuid.UUID]*models.User
	timeslots  map[uuid.UUID]*models.Timeslot
	bookings   map[uuid.UUID]*models.Booking
	resources  map[uuid.UUID][]models.Resource // treatmentID -> resources
}

func newMemRepo() *memRepo {
	return &memRepo{
		mu:         &sync.Mutex{},
		stores:     map[uuid.UUID]*models.Store{},
		treatments: map[uuid.UUID]*models.Treatment{},
		users:      map[uuid.UUID]*models.User{},
		timeslots:  map[uuid.UUID]*models.Timeslot{},
		bookings:   map[uuid.UUID]*models.Booking{},
		resources:  map[uuid.UUID][]models.Resource{},
	}
}

func (r *memRepo) GetStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	if s, ok := r.stores[storeID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, httperr.NotFoundErr("store not found")
}

func (r *memRepo) GetTreatment(ctx context.Context, storeID, treatmentID uuid.UUID) (*models.Treatment, error) {
	if t, ok := r.treatments[treatmentID]; ok && t.StoreID == storeID {
		cp := *t
		return &cp, nil
	}
	return nil, httperr.NotFoundErr("treatment not found")
}

func (r *memRepo) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if u, ok := r.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, httperr.NotFoundErr("user not found")
}

func (r *memRepo) GetTimeslot(ctx context.Context, timeslotID uuid.UUID) (*models.Timeslot, error) {
	if s, ok := r.timeslots[timeslotID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, httperr.NotFoundErr("timeslot not found")
}

func (r *memRepo) GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	if b, ok := r.bookings[bookingID]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, httperr.NotFoundErr("booking not found")
}

func (r *memRepo) FindCoveringTimeslot(ctx context.Context, storeID, treatmentID uuid.UUID, staffID *uuid.UUID, start, end time.Time) (*models.Timeslot, error) {
	var best *models.Timeslot
	for _, s := range r.timeslots {
		if s.StoreID != storeID || !s.IsActive || !s.HasCapacity() {
			continue
		}
		if !s.Covers(start, end) {
			continue
		}
		if !s.AllowsTreatment(treatmentID) {
			continue
		}
		if staffID != nil && !s.AllowsStaff(*staffID) {
			continue
		}
		if best == nil || s.StartTime.Before(best.StartTime) {
			cp := *s
			best = &cp
		}
	}
	return best, nil
}

func (r *memRepo) overlappingCount(pred func(b *models.Booking) bool, start, end time.Time, excludeBookingID *uuid.UUID) int {
	n := 0
	for _, b := range r.bookings {
		if b.Status.IsTerminal() {
			continue
		}
		if excludeBookingID != nil && b.ID == *excludeBookingID {
			continue
		}
		if !pred(b) {
			continue
		}
		if b.Overlaps(start, end) {
			n++
		}
	}
	return n
}

func (r *memRepo) CountOverlappingTreatmentBookings(ctx context.Context, treatmentID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int, error) {
	return r.overlappingCount(func(b *models.Booking) bool { return b.TreatmentID == treatmentID }, start, end, excludeBookingID), nil
}

func (r *memRepo) CountOverlappingStaffBookings(ctx context.Context, staffID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int, error) {
	return r.overlappingCount(func(b *models.Booking) bool { return b.StaffID != nil && *b.StaffID == staffID }, start, end, excludeBookingID), nil
}

func (r *memRepo) RequiredResourcesFor(ctx context.Context, treatmentID uuid.UUID) ([]models.Resource, error) {
	return r.resources[treatmentID], nil
}

func (r *memRepo) CountOverlappingResourceBookings(ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int, error) {
	return r.overlappingCount(func(b *models.Booking) bool {
		for _, res := range r.resources[b.TreatmentID] {
			if res.ID == resourceID {
				return true
			}
		}
		return false
	}, start, end, excludeBookingID), nil
}

func (r *memRepo) CountStoreBookingsOnDate(ctx context.Context, storeID uuid.UUID, localDate time.Time, tz string, excludeBookingID *uuid.UUID) (int, error) {
	n := 0
	for _, b := range r.bookings {
		if b.StoreID != storeID || b.Status.IsTerminal() {
			continue
		}
		if excludeBookingID != nil && b.ID == *excludeBookingID {
			continue
		}
		if b.BookingDateTime.Year() == localDate.Year() && b.BookingDateTime.YearDay() == localDate.YearDay() {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CountStoreOverlappingBookings(ctx context.Context, storeID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int, error) {
	return r.overlappingCount(func(b *models.Booking) bool { return b.StoreID == storeID }, start, end, excludeBookingID), nil
}

func (r *memRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *memRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *memRepo) IncrementTimeslot(ctx context.Context, timeslotID uuid.UUID) error {
	if s, ok := r.timeslots[timeslotID]; ok {
		s.CurrentBookings++
	}
	return nil
}

func (r *memRepo) DecrementTimeslot(ctx context.Context, timeslotID uuid.UUID) error {
	if s, ok := r.timeslots[timeslotID]; ok && s.CurrentBookings > 0 {
		s.CurrentBookings--
	}
	return nil
}

// memUOW serializes every Transact call behind a single mutex, standing in
// for the GORM implementation's real transaction plus §5 advisory lock.
// Snapshot never blocks on that mutex, matching the real "unlocked read"
// contract.
type memUOW struct {
	mu   sync.Mutex
	repo *memRepo
}

func newMemUOW(repo *memRepo) *memUOW {
	return &memUOW{repo: repo}
}

func (u *memUOW) Transact(ctx context.Context, storeID uuid.UUID, fn func(ctx context.Context, repo Repository) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(ctx, u.repo)
}

func (u *memUOW) Snapshot(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return fn(ctx, u.repo)
}

type noopPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *noopPublisher) Publish(evt events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *noopPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// fixture builds a single active store, one any-level treatment with a
// 30-minute duration, and one covering timeslot with the given capacity.
func fixture(t *testing.T, capacity int) (*memRepo, uuid.UUID, uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()
	repo := newMemRepo()

	storeID := uuid.New()
	repo.stores[storeID] = &models.Store{
		ID: storeID, IsActive: true, Timezone: "UTC",
		MaxAdvanceBookingDays: 90, CancellationDeadlineH: 24,
	}
	_ = repo.stores[storeID].SetOperatingHours(models.OperatingHours{
		time.Monday: {Open: "00:00", Close: "23:59"},
		time.Tuesday: {Open: "00:00", Close: "23:59"},
	})

	treatmentID := uuid.New()
	repo.treatments[treatmentID] = &models.Treatment{
		ID: treatmentID, StoreID: storeID, IsActive: true,
		DurationMinutes: 30, RequiredStaffLevel: models.LevelAny, MaxConcurrentBookings: 100,
	}

	customerID := uuid.New()
	repo.users[customerID] = &models.User{ID: customerID, IsActive: true, Role: models.RoleCustomer}

	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC) // Monday
	slotID := uuid.New()
	repo.timeslots[slotID] = &models.Timeslot{
		ID: slotID, StoreID: storeID, StartTime: start, EndTime: start.Add(time.Hour),
		MaxCapacity: capacity, IsActive: true,
	}

	return repo, storeID, treatmentID, customerID, slotID
}

func TestEngineCreateSucceedsWithinCapacity(t *testing.T) {
	repo, storeID, treatmentID, customerID, _ := fixture(t, 2)
	engine := New(newMemUOW(repo), &noopPublisher{})
	engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	b, err := engine.Create(context.Background(), CreateInput{
		CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
		BookingDateTime: start, Source: models.SourceAPI,
	})
	if err != nil {
		t.Fatalf("Create returned unexpected error: %v", err)
	}
	if b.Status != models.BookingConfirmed {
		t.Errorf("Status = %s, want confirmed (store does not require approval)", b.Status)
	}
	if b.TimeslotID == nil {
		t.Error("expected the booking to be assigned to the covering timeslot")
	}
}

func TestEngineCreateRejectsWhenNoTimeslotCovers(t *testing.T) {
	repo, storeID, treatmentID, customerID, _ := fixture(t, 2)
	engine := New(newMemUOW(repo), &noopPublisher{})
	engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	// Outside any timeslot's covered interval.
	start := time.Date(2026, 1, 12, 22, 0, 0, 0, time.UTC)
	_, err := engine.Create(context.Background(), CreateInput{
		CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
		BookingDateTime: start, Source: models.SourceAPI,
	})
	if !httperr.IsReason(err, httperr.ReasonNoTimeslot) {
		t.Errorf("expected NO_TIMESLOT, got %v", err)
	}
}

func TestEngineCreateRejectsPastDatetime(t *testing.T) {
	repo, storeID, treatmentID, customerID, _ := fixture(t, 2)
	engine := New(newMemUOW(repo), &noopPublisher{})
	now := time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC)
	engine.SetClock(func() time.Time { return now })

	_, err := engine.Create(context.Background(), CreateInput{
		CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
		BookingDateTime: now.Add(-time.Hour), Source: models.SourceAPI,
	})
	if err == nil {
		t.Fatal("expected an error for a booking datetime in the past")
	}
}

// TestEngineCreateEnforcesCapacityUnderConcurrency drives maxCapacity=1
// timeslot admission from many goroutines simultaneously and asserts that
// exactly one Create succeeds — the fake UnitOfWork's mutex plays the role
// of the real per-store advisory lock / transaction (§5).
func TestEngineCreateEnforcesCapacityUnderConcurrency(t *testing.T) {
	repo, storeID, treatmentID, _, _ := fixture(t, 1)
	engine := New(newMemUOW(repo), &noopPublisher{})
	engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

	const attempts = 20
	customerIDs := make([]uuid.UUID, attempts)
	for i := range customerIDs {
		id := uuid.New()
		customerIDs[i] = id
		repo.users[id] = &models.User{ID: id, IsActive: true, Role: models.RoleCustomer}
	}

	var wg sync.WaitGroup
	var successCount int32
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(customerID uuid.UUID) {
			defer wg.Done()
			_, err := engine.Create(context.Background(), CreateInput{
				CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
				BookingDateTime: start, Source: models.SourceAPI,
			})
			if err == nil {
				mu.Lock()
				successCount++
				mu.Unlock()
			}
		}(customerIDs[i])
	}
	wg.Wait()

	if successCount != 1 {
		t.Errorf("successCount = %d, want exactly 1 (timeslot capacity is 1)", successCount)
	}
}

func TestEngineCancelIsIdempotent(t *testing.T) {
	repo, storeID, treatmentID, customerID, _ := fixture(t, 2)
	engine := New(newMemUOW(repo), &noopPublisher{})
	engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	b, err := engine.Create(context.Background(), CreateInput{
		CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
		BookingDateTime: start, Source: models.SourceAPI,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, err := engine.Cancel(context.Background(), b.ID, "changed my mind", false)
	if err != nil {
		t.Fatalf("first Cancel failed: %v", err)
	}
	if first.Status != models.BookingCancelled {
		t.Fatalf("expected cancelled status, got %s", first.Status)
	}

	second, err := engine.Cancel(context.Background(), b.ID, "different reason", false)
	if err != nil {
		t.Fatalf("second Cancel failed: %v", err)
	}
	if second.CancellationReason != "changed my mind" {
		t.Errorf("expected idempotent cancel to leave original reason, got %q", second.CancellationReason)
	}
}

// TestEngineCreateAdmissionFailures drives each of the five independent
// quota checks (§4.5) into its documented failure reason via the memRepo
// fake, one seeded violation at a time.
func TestEngineCreateAdmissionFailures(t *testing.T) {
	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC) // Monday

	t.Run("treatment concurrency", func(t *testing.T) {
		repo, storeID, treatmentID, customerID, _ := fixture(t, 10)
		repo.treatments[treatmentID].MaxConcurrentBookings = 1
		repo.bookings[uuid.New()] = &models.Booking{
			ID: uuid.New(), StoreID: storeID, TreatmentID: treatmentID,
			CustomerID: uuid.New(), BookingDateTime: start, DurationMinutes: 30,
			Status: models.BookingConfirmed,
		}
		engine := New(newMemUOW(repo), &noopPublisher{})
		engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

		_, err := engine.Create(context.Background(), CreateInput{
			CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
			BookingDateTime: start, Source: models.SourceAPI,
		})
		if !httperr.IsReason(err, httperr.ReasonTreatmentCapacity) {
			t.Errorf("expected TREATMENT_CAPACITY, got %v", err)
		}
	})

	t.Run("staff conflict", func(t *testing.T) {
		repo, storeID, treatmentID, customerID, _ := fixture(t, 10)
		staffID := uuid.New()
		repo.users[staffID] = &models.User{ID: staffID, StoreID: &storeID, Role: models.RoleStaff, IsActive: true}
		repo.bookings[uuid.New()] = &models.Booking{
			ID: uuid.New(), StoreID: storeID, TreatmentID: treatmentID, StaffID: &staffID,
			CustomerID: uuid.New(), BookingDateTime: start, DurationMinutes: 30,
			Status: models.BookingConfirmed,
		}
		engine := New(newMemUOW(repo), &noopPublisher{})
		engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

		_, err := engine.Create(context.Background(), CreateInput{
			CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
			StaffID: &staffID, BookingDateTime: start, Source: models.SourceAPI,
		})
		if !httperr.IsReason(err, httperr.ReasonStaffConflict) {
			t.Errorf("expected STAFF_CONFLICT, got %v", err)
		}
	})

	t.Run("resource capacity", func(t *testing.T) {
		repo, storeID, treatmentID, customerID, _ := fixture(t, 10)
		resourceID := uuid.New()
		repo.resources[treatmentID] = []models.Resource{{ID: resourceID, StoreID: storeID, Capacity: 1, IsActive: true}}
		otherTreatmentID := uuid.New()
		repo.treatments[otherTreatmentID] = &models.Treatment{
			ID: otherTreatmentID, StoreID: storeID, IsActive: true,
			DurationMinutes: 30, RequiredStaffLevel: models.LevelAny, MaxConcurrentBookings: 100,
		}
		repo.resources[otherTreatmentID] = []models.Resource{{ID: resourceID, StoreID: storeID, Capacity: 1, IsActive: true}}
		repo.bookings[uuid.New()] = &models.Booking{
			ID: uuid.New(), StoreID: storeID, TreatmentID: otherTreatmentID,
			CustomerID: uuid.New(), BookingDateTime: start, DurationMinutes: 30,
			Status: models.BookingConfirmed,
		}
		engine := New(newMemUOW(repo), &noopPublisher{})
		engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

		_, err := engine.Create(context.Background(), CreateInput{
			CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
			BookingDateTime: start, Source: models.SourceAPI,
		})
		if !httperr.IsReason(err, httperr.ReasonResourceCapacity) {
			t.Errorf("expected RESOURCE_CAPACITY, got %v", err)
		}
	})

	t.Run("daily limit", func(t *testing.T) {
		repo, storeID, treatmentID, customerID, _ := fixture(t, 10)
		limit := 1
		repo.stores[storeID].MaxDailyBookings = &limit
		repo.bookings[uuid.New()] = &models.Booking{
			ID: uuid.New(), StoreID: storeID, TreatmentID: treatmentID,
			CustomerID: uuid.New(), BookingDateTime: start.Add(4 * time.Hour), DurationMinutes: 30,
			Status: models.BookingConfirmed,
		}
		engine := New(newMemUOW(repo), &noopPublisher{})
		engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

		_, err := engine.Create(context.Background(), CreateInput{
			CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
			BookingDateTime: start, Source: models.SourceAPI,
		})
		if !httperr.IsReason(err, httperr.ReasonDailyLimit) {
			t.Errorf("expected DAILY_LIMIT, got %v", err)
		}
	})

	t.Run("store capacity", func(t *testing.T) {
		repo, storeID, treatmentID, customerID, _ := fixture(t, 10)
		limit := 1
		repo.stores[storeID].MaxConcurrentBookings = &limit
		repo.bookings[uuid.New()] = &models.Booking{
			ID: uuid.New(), StoreID: storeID, TreatmentID: treatmentID,
			CustomerID: uuid.New(), BookingDateTime: start, DurationMinutes: 30,
			Status: models.BookingConfirmed,
		}
		engine := New(newMemUOW(repo), &noopPublisher{})
		engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

		_, err := engine.Create(context.Background(), CreateInput{
			CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
			BookingDateTime: start, Source: models.SourceAPI,
		})
		if !httperr.IsReason(err, httperr.ReasonStoreCapacity) {
			t.Errorf("expected STORE_CAPACITY, got %v", err)
		}
	})

	t.Run("too far in advance", func(t *testing.T) {
		repo, storeID, treatmentID, customerID, _ := fixture(t, 10)
		repo.stores[storeID].MaxAdvanceBookingDays = 1
		far := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		engine := New(newMemUOW(repo), &noopPublisher{})
		engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

		_, err := engine.Create(context.Background(), CreateInput{
			CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
			BookingDateTime: far, Source: models.SourceAPI,
		})
		if !httperr.IsReason(err, httperr.ReasonTooFarInAdvance) {
			t.Errorf("expected TOO_FAR_IN_ADVANCE, got %v", err)
		}
	})

	t.Run("invalid staff", func(t *testing.T) {
		repo, storeID, treatmentID, customerID, _ := fixture(t, 10)
		otherStoreID := uuid.New()
		staffID := uuid.New()
		repo.users[staffID] = &models.User{ID: staffID, StoreID: &otherStoreID, Role: models.RoleStaff, IsActive: true}
		engine := New(newMemUOW(repo), &noopPublisher{})
		engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

		_, err := engine.Create(context.Background(), CreateInput{
			CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
			StaffID: &staffID, BookingDateTime: start, Source: models.SourceAPI,
		})
		if !httperr.IsReason(err, httperr.ReasonInvalidStaff) {
			t.Errorf("expected INVALID_STAFF, got %v", err)
		}
	})
}

func TestEngineModifyReschedulesBooking(t *testing.T) {
	repo, storeID, treatmentID, customerID, firstSlot := fixture(t, 2)
	secondStart := time.Date(2026, 1, 13, 9, 0, 0, 0, time.UTC) // Tuesday
	secondSlot := uuid.New()
	repo.timeslots[secondSlot] = &models.Timeslot{
		ID: secondSlot, StoreID: storeID, StartTime: secondStart, EndTime: secondStart.Add(time.Hour),
		MaxCapacity: 2, IsActive: true,
	}

	engine := New(newMemUOW(repo), &noopPublisher{})
	engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	b, err := engine.Create(context.Background(), CreateInput{
		CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
		BookingDateTime: start, Source: models.SourceAPI,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := engine.Modify(context.Background(), ModifyInput{BookingID: b.ID, BookingDateTime: secondStart})
	if err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	if !updated.BookingDateTime.Equal(secondStart) {
		t.Errorf("BookingDateTime = %v, want %v", updated.BookingDateTime, secondStart)
	}
	if updated.TimeslotID == nil || *updated.TimeslotID != secondSlot {
		t.Errorf("expected the booking to move to the second timeslot")
	}
	if repo.timeslots[firstSlot].CurrentBookings != 0 {
		t.Errorf("expected the original timeslot's counter to be decremented")
	}
	if repo.timeslots[secondSlot].CurrentBookings != 1 {
		t.Errorf("expected the new timeslot's counter to be incremented")
	}
}

func TestEngineMarkNoShowRequiresPastStart(t *testing.T) {
	repo, storeID, treatmentID, customerID, _ := fixture(t, 2)
	engine := New(newMemUOW(repo), &noopPublisher{})
	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	engine.SetClock(func() time.Time { return start.Add(-time.Hour) })

	b, err := engine.Create(context.Background(), CreateInput{
		CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
		BookingDateTime: start, Source: models.SourceAPI,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := engine.MarkNoShow(context.Background(), b.ID); err == nil {
		t.Error("expected MarkNoShow to reject a booking whose start hasn't passed")
	}

	engine.SetClock(func() time.Time { return start.Add(time.Hour) })
	noShow, err := engine.MarkNoShow(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("MarkNoShow failed: %v", err)
	}
	if noShow.Status != models.BookingNoShow {
		t.Errorf("status = %s, want no_show", noShow.Status)
	}
}

// TestEngineApproveCheckInCompleteHappyPath drives a store.requireApproval
// booking through the full pending→confirmed→in_progress→completed graph —
// Complete is only reachable via CheckIn, which is only reachable via
// Approve for a store that requires approval (§4.4).
func TestEngineApproveCheckInCompleteHappyPath(t *testing.T) {
	repo, storeID, treatmentID, customerID, _ := fixture(t, 2)
	repo.stores[storeID].RequireApproval = true
	engine := New(newMemUOW(repo), &noopPublisher{})
	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	engine.SetClock(func() time.Time { return start.Add(-24 * time.Hour) })

	b, err := engine.Create(context.Background(), CreateInput{
		CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
		BookingDateTime: start, Source: models.SourceAPI,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.Status != models.BookingPending {
		t.Fatalf("Status = %s, want pending (store requires approval)", b.Status)
	}

	if _, err := engine.Complete(context.Background(), b.ID); err == nil {
		t.Fatal("expected Complete to reject a pending booking")
	}

	approved, err := engine.Approve(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != models.BookingConfirmed {
		t.Fatalf("Status = %s, want confirmed", approved.Status)
	}

	if _, err := engine.Complete(context.Background(), b.ID); err == nil {
		t.Fatal("expected Complete to reject a confirmed booking that hasn't checked in")
	}

	checkedIn, err := engine.CheckIn(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if checkedIn.Status != models.BookingInProgress {
		t.Fatalf("Status = %s, want in_progress", checkedIn.Status)
	}

	completed, err := engine.Complete(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.Status != models.BookingCompleted {
		t.Fatalf("Status = %s, want completed", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestEngineCreatePublishesBookingCreatedEvent(t *testing.T) {
	repo, storeID, treatmentID, customerID, _ := fixture(t, 2)
	pub := &noopPublisher{}
	engine := New(newMemUOW(repo), pub)
	engine.SetClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	_, err := engine.Create(context.Background(), CreateInput{
		CustomerID: customerID, StoreID: storeID, TreatmentID: treatmentID,
		BookingDateTime: start, Source: models.SourceAPI,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if pub.count() != 1 {
		t.Errorf("published %d events, want 1", pub.count())
	}
}
