// Package timeslot is the transactional wrapper around the pure Timeslot
// Index generation logic of §4.3: it owns the delete-then-insert semantics
// and the 30-day range cap, but delegates the actual bucket math to
// internal/domain/timeslot.
package timeslot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domts "github.com/venora-platform/booking-engine/internal/domain/timeslot"
	"github.com/venora-platform/booking-engine/internal/events"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/infra/lock"
	"github.com/venora-platform/booking-engine/internal/models"
	"github.com/venora-platform/booking-engine/internal/timezone"
)

const maxRangeDays = 30

// Generator implements the §4.3 GenerateDailySlots/GenerateRange operations.
type Generator struct {
	db       *gorm.DB
	storeLck *lock.StoreLock
	publish  events.Publisher
}

func NewGenerator(db *gorm.DB, storeLck *lock.StoreLock, publish events.Publisher) *Generator {
	return &Generator{db: db, storeLck: storeLck, publish: publish}
}

// GenerateDailySlots regenerates a store's timeslots for one local calendar
// date. Existing slots for that date are deleted first, but only if none of
// them carry a live booking; otherwise the whole call fails with a conflict
// and no writes occur.
func (g *Generator) GenerateDailySlots(ctx context.Context, storeID uuid.UUID, localDate time.Time, slotDuration time.Duration, maxCapacity int) ([]models.Timeslot, error) {
	if slotDuration <= 0 {
		slotDuration = time.Hour
	}
	if maxCapacity <= 0 {
		maxCapacity = 1
	}

	handle, err := g.storeLck.Acquire(ctx, storeID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = handle.Release(ctx) }()

	var created []models.Timeslot
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var store models.Store
		if err := tx.First(&store, "id = ?", storeID).Error; err != nil {
			return httperr.NotFoundErr("store not found")
		}

		day := time.Date(localDate.Year(), localDate.Month(), localDate.Day(), 12, 0, 0, 0, timezone.Location(store.Timezone))
		dayStart := timezone.StartOfDay(day, store.Timezone)
		dayEnd := dayStart.Add(24 * time.Hour)

		var existing []models.Timeslot
		if err := tx.Where("store_id = ? AND start_time >= ? AND start_time < ?", storeID, dayStart, dayEnd).
			Find(&existing).Error; err != nil {
			return err
		}
		for _, s := range existing {
			if s.CurrentBookings > 0 {
				return httperr.Conflict("", "cannot regenerate timeslots with live bookings")
			}
		}
		if len(existing) > 0 {
			ids := make([]uuid.UUID, len(existing))
			for i, s := range existing {
				ids[i] = s.ID
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.Timeslot{}).Error; err != nil {
				return err
			}
		}

		slots := domts.Generate(&store, day, slotDuration, maxCapacity)
		if len(slots) == 0 {
			created = []models.Timeslot{}
			return nil
		}
		if err := tx.Create(&slots).Error; err != nil {
			return err
		}
		created = slots
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.publish.Publish(events.Event{
		Type:      models.EventAvailabilityChanged,
		StoreID:   storeID,
		Timestamp: time.Now().UTC(),
		Data: events.AvailabilityChangedData{
			StoreID: storeID,
			Date:    localDate.Format("2006-01-02"),
		},
	})
	return created, nil
}

// GenerateRange invokes GenerateDailySlots for every date in [startDate,
// endDate], capped at 30 days per §6.
func (g *Generator) GenerateRange(ctx context.Context, storeID uuid.UUID, startDate, endDate time.Time, slotDuration time.Duration, maxCapacity int) (map[string][]models.Timeslot, error) {
	if endDate.Before(startDate) {
		return nil, httperr.Validation("endDate must not precede startDate")
	}
	days := int(endDate.Sub(startDate).Hours()/24) + 1
	if days > maxRangeDays {
		return nil, httperr.Validation(fmt.Sprintf("range exceeds the %d-day cap", maxRangeDays))
	}

	out := make(map[string][]models.Timeslot, days)
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		slots, err := g.GenerateDailySlots(ctx, storeID, d, slotDuration, maxCapacity)
		if err != nil {
			return nil, err
		}
		out[d.Format("2006-01-02")] = slots
	}
	return out, nil
}
