// Package timeslot holds the pure Timeslot Index logic of §4.3: generating a
// contiguous sequence of buckets from a store's operating hours, and the
// overlap/coverage predicates the admission algorithm relies on.
package timeslot

import (
	"time"

	"github.com/google/uuid"

	domstore "github.com/venora-platform/booking-engine/internal/domain/store"
	"github.com/venora-platform/booking-engine/internal/models"
)

// Generate emits the contiguous sequence of timeslots for a store's operating
// window on localDate, each of length slotDuration, halting when a slot would
// extend past closing time (the trailing partial slot is discarded). Returns
// an empty, nil slice if the store is closed that day.
func Generate(s *models.Store, localDate time.Time, slotDuration time.Duration, maxCapacity int) []models.Timeslot {
	open, close, ok := domstore.WindowFor(s, localDate)
	if !ok {
		return nil
	}

	var out []models.Timeslot
	for start := open; !start.Add(slotDuration).After(close); start = start.Add(slotDuration) {
		out = append(out, models.Timeslot{
			ID:          uuid.New(),
			StoreID:     s.ID,
			StartTime:   start.UTC(),
			EndTime:     start.Add(slotDuration).UTC(),
			MaxCapacity: maxCapacity,
			IsActive:    true,
		})
	}
	return out
}

// Overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) overlap under the §4.5 predicate: a < d AND c < b. Touching
// intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// AnyOverlap reports whether candidate overlaps any timeslot already in
// existing, per the §3 non-overlap invariant.
func AnyOverlap(candidate models.Timeslot, existing []models.Timeslot) bool {
	for _, e := range existing {
		if e.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, e.StartTime, e.EndTime) {
			return true
		}
	}
	return false
}

// Covers reports whether timeslot fully contains the booking interval
// [start, end): T.startTime ≤ start AND T.endTime ≥ end, per §4.5 rule 1.
func Covers(t models.Timeslot, start, end time.Time) bool {
	return t.Covers(start, end)
}
