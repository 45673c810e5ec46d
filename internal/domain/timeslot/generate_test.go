package timeslot

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/models"
)

func storeWithHours(hours models.OperatingHours) *models.Store {
	s := &models.Store{ID: uuid.New(), Timezone: "UTC"}
	_ = s.SetOperatingHours(hours)
	return s
}

func TestGenerateProducesContiguousSlots(t *testing.T) {
	s := storeWithHours(models.OperatingHours{
		time.Monday: {Open: "09:00", Close: "11:00"},
	})
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	slots := Generate(s, monday, 30*time.Minute, 2)
	if len(slots) != 4 {
		t.Fatalf("len(slots) = %d, want 4", len(slots))
	}
	for i, slot := range slots {
		if slot.StoreID != s.ID {
			t.Errorf("slot %d has wrong StoreID", i)
		}
		if slot.MaxCapacity != 2 {
			t.Errorf("slot %d MaxCapacity = %d, want 2", i, slot.MaxCapacity)
		}
		if !slot.IsActive {
			t.Errorf("slot %d expected to be active", i)
		}
		if i > 0 && !slot.StartTime.Equal(slots[i-1].EndTime) {
			t.Errorf("slot %d does not start where slot %d ended", i, i-1)
		}
	}
	if !slots[0].StartTime.Equal(slots[0].StartTime.Truncate(time.Minute)) {
		t.Error("expected slot boundaries to land on the minute")
	}
	if !slots[len(slots)-1].EndTime.Equal(slots[0].StartTime.Add(2 * time.Hour)) {
		t.Error("expected the last slot to end exactly at closing time")
	}
}

func TestGenerateDropsTrailingPartialSlot(t *testing.T) {
	s := storeWithHours(models.OperatingHours{
		time.Monday: {Open: "09:00", Close: "10:15"},
	})
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	slots := Generate(s, monday, 30*time.Minute, 1)
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2 (09:00-09:30, 09:30-10:00; trailing 15m discarded)", len(slots))
	}
}

func TestGenerateReturnsNilWhenClosed(t *testing.T) {
	s := storeWithHours(models.OperatingHours{
		time.Monday: {Closed: true},
	})
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	slots := Generate(s, monday, time.Hour, 1)
	if slots != nil {
		t.Errorf("expected nil slots for a closed day, got %v", slots)
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

	if !Overlaps(base, base.Add(time.Hour), base.Add(30*time.Minute), base.Add(90*time.Minute)) {
		t.Error("expected partially overlapping intervals to overlap")
	}
	if Overlaps(base, base.Add(time.Hour), base.Add(time.Hour), base.Add(2*time.Hour)) {
		t.Error("expected touching intervals to not overlap")
	}
	if !Overlaps(base, base.Add(2*time.Hour), base.Add(30*time.Minute), base.Add(90*time.Minute)) {
		t.Error("expected a fully nested interval to overlap")
	}
}

func TestAnyOverlap(t *testing.T) {
	base := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	existingID := uuid.New()
	existing := []models.Timeslot{
		{ID: existingID, StartTime: base, EndTime: base.Add(time.Hour)},
	}

	overlapping := models.Timeslot{ID: uuid.New(), StartTime: base.Add(30 * time.Minute), EndTime: base.Add(90 * time.Minute)}
	if !AnyOverlap(overlapping, existing) {
		t.Error("expected candidate overlapping an existing slot to be flagged")
	}

	nonOverlapping := models.Timeslot{ID: uuid.New(), StartTime: base.Add(time.Hour), EndTime: base.Add(2 * time.Hour)}
	if AnyOverlap(nonOverlapping, existing) {
		t.Error("expected a touching, non-overlapping candidate to not be flagged")
	}

	self := models.Timeslot{ID: existingID, StartTime: base, EndTime: base.Add(time.Hour)}
	if AnyOverlap(self, existing) {
		t.Error("expected a candidate to be excluded from comparison against itself")
	}
}

// TestGenerateAcrossDSTSpringForward checks that a 09:00-17:00 window on the
// US spring-forward date is unaffected by the missing 2-3am clock hour: both
// endpoints fall after the transition, so real elapsed time is still 8 hours
// and yields 8 contiguous 60-minute slots.
func TestGenerateAcrossDSTSpringForward(t *testing.T) {
	s := &models.Store{ID: uuid.New(), Timezone: "America/New_York"}
	_ = s.SetOperatingHours(models.OperatingHours{
		time.Sunday: {Open: "09:00", Close: "17:00"},
	})

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	transitionDay := time.Date(2026, 3, 8, 12, 0, 0, 0, loc) // second Sunday in March

	slots := Generate(s, transitionDay, time.Hour, 4)
	if len(slots) != 8 {
		t.Fatalf("len(slots) = %d, want 8", len(slots))
	}
	if got := slots[0].EndTime.Sub(slots[0].StartTime); got != time.Hour {
		t.Errorf("first slot duration = %v, want 1h", got)
	}
	last := slots[len(slots)-1]
	if got := last.EndTime.Sub(slots[0].StartTime); got != 8*time.Hour {
		t.Errorf("total window span = %v, want 8h", got)
	}
}

func TestCovers(t *testing.T) {
	base := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	slot := models.Timeslot{StartTime: base, EndTime: base.Add(time.Hour)}

	if !Covers(slot, base.Add(10*time.Minute), base.Add(40*time.Minute)) {
		t.Error("expected an interval fully inside the slot to be covered")
	}
	if Covers(slot, base.Add(-time.Minute), base.Add(30*time.Minute)) {
		t.Error("expected an interval starting before the slot to not be covered")
	}
	if Covers(slot, base.Add(30*time.Minute), base.Add(90*time.Minute)) {
		t.Error("expected an interval ending after the slot to not be covered")
	}
}
