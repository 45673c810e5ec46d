// Package events defines the lifecycle event contract shared between the
// Reservation Engine (producer) and the Event Dispatcher (consumer), per §6:
// events are enqueued on commit and delivered asynchronously — the producer
// never blocks on delivery.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/models"
)

// Event is one lifecycle transition destined for registered webhook
// subscribers.
type Event struct {
	Type      models.EventType `json:"eventType"`
	StoreID   uuid.UUID        `json:"-"`
	Timestamp time.Time        `json:"timestamp"`
	Data      any              `json:"data"`
}

// Publisher enqueues an event for asynchronous delivery. Publish must not
// block the caller on network I/O; it returns once the event is queued.
type Publisher interface {
	Publish(evt Event)
}

// BookingCreatedData is the payload of a booking.created event.
type BookingCreatedData struct {
	Booking *models.Booking `json:"booking"`
}

// BookingUpdatedData is the payload of a booking.updated event.
type BookingUpdatedData struct {
	Booking       *models.Booking `json:"booking"`
	ChangedFields []string        `json:"changedFields"`
}

// BookingCancelledData is the payload of a booking.cancelled event.
type BookingCancelledData struct {
	Booking             *models.Booking `json:"booking"`
	CancellationReason string          `json:"cancellationReason"`
}

// BookingCompletedData is the payload of a booking.completed event.
type BookingCompletedData struct {
	Booking     *models.Booking `json:"booking"`
	CompletedAt time.Time       `json:"completedAt"`
}

// AvailabilityChangedData is the payload of an availability.changed event.
type AvailabilityChangedData struct {
	StoreID uuid.UUID `json:"storeId"`
	Date    string    `json:"date"`
}
