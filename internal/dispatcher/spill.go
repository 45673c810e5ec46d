package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/models"
)

const spillKey = "dispatcher:spill"

// SpillQueue is the persistent overflow the dispatcher falls back to when
// its in-memory channel is full (§9: "dropping to persistent storage when
// full" — an implementation choice, not part of the at-least-once contract
// itself).
type SpillQueue struct {
	client *redis.Client
}

func NewSpillQueue(client *redis.Client) *SpillQueue {
	return &SpillQueue{client: client}
}

type spillRecord struct {
	StoreID   uuid.UUID        `json:"storeId"`
	EventType models.EventType `json:"eventType"`
	Body      []byte           `json:"body"`
}

func (s *SpillQueue) Push(ctx context.Context, q queuedEvent) error {
	rec := spillRecord{StoreID: q.StoreID, EventType: q.EventType, Body: q.Body}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, spillKey, b).Err()
}

func (s *SpillQueue) Pop(ctx context.Context) (queuedEvent, bool, error) {
	res, err := s.client.LPop(ctx, spillKey).Result()
	if err == redis.Nil {
		return queuedEvent{}, false, nil
	}
	if err != nil {
		return queuedEvent{}, false, err
	}
	var rec spillRecord
	if err := json.Unmarshal([]byte(res), &rec); err != nil {
		return queuedEvent{}, false, err
	}
	return queuedEvent{StoreID: rec.StoreID, EventType: rec.EventType, Body: rec.Body}, true, nil
}
