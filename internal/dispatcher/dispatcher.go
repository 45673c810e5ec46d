package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/venora-platform/booking-engine/internal/events"
	"github.com/venora-platform/booking-engine/internal/models"
)

const (
	productUserAgent = "venora-booking-engine/1.0"
	deliveryTimeout  = 30 * time.Second
)

// SubscriptionRepository is the dispatcher's persistence collaborator: it
// selects subscribers for an event and records the §4.6 health transitions.
// Reads and writes here are dispatcher-owned; nothing else mutates
// subscription counters (§5).
type SubscriptionRepository interface {
	FindActiveForEvent(ctx context.Context, storeID uuid.UUID, evt models.EventType) ([]models.WebhookSubscription, error)
	RecordSuccess(ctx context.Context, subID uuid.UUID, now time.Time) error
	RecordFailure(ctx context.Context, subID uuid.UUID, now time.Time, reason string) (retryCount, maxRetries int, err error)
}

// queuedEvent is the wire body plus enough routing metadata to select
// subscribers, precomputed once at Publish time so later mutation of the
// originating booking never changes what gets delivered.
type queuedEvent struct {
	StoreID   uuid.UUID
	EventType models.EventType
	Body      []byte
}

// Dispatcher is the Event Dispatcher of §4.6. It never blocks a caller of
// Publish on network I/O; delivery happens on background workers.
type Dispatcher struct {
	repo   SubscriptionRepository
	client *http.Client
	queue  chan queuedEvent
	spill  *SpillQueue
	nowFn  func() time.Time
}

// New builds a Dispatcher with the given bounded queue size; events beyond
// capacity are spilled to spill (may be nil, in which case they are simply
// dropped and logged — matching the §9 "implementation choice" on
// back-pressure).
func New(repo SubscriptionRepository, queueSize int, spill *SpillQueue) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &Dispatcher{
		repo:   repo,
		client: &http.Client{Timeout: deliveryTimeout},
		queue:  make(chan queuedEvent, queueSize),
		spill:  spill,
		nowFn:  time.Now,
	}
}

// SetClock overrides the dispatcher's notion of "now"; used by tests.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.nowFn = now
}

// Publish implements events.Publisher. It renders the canonical wire body
// once and enqueues it; on a full queue it spills to Redis rather than
// blocking the caller.
func (d *Dispatcher) Publish(evt events.Event) {
	body, err := json.Marshal(struct {
		EventType models.EventType `json:"eventType"`
		Timestamp string           `json:"timestamp"`
		Data      any              `json:"data"`
	}{
		EventType: evt.Type,
		Timestamp: evt.Timestamp.Format(time.RFC3339),
		Data:      evt.Data,
	})
	if err != nil {
		log.Error().Err(err).Msg("dispatcher: failed to marshal event")
		return
	}

	q := queuedEvent{StoreID: evt.StoreID, EventType: evt.Type, Body: body}
	select {
	case d.queue <- q:
	default:
		if d.spill != nil {
			if err := d.spill.Push(context.Background(), q); err != nil {
				log.Error().Err(err).Msg("dispatcher: spill push failed, dropping event")
			}
			return
		}
		log.Warn().Str("eventType", string(evt.Type)).Msg("dispatcher: queue full, dropping event")
	}
}

// Run starts numWorkers delivery goroutines and, if a spill queue is
// configured, a drainer that feeds spilled events back in once room frees
// up. Run blocks until ctx is cancelled; in-flight POSTs are allowed to
// finish (up to deliveryTimeout) but no new ones start after cancellation.
func (d *Dispatcher) Run(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	for i := 0; i < numWorkers; i++ {
		go d.worker(ctx)
	}
	if d.spill != nil {
		go d.drainSpill(ctx)
	}
	<-ctx.Done()
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-d.queue:
			d.deliver(ctx, q)
		}
	}
}

func (d *Dispatcher) drainSpill(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q, ok, err := d.spill.Pop(ctx)
			if err != nil || !ok {
				continue
			}
			select {
			case d.queue <- q:
			default:
				_ = d.spill.Push(ctx, q)
			}
		}
	}
}

// deliver sends q to every active subscriber of its event type, per the
// §4.6 subscription-selection rule.
func (d *Dispatcher) deliver(ctx context.Context, q queuedEvent) {
	subs, err := d.repo.FindActiveForEvent(ctx, q.StoreID, q.EventType)
	if err != nil {
		log.Error().Err(err).Msg("dispatcher: failed to load subscriptions")
		return
	}
	for _, sub := range subs {
		d.deliverToSubscription(ctx, sub, q)
	}
}

func (d *Dispatcher) deliverToSubscription(ctx context.Context, sub models.WebhookSubscription, q queuedEvent) {
	now := d.nowFn()
	sig := Sign(sub.Secret, q.Body)

	// The POST and its bookkeeping are detached from ctx so that cancelling
	// Run lets an in-flight delivery finish within the client timeout.
	sendCtx := context.WithoutCancel(ctx)
	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, sub.URL, bytes.NewReader(q.Body))
	if err != nil {
		d.fail(ctx, sub, now, err.Error(), q)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", sig)
	req.Header.Set("X-Timestamp", fmt.Sprintf("%d", now.Unix()))
	req.Header.Set("User-Agent", productUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		d.fail(ctx, sub, now, err.Error(), q)
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.fail(ctx, sub, now, fmt.Sprintf("http %d", resp.StatusCode), q)
		return
	}

	if err := d.repo.RecordSuccess(sendCtx, sub.ID, now); err != nil {
		log.Error().Err(err).Msg("dispatcher: failed to record delivery success")
	}
}

func (d *Dispatcher) fail(ctx context.Context, sub models.WebhookSubscription, now time.Time, reason string, q queuedEvent) {
	retryCount, maxRetries, err := d.repo.RecordFailure(context.WithoutCancel(ctx), sub.ID, now, reason)
	if err != nil {
		log.Error().Err(err).Msg("dispatcher: failed to record delivery failure")
		return
	}
	if retryCount >= maxRetries {
		return
	}

	delay := backoff(retryCount)
	time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		sub2, err := d.repo.FindActiveForEvent(ctx, q.StoreID, q.EventType)
		if err != nil {
			return
		}
		for _, s := range sub2 {
			if s.ID == sub.ID {
				d.deliverToSubscription(ctx, s, q)
				return
			}
		}
	})
}

// backoff computes the §4.6 exponential retry delay: min(2^retryCount, 60s).
func backoff(retryCount int) time.Duration {
	d := time.Duration(1) << uint(retryCount) * time.Second
	if d > 60*time.Second || d <= 0 {
		return 60 * time.Second
	}
	return d
}
