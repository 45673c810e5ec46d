package dispatcher

import (
	"time"

	"github.com/venora-platform/booking-engine/internal/models"
)

// SubscriptionHealth is the read-model handlers project a subscription into
// for the GET endpoint of §4.6.
type SubscriptionHealth struct {
	ID                string              `json:"id"`
	Status            models.HealthStatus `json:"status"`
	RetryCount        int                 `json:"retryCount"`
	MaxRetries        int                 `json:"maxRetries"`
	LastSuccessAt     *time.Time          `json:"lastSuccessAt,omitempty"`
	LastFailureAt     *time.Time          `json:"lastFailureAt,omitempty"`
	LastFailureReason string              `json:"lastFailureReason,omitempty"`
}

// Snapshot derives the §4.6 health read-model for sub as of now.
func Snapshot(sub models.WebhookSubscription, now time.Time) SubscriptionHealth {
	return SubscriptionHealth{
		ID:                sub.ID.String(),
		Status:            sub.Health(now),
		RetryCount:        sub.RetryCount,
		MaxRetries:        sub.MaxRetries,
		LastSuccessAt:     sub.LastSuccessAt,
		LastFailureAt:     sub.LastFailureAt,
		LastFailureReason: sub.LastFailureReason,
	}
}
