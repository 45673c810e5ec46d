package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType names the lifecycle transitions the dispatcher can deliver (§6).
type EventType string

const (
	EventBookingCreated      EventType = "booking.created"
	EventBookingUpdated      EventType = "booking.updated"
	EventBookingCancelled    EventType = "booking.cancelled"
	EventBookingCompleted    EventType = "booking.completed"
	EventAvailabilityChanged EventType = "availability.changed"
)

// WebhookSubscription is a registered HTTP endpoint that receives signed lifecycle
// events for a subset of EventType values.
type WebhookSubscription struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`

	URL    string       `gorm:"size:500;not null" json:"url"`
	Events EventTypeSet `gorm:"type:text;not null" json:"events"`

	Secret string `gorm:"size:128;not null" json:"-"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	RetryCount int `gorm:"default:0" json:"retry_count"`
	MaxRetries int `gorm:"default:5" json:"max_retries"`

	LastSuccessAt    *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt    *time.Time `json:"last_failure_at,omitempty"`
	LastFailureReason string    `gorm:"size:500" json:"last_failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscribes reports whether the subscription is active and listens for evt.
func (s WebhookSubscription) Subscribes(evt EventType) bool {
	return s.IsActive && s.Events.Contains(evt)
}

// RecordSuccess applies the §4.6 success transition.
func (s *WebhookSubscription) RecordSuccess(now time.Time) {
	s.LastSuccessAt = &now
	s.RetryCount = 0
	s.LastFailureReason = ""
}

// RecordFailure applies the §4.6 failure transition, disabling the subscription once
// retryCount reaches maxRetries.
func (s *WebhookSubscription) RecordFailure(now time.Time, reason string) {
	s.LastFailureAt = &now
	s.LastFailureReason = reason
	s.RetryCount++
	if s.RetryCount >= s.MaxRetries {
		s.IsActive = false
	}
}

// HealthStatus is the derived subscription health of §4.6.
type HealthStatus string

const (
	HealthDisabled HealthStatus = "disabled"
	HealthRetrying HealthStatus = "retrying"
	HealthWarning  HealthStatus = "warning"
	HealthInactive HealthStatus = "inactive"
	HealthHealthy  HealthStatus = "healthy"
)

// Health derives the subscription's health status as of now, in the priority order
// given by §4.6.
func (s WebhookSubscription) Health(now time.Time) HealthStatus {
	if !s.IsActive {
		return HealthDisabled
	}
	if s.RetryCount > 0 {
		return HealthRetrying
	}
	if s.LastFailureAt != nil && now.Sub(*s.LastFailureAt) <= 24*time.Hour {
		return HealthWarning
	}
	if s.LastSuccessAt == nil || now.Sub(*s.LastSuccessAt) > 24*time.Hour {
		return HealthInactive
	}
	return HealthHealthy
}
