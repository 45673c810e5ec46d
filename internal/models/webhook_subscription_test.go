package models

import (
	"testing"
	"time"
)

func TestSubscriptionSubscribes(t *testing.T) {
	sub := WebhookSubscription{
		IsActive: true,
		Events:   EventTypeSet{EventBookingCreated, EventBookingCancelled},
	}
	if !sub.Subscribes(EventBookingCreated) {
		t.Error("expected an active subscription to match a subscribed event type")
	}
	if sub.Subscribes(EventBookingCompleted) {
		t.Error("expected an active subscription to reject an unsubscribed event type")
	}

	sub.IsActive = false
	if sub.Subscribes(EventBookingCreated) {
		t.Error("expected an inactive subscription to never match")
	}
}

func TestRecordSuccessResetsRetryState(t *testing.T) {
	sub := WebhookSubscription{RetryCount: 3, LastFailureReason: "http 500"}
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	sub.RecordSuccess(now)

	if sub.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", sub.RetryCount)
	}
	if sub.LastFailureReason != "" {
		t.Errorf("LastFailureReason = %q, want empty", sub.LastFailureReason)
	}
	if sub.LastSuccessAt == nil || !sub.LastSuccessAt.Equal(now) {
		t.Error("expected LastSuccessAt to be set to now")
	}
}

func TestRecordFailureDisablesAfterMaxRetries(t *testing.T) {
	sub := WebhookSubscription{IsActive: true, MaxRetries: 3}
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	sub.RecordFailure(now, "timeout")
	if !sub.IsActive || sub.RetryCount != 1 {
		t.Fatalf("after 1 failure: IsActive=%v RetryCount=%d", sub.IsActive, sub.RetryCount)
	}
	sub.RecordFailure(now, "timeout")
	if !sub.IsActive || sub.RetryCount != 2 {
		t.Fatalf("after 2 failures: IsActive=%v RetryCount=%d", sub.IsActive, sub.RetryCount)
	}
	sub.RecordFailure(now, "timeout")
	if sub.IsActive {
		t.Error("expected subscription to be disabled once RetryCount reaches MaxRetries")
	}
	if sub.RetryCount != 3 {
		t.Errorf("RetryCount = %d, want 3", sub.RetryCount)
	}
}

func TestHealthPriorityOrder(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	disabled := WebhookSubscription{IsActive: false}
	if got := disabled.Health(now); got != HealthDisabled {
		t.Errorf("disabled: Health = %s, want disabled", got)
	}

	retrying := WebhookSubscription{IsActive: true, RetryCount: 1}
	if got := retrying.Health(now); got != HealthRetrying {
		t.Errorf("retrying: Health = %s, want retrying", got)
	}

	recentFailure := now.Add(-time.Hour)
	warning := WebhookSubscription{IsActive: true, RetryCount: 0, LastFailureAt: &recentFailure}
	if got := warning.Health(now); got != HealthWarning {
		t.Errorf("warning: Health = %s, want warning", got)
	}

	inactiveNoSuccess := WebhookSubscription{IsActive: true, RetryCount: 0}
	if got := inactiveNoSuccess.Health(now); got != HealthInactive {
		t.Errorf("never succeeded: Health = %s, want inactive", got)
	}

	staleSuccess := now.Add(-48 * time.Hour)
	inactiveStale := WebhookSubscription{IsActive: true, RetryCount: 0, LastSuccessAt: &staleSuccess}
	if got := inactiveStale.Health(now); got != HealthInactive {
		t.Errorf("stale success: Health = %s, want inactive", got)
	}

	recentSuccess := now.Add(-time.Hour)
	healthy := WebhookSubscription{IsActive: true, RetryCount: 0, LastSuccessAt: &recentSuccess}
	if got := healthy.Health(now); got != HealthHealthy {
		t.Errorf("recent success: Health = %s, want healthy", got)
	}
}
