package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venora-platform/booking-engine/internal/models"
)

// WebhookGormRepository implements dispatcher.SubscriptionRepository.
type WebhookGormRepository struct {
	db *gorm.DB
}

func NewWebhookGormRepository(db *gorm.DB) *WebhookGormRepository {
	return &WebhookGormRepository{db: db}
}

func (r *WebhookGormRepository) FindActiveForEvent(ctx context.Context, storeID uuid.UUID, evt models.EventType) ([]models.WebhookSubscription, error) {
	var all []models.WebhookSubscription
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = true", storeID).
		Find(&all).Error; err != nil {
		return nil, err
	}
	out := all[:0]
	for _, s := range all {
		if s.Subscribes(evt) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *WebhookGormRepository) RecordSuccess(ctx context.Context, subID uuid.UUID, now time.Time) error {
	var sub models.WebhookSubscription
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", subID).Error; err != nil {
			return err
		}
		sub.RecordSuccess(now)
		return tx.Save(&sub).Error
	})
}

func (r *WebhookGormRepository) RecordFailure(ctx context.Context, subID uuid.UUID, now time.Time, reason string) (int, int, error) {
	var sub models.WebhookSubscription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", subID).Error; err != nil {
			return err
		}
		sub.RecordFailure(now, reason)
		return tx.Save(&sub).Error
	})
	if err != nil {
		return 0, 0, err
	}
	return sub.RetryCount, sub.MaxRetries, nil
}
