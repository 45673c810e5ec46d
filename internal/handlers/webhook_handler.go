package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venora-platform/booking-engine/internal/dispatcher"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/models"
)

// WebhookHandler is the Event Dispatcher component's subscription-management
// surface (§4.6, §6).
type WebhookHandler struct {
	db            *gorm.DB
	defaultSecret string
}

func NewWebhookHandler(db *gorm.DB, defaultSecret string) *WebhookHandler {
	return &WebhookHandler{db: db, defaultSecret: defaultSecret}
}

type CreateSubscriptionRequest struct {
	URL    string              `json:"url" binding:"required"`
	Events []models.EventType  `json:"events" binding:"required"`
	Secret string              `json:"secret"`
}

func (h *WebhookHandler) Create(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	secret := req.Secret
	if secret == "" {
		secret = h.defaultSecret
	}
	if secret == "" {
		httperr.Write(c, httperr.Validation("secret is required when no default is configured"))
		return
	}

	sub := models.WebhookSubscription{
		ID:         uuid.New(),
		StoreID:    storeID,
		URL:        req.URL,
		Events:     req.Events,
		Secret:     secret,
		IsActive:   true,
		MaxRetries: 5,
	}
	if err := h.db.Create(&sub).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to create subscription"))
		return
	}
	httpresp.OK(c, 201, sub)
}

func (h *WebhookHandler) List(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}
	var subs []models.WebhookSubscription
	if err := h.db.Where("store_id = ?", storeID).Order("created_at DESC").Find(&subs).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to list subscriptions"))
		return
	}
	httpresp.OK(c, 200, subs)
}

type UpdateSubscriptionRequest struct {
	URL      *string             `json:"url"`
	Events   []models.EventType  `json:"events"`
	IsActive *bool               `json:"isActive"`
}

func (h *WebhookHandler) Update(c *gin.Context) {
	sub, err := h.loadSubscription(c)
	if err != nil {
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}
	if req.URL != nil {
		sub.URL = *req.URL
	}
	if req.Events != nil {
		sub.Events = req.Events
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
		if *req.IsActive {
			// Re-enabling clears the retry counter that disabled it (§4.6).
			sub.RetryCount = 0
		}
	}

	if err := h.db.Save(sub).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to update subscription"))
		return
	}
	httpresp.OK(c, 200, sub)
}

func (h *WebhookHandler) Delete(c *gin.Context) {
	sub, err := h.loadSubscription(c)
	if err != nil {
		return
	}
	if err := h.db.Delete(sub).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to delete subscription"))
		return
	}
	httpresp.OK(c, 200, gin.H{"deleted": true})
}

// Health reports the §4.6 derived health status for a store's subscriptions.
func (h *WebhookHandler) Health(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}
	var subs []models.WebhookSubscription
	if err := h.db.Where("store_id = ?", storeID).Find(&subs).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to load subscriptions"))
		return
	}

	now := time.Now().UTC()
	out := make([]dispatcher.SubscriptionHealth, 0, len(subs))
	for _, s := range subs {
		out = append(out, dispatcher.Snapshot(s, now))
	}
	httpresp.OK(c, 200, out)
}

func (h *WebhookHandler) loadSubscription(c *gin.Context) (*models.WebhookSubscription, error) {
	id, err := uuid.Parse(c.Param("subscriptionId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("subscriptionId is not a valid identifier"))
		return nil, err
	}
	var sub models.WebhookSubscription
	if err := h.db.First(&sub, "id = ?", id).Error; err != nil {
		httperr.Write(c, httperr.NotFoundErr("subscription not found"))
		return nil, err
	}
	if !enforceStoreScope(c, sub.StoreID) {
		return nil, errStoreScope
	}
	return &sub, nil
}
