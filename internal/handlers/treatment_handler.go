package handlers

import (
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/domain/catalog"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/models"
)

// TreatmentHandler implements the Catalog component's treatment CRUD (§4.2,
// §6).
type TreatmentHandler struct {
	db *gorm.DB
}

func NewTreatmentHandler(db *gorm.DB) *TreatmentHandler {
	return &TreatmentHandler{db: db}
}

type TreatmentRequest struct {
	Name                  string             `json:"name" binding:"required"`
	Description           string             `json:"description"`
	Category              string             `json:"category"`
	DurationMinutes       int                `json:"durationMinutes" binding:"required,min=1"`
	PriceAmount           float64            `json:"priceAmount"`
	PriceCurrency         string             `json:"priceCurrency"`
	RequiredStaffLevel    models.StaffLevel  `json:"requiredStaffLevel"`
	MaxConcurrentBookings int                `json:"maxConcurrentBookings"`
	Tags                  []string           `json:"tags"`
	RequiredResourceIDs   []uuid.UUID        `json:"requiredResourceIds"`
}

func (h *TreatmentHandler) Create(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}

	var req TreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}
	if req.RequiredStaffLevel == "" {
		req.RequiredStaffLevel = models.LevelAny
	}
	if req.MaxConcurrentBookings <= 0 {
		req.MaxConcurrentBookings = 1
	}
	if req.PriceCurrency == "" {
		req.PriceCurrency = "USD"
	}

	resources, err := h.loadAndValidateResources(c, storeID, req.RequiredResourceIDs)
	if err != nil {
		return
	}

	t := models.Treatment{
		ID:                    uuid.New(),
		StoreID:               storeID,
		Name:                  req.Name,
		Description:           req.Description,
		Category:              req.Category,
		DurationMinutes:       req.DurationMinutes,
		Price:                 models.Money{Amount: req.PriceAmount, Currency: req.PriceCurrency},
		RequiredStaffLevel:    req.RequiredStaffLevel,
		MaxConcurrentBookings: req.MaxConcurrentBookings,
		Tags:                  req.Tags,
		RequiredResources:     resources,
		IsActive:              true,
	}
	if err := h.db.Create(&t).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to create treatment"))
		return
	}
	httpresp.OK(c, 201, t)
}

func (h *TreatmentHandler) List(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}

	var treatments []models.Treatment
	if err := h.db.Preload("RequiredResources").
		Where("store_id = ?", storeID).
		Order("name ASC").
		Find(&treatments).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to list treatments"))
		return
	}
	httpresp.OK(c, 200, treatments)
}

func (h *TreatmentHandler) Get(c *gin.Context) {
	t, err := h.loadTreatment(c)
	if err != nil {
		return
	}
	httpresp.OK(c, 200, t)
}

func (h *TreatmentHandler) Update(c *gin.Context) {
	t, err := h.loadTreatment(c)
	if err != nil {
		return
	}

	var req TreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	if req.RequiredResourceIDs != nil {
		resources, err := h.loadAndValidateResources(c, t.StoreID, req.RequiredResourceIDs)
		if err != nil {
			return
		}
		if err := h.db.Model(t).Association("RequiredResources").Replace(resources); err != nil {
			httperr.Write(c, httperr.InternalErr("failed to update required resources"))
			return
		}
	}

	t.Name = req.Name
	t.Description = req.Description
	t.Category = req.Category
	t.DurationMinutes = req.DurationMinutes
	if req.PriceCurrency != "" {
		t.Price = models.Money{Amount: req.PriceAmount, Currency: req.PriceCurrency}
	}
	if req.RequiredStaffLevel != "" {
		t.RequiredStaffLevel = req.RequiredStaffLevel
	}
	if req.MaxConcurrentBookings > 0 {
		t.MaxConcurrentBookings = req.MaxConcurrentBookings
	}
	t.Tags = req.Tags

	if err := h.db.Save(t).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to update treatment"))
		return
	}
	httpresp.OK(c, 200, t)
}

// Deactivate flips a treatment inactive. Per §4.2, the request is rejected
// with a conflict while pending or confirmed bookings starting at or after
// the current time reference the treatment (see catalog.CanDeactivate).
func (h *TreatmentHandler) Deactivate(c *gin.Context) {
	t, err := h.loadTreatment(c)
	if err != nil {
		return
	}

	var activeCount int64
	h.db.Model(&models.Booking{}).
		Where("treatment_id = ? AND status IN ('pending','confirmed') AND booking_date_time >= now()", t.ID).
		Count(&activeCount)
	if !catalog.CanDeactivate(int(activeCount)) {
		httperr.Write(c, httperr.Conflict("", "treatment has pending or confirmed future bookings"))
		return
	}

	t.IsActive = false
	if err := h.db.Save(t).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to deactivate treatment"))
		return
	}
	httpresp.OK(c, 200, t)
}

func (h *TreatmentHandler) loadTreatment(c *gin.Context) (*models.Treatment, error) {
	id, err := uuid.Parse(c.Param("treatmentId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("treatmentId is not a valid identifier"))
		return nil, err
	}
	var t models.Treatment
	if err := h.db.Preload("RequiredResources").First(&t, "id = ?", id).Error; err != nil {
		httperr.Write(c, httperr.NotFoundErr("treatment not found"))
		return nil, err
	}
	if !enforceStoreScope(c, t.StoreID) {
		return nil, errStoreScope
	}
	return &t, nil
}

// loadAndValidateResources loads the requested resources and enforces the
// §4.2 cross-tenant guard: every resource must belong to storeID.
func (h *TreatmentHandler) loadAndValidateResources(c *gin.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var resources []models.Resource
	if err := h.db.Where("id IN ?", ids).Find(&resources).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to load required resources"))
		return nil, err
	}
	probe := &models.Treatment{StoreID: storeID}
	if !catalog.ValidateRequiredResources(probe, resources) || len(resources) != len(ids) {
		err := httperr.Validation("requiredResourceIds must all belong to this store")
		httperr.Write(c, err)
		return nil, err
	}
	return resources, nil
}
