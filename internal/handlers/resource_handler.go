package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/models"
)

// ResourceHandler implements the Catalog component's resource CRUD (§4.2).
type ResourceHandler struct {
	db *gorm.DB
}

func NewResourceHandler(db *gorm.DB) *ResourceHandler {
	return &ResourceHandler{db: db}
}

type ResourceRequest struct {
	Name     string              `json:"name" binding:"required"`
	Type     models.ResourceType `json:"type" binding:"required"`
	Capacity int                 `json:"capacity"`
}

func (h *ResourceHandler) Create(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}

	var req ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}
	if req.Capacity <= 0 {
		req.Capacity = 1
	}

	r := models.Resource{
		ID:       uuid.New(),
		StoreID:  storeID,
		Name:     req.Name,
		Type:     req.Type,
		Capacity: req.Capacity,
		IsActive: true,
	}
	if err := h.db.Create(&r).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to create resource"))
		return
	}
	httpresp.OK(c, 201, r)
}

func (h *ResourceHandler) List(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}
	var resources []models.Resource
	if err := h.db.Where("store_id = ?", storeID).Order("name ASC").Find(&resources).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to list resources"))
		return
	}
	httpresp.OK(c, 200, resources)
}

func (h *ResourceHandler) Update(c *gin.Context) {
	r, err := h.loadResource(c)
	if err != nil {
		return
	}

	var req ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	r.Name = req.Name
	if req.Type != "" {
		r.Type = req.Type
	}
	if req.Capacity > 0 {
		r.Capacity = req.Capacity
	}

	if err := h.db.Save(r).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to update resource"))
		return
	}
	httpresp.OK(c, 200, r)
}

func (h *ResourceHandler) Deactivate(c *gin.Context) {
	r, err := h.loadResource(c)
	if err != nil {
		return
	}
	r.IsActive = false
	if err := h.db.Save(r).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to deactivate resource"))
		return
	}
	httpresp.OK(c, 200, r)
}

func (h *ResourceHandler) loadResource(c *gin.Context) (*models.Resource, error) {
	id, err := uuid.Parse(c.Param("resourceId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("resourceId is not a valid identifier"))
		return nil, err
	}
	var r models.Resource
	if err := h.db.First(&r, "id = ?", id).Error; err != nil {
		httperr.Write(c, httperr.NotFoundErr("resource not found"))
		return nil, err
	}
	if !enforceStoreScope(c, r.StoreID) {
		return nil, errStoreScope
	}
	return &r, nil
}
