package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	domstore "github.com/venora-platform/booking-engine/internal/domain/store"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/middleware"
	"github.com/venora-platform/booking-engine/internal/models"
	"github.com/venora-platform/booking-engine/internal/timezone"
)

// StoreHandler implements the Store Registry component's HTTP surface (§4.1,
// §6): tenant CRUD, operating hours, and quota settings.
type StoreHandler struct {
	db *gorm.DB
}

func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return &StoreHandler{db: db}
}

type CreateStoreRequest struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	Timezone string `json:"timezone" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Create registers a new store. Only super_admin may call this — the tenant
// has no owner yet for a store-scoped check to latch onto.
func (h *StoreHandler) Create(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	store := models.Store{
		ID:                    uuid.New(),
		Name:                  req.Name,
		Slug:                  req.Slug,
		Timezone:              req.Timezone,
		Phone:                 req.Phone,
		Address:               req.Address,
		BufferTimeMinutes:     15,
		MaxAdvanceBookingDays: 90,
		CancellationDeadlineH: 24,
		AllowOnlineBooking:    true,
		IsActive:              true,
	}
	if err := store.SetOperatingHours(models.OperatingHours{}); err != nil {
		httperr.Write(c, httperr.InternalErr("failed to initialize operating hours"))
		return
	}

	if err := h.db.Create(&store).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to create store"))
		return
	}
	httpresp.OK(c, 201, store)
}

// StoreResponse embeds a store with a real-time open/closed flag computed
// against the caller's request time in the store's own timezone.
type StoreResponse struct {
	*models.Store
	IsOpenNow bool `json:"is_open_now"`
}

func (h *StoreHandler) Get(c *gin.Context) {
	store, err := h.loadStore(c)
	if err != nil {
		return
	}
	httpresp.OK(c, 200, StoreResponse{Store: store, IsOpenNow: domstore.IsOpenNow(store, timezone.Now())})
}

// List returns stores visible to the caller: every store for super_admin,
// or just the caller's own store otherwise.
func (h *StoreHandler) List(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	page, pageSize := parsePageParams(c)
	q := h.db.Model(&models.Store{})
	if identity.Role != models.RoleSuperAdmin {
		if identity.StoreID == nil {
			httpresp.List(c, 200, []models.Store{}, httpresp.PageMeta(page, pageSize, 0))
			return
		}
		q = q.Where("id = ?", *identity.StoreID)
	}

	var total int64
	q.Count(&total)

	var stores []models.Store
	if err := q.Order("name ASC").Limit(pageSize).Offset((page - 1) * pageSize).Find(&stores).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to list stores"))
		return
	}
	httpresp.List(c, 200, stores, httpresp.PageMeta(page, pageSize, total))
}

type UpdateStoreRequest struct {
	Name                  *string                 `json:"name"`
	Phone                 *string                 `json:"phone"`
	Address               *string                 `json:"address"`
	Timezone              *string                 `json:"timezone"`
	OperatingHours        *models.OperatingHours  `json:"operatingHours"`
	AllowOnlineBooking    *bool                   `json:"allowOnlineBooking"`
	RequireApproval       *bool                   `json:"requireApproval"`
	MaxAdvanceBookingDays *int                    `json:"maxAdvanceBookingDays"`
	CancellationDeadlineH *int                    `json:"cancellationDeadlineHours"`
	IsActive              *bool                   `json:"isActive"`
}

func (h *StoreHandler) Update(c *gin.Context) {
	store, err := h.loadStore(c)
	if err != nil {
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Phone != nil {
		store.Phone = *req.Phone
	}
	if req.Address != nil {
		store.Address = *req.Address
	}
	if req.Timezone != nil {
		store.Timezone = *req.Timezone
	}
	if req.OperatingHours != nil {
		if err := store.SetOperatingHours(*req.OperatingHours); err != nil {
			httperr.Write(c, httperr.Validation("invalid operating hours"))
			return
		}
	}
	if req.AllowOnlineBooking != nil {
		store.AllowOnlineBooking = *req.AllowOnlineBooking
	}
	if req.RequireApproval != nil {
		store.RequireApproval = *req.RequireApproval
	}
	if req.MaxAdvanceBookingDays != nil {
		store.MaxAdvanceBookingDays = *req.MaxAdvanceBookingDays
	}
	if req.CancellationDeadlineH != nil {
		store.CancellationDeadlineH = *req.CancellationDeadlineH
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := h.db.Save(store).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to update store"))
		return
	}
	httpresp.OK(c, 200, store)
}

// UpdateQuotas applies the §6 shallow-merge quota patch: absent keys keep
// their prior value, an explicit null clears the field.
func (h *StoreHandler) UpdateQuotas(c *gin.Context) {
	store, err := h.loadStore(c)
	if err != nil {
		return
	}

	var patch models.QuotaSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	store.ApplyQuotaPatch(patch)
	if err := h.db.Save(store).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to update quotas"))
		return
	}
	httpresp.OK(c, 200, store)
}

func (h *StoreHandler) loadStore(c *gin.Context) (*models.Store, error) {
	id, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return nil, err
	}
	var store models.Store
	if err := h.db.First(&store, "id = ?", id).Error; err != nil {
		httperr.Write(c, httperr.NotFoundErr("store not found"))
		return nil, err
	}
	return &store, nil
}

func parsePageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// errStoreScope is a sentinel returned by loaders after enforceStoreScope
// has already written the HTTP response.
var errStoreScope = errors.New("resource does not belong to caller's store")

// enforceStoreScope guards the top-level /treatments/:id, /resources/:id,
// /staff/:id and /webhooks/:id routes, which aren't nested under
// /stores/:storeId and so never pass through RequireStoreScope. super_admin
// bypasses; every other caller's identity.StoreID must match the resource's
// owning store.
func enforceStoreScope(c *gin.Context, resourceStoreID uuid.UUID) bool {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httperr.Write(c, httperr.Authentication("authentication required"))
		return false
	}
	if identity.Role == models.RoleSuperAdmin {
		return true
	}
	if identity.StoreID == nil || *identity.StoreID != resourceStoreID {
		httperr.Write(c, httperr.Authorization("resource does not belong to your store"))
		return false
	}
	return true
}
