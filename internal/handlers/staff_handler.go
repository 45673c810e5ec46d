package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/models"
)

// StaffHandler manages the store-scoped staff/store_admin roster that the
// Reservation Engine's staff-eligibility check (§4.5) reads from.
type StaffHandler struct {
	db *gorm.DB
}

func NewStaffHandler(db *gorm.DB) *StaffHandler {
	return &StaffHandler{db: db}
}

type CreateStaffRequest struct {
	Name       string            `json:"name" binding:"required"`
	Email      string            `json:"email" binding:"required,email"`
	Password   string            `json:"password" binding:"required,min=6"`
	Phone      string            `json:"phone"`
	Role       models.Role       `json:"role"`
	SkillLevel models.StaffLevel `json:"skillLevel"`
}

func (h *StaffHandler) Create(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}
	if req.Role != models.RoleStoreAdmin && req.Role != models.RoleStaff {
		req.Role = models.RoleStaff
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	h.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		httperr.Write(c, httperr.Validation("email already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Write(c, httperr.InternalErr("failed to hash password"))
		return
	}

	var level *models.StaffLevel
	if req.SkillLevel != "" {
		level = &req.SkillLevel
	}

	user := models.User{
		ID:           uuid.New(),
		StoreID:      &storeID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         req.Role,
		SkillLevel:   level,
		IsActive:     true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to create staff member"))
		return
	}
	httpresp.OK(c, 201, user)
}

func (h *StaffHandler) List(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}
	var staff []models.User
	if err := h.db.Where("store_id = ? AND role IN ?", storeID, []models.Role{models.RoleStaff, models.RoleStoreAdmin}).
		Order("name ASC").
		Find(&staff).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to list staff"))
		return
	}
	httpresp.OK(c, 200, staff)
}

type UpdateStaffRequest struct {
	Name       *string            `json:"name"`
	Phone      *string            `json:"phone"`
	SkillLevel *models.StaffLevel `json:"skillLevel"`
	IsActive   *bool              `json:"isActive"`
}

func (h *StaffHandler) Update(c *gin.Context) {
	u, err := h.loadStaff(c)
	if err != nil {
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.SkillLevel != nil {
		u.SkillLevel = req.SkillLevel
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.db.Save(u).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to update staff member"))
		return
	}
	httpresp.OK(c, 200, u)
}

func (h *StaffHandler) loadStaff(c *gin.Context) (*models.User, error) {
	id, err := uuid.Parse(c.Param("staffId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("staffId is not a valid identifier"))
		return nil, err
	}
	var u models.User
	if err := h.db.Where("id = ? AND role IN ?", id, []models.Role{models.RoleStaff, models.RoleStoreAdmin}).
		First(&u).Error; err != nil {
		httperr.Write(c, httperr.NotFoundErr("staff member not found"))
		return nil, err
	}
	if u.StoreID == nil || !enforceStoreScope(c, *u.StoreID) {
		if u.StoreID == nil {
			httperr.Write(c, httperr.NotFoundErr("staff member not found"))
		}
		return nil, errStoreScope
	}
	return &u, nil
}
