package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/venora-platform/booking-engine/internal/config"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/models"
	"github.com/venora-platform/booking-engine/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a customer account, scoped to no store, per §4.2's
// "customers are store-agnostic" rule — a customer books across any store
// that allows online booking.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validators.IsEmailDomainValid(email) {
		httperr.Write(c, httperr.Validation("email domain does not look valid"))
		return
	}

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

	user := models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to create user"))
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Write(c, httperr.InternalErr("failed to generate token"))
		return
	}

	httpresp.OK(c, 201, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		httperr.Write(c, httperr.Authentication("invalid credentials"))
		return
	}
	if !user.IsActive {
		httperr.Write(c, httperr.Authentication("account is disabled"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Write(c, httperr.Authentication("invalid credentials"))
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Write(c, httperr.InternalErr("failed to generate token"))
		return
	}

	httpresp.OK(c, 200, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(h.config.JWTAccessTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	if user.StoreID != nil {
		claims["storeId"] = user.StoreID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
