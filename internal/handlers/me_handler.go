package handlers

import (
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/middleware"
	"github.com/venora-platform/booking-engine/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httperr.Write(c, httperr.Authentication("authentication required"))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", identity.UserID).Error; err != nil {
		httperr.Write(c, httperr.NotFoundErr("user not found"))
		return
	}
	httpresp.OK(c, 200, user)
}
