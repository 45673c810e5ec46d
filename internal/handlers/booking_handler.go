package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venora-platform/booking-engine/internal/audit"
	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/middleware"
	"github.com/venora-platform/booking-engine/internal/models"
	"github.com/venora-platform/booking-engine/internal/usecase/reservation"
)

// BookingHandler is the Reservation Engine's HTTP surface (§4.5, §6).
type BookingHandler struct {
	db     *gorm.DB
	engine *reservation.Engine
	audit  *audit.Dispatcher
}

func NewBookingHandler(db *gorm.DB, engine *reservation.Engine, auditDispatcher *audit.Dispatcher) *BookingHandler {
	return &BookingHandler{db: db, engine: engine, audit: auditDispatcher}
}

type CreateBookingRequest struct {
	CustomerID      uuid.UUID  `json:"customerId"`
	StoreID         uuid.UUID  `json:"storeId" binding:"required"`
	TreatmentID     uuid.UUID  `json:"treatmentId" binding:"required"`
	StaffID         *uuid.UUID `json:"staffId"`
	BookingDateTime time.Time  `json:"bookingDateTime" binding:"required"`
	Notes           string     `json:"notes"`
}

// Create runs the full §4.5 admission algorithm. A customer caller is always
// booked under their own identity; staff/admin callers may book on behalf of
// any customer by supplying customerId.
func (h *BookingHandler) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httperr.Write(c, httperr.Authentication("authentication required"))
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	customerID := req.CustomerID
	source := models.SourceAPI
	if !identity.Role.AtLeast(models.RoleStaff) {
		customerID = identity.UserID
		source = models.SourcePublic
	} else if customerID == uuid.Nil {
		httperr.Write(c, httperr.Validation("customerId is required"))
		return
	}

	b, err := h.engine.Create(c.Request.Context(), reservation.CreateInput{
		CustomerID:      customerID,
		StoreID:         req.StoreID,
		TreatmentID:     req.TreatmentID,
		StaffID:         req.StaffID,
		BookingDateTime: req.BookingDateTime.UTC(),
		Notes:           req.Notes,
		Source:          source,
	})
	if err != nil {
		h.auditFailure(req.StoreID, &identity, "booking_admission_failed", err)
		httperr.Write(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		StoreID:  b.StoreID,
		UserID:   &identity.UserID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	httpresp.OK(c, 201, b)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.loadBooking(c)
	if err != nil {
		return
	}
	httpresp.OK(c, 200, b)
}

// enforceBookingAccess guards the flat /bookings/:bookingId routes: a
// customer may only touch their own booking, staff/store_admin are scoped
// to the booking's store, and super_admin bypasses both checks.
func enforceBookingAccess(c *gin.Context, b *models.Booking) bool {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httperr.Write(c, httperr.Authentication("authentication required"))
		return false
	}
	if identity.Role == models.RoleSuperAdmin {
		return true
	}
	if identity.Role == models.RoleCustomer {
		if b.CustomerID != identity.UserID {
			httperr.Write(c, httperr.Authorization("you may only access your own bookings"))
			return false
		}
		return true
	}
	if identity.StoreID == nil || *identity.StoreID != b.StoreID {
		httperr.Write(c, httperr.Authorization("booking does not belong to your store"))
		return false
	}
	return true
}

// List returns bookings visible to the caller: customers see only their own,
// staff/admin see their store's, super_admin may filter by any store.
func (h *BookingHandler) List(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httperr.Write(c, httperr.Authentication("authentication required"))
		return
	}

	q := h.db.Model(&models.Booking{})
	switch {
	case identity.Role == models.RoleCustomer:
		q = q.Where("customer_id = ?", identity.UserID)
	case identity.Role.AtLeast(models.RoleStaff) && identity.Role != models.RoleSuperAdmin:
		if identity.StoreID == nil {
			httpresp.List(c, 200, []models.Booking{}, httpresp.PageMeta(1, 20, 0))
			return
		}
		q = q.Where("store_id = ?", *identity.StoreID)
	default:
		if storeIDParam := c.Query("storeId"); storeIDParam != "" {
			storeID, err := uuid.Parse(storeIDParam)
			if err != nil {
				httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
				return
			}
			q = q.Where("store_id = ?", storeID)
		}
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	page, pageSize := parsePageParams(c)
	var total int64
	q.Count(&total)

	var bookings []models.Booking
	if err := q.Order("booking_date_time DESC").Limit(pageSize).Offset((page - 1) * pageSize).Find(&bookings).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to list bookings"))
		return
	}
	httpresp.List(c, 200, bookings, httpresp.PageMeta(page, pageSize, total))
}

type ModifyBookingRequest struct {
	BookingDateTime time.Time  `json:"bookingDateTime" binding:"required"`
	StaffID         *uuid.UUID `json:"staffId"`
}

func (h *BookingHandler) Modify(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	existing, err := h.loadBooking(c)
	if err != nil {
		return
	}

	var req ModifyBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	b, err := h.engine.Modify(c.Request.Context(), reservation.ModifyInput{
		BookingID:       existing.ID,
		BookingDateTime: req.BookingDateTime.UTC(),
		StaffID:         req.StaffID,
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		StoreID:  b.StoreID,
		UserID:   &identity.UserID,
		Action:   "booking_modified",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	httpresp.OK(c, 200, b)
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// Cancel honors the cancellation deadline for customer callers; staff/admin
// callers may override it (§4.4).
func (h *BookingHandler) Cancel(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	existing, err := h.loadBooking(c)
	if err != nil {
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	override := identity.Role.AtLeast(models.RoleStaff)
	b, err := h.engine.Cancel(c.Request.Context(), existing.ID, req.Reason, override)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		StoreID:  b.StoreID,
		UserID:   &identity.UserID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	httpresp.OK(c, 200, b)
}

// Approve moves a pending booking to confirmed. Staff/admin only.
func (h *BookingHandler) Approve(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	existing, err := h.loadBooking(c)
	if err != nil {
		return
	}

	b, err := h.engine.Approve(c.Request.Context(), existing.ID)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		StoreID:  b.StoreID,
		UserID:   &identity.UserID,
		Action:   "booking_approved",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	httpresp.OK(c, 200, b)
}

// CheckIn moves a confirmed booking to in_progress. Staff/admin only.
func (h *BookingHandler) CheckIn(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	existing, err := h.loadBooking(c)
	if err != nil {
		return
	}

	b, err := h.engine.CheckIn(c.Request.Context(), existing.ID)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		StoreID:  b.StoreID,
		UserID:   &identity.UserID,
		Action:   "booking_checked_in",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	httpresp.OK(c, 200, b)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	existing, err := h.loadBooking(c)
	if err != nil {
		return
	}

	b, err := h.engine.Complete(c.Request.Context(), existing.ID)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		StoreID:  b.StoreID,
		UserID:   &identity.UserID,
		Action:   "booking_completed",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	httpresp.OK(c, 200, b)
}

func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	existing, err := h.loadBooking(c)
	if err != nil {
		return
	}

	b, err := h.engine.MarkNoShow(c.Request.Context(), existing.ID)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		StoreID:  b.StoreID,
		UserID:   &identity.UserID,
		Action:   "booking_no_show",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	httpresp.OK(c, 200, b)
}

func (h *BookingHandler) loadBooking(c *gin.Context) (*models.Booking, error) {
	id, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("bookingId is not a valid identifier"))
		return nil, err
	}
	var b models.Booking
	if err := h.db.First(&b, "id = ?", id).Error; err != nil {
		httperr.Write(c, httperr.NotFoundErr("booking not found"))
		return nil, err
	}
	if !enforceBookingAccess(c, &b) {
		return nil, errStoreScope
	}
	return &b, nil
}

func (h *BookingHandler) auditFailure(storeID uuid.UUID, identity *middleware.Identity, action string, cause error) {
	h.audit.Dispatch(audit.Event{
		StoreID:  storeID,
		UserID:   &identity.UserID,
		Action:   action,
		Entity:   "booking",
		Metadata: map[string]string{"reason": cause.Error()},
	})
}
