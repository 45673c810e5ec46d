package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/httpresp"
	"github.com/venora-platform/booking-engine/internal/models"
	"github.com/venora-platform/booking-engine/internal/timezone"
	"github.com/venora-platform/booking-engine/internal/usecase/timeslot"
)

// TimeslotHandler is the Timeslot Index component's HTTP surface (§4.3, §6):
// generation and read-only availability queries.
type TimeslotHandler struct {
	db  *gorm.DB
	gen *timeslot.Generator
}

func NewTimeslotHandler(db *gorm.DB, gen *timeslot.Generator) *TimeslotHandler {
	return &TimeslotHandler{db: db, gen: gen}
}

type GenerateSlotsRequest struct {
	Date            string `json:"date" binding:"required"`
	EndDate         string `json:"endDate"`
	SlotDurationMin int    `json:"slotDurationMinutes"`
	MaxCapacity     int    `json:"maxCapacity"`
}

// Generate rebuilds a store's timeslots for one date, or a range up to the
// §6 30-day cap when endDate is supplied.
func (h *TimeslotHandler) Generate(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}

	var req GenerateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, httperr.Validation("invalid request body"))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httperr.Write(c, httperr.Validation("date must be YYYY-MM-DD"))
		return
	}

	duration := time.Duration(req.SlotDurationMin) * time.Minute

	if req.EndDate == "" {
		slots, err := h.gen.GenerateDailySlots(c.Request.Context(), storeID, date, duration, req.MaxCapacity)
		if err != nil {
			httperr.Write(c, err)
			return
		}
		httpresp.OK(c, 200, slots)
		return
	}

	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		httperr.Write(c, httperr.Validation("endDate must be YYYY-MM-DD"))
		return
	}
	byDate, err := h.gen.GenerateRange(c.Request.Context(), storeID, date, endDate, duration, req.MaxCapacity)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	httpresp.OK(c, 200, byDate)
}

// ListAvailability returns a store's active timeslots for one local calendar
// date, for the public booking-availability read path of §6.
func (h *TimeslotHandler) ListAvailability(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		httperr.Write(c, httperr.Validation("storeId is not a valid identifier"))
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.Write(c, httperr.Validation("date query parameter is required"))
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httperr.Write(c, httperr.Validation("date must be YYYY-MM-DD"))
		return
	}

	var store models.Store
	if err := h.db.First(&store, "id = ?", storeID).Error; err != nil {
		httperr.Write(c, httperr.NotFoundErr("store not found"))
		return
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, timezone.Location(store.Timezone))
	dayEnd := dayStart.AddDate(0, 0, 1)

	q := h.db.Where("store_id = ? AND is_active = true AND start_time >= ? AND start_time < ?", storeID, dayStart, dayEnd)
	if treatmentIDParam := c.Query("treatmentId"); treatmentIDParam != "" {
		treatmentID, err := uuid.Parse(treatmentIDParam)
		if err != nil {
			httperr.Write(c, httperr.Validation("treatmentId is not a valid identifier"))
			return
		}
		q = q.Where("treatment_whitelist = '' OR treatment_whitelist LIKE ?", "%"+treatmentID.String()+"%")
	}

	var slots []models.Timeslot
	if err := q.Order("start_time ASC").Find(&slots).Error; err != nil {
		httperr.Write(c, httperr.InternalErr("failed to list timeslots"))
		return
	}
	httpresp.OK(c, 200, slots)
}
