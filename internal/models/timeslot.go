package models

import (
	"time"

	"github.com/google/uuid"
)

// Timeslot is a half-open time interval for a store with a capacity and a running
// counter. Two active timeslots for the same store must never overlap.
type Timeslot struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index:idx_timeslots_store_start" json:"store_id"`

	StartTime time.Time `gorm:"not null;index:idx_timeslots_store_start" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	MaxCapacity     int `gorm:"not null;default:1" json:"max_capacity"`
	CurrentBookings int `gorm:"not null;default:0" json:"current_bookings"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Empty lists mean "no restriction" per §3.
	TreatmentWhitelist UUIDList `gorm:"type:text" json:"treatment_whitelist,omitempty"`
	StaffWhitelist     UUIDList `gorm:"type:text" json:"staff_whitelist,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCapacity reports whether the slot can absorb one more booking.
func (t Timeslot) HasCapacity() bool {
	return t.CurrentBookings < t.MaxCapacity
}

// Covers reports whether the slot fully contains [start,end) per §4.5 rule 1.
func (t Timeslot) Covers(start, end time.Time) bool {
	return !t.StartTime.After(start) && !t.EndTime.Before(end)
}

// AllowsTreatment reports whether the slot's whitelist permits treatmentID.
func (t Timeslot) AllowsTreatment(treatmentID uuid.UUID) bool {
	return len(t.TreatmentWhitelist) == 0 || t.TreatmentWhitelist.Contains(treatmentID)
}

// AllowsStaff reports whether the slot's whitelist permits staffID.
func (t Timeslot) AllowsStaff(staffID uuid.UUID) bool {
	return len(t.StaffWhitelist) == 0 || t.StaffWhitelist.Contains(staffID)
}
