package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffLevel ranks staff skill; higher values can perform lower-level treatments.
type StaffLevel string

const (
	LevelJunior StaffLevel = "junior"
	LevelSenior StaffLevel = "senior"
	LevelExpert StaffLevel = "expert"
	LevelAny    StaffLevel = "any"
)

var staffLevelRank = map[StaffLevel]int{
	LevelJunior: 1,
	LevelSenior: 2,
	LevelExpert: 3,
}

// Rank returns the ordinal rank of a concrete skill level (junior < senior < expert).
// LevelAny has no rank and is handled separately by callers.
func (l StaffLevel) Rank() int {
	return staffLevelRank[l]
}

// Money is a currency-tagged amount; never negative.
type Money struct {
	Amount   float64 `gorm:"column:price_amount" json:"amount"`
	Currency string  `gorm:"column:price_currency;size:3" json:"currency"`
}

// Treatment is a service offering belonging to exactly one store.
type Treatment struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`
	Store   *Store    `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Name        string `gorm:"size:150;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Category    string `gorm:"size:80" json:"category"`

	DurationMinutes int `gorm:"not null" json:"duration_minutes"`

	Price Money `gorm:"embedded" json:"price"`

	RequiredStaffLevel StaffLevel `gorm:"size:10;not null;default:'any'" json:"required_staff_level"`

	MaxConcurrentBookings int `gorm:"not null;default:1" json:"max_concurrent_bookings"`

	Tags TagList `gorm:"type:text" json:"tags"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	RequiredResources []Resource `gorm:"many2many:treatment_resources;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"required_resources,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Duration returns the treatment's booked duration.
func (t Treatment) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}
