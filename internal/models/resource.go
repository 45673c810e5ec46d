package models

import (
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceRoom      ResourceType = "room"
	ResourceEquipment ResourceType = "equipment"
	ResourceTool      ResourceType = "tool"
	ResourceOther     ResourceType = "other"
)

// Resource is a physical asset with a concurrent-use capacity, owned by a store.
type Resource struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`
	Store   *Store    `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Name     string       `gorm:"size:150;not null" json:"name"`
	Type     ResourceType `gorm:"size:20;not null" json:"type"`
	Capacity int          `gorm:"not null;default:1" json:"capacity"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TreatmentResource is the explicit join table between Treatment and Resource.
// No code path writes Position, so it stays 0 and the order in which required
// resources were supplied is not preserved.
type TreatmentResource struct {
	TreatmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ResourceID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position    int       `gorm:"not null;default:0"`
}
