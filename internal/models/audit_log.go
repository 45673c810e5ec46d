package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an internal, queryable record of admission outcomes and lifecycle
// transitions — distinct from the outbound webhook Event Dispatcher of §4.6, which
// delivers a subset of these same events to external HTTP subscribers.
type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	StoreID uuid.UUID  `gorm:"type:uuid;not null;index" json:"store_id"`
	UserID  *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`

	Action   string     `gorm:"size:60;not null" json:"action"`
	Entity   string     `gorm:"size:60" json:"entity"`
	EntityID *uuid.UUID `gorm:"type:uuid" json:"entity_id,omitempty"`

	Metadata string `gorm:"type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
