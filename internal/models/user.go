package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleStoreAdmin Role = "store_admin"
	RoleStaff      Role = "staff"
	RoleCustomer   Role = "customer"
)

// roleRank orders roles for the super_admin > store_admin > staff > customer hierarchy.
var roleRank = map[Role]int{
	RoleCustomer:   1,
	RoleStaff:      2,
	RoleStoreAdmin: 3,
	RoleSuperAdmin: 4,
}

// AtLeast reports whether r has at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// User is a person: a customer, or a staff/store_admin/super_admin scoped to a store.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	StoreID *uuid.UUID `gorm:"type:uuid;index" json:"store_id,omitempty"`
	Store   *Store     `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`

	Name         string `gorm:"size:150;not null" json:"name"`
	Email        string `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:30" json:"phone"`

	Role Role `gorm:"size:20;not null;default:'customer'" json:"role"`

	SkillLevel *StaffLevel `gorm:"size:10" json:"skill_level,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveSkillLevel returns the staff member's skill level, defaulting to junior
// when unset per §4.2.
func (u User) EffectiveSkillLevel() StaffLevel {
	if u.SkillLevel == nil {
		return LevelJunior
	}
	return *u.SkillLevel
}

// IsStaffOf reports whether u is an active staff/admin member of storeID.
func (u User) IsStaffOf(storeID uuid.UUID) bool {
	return u.StoreID != nil && *u.StoreID == storeID && u.Role.AtLeast(RoleStaff) && u.IsActive
}
