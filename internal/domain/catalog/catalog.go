// Package catalog holds the pure eligibility logic of the Catalog component
// (§4.2): whether a staff member can perform a treatment, and whether a
// treatment's required-resource list is well-formed.
package catalog

import (
	"github.com/venora-platform/booking-engine/internal/models"
)

// CanBePerformedBy reports whether staff meets a treatment's required skill
// level. LevelAny accepts every skill level; otherwise staff's effective
// level must rank at or above the requirement.
func CanBePerformedBy(t *models.Treatment, staff *models.User) bool {
	if t.RequiredStaffLevel == models.LevelAny {
		return true
	}
	return staff.EffectiveSkillLevel().Rank() >= t.RequiredStaffLevel.Rank()
}

// ValidateRequiredResources reports whether every resource in resources
// belongs to the treatment's own store, per §4.2's cross-tenant guard.
func ValidateRequiredResources(t *models.Treatment, resources []models.Resource) bool {
	for _, r := range resources {
		if r.StoreID != t.StoreID {
			return false
		}
	}
	return true
}

// CanDeactivate reports whether a treatment can be deactivated given the
// count of its pending or confirmed future bookings. A treatment with any
// such booking cannot be deactivated; the treatment handler rejects the
// request with a conflict (§4.2).
func CanDeactivate(activeBookingCount int) bool {
	return activeBookingCount == 0
}
