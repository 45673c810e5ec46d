package catalog

import (
	"testing"

	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/models"
)

func skillLevel(l models.StaffLevel) *models.StaffLevel { return &l }

func TestCanBePerformedBy(t *testing.T) {
	treatment := &models.Treatment{RequiredStaffLevel: models.LevelSenior}

	junior := &models.User{SkillLevel: skillLevel(models.LevelJunior)}
	if CanBePerformedBy(treatment, junior) {
		t.Error("expected junior staff to be rejected for a senior-level treatment")
	}

	senior := &models.User{SkillLevel: skillLevel(models.LevelSenior)}
	if !CanBePerformedBy(treatment, senior) {
		t.Error("expected senior staff to be accepted for a senior-level treatment")
	}

	expert := &models.User{SkillLevel: skillLevel(models.LevelExpert)}
	if !CanBePerformedBy(treatment, expert) {
		t.Error("expected expert staff to be accepted for a senior-level treatment")
	}

	anyTreatment := &models.Treatment{RequiredStaffLevel: models.LevelAny}
	unset := &models.User{}
	if !CanBePerformedBy(anyTreatment, unset) {
		t.Error("expected LevelAny to accept a staff member with no explicit skill level")
	}
}

func TestCanBePerformedByDefaultsToJunior(t *testing.T) {
	treatment := &models.Treatment{RequiredStaffLevel: models.LevelSenior}
	unset := &models.User{}
	if CanBePerformedBy(treatment, unset) {
		t.Error("expected a staff member with no skill level to default to junior and fail a senior requirement")
	}
}

func TestValidateRequiredResources(t *testing.T) {
	storeA := uuid.New()
	storeB := uuid.New()

	treatment := &models.Treatment{StoreID: storeA}
	resources := []models.Resource{
		{ID: uuid.New(), StoreID: storeA},
		{ID: uuid.New(), StoreID: storeA},
	}
	if !ValidateRequiredResources(treatment, resources) {
		t.Error("expected same-store resources to validate")
	}

	resources = append(resources, models.Resource{ID: uuid.New(), StoreID: storeB})
	if ValidateRequiredResources(treatment, resources) {
		t.Error("expected a cross-tenant resource to fail validation")
	}
}

func TestCanDeactivate(t *testing.T) {
	if !CanDeactivate(0) {
		t.Error("expected zero active bookings to allow deactivation")
	}
	if CanDeactivate(1) {
		t.Error("expected any active booking to block deactivation")
	}
}
