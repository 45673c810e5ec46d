package reservation

import "github.com/venora-platform/booking-engine/internal/httperr"

func errTreatmentNotFound() error {
	return httperr.Conflict(httperr.ReasonTreatmentNotFound, "treatment not found or inactive")
}

func errStoreClosed() error {
	return httperr.Conflict(httperr.ReasonStoreClosed, "store is closed on the requested date")
}

func errNoTimeslot() error {
	return httperr.Conflict(httperr.ReasonNoTimeslot, "no timeslot covers the requested interval")
}

func errTreatmentCapacity() error {
	return httperr.Conflict(httperr.ReasonTreatmentCapacity, "treatment is at its concurrency limit for this interval")
}

func errStaffConflict() error {
	return httperr.Conflict(httperr.ReasonStaffConflict, "staff member is already booked for an overlapping interval")
}

func errResourceCapacity() error {
	return httperr.Conflict(httperr.ReasonResourceCapacity, "a required resource is at capacity for this interval")
}

func errDailyLimit() error {
	return httperr.Conflict(httperr.ReasonDailyLimit, "store has reached its daily booking limit")
}

func errStoreCapacity() error {
	return httperr.Conflict(httperr.ReasonStoreCapacity, "store has reached its concurrent booking limit")
}

func errTooFarInAdvance() error {
	return httperr.Conflict(httperr.ReasonTooFarInAdvance, "requested date exceeds the store's advance-booking window")
}

func errInvalidStaff() error {
	return httperr.Conflict(httperr.ReasonInvalidStaff, "staff member is not an eligible, active member of this store")
}
