package httperr

import "net/http"

// Category is the top-level HTTP error taxonomy of §7.
type Category string

const (
	CategoryValidation    Category = "VALIDATION_ERROR"
	CategoryAuthentication Category = "AUTHENTICATION_ERROR"
	CategoryAuthorization Category = "AUTHORIZATION_ERROR"
	CategoryNotFound      Category = "NOT_FOUND_ERROR"
	CategoryConflict      Category = "CONFLICT_ERROR"
	CategoryRateLimit     Category = "RATE_LIMIT_ERROR"
	CategoryInternal      Category = "INTERNAL_ERROR"
)

var categoryStatus = map[Category]int{
	CategoryValidation:    http.StatusBadRequest,
	CategoryAuthentication: http.StatusUnauthorized,
	CategoryAuthorization: http.StatusForbidden,
	CategoryNotFound:      http.StatusNotFound,
	CategoryConflict:      http.StatusConflict,
	CategoryRateLimit:     http.StatusTooManyRequests,
	CategoryInternal:      http.StatusInternalServerError,
}

// Status returns the HTTP status code for a category.
func (c Category) Status() int {
	if s, ok := categoryStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Reason is the admission sub-reason taxonomy of §4.5/§7, attached to CONFLICT_ERROR.
type Reason string

const (
	ReasonTreatmentNotFound Reason = "TREATMENT_NOT_FOUND"
	ReasonStoreClosed       Reason = "STORE_CLOSED"
	ReasonNoTimeslot        Reason = "NO_TIMESLOT"
	ReasonTreatmentCapacity Reason = "TREATMENT_CAPACITY"
	ReasonStaffConflict     Reason = "STAFF_CONFLICT"
	ReasonResourceCapacity  Reason = "RESOURCE_CAPACITY"
	ReasonDailyLimit        Reason = "DAILY_LIMIT"
	ReasonStoreCapacity     Reason = "STORE_CAPACITY"
	ReasonTooFarInAdvance   Reason = "TOO_FAR_IN_ADVANCE"
	ReasonInvalidStaff      Reason = "INVALID_STAFF"
)
