package httperr

import "errors"

// AppError is a typed application error carrying enough structure for the HTTP
// layer to map it to the correct status and wire body without a switch at every
// call site (generalizes the teacher's plain string-coded BusinessError).
type AppError struct {
	Category Category
	Reason   Reason
	Message  string
}

func (e AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Reason != "" {
		return string(e.Reason)
	}
	return string(e.Category)
}

func newErr(cat Category, reason Reason, msg string) error {
	return AppError{Category: cat, Reason: reason, Message: msg}
}

func Validation(msg string) error      { return newErr(CategoryValidation, "", msg) }
func Authentication(msg string) error  { return newErr(CategoryAuthentication, "", msg) }
func Authorization(msg string) error   { return newErr(CategoryAuthorization, "", msg) }
func NotFoundErr(msg string) error     { return newErr(CategoryNotFound, "", msg) }
func RateLimited(msg string) error     { return newErr(CategoryRateLimit, "", msg) }
func InternalErr(msg string) error     { return newErr(CategoryInternal, "", msg) }

// Conflict builds a CONFLICT_ERROR carrying one of the §4.5 admission sub-reasons.
func Conflict(reason Reason, msg string) error {
	return newErr(CategoryConflict, reason, msg)
}

// As extracts an AppError from err, if any wraps one.
func As(err error) (AppError, bool) {
	var ae AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// IsReason reports whether err is a CONFLICT_ERROR carrying the given reason.
func IsReason(err error, reason Reason) bool {
	ae, ok := As(err)
	return ok && ae.Reason == reason
}

// Legacy string-coded BusinessError, retained for the (out-of-scope) CRUD collaborator
// handlers that predate the §7 taxonomy and only need a coarse "business rule failed"
// signal rather than a full category/reason pair.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
