package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// wireError is the `error` object of the §6 response envelope.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeEnvelope(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   wireError{Code: code, Message: message},
	})
}

// Write maps any error to the §7 taxonomy and writes the §6 envelope. Unrecognized
// errors are reported as INTERNAL_ERROR without leaking their message, matching
// the "stack traces never leak to clients" rule.
func Write(c *gin.Context, err error) {
	ae, ok := As(err)
	if !ok {
		writeEnvelope(c, http.StatusInternalServerError, string(CategoryInternal), "internal error")
		return
	}

	code := string(ae.Category)
	if ae.Reason != "" {
		code = string(ae.Reason)
	}
	writeEnvelope(c, ae.Category.Status(), code, ae.Message)
}

// The helpers below write the envelope directly for handlers that build an error
// inline rather than through the AppError constructors (matches the teacher's
// call-site idiom of `httperr.BadRequest(c, code, message)`).

func BadRequest(c *gin.Context, code, message string) {
	writeEnvelope(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	writeEnvelope(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	writeEnvelope(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	writeEnvelope(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	writeEnvelope(c, http.StatusForbidden, code, message)
}

func TooManyRequests(c *gin.Context, code, message string) {
	writeEnvelope(c, http.StatusTooManyRequests, code, message)
}
