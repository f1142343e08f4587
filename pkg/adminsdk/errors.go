package adminsdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
)

// Error is an API failure. It is written by the server and returned by the
// client, so both ends agree on status and wording.
type Error struct {
	// Status is the HTTP status code, mirrored in the envelope's code.
	Status int

	// Message is the human-readable reason.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("adminsdk: %d %s", e.Status, e.Message)
}

// WriteError writes this error as a JSON envelope.
func (e *Error) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.Status, Result{Code: e.Status, Message: e.Message})
}

// WithMessage returns a copy of e with a different message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Status: e.Status, Message: msg}
}

// NewError builds an Error with the given status and message.
func NewError(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

var (
	ErrBadRequest      = &Error{Status: http.StatusBadRequest, Message: "invalid request"}
	ErrUnauthorized    = &Error{Status: http.StatusUnauthorized, Message: "not logged in or token expired"}
	ErrBadCredentials  = &Error{Status: http.StatusUnauthorized, Message: "incorrect username or password"}
	ErrAccountDisabled = &Error{Status: http.StatusUnauthorized, Message: "account is disabled"}
	ErrOTPRequired     = &Error{Status: http.StatusUnauthorized, Message: "one-time code required"}
	ErrInvalidOTP      = &Error{Status: http.StatusUnauthorized, Message: "invalid one-time code"}
	ErrForbidden       = &Error{Status: http.StatusForbidden, Message: "no permission for this resource"}
	ErrNotFound        = &Error{Status: http.StatusNotFound, Message: "not found"}
	ErrConflict        = &Error{Status: http.StatusConflict, Message: "already exists"}
	ErrServerError     = &Error{Status: http.StatusInternalServerError, Message: "internal server error"}
)

// IsUnauthorized reports whether err is a 401 API error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is a 403 API error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}
