package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/blogadmin/internal/admin/security"
	"github.com/aussiebroadwan/blogadmin/internal/admin/service"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/aussiebroadwan/blogadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
	"github.com/aussiebroadwan/blogadmin/pkg/slogx"
)

// writeServiceError maps service and store errors onto API errors.
// Anything unexpected is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrBadCredentials):
		adminsdk.ErrBadCredentials.WriteError(w)
	case errors.Is(err, service.ErrAccountDisabled):
		adminsdk.ErrAccountDisabled.WriteError(w)
	case errors.Is(err, service.ErrOTPRequired):
		adminsdk.ErrOTPRequired.WriteError(w)
	case errors.Is(err, service.ErrInvalidOTP):
		adminsdk.ErrInvalidOTP.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		adminsdk.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrUnknownRole),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrTOTPNotEnrolled),
		errors.Is(err, service.ErrTOTPNotEnabled):
		adminsdk.ErrBadRequest.WithMessage(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrUserConflict),
		errors.Is(err, service.ErrTOTPAlreadyEnabled):
		adminsdk.ErrConflict.WithMessage(err.Error()).WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		adminsdk.ErrNotFound.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		adminsdk.ErrServerError.WriteError(w)
	}
}

// decode reads a JSON body, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		adminsdk.ErrBadRequest.WithMessage(err.Error()).WriteError(w)
		return false
	}
	return true
}

// principal returns the authenticated admin, answering 401 itself when
// there is none.
func principal(w http.ResponseWriter, r *http.Request) (*security.Principal, bool) {
	p, ok := security.PrincipalFromContext(r.Context())
	if !ok {
		adminsdk.ErrUnauthorized.WriteError(w)
		return nil, false
	}
	return p, true
}
