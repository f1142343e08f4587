package security

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/blogadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/blogadmin/pkg/slogx"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAccessDenied           = errors.New("access denied")
)

// AuthenticationEntryPoint answers an anonymous request for a protected
// resource.
type AuthenticationEntryPoint interface {
	Commence(w http.ResponseWriter, r *http.Request, err error)
}

// AccessDeniedHandler answers an authenticated request that lacks the
// required authority.
type AccessDeniedHandler interface {
	Handle(w http.ResponseWriter, r *http.Request, err error)
}

// EntryPointFunc adapts a function to AuthenticationEntryPoint.
type EntryPointFunc func(w http.ResponseWriter, r *http.Request, err error)

func (f EntryPointFunc) Commence(w http.ResponseWriter, r *http.Request, err error) { f(w, r, err) }

// AccessDeniedFunc adapts a function to AccessDeniedHandler.
type AccessDeniedFunc func(w http.ResponseWriter, r *http.Request, err error)

func (f AccessDeniedFunc) Handle(w http.ResponseWriter, r *http.Request, err error) { f(w, r, err) }

// JSONEntryPoint writes a 401 envelope with a Bearer challenge.
type JSONEntryPoint struct{}

func (JSONEntryPoint) Commence(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Debug("authentication required",
		slog.String("path", r.URL.Path), slog.Any("reason", err))

	w.Header().Set("WWW-Authenticate", `Bearer realm="blogadmin"`)
	adminsdk.ErrUnauthorized.WriteError(w)
}

// JSONAccessDeniedHandler writes a 403 envelope.
type JSONAccessDeniedHandler struct{}

func (JSONAccessDeniedHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Info("access denied",
		slog.String("path", r.URL.Path), slog.Any("reason", err))

	adminsdk.ErrForbidden.WriteError(w)
}
