package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/aussiebroadwan/blogadmin/pkg/slogx"
)

var (
	ErrUserDisabled    = errors.New("user disabled")
	ErrSubjectMismatch = errors.New("token subject does not match user")
)

// UserDetailsLoader resolves the username carried by a token.
type UserDetailsLoader interface {
	LoadUserByUsername(ctx context.Context, username string) (domain.UserDetails, error)
}

// JWTFilter authenticates bearer tokens. It never rejects a request
// itself: a missing or bad token leaves the request anonymous and the rule
// set decides.
type JWTFilter struct {
	Verifier jwtx.Verifier
	Users    UserDetailsLoader
}

// Authenticate returns the principal for r. It returns (nil, nil) when the
// request carries no bearer token.
func (f *JWTFilter) Authenticate(r *http.Request) (*Principal, error) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		return nil, nil
	}

	claims, err := f.Verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	details, err := f.Users.LoadUserByUsername(r.Context(), claims.Username)
	if err != nil {
		return nil, err
	}
	if !details.Enabled() {
		return nil, fmt.Errorf("%w: %s", ErrUserDisabled, details.Username())
	}
	if details.UserID() != claims.Subject {
		return nil, ErrSubjectMismatch
	}

	return &Principal{
		UserID:      details.UserID(),
		Username:    details.Username(),
		Authorities: details.Authorities(),
		Claims:      claims,
		Token:       token,
	}, nil
}

// Middleware attaches the principal to the request context when the token
// checks out.
func (f *JWTFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := f.Authenticate(r)
		if err != nil {
			slogx.FromContext(r.Context()).Warn("bearer token rejected",
				slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		if p == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithPrincipal(r.Context(), p)
		ctx = slogx.With(ctx, slog.String("user_id", p.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
