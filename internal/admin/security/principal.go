package security

import (
	"context"

	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
)

// Principal is the authenticated admin behind a request.
type Principal struct {
	UserID      string
	Username    string
	Authorities []string

	// Claims and Token are what the request presented.
	Claims jwtx.Claims
	Token  string
}

// HasAuthority reports whether the principal holds any of the given
// authorities. A nil principal holds none.
func (p *Principal) HasAuthority(required ...string) bool {
	if p == nil {
		return false
	}
	return HasAnyAuthority(p.Authorities, required...)
}

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by the JWT filter.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
