// Package security is the filter chain in front of the admin API: no-cache
// headers, bearer token authentication and the ordered authorization rule
// set, with pluggable 401 and 403 handlers.
package security

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/blogadmin/internal/admin/metrics"
	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
)

// Chain is the stateless security filter chain. No session is ever
// created; every request authenticates by its own token.
type Chain struct {
	Rules        *RuleSet
	Filter       *JWTFilter
	EntryPoint   AuthenticationEntryPoint
	AccessDenied AccessDeniedHandler
	Metrics      *metrics.Metrics
}

// NewChain builds a chain with the JSON failure handlers.
func NewChain(rules *RuleSet, filter *JWTFilter, m *metrics.Metrics) *Chain {
	return &Chain{
		Rules:        rules,
		Filter:       filter,
		EntryPoint:   JSONEntryPoint{},
		AccessDenied: JSONAccessDeniedHandler{},
		Metrics:      m,
	}
}

// Handler wraps next with the full chain.
func (c *Chain) Handler(next http.Handler) http.Handler {
	return httpx.Chain(next,
		httpx.NoCacheMiddleware,
		c.Filter.Middleware,
		c.authorize,
	)
}

func (c *Chain) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access := c.Rules.Access(r.Method, r.URL.Path)
		if c.enforce(w, r, access) {
			next.ServeHTTP(w, r)
		}
	})
}

// PreAuthorize guards a single route, on top of the URL rules.
func (c *Chain) PreAuthorize(access Access, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.enforce(w, r, access) {
			h.ServeHTTP(w, r)
		}
	})
}

// enforce writes the failure response and returns false when access is not
// granted.
func (c *Chain) enforce(w http.ResponseWriter, r *http.Request, access Access) bool {
	p, _ := PrincipalFromContext(r.Context())

	switch access.Evaluate(p) {
	case DecisionGrant:
		if access.Kind == AccessPermitAll {
			c.Metrics.RecordDecision(metrics.DecisionPermit)
		} else {
			c.Metrics.RecordDecision(metrics.DecisionAuthenticated)
		}
		return true
	case DecisionUnauthenticated:
		c.Metrics.RecordDecision(metrics.DecisionUnauthenticated)
		c.EntryPoint.Commence(w, r, ErrAuthenticationRequired)
		return false
	default:
		c.Metrics.RecordDecision(metrics.DecisionForbidden)
		c.AccessDenied.Handle(w, r, fmt.Errorf("%w: %s requires %v", ErrAccessDenied, access.Kind, access.Authorities))
		return false
	}
}
