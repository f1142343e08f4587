package security

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                      "/",
		"/":                     "/",
		"/login":                "/login",
		"//login":               "/login",
		"/a/./b/../c":           "/a/c",
		"/swagger-resources/":   "/swagger-resources/",
		"/v1/admin/../../login": "/login",
		"login":                 "/login",
	}
	for in, want := range tests {
		require.Equal(t, want, NormalizePath(in), "input %q", in)
	}
}

func TestDefaultRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		want   AccessKind
	}{
		{"root", http.MethodGet, "/", AccessPermitAll},
		{"top level html", http.MethodGet, "/index.html", AccessPermitAll},
		{"nested html", http.MethodGet, "/admin/pages/edit.html", AccessPermitAll},
		{"favicon", http.MethodGet, "/favicon.ico", AccessPermitAll},
		{"css", http.MethodGet, "/static/css/app.css", AccessPermitAll},
		{"js", http.MethodGet, "/static/js/app.js", AccessPermitAll},
		{"swagger ui", http.MethodGet, "/swagger-resources/index.html", AccessPermitAll},
		{"swagger base", http.MethodGet, "/swagger-resources", AccessPermitAll},
		{"api docs", http.MethodGet, "/v2/api-docs", AccessPermitAll},
		{"login post", http.MethodPost, "/login", AccessPermitAll},
		{"login get", http.MethodGet, "/login", AccessPermitAll},
		{"preflight", http.MethodOptions, "/v1/admin/info", AccessPermitAll},
		{"livez", http.MethodGet, "/livez", AccessPermitAll},
		{"readyz", http.MethodGet, "/readyz", AccessPermitAll},
		{"metrics", http.MethodGet, "/metrics", AccessPermitAll},
		{"jwks", http.MethodGet, "/.well-known/jwks.json", AccessPermitAll},

		{"post html", http.MethodPost, "/index.html", AccessAuthenticated},
		{"admin info", http.MethodGet, "/v1/admin/info", AccessAuthenticated},
		{"create user", http.MethodPost, "/v1/admin/users", AccessAuthenticated},
		{"dot segments", http.MethodGet, "/static/../v1/admin/info", AccessAuthenticated},
		{"json file", http.MethodGet, "/data/app.json", AccessAuthenticated},
		{"post metrics", http.MethodPost, "/metrics", AccessAuthenticated},
	}

	rules := DefaultRules(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rules.Access(tt.method, tt.path).Kind)
		})
	}
}

func TestDefaultRules_PermitAllOverride(t *testing.T) {
	t.Parallel()

	rules := DefaultRules(true)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/v1/admin/info"},
		{http.MethodPost, "/v1/admin/users"},
		{http.MethodDelete, "/v1/admin/totp"},
		{http.MethodPut, "/anything/at/all"},
	} {
		require.Equal(t, AccessPermitAll, rules.Access(r.method, r.path).Kind, "%s %s", r.method, r.path)
	}

	// The catch-all is still declared, just shadowed.
	all := rules.Rules()
	require.Equal(t, AccessAuthenticated, all[len(all)-1].Access.Kind)
	require.Len(t, all, len(DefaultRules(false).Rules())+1)
}

func TestRuleSet_FirstMatchWins(t *testing.T) {
	t.Parallel()

	rules := NewRuleSet(
		NewRule(http.MethodGet, DenyAll, "/v1/admin/secret"),
		NewRule("", HasAuthority("blog:article:create"), "/v1/articles/**"),
		NewRule("", PermitAll, "/v1/**"),
	)

	require.Equal(t, AccessDenyAll, rules.Access(http.MethodGet, "/v1/admin/secret").Kind)
	require.Equal(t, AccessPermitAll, rules.Access(http.MethodPost, "/v1/admin/secret").Kind)
	require.Equal(t, AccessHasAuthority, rules.Access(http.MethodPost, "/v1/articles/42").Kind)
	require.Equal(t, AccessPermitAll, rules.Access(http.MethodGet, "/v1/tags").Kind)

	// Nothing matches: authentication is required.
	require.Equal(t, AccessAuthenticated, rules.Access(http.MethodGet, "/other").Kind)
}

func TestAccessEvaluate(t *testing.T) {
	t.Parallel()

	editor := &Principal{UserID: "u1", Username: "editor", Authorities: []string{"blog:article:create"}}

	tests := []struct {
		name   string
		access Access
		p      *Principal
		want   Decision
	}{
		{"permitAll anonymous", PermitAll, nil, DecisionGrant},
		{"authenticated anonymous", Authenticated, nil, DecisionUnauthenticated},
		{"authenticated principal", Authenticated, editor, DecisionGrant},
		{"authority anonymous", HasAuthority("blog:article:create"), nil, DecisionUnauthenticated},
		{"authority held", HasAuthority("blog:article:create"), editor, DecisionGrant},
		{"authority missing", HasAuthority("admin:user:create"), editor, DecisionDenied},
		{"any of", HasAuthority("admin:user:create", "blog:article:create"), editor, DecisionGrant},
		{"denyAll anonymous", DenyAll, nil, DecisionUnauthenticated},
		{"denyAll principal", DenyAll, editor, DecisionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.access.Evaluate(tt.p))
		})
	}
}
