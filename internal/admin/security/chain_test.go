package security

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/metrics"
	"github.com/aussiebroadwan/blogadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const testIssuer = "blogadmin-test"

// stubUsers resolves usernames from a fixed map.
type stubUsers map[string]domain.UserDetails

func (s stubUsers) LoadUserByUsername(_ context.Context, username string) (domain.UserDetails, error) {
	d, ok := s[username]
	if !ok {
		return domain.UserDetails{}, errNoSuchUser
	}
	return d, nil
}

var errNoSuchUser = errors.New("no such user")

func details(id, username string, status int, authorities ...string) domain.UserDetails {
	perms := make([]domain.Permission, 0, len(authorities))
	for _, a := range authorities {
		perms = append(perms, domain.Permission{Value: a, Status: domain.StatusEnabled})
	}
	return domain.NewUserDetails(domain.User{ID: id, Username: username, Status: status}, perms)
}

type chainEnv struct {
	keys    *jwtx.KeyManager
	metrics *metrics.Metrics
	handler http.Handler
}

func newChainEnv(t *testing.T, permitAll bool) *chainEnv {
	t.Helper()

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer, NumKeys: 1})
	require.NoError(t, err)

	users := stubUsers{
		"editor":   details("u-editor", "editor", domain.StatusEnabled, "blog:article:create"),
		"admin":    details("u-admin", "admin", domain.StatusEnabled, "*"),
		"disabled": details("u-disabled", "disabled", domain.StatusDisabled, "*"),
	}

	m := metrics.New()
	chain := NewChain(DefaultRules(permitAll), &JWTFilter{Verifier: km.Verifier, Users: users}, m)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())
		if p != nil {
			w.Header().Set("X-Principal", p.Username)
		}
		w.WriteHeader(http.StatusOK)
	})

	mux := http.NewServeMux()
	mux.Handle("GET /index.html", ok)
	mux.Handle("POST /login", ok)
	mux.Handle("GET /v1/admin/info", ok)
	mux.Handle("POST /v1/admin/users", chain.PreAuthorize(HasAuthority("admin:user:create"), ok))

	return &chainEnv{keys: km, metrics: m, handler: chain.Handler(mux)}
}

func (e *chainEnv) token(t *testing.T, subject, username string) string {
	t.Helper()
	claims := jwtx.NewAccessClaims(subject, username, []string{jwtx.AMRPassword}, time.Hour, testIssuer, time.Now())
	token, err := e.keys.Sign(claims)
	require.NoError(t, err)
	return token
}

func (e *chainEnv) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func requireNoCache(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, "no-cache, no-store, max-age=0, must-revalidate", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.Equal(t, "0", rec.Header().Get("Expires"))
}

func requireEnvelope(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, rec.Code)

	var res adminsdk.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, code, res.Code)
	require.NotEmpty(t, res.Message)
}

func TestChain_PublicPaths(t *testing.T) {
	env := newChainEnv(t, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/index.html"},
		{http.MethodPost, "/login"},
		{http.MethodOptions, "/v1/admin/info"},
		{http.MethodGet, "/static/app.js"},
	} {
		rec := env.do(tc.method, tc.path, "")
		require.NotEqual(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		requireNoCache(t, rec)
	}
}

func TestChain_ProtectedPaths(t *testing.T) {
	env := newChainEnv(t, false)

	t.Run("no token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/admin/info", "")
		requireEnvelope(t, rec, http.StatusUnauthorized)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
		requireNoCache(t, rec)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/admin/info", env.token(t, "u-editor", "editor"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "editor", rec.Header().Get("X-Principal"))
		requireNoCache(t, rec)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/admin/info", "not-a-jwt")
		requireEnvelope(t, rec, http.StatusUnauthorized)
	})

	t.Run("token signed by an unknown key", func(t *testing.T) {
		other, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer, NumKeys: 1})
		require.NoError(t, err)
		claims := jwtx.NewAccessClaims("u-editor", "editor", nil, time.Hour, testIssuer, time.Now())
		token, err := other.Sign(claims)
		require.NoError(t, err)

		rec := env.do(http.MethodGet, "/v1/admin/info", token)
		requireEnvelope(t, rec, http.StatusUnauthorized)
	})

	t.Run("disabled user", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/admin/info", env.token(t, "u-disabled", "disabled"))
		requireEnvelope(t, rec, http.StatusUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/admin/info", env.token(t, "u-ghost", "ghost"))
		requireEnvelope(t, rec, http.StatusUnauthorized)
	})

	t.Run("subject mismatch", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/admin/info", env.token(t, "u-admin", "editor"))
		requireEnvelope(t, rec, http.StatusUnauthorized)
	})
}

func TestChain_PreAuthorize(t *testing.T) {
	env := newChainEnv(t, false)

	rec := env.do(http.MethodPost, "/v1/admin/users", env.token(t, "u-editor", "editor"))
	requireEnvelope(t, rec, http.StatusForbidden)
	requireNoCache(t, rec)

	rec = env.do(http.MethodPost, "/v1/admin/users", env.token(t, "u-admin", "admin"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/v1/admin/users", "")
	requireEnvelope(t, rec, http.StatusUnauthorized)

	require.Equal(t, 1.0, testutil.ToFloat64(env.metrics.SecurityDecisions.WithLabelValues(metrics.DecisionForbidden)))
}

func TestChain_PermitAllOverride(t *testing.T) {
	env := newChainEnv(t, true)

	rec := env.do(http.MethodGet, "/v1/admin/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	requireNoCache(t, rec)

	// A valid token still resolves the principal.
	rec = env.do(http.MethodGet, "/v1/admin/info", env.token(t, "u-editor", "editor"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "editor", rec.Header().Get("X-Principal"))

	// Route level checks still apply.
	rec = env.do(http.MethodPost, "/v1/admin/users", "")
	requireEnvelope(t, rec, http.StatusUnauthorized)
}

func TestChain_CustomHandlers(t *testing.T) {
	env := newChainEnv(t, false)

	chain := NewChain(DefaultRules(false), &JWTFilter{Verifier: env.keys.Verifier, Users: stubUsers{}}, nil)
	chain.EntryPoint = EntryPointFunc(func(w http.ResponseWriter, r *http.Request, err error) {
		require.ErrorIs(t, err, ErrAuthenticationRequired)
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	chain.Handler(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/info", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}
