package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/metrics"
	"github.com/aussiebroadwan/blogadmin/internal/admin/security"
	"github.com/aussiebroadwan/blogadmin/internal/admin/service"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/aussiebroadwan/blogadmin/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/blogadmin/api/admin" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	chain        *security.Chain
	keys         *jwtx.KeySet
	metrics      *metrics.Metrics
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// StaticDir, when set, is served for GET requests no other route takes.
	StaticDir string

	// Proxies decides when forwarding headers are believed. Nil trusts
	// only the direct peer.
	Proxies *httpx.ClientIPResolver

	store       store.Store
	AuthService *service.AuthService
	UserService *service.UserService
	TOTPService *service.TOTPService
}

func NewRouter(
	chain *security.Chain,
	keys *jwtx.KeySet,
	m *metrics.Metrics,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		chain:        chain,
		keys:         keys,
		metrics:      m,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// The request logger runs first so the security chain logs with req_id.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.chain.Handler,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerAccount()
	r.registerUsers()
	r.registerTOTP()
	r.registerSystem()
	r.registerDocs()
	r.registerStatic()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Blog Admin Security API
//	@version		0.1.0
//	@description	Authentication and authorization front of the blog admin backend.
//	@description
//	@description				Tokens are JWTs signed with HS512 or EdDSA. EdDSA keys are published at the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/blogadmin
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	// POST /login - strict rate limit by IP (password guessing)
	r.Mux.Handle("POST /login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService, Proxies: r.Proxies},
			httpx.RateLimitMiddleware(httpx.StrictLimit, r.Proxies.ClientIP),
		),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{
		AuthService: r.AuthService,
		UserService: r.UserService,
	}

	r.Mux.Handle("POST /v1/admin/token/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.rateLimitByAdmin(httpx.ModerateLimit),
		),
	)
	r.Mux.HandleFunc("GET /v1/admin/info", h.HandleInfo)

	// Old password is checked, so treat it like a login attempt.
	r.Mux.Handle("POST /v1/admin/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			r.rateLimitByAdmin(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("POST /v1/admin/users",
		r.chain.PreAuthorize(security.HasAuthority(service.AuthorityUserCreate),
			httpx.Chain(http.HandlerFunc(h.HandleCreate),
				r.rateLimitByAdmin(httpx.ModerateLimit),
			),
		),
	)
	r.Mux.Handle("GET /v1/admin/users",
		r.chain.PreAuthorize(security.HasAuthority(service.AuthorityUserRead),
			http.HandlerFunc(h.HandleList),
		),
	)
	r.Mux.Handle("GET /v1/admin/permissions",
		r.chain.PreAuthorize(security.HasAuthority(service.AuthorityPermissionRead),
			http.HandlerFunc(h.HandleListPermissions),
		),
	)
}

func (r *Router) registerTOTP() {
	h := &TOTPHandler{TOTPService: r.TOTPService}

	r.Mux.Handle("POST /v1/admin/totp/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			r.rateLimitByAdmin(httpx.ModerateLimit),
		),
	)

	// Verify and disable take a code, strict limit against brute force.
	r.Mux.Handle("POST /v1/admin/totp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			r.rateLimitByAdmin(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/admin/totp",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			r.rateLimitByAdmin(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys))
	r.Mux.Handle("GET /.well-known/jwks.json", JWKSHandler(r.keys))
	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.metrics.Registry(), promhttp.HandlerOpts{
		Registry: r.metrics.Registry(),
	}))
}

func (r *Router) registerDocs() {
	r.Mux.Handle("GET /v2/api-docs", APIDocsHandler())
	r.Mux.Handle("GET /swagger-resources/", httpSwagger.Handler(httpSwagger.URL("/v2/api-docs")))
}

// rateLimitByAdmin keys limits on client IP plus the authenticated admin,
// so admins behind one proxy do not share a bucket.
func (r *Router) rateLimitByAdmin(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimitMiddleware(cfg, httpx.CompositeKeyExtractor(":",
		r.Proxies.ClientIP,
		func(req *http.Request) string {
			if p, ok := security.PrincipalFromContext(req.Context()); ok {
				return p.UserID
			}
			return ""
		},
	))
}

func (r *Router) registerStatic() {
	if r.StaticDir == "" {
		return
	}
	r.Mux.Handle("GET /", http.FileServer(http.Dir(r.StaticDir)))
}
