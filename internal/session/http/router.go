package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/session/metrics"
	"github.com/aussiebroadwan/sessiond/internal/session/service"
	"github.com/aussiebroadwan/sessiond/internal/session/store"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"

	_ "github.com/aussiebroadwan/sessiond/api/session" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Sessions *service.SessionService
	Metrics  *metrics.Metrics

	// Limits applies per-IP rate limits. Set before ApplyRoutes.
	Limits httpx.RateLimits
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       httpx.DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			sessiond API
//	@version		0.1.0
//	@description	Username/password sessions with short-lived HS256 access tokens and longer-lived renewal tokens.
//	@description
//	@description				Renewal tokens are stored server side and can be exchanged for new access tokens at /refresh.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:4000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	// Credential endpoints share the strict per-IP limit.
	r.Mux.Handle("POST /register",
		httpx.Chain(&RegisterHandler{Sessions: r.Sessions, Metrics: r.Metrics},
			httpx.RateLimitByIP(r.Limits.Strict, r.Limits.TrustedProxies...),
		),
	)
	r.Mux.Handle("POST /login",
		httpx.Chain(&LoginHandler{Sessions: r.Sessions, Metrics: r.Metrics},
			httpx.RateLimitByIP(r.Limits.Strict, r.Limits.TrustedProxies...),
		),
	)

	r.Mux.Handle("POST /refresh",
		httpx.Chain(&RefreshHandler{Sessions: r.Sessions, Metrics: r.Metrics},
			httpx.RateLimitByIP(r.Limits.Moderate, r.Limits.TrustedProxies...),
		),
	)
	r.Mux.Handle("POST /logout",
		httpx.Chain(&LogoutHandler{Sessions: r.Sessions, Metrics: r.Metrics},
			httpx.RateLimitByIP(r.Limits.Moderate, r.Limits.TrustedProxies...),
		),
	)

	r.Mux.Handle("GET /profile",
		httpx.Chain(&ProfileHandler{Sessions: r.Sessions},
			httpx.AuthnMiddleware(meteredAuthorizer{sessions: r.Sessions, metrics: r.Metrics}),
			httpx.RateLimitBySubject(r.Limits.Lenient, r.Limits.TrustedProxies...),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient, r.Limits.TrustedProxies...),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.Limits.Lenient, r.Limits.TrustedProxies...),
		),
	)
	r.Mux.Handle("GET /metrics", r.Metrics.Handler())
}
