package http

import (
	"net/http"

	"github.com/atinyakov/MapKeeper/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterOptions carries the non-handler dependencies of the router.
type RouterOptions struct {
	// APIKey is the public key required on /api. Empty disables the check.
	APIKey string
	// Authorizer validates bearer tokens on protected routes.
	Authorizer middleware.Authorizer
	// Registry receives the HTTP metrics and is exposed at /metrics.
	Registry *prometheus.Registry
}

// NewRouter constructs and returns an HTTP handler that serves
// the marker service API.
//
// Routes:
//
//	GET    /healthz              → "ok"
//	GET    /metrics              → Prometheus metrics
//	GET    /data.json            → dataHandler (legacy static markers)
//	POST   /api/auth/signup      → authHandler.SignUp
//	POST   /api/auth/signin      → authHandler.SignIn
//	POST   /api/auth/signout     → authHandler.SignOut      (bearer token)
//	GET    /api/locations        → locationHandler.List     (bearer token)
//	POST   /api/locations        → locationHandler.Create   (bearer token)
//	PATCH  /api/locations/{id}   → locationHandler.Update   (bearer token)
//	DELETE /api/locations/{id}   → locationHandler.Delete   (bearer token)
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer
//  2. WithRequestLogging(logger)
//  3. Metrics
//  4. on /api: AllowContentType("application/json"), APIKey
//  5. on protected routes: RequireAuth
func NewRouter(
	authHandler *AuthHandler,
	locationHandler *LocationHandler,
	dataHandler http.Handler,
	logger *zap.Logger,
	opts RouterOptions,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	if opts.Registry != nil {
		r.Use(middleware.NewMetrics(opts.Registry).Handler)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/data.json", dataHandler)

	r.Route("/api", func(r chi.Router) {
		// Only allow requests with Content-Type: application/json
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Use(middleware.APIKey(opts.APIKey))

		// Public endpoints
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/signin", authHandler.SignIn)
		r.Post("/auth/signout", authHandler.SignOut)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(opts.Authorizer))

			r.Get("/locations", locationHandler.List)
			r.Post("/locations", locationHandler.Create)
			r.Patch("/locations/{id}", locationHandler.Update)
			r.Delete("/locations/{id}", locationHandler.Delete)
		})
	})

	return r
}
