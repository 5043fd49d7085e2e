package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tair/mediops/internal/api"
	"github.com/tair/mediops/internal/health"
)

// RouterConfig collects what NewRouter mounts next to the contract routes
type RouterConfig struct {
	Middleware *MiddlewareConfig
	Health     *health.Checker
	Gatherer   prometheus.Gatherer
	Swagger    bool
}

// NewRouter builds the full HTTP surface: contract routes, health probes,
// metrics and API docs, wrapped in CORS
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.Middleware == nil {
		cfg.Middleware = DefaultMiddlewareConfig()
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, api.ErrorBody{Message: "Not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, api.ErrorBody{Message: "Method not allowed"})
	})

	RegisterMiddlewares(router, cfg.Middleware)

	if cfg.Health != nil {
		router.HandleFunc("/health", cfg.Health.QuickHandler).Methods(http.MethodGet)
		router.HandleFunc("/health/ready", cfg.Health.ReadyHandler).Methods(http.MethodGet)
	}

	if cfg.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	if cfg.Swagger {
		router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h.RegisterRoutes(router)

	return SetupCORS(cfg.Middleware)(router)
}
