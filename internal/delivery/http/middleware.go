package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/mediops/internal/api"
	"github.com/tair/mediops/pkg/logger"
)

// HeaderRequestID correlates a request across client, server logs and events
const HeaderRequestID = "X-Request-ID"

// MiddlewareConfig holds configuration for middlewares
type MiddlewareConfig struct {
	EnableLogging   bool
	EnableTracing   bool
	EnableCORS      bool
	EnableRecovery  bool
	EnableTimeout   bool
	TimeoutDuration time.Duration
	CORSOptions     cors.Options
	Metrics         *Metrics
	RateLimiter     *RateLimiter
}

// DefaultMiddlewareConfig returns default middleware configuration
func DefaultMiddlewareConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		EnableLogging:   true,
		EnableTracing:   true,
		EnableCORS:      true,
		EnableRecovery:  true,
		EnableTimeout:   true,
		TimeoutDuration: 30 * time.Second,
		CORSOptions: cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		},
	}
}

// chain lists the enabled middlewares, outermost first
func (c *MiddlewareConfig) chain() ([]mux.MiddlewareFunc, []string) {
	var (
		mws   []mux.MiddlewareFunc
		names []string
	)
	add := func(name string, mw mux.MiddlewareFunc) {
		mws = append(mws, mw)
		names = append(names, name)
	}

	// recovery sits outside everything so a panic anywhere still gets the 500 body
	if c.EnableRecovery {
		add("recovery", RecoveryMiddleware())
	}
	add("request_id", RequestIDMiddleware())
	if c.EnableTracing {
		add("tracing", TracingMiddleware())
	}
	if c.EnableLogging {
		add("logging", LoggingMiddleware)
	}
	if c.Metrics != nil {
		add("metrics", c.Metrics.Middleware)
	}
	add("security_headers", SecurityHeadersMiddleware())
	if c.RateLimiter != nil {
		add("rate_limit", c.RateLimiter.Middleware)
	}
	if c.EnableTimeout && c.TimeoutDuration > 0 {
		add("timeout", TimeoutMiddleware(c.TimeoutDuration))
	}
	return mws, names
}

// RegisterMiddlewares registers all configured middlewares to the router
func RegisterMiddlewares(router *mux.Router, config *MiddlewareConfig) {
	mws, names := config.chain()
	router.Use(mws...)

	logger.Logger.Info().
		Strs("middlewares", names).
		Dur("timeout", config.TimeoutDuration).
		Msg("Middlewares registered")
}

// routeLabel names the matched route by its template, or "unmatched"
func routeLabel(r *http.Request) string {
	if current := mux.CurrentRoute(r); current != nil {
		if tpl, err := current.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// routeName is the route table name of the matched route, if any
func routeName(r *http.Request) string {
	if current := mux.CurrentRoute(r); current != nil {
		return current.GetName()
	}
	return ""
}

// RecoveryMiddleware turns a panic into the generic 500 body. Nothing is
// written when the handler already started its response.
func RecoveryMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithContext(r.Context()).Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("route", routeName(r)).
						Msg("Panic recovered")

					if !rw.wroteHeader {
						respondJSON(rw, http.StatusInternalServerError, api.ErrorBody{Message: api.InternalErrorMessage})
					}
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

// TimeoutMiddleware bounds each request; the late response is a JSON error body
func TimeoutMiddleware(timeout time.Duration) mux.MiddlewareFunc {
	body, _ := json.Marshal(api.ErrorBody{Message: "Request timeout"})
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}

// TracingMiddleware starts one server span per request named after the
// route template, so span names stay bounded
func TracingMiddleware() mux.MiddlewareFunc {
	return otelhttp.NewMiddleware("mediops-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + routeLabel(r)
		}),
	)
}

// RequestIDMiddleware keeps the caller's X-Request-ID or assigns one
func RequestIDMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(HeaderRequestID, requestID)
			r.Header.Set(HeaderRequestID, requestID)

			next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), requestID)))
		})
	}
}

func levelFor(status int) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

// LoggingMiddleware logs each request when it starts and when it completes
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		ctx := r.Context()
		traceID := "no-trace"
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			traceID = sc.TraceID().String()
		}
		log := logger.WithContext(ctx).With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", routeName(r)).
			Str("trace_id", traceID).
			Logger()

		log.Debug().
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("HTTP request started")

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.WithLevel(levelFor(rw.statusCode)).
			Int("status", rw.statusCode).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("HTTP request completed")
	})
}

// SecurityHeadersMiddleware marks every response as non-cacheable JSON
// that must not be framed or sniffed
func SecurityHeadersMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}

// SetupCORS wraps the whole router, so preflight requests never reach mux
func SetupCORS(config *MiddlewareConfig) func(http.Handler) http.Handler {
	if !config.EnableCORS {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.New(config.CORSOptions).Handler
}

// statusRecorder remembers the first status code written
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
