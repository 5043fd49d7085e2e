// Package http serves the MediOps route table over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/mediops/internal/api"
	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/operator"
	"github.com/tair/mediops/internal/schema"
	"github.com/tair/mediops/pkg/logger"
)

// DefaultCookieName is the session cookie set by the login route
const DefaultCookieName = api.SessionCookie

// HandlerConfig controls session handling and request limits
type HandlerConfig struct {
	EnforceAuth  bool
	CookieName   string
	CookieSecure bool
	MaxBodyBytes int64
}

// Handler serves every route of api.API against a gateway
type Handler struct {
	gw       gateway.Gateway
	sessions *operator.Service
	cfg      HandlerConfig
}

// NewHandler creates a new route handler
func NewHandler(gw gateway.Gateway, sessions *operator.Service, cfg HandlerConfig) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Handler{gw: gw, sessions: sessions, cfg: cfg}
}

// request carries the checked inputs of one call
type request struct {
	r     *http.Request
	w     http.ResponseWriter
	id    uint
	query json.RawMessage
	body  json.RawMessage
}

// op performs the single gateway call behind a route
type op func(ctx context.Context, req *request) (any, error)

// redirect is returned by ops whose route answers 302
type redirect string

// RegisterRoutes mounts every route of the table on router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	ops := h.operations()
	for _, route := range api.API.All() {
		fn, ok := ops[route.Name()]
		if !ok {
			panic(fmt.Sprintf("no handler for route %s", route.Name()))
		}

		var handler http.Handler = h.serve(route, fn)
		if h.cfg.EnforceAuth && !route.Public() {
			handler = h.requireSession(handler)
		}
		router.Handle(api.MuxPath(route.Path()), handler).Methods(route.Method()).Name(route.Name())
	}

	logger.Logger.Info().
		Int("routes", len(ops)).
		Bool("enforce_auth", h.cfg.EnforceAuth).
		Msg("Registered contract routes")
}

func (h *Handler) operations() map[string]op {
	t := api.API
	return map[string]op{
		t.Consumers.List.Name():   h.listConsumers,
		t.Consumers.Get.Name():    h.getConsumer,
		t.Consumers.Create.Name(): h.createConsumer,
		t.Consumers.Update.Name(): h.updateConsumer,
		t.Consumers.Delete.Name(): h.deleteConsumer,

		t.Inventory.List.Name():   h.listInventory,
		t.Inventory.Create.Name(): h.createInventoryItem,
		t.Inventory.Update.Name(): h.updateInventoryItem,
		t.Inventory.Delete.Name(): h.deleteInventoryItem,

		t.Analytics.List.Name(): h.listAnalytics,

		t.Emergencies.List.Name():         h.listEmergencies,
		t.Emergencies.Create.Name():       h.createEmergency,
		t.Emergencies.UpdateStatus.Name(): h.updateEmergencyStatus,
		t.Emergencies.Delete.Name():       h.deleteEmergency,

		t.Auth.User.Name():   h.currentUser,
		t.Auth.Login.Name():  h.login,
		t.Auth.Logout.Name(): h.logout,
	}
}

// serve checks the path id, query and body against the route, runs fn and
// writes the declared response
func (h *Handler) serve(route *api.Route, fn op) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req := &request{r: r, w: w}

		if len(route.Params()) > 0 {
			id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
			if err != nil {
				h.respondError(ctx, w, route, &schema.ValidationError{Message: "Invalid id", Field: "id"})
				return
			}
			req.id = uint(id)
		}

		if q := route.Query(); q != nil {
			normalized, err := q.Validate(schema.QueryObject(r.URL.Query()))
			if err != nil {
				h.respondError(ctx, w, route, err)
				return
			}
			req.query = normalized
		}

		if in := route.Input(); in != nil {
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					err = &schema.ValidationError{Message: "Request body too large"}
				}
				h.respondError(ctx, w, route, err)
				return
			}
			normalized, err := in.Validate(raw)
			if err != nil {
				h.respondError(ctx, w, route, err)
				return
			}
			req.body = normalized
		}

		result, err := fn(ctx, req)
		if err != nil {
			h.respondError(ctx, w, route, err)
			return
		}
		h.respond(ctx, w, route, result)
	})
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, route *api.Route, result any) {
	status := route.Success()
	switch status {
	case http.StatusFound:
		location, _ := result.(redirect)
		if location == "" {
			location = "/"
		}
		w.Header().Set("Location", string(location))
		w.WriteHeader(status)
	case http.StatusNoContent:
		w.WriteHeader(status)
	default:
		validator, _ := route.Response(status)
		body, err := schema.Encode(validator, result)
		if err != nil {
			logger.WithContext(ctx).Error().
				Err(err).
				Str("route", route.Name()).
				Msg("Response does not match its declared schema")
			respondJSON(w, http.StatusInternalServerError, api.ErrorBody{Message: api.InternalErrorMessage})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
	}
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, route *api.Route, err error) {
	var invalid *schema.ValidationError
	switch {
	case errors.As(err, &invalid):
		body := api.ErrorBody{Message: invalid.Message}
		if invalid.Field != "" {
			field := invalid.Field
			body.Field = &field
		}
		respondJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, gateway.ErrNotFound):
		respondJSON(w, http.StatusNotFound, api.ErrorBody{Message: route.Resource() + " not found"})
	case errors.Is(err, operator.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, api.ErrorBody{Message: "Invalid username or password"})
	case errors.Is(err, operator.ErrInactive):
		respondJSON(w, http.StatusUnauthorized, api.ErrorBody{Message: "Account is deactivated"})
	case errors.Is(err, operator.ErrUnauthenticated):
		respondJSON(w, http.StatusUnauthorized, api.ErrorBody{Message: "Not authenticated"})
	default:
		logger.WithContext(ctx).Error().
			Err(err).
			Str("route", route.Name()).
			Msg("Request failed")
		respondJSON(w, http.StatusInternalServerError, api.ErrorBody{Message: api.InternalErrorMessage})
	}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode %T: %w", out, err)
	}
	return out, nil
}

// nonEmpty keeps empty listings encoding as [] rather than null
func nonEmpty[T any](items []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Consumers

func (h *Handler) listConsumers(ctx context.Context, req *request) (any, error) {
	q, err := decode[schema.ConsumerQuery](req.query)
	if err != nil {
		return nil, err
	}
	return nonEmpty(h.gw.ListConsumers(ctx, gateway.ConsumerFilter{Search: q.Search, Status: q.Status}))
}

func (h *Handler) getConsumer(ctx context.Context, req *request) (any, error) {
	return h.gw.GetConsumer(ctx, req.id)
}

func (h *Handler) createConsumer(ctx context.Context, req *request) (any, error) {
	in, err := decode[schema.InsertConsumer](req.body)
	if err != nil {
		return nil, err
	}
	return h.gw.CreateConsumer(ctx, in)
}

func (h *Handler) updateConsumer(ctx context.Context, req *request) (any, error) {
	in, err := decode[schema.UpdateConsumer](req.body)
	if err != nil {
		return nil, err
	}
	return h.gw.UpdateConsumer(ctx, req.id, in)
}

func (h *Handler) deleteConsumer(ctx context.Context, req *request) (any, error) {
	return nil, h.gw.DeleteConsumer(ctx, req.id)
}

// Inventory

func (h *Handler) listInventory(ctx context.Context, req *request) (any, error) {
	q, err := decode[schema.InventoryQuery](req.query)
	if err != nil {
		return nil, err
	}
	return nonEmpty(h.gw.ListInventory(ctx, gateway.InventoryFilter{Search: q.Search}))
}

func (h *Handler) createInventoryItem(ctx context.Context, req *request) (any, error) {
	in, err := decode[schema.InsertInventory](req.body)
	if err != nil {
		return nil, err
	}
	return h.gw.CreateInventoryItem(ctx, in)
}

func (h *Handler) updateInventoryItem(ctx context.Context, req *request) (any, error) {
	in, err := decode[schema.UpdateInventory](req.body)
	if err != nil {
		return nil, err
	}
	return h.gw.UpdateInventoryItem(ctx, req.id, in)
}

func (h *Handler) deleteInventoryItem(ctx context.Context, req *request) (any, error) {
	return nil, h.gw.DeleteInventoryItem(ctx, req.id)
}

// Analytics

func (h *Handler) listAnalytics(ctx context.Context, _ *request) (any, error) {
	return nonEmpty(h.gw.ListAnalytics(ctx))
}

// Emergencies

func (h *Handler) listEmergencies(ctx context.Context, _ *request) (any, error) {
	return nonEmpty(h.gw.ListEmergencies(ctx))
}

func (h *Handler) createEmergency(ctx context.Context, req *request) (any, error) {
	in, err := decode[schema.InsertEmergency](req.body)
	if err != nil {
		return nil, err
	}
	return h.gw.CreateEmergency(ctx, in)
}

func (h *Handler) updateEmergencyStatus(ctx context.Context, req *request) (any, error) {
	in, err := decode[schema.UpdateEmergencyStatus](req.body)
	if err != nil {
		return nil, err
	}
	return h.gw.UpdateEmergencyStatus(ctx, req.id, in.Status)
}

func (h *Handler) deleteEmergency(ctx context.Context, req *request) (any, error) {
	return nil, h.gw.DeleteEmergency(ctx, req.id)
}

// Auth

func (h *Handler) currentUser(ctx context.Context, req *request) (any, error) {
	if !h.cfg.EnforceAuth {
		return operator.Demo, nil
	}
	if op, ok := operator.FromContext(ctx); ok {
		return op, nil
	}
	return h.authenticate(req.r)
}

func (h *Handler) login(ctx context.Context, req *request) (any, error) {
	creds, err := decode[schema.Login](req.body)
	if err != nil {
		return nil, err
	}
	if h.sessions == nil {
		return nil, errors.New("operator sessions are not configured")
	}

	session, err := h.sessions.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, err
	}

	http.SetCookie(req.w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return session.Operator, nil
}

func (h *Handler) logout(_ context.Context, req *request) (any, error) {
	http.SetCookie(req.w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return redirect("/"), nil
}

// requireSession rejects requests without a valid session with 401
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, err := h.authenticate(r)
		if err != nil {
			if errors.Is(err, operator.ErrUnauthenticated) || errors.Is(err, operator.ErrInactive) {
				logger.WithContext(r.Context()).Debug().
					Err(err).
					Str("path", r.URL.Path).
					Msg("Rejected request without a valid session")
				respondJSON(w, http.StatusUnauthorized, api.ErrorBody{Message: "Not authenticated"})
				return
			}
			logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to resolve session")
			respondJSON(w, http.StatusInternalServerError, api.ErrorBody{Message: api.InternalErrorMessage})
			return
		}

		next.ServeHTTP(w, r.WithContext(operator.ContextWithOperator(r.Context(), op)))
	})
}

func (h *Handler) authenticate(r *http.Request) (schema.Operator, error) {
	if h.sessions == nil {
		return schema.Operator{}, operator.ErrUnauthenticated
	}
	return h.sessions.Authenticate(r.Context(), sessionToken(r, h.cfg.CookieName))
}

// sessionToken reads a Bearer token, falling back to the session cookie
func sessionToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
