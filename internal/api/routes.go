// Package api is the route table shared by the server router, the handlers,
// the client dispatcher and the generated API document.
package api

import (
	"net/http"
	"sort"

	"github.com/tair/mediops/internal/schema"
)

// Route is one immutable operation of the contract
type Route struct {
	name      string
	method    string
	path      string
	tag       string
	summary   string
	resource  string
	public    bool
	success   int
	input     schema.Validator
	query     schema.Validator
	responses map[int]schema.Validator
}

func (r *Route) Name() string     { return r.name }
func (r *Route) Method() string   { return r.method }
func (r *Route) Path() string     { return r.path }
func (r *Route) Tag() string      { return r.tag }
func (r *Route) Summary() string  { return r.summary }
func (r *Route) Public() bool     { return r.public }
func (r *Route) Success() int     { return r.success }
func (r *Route) Params() []string { return PathParams(r.path) }

// Resource names the entity the route addresses, as used in "not found" messages
func (r *Route) Resource() string { return r.resource }

// Input validates the request body; nil when the route takes none
func (r *Route) Input() schema.Validator { return r.input }

// Query validates the query string; nil when the route takes none
func (r *Route) Query() schema.Validator { return r.query }

// Response returns the validator declared for status
func (r *Route) Response(status int) (schema.Validator, bool) {
	v, ok := r.responses[status]
	return v, ok
}

// Statuses lists the declared response statuses in ascending order
func (r *Route) Statuses() []int {
	out := make([]int, 0, len(r.responses))
	for status := range r.responses {
		out = append(out, status)
	}
	sort.Ints(out)
	return out
}

// URL builds the concrete path for params
func (r *Route) URL(params Params) (string, error) {
	return BuildURL(r.path, params)
}

type ConsumerRoutes struct {
	List, Get, Create, Update, Delete *Route
}

type InventoryRoutes struct {
	List, Create, Update, Delete *Route
}

type AnalyticsRoutes struct {
	List *Route
}

type EmergencyRoutes struct {
	List, Create, UpdateStatus, Delete *Route
}

type AuthRoutes struct {
	User, Login, Logout *Route
}

// Table groups every route by resource
type Table struct {
	Consumers   ConsumerRoutes
	Inventory   InventoryRoutes
	Analytics   AnalyticsRoutes
	Emergencies EmergencyRoutes
	Auth        AuthRoutes

	all []*Route
}

// All returns every route in declaration order
func (t *Table) All() []*Route {
	out := make([]*Route, len(t.all))
	copy(out, t.all)
	return out
}

// Lookup finds a route by name
func (t *Table) Lookup(name string) (*Route, bool) {
	for _, r := range t.all {
		if r.name == name {
			return r, true
		}
	}
	return nil, false
}

// API is the contract of the MediOps service
var API = newTable()

// SessionCookie carries the session token issued by auth.login
const SessionCookie = "mediops_session"

// route is the declaration helper used by newTable. Error responses are
// derived from what the route accepts.
type route struct {
	name, method, path, tag, summary, resource string
	public                                     bool
	success                                    int
	input, query, output                       schema.Validator
}

func (d route) build() *Route {
	r := &Route{
		name:     d.name,
		method:   d.method,
		path:     d.path,
		tag:      d.tag,
		summary:  d.summary,
		resource: d.resource,
		public:   d.public,
		success:  d.success,
		input:    d.input,
		query:    d.query,
		responses: map[int]schema.Validator{
			d.success:                      d.output,
			http.StatusInternalServerError: MessageSchema.Full(),
		},
	}
	if d.input != nil || d.query != nil || len(PathParams(d.path)) > 0 {
		r.responses[http.StatusBadRequest] = ValidationErrorSchema.Full()
	}
	if len(PathParams(d.path)) > 0 {
		r.responses[http.StatusNotFound] = MessageSchema.Full()
	}
	if !d.public {
		r.responses[http.StatusUnauthorized] = MessageSchema.Full()
	}
	return r
}

func newTable() *Table {
	t := &Table{
		Consumers: ConsumerRoutes{
			List: route{
				name: "consumers.list", method: http.MethodGet, path: "/api/consumers",
				tag: "Consumers", summary: "List consumers, newest first", resource: "Consumer",
				success: http.StatusOK, query: schema.ConsumerQuerySchema.Insertable(),
				output: schema.ConsumerSchema.List(),
			}.build(),
			Get: route{
				name: "consumers.get", method: http.MethodGet, path: "/api/consumers/:id",
				tag: "Consumers", summary: "Get a consumer", resource: "Consumer",
				success: http.StatusOK, output: schema.ConsumerSchema.Full(),
			}.build(),
			Create: route{
				name: "consumers.create", method: http.MethodPost, path: "/api/consumers",
				tag: "Consumers", summary: "Create a consumer", resource: "Consumer",
				success: http.StatusCreated, input: schema.ConsumerSchema.Insertable(),
				output: schema.ConsumerSchema.Full(),
			}.build(),
			Update: route{
				name: "consumers.update", method: http.MethodPut, path: "/api/consumers/:id",
				tag: "Consumers", summary: "Partially update a consumer", resource: "Consumer",
				success: http.StatusOK, input: schema.ConsumerSchema.Partial(),
				output: schema.ConsumerSchema.Full(),
			}.build(),
			Delete: route{
				name: "consumers.delete", method: http.MethodDelete, path: "/api/consumers/:id",
				tag: "Consumers", summary: "Delete a consumer", resource: "Consumer",
				success: http.StatusNoContent, output: schema.Empty,
			}.build(),
		},

		Inventory: InventoryRoutes{
			List: route{
				name: "inventory.list", method: http.MethodGet, path: "/api/inventory",
				tag: "Inventory", summary: "List inventory, most recently updated first", resource: "Inventory item",
				success: http.StatusOK, query: schema.InventoryQuerySchema.Insertable(),
				output: schema.InventorySchema.List(),
			}.build(),
			Create: route{
				name: "inventory.create", method: http.MethodPost, path: "/api/inventory",
				tag: "Inventory", summary: "Create an inventory item", resource: "Inventory item",
				success: http.StatusCreated, input: schema.InventorySchema.Insertable(),
				output: schema.InventorySchema.Full(),
			}.build(),
			Update: route{
				name: "inventory.update", method: http.MethodPut, path: "/api/inventory/:id",
				tag: "Inventory", summary: "Partially update an inventory item", resource: "Inventory item",
				success: http.StatusOK, input: schema.InventorySchema.Partial(),
				output: schema.InventorySchema.Full(),
			}.build(),
			Delete: route{
				name: "inventory.delete", method: http.MethodDelete, path: "/api/inventory/:id",
				tag: "Inventory", summary: "Delete an inventory item", resource: "Inventory item",
				success: http.StatusNoContent, output: schema.Empty,
			}.build(),
		},

		Analytics: AnalyticsRoutes{
			List: route{
				name: "analytics.list", method: http.MethodGet, path: "/api/analytics",
				tag: "Analytics", summary: "List analytics samples, newest first", resource: "Analytics sample",
				success: http.StatusOK, output: schema.AnalyticsSchema.List(),
			}.build(),
		},

		Emergencies: EmergencyRoutes{
			List: route{
				name: "emergencies.list", method: http.MethodGet, path: "/api/emergencies",
				tag: "Emergencies", summary: "List emergency requests, newest first", resource: "Emergency",
				success: http.StatusOK, output: schema.EmergencySchema.List(),
			}.build(),
			Create: route{
				name: "emergencies.create", method: http.MethodPost, path: "/api/emergencies",
				tag: "Emergencies", summary: "Report an emergency", resource: "Emergency",
				success: http.StatusCreated, input: schema.EmergencySchema.Insertable(),
				output: schema.EmergencySchema.Full(),
			}.build(),
			UpdateStatus: route{
				name: "emergencies.updateStatus", method: http.MethodPatch, path: "/api/emergencies/:id/status",
				tag: "Emergencies", summary: "Overwrite the status of an emergency", resource: "Emergency",
				success: http.StatusOK, input: schema.EmergencyStatusSchema.Insertable(),
				output: schema.EmergencySchema.Full(),
			}.build(),
			Delete: route{
				name: "emergencies.delete", method: http.MethodDelete, path: "/api/emergencies/:id",
				tag: "Emergencies", summary: "Delete an emergency", resource: "Emergency",
				success: http.StatusNoContent, output: schema.Empty,
			}.build(),
		},

		Auth: AuthRoutes{
			User: route{
				name: "auth.user", method: http.MethodGet, path: "/api/auth/user",
				tag: "Auth", summary: "Current operator", resource: "Operator",
				success: http.StatusOK, output: schema.OperatorSchema.Full(),
			}.build(),
			Login: route{
				name: "auth.login", method: http.MethodPost, path: "/api/login",
				tag: "Auth", summary: "Start an operator session", resource: "Operator", public: true,
				success: http.StatusOK, input: schema.LoginSchema.Insertable(),
				output: schema.OperatorSchema.Full(),
			}.build(),
			Logout: route{
				name: "auth.logout", method: http.MethodGet, path: "/api/logout",
				tag: "Auth", summary: "End the operator session", resource: "Operator", public: true,
				success: http.StatusFound, output: schema.Empty,
			}.build(),
		},
	}

	// auth.user answers 401 itself instead of through the session middleware
	t.Auth.User.public = true
	t.Auth.User.responses[http.StatusUnauthorized] = MessageSchema.Full()
	t.Auth.Login.responses[http.StatusUnauthorized] = MessageSchema.Full()

	t.all = []*Route{
		t.Consumers.List, t.Consumers.Get, t.Consumers.Create, t.Consumers.Update, t.Consumers.Delete,
		t.Inventory.List, t.Inventory.Create, t.Inventory.Update, t.Inventory.Delete,
		t.Analytics.List,
		t.Emergencies.List, t.Emergencies.Create, t.Emergencies.UpdateStatus, t.Emergencies.Delete,
		t.Auth.User, t.Auth.Login, t.Auth.Logout,
	}
	return t
}
