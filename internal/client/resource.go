package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tair/mediops/internal/api"
	"github.com/tair/mediops/internal/schema"
)

// ErrUnsupported is returned for operations a resource does not expose
var ErrUnsupported = errors.New("operation not supported by this resource")

// Resource is the CRUD surface of one entity. T is the record, C the create
// input and U the partial update input.
type Resource[T, C, U any] struct {
	client *Client
	list   *api.Route
	get    *api.Route
	create *api.Route
	update *api.Route
	remove *api.Route
}

func unsupported(op string, route *api.Route) error {
	if route == nil {
		return fmt.Errorf("%s: %w", op, ErrUnsupported)
	}
	return nil
}

// List returns every record matching query, which may be nil
func (r *Resource[T, C, U]) List(ctx context.Context, query any) ([]T, error) {
	if err := unsupported("list", r.list); err != nil {
		return nil, err
	}
	var out []T
	if err := r.client.Do(ctx, r.list, Call{Query: query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one record
func (r *Resource[T, C, U]) Get(ctx context.Context, id uint) (T, error) {
	var out T
	if err := unsupported("get", r.get); err != nil {
		return out, err
	}
	err := r.client.Do(ctx, r.get, Call{Params: api.Params{"id": id}}, &out)
	return out, err
}

// Create inserts a record and returns it as stored
func (r *Resource[T, C, U]) Create(ctx context.Context, in C) (T, error) {
	var out T
	if err := unsupported("create", r.create); err != nil {
		return out, err
	}
	err := r.client.Do(ctx, r.create, Call{Body: in}, &out)
	return out, err
}

// Update applies a partial update and returns the record as stored
func (r *Resource[T, C, U]) Update(ctx context.Context, id uint, in U) (T, error) {
	var out T
	if err := unsupported("update", r.update); err != nil {
		return out, err
	}
	err := r.client.Do(ctx, r.update, Call{Params: api.Params{"id": id}, Body: in}, &out)
	return out, err
}

// Delete removes a record
func (r *Resource[T, C, U]) Delete(ctx context.Context, id uint) error {
	if err := unsupported("delete", r.remove); err != nil {
		return err
	}
	return r.client.Do(ctx, r.remove, Call{Params: api.Params{"id": id}}, nil)
}

type (
	ConsumerResource  = Resource[schema.Consumer, schema.InsertConsumer, schema.UpdateConsumer]
	InventoryResource = Resource[schema.InventoryItem, schema.InsertInventory, schema.UpdateInventory]
	AnalyticsResource = Resource[schema.AnalyticsSample, struct{}, struct{}]
)

// EmergencyResource adds the status overwrite to the emergency CRUD surface
type EmergencyResource struct {
	Resource[schema.Emergency, schema.InsertEmergency, struct{}]
	updateStatus *api.Route
}

// UpdateStatus overwrites the status of an emergency
func (r *EmergencyResource) UpdateStatus(ctx context.Context, id uint, status string) (schema.Emergency, error) {
	var out schema.Emergency
	err := r.client.Do(ctx, r.updateStatus, Call{
		Params: api.Params{"id": id},
		Body:   schema.UpdateEmergencyStatus{Status: status},
	}, &out)
	return out, err
}

// Consumers returns the consumer resource
func (c *Client) Consumers() *ConsumerResource {
	t := api.API.Consumers
	return &ConsumerResource{client: c, list: t.List, get: t.Get, create: t.Create, update: t.Update, remove: t.Delete}
}

// Inventory returns the inventory resource
func (c *Client) Inventory() *InventoryResource {
	t := api.API.Inventory
	return &InventoryResource{client: c, list: t.List, create: t.Create, update: t.Update, remove: t.Delete}
}

// Analytics returns the read-only analytics resource
func (c *Client) Analytics() *AnalyticsResource {
	return &AnalyticsResource{client: c, list: api.API.Analytics.List}
}

// Emergencies returns the emergency resource
func (c *Client) Emergencies() *EmergencyResource {
	t := api.API.Emergencies
	return &EmergencyResource{
		Resource: Resource[schema.Emergency, schema.InsertEmergency, struct{}]{
			client: c, list: t.List, create: t.Create, remove: t.Delete,
		},
		updateStatus: t.UpdateStatus,
	}
}

// Login starts a session and keeps its token for later calls
func (c *Client) Login(ctx context.Context, username, password string) (schema.Operator, error) {
	var op schema.Operator
	resp, err := c.do(ctx, api.API.Auth.Login, Call{
		Body: schema.Login{Username: username, Password: password},
	}, &op)
	if err != nil {
		return op, err
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == api.SessionCookie && cookie.Value != "" {
			c.SetToken(cookie.Value)
			return op, nil
		}
	}
	return op, &api.ContractViolation{
		Route:  api.API.Auth.Login.Name(),
		Status: http.StatusOK,
		Cause:  errors.New("login response carried no session cookie"),
	}
}

// CurrentUser returns the operator of the current session
func (c *Client) CurrentUser(ctx context.Context) (schema.Operator, error) {
	var op schema.Operator
	err := c.Do(ctx, api.API.Auth.User, Call{}, &op)
	return op, err
}

// Logout ends the session and forgets its token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Do(ctx, api.API.Auth.Logout, Call{}, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}
