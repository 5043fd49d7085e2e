// Package datasource picks where the console reads and writes: a live
// MediOps server or the built-in demo records.
package datasource

import (
	"context"
	"errors"

	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

// ErrReadOnly is returned by every write against demo data
var ErrReadOnly = errors.New("write actions are disabled in demo mode")

// DataSource is the surface the console works against. It is chosen once at
// startup and passed explicitly.
type DataSource interface {
	gateway.Gateway
	CurrentUser(ctx context.Context) (schema.Operator, error)
	ReadOnly() bool
}
