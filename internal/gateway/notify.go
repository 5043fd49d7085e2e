package gateway

import (
	"context"

	"github.com/tair/mediops/internal/schema"
	"github.com/tair/mediops/pkg/logger"
)

// Emergency event kinds
const (
	EventEmergencyReported      = "emergency.reported"
	EventEmergencyStatusChanged = "emergency.status_changed"
	EventEmergencyDeleted       = "emergency.deleted"
)

// EmergencyNotifier receives emergency writes after they are committed
type EmergencyNotifier interface {
	Notify(ctx context.Context, kind string, e schema.Emergency) error
}

// NotifyingGateway publishes an event after every successful emergency
// write. A failed notification is logged and does not fail the write.
type NotifyingGateway struct {
	Gateway
	notifier EmergencyNotifier
}

// WithNotifier decorates next with emergency event publishing
func WithNotifier(next Gateway, notifier EmergencyNotifier) *NotifyingGateway {
	return &NotifyingGateway{Gateway: next, notifier: notifier}
}

func (g *NotifyingGateway) notify(ctx context.Context, kind string, e schema.Emergency) {
	if err := g.notifier.Notify(ctx, kind, e); err != nil {
		logger.WithContext(ctx).Warn().
			Err(err).
			Str("event", kind).
			Uint("emergency_id", e.ID).
			Msg("Failed to publish emergency event")
	}
}

func (g *NotifyingGateway) CreateEmergency(ctx context.Context, in schema.InsertEmergency) (schema.Emergency, error) {
	e, err := g.Gateway.CreateEmergency(ctx, in)
	if err != nil {
		return e, err
	}
	g.notify(ctx, EventEmergencyReported, e)
	return e, nil
}

func (g *NotifyingGateway) UpdateEmergencyStatus(ctx context.Context, id uint, status string) (schema.Emergency, error) {
	e, err := g.Gateway.UpdateEmergencyStatus(ctx, id, status)
	if err != nil {
		return e, err
	}
	g.notify(ctx, EventEmergencyStatusChanged, e)
	return e, nil
}

func (g *NotifyingGateway) DeleteEmergency(ctx context.Context, id uint) error {
	if err := g.Gateway.DeleteEmergency(ctx, id); err != nil {
		return err
	}
	g.notify(ctx, EventEmergencyDeleted, schema.Emergency{ID: id})
	return nil
}
