package gateway

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/mediops/internal/schema"
)

var tracer = otel.Tracer("mediops-gateway")

// Metrics counts gateway operations by outcome
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates the gateway collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediops_gateway_operations_total",
			Help: "Total number of persistence gateway operations",
		},
		[]string{"entity", "op", "outcome"},
	)
	reg.MustRegister(operations)
	return &Metrics{operations: operations}
}

func (m *Metrics) observe(entity, op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	m.operations.WithLabelValues(entity, op, outcome).Inc()
}

// TracingGateway wraps a Gateway with one span and one counter sample per operation
type TracingGateway struct {
	next    Gateway
	metrics *Metrics
}

// WithTracing decorates next. metrics may be nil.
func WithTracing(next Gateway, metrics *Metrics) *TracingGateway {
	return &TracingGateway{next: next, metrics: metrics}
}

func (g *TracingGateway) start(ctx context.Context, entity, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("gateway.entity", entity))
	return tracer.Start(ctx, "gateway."+entity+"."+op, trace.WithAttributes(attrs...))
}

func (g *TracingGateway) finish(span trace.Span, entity, op string, err error) {
	defer span.End()
	g.metrics.observe(entity, op, err)
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func idAttr(id uint) attribute.KeyValue {
	return attribute.Int64("gateway.id", int64(id))
}

func (g *TracingGateway) ListConsumers(ctx context.Context, filter ConsumerFilter) (out []schema.Consumer, err error) {
	ctx, span := g.start(ctx, "consumer", "list",
		attribute.String("filter.search", filter.Search),
		attribute.String("filter.status", filter.Status),
	)
	defer func() { g.finish(span, "consumer", "list", err) }()

	out, err = g.next.ListConsumers(ctx, filter)
	span.SetAttributes(attribute.Int("gateway.rows", len(out)))
	return out, err
}

func (g *TracingGateway) GetConsumer(ctx context.Context, id uint) (out schema.Consumer, err error) {
	ctx, span := g.start(ctx, "consumer", "get", idAttr(id))
	defer func() { g.finish(span, "consumer", "get", err) }()

	return g.next.GetConsumer(ctx, id)
}

func (g *TracingGateway) CreateConsumer(ctx context.Context, in schema.InsertConsumer) (out schema.Consumer, err error) {
	ctx, span := g.start(ctx, "consumer", "create")
	defer func() { g.finish(span, "consumer", "create", err) }()

	out, err = g.next.CreateConsumer(ctx, in)
	span.SetAttributes(idAttr(out.ID))
	return out, err
}

func (g *TracingGateway) UpdateConsumer(ctx context.Context, id uint, in schema.UpdateConsumer) (out schema.Consumer, err error) {
	ctx, span := g.start(ctx, "consumer", "update", idAttr(id))
	defer func() { g.finish(span, "consumer", "update", err) }()

	return g.next.UpdateConsumer(ctx, id, in)
}

func (g *TracingGateway) DeleteConsumer(ctx context.Context, id uint) (err error) {
	ctx, span := g.start(ctx, "consumer", "delete", idAttr(id))
	defer func() { g.finish(span, "consumer", "delete", err) }()

	return g.next.DeleteConsumer(ctx, id)
}

func (g *TracingGateway) ListInventory(ctx context.Context, filter InventoryFilter) (out []schema.InventoryItem, err error) {
	ctx, span := g.start(ctx, "inventory", "list", attribute.String("filter.search", filter.Search))
	defer func() { g.finish(span, "inventory", "list", err) }()

	out, err = g.next.ListInventory(ctx, filter)
	span.SetAttributes(attribute.Int("gateway.rows", len(out)))
	return out, err
}

func (g *TracingGateway) CreateInventoryItem(ctx context.Context, in schema.InsertInventory) (out schema.InventoryItem, err error) {
	ctx, span := g.start(ctx, "inventory", "create", attribute.String("inventory.sku", in.SkuOrID))
	defer func() { g.finish(span, "inventory", "create", err) }()

	out, err = g.next.CreateInventoryItem(ctx, in)
	span.SetAttributes(idAttr(out.ID))
	return out, err
}

func (g *TracingGateway) UpdateInventoryItem(ctx context.Context, id uint, in schema.UpdateInventory) (out schema.InventoryItem, err error) {
	ctx, span := g.start(ctx, "inventory", "update", idAttr(id))
	defer func() { g.finish(span, "inventory", "update", err) }()

	return g.next.UpdateInventoryItem(ctx, id, in)
}

func (g *TracingGateway) DeleteInventoryItem(ctx context.Context, id uint) (err error) {
	ctx, span := g.start(ctx, "inventory", "delete", idAttr(id))
	defer func() { g.finish(span, "inventory", "delete", err) }()

	return g.next.DeleteInventoryItem(ctx, id)
}

func (g *TracingGateway) ListAnalytics(ctx context.Context) (out []schema.AnalyticsSample, err error) {
	ctx, span := g.start(ctx, "analytics", "list")
	defer func() { g.finish(span, "analytics", "list", err) }()

	out, err = g.next.ListAnalytics(ctx)
	span.SetAttributes(attribute.Int("gateway.rows", len(out)))
	return out, err
}

func (g *TracingGateway) ListEmergencies(ctx context.Context) (out []schema.Emergency, err error) {
	ctx, span := g.start(ctx, "emergency", "list")
	defer func() { g.finish(span, "emergency", "list", err) }()

	out, err = g.next.ListEmergencies(ctx)
	span.SetAttributes(attribute.Int("gateway.rows", len(out)))
	return out, err
}

func (g *TracingGateway) CreateEmergency(ctx context.Context, in schema.InsertEmergency) (out schema.Emergency, err error) {
	ctx, span := g.start(ctx, "emergency", "create", attribute.String("emergency.type", in.EmergencyType))
	defer func() { g.finish(span, "emergency", "create", err) }()

	out, err = g.next.CreateEmergency(ctx, in)
	span.SetAttributes(idAttr(out.ID))
	return out, err
}

func (g *TracingGateway) UpdateEmergencyStatus(ctx context.Context, id uint, status string) (out schema.Emergency, err error) {
	ctx, span := g.start(ctx, "emergency", "update_status", idAttr(id), attribute.String("emergency.status", status))
	defer func() { g.finish(span, "emergency", "update_status", err) }()

	return g.next.UpdateEmergencyStatus(ctx, id, status)
}

func (g *TracingGateway) DeleteEmergency(ctx context.Context, id uint) (err error) {
	ctx, span := g.start(ctx, "emergency", "delete", idAttr(id))
	defer func() { g.finish(span, "emergency", "delete", err) }()

	return g.next.DeleteEmergency(ctx, id)
}
