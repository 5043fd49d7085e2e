// Package events publishes emergency lifecycle events to Kafka and consumes
// them in the notifier process.
package events

import (
	"time"

	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

// DefaultEmergencyTopic is the topic used when none is configured
const DefaultEmergencyTopic = "emergency-events"

// Header keys carried alongside the trace context
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

// EmergencyEvent represents an emergency write on the wire
type EmergencyEvent struct {
	EventID    string           `json:"event_id"`
	EventType  string           `json:"event_type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Emergency  schema.Emergency `json:"emergency"`
}

// KnownEventTypes lists the event kinds the notifier handles
var KnownEventTypes = []string{
	gateway.EventEmergencyReported,
	gateway.EventEmergencyStatusChanged,
	gateway.EventEmergencyDeleted,
}
