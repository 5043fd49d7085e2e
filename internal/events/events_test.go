package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublisherNotify(t *testing.T) {
	producer := mocks.NewSyncProducer(t, ProducerConfig())
	defer func() { require.NoError(t, producer.Close()) }()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event EmergencyEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != gateway.EventEmergencyReported {
			return errors.New("unexpected event type " + event.EventType)
		}
		if event.Emergency.ID != 7 || event.EventID == "" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer, "")
	err := p.Notify(context.Background(), gateway.EventEmergencyReported, schema.Emergency{
		ID: 7, Status: schema.EmergencyPending, EmergencyType: "fall",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultEmergencyTopic, p.topic)
}

func TestPublisherNotifySurfacesSendErrors(t *testing.T) {
	producer := mocks.NewSyncProducer(t, ProducerConfig())
	defer func() { require.NoError(t, producer.Close()) }()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, "emergencies")
	err := p.Notify(context.Background(), gateway.EventEmergencyDeleted, schema.Emergency{ID: 1})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func message(t *testing.T, eventType string, event EmergencyEvent) *sarama.ConsumerMessage {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{
		Topic: DefaultEmergencyTopic,
		Value: value,
		Headers: []*sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(eventType)},
			{Key: []byte(HeaderEventID), Value: []byte(event.EventID)},
		},
	}
}

func TestConsumerDispatchesByEventType(t *testing.T) {
	c := newConsumer(nil, "test", []string{DefaultEmergencyTopic})

	var got []EmergencyEvent
	for _, kind := range KnownEventTypes {
		c.RegisterHandler(kind, func(_ context.Context, e EmergencyEvent) error {
			got = append(got, e)
			return nil
		})
	}

	event := EmergencyEvent{
		EventID:   "evt-1",
		EventType: gateway.EventEmergencyStatusChanged,
		Emergency: schema.Emergency{ID: 3, Status: schema.EmergencyResolved},
	}
	require.NoError(t, c.handleMessage(context.Background(), message(t, event.EventType, event)))

	require.Len(t, got, 1)
	assert.Equal(t, uint(3), got[0].Emergency.ID)
	assert.Equal(t, schema.EmergencyResolved, got[0].Emergency.Status)
}

func TestConsumerRejectsUnknownAndMalformed(t *testing.T) {
	c := newConsumer(nil, "test", nil)
	c.RegisterHandler(gateway.EventEmergencyReported, LogHandler)

	err := c.handleMessage(context.Background(), message(t, "emergency.archived", EmergencyEvent{}))
	assert.ErrorIs(t, err, errNoHandler)

	bad := &sarama.ConsumerMessage{
		Value:   []byte("{"),
		Headers: []*sarama.RecordHeader{{Key: []byte(HeaderEventType), Value: []byte(gateway.EventEmergencyReported)}},
	}
	assert.Error(t, c.handleMessage(context.Background(), bad))
}
