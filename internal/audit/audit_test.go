package audit

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Write(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestDispatcher_DeliversToEverySinkAndDrainsOnClose(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	d := NewDispatcher(zerolog.Nop(), a, b)

	id := uint(4)
	d.Dispatch(Event{BarbershopID: 1, Action: "appointment_created", Entity: "appointment", EntityID: &id})
	d.Dispatch(Event{BarbershopID: 1, Action: "appointment_confirmed", Entity: "appointment", EntityID: &id})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	for _, s := range []*recordingSink{a, b} {
		got := s.all()
		require.Len(t, got, 2)
		assert.Equal(t, "appointment_created", got[0].Action)
		assert.False(t, got[0].OccurredAt.IsZero())
	}

	assert.NotPanics(t, func() { d.Dispatch(Event{Action: "late"}) })
	assert.Len(t, a.all(), 2)
}

func TestKafkaPublisher_Message(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	id := uint(9)
	at := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, p.Write(context.Background(), Event{
		BarbershopID: 12,
		Action:       "appointment_cancelled",
		Entity:       "appointment",
		EntityID:     &id,
		OccurredAt:   at,
	}))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "12", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "appointment_cancelled", headers["event_type"])
	assert.NotEmpty(t, headers["event_id"])

	var body eventPayload
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, headers["event_id"], body.EventID)
	assert.Equal(t, uint(12), body.BarbershopID)
	assert.Equal(t, at, body.OccurredAt)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitBrokers(""))
}
