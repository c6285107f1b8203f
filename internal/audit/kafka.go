package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits every audit event as a lifecycle message keyed by
// barbershop, so one shop's events stay ordered on a partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

type eventPayload struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	BarbershopID uint      `json:"barbershop_id"`
	UserID       *uint     `json:"user_id,omitempty"`
	Entity       string    `json:"entity"`
	EntityID     *uint     `json:"entity_id,omitempty"`
	Metadata     any       `json:"metadata,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (p *KafkaPublisher) Write(ctx context.Context, ev Event) error {
	id := uuid.NewString()

	value, err := json.Marshal(eventPayload{
		EventID:      id,
		EventType:    ev.Action,
		BarbershopID: ev.BarbershopID,
		UserID:       ev.UserID,
		Entity:       ev.Entity,
		EntityID:     ev.EntityID,
		Metadata:     ev.Metadata,
		OccurredAt:   ev.OccurredAt,
	})
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.BarbershopID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(id)},
			{Key: "event_type", Value: []byte(ev.Action)},
		},
	}
	msg.Headers = injectTraceHeaders(ctx, msg.Headers)

	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
