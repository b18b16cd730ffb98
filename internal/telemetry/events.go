package telemetry

import (
	"context"
	"log"
	"time"
)

// Publisher is the event-bus surface the emitter needs; satisfied by the
// rabbitmq package.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// EventEnvelope is the wire shape of every event published to the bus.
type EventEnvelope struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventName     string    `json:"event_name"`
	OccurredAt    time.Time `json:"occurred_at"`
	Service       string    `json:"service"`
	Environment   string    `json:"environment"`
	UserID        *int      `json:"user_id,omitempty"`
	Payload       any       `json:"payload,omitempty"`
}

// EventEmitter publishes workflow events (peer transitions, messages, ws
// lifecycle) to the bus. Emission is best-effort; failures are logged.
type EventEmitter struct {
	publisher   Publisher
	service     string
	environment string
}

// NewEventEmitter constructs an EventEmitter.
func NewEventEmitter(publisher Publisher, service, environment string) *EventEmitter {
	return &EventEmitter{
		publisher:   publisher,
		service:     service,
		environment: environment,
	}
}

// Emit publishes one event. A nil emitter is a safe no-op.
func (e *EventEmitter) Emit(ctx context.Context, routingKey, eventType, eventName string, userID *int, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := EventEnvelope{
		SchemaVersion: 1,
		EventType:     eventType,
		EventName:     eventName,
		OccurredAt:    time.Now().UTC(),
		Service:       e.service,
		Environment:   e.environment,
		UserID:        userID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, routingKey, envelope); err != nil {
		log.Printf("event publish failed name=%s: %v", eventName, err)
	}
}
