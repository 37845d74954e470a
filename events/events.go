// Package events publishes application lifecycle notifications for
// downstream consumers such as SMS or reporting pipelines.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"agriportal-go/models"
)

const (
	TypeApplicationSubmitted = "application.submitted"
	TypeApplicationReviewed  = "application.reviewed"
)

type Event struct {
	Type          string                   `json:"type"`
	ApplicationID string                   `json:"applicationId"`
	FarmerID      string                   `json:"farmerId"`
	SchemeID      string                   `json:"schemeId"`
	Status        models.ApplicationStatus `json:"status"`
	Remarks       string                   `json:"remarks,omitempty"`
	ActorID       string                   `json:"actorId"`
	OccurredAt    time.Time                `json:"occurredAt"`
}

// FromApplication builds an event describing the application's current state.
func FromApplication(eventType string, app *models.Application, actorID string) Event {
	return Event{
		Type:          eventType,
		ApplicationID: app.ID,
		FarmerID:      app.FarmerID,
		SchemeID:      app.SchemeID,
		Status:        app.Status,
		Remarks:       app.Remarks,
		ActorID:       actorID,
		OccurredAt:    time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Publish keys messages by application id so every event for one
// application lands on the same partition, in order.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.ApplicationID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// New picks the Kafka publisher when brokers are configured.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
