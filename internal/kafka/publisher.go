package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/ariefcatur/booknest/internal/library"
)

const HeaderEventType = "event_type"

type publisher interface {
	Publish(key, value []byte, headers ...kafka.Header) error
}

// IssuancePublisher wraps issuance lifecycle changes in an Envelope and
// hands them to the producer, keyed by issuance id.
type IssuancePublisher struct {
	p        publisher
	producer string
	now      func() time.Time
}

var _ library.Publisher = (*IssuancePublisher)(nil)

func NewIssuancePublisher(p publisher, producerName string) *IssuancePublisher {
	return &IssuancePublisher{p: p, producer: producerName, now: time.Now}
}

func (ip *IssuancePublisher) PublishIssuance(ctx context.Context, eventType string, iss library.Issuance) error {
	payload, err := Marshal(library.PayloadFor(iss))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	env := library.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    ip.now().UTC(),
		Producer:      ip.producer,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: iss.ID,
		Payload:       payload,
	}
	b, err := Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return ip.p.Publish(library.PartitionKey(iss.ID), b, kafka.Header{Key: HeaderEventType, Value: []byte(eventType)})
}
