// Package audit consumes issuance lifecycle events and appends them to the
// audit log.
package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/booknest/internal/kafka"
	"github.com/ariefcatur/booknest/internal/library"
)

// Deduper remembers processed event ids. *redisx.Dedup implements it.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type Service struct {
	Store library.AuditStore
	Dedup Deduper // optional; the store also ignores replays
	Log   *slog.Logger
	Now   func() time.Time
}

var handled = map[string]bool{
	library.EventIssuanceCreated:  true,
	library.EventIssuanceReturned: true,
	library.EventIssuanceUpdated:  true,
}

// HandleIssuanceEvent is installed as the consumer handler. It returns an
// error only when the message should be retried.
func (s *Service) HandleIssuanceEvent(ctx context.Context, m kafkago.Message) error {
	log := s.logger()

	var env library.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		// a message that never decodes would block the partition forever
		log.Warn("dropping undecodable message", "offset", m.Offset, "err", err)
		return nil
	}
	if !handled[env.EventType] {
		return nil
	}

	if s.Dedup != nil {
		seen, err := s.Dedup.Seen(ctx, env.EventID)
		if err != nil {
			log.Warn("dedup lookup failed", "event_id", env.EventID, "err", err)
		}
		if seen {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[library.IssuancePayload](env.Payload)
	if err != nil || p.IssuanceID == "" {
		log.Warn("dropping event without issuance", "event_id", env.EventID, "err", err)
		return nil
	}

	entry := library.AuditEntry{
		ID:         uuid.NewString(),
		EventID:    env.EventID,
		EventType:  env.EventType,
		IssuanceID: p.IssuanceID,
		Payload:    string(env.Payload),
		OccurredAt: env.OccurredAt.UTC(),
		CreatedAt:  s.now(),
	}
	if err := s.Store.RecordAudit(ctx, entry); err != nil {
		return fmt.Errorf("record audit %s: %w", env.EventID, err)
	}

	if s.Dedup != nil {
		if err := s.Dedup.Mark(ctx, env.EventID); err != nil {
			log.Warn("dedup mark failed", "event_id", env.EventID, "err", err)
		}
	}
	log.Info("issuance event recorded",
		"event_id", env.EventID, "event_type", env.EventType, "issuance_id", p.IssuanceID, "trace_id", env.TraceID)
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
