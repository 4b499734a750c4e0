package sqlstore

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/ariefcatur/booknest/internal/library"
)

var auditCols = []any{"id", "event_id", "event_type", "issuance_id", "payload", "occurred_at", "created_at"}

// RecordAudit appends one consumed event. Replays of the same event id are
// accepted silently.
func (s *Store) RecordAudit(ctx context.Context, e library.AuditEntry) error {
	_, err := s.exec(ctx, s.insert(tableAuditLog).Rows(goqu.Record{
		"id":          e.ID,
		"event_id":    e.EventID,
		"event_type":  e.EventType,
		"issuance_id": e.IssuanceID,
		"payload":     e.Payload,
		"occurred_at": e.OccurredAt.UTC(),
		"created_at":  e.CreatedAt.UTC(),
	}))
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fail("record audit", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, issuanceID string) ([]library.AuditEntry, error) {
	out := []library.AuditEntry{}
	ds := s.from(tableAuditLog).
		Select(auditCols...).
		Where(goqu.C("issuance_id").Eq(issuanceID)).
		Order(goqu.C("occurred_at").Asc(), goqu.C("id").Asc())
	if err := s.selectAll(ctx, &out, ds); err != nil {
		return nil, fail("list audit", err)
	}
	return out, nil
}
