package library

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CreateIssuance lends a book. The status is always pending and the issue
// date is the current time, whatever the client sent.
func (s *Service) CreateIssuance(ctx context.Context, in IssuanceInput) (Issuance, error) {
	due, err := in.Validate()
	if err != nil {
		return Issuance{}, err
	}
	now := s.clock()
	iss, err := s.store.CreateIssuance(ctx, Issuance{
		ID:         s.newID(),
		BookID:     in.BookID,
		MemberID:   in.MemberID,
		IssuedBy:   in.IssuedBy,
		IssueDate:  now,
		ReturnDate: due,
		Status:     StatusPending,
		CreatedAt:  now,
	})
	if err != nil {
		return Issuance{}, err
	}
	s.publish(ctx, EventIssuanceCreated, iss)
	return s.derive(iss, now), nil
}

func (s *Service) GetIssuance(ctx context.Context, id string) (Issuance, error) {
	if err := checkID("Issuance", id); err != nil {
		return Issuance{}, err
	}
	iss, err := s.store.GetIssuance(ctx, id)
	if err != nil {
		return Issuance{}, err
	}
	return s.derive(iss, s.clock()), nil
}

func (s *Service) ListIssuances(ctx context.Context, q IssuanceQuery) ([]Issuance, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, Invalid("Status must be one of: pending, returned")
	}
	for _, id := range []string{q.BookID, q.MemberID} {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, Invalid("Invalid book or member id")
		}
	}
	out, err := s.store.ListIssuances(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.deriveAll(out, s.clock()), nil
}

// MarkReturned moves a pending issuance to returned and leaves return_date
// untouched. Calling it on an issuance that is already returned is a no-op
// that returns the stored record.
func (s *Service) MarkReturned(ctx context.Context, id string) (Issuance, error) {
	status := StatusReturned
	return s.transition(ctx, id, IssuancePatch{Status: &status})
}

// UpdateIssuance changes return_date and/or status. Status changes must
// follow CanTransition.
func (s *Service) UpdateIssuance(ctx context.Context, id string, in IssuanceUpdate) (Issuance, error) {
	if err := checkID("Issuance", id); err != nil {
		return Issuance{}, err
	}
	p, err := in.Validate()
	if err != nil {
		return Issuance{}, err
	}
	return s.transition(ctx, id, p)
}

func (s *Service) transition(ctx context.Context, id string, p IssuancePatch) (Issuance, error) {
	if err := checkID("Issuance", id); err != nil {
		return Issuance{}, err
	}
	cur, err := s.store.GetIssuance(ctx, id)
	if err != nil {
		return Issuance{}, err
	}
	if p.Status != nil {
		switch {
		case *p.Status == cur.Status:
			p.Status = nil
		case !CanTransition(cur.Status, *p.Status):
			return Issuance{}, &ConflictError{
				Details: "Cannot change issuance status from " + string(cur.Status) + " to " + string(*p.Status),
			}
		}
	}
	if p.Status == nil && p.ReturnDate == nil {
		return s.derive(cur, s.clock()), nil
	}

	updated, err := s.store.UpdateIssuance(ctx, id, cur.Status, p)
	if errors.Is(err, ErrConflict) && p.Status != nil && *p.Status == StatusReturned && p.ReturnDate == nil {
		// another request returned it first
		return s.GetIssuance(ctx, id)
	}
	if err != nil {
		return Issuance{}, err
	}

	event := EventIssuanceUpdated
	if p.Status != nil && *p.Status == StatusReturned {
		event = EventIssuanceReturned
	}
	s.publish(ctx, event, updated)
	return s.derive(updated, s.clock()), nil
}

func (s *Service) publish(ctx context.Context, eventType string, iss Issuance) {
	if err := s.pub.PublishIssuance(ctx, eventType, iss); err != nil {
		s.log.Warn("publish issuance event failed", "event_type", eventType, "issuance_id", iss.ID, "err", err)
	}
}

func (s *Service) derive(iss Issuance, now time.Time) Issuance {
	iss.Overdue = iss.IsOverdue(now)
	return iss
}

func (s *Service) deriveAll(in []Issuance, now time.Time) []Issuance {
	out := make([]Issuance, 0, len(in))
	for _, iss := range in {
		out = append(out, s.derive(iss, now))
	}
	return out
}

// IssuanceHistory returns the audit trail recorded for one issuance.
func (s *Service) IssuanceHistory(ctx context.Context, id string) ([]AuditEntry, error) {
	if _, err := s.GetIssuance(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListAudit(ctx, id)
}
