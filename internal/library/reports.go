package library

import (
	"context"
	"time"
)

const (
	DefaultMostBorrowedLimit = 10
	MaxMostBorrowedLimit     = 100
)

// ListOutstanding returns every pending issuance, earliest due first.
func (s *Service) ListOutstanding(ctx context.Context) ([]Issuance, error) {
	return s.ListIssuances(ctx, IssuanceQuery{Status: StatusPending})
}

// ListOverdue returns pending issuances whose return_date is strictly before now.
func (s *Service) ListOverdue(ctx context.Context) ([]Issuance, error) {
	now := s.clock()
	return s.listWith(ctx, s.store, overdueQuery(now), now)
}

// ListPendingReturns returns pending issuances that are not yet due.
func (s *Service) ListPendingReturns(ctx context.Context) ([]Issuance, error) {
	now := s.clock()
	return s.listWith(ctx, s.store, upcomingQuery(now), now)
}

// ComputeStats builds the dashboard aggregate from a single read-only
// snapshot so the counts and lists agree with each other.
func (s *Service) ComputeStats(ctx context.Context) (Stats, error) {
	now := s.clock()
	var st Stats
	err := s.store.ReadSnapshot(ctx, func(tx Store) error {
		var err error
		if st.TotalBooks, err = tx.CountBooks(ctx); err != nil {
			return err
		}
		if st.TotalMembers, err = tx.CountMembers(ctx); err != nil {
			return err
		}
		if st.ActiveIssuances, err = tx.CountIssuances(ctx, IssuanceQuery{Status: StatusPending}); err != nil {
			return err
		}
		if st.OutstandingBooks, err = s.listWith(ctx, tx, overdueQuery(now), now); err != nil {
			return err
		}
		st.PendingReturns, err = s.listWith(ctx, tx, upcomingQuery(now), now)
		return err
	})
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}

// ListNeverBorrowed returns books that no issuance has ever referenced,
// whatever that issuance's status.
func (s *Service) ListNeverBorrowed(ctx context.Context) ([]Book, error) {
	return s.store.NeverBorrowed(ctx)
}

// ListMostBorrowed ranks books by issuance count. limit <= 0 means the default.
func (s *Service) ListMostBorrowed(ctx context.Context, limit int) ([]BorrowCount, error) {
	switch {
	case limit <= 0:
		limit = DefaultMostBorrowedLimit
	case limit > MaxMostBorrowedLimit:
		limit = MaxMostBorrowedLimit
	}
	return s.store.MostBorrowed(ctx, limit)
}

func (s *Service) listWith(ctx context.Context, st IssuanceStore, q IssuanceQuery, now time.Time) ([]Issuance, error) {
	out, err := st.ListIssuances(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.deriveAll(out, now), nil
}

func overdueQuery(now time.Time) IssuanceQuery {
	return IssuanceQuery{Status: StatusPending, DueBefore: &now}
}

func upcomingQuery(now time.Time) IssuanceQuery {
	return IssuanceQuery{Status: StatusPending, DueFrom: &now}
}
