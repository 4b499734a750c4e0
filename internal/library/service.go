package library

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service implements the catalog, member and issuance operations on top of
// a Store. It holds no mutable state of its own.
type Service struct {
	store Store
	pub   Publisher
	now   func() time.Time
	newID func() string
	log   *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		pub:   noopPublisher{},
		now:   time.Now,
		newID: uuid.NewString,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// clock returns the current time in UTC at the precision Postgres keeps.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// checkID treats anything that is not a UUID as a missing row.
func checkID(entity, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &NotFoundError{Entity: entity}
	}
	return nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
