package library

import "context"

// Store is the persistence collaborator. Implementations must return the
// error types from errors.go so callers can map them.
type Store interface {
	CatalogStore
	MemberStore
	IssuanceStore
	ReportStore
	AuditStore

	// ReadSnapshot runs fn inside one read-only transaction.
	ReadSnapshot(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

type CatalogStore interface {
	ListBooks(ctx context.Context) ([]Book, error)
	GetBook(ctx context.Context, id string) (Book, error)
	CreateBook(ctx context.Context, b Book) (Book, error)
	UpdateBook(ctx context.Context, b Book) (Book, error)
	// DeleteBook fails with a ConflictError while issuances reference the book.
	DeleteBook(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListCollections(ctx context.Context) ([]Collection, error)
	GetCollection(ctx context.Context, id string) (Collection, error)
	CreateCollection(ctx context.Context, c Collection) (Collection, error)
	UpdateCollection(ctx context.Context, c Collection) (Collection, error)
	DeleteCollection(ctx context.Context, id string) error
}

type MemberStore interface {
	ListMembers(ctx context.Context) ([]Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
	// CreateMember inserts the member and its membership atomically.
	CreateMember(ctx context.Context, m Member, ms Membership) (Member, error)
	UpdateMember(ctx context.Context, m Member) (Member, error)
	DeleteMember(ctx context.Context, id string) error
	SetMembershipStatus(ctx context.Context, memberID string, status MembershipStatus) (Membership, error)
}

type IssuanceStore interface {
	CreateIssuance(ctx context.Context, iss Issuance) (Issuance, error)
	GetIssuance(ctx context.Context, id string) (Issuance, error)
	// ListIssuances orders by return_date ascending.
	ListIssuances(ctx context.Context, q IssuanceQuery) ([]Issuance, error)
	// UpdateIssuance applies the patch only while the row is still in
	// fromStatus (when non-empty); otherwise it returns a ConflictError.
	UpdateIssuance(ctx context.Context, id string, fromStatus IssuanceStatus, p IssuancePatch) (Issuance, error)
}

type ReportStore interface {
	CountBooks(ctx context.Context) (int, error)
	CountMembers(ctx context.Context) (int, error)
	CountIssuances(ctx context.Context, q IssuanceQuery) (int, error)
	NeverBorrowed(ctx context.Context) ([]Book, error)
	MostBorrowed(ctx context.Context, limit int) ([]BorrowCount, error)
}

type AuditStore interface {
	// RecordAudit treats an already recorded event id as success.
	RecordAudit(ctx context.Context, e AuditEntry) error
	// ListAudit returns the trail of one issuance, oldest first.
	ListAudit(ctx context.Context, issuanceID string) ([]AuditEntry, error)
}

// Publisher receives issuance lifecycle events. Failures never fail the
// request that produced the event.
type Publisher interface {
	PublishIssuance(ctx context.Context, eventType string, iss Issuance) error
}

type noopPublisher struct{}

func (noopPublisher) PublishIssuance(context.Context, string, Issuance) error { return nil }
