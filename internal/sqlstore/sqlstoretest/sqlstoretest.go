// Package sqlstoretest provides a migrated SQLite-backed store for tests.
package sqlstoretest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/booknest/internal/library"
	"github.com/ariefcatur/booknest/internal/sqlstore"
)

// Epoch is the created_at stamp of seeded rows.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// New opens a fresh database file under t.TempDir and applies the schema.
func New(t testing.TB) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "library.db")

	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn)
	require.NoError(t, err)
	store := sqlstore.New(db)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(ctx))
	return store
}

// Catalog creates one category and one collection for books to reference.
func Catalog(t testing.TB, s library.Store) (library.Category, library.Collection) {
	t.Helper()
	ctx := context.Background()
	cat, err := s.CreateCategory(ctx, library.Category{ID: uuid.NewString(), Name: "Fiction", CreatedAt: Epoch})
	require.NoError(t, err)
	col, err := s.CreateCollection(ctx, library.Collection{ID: uuid.NewString(), Name: "Main hall", CreatedAt: Epoch})
	require.NoError(t, err)
	return cat, col
}

func Book(t testing.TB, s library.Store, name string, cat library.Category, col library.Collection) library.Book {
	t.Helper()
	b, err := s.CreateBook(context.Background(), library.Book{
		ID:           uuid.NewString(),
		Name:         name,
		CategoryID:   cat.ID,
		CollectionID: col.ID,
		CreatedAt:    Epoch,
	})
	require.NoError(t, err)
	return b
}

func Member(t testing.TB, s library.Store, name, email string) library.Member {
	t.Helper()
	id := uuid.NewString()
	m, err := s.CreateMember(context.Background(),
		library.Member{ID: id, Name: name, Email: email, CreatedAt: Epoch},
		library.Membership{ID: uuid.NewString(), MemberID: id, Status: library.MembershipActive, CreatedAt: Epoch},
	)
	require.NoError(t, err)
	return m
}

// Issuance inserts a loan directly, bypassing the service rules.
func Issuance(t testing.TB, s library.Store, b library.Book, m library.Member, due time.Time, status library.IssuanceStatus) library.Issuance {
	t.Helper()
	iss, err := s.CreateIssuance(context.Background(), library.Issuance{
		ID:         uuid.NewString(),
		BookID:     b.ID,
		MemberID:   m.ID,
		IssueDate:  Epoch,
		ReturnDate: due.UTC(),
		Status:     status,
		CreatedAt:  Epoch,
	})
	require.NoError(t, err)
	return iss
}
