package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/booknest/internal/library"
	"github.com/ariefcatur/booknest/internal/sqlstore/sqlstoretest"
)

func TestMigrateIsRepeatable(t *testing.T) {
	store := sqlstoretest.New(t)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Ping(context.Background()))
}

func TestNotFoundMapping(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	id := uuid.NewString()

	_, err := store.GetBook(ctx, id)
	var nf *library.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Book not found", nf.Error())

	_, err = store.GetIssuance(ctx, id)
	assert.ErrorIs(t, err, library.ErrNotFound)

	_, err = store.UpdateMember(ctx, library.Member{ID: id, Name: "x", Email: "x@x.com"})
	assert.ErrorIs(t, err, library.ErrNotFound)

	assert.ErrorIs(t, store.DeleteCollection(ctx, id), library.ErrNotFound)
}

func TestCreateMemberIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	sqlstoretest.Member(t, store, "Alice", "a@x.com")

	id := uuid.NewString()
	_, err := store.CreateMember(ctx,
		library.Member{ID: id, Name: "Alice again", Email: "a@x.com", CreatedAt: sqlstoretest.Epoch},
		library.Membership{ID: uuid.NewString(), MemberID: id, Status: library.MembershipActive, CreatedAt: sqlstoretest.Epoch},
	)
	var conflict *library.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Email already registered", conflict.Details)

	// the membership insert fails on its CHECK constraint, so the member row
	// must not survive either
	id = uuid.NewString()
	_, err = store.CreateMember(ctx,
		library.Member{ID: id, Name: "Bob", Email: "b@x.com", CreatedAt: sqlstoretest.Epoch},
		library.Membership{ID: uuid.NewString(), MemberID: id, Status: "suspended", CreatedAt: sqlstoretest.Epoch},
	)
	require.Error(t, err)
	_, err = store.GetMember(ctx, id)
	assert.ErrorIs(t, err, library.ErrNotFound)

	n, err := store.CountMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSetMembershipStatusCreatesMissingRow(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	m := sqlstoretest.Member(t, store, "Alice", "a@x.com")

	ms, err := store.SetMembershipStatus(ctx, m.ID, library.MembershipInactive)
	require.NoError(t, err)
	assert.Equal(t, m.Membership.ID, ms.ID)
	assert.Equal(t, library.MembershipInactive, ms.Status)

	_, err = store.SetMembershipStatus(ctx, uuid.NewString(), library.MembershipActive)
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestUpdateIssuanceGuardsStatus(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	cat, col := sqlstoretest.Catalog(t, store)
	b := sqlstoretest.Book(t, store, "Dune", cat, col)
	m := sqlstoretest.Member(t, store, "Alice", "a@x.com")
	due := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	iss := sqlstoretest.Issuance(t, store, b, m, due, library.StatusPending)

	returned := library.StatusReturned
	got, err := store.UpdateIssuance(ctx, iss.ID, library.StatusPending, library.IssuancePatch{Status: &returned})
	require.NoError(t, err)
	assert.Equal(t, library.StatusReturned, got.Status)
	assert.True(t, due.Equal(got.ReturnDate))

	_, err = store.UpdateIssuance(ctx, iss.ID, library.StatusPending, library.IssuancePatch{Status: &returned})
	assert.ErrorIs(t, err, library.ErrConflict)

	_, err = store.UpdateIssuance(ctx, uuid.NewString(), library.StatusPending, library.IssuancePatch{Status: &returned})
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestDeleteRestrict(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	cat, col := sqlstoretest.Catalog(t, store)
	b := sqlstoretest.Book(t, store, "Dune", cat, col)
	m := sqlstoretest.Member(t, store, "Alice", "a@x.com")
	sqlstoretest.Issuance(t, store, b, m, time.Now(), library.StatusReturned)

	var conflict *library.ConflictError
	require.ErrorAs(t, store.DeleteBook(ctx, b.ID), &conflict)
	assert.Equal(t, "Book has issuances and cannot be deleted", conflict.Details)
	require.ErrorAs(t, store.DeleteMember(ctx, m.ID), &conflict)
	assert.Equal(t, "Member has issuances and cannot be deleted", conflict.Details)
	require.ErrorAs(t, store.DeleteCategory(ctx, cat.ID), &conflict)
	assert.Equal(t, "Category is used by books and cannot be deleted", conflict.Details)
}

func TestCreateBookUnknownReferences(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)

	_, err := store.CreateBook(ctx, library.Book{
		ID: uuid.NewString(), Name: "Orphan", CategoryID: uuid.NewString(), CollectionID: uuid.NewString(),
		CreatedAt: sqlstoretest.Epoch,
	})
	var verr *library.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Category or collection does not exist", verr.Details)
}

func TestAuditLog(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	issuanceID := uuid.NewString()

	e := library.AuditEntry{
		ID:         uuid.NewString(),
		EventID:    "evt-1",
		EventType:  library.EventIssuanceCreated,
		IssuanceID: issuanceID,
		Payload:    `{"issuance_id":"` + issuanceID + `"}`,
		OccurredAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2024, 5, 1, 9, 0, 1, 0, time.UTC),
	}
	require.NoError(t, store.RecordAudit(ctx, e))

	replay := e
	replay.ID = uuid.NewString()
	require.NoError(t, store.RecordAudit(ctx, replay))

	later := e
	later.ID, later.EventID, later.EventType = uuid.NewString(), "evt-2", library.EventIssuanceReturned
	later.OccurredAt = e.OccurredAt.Add(time.Hour)
	require.NoError(t, store.RecordAudit(ctx, later))

	trail, err := store.ListAudit(ctx, issuanceID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "evt-1", trail[0].EventID)
	assert.Equal(t, "evt-2", trail[1].EventID)
	assert.Equal(t, e.Payload, trail[0].Payload)
}
