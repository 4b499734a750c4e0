package library_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/booknest/internal/library"
	"github.com/ariefcatur/booknest/internal/sqlstore/sqlstoretest"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) PublishIssuance(_ context.Context, eventType string, _ library.Issuance) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fixture struct {
	svc   *library.Service
	store library.Store
	pub   *recordingPublisher
	cat   library.Category
	col   library.Collection
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := sqlstoretest.New(t)
	pub := &recordingPublisher{}
	cat, col := sqlstoretest.Catalog(t, store)
	svc := library.NewService(store,
		library.WithClock(func() time.Time { return now }),
		library.WithPublisher(pub),
	)
	return fixture{svc: svc, store: store, pub: pub, cat: cat, col: col}
}

func (f fixture) book(t *testing.T, name string) library.Book {
	return sqlstoretest.Book(t, f.store, name, f.cat, f.col)
}

func (f fixture) issue(t *testing.T, b library.Book, m library.Member, due string) library.Issuance {
	t.Helper()
	iss, err := f.svc.CreateIssuance(context.Background(), library.IssuanceInput{
		BookID: b.ID, MemberID: m.ID, ReturnDate: due,
	})
	require.NoError(t, err)
	return iss
}

func ids(in []library.Issuance) []string {
	out := make([]string, 0, len(in))
	for _, iss := range in {
		out = append(out, iss.ID)
	}
	return out
}

func TestCreateIssuance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dune := f.book(t, "Dune")
	alice := sqlstoretest.Member(t, f.store, "Alice", "a@x.com")

	iss, err := f.svc.CreateIssuance(ctx, library.IssuanceInput{
		BookID: dune.ID, MemberID: alice.ID, ReturnDate: "2024-05-20", IssuedBy: ptr("desk"),
	})
	require.NoError(t, err)

	assert.Equal(t, library.StatusPending, iss.Status)
	assert.True(t, now.Equal(iss.IssueDate))
	assert.Equal(t, "2024-05-20", iss.ReturnDate.Format("2006-01-02"))
	assert.False(t, iss.Overdue)
	require.NotNil(t, iss.Book)
	assert.Equal(t, "Dune", iss.Book.Name)
	require.NotNil(t, iss.Member)
	assert.Equal(t, "a@x.com", iss.Member.Email)
	assert.Equal(t, "desk", *iss.IssuedBy)
	assert.Equal(t, []string{library.EventIssuanceCreated}, f.pub.Events())
}

func TestCreateIssuanceValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dune := f.book(t, "Dune")
	alice := sqlstoretest.Member(t, f.store, "Alice", "a@x.com")

	_, err := f.svc.CreateIssuance(ctx, library.IssuanceInput{BookID: dune.ID, MemberID: alice.ID})
	var verr *library.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Book ID, member ID, and return date are required", verr.Details)

	_, err = f.svc.CreateIssuance(ctx, library.IssuanceInput{
		BookID: "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed", MemberID: alice.ID, ReturnDate: "2024-06-01",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Book or member does not exist", verr.Details)
	assert.Empty(t, f.pub.Events())
}

// Dune is lent to Alice with yesterday as the due date, then returned.
func TestOverdueThenReturned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dune := f.book(t, "Dune")
	alice := sqlstoretest.Member(t, f.store, "Alice", "a@x.com")

	iss := f.issue(t, dune, alice, now.AddDate(0, 0, -1).Format("2006-01-02"))
	assert.True(t, iss.Overdue)

	overdue, err := f.svc.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{iss.ID}, ids(overdue))

	returned, err := f.svc.MarkReturned(ctx, iss.ID)
	require.NoError(t, err)
	assert.Equal(t, library.StatusReturned, returned.Status)
	assert.True(t, iss.ReturnDate.Equal(returned.ReturnDate))
	assert.False(t, returned.Overdue)

	overdue, err = f.svc.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)
	outstanding, err := f.svc.ListOutstanding(ctx)
	require.NoError(t, err)
	assert.Empty(t, outstanding)
}

func TestOverdueExcludesFutureAndReturned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := sqlstoretest.Member(t, f.store, "Alice", "a@x.com")

	late := sqlstoretest.Issuance(t, f.store, f.book(t, "A"), alice, now.Add(-time.Minute), library.StatusPending)
	future := sqlstoretest.Issuance(t, f.store, f.book(t, "B"), alice, now.Add(time.Minute), library.StatusPending)
	atNow := sqlstoretest.Issuance(t, f.store, f.book(t, "C"), alice, now, library.StatusPending)
	sqlstoretest.Issuance(t, f.store, f.book(t, "D"), alice, now.Add(-time.Hour), library.StatusReturned)

	overdue, err := f.svc.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{late.ID}, ids(overdue))
	assert.True(t, overdue[0].Overdue)

	upcoming, err := f.svc.ListPendingReturns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{atNow.ID, future.ID}, ids(upcoming))

	outstanding, err := f.svc.ListOutstanding(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{late.ID, atNow.ID, future.ID}, ids(outstanding))
}

func TestMarkReturnedTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	iss := f.issue(t, f.book(t, "Dune"), sqlstoretest.Member(t, f.store, "Alice", "a@x.com"), "2024-05-20")

	first, err := f.svc.MarkReturned(ctx, iss.ID)
	require.NoError(t, err)
	second, err := f.svc.MarkReturned(ctx, iss.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.ReturnDate.Equal(second.ReturnDate))
	assert.Equal(t, []string{library.EventIssuanceCreated, library.EventIssuanceReturned}, f.pub.Events())
}

func TestMarkReturnedUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.MarkReturned(ctx, "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed")
	assert.ErrorIs(t, err, library.ErrNotFound)

	_, err = f.svc.MarkReturned(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestUpdateIssuance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	iss := f.issue(t, f.book(t, "Dune"), sqlstoretest.Member(t, f.store, "Alice", "a@x.com"), "2024-05-20")

	updated, err := f.svc.UpdateIssuance(ctx, iss.ID, library.IssuanceUpdate{ReturnDate: ptr("2024-05-01")})
	require.NoError(t, err)
	assert.Equal(t, library.StatusPending, updated.Status)
	assert.True(t, updated.Overdue)

	_, err = f.svc.UpdateIssuance(ctx, iss.ID, library.IssuanceUpdate{Status: ptr("overdue")})
	var verr *library.ValidationError
	assert.ErrorAs(t, err, &verr)

	returned, err := f.svc.UpdateIssuance(ctx, iss.ID, library.IssuanceUpdate{Status: ptr("returned")})
	require.NoError(t, err)
	assert.Equal(t, library.StatusReturned, returned.Status)
	assert.False(t, returned.Overdue)

	_, err = f.svc.UpdateIssuance(ctx, iss.ID, library.IssuanceUpdate{Status: ptr("pending")})
	assert.ErrorIs(t, err, library.ErrConflict)

	assert.Equal(t, []string{
		library.EventIssuanceCreated, library.EventIssuanceUpdated, library.EventIssuanceReturned,
	}, f.pub.Events())
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	iss := f.issue(t, f.book(t, "Dune"), sqlstoretest.Member(t, f.store, "Alice", "a@x.com"), "2024-05-20")
	assert.Equal(t, library.StatusPending, iss.Status)
}

func TestListIssuancesFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dune, emma := f.book(t, "Dune"), f.book(t, "Emma")
	alice := sqlstoretest.Member(t, f.store, "Alice", "a@x.com")
	bob := sqlstoretest.Member(t, f.store, "Bob", "b@x.com")

	a := f.issue(t, dune, alice, "2024-05-20")
	b := f.issue(t, emma, bob, "2024-05-21")
	_, err := f.svc.MarkReturned(ctx, b.ID)
	require.NoError(t, err)

	all, err := f.svc.ListIssuances(ctx, library.IssuanceQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids(all))

	byMember, err := f.svc.ListIssuances(ctx, library.IssuanceQuery{MemberID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(byMember))

	byBook, err := f.svc.ListIssuances(ctx, library.IssuanceQuery{BookID: dune.ID, Status: library.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(byBook))

	_, err = f.svc.ListIssuances(ctx, library.IssuanceQuery{Status: "overdue"})
	var verr *library.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.ListIssuances(ctx, library.IssuanceQuery{MemberID: "bob"})
	assert.ErrorAs(t, err, &verr)
}

func TestNeverAndMostBorrowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dune, emma, ulysses := f.book(t, "Dune"), f.book(t, "Emma"), f.book(t, "Ulysses")
	alice := sqlstoretest.Member(t, f.store, "Alice", "a@x.com")

	f.issue(t, dune, alice, "2024-05-20")
	f.issue(t, dune, alice, "2024-05-21")
	returned := f.issue(t, emma, alice, "2024-05-22")
	_, err := f.svc.MarkReturned(ctx, returned.ID)
	require.NoError(t, err)

	never, err := f.svc.ListNeverBorrowed(ctx)
	require.NoError(t, err)
	require.Len(t, never, 1)
	assert.Equal(t, ulysses.ID, never[0].ID)

	top, err := f.svc.ListMostBorrowed(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, dune.ID, top[0].BookID)
	assert.Equal(t, 2, top[0].BorrowCount)
	assert.Equal(t, emma.ID, top[1].BookID)
	assert.Equal(t, 1, top[1].BorrowCount)

	top, err = f.svc.ListMostBorrowed(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestComputeStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := sqlstoretest.Member(t, f.store, "Alice", "a@x.com")
	sqlstoretest.Member(t, f.store, "Bob", "b@x.com")

	late := f.issue(t, f.book(t, "A"), alice, "2024-05-01")
	soon := f.issue(t, f.book(t, "B"), alice, "2024-06-01")
	done := f.issue(t, f.book(t, "C"), alice, "2024-06-02")
	f.book(t, "D")
	_, err := f.svc.MarkReturned(ctx, done.ID)
	require.NoError(t, err)

	st, err := f.svc.ComputeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalBooks)
	assert.Equal(t, 2, st.TotalMembers)
	assert.Equal(t, 2, st.ActiveIssuances)
	assert.Equal(t, []string{late.ID}, ids(st.OutstandingBooks))
	assert.Equal(t, []string{soon.ID}, ids(st.PendingReturns))
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m, err := f.svc.CreateMember(ctx, library.MemberInput{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)
	require.NotNil(t, m.Membership)
	assert.Equal(t, library.MembershipActive, m.Membership.Status)

	_, err = f.svc.CreateMember(ctx, library.MemberInput{Name: "Alice 2", Email: "a@x.com"})
	assert.ErrorIs(t, err, library.ErrConflict)

	members, err := f.svc.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	ms, err := f.svc.SetMembership(ctx, m.ID, library.MembershipInput{Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, library.MembershipInactive, ms.Status)

	got, err := f.svc.GetMembership(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, library.MembershipInactive, got.Status)

	_, err = f.svc.GetMember(ctx, "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed")
	assert.ErrorIs(t, err, library.ErrNotFound)

	require.NoError(t, f.svc.DeleteMember(ctx, m.ID))
	_, err = f.svc.GetMember(ctx, m.ID)
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestBookRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, "Dune")

	launch := library.NewDate(1965, time.August, 1)
	updated, err := f.svc.UpdateBook(ctx, b.ID, library.BookInput{
		Name: "Dune Messiah", CategoryID: f.cat.ID, CollectionID: f.col.ID,
		Publisher: ptr("Chilton"), LaunchDate: &launch,
	})
	require.NoError(t, err)

	got, err := f.svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Name, got.Name)
	assert.Equal(t, "Dune Messiah", got.Name)
	assert.Equal(t, f.cat.ID, got.CategoryID)
	assert.Equal(t, "Chilton", *got.Publisher)
	assert.Equal(t, "1965-08-01", got.LaunchDate.String())
}

func TestDeleteBookRestrict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dune := f.book(t, "Dune")
	alice := sqlstoretest.Member(t, f.store, "Alice", "a@x.com")
	iss := f.issue(t, dune, alice, "2024-05-20")
	_, err := f.svc.MarkReturned(ctx, iss.ID)
	require.NoError(t, err)

	err = f.svc.DeleteBook(ctx, dune.ID)
	assert.ErrorIs(t, err, library.ErrConflict)
	err = f.svc.DeleteMember(ctx, alice.ID)
	assert.ErrorIs(t, err, library.ErrConflict)

	emma := f.book(t, "Emma")
	require.NoError(t, f.svc.DeleteBook(ctx, emma.ID))
	assert.ErrorIs(t, f.svc.DeleteBook(ctx, emma.ID), library.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, f.cat.ID), library.ErrConflict)
}

func ptr[T any](v T) *T { return &v }
