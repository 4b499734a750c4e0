package sqlstore

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/ariefcatur/booknest/internal/library"
)

const msgIssuanceRefs = "Book or member does not exist"

type issuanceRow struct {
	ID            string    `db:"id"`
	BookID        string    `db:"book_id"`
	MemberID      string    `db:"member_id"`
	IssuedBy      *string   `db:"issued_by"`
	IssueDate     time.Time `db:"issue_date"`
	ReturnDate    time.Time `db:"return_date"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	BookName      string    `db:"book_name"`
	BookPublisher *string   `db:"book_publisher"`
	MemberName    string    `db:"member_name"`
	MemberEmail   string    `db:"member_email"`
}

func (r issuanceRow) toIssuance() library.Issuance {
	return library.Issuance{
		ID:         r.ID,
		BookID:     r.BookID,
		MemberID:   r.MemberID,
		IssuedBy:   r.IssuedBy,
		IssueDate:  r.IssueDate.UTC(),
		ReturnDate: r.ReturnDate.UTC(),
		Status:     library.IssuanceStatus(r.Status),
		CreatedAt:  r.CreatedAt.UTC(),
		Book:       &library.BookSummary{Name: r.BookName, Publisher: r.BookPublisher},
		Member:     &library.MemberSummary{Name: r.MemberName, Email: r.MemberEmail},
	}
}

func (s *Store) issuanceSelect() *goqu.SelectDataset {
	return s.from(goqu.T(tableIssuance).As("i")).
		Join(goqu.T(tableBook).As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("i.book_id")))).
		Join(goqu.T(tableMember).As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("i.member_id")))).
		Select(
			goqu.I("i.id").As("id"),
			goqu.I("i.book_id").As("book_id"),
			goqu.I("i.member_id").As("member_id"),
			goqu.I("i.issued_by").As("issued_by"),
			goqu.I("i.issue_date").As("issue_date"),
			goqu.I("i.return_date").As("return_date"),
			goqu.I("i.status").As("status"),
			goqu.I("i.created_at").As("created_at"),
			goqu.I("b.name").As("book_name"),
			goqu.I("b.publisher").As("book_publisher"),
			goqu.I("m.name").As("member_name"),
			goqu.I("m.email").As("member_email"),
		)
}

// issuanceWhere turns a query into conditions on the "i" alias.
func issuanceWhere(q library.IssuanceQuery) []exp.Expression {
	var where []exp.Expression
	if q.Status != "" {
		where = append(where, goqu.I("i.status").Eq(string(q.Status)))
	}
	if q.BookID != "" {
		where = append(where, goqu.I("i.book_id").Eq(q.BookID))
	}
	if q.MemberID != "" {
		where = append(where, goqu.I("i.member_id").Eq(q.MemberID))
	}
	if q.DueBefore != nil {
		where = append(where, goqu.I("i.return_date").Lt(q.DueBefore.UTC()))
	}
	if q.DueFrom != nil {
		where = append(where, goqu.I("i.return_date").Gte(q.DueFrom.UTC()))
	}
	return where
}

func (s *Store) CreateIssuance(ctx context.Context, iss library.Issuance) (library.Issuance, error) {
	_, err := s.exec(ctx, s.insert(tableIssuance).Rows(goqu.Record{
		"id":          iss.ID,
		"book_id":     iss.BookID,
		"member_id":   iss.MemberID,
		"issued_by":   nullString(iss.IssuedBy),
		"issue_date":  iss.IssueDate.UTC(),
		"return_date": iss.ReturnDate.UTC(),
		"status":      string(iss.Status),
		"created_at":  iss.CreatedAt.UTC(),
	}))
	if err != nil {
		return library.Issuance{}, writeErr("create issuance", err, "", msgIssuanceRefs)
	}
	return s.GetIssuance(ctx, iss.ID)
}

func (s *Store) GetIssuance(ctx context.Context, id string) (library.Issuance, error) {
	var r issuanceRow
	if err := s.getOne(ctx, &r, s.issuanceSelect().Where(goqu.I("i.id").Eq(id))); err != nil {
		return library.Issuance{}, readErr("Issuance", "get issuance", err)
	}
	return r.toIssuance(), nil
}

func (s *Store) ListIssuances(ctx context.Context, q library.IssuanceQuery) ([]library.Issuance, error) {
	var rows []issuanceRow
	ds := s.issuanceSelect().
		Where(issuanceWhere(q)...).
		Order(goqu.I("i.return_date").Asc(), goqu.I("i.id").Asc())
	if err := s.selectAll(ctx, &rows, ds); err != nil {
		return nil, fail("list issuances", err)
	}
	out := make([]library.Issuance, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toIssuance())
	}
	return out, nil
}

func (s *Store) CountIssuances(ctx context.Context, q library.IssuanceQuery) (int, error) {
	n, err := s.count(ctx, s.from(goqu.T(tableIssuance).As("i")).Where(issuanceWhere(q)...))
	if err != nil {
		return 0, fail("count issuances", err)
	}
	return n, nil
}

// UpdateIssuance applies p only while the row still has fromStatus, so two
// concurrent returns cannot both succeed.
func (s *Store) UpdateIssuance(ctx context.Context, id string, fromStatus library.IssuanceStatus, p library.IssuancePatch) (library.Issuance, error) {
	set := goqu.Record{}
	if p.ReturnDate != nil {
		set["return_date"] = p.ReturnDate.UTC()
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if len(set) == 0 {
		return s.GetIssuance(ctx, id)
	}

	where := []exp.Expression{goqu.C("id").Eq(id)}
	if fromStatus != "" {
		where = append(where, goqu.C("status").Eq(string(fromStatus)))
	}
	n, err := s.exec(ctx, s.update(tableIssuance).Set(set).Where(where...))
	if err != nil {
		return library.Issuance{}, fail("update issuance", err)
	}
	if n == 0 {
		cur, err := s.GetIssuance(ctx, id)
		if err != nil {
			return library.Issuance{}, err
		}
		return library.Issuance{}, &library.ConflictError{
			Details: "Issuance is no longer " + string(fromStatus) + " (now " + string(cur.Status) + ")",
		}
	}
	return s.GetIssuance(ctx, id)
}
