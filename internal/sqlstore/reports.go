package sqlstore

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/ariefcatur/booknest/internal/library"
)

func (s *Store) CountBooks(ctx context.Context) (int, error) {
	n, err := s.count(ctx, s.from(tableBook))
	if err != nil {
		return 0, fail("count books", err)
	}
	return n, nil
}

func (s *Store) CountMembers(ctx context.Context) (int, error) {
	n, err := s.count(ctx, s.from(tableMember))
	if err != nil {
		return 0, fail("count members", err)
	}
	return n, nil
}

// NeverBorrowed lists books without a single issuance row of any status.
func (s *Store) NeverBorrowed(ctx context.Context) ([]library.Book, error) {
	borrowed := s.d.From(tableIssuance).Select("book_id")
	ds := s.from(tableBook).
		Select(bookCols...).
		Where(goqu.C("id").NotIn(borrowed)).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc())

	out := []library.Book{}
	if err := s.selectAll(ctx, &out, ds); err != nil {
		return nil, fail("list never borrowed", err)
	}
	return out, nil
}

// MostBorrowed ranks books by their issuance count, highest first. Ties are
// broken by name.
func (s *Store) MostBorrowed(ctx context.Context, limit int) ([]library.BorrowCount, error) {
	ds := s.from(goqu.T(tableIssuance).As("i")).
		Join(goqu.T(tableBook).As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("i.book_id")))).
		Select(
			goqu.I("b.id").As("book_id"),
			goqu.I("b.name").As("name"),
			goqu.I("b.publisher").As("publisher"),
			goqu.COUNT(goqu.I("i.id")).As("borrow_count"),
		).
		GroupBy(goqu.I("b.id"), goqu.I("b.name"), goqu.I("b.publisher")).
		Order(goqu.L("borrow_count").Desc(), goqu.I("b.name").Asc(), goqu.I("b.id").Asc()).
		Limit(uint(limit))

	out := []library.BorrowCount{}
	if err := s.selectAll(ctx, &out, ds); err != nil {
		return nil, fail("list most borrowed", err)
	}
	return out, nil
}
