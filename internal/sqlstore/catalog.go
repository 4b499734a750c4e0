package sqlstore

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/ariefcatur/booknest/internal/library"
)

var (
	bookCols       = []any{"id", "name", "category_id", "collection_id", "publisher", "launch_date", "created_at"}
	categoryCols   = []any{"id", "name", "sub_name", "created_at"}
	collectionCols = []any{"id", "name", "created_at"}
)

const (
	msgBookRefs       = "Category or collection does not exist"
	msgBookInUse      = "Book has issuances and cannot be deleted"
	msgCategoryInUse  = "Category is used by books and cannot be deleted"
	msgCollectionUsed = "Collection is used by books and cannot be deleted"
)

func (s *Store) ListBooks(ctx context.Context) ([]library.Book, error) {
	out := []library.Book{}
	if err := s.selectAll(ctx, &out, s.from(tableBook).Select(bookCols...).Order(goqu.C("name").Asc())); err != nil {
		return nil, fail("list books", err)
	}
	return out, nil
}

func (s *Store) GetBook(ctx context.Context, id string) (library.Book, error) {
	var b library.Book
	if err := s.getOne(ctx, &b, s.from(tableBook).Select(bookCols...).Where(goqu.C("id").Eq(id))); err != nil {
		return library.Book{}, readErr("Book", "get book", err)
	}
	return b, nil
}

func (s *Store) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	_, err := s.exec(ctx, s.insert(tableBook).Rows(goqu.Record{
		"id":            b.ID,
		"name":          b.Name,
		"category_id":   b.CategoryID,
		"collection_id": b.CollectionID,
		"publisher":     nullString(b.Publisher),
		"launch_date":   nullDate(b.LaunchDate),
		"created_at":    b.CreatedAt,
	}))
	if err != nil {
		return library.Book{}, writeErr("create book", err, "", msgBookRefs)
	}
	return s.GetBook(ctx, b.ID)
}

func (s *Store) UpdateBook(ctx context.Context, b library.Book) (library.Book, error) {
	n, err := s.exec(ctx, s.update(tableBook).Set(goqu.Record{
		"name":          b.Name,
		"category_id":   b.CategoryID,
		"collection_id": b.CollectionID,
		"publisher":     nullString(b.Publisher),
		"launch_date":   nullDate(b.LaunchDate),
	}).Where(goqu.C("id").Eq(b.ID)))
	if err != nil {
		return library.Book{}, writeErr("update book", err, "", msgBookRefs)
	}
	if n == 0 {
		return library.Book{}, &library.NotFoundError{Entity: "Book"}
	}
	return s.GetBook(ctx, b.ID)
}

// DeleteBook refuses while any issuance, returned or not, references the book.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	return s.inTx(ctx, nil, func(tx *Store) error {
		refs, err := tx.count(ctx, tx.from(tableIssuance).Where(goqu.C("book_id").Eq(id)))
		if err != nil {
			return fail("count book issuances", err)
		}
		if refs > 0 {
			return &library.ConflictError{Details: msgBookInUse}
		}
		n, err := tx.exec(ctx, tx.delete(tableBook).Where(goqu.C("id").Eq(id)))
		if err != nil {
			return deleteErr("delete book", err, msgBookInUse)
		}
		if n == 0 {
			return &library.NotFoundError{Entity: "Book"}
		}
		return nil
	})
}

func (s *Store) ListCategories(ctx context.Context) ([]library.Category, error) {
	out := []library.Category{}
	if err := s.selectAll(ctx, &out, s.from(tableCategory).Select(categoryCols...).Order(goqu.C("name").Asc())); err != nil {
		return nil, fail("list categories", err)
	}
	return out, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (library.Category, error) {
	var c library.Category
	if err := s.getOne(ctx, &c, s.from(tableCategory).Select(categoryCols...).Where(goqu.C("id").Eq(id))); err != nil {
		return library.Category{}, readErr("Category", "get category", err)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c library.Category) (library.Category, error) {
	_, err := s.exec(ctx, s.insert(tableCategory).Rows(goqu.Record{
		"id":         c.ID,
		"name":       c.Name,
		"sub_name":   nullString(c.SubName),
		"created_at": c.CreatedAt,
	}))
	if err != nil {
		return library.Category{}, fail("create category", err)
	}
	return s.GetCategory(ctx, c.ID)
}

func (s *Store) UpdateCategory(ctx context.Context, c library.Category) (library.Category, error) {
	n, err := s.exec(ctx, s.update(tableCategory).Set(goqu.Record{
		"name":     c.Name,
		"sub_name": nullString(c.SubName),
	}).Where(goqu.C("id").Eq(c.ID)))
	if err != nil {
		return library.Category{}, fail("update category", err)
	}
	if n == 0 {
		return library.Category{}, &library.NotFoundError{Entity: "Category"}
	}
	return s.GetCategory(ctx, c.ID)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.exec(ctx, s.delete(tableCategory).Where(goqu.C("id").Eq(id)))
	if err != nil {
		return deleteErr("delete category", err, msgCategoryInUse)
	}
	if n == 0 {
		return &library.NotFoundError{Entity: "Category"}
	}
	return nil
}

func (s *Store) ListCollections(ctx context.Context) ([]library.Collection, error) {
	out := []library.Collection{}
	if err := s.selectAll(ctx, &out, s.from(tableCollection).Select(collectionCols...).Order(goqu.C("name").Asc())); err != nil {
		return nil, fail("list collections", err)
	}
	return out, nil
}

func (s *Store) GetCollection(ctx context.Context, id string) (library.Collection, error) {
	var c library.Collection
	if err := s.getOne(ctx, &c, s.from(tableCollection).Select(collectionCols...).Where(goqu.C("id").Eq(id))); err != nil {
		return library.Collection{}, readErr("Collection", "get collection", err)
	}
	return c, nil
}

func (s *Store) CreateCollection(ctx context.Context, c library.Collection) (library.Collection, error) {
	_, err := s.exec(ctx, s.insert(tableCollection).Rows(goqu.Record{
		"id":         c.ID,
		"name":       c.Name,
		"created_at": c.CreatedAt,
	}))
	if err != nil {
		return library.Collection{}, fail("create collection", err)
	}
	return s.GetCollection(ctx, c.ID)
}

func (s *Store) UpdateCollection(ctx context.Context, c library.Collection) (library.Collection, error) {
	n, err := s.exec(ctx, s.update(tableCollection).Set(goqu.Record{"name": c.Name}).Where(goqu.C("id").Eq(c.ID)))
	if err != nil {
		return library.Collection{}, fail("update collection", err)
	}
	if n == 0 {
		return library.Collection{}, &library.NotFoundError{Entity: "Collection"}
	}
	return s.GetCollection(ctx, c.ID)
}

func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	n, err := s.exec(ctx, s.delete(tableCollection).Where(goqu.C("id").Eq(id)))
	if err != nil {
		return deleteErr("delete collection", err, msgCollectionUsed)
	}
	if n == 0 {
		return &library.NotFoundError{Entity: "Collection"}
	}
	return nil
}
