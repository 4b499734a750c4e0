package library

import "context"

func (s *Service) ListBooks(ctx context.Context) ([]Book, error) {
	return s.store.ListBooks(ctx)
}

func (s *Service) GetBook(ctx context.Context, id string) (Book, error) {
	if err := checkID("Book", id); err != nil {
		return Book{}, err
	}
	return s.store.GetBook(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, in BookInput) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}
	return s.store.CreateBook(ctx, Book{
		ID:           s.newID(),
		Name:         in.Name,
		CategoryID:   in.CategoryID,
		CollectionID: in.CollectionID,
		Publisher:    in.Publisher,
		LaunchDate:   in.LaunchDate,
		CreatedAt:    s.clock(),
	})
}

// UpdateBook replaces every mutable field; omitted optional fields are cleared.
func (s *Service) UpdateBook(ctx context.Context, id string, in BookInput) (Book, error) {
	if err := checkID("Book", id); err != nil {
		return Book{}, err
	}
	if err := in.Validate(); err != nil {
		return Book{}, err
	}
	return s.store.UpdateBook(ctx, Book{
		ID:           id,
		Name:         in.Name,
		CategoryID:   in.CategoryID,
		CollectionID: in.CollectionID,
		Publisher:    in.Publisher,
		LaunchDate:   in.LaunchDate,
	})
}

func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := checkID("Book", id); err != nil {
		return err
	}
	return s.store.DeleteBook(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id string) (Category, error) {
	if err := checkID("Category", id); err != nil {
		return Category{}, err
	}
	return s.store.GetCategory(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	if err := in.Validate(); err != nil {
		return Category{}, err
	}
	return s.store.CreateCategory(ctx, Category{
		ID:        s.newID(),
		Name:      in.Name,
		SubName:   in.SubName,
		CreatedAt: s.clock(),
	})
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (Category, error) {
	if err := checkID("Category", id); err != nil {
		return Category{}, err
	}
	if err := in.Validate(); err != nil {
		return Category{}, err
	}
	return s.store.UpdateCategory(ctx, Category{ID: id, Name: in.Name, SubName: in.SubName})
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := checkID("Category", id); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, id)
}

func (s *Service) ListCollections(ctx context.Context) ([]Collection, error) {
	return s.store.ListCollections(ctx)
}

func (s *Service) GetCollection(ctx context.Context, id string) (Collection, error) {
	if err := checkID("Collection", id); err != nil {
		return Collection{}, err
	}
	return s.store.GetCollection(ctx, id)
}

func (s *Service) CreateCollection(ctx context.Context, in CollectionInput) (Collection, error) {
	if err := in.Validate(); err != nil {
		return Collection{}, err
	}
	return s.store.CreateCollection(ctx, Collection{ID: s.newID(), Name: in.Name, CreatedAt: s.clock()})
}

func (s *Service) UpdateCollection(ctx context.Context, id string, in CollectionInput) (Collection, error) {
	if err := checkID("Collection", id); err != nil {
		return Collection{}, err
	}
	if err := in.Validate(); err != nil {
		return Collection{}, err
	}
	return s.store.UpdateCollection(ctx, Collection{ID: id, Name: in.Name})
}

func (s *Service) DeleteCollection(ctx context.Context, id string) error {
	if err := checkID("Collection", id); err != nil {
		return err
	}
	return s.store.DeleteCollection(ctx, id)
}
