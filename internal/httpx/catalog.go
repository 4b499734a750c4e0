package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/booknest/internal/library"
)

func (h *LibraryHandler) listBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	books, err := h.Svc.ListBooks(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch books", books, err)
}

func (h *LibraryHandler) getBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	b, err := h.Svc.GetBook(ctx, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Failed to fetch book", b, err)
}

func (h *LibraryHandler) createBook(w http.ResponseWriter, r *http.Request) {
	var in library.BookInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to create book", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	b, err := h.Svc.CreateBook(ctx, in)
	h.respond(w, r, http.StatusCreated, "Failed to create book", b, err)
}

func (h *LibraryHandler) updateBook(w http.ResponseWriter, r *http.Request) {
	var in library.BookInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to update book", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	b, err := h.Svc.UpdateBook(ctx, chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, "Failed to update book", b, err)
}

func (h *LibraryHandler) deleteBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	h.noContent(w, r, "Failed to delete book", h.Svc.DeleteBook(ctx, chi.URLParam(r, "id")))
}

func (h *LibraryHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	cs, err := h.Svc.ListCategories(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch categories", cs, err)
}

func (h *LibraryHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	c, err := h.Svc.GetCategory(ctx, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Failed to fetch category", c, err)
}

func (h *LibraryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var in library.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to create category", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	c, err := h.Svc.CreateCategory(ctx, in)
	h.respond(w, r, http.StatusCreated, "Failed to create category", c, err)
}

func (h *LibraryHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var in library.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to update category", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	c, err := h.Svc.UpdateCategory(ctx, chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, "Failed to update category", c, err)
}

func (h *LibraryHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	h.noContent(w, r, "Failed to delete category", h.Svc.DeleteCategory(ctx, chi.URLParam(r, "id")))
}

func (h *LibraryHandler) listCollections(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	cs, err := h.Svc.ListCollections(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch collections", cs, err)
}

func (h *LibraryHandler) getCollection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	c, err := h.Svc.GetCollection(ctx, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Failed to fetch collection", c, err)
}

func (h *LibraryHandler) createCollection(w http.ResponseWriter, r *http.Request) {
	var in library.CollectionInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to create collection", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	c, err := h.Svc.CreateCollection(ctx, in)
	h.respond(w, r, http.StatusCreated, "Failed to create collection", c, err)
}

func (h *LibraryHandler) updateCollection(w http.ResponseWriter, r *http.Request) {
	var in library.CollectionInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to update collection", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	c, err := h.Svc.UpdateCollection(ctx, chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, "Failed to update collection", c, err)
}

func (h *LibraryHandler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	h.noContent(w, r, "Failed to delete collection", h.Svc.DeleteCollection(ctx, chi.URLParam(r, "id")))
}
