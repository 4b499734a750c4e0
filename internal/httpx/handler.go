package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/booknest/internal/library"
)

// Idempotency maps an Idempotency-Key header to the issuance it created.
// *redisx.Idempotency implements it.
type Idempotency interface {
	Claim(ctx context.Context, key, token string) (id string, claimed bool, err error)
	Complete(ctx context.Context, key, token, id string) error
	Release(ctx context.Context, key, token string) error
}

// LibraryHandler serves the catalog, member, issuance and query routes.
type LibraryHandler struct {
	Svc  *library.Service
	Idem Idempotency // optional
	Log  *slog.Logger
	// OpTimeout bounds each store round trip; zero means 5s.
	OpTimeout time.Duration
	// IdemWait is how long a retry waits for a concurrent request holding
	// the same Idempotency-Key before answering 409; zero means 2s.
	IdemWait time.Duration
}

func (h *LibraryHandler) Register(r chi.Router) {
	r.Route("/book", func(r chi.Router) {
		r.Get("/", h.listBooks)
		r.Post("/", h.createBook)
		r.Get("/categories", h.listCategories)
		r.Get("/collections", h.listCollections)
		r.Get("/{id}", h.getBook)
		r.Put("/{id}", h.updateBook)
		r.Delete("/{id}", h.deleteBook)
	})
	r.Route("/category", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Post("/", h.createCategory)
		r.Get("/{id}", h.getCategory)
		r.Put("/{id}", h.updateCategory)
		r.Delete("/{id}", h.deleteCategory)
	})
	r.Route("/collection", func(r chi.Router) {
		r.Get("/", h.listCollections)
		r.Post("/", h.createCollection)
		r.Get("/{id}", h.getCollection)
		r.Put("/{id}", h.updateCollection)
		r.Delete("/{id}", h.deleteCollection)
	})
	r.Route("/member", func(r chi.Router) {
		r.Get("/", h.listMembers)
		r.Post("/", h.createMember)
		r.Get("/{id}", h.getMember)
		r.Put("/{id}", h.updateMember)
		r.Delete("/{id}", h.deleteMember)
		r.Get("/{id}/membership", h.getMembership)
		r.Put("/{id}/membership", h.setMembership)
	})
	r.Route("/issuance", func(r chi.Router) {
		r.Get("/", h.listIssuances)
		r.Post("/", h.createIssuance)
		r.Get("/{id}", h.getIssuance)
		r.Put("/{id}", h.updateIssuance)
		r.Post("/{id}/return", h.returnIssuance)
		r.Get("/{id}/history", h.issuanceHistory)
	})
	r.Route("/query", func(r chi.Router) {
		r.Get("/stats", h.stats)
		r.Get("/outstanding", h.outstanding)
		r.Get("/overdue", h.overdue)
		r.Get("/pending-returns", h.pendingReturns)
		r.Get("/never-borrowed", h.neverBorrowed)
		r.Get("/most-borrowed", h.mostBorrowed)
		r.Get("/top-borrowed", h.mostBorrowed)
	})
}

func (h *LibraryHandler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	d := h.OpTimeout
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(r.Context(), d)
}

func (h *LibraryHandler) log() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (h *LibraryHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	writeError(w, r, h.log(), msg, err)
}

// respond writes v with code, or the mapped error.
func (h *LibraryHandler) respond(w http.ResponseWriter, r *http.Request, code int, failMsg string, v any, err error) {
	if err != nil {
		h.fail(w, r, failMsg, err)
		return
	}
	writeJSON(w, code, v)
}

func (h *LibraryHandler) noContent(w http.ResponseWriter, r *http.Request, failMsg string, err error) {
	if err != nil {
		h.fail(w, r, failMsg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
