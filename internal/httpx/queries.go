package httpx

import (
	"net/http"
	"strconv"

	"github.com/ariefcatur/booknest/internal/library"
)

func (h *LibraryHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	st, err := h.Svc.ComputeStats(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch stats", st, err)
}

func (h *LibraryHandler) outstanding(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	out, err := h.Svc.ListOutstanding(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch outstanding books", out, err)
}

func (h *LibraryHandler) overdue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	out, err := h.Svc.ListOverdue(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch overdue books", out, err)
}

func (h *LibraryHandler) pendingReturns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	out, err := h.Svc.ListPendingReturns(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch pending returns", out, err)
}

func (h *LibraryHandler) neverBorrowed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	out, err := h.Svc.ListNeverBorrowed(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch never borrowed books", out, err)
}

func (h *LibraryHandler) mostBorrowed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.fail(w, r, "Failed to fetch most borrowed books", library.Invalid("limit must be a positive integer"))
			return
		}
		limit = n
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	out, err := h.Svc.ListMostBorrowed(ctx, limit)
	h.respond(w, r, http.StatusOK, "Failed to fetch most borrowed books", out, err)
}
