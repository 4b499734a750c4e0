package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ariefcatur/booknest/internal/library"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

func (h *LibraryHandler) listIssuances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, cancel := h.ctx(r)
	defer cancel()
	out, err := h.Svc.ListIssuances(ctx, library.IssuanceQuery{
		Status:   library.IssuanceStatus(strings.TrimSpace(q.Get("status"))),
		BookID:   strings.TrimSpace(q.Get("book_id")),
		MemberID: strings.TrimSpace(q.Get("member_id")),
	})
	h.respond(w, r, http.StatusOK, "Failed to fetch issuances", out, err)
}

func (h *LibraryHandler) getIssuance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	iss, err := h.Svc.GetIssuance(ctx, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Failed to fetch issuance", iss, err)
}

const idemPoll = 25 * time.Millisecond

// createIssuance honours an Idempotency-Key header when a store for keys is
// configured. The key is claimed before the insert, so concurrent retries
// either replay the issuance the owner created or get 409.
func (h *LibraryHandler) createIssuance(w http.ResponseWriter, r *http.Request) {
	var in library.IssuanceInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to create issuance", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	if h.Idem == nil || key == "" {
		iss, err := h.Svc.CreateIssuance(ctx, in)
		h.respond(w, r, http.StatusCreated, "Failed to create issuance", iss, err)
		return
	}

	token := middleware.GetReqID(r.Context())
	if token == "" {
		token = uuid.NewString()
	}
	id, claimed, err := h.waitClaim(ctx, key, token)
	if err != nil {
		h.fail(w, r, "Failed to create issuance", err)
		return
	}
	if !claimed {
		iss, err := h.Svc.GetIssuance(ctx, id)
		if err != nil {
			h.fail(w, r, "Failed to create issuance", err)
			return
		}
		w.Header().Set(HeaderReplayed, "true")
		writeJSON(w, http.StatusOK, iss)
		return
	}

	iss, err := h.Svc.CreateIssuance(ctx, in)
	if err != nil {
		if rerr := h.Idem.Release(context.WithoutCancel(ctx), key, token); rerr != nil {
			h.log().Warn("idempotency release failed", "key", key, "err", rerr)
		}
		h.fail(w, r, "Failed to create issuance", err)
		return
	}
	if err := h.Idem.Complete(context.WithoutCancel(ctx), key, token, iss.ID); err != nil {
		h.log().Warn("idempotency complete failed", "key", key, "issuance_id", iss.ID, "err", err)
	}
	writeJSON(w, http.StatusCreated, iss)
}

// waitClaim claims key or waits for the request holding it. It returns the
// bound issuance id when another request finished first.
func (h *LibraryHandler) waitClaim(ctx context.Context, key, token string) (string, bool, error) {
	wait := h.IdemWait
	if wait <= 0 {
		wait = 2 * time.Second
	}
	deadline := time.Now().Add(wait)
	for {
		id, claimed, err := h.Idem.Claim(ctx, key, token)
		if err != nil {
			return "", false, fmt.Errorf("claim idempotency key: %w", err)
		}
		if claimed || id != "" {
			return id, claimed, nil
		}
		if time.Now().After(deadline) {
			return "", false, &library.ConflictError{Details: "A request with this Idempotency-Key is still in progress"}
		}
		t := time.NewTimer(idemPoll)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", false, ctx.Err()
		case <-t.C:
		}
	}
}

func (h *LibraryHandler) updateIssuance(w http.ResponseWriter, r *http.Request) {
	var in library.IssuanceUpdate
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to update issuance", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	iss, err := h.Svc.UpdateIssuance(ctx, chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, "Failed to update issuance", iss, err)
}

func (h *LibraryHandler) returnIssuance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	iss, err := h.Svc.MarkReturned(ctx, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Failed to return issuance", iss, err)
}

func (h *LibraryHandler) issuanceHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	out, err := h.Svc.IssuanceHistory(ctx, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Failed to fetch issuance history", out, err)
}
