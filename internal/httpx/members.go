package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/booknest/internal/library"
)

func (h *LibraryHandler) listMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	ms, err := h.Svc.ListMembers(ctx)
	h.respond(w, r, http.StatusOK, "Failed to fetch members", ms, err)
}

func (h *LibraryHandler) getMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	m, err := h.Svc.GetMember(ctx, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Failed to fetch member", m, err)
}

func (h *LibraryHandler) createMember(w http.ResponseWriter, r *http.Request) {
	var in library.MemberInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to create member", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	m, err := h.Svc.CreateMember(ctx, in)
	h.respond(w, r, http.StatusCreated, "Failed to create member", m, err)
}

func (h *LibraryHandler) updateMember(w http.ResponseWriter, r *http.Request) {
	var in library.MemberInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to update member", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	m, err := h.Svc.UpdateMember(ctx, chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, "Failed to update member", m, err)
}

func (h *LibraryHandler) deleteMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	h.noContent(w, r, "Failed to delete member", h.Svc.DeleteMember(ctx, chi.URLParam(r, "id")))
}

func (h *LibraryHandler) getMembership(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	ms, err := h.Svc.GetMembership(ctx, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Failed to fetch membership", ms, err)
}

func (h *LibraryHandler) setMembership(w http.ResponseWriter, r *http.Request) {
	var in library.MembershipInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "Failed to update membership", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	ms, err := h.Svc.SetMembership(ctx, chi.URLParam(r, "id"), in)
	h.respond(w, r, http.StatusOK, "Failed to update membership", ms, err)
}
