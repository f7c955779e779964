package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	accountdomain "media-catalog-go/internal/domain/account"
)

func (h *Handlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	token, err := h.Accounts.IssueInvite(r.Context())
	if err != nil {
		h.log.Error("http: issue invite failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not issue invite")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *Handlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.Accounts.ListInvites(r.Context())
	if err != nil {
		h.log.Error("http: list invites failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not list invites")
		return
	}
	if invites == nil {
		invites = []accountdomain.Invite{}
	}

	writeJSON(w, http.StatusOK, invites)
}

func (h *Handlers) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "id")
	if tokenID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "missing invite id")
		return
	}

	removed, err := h.Accounts.RevokeInvite(r.Context(), tokenID)
	if err != nil {
		h.log.Error("http: revoke invite failed", "token", tokenID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not revoke invite")
		return
	}
	if removed < 1 {
		writeError(w, http.StatusNotFound, "not_found", "invite unknown or already claimed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
