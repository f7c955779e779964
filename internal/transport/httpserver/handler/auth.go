package handler

import (
	"errors"
	"net/http"

	accountdomain "media-catalog-go/internal/domain/account"
	"media-catalog-go/internal/transport/httpserver/middleware"
)

type registerRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Roles       []string `json:"roles"`
	InviteToken string   `json:"invite_token"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid body")
		return
	}

	username, err := h.Accounts.Register(r.Context(), req.Username, req.Password, req.Roles, req.InviteToken)
	switch {
	case errors.Is(err, accountdomain.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken", "username already taken")
		return
	case errors.Is(err, accountdomain.ErrInvalidInviteToken):
		writeError(w, http.StatusForbidden, "invalid_invite", "invite token invalid or already claimed")
		return
	case err != nil:
		h.log.Error("http: register failed", "err", err)
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"username": username})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid body")
		return
	}

	acct, err := h.Accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, accountdomain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		h.log.Error("http: login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not authenticate")
		return
	}

	token := h.sessions.Issue(acct.Username)
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "username": acct.Username})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.Username(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no session")
		return
	}

	acct, err := h.Accounts.Get(r.Context(), username)
	if err != nil {
		if errors.Is(err, accountdomain.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		h.log.Error("http: fetch account failed", "username", username, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not fetch account")
		return
	}

	writeJSON(w, http.StatusOK, acct)
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.Username(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no session")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid body")
		return
	}

	if err := h.Accounts.SetPassword(r.Context(), username, req.NewPassword); err != nil {
		if errors.Is(err, accountdomain.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
