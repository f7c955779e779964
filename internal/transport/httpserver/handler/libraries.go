package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	librarydomain "media-catalog-go/internal/domain/library"
)

func (h *Handlers) ListLibraries(w http.ResponseWriter, r *http.Request) {
	libs, err := h.Libraries.List(r.Context())
	if err != nil {
		h.log.Error("http: list libraries failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not list libraries")
		return
	}
	if libs == nil {
		libs = []librarydomain.Library{}
	}
	writeJSON(w, http.StatusOK, libs)
}

func (h *Handlers) CreateLibrary(w http.ResponseWriter, r *http.Request) {
	var spec librarydomain.NewLibrary
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid body")
		return
	}

	id, err := h.Libraries.Create(r.Context(), spec)
	if err != nil {
		if errors.Is(err, librarydomain.ErrLibraryNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "library not found")
			return
		}
		h.log.Error("http: create library failed", "err", err)
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handlers) GetLibrary(w http.ResponseWriter, r *http.Request) {
	id, ok := libraryID(w, r)
	if !ok {
		return
	}

	lib, err := h.Libraries.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, librarydomain.ErrLibraryNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "library not found")
			return
		}
		h.log.Error("http: get library failed", "library_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not fetch library")
		return
	}

	writeJSON(w, http.StatusOK, lib)
}

func (h *Handlers) DeleteLibrary(w http.ResponseWriter, r *http.Request) {
	id, ok := libraryID(w, r)
	if !ok {
		return
	}

	if err := h.Libraries.Delete(r.Context(), id); err != nil {
		if errors.Is(err, librarydomain.ErrLibraryNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "library not found")
			return
		}
		h.log.Error("http: delete library failed", "library_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not delete library")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) LibraryMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := libraryID(w, r)
	if !ok {
		return
	}

	grouped, err := h.Libraries.Media(r.Context(), id)
	if err != nil {
		if errors.Is(err, librarydomain.ErrLibraryNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "library not found")
			return
		}
		h.log.Error("http: list media failed", "library_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not list media")
		return
	}

	writeJSON(w, http.StatusOK, grouped)
}

func (h *Handlers) LibraryUnmatched(w http.ResponseWriter, r *http.Request) {
	id, ok := libraryID(w, r)
	if !ok {
		return
	}

	grouped, err := h.Libraries.Unmatched(r.Context(), id)
	if err != nil {
		if errors.Is(err, librarydomain.ErrLibraryNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "library not found")
			return
		}
		h.log.Error("http: list unmatched failed", "library_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not list unmatched files")
		return
	}

	writeJSON(w, http.StatusOK, grouped)
}

func libraryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid library id")
		return 0, false
	}
	return id, true
}
