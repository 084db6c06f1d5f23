package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

type DirectoryResponse struct {
	Success    bool                      `json:"success"`
	Count      int                       `json:"count"`
	Therapists []services.DirectoryEntry `json:"therapists"`
}

type DirectoryEntryResponse struct {
	Success   bool                    `json:"success"`
	Therapist services.DirectoryEntry `json:"therapist"`
}

// ListDirectory returns every published therapist.
func (h *Handler) ListDirectory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Directory.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DirectoryResponse{Success: true, Count: len(entries), Therapists: entries})
}

// GetDirectoryEntry returns one published therapist.
func (h *Handler) GetDirectoryEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	entry, err := h.Directory.Get(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Therapist not found")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DirectoryEntryResponse{Success: true, Therapist: entry})
}
