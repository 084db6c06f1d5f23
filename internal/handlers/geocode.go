package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
)

type GeocodeRequest struct {
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
}

type GeocodeResponse struct {
	Success   bool    `json:"success"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocode resolves a Swiss address to coordinates for the signup map.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	var req GeocodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.City) == "" && strings.TrimSpace(req.PostalCode) == "" {
		writeError(w, r, &models.ValidationError{Field: "city", Message: "City or postal code is required"})
		return
	}

	lat, lng, err := h.Geocoder.Geocode(r.Context(), req.Street, req.PostalCode, req.City)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GeocodeResponse{Success: true, Latitude: lat, Longitude: lng})
}
