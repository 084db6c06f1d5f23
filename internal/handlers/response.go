package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

// Response is the envelope shared by every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: status < 400, Message: message})
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeMessage(w, http.StatusBadRequest, "This email is already in use")
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Account not found")
	case errors.Is(err, models.ErrInvalidTransition):
		writeMessage(w, http.StatusBadRequest, "Invalid verification action")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrNotApproved):
		writeMessage(w, http.StatusForbidden, "Your account is pending verification")
	case errors.Is(err, services.ErrWrongRole):
		writeMessage(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrGeocoderDisabled):
		writeMessage(w, http.StatusServiceUnavailable, "Geocoding is not available")
	case errors.Is(err, services.ErrAddressNotFound):
		writeMessage(w, http.StatusNotFound, "Address not found")
	case errors.Is(err, services.ErrGeocoderUnavailable):
		log.WithError(err).Warn("geocoder request failed")
		writeMessage(w, http.StatusBadGateway, "Geocoding service unavailable")
	default:
		log.WithFields(log.Fields{
			"method": r.Method,
			"URI":    r.URL.Path,
		}).WithError(err).Error("request failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
