package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/middleware"
	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	SubscriptionTier string `json:"subscriptionTier"`
	profileRequest
}

type RegisterResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	AccountID uuid.UUID `json:"accountId"`
}

// Register creates a pending therapist account from the signup form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile := req.profileRequest.input()
	// photos are attached from the dashboard once the account has a session
	profile.PhotoURL = ""

	account, err := h.Accounts.Register(r.Context(), services.RegistrationInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		Phone:            req.Phone,
		SubscriptionTier: req.SubscriptionTier,
		Profile:          profile,
	})
	if err != nil {
		h.countRegistration(registrationOutcome(err))
		writeError(w, r, err)
		return
	}
	h.countRegistration("created")

	log.WithField("account", account.ID).Info("therapist registered")
	writeJSON(w, http.StatusCreated, RegisterResponse{
		Success:   true,
		Message:   "Registration received. Your profile will be published once verified.",
		AccountID: account.ID,
	})
}

func registrationOutcome(err error) string {
	switch {
	case models.IsValidationError(err):
		return "invalid"
	case errors.Is(err, repository.ErrDuplicateEmail):
		return "duplicate"
	}
	return "error"
}

func (h *Handler) countRegistration(outcome string) {
	if h.Metrics != nil {
		h.Metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

// GetAccount returns an account to its owner or to an admin.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	sess, _ := middleware.SessionFromContext(r.Context())
	if sess.AccountID != id && !sess.IsAdmin() {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return
	}

	account, err := h.Accounts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Success: true, Account: account, EditableFields: editableFields(account)})
}

// UpdateOwnAccount lets an owner change the self-editable fields. Any other
// field in the body is rejected.
func (h *Handler) UpdateOwnAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	sess, _ := middleware.SessionFromContext(r.Context())
	if sess.AccountID != id {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return
	}

	var body map[string]json.RawMessage
	if !decodeJSON(w, r, &body) {
		return
	}
	upd, err := parseOwnUpdate(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.Accounts.UpdateOwn(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Success: true, Account: account, EditableFields: models.SelfEditableFields})
}

func parseOwnUpdate(body map[string]json.RawMessage) (models.OwnProfileUpdate, error) {
	var upd models.OwnProfileUpdate
	if len(body) == 0 {
		return upd, &models.ValidationError{Field: "body", Message: "No editable fields provided"}
	}
	for field, raw := range body {
		if !models.IsSelfEditable(field) {
			return upd, &models.ValidationError{Field: field, Message: fmt.Sprintf("Field %q cannot be edited", field)}
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return upd, &models.ValidationError{Field: field, Message: fmt.Sprintf("Field %q must be a string", field)}
		}
		switch field {
		case "phone":
			upd.Phone = &v
		case "description":
			upd.Description = &v
		case "photoUrl":
			upd.PhotoURL = &v
		}
	}
	return upd, nil
}
