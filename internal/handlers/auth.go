package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/middleware"
	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success          bool                    `json:"success"`
	Message          string                  `json:"message"`
	UserID           uuid.UUID               `json:"userId"`
	Email            string                  `json:"email"`
	Name             string                  `json:"name"`
	Role             models.Role             `json:"role"`
	SubscriptionTier models.SubscriptionTier `json:"subscriptionTier"`
}

// Login handles therapist sign-in.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, "therapist", h.Accounts.Login)
}

// AdminLogin handles admin sign-in.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, "admin", h.Accounts.AdminLogin)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, kind string, authenticate func(ctx context.Context, email, password string) (*models.Account, error)) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.countLogin(kind, loginOutcome(err))
		writeError(w, r, err)
		return
	}

	sess, err := h.Accounts.OpenSession(r.Context(), account)
	if err != nil {
		h.countLogin(kind, loginOutcome(err))
		writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess.Token)
	h.countLogin(kind, "ok")

	log.WithFields(log.Fields{"account": account.ID, "role": account.Role}).Info("login")
	writeJSON(w, http.StatusOK, LoginResponse{
		Success:          true,
		Message:          "Login successful",
		UserID:           account.ID,
		Email:            account.Email,
		Name:             account.Name,
		Role:             account.Role,
		SubscriptionTier: account.SubscriptionTier,
	})
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, services.ErrNotApproved):
		return "not_approved"
	case errors.Is(err, services.ErrWrongRole):
		return "wrong_role"
	}
	return "error"
}

func (h *Handler) countLogin(kind, outcome string) {
	if h.Metrics != nil {
		h.Metrics.LoginsTotal.WithLabelValues(kind, outcome).Inc()
	}
}

// Logout ends the current session. It always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.Sessions.Invalidate(r.Context(), token); err != nil {
			log.WithError(err).Warn("failed to invalidate session")
		}
	}
	h.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out")
}

// VerifyAdmin reports whether the caller holds a live admin session.
func (h *Handler) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	sess, ok, err := h.Sessions.Validate(r.Context(), middleware.SessionToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok || !sess.IsAdmin() {
		writeJSON(w, http.StatusUnauthorized, Response{Success: false})
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true})
}

type AccountResponse struct {
	Success        bool            `json:"success"`
	Account        *models.Account `json:"account"`
	EditableFields []string        `json:"editableFields,omitempty"`
}

// Me returns the account behind the current session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	account, err := h.Accounts.Get(r.Context(), sess.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Success: true, Account: account, EditableFields: editableFields(account)})
}

func editableFields(a *models.Account) []string {
	if a.Role == models.RoleAdmin {
		return nil
	}
	return models.SelfEditableFields
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
