package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

type AccountsResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Accounts []*models.Account `json:"accounts"`
}

// ListAccounts returns therapist accounts newest first, optionally filtered
// by ?status=.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	var status models.VerificationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		var err error
		if status, err = models.ParseVerificationStatus(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	accounts, err := h.Accounts.ListTherapists(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountsResponse{Success: true, Count: len(accounts), Accounts: accounts})
}

// AdminGetAccount returns any account with its profile.
func (h *Handler) AdminGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	account, err := h.Accounts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Success: true, Account: account})
}

type AdminUpdateRequest struct {
	Email              string          `json:"email"`
	Name               string          `json:"name"`
	Phone              string          `json:"phone"`
	Role               string          `json:"role"`
	SubscriptionTier   string          `json:"subscriptionTier"`
	VerificationStatus string          `json:"verificationStatus"`
	Profile            *profileRequest `json:"profile"`
}

type AdminUpdateResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Account *models.Account `json:"account"`
}

// AdminUpdateAccount overwrites every field of an account and its profile.
func (h *Handler) AdminUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	var req AdminUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := services.AccountUpdate{
		Email:              req.Email,
		Name:               req.Name,
		Phone:              req.Phone,
		Role:               req.Role,
		SubscriptionTier:   req.SubscriptionTier,
		VerificationStatus: req.VerificationStatus,
	}
	if req.Profile != nil {
		p := req.Profile.input()
		in.Profile = &p
	}

	account, err := h.Accounts.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AdminUpdateResponse{Success: true, Message: "Account updated", Account: account})
}

type VerificationResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Status  models.VerificationStatus `json:"status"`
}

// ApplyVerification handles POST /api/admin/accounts/{id}/{action}.
func (h *Handler) ApplyVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	action := models.Action(chi.URLParam(r, "action"))

	status, err := h.Verification.Apply(r.Context(), id, action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.VerificationsTotal.WithLabelValues(string(status)).Inc()
	}

	message := "Therapist approved"
	if status == models.StatusRejected {
		message = "Therapist rejected"
	}
	writeJSON(w, http.StatusOK, VerificationResponse{Success: true, Message: message, Status: status})
}

type StatsResponse struct {
	Success  bool `json:"success"`
	Pending  int  `json:"pending"`
	Approved int  `json:"approved"`
	Rejected int  `json:"rejected"`
}

// Stats returns therapist counts per verification status.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Accounts.CountByStatus(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Success:  true,
		Pending:  counts[models.StatusPending],
		Approved: counts[models.StatusApproved],
		Rejected: counts[models.StatusRejected],
	})
}
