package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/therapeutes-vaud/internal/metrics"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the services behind every HTTP endpoint.
type Handler struct {
	Accounts     *services.AccountService
	Verification *services.VerificationService
	Directory    *services.DirectoryService
	Sessions     *services.SessionStore
	// Media is nil when no upload backend is configured.
	Media    *services.MediaService
	Geocoder *services.Geocoder
	Metrics  *metrics.Metrics
	Health   []Pinger

	// SecureCookies marks the session cookie Secure (production).
	SecureCookies bool
}

// HealthCheck answers "OK" when every dependency responds.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, p := range h.Health {
		if err := p.Ping(ctx); err != nil {
			http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("OK"))
}
