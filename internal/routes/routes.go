package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/therapeutes-vaud/internal/handlers"
	"github.com/AnshRaj112/therapeutes-vaud/internal/middleware"
)

// Options holds the pieces of routing that depend on deployment.
type Options struct {
	// Redis backs the per-IP limits on signup and uploads; nil disables them.
	Redis *redis.Client
	// UploadDir and UploadPath serve locally stored photos when set.
	UploadDir  string
	UploadPath string
}

const (
	signupLimit  = 10
	uploadLimit  = 30
	limitWindow  = time.Hour
	uploadPrefix = "/uploads"
)

func SetupRoutes(r chi.Router, h *handlers.Handler, opts Options) {
	requireSession := middleware.RequireSession(h.Sessions)
	limit := func(name string, max int) func(http.Handler) http.Handler {
		if opts.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RedisRateLimit(opts.Redis, name, max, limitWindow)
	}

	r.Get("/health", h.HealthCheck)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Auth
		r.Post("/auth/login", h.Login)
		r.Post("/auth/admin-login", h.AdminLogin)
		r.Post("/auth/logout", h.Logout)
		r.Post("/auth/admin-logout", h.Logout)
		r.Get("/auth/verify-admin", h.VerifyAdmin)
		r.With(requireSession).Get("/auth/me", h.Me)

		// Registration and self-service dashboard
		r.With(limit("signup", signupLimit)).Post("/accounts", h.Register)
		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/accounts/{id}", h.GetAccount)
			r.Put("/accounts/{id}", h.UpdateOwnAccount)
			r.With(limit("upload", uploadLimit)).Post("/uploads", h.UploadPhoto)
		})

		// Public directory
		r.Get("/directory", h.ListDirectory)
		r.Get("/directory/{id}", h.GetDirectoryEntry)
		r.Post("/geocode", h.Geocode)

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireSession, middleware.RequireAdmin)
			r.Get("/accounts", h.ListAccounts)
			r.Get("/accounts/{id}", h.AdminGetAccount)
			r.Put("/accounts/{id}", h.AdminUpdateAccount)
			r.Post("/accounts/{id}/{action}", h.ApplyVerification)
			r.Get("/stats", h.Stats)
		})
	})

	if opts.UploadDir != "" {
		path := opts.UploadPath
		if path == "" {
			path = uploadPrefix
		}
		fs := http.StripPrefix(path+"/", http.FileServer(http.Dir(opts.UploadDir)))
		r.Get(path+"/*", fs.ServeHTTP)
	}
}
