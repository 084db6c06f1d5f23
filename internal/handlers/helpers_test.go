package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/therapeutes-vaud/internal/database"
	"github.com/AnshRaj112/therapeutes-vaud/internal/handlers"
	"github.com/AnshRaj112/therapeutes-vaud/internal/metrics"
	"github.com/AnshRaj112/therapeutes-vaud/internal/middleware"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
	"github.com/AnshRaj112/therapeutes-vaud/internal/routes"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
	"github.com/AnshRaj112/therapeutes-vaud/pkg/utils"
)

const (
	adminEmail    = "admin@therapeutes-vaud.ch"
	adminPassword = "admin-password"
	testPassword  = "s3cret-pass"
)

type testApp struct {
	t        *testing.T
	router   chi.Router
	store    *repository.Store
	sessions *services.SessionStore
	metrics  *metrics.Metrics
	uploads  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	store := repository.NewStore(db)
	t.Cleanup(func() { store.Close() })

	uploads := t.TempDir()
	local, err := services.NewLocalStore(uploads, "http://localhost:8080/uploads")
	require.NoError(t, err)
	media := services.NewMediaService(local)

	sessions := services.NewSessionStore(rdb, 0)
	cache := services.NewCache(rdb, 0)
	m := metrics.New("test")

	h := &handlers.Handler{
		Accounts:     services.NewAccountService(store, sessions, cache, media.Owns),
		Verification: services.NewVerificationService(store, sessions, cache),
		Directory:    services.NewDirectoryService(store, cache, services.DirectoryDefaults{}),
		Sessions:     sessions,
		Media:        media,
		Geocoder:     services.NewGeocoder("test-key", ""),
		Metrics:      m,
		Health:       []handlers.Pinger{store},
	}

	r := chi.NewRouter()
	routes.SetupRoutes(r, h, routes.Options{Redis: rdb, UploadDir: uploads})

	hash, err := utils.HashPassword(adminPassword)
	require.NoError(t, err)
	_, _, err = store.UpsertAdmin(context.Background(), adminEmail, "Admin", hash)
	require.NoError(t, err)

	return &testApp{t: t, router: r, store: store, sessions: sessions, metrics: m, uploads: uploads}
}

// do sends a JSON request, attaching the session cookie when token is set.
func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:4000"
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// signupForm mirrors what the registration page posts, numbers as strings.
func signupForm(email string) map[string]any {
	return map[string]any{
		"email":            email,
		"password":         testPassword,
		"name":             "Léa Favre",
		"phone":            "+41 21 555 12 34",
		"practitionerType": "psychotherapeute",
		"specializations":  []string{"Anxiété", "Trauma"},
		"languages":        "Français, Allemand",
		"yearsExperience":  "15",
		"description":      "Approche systémique",
		"street":           "Place de la Palud 2",
		"postalCode":       "1003",
		"city":             "Lausanne",
		"latitude":         "",
		"longitude":        nil,
		"rateIndividual":   "160",
		"rateCouple":       190,
		"subscriptionTier": "premium",
	}
}

func (a *testApp) register(email string) uuid.UUID {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/accounts", signupForm(email), "")
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	id, err := uuid.Parse(decode(a.t, rec)["accountId"].(string))
	require.NoError(a.t, err)
	return id
}

func (a *testApp) adminToken() string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/admin-login", map[string]string{"email": adminEmail, "password": adminPassword}, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(rec).Value
}

func (a *testApp) approve(id uuid.UUID) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/admin/accounts/"+id.String()+"/approve", nil, a.adminToken())
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (a *testApp) loginToken(email string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": testPassword}, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(rec).Value
}
