package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/therapeutes-vaud/internal/database"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

// Upload backends selectable with UPLOAD_BACKEND.
const (
	UploadNone       = "none"
	UploadLocal      = "local"
	UploadCloudinary = "cloudinary"
	UploadMinIO      = "minio"
)

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string
	Host        string // Raw HOST env (e.g. https://api.therapeutes-vaud.ch)
	AllowedHost string // Hostname only for strict host check (production only)
	LogLevel    string

	DatabaseDriver database.Driver
	PostgresURI    string
	SQLiteDSN      string
	RedisURI       string

	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	TrustProxy     bool

	SessionTTL time.Duration
	CacheTTL   time.Duration

	UploadBackend   string
	UploadDir       string
	UploadPublicURL string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	MinIO services.MinIOConfig

	GoogleMapsAPIKey  string
	GeocodingBaseURL  string
	DirectoryDefaults services.DirectoryDefaults

	GopsEnabled bool
	GopsAddr    string

	// Seed admin created at startup when both are set.
	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostname(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	// When HOST is a backend host (e.g. api.therapeutes-vaud.ch), always add https://domain and https://www.domain
	// so OPTIONS preflight gets 200 even if ENV isn't set on the server
	if h := hostname(host); h != "" && h != "localhost" {
		parts := strings.Split(h, ".")
		if len(parts) >= 2 {
			domain := strings.Join(parts[1:], ".")
			for _, origin := range []string{"https://" + domain, "https://www." + domain} {
				if !containsOrigin(allowedOrigins, origin) {
					allowedOrigins = append(allowedOrigins, origin)
				}
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	driver := database.Driver(strings.ToLower(getEnv("DATABASE_DRIVER", string(database.DriverPostgres))))
	if driver != database.DriverPostgres && driver != database.DriverSQLite {
		return nil, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", driver)
	}

	sessionTTL, err := getDuration("SESSION_TTL", services.DefaultSessionTTL)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDuration("CACHE_TTL", services.DefaultCacheTTL)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: env,
		Port:        getEnv("PORT", "8080"),
		Host:        host,
		AllowedHost: allowedHost,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: driver,
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/therapeutes?sslmode=disable"),
		SQLiteDSN:      getEnv("SQLITE_DSN", "file:therapeutes.db"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),

		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,
		TrustProxy:     getBool("TRUST_PROXY", false),

		SessionTTL: sessionTTL,
		CacheTTL:   cacheTTL,

		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		UploadPublicURL: getEnv("UPLOAD_PUBLIC_URL", strings.TrimRight(host, "/")+"/uploads"),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "therapeutes"),

		MinIO: services.MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "profile-photos"),
			UseSSL:    getBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodingBaseURL: getEnv("GEOCODING_BASE_URL", services.DefaultGeocodingBaseURL),

		GopsEnabled: getBool("GOPS_ENABLED", false),
		GopsAddr:    getEnv("GOPS_ADDR", "127.0.0.1:6060"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	cfg.DirectoryDefaults.PlaceholderPhoto = getEnv("PLACEHOLDER_PHOTO_URL", services.DefaultPlaceholderPhoto)
	if cfg.DirectoryDefaults.Latitude, err = getFloat("DEFAULT_LATITUDE", services.DefaultLatitude); err != nil {
		return nil, err
	}
	if cfg.DirectoryDefaults.Longitude, err = getFloat("DEFAULT_LONGITUDE", services.DefaultLongitude); err != nil {
		return nil, err
	}

	cfg.UploadBackend = strings.ToLower(getEnv("UPLOAD_BACKEND", cfg.defaultUploadBackend()))
	switch cfg.UploadBackend {
	case UploadNone, UploadLocal, UploadCloudinary, UploadMinIO:
	default:
		return nil, fmt.Errorf("UPLOAD_BACKEND must be none, local, cloudinary or minio, got %q", cfg.UploadBackend)
	}
	return cfg, nil
}

// defaultUploadBackend picks Cloudinary when its credentials are present so
// existing deployments keep working without UPLOAD_BACKEND.
func (c *Config) defaultUploadBackend() string {
	if c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != "" {
		return UploadCloudinary
	}
	return UploadLocal
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// hostname strips scheme, path and port from a URL-ish HOST value.
func hostname(h string) string {
	for _, prefix := range []string{"https://", "http://"} {
		h = strings.TrimPrefix(h, prefix)
	}
	if idx := strings.Index(h, "/"); idx != -1 {
		h = h[:idx]
	}
	if idx := strings.Index(h, ":"); idx != -1 {
		h = h[:idx]
	}
	return strings.TrimSpace(h)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 168h, got %q", key, raw)
	}
	return d, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, raw)
	}
	return f, nil
}
