package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/therapeutes-vaud/internal/database"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOST", "http://localhost:8080")
	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.AllowedHost)
	assert.Equal(t, database.DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, services.DefaultSessionTTL, cfg.SessionTTL)
	assert.Equal(t, UploadLocal, cfg.UploadBackend)
	assert.Equal(t, "http://localhost:8080/uploads", cfg.UploadPublicURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.InDelta(t, services.DefaultLatitude, cfg.DirectoryDefaults.Latitude, 1e-9)
}

func TestLoadProductionHost(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("HOST", "https://api.therapeutes-vaud.ch:443/base")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.ch, ")
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "api.therapeutes-vaud.ch", cfg.AllowedHost)
	assert.Equal(t, []string{
		"https://admin.example.ch",
		"https://therapeutes-vaud.ch",
		"https://www.therapeutes-vaud.ch",
	}, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("SESSION_TTL", "12h")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("UPLOAD_BACKEND", "minio")
	t.Setenv("DEFAULT_LATITUDE", "46.8")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, database.DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, UploadMinIO, cfg.UploadBackend)
	assert.InDelta(t, 46.8, cfg.DirectoryDefaults.Latitude, 1e-9)
}

func TestLoadCloudinaryByDefault(t *testing.T) {
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, UploadCloudinary, cfg.UploadBackend)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"DATABASE_DRIVER":  "mongo",
		"SESSION_TTL":      "forever",
		"UPLOAD_BACKEND":   "s3",
		"DEFAULT_LATITUDE": "north",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
