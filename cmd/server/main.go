package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/gops/agent"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/config"
	"github.com/AnshRaj112/therapeutes-vaud/internal/database"
	"github.com/AnshRaj112/therapeutes-vaud/internal/handlers"
	"github.com/AnshRaj112/therapeutes-vaud/internal/metrics"
	"github.com/AnshRaj112/therapeutes-vaud/internal/middleware"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
	"github.com/AnshRaj112/therapeutes-vaud/internal/routes"
	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
	"github.com/AnshRaj112/therapeutes-vaud/pkg/clientip"
	"github.com/AnshRaj112/therapeutes-vaud/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	setupLogging(cfg)
	clientip.TrustForwardedFor(cfg.TrustProxy)

	log.WithField("driver", cfg.DatabaseDriver).Info("Connecting to database...")
	db, err := database.Open(cfg.DatabaseDriver, dsn(cfg))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	store := repository.NewStore(db)
	defer store.Close()
	log.Info("✅ Database ready, schema up to date")

	log.Info("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info("✅ Redis connected")

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		seedAdmin(store, cfg.AdminEmail, cfg.AdminPassword)
	}

	sessions := services.NewSessionStore(rdb, cfg.SessionTTL)
	cache := services.NewCache(rdb, cfg.CacheTTL)

	media, err := newMedia(cfg)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize upload backend. File uploads will not be available")
	}
	var ownsPhoto func(string) bool
	if media != nil {
		ownsPhoto = media.Owns
	}

	geocoder := services.NewGeocoder(cfg.GoogleMapsAPIKey, cfg.GeocodingBaseURL)
	if !geocoder.Enabled() {
		log.Warn("GOOGLE_MAPS_API_KEY not set. Address geocoding will not be available")
	}

	m := metrics.New("therapeutes")
	h := &handlers.Handler{
		Accounts:      services.NewAccountService(store, sessions, cache, ownsPhoto),
		Verification:  services.NewVerificationService(store, sessions, cache),
		Directory:     services.NewDirectoryService(store, cache, cfg.DirectoryDefaults),
		Sessions:      sessions,
		Media:         media,
		Geocoder:      geocoder,
		Metrics:       m,
		Health:        []handlers.Pinger{store, redisPinger{rdb}},
		SecureCookies: cfg.IsProduction(),
	}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics(m))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Info("✅ Production security enabled (security headers, host check, per-IP rate limiting)")
	}
	r.Use(middleware.LoginRateLimit)

	opts := routes.Options{Redis: rdb}
	if cfg.UploadBackend == config.UploadLocal && media != nil {
		opts.UploadDir = cfg.UploadDir
	}
	routes.SetupRoutes(r, h, opts)

	if cfg.GopsEnabled {
		if err := agent.Listen(agent.Options{Addr: cfg.GopsAddr, ShutdownCleanup: true}); err != nil {
			log.WithError(err).Fatal("Failed to start gops agent")
		}
		log.WithField("addr", cfg.GopsAddr).Info("✅ gops agent listening")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("🚀 Therapeutes Vaud backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.Info("Server stopped")
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func dsn(cfg *config.Config) string {
	if cfg.DatabaseDriver == database.DriverSQLite {
		return cfg.SQLiteDSN
	}
	return cfg.PostgresURI
}

// newMedia returns the configured upload pipeline, or nil when uploads are
// disabled.
func newMedia(cfg *config.Config) (*services.MediaService, error) {
	var uploader services.Uploader
	switch cfg.UploadBackend {
	case config.UploadNone:
		log.Warn("UPLOAD_BACKEND=none. File uploads will not be available")
		return nil, nil
	case config.UploadCloudinary:
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			return nil, err
		}
		uploader = cld
	case config.UploadMinIO:
		store, err := services.NewMinIOStore(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		uploader = store
	default:
		local, err := services.NewLocalStore(cfg.UploadDir, cfg.UploadPublicURL)
		if err != nil {
			return nil, err
		}
		uploader = local
	}
	log.WithField("backend", cfg.UploadBackend).Info("✅ Upload backend initialized")
	return services.NewMediaService(uploader), nil
}

func seedAdmin(store *repository.Store, email, password string) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash admin password")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, created, err := store.UpsertAdmin(ctx, email, "Administrator", hash)
	if err != nil {
		log.WithError(err).Fatal("Failed to seed admin account")
	}
	log.WithFields(log.Fields{"account": id, "created": created}).Info("✅ Admin account ready")
}
