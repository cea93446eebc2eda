package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"pageguard/authz"
	"pageguard/internal/api"
	"pageguard/internal/config"
	internaldb "pageguard/internal/db"
	"pageguard/internal/middleware"
	"pageguard/internal/repository"
	"pageguard/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Open the user/audit store with hardened connection settings.
	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  4-connection pool for concurrent reads (WAL, no txlock).
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return err
	}
	defer writeDB.Close()
	defer readDB.Close()

	// Run migrations on the write pool (DDL requires write access)
	if err := internaldb.RunMigrations(writeDB); err != nil {
		return err
	}

	// Repositories — write-pool for mutations, read-pool for lookups that run
	// on every guarded request.
	userRepo := repository.NewUserRepo(writeDB)
	userReadRepo := repository.NewUserRepo(readDB)
	auditRepo := repository.NewAuditLogRepo(writeDB)
	keyRepo := repository.NewAPIKeyRepo(writeDB)
	keyReadRepo := repository.NewAPIKeyRepo(readDB)

	userSvc := service.NewUserService(userRepo, auditRepo)
	auditSvc := service.NewAuditService(auditRepo)
	keySvc := service.NewAPIKeyService(keyRepo, auditRepo)
	handler := api.NewHandler(userSvc, auditSvc, keySvc)

	// Owner policies resolve page owners against the user store, or against a
	// flat YAML user list in dev mode.
	var directory authz.Directory = userReadRepo
	if cfg.DirectoryFile != "" {
		dir, err := authz.LoadDirectoryFile(cfg.DirectoryFile)
		if err != nil {
			return err
		}
		directory = dir
		logger.Info("using directory file", "path", cfg.DirectoryFile, "users", len(dir))
	}

	ownerOrStaff := authz.OwnerOrStaff(directory, authz.WithAuditRecorder(auditRepo))
	ownerOnly := authz.OwnerOnly(directory)

	validator, err := buildValidator(ctx, cfg)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	// Public endpoints — no auth required
	r.Get("/healthz", handler.Healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Authenticator(validator, userReadRepo, keyReadRepo))

		r.Route("/users/{username}", func(r chi.Router) {
			r.With(middleware.Guard(ownerOrStaff)).Get("/", handler.GetProfile)
			r.With(middleware.Guard(ownerOnly)).Get("/settings", handler.GetSettings)

			r.Route("/keys", func(r chi.Router) {
				r.Use(middleware.Guard(ownerOnly))
				r.Post("/", handler.CreateAPIKey)
				r.Get("/", handler.ListAPIKeys)
				r.Delete("/{keyID}", handler.DeleteAPIKey)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(middleware.Guard(authz.StaffOnly())).Get("/users", handler.ListUsers)
			r.With(middleware.Guard(authz.StaffOnly())).Post("/users", handler.CreateUser)
			r.With(middleware.Guard(authz.SuperuserOnly())).Delete("/users/{username}", handler.DeleteUser)
			r.With(middleware.Guard(authz.StaffOnly())).Get("/audit", handler.ListAudit)
		})
	})

	// Hourly retention sweep: old audit entries and expired API keys.
	sched := cron.New()
	if _, err := sched.AddFunc("@hourly", func() {
		auditSvc.Prune(context.Background(), cfg.AuditRetention)
		keySvc.CleanupExpired(context.Background())
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildValidator picks the token validator: OIDC discovery when an issuer is
// configured, otherwise the HS256 dev secret.
func buildValidator(ctx context.Context, cfg *config.Config) (middleware.JWTValidator, error) {
	if cfg.OIDCEnabled() {
		return middleware.NewOIDCValidator(ctx, cfg.IssuerURL, cfg.Audience, cfg.AllowedIssuers)
	}
	return middleware.NewHS256Validator(cfg.JWTSecret)
}
