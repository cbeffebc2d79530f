// main wires configuration, storage backends, and the HTTP surface. Business
// logic lives in the internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"docgate/internal/audit"
	"docgate/internal/blob"
	"docgate/internal/document"
	"docgate/internal/email"
	"docgate/internal/identity"
	"docgate/internal/otp"
	"docgate/internal/platform/config"
	"docgate/internal/platform/httpserver"
	"docgate/internal/platform/logger"
	"docgate/internal/platform/metrics"
	"docgate/internal/platform/middleware"
	"docgate/internal/platform/redisclient"
	"docgate/internal/token"
	httptransport "docgate/internal/transport/http"
)

// devAdminCode keeps local setups working without configuration. Production
// should always set ADMIN_CODE.
const devAdminCode = "admin@123"

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New(cfg.Production)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checks := map[string]func(context.Context) error{}

	// Storage backends fall back to in-memory when unconfigured so the
	// server runs with zero setup in development.
	var (
		userStore  identity.Store
		docStore   document.Store
		auditStore audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if err := identity.EnsureSchema(ctx, db); err != nil {
			return err
		}
		if err := document.EnsureSchema(ctx, db); err != nil {
			return err
		}
		if err := audit.EnsureSchema(ctx, db); err != nil {
			return err
		}
		userStore = identity.NewPostgresStore(db)
		docStore = document.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		checks["postgres"] = db.PingContext
		log.Info("using postgres storage")
	} else {
		userStore = identity.NewInMemoryStore()
		docStore = document.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	var otpStore otp.Store
	redisCli, err := redisclient.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisCli != nil {
		defer redisCli.Close()
		otpStore = otp.NewRedisStore(redisCli.Client)
		checks["redis"] = redisCli.Health
		log.Info("using redis OTP store")
	} else {
		otpStore = otp.NewInMemoryStore()
	}

	var blobs blob.Store
	if cfg.S3.Bucket != "" {
		blobs, err = blob.NewS3Store(cfg.S3)
		if err != nil {
			return err
		}
		log.Info("using s3 blob storage", "bucket", cfg.S3.Bucket)
	} else {
		blobs, err = blob.NewLocalStore(cfg.BlobDir)
		if err != nil {
			return err
		}
	}

	tokens, err := token.New(token.Config{Secret: cfg.JWTSecret, Production: cfg.Production})
	if err != nil {
		return err
	}

	adminCode := cfg.AdminCode
	if adminCode == "" {
		if cfg.Production {
			return errors.New("ADMIN_CODE is required in production")
		}
		adminCode = devAdminCode
		log.Warn("ADMIN_CODE not set, using development default")
	}

	sender := email.New(cfg.SMTP, log)
	auditRec := audit.NewRecorder(auditStore, log)

	userSvc := identity.NewService(userStore, log,
		identity.WithMetrics(m), identity.WithAudit(auditRec))

	otpOpts := []otp.Option{otp.WithMetrics(m)}
	if !cfg.Production {
		otpOpts = append(otpOpts, otp.WithCodeExposure())
	}
	otpSvc := otp.NewService(userSvc, otpStore, sender, log, otpOpts...)

	docSvc := document.NewService(docStore, userSvc, blobs, log, document.WithMetrics(m))

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Users:       httptransport.NewUserHandler(userSvc, otpSvc, tokens, auditRec, adminCode, log),
		Documents:   httptransport.NewDocumentHandler(docSvc, log),
		UserGuard:   middleware.RequireUser(tokens, userSvc, log),
		AdminGuard:  middleware.RequireAdmin(tokens, log),
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
		Checks:      checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr, "production", cfg.Production)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
