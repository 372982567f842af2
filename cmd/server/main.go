// @title        User Service API
// @version      1.0
// @description  User management with session-based local and Google authentication.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"

	"github.com/userhub/user-service/internal/api"
	"github.com/userhub/user-service/internal/api/handler"
	"github.com/userhub/user-service/internal/core/service"
	"github.com/userhub/user-service/internal/infrastructure/config"
	"github.com/userhub/user-service/internal/infrastructure/credentials"
	mongodb "github.com/userhub/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/userhub/user-service/internal/infrastructure/db/redis"
	"github.com/userhub/user-service/internal/infrastructure/oauth"
	"github.com/userhub/user-service/internal/infrastructure/queue"
	"github.com/userhub/user-service/internal/infrastructure/session"
	"github.com/userhub/user-service/pkg/logger"
)

func main() {
	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		bootLog.Fatal().Err(err).Msg("failed to read .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	logOpts := logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction()}
	if cfg.LogFile != "" {
		logOpts.File = &logger.FileRotation{Filename: cfg.LogFile, MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 14, Compress: true}
	}
	log := logger.Init(logOpts)
	defer func() { _ = logger.Close() }()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("user-service failed")
	}
	log.Info().Msg("user-service stopped cleanly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "user-service"})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	verifier, err := credentials.New(cfg.Password.Scheme, cfg.Password.BcryptCost)
	if err != nil {
		return err
	}

	userRepo := mongodb.NewUserRepository(db, verifier)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, auditRepo); err != nil {
		return err
	}

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	var rdb *goredis.Client
	if cfg.Session.Store == session.KindRedis {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		checks["redis"] = func(ctx context.Context) error { return redisdb.Ping(ctx, rdb, 0) }
	}

	sessions, err := session.New(cfg.Session.Store, rdb, cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return err
	}
	sameSite, err := session.ParseSameSite(cfg.Session.SameSite)
	if err != nil {
		return err
	}

	// --- Audit trail ---
	// Workers outlive the signal context so queued events are stored after
	// the server has drained.
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	defer stopAudit()
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(auditRepo, log), log)
	dispatcher.Start(auditCtx)

	// --- Services ---
	users := service.NewUserService(userRepo, verifier, dispatcher, log)
	auth := service.NewAuthService(userRepo, sessions, dispatcher, log)

	deps := api.Deps{
		Users: users,
		Auth:  auth,
		Cookies: handler.SessionCookies{
			Options: session.CookieOptions{
				Name:     cfg.Session.CookieName,
				Secure:   cfg.Session.CookieSecure,
				SameSite: sameSite,
			},
			TTL: sessions.TTL(),
		},
		Redirects: handler.OAuthRedirects{
			Success: cfg.Google.SuccessRedirect,
			Failure: cfg.Google.FailureRedirect,
		},
		Checks: checks,
		Log:    log,
	}

	if cfg.Google.Enabled() {
		google, err := oauth.NewGoogle(ctx, oauth.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			CallbackURL:  cfg.Google.CallbackURL,
		})
		if err != nil {
			return err
		}
		deps.Google = google
	} else {
		log.Warn().Msg("google oauth not configured, /auth/google disabled")
	}

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("session_store", cfg.Session.Store).
		Str("password_scheme", verifier.Scheme()).
		Msg("user-service started")

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit queue not fully drained")
	}
	return nil
}
