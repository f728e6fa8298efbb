package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/txgate/txgate/application/usecase/auth"
	"github.com/txgate/txgate/application/usecase/authz"
	"github.com/txgate/txgate/application/usecase/dispatch"
	"github.com/txgate/txgate/infrastructure/config"
	httpserver "github.com/txgate/txgate/infrastructure/http"
	"github.com/txgate/txgate/infrastructure/http/middleware"
	"github.com/txgate/txgate/infrastructure/invoker"
	"github.com/txgate/txgate/infrastructure/persistence/postgres"
	auditsvc "github.com/txgate/txgate/infrastructure/service/audit"
	jwtsvc "github.com/txgate/txgate/infrastructure/service/jwt"
	"github.com/txgate/txgate/infrastructure/service/logger"
	"github.com/txgate/txgate/infrastructure/service/password"
	"github.com/txgate/txgate/infrastructure/service/ratelimit"
)

var (
	Version   = "development"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLog := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "txgate",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	structuredLog.Info(ctx, "Starting transaction dispatch engine", map[string]interface{}{
		"version":     Version,
		"build_time":  BuildTime,
		"environment": cfg.Environment,
	})

	db, err := initDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := postgres.NewPermissionStore(db)

	// The registry and the cache must complete one load before the
	// process serves transactions; refusing to start beats silently
	// denying everything.
	registry := authz.NewTxRegistry(store, structuredLog)
	cache := authz.NewPermissionCache(store, structuredLog)

	if err := registry.Load(ctx); err != nil {
		log.Fatalf("Failed to load transaction registry: %v", err)
	}
	if err := cache.Load(ctx); err != nil {
		log.Fatalf("Failed to load permission cache: %v", err)
	}

	admin := authz.NewAdmin(cache, registry)

	if cfg.AuthzReloadInterval > 0 {
		go periodicReload(ctx, admin, cfg.AuthzReloadInterval, structuredLog)
	}

	auditDispatcher := auditsvc.NewDispatcher(postgres.NewAuditRepository(db), cfg.AuditBufferSize, structuredLog)
	defer auditDispatcher.Close()

	tokenService, err := jwtsvc.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	targets := invoker.NewRegistry()
	registerBusinessObjects(targets, db, tokenService, structuredLog, cfg)

	orchestrator := dispatch.NewOrchestrator(registry, cache, targets, auditDispatcher, structuredLog)

	rateLimitService, err := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:       cfg.RateLimitEnabled,
		RedisURL:      cfg.RedisURL,
		Attempts:      cfg.RateLimitAttempts,
		Window:        cfg.RateLimitWindow,
		BlockDuration: cfg.RateLimitBlockDuration,
	}, logrusLogger(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize rate limiting: %v", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService, cfg.PublicProfileID)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(
		rateLimitService, structuredLog,
		cfg.RateLimitAttempts, cfg.RateLimitWindow, cfg.RateLimitBlockDuration,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.ServerHost,
		Port:         cfg.ServerPort,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, orchestrator, admin, authMiddleware, rateLimitMiddleware, structuredLog)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	structuredLog.Info(ctx, "Shutting down server", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLog.Error(ctx, "Error during server shutdown", err, nil)
	}
}

func initDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxConns / 2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// registerBusinessObjects binds the in-process business objects to the
// invoker. The set registered here must cover every target provisioned in
// tx_mappings.
func registerBusinessObjects(targets *invoker.Registry, db *sql.DB, tokenService *jwtsvc.JWTService, structuredLog logger.Logger, cfg *config.Config) {
	userRepo := postgres.NewUserRepository(db)
	passwordService := password.NewBcryptPasswordService(0)

	authUseCase := auth.NewAuthUseCase(userRepo, tokenService, passwordService, structuredLog, cfg.AccessTokenTTL)

	targets.MustRegister("Auth", "login", authUseCase.Login)
	targets.MustRegister("Auth", "me", authUseCase.Me)
}

func periodicReload(ctx context.Context, admin *authz.Admin, interval time.Duration, structuredLog logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := admin.Reload(ctx); err != nil {
				structuredLog.Error(ctx, "Periodic authorization reload failed; previous state still serving", err, nil)
			}
		}
	}
}

func logrusLogger(cfg *config.Config) *logrus.Logger {
	l := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	if cfg.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}
