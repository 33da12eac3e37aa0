package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/campuslink/internal/api"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/cache"
	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/config"
	"github.com/lalith-99/campuslink/internal/db"
	"github.com/lalith-99/campuslink/internal/observ"
	"github.com/lalith-99/campuslink/internal/realtime"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/repository/memory"
	"github.com/lalith-99/campuslink/internal/repository/postgres"
	"github.com/lalith-99/campuslink/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config and create logger
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 2. Storage backend
	// ---------------------------------------------------------------
	var (
		store  repository.Store
		health func(context.Context) error
	)
	switch cfg.Store {
	case "postgres":
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		store = postgres.NewStore(database.Pool())
		health = database.Health
	default:
		logger.Warn("using in-memory store, data is lost on restart")
		store = memory.NewStore()
	}

	// ---------------------------------------------------------------
	// 3. Realtime, token revocation and rate limiting
	//
	// With Redis these are shared between instances; without it each
	// process keeps its own.
	// ---------------------------------------------------------------
	hub := realtime.NewHub(logger)
	var (
		events      realtime.Publisher = hub
		revoked     cache.RevocationList
		authLimiter cache.RateLimiter
	)
	if cfg.RedisURL != "" {
		client, err := cache.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()

		broker := realtime.NewRedisBroker(client, hub, logger)
		go func() {
			if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event relay stopped", zap.Error(err))
			}
		}()
		events = broker
		revoked = cache.NewRedisRevocationList(client)
		authLimiter = cache.NewRedisRateLimiter(client, cfg.AuthRateLimit, cfg.AuthRateWindow)
	} else {
		revoked = cache.NewMemoryRevocationList()
		authLimiter = cache.NewMemoryRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	// ---------------------------------------------------------------
	// 4. Services and routes
	// ---------------------------------------------------------------
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	svc := api.Services{
		Accounts:       service.NewAccounts(store, issuer, revoked, cat, logger),
		Students:       service.NewStudents(store, cat, logger),
		Discovery:      service.NewDiscovery(store, logger),
		Connections:    service.NewConnections(store, events, logger),
		Teams:          service.NewTeams(store, cat, events, logger),
		Threads:        service.NewThreads(store, events, logger),
		Participations: service.NewParticipations(store, logger),
		Announcements:  service.NewAnnouncements(cat),
	}
	router := api.NewRouter(svc, api.RouterConfig{
		Issuer:      issuer,
		Revoked:     revoked,
		AuthLimiter: authLimiter,
		Hub:         hub,
		Catalog:     cat,
		Health:      health,
		Logger:      logger,
	})

	// ---------------------------------------------------------------
	// 5. Serve until SIGINT/SIGTERM, then drain
	// ---------------------------------------------------------------
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting CampusLink",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store),
			zap.Bool("redis", cfg.RedisURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
