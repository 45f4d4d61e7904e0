// Package main is the entry point for the shopcore API server.
// Shopcore is the mutation and authorization core of a storefront API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/cache"
	memorycache "github.com/prn-tf/shopcore/internal/cache/memory"
	rediscache "github.com/prn-tf/shopcore/internal/cache/redis"
	"github.com/prn-tf/shopcore/internal/config"
	"github.com/prn-tf/shopcore/internal/handler"
	"github.com/prn-tf/shopcore/internal/mail"
	"github.com/prn-tf/shopcore/internal/metrics"
	"github.com/prn-tf/shopcore/internal/repository"
	"github.com/prn-tf/shopcore/internal/repository/postgres"
	"github.com/prn-tf/shopcore/internal/repository/sqlite"
	"github.com/prn-tf/shopcore/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting shopcore server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Database
	repos, dbHealth, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer dbHealth.Close()

	// Cache backing the session user loader
	var userCache repository.Cache
	if cfg.Redis.Enabled {
		rc, err := rediscache.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rc.Close()
		userCache = rc
	} else {
		mc := memorycache.NewCache()
		defer mc.Stop()
		userCache = mc
	}

	loader := cache.NewUserLoader(repos.User, userCache, cfg.Auth.UserCacheTTL, logger)

	// Credentials and mail
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret))

	m := metrics.New()
	mailer := mail.Instrument(mail.NewSMTPDispatcher(cfg.Mail, logger), m)

	// Services
	accounts := service.NewAccountService(repos.User, hasher, tokens, loader, logger)
	resets := service.NewResetService(repos.User, hasher, tokens, mailer, loader, cfg.Server.FrontendURL, cfg.Auth.ResetTokenTTL, logger)
	items := service.NewItemService(repos.Item, logger)
	carts := service.NewCartService(repos.Cart, repos.Item, logger)

	// HTTP
	router := handler.NewRouter(handler.RouterConfig{
		Account:        handler.NewAccountHandler(accounts, m, cfg.Auth.SessionTTL, cfg.Server.CookieSecure, logger),
		Reset:          handler.NewResetHandler(resets, m, cfg.Auth.SessionTTL, cfg.Server.CookieSecure, logger),
		Item:           handler.NewItemHandler(items, m, logger),
		Cart:           handler.NewCartHandler(carts, m, logger),
		Health:         handler.NewHealthHandler(dbHealth, logger),
		AuthMiddleware: auth.Middleware(tokens, loader, logger),
		Metrics:        m,
		MaxBodySize:    cfg.Server.MaxBodySize,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsSrv.Addr).Str("path", cfg.Metrics.Path).Msg("metrics listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	return nil
}

// openDatabase connects to the configured backend, applies pending
// migrations, and builds the repository set.
func openDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Repositories, repository.DatabaseHealth, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			return repository.Repositories{}, nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repository.Repositories{}, nil, fmt.Errorf("migrating sqlite database: %w", err)
		}
		return repository.Repositories{
			User: sqlite.NewUserRepository(db),
			Item: sqlite.NewItemRepository(db),
			Cart: sqlite.NewCartRepository(db),
		}, db, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return repository.Repositories{}, nil, fmt.Errorf("opening postgres database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repository.Repositories{}, nil, fmt.Errorf("migrating postgres database: %w", err)
		}
		return repository.Repositories{
			User: postgres.NewUserRepository(db),
			Item: postgres.NewItemRepository(db),
			Cart: postgres.NewCartRepository(db),
		}, db, nil

	default:
		return repository.Repositories{}, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// newLogger builds the root zerolog logger from configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	logger := zerolog.New(os.Stdout)
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger.Level(level).With().Timestamp().Logger()
}
