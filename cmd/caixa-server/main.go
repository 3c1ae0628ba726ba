// Package main is the entry point for the caixa ledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sinuca-magalhaes/caixa/internal/auth"
	"github.com/sinuca-magalhaes/caixa/internal/cache/memory"
	"github.com/sinuca-magalhaes/caixa/internal/cache/redis"
	"github.com/sinuca-magalhaes/caixa/internal/config"
	"github.com/sinuca-magalhaes/caixa/internal/handler"
	"github.com/sinuca-magalhaes/caixa/internal/lock"
	"github.com/sinuca-magalhaes/caixa/internal/metrics"
	"github.com/sinuca-magalhaes/caixa/internal/pkg/crypto"
	"github.com/sinuca-magalhaes/caixa/internal/pkg/logging"
	"github.com/sinuca-magalhaes/caixa/internal/report"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
	"github.com/sinuca-magalhaes/caixa/internal/repository/driver"
	"github.com/sinuca-magalhaes/caixa/internal/service"
	"github.com/sinuca-magalhaes/caixa/internal/storage"
	s3archive "github.com/sinuca-magalhaes/caixa/internal/storage/s3"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "caixa-server",
		Short:         "Cash ledger API for the billiards hall",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (YAML); environment variables override it")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func serve(ctx context.Context, configPath string) error {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger, err := logging.New(cfg.Logging, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}
	log.Logger = logger

	// No insecure fallback: a missing secret aborts startup.
	signingKey, err := cfg.Auth.SigningKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("set CAIXA_AUTH_SECRET_KEY (or SECRET_KEY) before starting the server")
	}

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting caixa server")

	// Database
	db, err := driver.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Database.Close()

	if err := db.Database.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Cache and locks
	cache, locker, closeCache, err := openCache(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Report archive
	archive, err := openArchive(ctx, cfg.Archive, logger)
	if err != nil {
		return err
	}

	// Services
	tokens, err := auth.NewTokenService(signingKey,
		auth.WithTTL(cfg.Auth.TokenTTL),
		auth.WithIssuer(cfg.Auth.Issuer),
	)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	throttle := service.NewLoginThrottle(cache, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow, logger)
	userService := service.NewUserService(db.Repos.User, crypto.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, logger,
		service.WithLoginThrottle(throttle),
		service.WithUserMetrics(m),
	)
	txService := service.NewTransactionService(db.Repos.Transaction, m, logger)
	reportService := service.NewReportService(
		db.Repos.Transaction,
		report.NewGenerator(report.WithChart(cfg.Report.Chart)),
		archive,
		m,
		service.ReportServiceConfig{
			MaxTransactions: cfg.Report.MaxTransactions,
			ArchivePrefix:   cfg.Archive.Prefix,
		},
		logger,
		service.WithReportLocker(locker),
	)

	// HTTP
	var limiter *handler.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = handler.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize, cfg.RateLimit.IdleTimeout, logger)
		limiter.StartCleanup(ctx, time.Minute)
	}

	router := handler.NewRouter(handler.RouterConfig{
		UserHandler:        handler.NewUserHandler(userService, logger),
		TransactionHandler: handler.NewTransactionHandler(txService, logger),
		ReportHandler:      handler.NewReportHandler(reportService, logger),
		Authenticator:      userService,
		RateLimiter:        limiter,
		Metrics:            m,
		MetricsPath:        cfg.Metrics.Path,
		Health:             db.Database,
		MaxBodySize:        cfg.Server.MaxBodySize,
		Logger:             logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// openCache returns Redis-backed cache and locks when Redis is enabled,
// otherwise in-process ones.
func openCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (repository.Cache, lock.Locker, func(), error) {
	if cfg.Enabled {
		c, err := redis.NewCache(ctx, cfg, logger.With().Str("component", "redis").Logger())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return c, lock.NewRedisLocker(c.Client()), func() { _ = c.Close() }, nil
	}

	c := memory.NewCache(memory.WithCleanupInterval(time.Minute))
	logger.Info().Msg("using in-memory cache")
	return c, lock.NewMemoryLocker(), c.Stop, nil
}

// openArchive returns the S3 report archive when enabled.
func openArchive(ctx context.Context, cfg config.ArchiveConfig, logger zerolog.Logger) (storage.Archive, error) {
	if !cfg.Enabled {
		return storage.NoopArchive{}, nil
	}

	client, err := s3archive.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}
	logger.Info().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("report archive enabled")
	return s3archive.NewArchive(client, cfg.Bucket, logger), nil
}
