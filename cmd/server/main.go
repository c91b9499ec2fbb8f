package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"dukaan/backend/internal/cache"
	"dukaan/backend/internal/config"
	"dukaan/backend/internal/events"
	"dukaan/backend/internal/httpapi"
	"dukaan/backend/internal/logging"
	"dukaan/backend/internal/service"
	"dukaan/backend/internal/store"
	"dukaan/backend/internal/store/memory"
	pgstore "dukaan/backend/internal/store/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)
	if err := validateSecurityConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid security configuration")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg config.Config, root zerolog.Logger) error {
	logger := logging.Component(root, "server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 3)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn().Err(err).Msg("close error")
			}
		}
	}()

	var repo store.Repository
	if cfg.DatabaseURL != "" {
		if err := pgstore.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres unavailable and DATABASE_URL is set, refusing in-memory fallback: %w", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		logger.Info().Str("repository", "postgres").Msg("repository ready")
	} else {
		repo = memory.NewSeeded()
		logger.Info().Str("repository", "memory").Msg("repository ready")
	}

	opts := service.Options{
		ReceiptTTL:  cfg.ReceiptCacheTTL(),
		LockTTL:     cfg.SaleLockTTL(),
		Logger:      root,
		PhoneRegion: cfg.DefaultPhoneRegion,
	}

	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		receipts := cache.NewRedisReceiptCache(client)
		if err := receipts.Ping(ctx); err != nil {
			_ = client.Close()
			logger.Warn().Err(err).Msg("redis unavailable, using local lock and no receipt cache")
		} else {
			opts.ReceiptCache = receipts
			opts.Locker = cache.NewRedisLocker(client)
			closers = append(closers, receipts.Close)
			logger.Info().Str("addr", cfg.RedisAddr).Msg("cache: redis")
		}
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(brokers, cfg.KafkaStockTopic)
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		opts.Publisher = publisher
		closers = append(closers, publisher.Close)
		logger.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaStockTopic).Msg("stock events: kafka")
	}

	svc := service.New(repo, opts)

	if cfg.BootstrapAdminPassword != "" {
		created, err := svc.BootstrapAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info().Str("username", cfg.BootstrapAdminUsername).Msg("bootstrap admin created")
		}
	}

	auth := httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL(), svc)
	api := httpapi.New(svc, auth, httpapi.Options{AllowedOrigin: cfg.AllowedOrigin, Logger: root})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Address()).Msg("dukaan backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("shutdown error")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.BootstrapAdminPassword != "" && len(cfg.BootstrapAdminPassword) < 8 {
		return fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}
