package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/pocketbank/internal/adapter/http"
	"github.com/iho/pocketbank/internal/alert"
	"github.com/iho/pocketbank/internal/infrastructure/config"
	"github.com/iho/pocketbank/internal/infrastructure/logger"
	"github.com/iho/pocketbank/internal/infrastructure/metrics"
	"github.com/iho/pocketbank/internal/storage"
	"github.com/iho/pocketbank/internal/store"
	"github.com/iho/pocketbank/internal/syncclient"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	appMetrics := metrics.New()

	ctx := context.Background()

	// Open the synchronous durable tier
	sqlite, err := storage.OpenSQLiteTier(cfg.StatePath, cfg.SQLiteMaxValue)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StatePath).Msg("failed to open state file")
	}
	defer sqlite.Close()
	log.Info().Str("path", cfg.StatePath).Msg("state file opened")

	// Connect the asynchronous tier when configured. A failure here is
	// not fatal: the store degrades to sqlite + memory.
	var redisTier *storage.RedisTier
	if cfg.RedisURL != "" {
		redisClient, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without async tier")
		} else {
			defer redisClient.Close()
			redisTier = storage.NewRedisTier(redisClient, appLogger)
			log.Info().Msg("connected to redis")
		}
	}

	backend := storage.NewTiered(storage.Config{
		SQLite:     sqlite,
		Redis:      redisTier,
		QuotaBytes: cfg.StorageQuotaBytes,
		Logger:     appLogger,
		Metrics:    appMetrics,
	})

	// Build the state store
	st := store.New(store.Config{
		Backend:         backend,
		Alerts:          alert.NewLogSender(nil),
		Logger:          appLogger,
		Metrics:         appMetrics,
		NotifyDebounce:  cfg.NotifyDebounce,
		PersistDebounce: cfg.PersistDebounce,
	})

	// Start the sync mirror when configured
	var mirror *syncclient.Client
	if cfg.SyncURL != "" {
		mirror = syncclient.New(syncclient.Config{
			URL:      cfg.SyncURL,
			ClientID: cfg.SyncClientID,
			Target:   st,
			Cooldown: cfg.SyncCooldown,
			Logger:   appLogger,
			Metrics:  appMetrics,
		})
		mirror.Connect(ctx)

		// Mirror coalesced state changes; delivery is best-effort.
		unsubscribe := st.Subscribe(func() {
			mirror.PushUpdate(map[string]any{
				"balance":    st.Balance(),
				"lastSynced": st.LastSynced(),
			})
		})
		defer unsubscribe()
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		StateHandler: httpAdapter.NewStateHandler(st, backend),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if mirror != nil {
		mirror.Disconnect()
	}

	// Synchronous flush so in-flight debounced state survives exit.
	st.Flush()

	log.Info().Msg("server stopped")
}
