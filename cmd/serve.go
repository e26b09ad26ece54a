package main

import (
	"IDMS/cache"
	"IDMS/config"
	"IDMS/database"
	"IDMS/metrics"
	"IDMS/routes"
	"IDMS/services"
	"IDMS/utils"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

// newCache returns the Redis cache when REDIS_URL is set, otherwise an in-process one.
func newCache(ctx context.Context, cfg *config.AppConfig) (cache.Cache, func(), error) {
	if cfg.RedisConfig.URL == "" {
		log.Warn().Msg("REDIS_URL not set, using in-process cache; locks are not shared between instances")
		return cache.NewMemoryCache(time.Minute), func() {}, nil
	}

	client, err := database.NewRedisClient(ctx, cfg.RedisConfig)
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.NewRedisCache(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	go database.MonitorRedisPool(monitorCtx, client, time.Minute)

	return store, func() {
		stopMonitor()
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}, nil
}

// newNotifiers builds the alert channels enabled in the configuration.
func newNotifiers(cfg *config.AppConfig) ([]services.Notifier, func(), error) {
	var (
		notifiers []services.Notifier
		closers   []func()
	)

	if cfg.EmailAlertsEnabled() {
		email, err := utils.NewEmailAlerter(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.AlertRecipients)
		if err != nil {
			return nil, nil, err
		}
		notifiers = append(notifiers, email)
		log.Info().Strs("recipients", cfg.AlertRecipients).Msg("email alerts enabled")
	}

	if cfg.StreamAlertsEnabled() {
		stream := utils.NewStreamAlerter(cfg.KafkaBrokers, cfg.KafkaTopic)
		notifiers = append(notifiers, stream)
		closers = append(closers, func() {
			if err := stream.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close alert stream")
			}
		})
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("stream alerts enabled")
	}

	return notifiers, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func runServer(ctx context.Context, cfg *config.AppConfig) error {
	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	store, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	notifiers, closeNotifiers, err := newNotifiers(cfg)
	if err != nil {
		return err
	}
	defer closeNotifiers()

	handler, err := routes.SetupRoutes(store, cfg, db, metrics.New(), notifiers...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	serverErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Info().Msg("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	wg.Wait()
	log.Info().Msg("server exited gracefully")
	return nil
}
