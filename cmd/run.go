package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/antony-akshay/stream-oracle/api"
	"github.com/antony-akshay/stream-oracle/config"
	"github.com/antony-akshay/stream-oracle/database"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"
	"github.com/antony-akshay/stream-oracle/domain/services"
	"github.com/antony-akshay/stream-oracle/infrastructure"
	"github.com/antony-akshay/stream-oracle/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the settlement engine
func Run(ctx context.Context) error {
	log.Info("Starting settlement engine...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	uowFactory := repository.NewUnitOfWorkFactory(db)

	eventPublisher, natsClient := buildEventPublisher(ctx, cfg)
	if natsClient != nil {
		defer natsClient.Close()
	}

	streamerService := services.NewStreamerService(uowFactory, eventPublisher)
	marketService := services.NewMarketService(uowFactory, eventPublisher)
	bettingService := services.NewBettingService(uowFactory, eventPublisher)
	settlementService := services.NewSettlementService(uowFactory, marketService)
	leaderboardService := services.NewLeaderboardService(uowFactory)

	server := api.NewServer(streamerService, marketService, bettingService, settlementService, leaderboardService)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Infof("HTTP server listening in %s mode", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	log.Info("Shutdown completed")
	return nil
}

// buildEventPublisher connects to NATS when configured. A missing or
// unreachable broker degrades to the no-op publisher rather than blocking
// startup, since event delivery is best-effort.
func buildEventPublisher(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, *infrastructure.NATSClient) {
	if cfg.NATSServers == "" {
		log.Info("NATS not configured, events disabled")
		return infrastructure.NewNoopEventPublisher(), nil
	}

	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		log.WithError(err).Warn("Failed to connect to NATS, events disabled")
		return infrastructure.NewNoopEventPublisher(), nil
	}

	publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := publisher.EnsureMarketEventStream(); err != nil {
		log.WithError(err).Warn("Failed to ensure event stream, events disabled")
		natsClient.Close()
		return infrastructure.NewNoopEventPublisher(), nil
	}

	return publisher, natsClient
}
