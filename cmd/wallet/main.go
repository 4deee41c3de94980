package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/benx421/lzar-wallet/internal/auth"
	"github.com/benx421/lzar-wallet/internal/config"
	"github.com/benx421/lzar-wallet/internal/db"
	"github.com/benx421/lzar-wallet/internal/events"
	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/handlers"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/benx421/lzar-wallet/internal/service"
	"github.com/benx421/lzar-wallet/internal/worker"
)

func main() {
	configPath := kingpin.Flag("config", "Path to the application config file").Short('c').Default("").String()
	kingpin.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting lzar wallet api",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	var guard service.DeliveryGuard
	if cfg.Redis.Addr != "" {
		client, err := repository.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		guard = repository.NewDeliveryGuard(client, cfg.Redis.DedupTTL)
	}

	var (
		publisher    events.Publisher
		kafkaMetrics http.Handler
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewKafkaPublisher(&cfg.Kafka, logger)
		if err != nil {
			logger.Error("failed to create event publisher", "error", err)
			os.Exit(1)
		}
		defer producer.Close(context.Background())
		publisher = producer
		kafkaMetrics = producer.MetricsHandler()
	}

	gw := gateway.WithFaults(gateway.NewClient(&cfg.Gateway, logger), &cfg.Gateway, logger)
	store := repository.NewStore(database)

	ledger := service.NewLedgerService(store, gw, publisher, guard, service.LedgerConfig{
		WebhookSecret:  cfg.Webhook.Secret,
		GatewayTimeout: cfg.Gateway.Timeout,
		ChargeTTL:      cfg.Charges.TTL,
	}, logger)
	queries := service.NewQueryService(store, gw, logger)

	h := handlers.NewHandler(handlers.Services{
		Transfers:    ledger,
		Mints:        ledger,
		Redemptions:  ledger,
		Charges:      ledger,
		Webhooks:     ledger,
		Wallets:      queries,
		Transactions: queries,
		QR:           queries,
		Health:       database,
	}, logger)

	router, err := handlers.NewRouter(h, handlers.RouterConfig{
		Verifier:     auth.NewJWTVerifier(cfg.Auth.JWTSecret),
		Idempotency:  repository.NewIdempotencyRepository(database),
		KafkaMetrics: kafkaMetrics,
	}, logger)
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	sweeper := worker.NewExpirySweeper(ledger, cfg.Charges.SweepInterval, logger)
	sweeper.Start(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	sweeper.Stop()

	logger.Info("server stopped")
}
