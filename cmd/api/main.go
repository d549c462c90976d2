package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/ads"
	"github.com/wiederlebendig/lead-attribution-service/internal/config"
	"github.com/wiederlebendig/lead-attribution-service/internal/handler"
	"github.com/wiederlebendig/lead-attribution-service/internal/logger"
	"github.com/wiederlebendig/lead-attribution-service/internal/mailer"
	"github.com/wiederlebendig/lead-attribution-service/internal/queue/sqs"
	"github.com/wiederlebendig/lead-attribution-service/internal/ratelimit"
	"github.com/wiederlebendig/lead-attribution-service/internal/repository/clickhouse"
	"github.com/wiederlebendig/lead-attribution-service/internal/repository/postgres"
	"github.com/wiederlebendig/lead-attribution-service/internal/service"
)

func init() {
	// Optional in deployed environments; config comes from real env vars there.
	_ = godotenv.Load()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	ctx := context.Background()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	// Initialize Postgres client
	pgClient, err := postgres.NewClient(&cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to create Postgres client", zap.Error(err))
	}

	// Initialize repositories
	eventRepo := clickhouse.NewRepository(clickhouseClient, log)
	leadRepo := postgres.NewLeadRepository(pgClient, log)
	spendRepo := postgres.NewSpendRepository(pgClient, log)

	// Rate limiter: shared Valkey counters when configured, else in-process.
	var limiter ratelimit.Limiter
	if cfg.Valkey.Host != "" {
		limiter = ratelimit.NewValkeyLimiter(cfg.Valkey.Host + ":" + cfg.Valkey.Port)
		log.Info("Using Valkey rate limiter", zap.String("host", cfg.Valkey.Host))
	} else {
		limiter = ratelimit.NewMemoryLimiter()
		log.Info("Using in-process rate limiter")
	}

	// Initialize services
	testHosts := strings.Split(cfg.Service.TestHosts, ",")
	eventService := service.NewEventService(sqsClient, eventRepo, testHosts, log)
	leadService := service.NewLeadService(leadRepo, eventService, testHosts, log)
	adsClient := ads.NewClient(ctx, cfg.GoogleAds, log)
	spendSync := service.NewSpendSyncService(adsClient, spendRepo, log)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, log)
	nurturer := service.NewNurtureService(leadRepo, smtpMailer, log)
	cronRunner := service.NewCronRunner(cfg.Service.BaseURL, cfg.Cron.Secret, log)

	// Initialize handler
	h := handler.NewHandler(eventService, leadService, spendSync, nurturer, cronRunner, limiter, cfg.Cron.Secret, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
