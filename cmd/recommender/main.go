package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/application/factories/infrastructure"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/clients"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/config"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/infrastructure/kafka"
	redisInfra "github.com/Rushhaabhhh/Microservices-Backend-System/internal/infrastructure/redis"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/recommender"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("Failed to load config, using defaults", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Metrics Server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("Recommender metrics listening", "addr", cfg.Metrics.RecommenderAddr)
		http.ListenAndServe(cfg.Metrics.RecommenderAddr, mux)
	}()

	// Infrastructure (Redis)
	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	historyStore := redisInfra.NewHistoryStore(redisClient)

	// Service clients
	catalogClient := clients.NewCatalogClient(cfg.Services.ProductsURL, 5*time.Second)
	ordersClient := clients.NewOrdersClient(cfg.Services.OrdersURL, 10*time.Second)

	producer := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
	defer producer.Close()

	engine := recommender.NewEngine(historyStore, catalogClient, producer,
		cfg.Kafka.RecommendationTopic, cfg.Recommendation.DefaultCategory, logger)
	ingestor := recommender.NewIngestor(ordersClient, catalogClient, historyStore, engine, logger)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Recommendation.Schedule, func() { ingestor.Tick(ctx) }); err != nil {
		logger.Error("failed to schedule ingestion", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	logger.Info("Recommendation engine started",
		"schedule", cfg.Recommendation.Schedule,
		"topic", cfg.Kafka.RecommendationTopic)

	<-ctx.Done()
	logger.Info("Shutting down...")
	<-scheduler.Stop().Done()
	logger.Info("Recommendation engine exiting")
}
