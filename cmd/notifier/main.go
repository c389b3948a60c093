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
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/infrastructure/kafka"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/infrastructure/postgres"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/notifier"
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
		logger.Info("Notifier metrics listening", "addr", cfg.Metrics.NotifierAddr)
		http.ListenAndServe(cfg.Metrics.NotifierAddr, mux)
	}()

	// Infrastructure (Postgres)
	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	notificationRepo := postgres.NewNotificationRepository(pgPool)
	if err := notificationRepo.Migrate(ctx); err != nil {
		logger.Error("failed to migrate notifications schema", "error", err)
		os.Exit(1)
	}

	// Service clients
	usersClient := clients.NewUsersClient(cfg.Services.UsersURL, 5*time.Second)
	mailerClient := clients.NewMailerClient(cfg.Services.MailerURL, 10*time.Second)

	// Kafka producer, shared by the dead-letter path
	producer := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
	defer producer.Close()

	dlq := notifier.NewDeadLetterHandler(producer, cfg.Kafka.DeadLetterTopic, logger)

	deps := notifier.Deps{
		Store:  notificationRepo,
		Mailer: mailerClient,
		Users:  usersClient,
		Logger: logger,
	}

	highConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.HighPriorityGroupID,
		[]string{event.TopicUserEvents, event.TopicOrderEvents})
	standardConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.StandardPriorityGroupID,
		[]string{event.TopicPromotionalEvents, cfg.Kafka.RecommendationTopic})

	promotionProcessor := notifier.NewPromotionProcessor(deps)

	highLane := notifier.NewLane("high", highConsumer, 5,
		map[string]notifier.Processor{
			event.TopicUserEvents:  notifier.NewUserUpdateProcessor(deps),
			event.TopicOrderEvents: notifier.NewOrderUpdateProcessor(deps),
		},
		dlq, "High Priority Event Processing Failed", logger)
	standardLane := notifier.NewLane("standard", standardConsumer, 2,
		map[string]notifier.Processor{
			event.TopicPromotionalEvents: promotionProcessor,
			cfg.Kafka.RecommendationTopic: notifier.NewRecommendationProcessor(
				deps, cfg.Recommendation.InlineEmail),
		},
		dlq, "Standard Priority Event Processing Failed", logger)

	manager := notifier.NewManager(highLane, standardLane, logger)
	defer manager.Close()

	// Scheduled jobs: promotional campaign and recommendation email sweep
	campaign := notifier.NewCampaignTrigger(usersClient, promotionProcessor, cfg.Campaign.BatchSize, logger)
	sweep := notifier.NewSweep(notificationRepo, usersClient, mailerClient,
		cfg.Sweep.BatchLimit, cfg.Sweep.Concurrency, logger)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Campaign.Schedule, func() { campaign.Tick(ctx) }); err != nil {
		logger.Error("failed to schedule campaign", "error", err)
		os.Exit(1)
	}
	if !cfg.Recommendation.InlineEmail {
		if _, err := scheduler.AddFunc(cfg.Sweep.Schedule, func() { sweep.Tick(ctx) }); err != nil {
			logger.Error("failed to schedule recommendation email sweep", "error", err)
			os.Exit(1)
		}
	}
	scheduler.Start()

	logger.Info("Notification pipeline started",
		"high_group", cfg.Kafka.HighPriorityGroupID,
		"standard_group", cfg.Kafka.StandardPriorityGroupID)

	manager.Run(ctx)

	logger.Info("Shutting down...")
	<-scheduler.Stop().Done()
	logger.Info("Notification pipeline exiting")
}
