package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"lingo-server/internal/config"
	"lingo-server/internal/database"
	"lingo-server/internal/logger"
	"lingo-server/internal/repository"
	"lingo-server/internal/service"
	"lingo-server/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	log.Info("Starting generation worker",
		zap.Int("workers", cfg.WorkerCount),
		zap.String("ai_client", cfg.AIClientType),
		zap.String("ai_model", cfg.AIModel),
		zap.String("database", cfg.MaskedDSN()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.RabbitMQURL != "" {
		mqConn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		mqChannel, err := mqConn.Channel()
		if err != nil {
			log.Fatal("Failed to open RabbitMQ channel", zap.Error(err))
		}
		defer mqChannel.Close()

		notifier, err = service.NewRabbitMQNotifier(mqChannel, cfg.NotifyQueueName, log)
		if err != nil {
			log.Fatal("Failed to create notifier", zap.Error(err))
		}
	} else {
		log.Info("RabbitMQ URL not set, job notifications disabled")
	}

	aiClient, err := service.NewAIClient(cfg)
	if err != nil {
		log.Fatal("Failed to create AI client", zap.Error(err))
	}

	languageRepo := repository.NewPostgresLanguageRepository(db)
	wordRepo := repository.NewPostgresWordRepository(db, log)
	criteriaRepo := repository.NewPostgresCriteriaRepository(db, log)
	jobRepo := repository.NewPostgresJobRepository(db, log)
	storyRepo := repository.NewPostgresStoryRepository(db, log)

	txHelper := repository.NewTransactionHelper(db, log)
	selector := service.NewWordSelector(wordRepo, log)
	persister := service.NewStoryPersister(txHelper, storyRepo, wordRepo, log)

	orchestrator := worker.NewOrchestrator(cfg, jobRepo, criteriaRepo, languageRepo, selector, aiClient, persister, notifier, log)
	pool := worker.NewPool(cfg, orchestrator, jobRepo, log)

	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server listen error", zap.Error(err))
		}
	}()
	log.Info("Metrics server started", zap.String("addr", metricsSrv.Addr))

	pool.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown error", zap.Error(err))
	}
	log.Info("Generation worker stopped")
}
