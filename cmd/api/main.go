package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lingo-server/internal/config"
	"lingo-server/internal/database"
	"lingo-server/internal/handler"
	"lingo-server/internal/logger"
	"lingo-server/internal/repository"
	"lingo-server/internal/service"
)

func main() {
	// Optional in production, convenient in development.
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

	log.Info("Starting API server",
		zap.String("http_port", cfg.HTTPPort),
		zap.String("database", cfg.MaskedDSN()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.MigrationsDir, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	languageRepo := repository.NewPostgresLanguageRepository(db)
	wordRepo := repository.NewPostgresWordRepository(db, log)
	criteriaRepo := repository.NewPostgresCriteriaRepository(db, log)
	jobRepo := repository.NewPostgresJobRepository(db, log)
	storyRepo := repository.NewPostgresStoryRepository(db, log)

	selector := service.NewWordSelector(wordRepo, log)
	generationService := service.NewGenerationService(criteriaRepo, jobRepo, storyRepo, languageRepo, selector, log)
	generationHandler := handler.NewGenerationHandler(generationService, log)
	router := handler.NewRouter(generationHandler, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()
	log.Info("HTTP server started", zap.String("addr", srv.Addr))

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	log.Info("API server stopped")
}
