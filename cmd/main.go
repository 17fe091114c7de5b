package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/curious-broccoli/ufo-hackathon/config"
	"github.com/curious-broccoli/ufo-hackathon/dataset"
	"github.com/curious-broccoli/ufo-hackathon/db"
	"github.com/curious-broccoli/ufo-hackathon/handlers"
	"github.com/curious-broccoli/ufo-hackathon/repositories"
	api "github.com/curious-broccoli/ufo-hackathon/routes"
	"github.com/curious-broccoli/ufo-hackathon/scoring"
	"github.com/curious-broccoli/ufo-hackathon/services"
	"github.com/curious-broccoli/ufo-hackathon/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Error("failed to migrate database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// The evaluation data is loaded once; a failure here is fatal since the
	// process cannot score anything without it.
	var ds *dataset.Dataset
	if cfg.UseObjectStorage() {
		store, err := storage.NewCloudflareR2Store(storage.CloudflareR2StoreConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			Prefix:          cfg.R2Prefix,
		})
		if err != nil {
			logger.Error("failed to initialize R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		loadCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		ds, err = dataset.LoadFromStore(loadCtx, store)
		cancel()
		if err != nil {
			logger.Error("failed to load dataset from object storage", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		ds, err = dataset.Load(cfg.DataDir)
		if err != nil {
			logger.Error("failed to load dataset", slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("dataset loaded",
		slog.Int("categories", ds.CategoryCount()),
		slog.Int("labels", ds.LabelCount()))

	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	logger.Info("repositories initialized")

	engine := scoring.NewEngine(ds, scoring.WithRequireComplete(cfg.RequireCompletePredictions))
	submissionService := services.NewSubmissionService(groupRepo, submissionRepo, engine, cfg.MaxSubmissionsPerGroup)
	leaderboardService := services.NewLeaderboardService(submissionRepo, cfg.LeaderboardMaxResults)
	logger.Info("services initialized")

	submissionHandler := handlers.NewSubmissionHandler(submissionService, leaderboardService)

	router := chi.NewRouter()
	api.SetupRoutes(router, submissionHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
