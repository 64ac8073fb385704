package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ideabox/internal/ai"
	"ideabox/internal/config"
	"ideabox/internal/database"
	"ideabox/internal/gmail"
	"ideabox/internal/handlers"
	"ideabox/internal/metrics"
	"ideabox/internal/repository"
	"ideabox/internal/scheduler"
	"ideabox/internal/server"
	mailsync "ideabox/internal/sync"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting IdeaBox Email Intelligence Service")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()
	repo := repository.New(db)
	provider := gmail.NewProvider(cfg.Google)

	var analyzer mailsync.Analyzer
	if cfg.OpenAI.APIKey != "" {
		client, err := ai.NewClient(ai.ClientConfig{
			APIKey:         cfg.OpenAI.APIKey,
			Model:          cfg.OpenAI.Model,
			MaxTokens:      cfg.OpenAI.MaxTokens,
			Temperature:    float32(cfg.OpenAI.Temperature),
			RequestTimeout: cfg.OpenAI.RequestTimeout,
			Retry: ai.RetryPolicy{
				MaxAttempts: cfg.OpenAI.MaxRetries,
				BaseDelay:   cfg.OpenAI.RetryBaseDelay,
				MaxDelay:    cfg.OpenAI.RetryMaxDelay,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create AI client: %w", err)
		}
		analyzer = ai.NewAnalyzer(client, m)
		logrus.Infof("AI analysis enabled with model %s", cfg.OpenAI.Model)
	} else {
		logrus.Info("AI analysis disabled: no OpenAI API key configured")
	}

	orchestrator := mailsync.New(provider, repo, analyzer, cfg.Sync.MaxBodyChars)
	syncOpts := mailsync.Options{
		MaxResults:    cfg.Sync.MaxResults,
		Query:         cfg.Sync.Query,
		Analyze:       cfg.Sync.AnalyzeAfterSync && analyzer != nil,
		AnalysisLimit: cfg.Sync.AnalysisBatchSize,
	}

	sched := scheduler.NewScheduler(&cfg.Scheduler, orchestrator, syncOpts, m)

	h := handlers.NewHandlers(db, repo, orchestrator, syncOpts, sched, m)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
