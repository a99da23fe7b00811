package main

import (
	"context"
	"errors"
	"fmt"
	logByDefault "log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/feedbackbot/feedback-bot-server/internal/config"
	"github.com/feedbackbot/feedback-bot-server/internal/httpclient"
	log "github.com/feedbackbot/feedback-bot-server/internal/log"
	"github.com/feedbackbot/feedback-bot-server/internal/metrics"
	"github.com/feedbackbot/feedback-bot-server/internal/relay"
	"github.com/feedbackbot/feedback-bot-server/internal/server"
	storage "github.com/feedbackbot/feedback-bot-server/internal/storage"
	"github.com/feedbackbot/feedback-bot-server/internal/telegram"

	"github.com/joho/godotenv"

	// This controls the maxprocs environment variable in container runtimes.
	// see https://martin.baillie.id/wrote/gotchas-in-the-go-network-packages-defaults/#bonus-gomaxprocs-containers-and-the-cfs
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// Set the local timezone to UTC
	time.Local = time.UTC

	// Local development convenience, a missing .env file is fine
	_ = godotenv.Load()

	// Initialize the configuration
	config, err := config.MustLoadConfig()
	if err != nil {
		logByDefault.Fatalf("Config load error: %v", err)
	}

	// Logger configuration
	logger := log.New(
		log.WithLevel(config.Verbose),
		log.WithSource(),
	)

	if err := run(config, logger); err != nil {
		logger.ErrorContext(context.Background(), "an error occurred", slog.String("error", err.Error()))
		os.Exit(1)
	}

	os.Exit(0)
}

func run(config *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	_, err := maxprocs.Set(maxprocs.Logger(func(s string, i ...interface{}) {
		logger.DebugContext(ctx, fmt.Sprintf(s, i...))
	}))
	if err != nil {
		return fmt.Errorf("setting max procs: %w", err)
	}

	// Setup metrics
	var meter metrics.Metrics
	if config.Metrics.Enabled {
		meter = metrics.NewMetricsImpl(
			config.Metrics.URL,
			config.Metrics.Token,
			config.Metrics.Org,
			config.Metrics.Bucket,
			map[string]string{"environment": config.Environment},
		)
	} else {
		meter = metrics.NewMetricsFake()
	}
	defer meter.Close()

	// Create a http client
	httpClient, err := httpclient.NewHTTPClient(&config.Proxy)
	if err != nil {
		return fmt.Errorf("http client setup error: %w", err)
	}

	// Setup the Telegram bot and the gateway around it
	bot, err := telegram.NewBot(httpClient, config, logger)
	if err != nil {
		return fmt.Errorf("telegram bot setup error: %w", err)
	}

	gateway := telegram.NewGateway(bot)

	// Setup database connection
	db, err := storage.New(config, gateway, logger)
	if err != nil {
		return fmt.Errorf("database connection error: %w", err)
	}
	defer db.Close()

	// Routing service
	router := relay.New(db, meter, logger, config.AdminToken)

	// Wire the bot handlers to the routing service
	tg, err := telegram.New(bot, router, config, logger)
	if err != nil {
		return fmt.Errorf("telegram handlers setup error: %w", err)
	}

	// Setup API server
	srv := server.New(config, db, logger)
	srv.AddHealthCheck(func() (bool, map[string]string) {
		ok := true
		status := make(map[string]string)

		dbStatus, err := db.Status()
		if err != nil {
			ok = false
		}
		status["database"] = dbStatus

		apiStatus, _ := srv.Status()
		status["api"] = apiStatus

		return ok, status
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "api server error", slog.String("error", err.Error()))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		logger.InfoContext(ctx, "Shutting down")

		const shutdownTimeout = 10 * time.Second
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(ctx, "api server shutdown error", slog.String("error", err.Error()))
		}

		tg.Stop()
	}()

	logger.InfoContext(ctx, "Server started", slog.String("host", config.API.Host), slog.Int("port", config.API.Port))

	tg.Start()

	return nil
}
