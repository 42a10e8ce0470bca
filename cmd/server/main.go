package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grassigrosso/lead-relay/internal/channel"
	"github.com/grassigrosso/lead-relay/internal/config"
	"github.com/grassigrosso/lead-relay/internal/guard"
	"github.com/grassigrosso/lead-relay/internal/handlers"
	"github.com/grassigrosso/lead-relay/internal/logger"
	"github.com/grassigrosso/lead-relay/internal/origin"
	"github.com/grassigrosso/lead-relay/internal/queue"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	ctx := context.Background()

	logger.Info(ctx, "Lead relay starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"queue_file", cfg.Queue.FilePath)

	// Report channel configuration at startup so a degraded deployment
	// is visible immediately.
	if cfg.TelegramConfigured() {
		logger.Info(ctx, "Telegram channel configured (primary)")
	} else {
		logger.Warn(ctx, "Telegram channel not configured (check BOT_TOKEN/CHAT_ID)")
	}
	if cfg.SMTPConfigured() {
		logger.Info(ctx, "SMTP channel configured (secondary)")
	} else {
		logger.Warn(ctx, "SMTP channel not configured (check SMTP_HOST/SMTP_USER/SMTP_PASS/MAIL_TO)")
	}

	// Build delivery channels and the dispatcher
	telegramChannel := channel.NewTelegramChannel(cfg.Telegram)
	emailChannel := channel.NewEmailChannel(cfg.SMTP)
	dispatcher := channel.NewDispatcher(telegramChannel, emailChannel)

	// Load the durable retry queue
	retryQueue := queue.New(cfg.Queue, dispatcher)
	if err := retryQueue.Load(ctx); err != nil {
		log.Fatalf("Failed to load retry queue: %v", err)
	}
	logger.Info(ctx, "Retry queue loaded", "queue_size", retryQueue.Size())

	// Submission guard and origin checker
	submissionGuard := guard.New(cfg.Guard)
	originChecker := origin.NewChecker(cfg.Origin.AllowedOrigins)

	// Start the background sweeper; guard state GC rides the same tick
	sweeper := queue.NewSweeper(retryQueue, cfg.Queue.SweepInterval)
	sweeper.OnTick = func(now time.Time) {
		if removed := submissionGuard.Cleanup(now); removed > 0 {
			logger.Debug(ctx, "Guard state cleaned up", "removed", removed)
		}
	}
	go sweeper.Start(ctx)

	// Set up HTTP routes
	router := handlers.NewRouter(handlers.RouterDeps{
		Submit:  handlers.NewSubmitHandler(submissionGuard, dispatcher, retryQueue),
		Health:  handlers.NewHealthHandler(dispatcher, retryQueue),
		Diag:    handlers.NewDiagHandler(cfg, telegramChannel, emailChannel),
		Checker: originChecker,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "address", addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)

	case sig := <-sigChan:
		logger.Info(ctx, "Received shutdown signal", "signal", sig.String())

		sweeper.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown error", "error", err.Error())
			server.Close()
		}

		logger.Info(ctx, "Server shutdown complete")
	}
}
