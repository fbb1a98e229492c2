package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chittrack/internal/amqp"
	"chittrack/internal/auth"
	"chittrack/internal/cli"
	apphttp "chittrack/internal/http"
	"chittrack/internal/insight"
	"chittrack/internal/log"
	"chittrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := cli.OpenCache(logger, cfg.SQLiteDBPath)
	defer cache.Close()

	remote, err := cli.BuildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize snapshot store", log.FieldError, err)
		os.Exit(1)
	}

	// AMQP is optional: without it, mutations still apply locally and the
	// worker's periodic push picks them up from the shared cache.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("AMQP disabled, no AMQP_URL provided")
	}

	svc := services.NewGroupService(cache, remote, publisher, cfg.SyncTimeout, logger)
	if err := svc.Bootstrap(ctx); err != nil {
		logger.Error("bootstrap failed", log.FieldError, err, log.FieldOperation, log.OpStartup)
		os.Exit(1)
	}
	defer svc.Close()

	var insights insight.Generator
	if cfg.GeminiAPIKey != "" {
		insights = insight.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		logger.Info("insight generator enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("insight generator disabled, serving static fallback")
	}

	jwt := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	srv := apphttp.NewServer(":"+cfg.Port, svc, jwt, insights, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting chittrack server",
		"port", cfg.Port,
		"backend", cfg.StoreBackend,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
