package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"chittrack/internal/amqp"
	"chittrack/internal/cli"
	"chittrack/internal/log"
	"chittrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("starting chittrack-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cache := cli.OpenCache(logger, cfg.SQLiteDBPath)
	defer cache.Close()

	remote, err := cli.BuildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize snapshot store", log.FieldError, err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(cache, remote, cfg.PushMaxAttempts, cfg.PushBaseDelay, logger)

	// Push whatever the cache holds before settling into steady state, in
	// case the previous run died with a dirty snapshot.
	if err := syncWorker.PushSnapshot(ctx); err != nil {
		logger.Warn("startup push failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeDirty(ctx, func(msg *amqp.SnapshotDirtyMessage) error {
				return syncWorker.HandleDirtyMessage(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled, relying on the periodic push only")
	}

	scheduler := cron.New()
	// Daily bookkeeping: flip pending payments past their settlement date.
	if _, err := scheduler.AddFunc("@daily", func() {
		if err := syncWorker.SweepOverdue(ctx, time.Now()); err != nil {
			logger.Error("overdue sweep failed", log.FieldError, err, log.FieldOperation, log.OpSweep)
		}
	}); err != nil {
		logger.Error("failed to schedule overdue sweep", log.FieldError, err)
		os.Exit(1)
	}
	// Safety net for lost dirty messages.
	if _, err := scheduler.AddFunc("@every 15m", func() {
		if err := syncWorker.PushSnapshot(ctx); err != nil {
			logger.Warn("periodic push failed", log.FieldError, err, log.FieldOperation, log.OpPush)
		}
	}); err != nil {
		logger.Error("failed to schedule periodic push", log.FieldError, err)
		os.Exit(1)
	}
	scheduler.Start()

	g.Go(func() error {
		<-ctx.Done()
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(30 * time.Second):
			logger.Warn("scheduler shutdown timeout reached")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}
