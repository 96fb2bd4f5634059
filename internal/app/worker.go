package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/mstepanov/fitcoach-backend/internal/adapter/events"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres/dailysummary"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres/nutritionlog"
	"github.com/mstepanov/fitcoach-backend/internal/adapter/postgres/user"
	"github.com/mstepanov/fitcoach-backend/internal/config"
	"github.com/mstepanov/fitcoach-backend/internal/service/summary"
	"github.com/mstepanov/fitcoach-backend/internal/worker/rollup"
)

// RunWorker starts the rollup worker: it consumes analysis.completed events
// from the bus and executes the daily rollup workflow for each. It blocks
// until ctx is cancelled.
func RunWorker(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting rollup worker",
		slog.String("version", BuildVersion()),
		slog.String("task_queue", cfg.Rollup.TaskQueue),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	nc, err := events.Connect(cfg.Events.NATSURL)
	if err != nil {
		return fmt.Errorf("connect to event bus: %w", err)
	}
	defer nc.Close()

	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Rollup.TemporalHostPort,
		Namespace: cfg.Rollup.Namespace,
	})
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer tc.Close()

	users := user.New(pool)
	logs := nutritionlog.New(pool)
	summaries := dailysummary.New(pool)
	tx := postgres.NewTxManager(pool)

	publisher := events.NewPublisher(nc, logger)
	summaryService := summary.NewService(logger, users, logs, summaries, tx)

	activities := rollup.NewActivities(logger, summaryService, logs, publisher, cfg.Nutrition.ConfidenceThreshold)

	w := worker.New(tc, cfg.Rollup.TaskQueue, worker.Options{})
	w.RegisterWorkflow(rollup.DailyRollupWorkflow)
	w.RegisterActivity(activities)

	if err := w.Start(); err != nil {
		return fmt.Errorf("start temporal worker: %w", err)
	}
	defer w.Stop()

	consumer := rollup.NewConsumer(logger, nc, tc, cfg.Rollup.TaskQueue)
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start event consumer: %w", err)
	}
	defer consumer.Stop() //nolint:errcheck

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
