package rollup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.temporal.io/sdk/client"

	"github.com/mstepanov/fitcoach-backend/internal/adapter/events"
	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// Consumer bridges the event bus to Temporal: each analysis.completed event
// starts one rollup workflow. The workflow ID is derived from the log ID, so
// a redelivered event joins the existing run instead of starting a second.
type Consumer struct {
	log       *slog.Logger
	nc        *nats.Conn
	temporal  client.Client
	taskQueue string
	sub       *nats.Subscription
}

// NewConsumer creates an event consumer feeding the rollup task queue.
func NewConsumer(logger *slog.Logger, nc *nats.Conn, tc client.Client, taskQueue string) *Consumer {
	return &Consumer{
		log:       logger.With("worker", "rollup-consumer"),
		nc:        nc,
		temporal:  tc,
		taskQueue: taskQueue,
	}
}

// Start subscribes to the analysis.completed subject. Delivery is
// at-least-once from the workflow's point of view: the ID-based dedup in
// Temporal absorbs duplicates.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.nc.Subscribe(events.SubjectAnalysisCompleted, func(msg *nats.Msg) {
		c.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.SubjectAnalysisCompleted, err)
	}
	c.sub = sub

	c.log.InfoContext(ctx, "rollup consumer started",
		slog.String("subject", events.SubjectAnalysisCompleted),
		slog.String("task_queue", c.taskQueue))
	return nil
}

// Stop drains the subscription.
func (c *Consumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Drain()
}

func (c *Consumer) handle(ctx context.Context, msg *nats.Msg) {
	var ev domain.AnalysisCompleted
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		c.log.ErrorContext(ctx, "malformed analysis.completed event",
			slog.Any("error", err))
		return
	}

	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(ev),
		TaskQueue: c.taskQueue,
	}

	_, err := c.temporal.ExecuteWorkflow(ctx, opts, DailyRollupWorkflow, ev)
	if err != nil {
		c.log.ErrorContext(ctx, "start rollup workflow failed",
			slog.String("log_id", ev.LogID.String()),
			slog.Any("error", err))
		return
	}

	c.log.DebugContext(ctx, "rollup workflow started",
		slog.String("workflow_id", opts.ID))
}

// WorkflowID derives a deterministic workflow ID from the event.
func WorkflowID(ev domain.AnalysisCompleted) string {
	return "daily-rollup-" + ev.LogID.String()
}
