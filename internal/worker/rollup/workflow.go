// Package rollup runs the post-analysis aggregation as a durable workflow:
// one run per persisted nutrition log, with each step retried independently.
package rollup

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// DailyRollupWorkflow reacts to one analysis.completed event. It recomputes
// the affected user's daily summary, then decides whether a low-confidence
// follow-up event is due. The steps share no state: a summary update that
// succeeded is not redone when the follow-up check fails and is retried.
func DailyRollupWorkflow(ctx workflow.Context, ev domain.AnalysisCompleted) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting daily rollup",
		"log_id", ev.LogID,
		"user_id", ev.UserID,
		"confidence", ev.ConfidenceScore)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var a *Activities

	if err := workflow.ExecuteActivity(ctx, a.UpdateDailySummary, ev).Get(ctx, nil); err != nil {
		return err
	}

	if err := workflow.ExecuteActivity(ctx, a.CheckInsightsTrigger, ev).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("daily rollup complete", "log_id", ev.LogID)
	return nil
}
