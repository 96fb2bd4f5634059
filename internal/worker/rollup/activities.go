package rollup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// summaryComputer recomputes a user's daily summary for a given instant.
type summaryComputer interface {
	ComputeForTime(ctx context.Context, userID uuid.UUID, at time.Time) (*domain.DailySummary, error)
}

// logReader fetches the log record behind an event.
type logReader interface {
	GetByID(ctx context.Context, userID, logID uuid.UUID) (*domain.NutritionLog, error)
}

// eventPublisher emits the low-confidence follow-up event.
type eventPublisher interface {
	LowConfidence(ev domain.LowConfidence) error
}

// Activities holds the workflow's side-effecting steps.
type Activities struct {
	log       *slog.Logger
	summaries summaryComputer
	logs      logReader
	events    eventPublisher
	threshold float64
}

// NewActivities creates the rollup activity set.
func NewActivities(
	logger *slog.Logger,
	summaries summaryComputer,
	logs logReader,
	events eventPublisher,
	threshold float64,
) *Activities {
	return &Activities{
		log:       logger.With("worker", "rollup"),
		summaries: summaries,
		logs:      logs,
		events:    events,
		threshold: threshold,
	}
}

// UpdateDailySummary recomputes the daily summary for the local day the log
// record belongs to. The recompute reads every log of that day from scratch,
// so redelivery of the same event cannot double-count.
func (a *Activities) UpdateDailySummary(ctx context.Context, ev domain.AnalysisCompleted) error {
	record, err := a.logs.GetByID(ctx, ev.UserID, ev.LogID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The log is gone; retrying will not bring it back.
			return temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("log %s not found", ev.LogID), "LogNotFound", err)
		}
		return fmt.Errorf("rollup fetch log: %w", err)
	}

	sum, err := a.summaries.ComputeForTime(ctx, ev.UserID, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("rollup compute summary: %w", err)
	}

	a.log.InfoContext(ctx, "daily summary updated",
		slog.String("user_id", ev.UserID.String()),
		slog.String("day", sum.Date),
		slog.Int("log_count", sum.LogCount))

	return nil
}

// CheckInsightsTrigger emits the low-confidence follow-up event when the
// record's confidence fell strictly below the threshold. A score exactly at
// the threshold does not trigger it.
func (a *Activities) CheckInsightsTrigger(ctx context.Context, ev domain.AnalysisCompleted) error {
	if ev.ConfidenceScore >= a.threshold {
		return nil
	}

	follow := domain.LowConfidence{
		LogID:           ev.LogID,
		UserID:          ev.UserID,
		ConfidenceScore: ev.ConfidenceScore,
	}
	if err := a.events.LowConfidence(follow); err != nil {
		return fmt.Errorf("rollup publish low-confidence: %w", err)
	}

	a.log.InfoContext(ctx, "low-confidence follow-up emitted",
		slog.String("log_id", ev.LogID.String()),
		slog.Float64("confidence", ev.ConfidenceScore))

	return nil
}
