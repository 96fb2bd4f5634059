// Package summary computes per-user daily nutrition totals. A summary is
// derived data: it is always recomputed from scratch over the day's log
// records, never incremented, so reprocessing the same day is idempotent.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// userRepo resolves the user's timezone for day boundary computation.
type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// logRepo reads log records for a time range.
type logRepo interface {
	ListByCreatedRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error)
}

// summaryRepo persists the cached daily summary rows.
type summaryRepo interface {
	Upsert(ctx context.Context, s domain.DailySummary) error
	Get(ctx context.Context, userID uuid.UUID, day string) (*domain.DailySummary, error)
}

// txManager runs the scan and the upsert against one snapshot.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service recomputes and serves daily summaries.
type Service struct {
	log       *slog.Logger
	users     userRepo
	logs      logRepo
	summaries summaryRepo
	tx        txManager
}

// NewService creates a new summary service instance.
func NewService(logger *slog.Logger, users userRepo, logs logRepo, summaries summaryRepo, tx txManager) *Service {
	return &Service{
		log:       logger.With("service", "summary"),
		users:     users,
		logs:      logs,
		summaries: summaries,
		tx:        tx,
	}
}

// ComputeForTime recomputes the daily summary for the local day containing
// the given instant. The day boundary is midnight to midnight in the user's
// timezone; a log at 23:59:59.999 local belongs to that day, one at exactly
// 00:00:00.000 belongs to the next. The result replaces any cached row.
func (s *Service) ComputeForTime(ctx context.Context, userID uuid.UUID, at time.Time) (*domain.DailySummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summary.Compute get user: %w", err)
	}

	loc := user.Location()
	from := DayStart(at, loc)
	to := NextDayStart(at, loc)
	day := at.In(loc).Format("2006-01-02")

	sum := domain.DailySummary{UserID: userID, Date: day}

	// Scan and upsert inside one transaction so the stored row reflects a
	// single consistent snapshot of the day's logs.
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		logs, err := s.logs.ListByCreatedRange(txCtx, userID, from, to)
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}

		for _, l := range logs {
			sum.Add(l)
		}

		if err := s.summaries.Upsert(txCtx, sum); err != nil {
			return fmt.Errorf("upsert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("summary.Compute: %w", err)
	}

	s.log.InfoContext(ctx, "daily summary recomputed",
		slog.String("user_id", userID.String()),
		slog.String("day", day),
		slog.Int("log_count", sum.LogCount))

	return &sum, nil
}

// GetForDay returns the summary for a YYYY-MM-DD day in the user's timezone.
// Closed days are served from the cached row when one exists; the current or
// a future day is always recomputed from the log records, so a read right
// after logging a meal is accurate even before the rollup worker has run.
// A day with no logs yields an all-zero summary.
func (s *Service) GetForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailySummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summary.GetForDay get user: %w", err)
	}

	loc := user.Location()
	dayStart, err := ParseDay(day, loc)
	if err != nil {
		return nil, domain.NewValidationError("date", "must be YYYY-MM-DD")
	}

	if NextDayStart(dayStart, loc).Before(time.Now()) {
		cached, err := s.summaries.Get(ctx, userID, day)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("summary.GetForDay cached: %w", err)
		}
	}

	return s.ComputeForTime(ctx, userID, dayStart)
}

// ListLogsForDay returns the day's log records, oldest first.
func (s *Service) ListLogsForDay(ctx context.Context, userID uuid.UUID, day string) ([]domain.NutritionLog, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summary.ListLogsForDay get user: %w", err)
	}

	loc := user.Location()
	dayStart, err := ParseDay(day, loc)
	if err != nil {
		return nil, domain.NewValidationError("date", "must be YYYY-MM-DD")
	}

	logs, err := s.logs.ListByCreatedRange(ctx, userID, DayStart(dayStart, loc), NextDayStart(dayStart, loc))
	if err != nil {
		return nil, fmt.Errorf("summary.ListLogsForDay list: %w", err)
	}
	return logs, nil
}
