// Package dailysummary implements the cached DailySummary repository.
// The cache is recomputed wholesale by the rollup worker; Upsert replaces
// the whole row, which keeps redelivered events harmless.
package dailysummary

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mstepanov/fitcoach-backend/internal/adapter/postgres"
	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// Repo provides daily summary cache persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new daily summary repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Upsert writes the summary row for (user, day), replacing any existing one.
func (r *Repo) Upsert(ctx context.Context, s domain.DailySummary) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := r.sb.
		Insert("daily_summaries").
		Columns("user_id", "day", "total_calories", "total_protein",
			"total_carbs", "total_fat", "total_fiber", "log_count", "updated_at").
		Values(s.UserID, s.Date, s.TotalCalories, s.TotalProtein,
			s.TotalCarbs, s.TotalFat, s.TotalFiber, s.LogCount, sq.Expr("now()")).
		Suffix(`ON CONFLICT (user_id, day) DO UPDATE SET
			total_calories = EXCLUDED.total_calories,
			total_protein  = EXCLUDED.total_protein,
			total_carbs    = EXCLUDED.total_carbs,
			total_fat      = EXCLUDED.total_fat,
			total_fiber    = EXCLUDED.total_fiber,
			log_count      = EXCLUDED.log_count,
			updated_at     = now()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "daily_summary")
	}
	return nil
}

// Get returns the cached summary for (user, day).
// Returns domain.ErrNotFound when no rollup has been cached yet.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID, day string) (*domain.DailySummary, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.DailySummary
	err := q.QueryRow(ctx,
		`SELECT user_id, to_char(day, 'YYYY-MM-DD'), total_calories, total_protein,
		        total_carbs, total_fat, total_fiber, log_count
		 FROM daily_summaries WHERE user_id = $1 AND day = $2`,
		userID, day).
		Scan(&s.UserID, &s.Date, &s.TotalCalories, &s.TotalProtein,
			&s.TotalCarbs, &s.TotalFat, &s.TotalFiber, &s.LogCount)
	if err != nil {
		return nil, postgres.MapError(err, "daily_summary")
	}
	return &s, nil
}
