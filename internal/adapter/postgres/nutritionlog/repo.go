// Package nutritionlog implements the NutritionLog repository using
// PostgreSQL. Rows are append-only: the pipeline inserts once per analyzed
// photo and the rollup reads day windows; nothing mutates a stored log.
package nutritionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mstepanov/fitcoach-backend/internal/adapter/postgres"
	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// Repo provides nutrition log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new nutrition log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const logColumns = `id, user_id, food_items, total_calories, total_protein,
total_carbs, total_fat, total_fiber, confidence_score, analysis_notes,
image_ref, created_at`

// Create inserts a nutrition log and returns the persisted record with the
// server-side created_at timestamp.
func (r *Repo) Create(ctx context.Context, l *domain.NutritionLog) (*domain.NutritionLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	items, err := json.Marshal(l.FoodItems)
	if err != nil {
		return nil, fmt.Errorf("marshal food items: %w", err)
	}

	row := q.QueryRow(ctx,
		`INSERT INTO nutrition_logs (id, user_id, food_items, total_calories,
		    total_protein, total_carbs, total_fat, total_fiber,
		    confidence_score, analysis_notes, image_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		 RETURNING `+logColumns,
		l.ID, l.UserID, items, l.TotalCalories, l.TotalProtein, l.TotalCarbs,
		l.TotalFat, l.TotalFiber, l.ConfidenceScore, l.AnalysisNotes, l.ImageRef)

	created, err := scanLog(row)
	if err != nil {
		return nil, postgres.MapError(err, "nutrition_log")
	}
	return created, nil
}

// GetByID returns one log filtered by user_id.
// Returns domain.ErrNotFound if the log does not exist or belongs to another user.
func (r *Repo) GetByID(ctx context.Context, userID, logID uuid.UUID) (*domain.NutritionLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx,
		`SELECT `+logColumns+` FROM nutrition_logs WHERE id = $1 AND user_id = $2`,
		logID, userID)

	l, err := scanLog(row)
	if err != nil {
		return nil, postgres.MapError(err, "nutrition_log")
	}
	return l, nil
}

// ListByCreatedRange returns a user's logs with created_at in [from, to),
// oldest first. An empty window yields an empty slice, not an error.
func (r *Repo) ListByCreatedRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.NutritionLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := r.sb.
		Select("id", "user_id", "food_items", "total_calories", "total_protein",
			"total_carbs", "total_fat", "total_fiber", "confidence_score",
			"analysis_notes", "image_ref", "created_at").
		From("nutrition_logs").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"created_at": from}).
		Where(sq.Lt{"created_at": to}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build range query: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list nutrition_logs: %w", err)
	}
	defer rows.Close()

	logs, err := scanLogs(rows)
	if err != nil {
		return nil, fmt.Errorf("list nutrition_logs: %w", err)
	}
	return logs, nil
}

// CountByUser returns the number of logs for a user.
func (r *Repo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var n int
	err := q.QueryRow(ctx,
		`SELECT count(*) FROM nutrition_logs WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count nutrition_logs: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (*domain.NutritionLog, error) {
	var (
		l     domain.NutritionLog
		items []byte
	)
	err := row.Scan(&l.ID, &l.UserID, &items, &l.TotalCalories, &l.TotalProtein,
		&l.TotalCarbs, &l.TotalFat, &l.TotalFiber, &l.ConfidenceScore,
		&l.AnalysisNotes, &l.ImageRef, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &l.FoodItems); err != nil {
		return nil, fmt.Errorf("unmarshal food items: %w", err)
	}
	return &l, nil
}

func scanLogs(rows pgx.Rows) ([]domain.NutritionLog, error) {
	logs := []domain.NutritionLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}
