package nutrition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// Result is the outcome of a processed photo.
type Result struct {
	Log *domain.NutritionLog
	// RequiresConfirmation is set when the model's confidence fell strictly
	// below the configured threshold. A score exactly at the threshold is
	// accepted without confirmation.
	RequiresConfirmation bool
}

// ProcessPhoto runs the full analysis pipeline for one meal photo: vision
// estimate, plausibility validation, persistence, event publishing. Nothing
// is persisted unless every model stage succeeded; a half-analyzed meal never
// reaches storage.
func (s *Service) ProcessPhoto(ctx context.Context, userID uuid.UUID, image []byte, imageRef *string) (*Result, error) {
	if len(image) == 0 {
		return nil, domain.NewValidationError("image", "required")
	}
	if s.visionCfg.MaxImageBytes > 0 && int64(len(image)) > s.visionCfg.MaxImageBytes {
		return nil, domain.NewValidationError("image",
			fmt.Sprintf("exceeds maximum size of %d bytes", s.visionCfg.MaxImageBytes))
	}

	started := time.Now()

	estimate, err := s.estimator.Estimate(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("nutrition.ProcessPhoto estimate: %w", err)
	}

	validation, err := s.validator.Validate(ctx, estimate)
	if err != nil {
		return nil, fmt.Errorf("nutrition.ProcessPhoto validate: %w", err)
	}

	record := buildLog(userID, estimate, validation, imageRef)

	created, err := s.logs.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("nutrition.ProcessPhoto persist: %w", err)
	}

	// The record is durable at this point. A publish failure is logged and
	// swallowed: the follow-up pipeline is best-effort relative to the log.
	ev := domain.AnalysisCompleted{
		LogID:           created.ID,
		UserID:          created.UserID,
		ConfidenceScore: created.ConfidenceScore,
	}
	if err := s.events.AnalysisCompleted(ev); err != nil {
		s.log.ErrorContext(ctx, "publish analysis.completed failed",
			slog.String("log_id", created.ID.String()),
			slog.Any("error", err))
	}

	requiresConfirmation := created.ConfidenceScore < s.threshold

	s.log.InfoContext(ctx, "photo processed",
		slog.String("user_id", userID.String()),
		slog.String("log_id", created.ID.String()),
		slog.Float64("confidence", created.ConfidenceScore),
		slog.Bool("requires_confirmation", requiresConfirmation),
		slog.Bool("adjusted", !validation.IsReasonable),
		slog.Duration("duration", time.Since(started)))

	return &Result{Log: created, RequiresConfirmation: requiresConfirmation}, nil
}

// GetLog fetches a single log owned by the user.
func (s *Service) GetLog(ctx context.Context, userID, logID uuid.UUID) (*domain.NutritionLog, error) {
	l, err := s.logs.GetByID(ctx, userID, logID)
	if err != nil {
		return nil, fmt.Errorf("nutrition.GetLog: %w", err)
	}
	return l, nil
}

// buildLog merges the estimate and the validation verdict into a log record.
// The validator's adjusted calorie figure always wins for the calorie total;
// macro totals come from the estimate, recomputed from the item list when the
// model-reported totals drifted from the items.
func buildLog(userID uuid.UUID, est domain.NutritionEstimate, val domain.ValidationResult, imageRef *string) *domain.NutritionLog {
	totals := est.Totals
	if !est.TotalsConsistent() {
		totals = est.SumItems()
	}

	return &domain.NutritionLog{
		ID:              uuid.New(),
		UserID:          userID,
		FoodItems:       est.FoodItems,
		TotalCalories:   val.AdjustedCalories,
		TotalProtein:    totals.Protein,
		TotalCarbs:      totals.Carbs,
		TotalFat:        totals.Fat,
		TotalFiber:      totals.Fiber,
		ConfidenceScore: est.ConfidenceScore,
		AnalysisNotes:   est.AnalysisNotes,
		ImageRef:        imageRef,
	}
}
