// Package nutrition implements the photo analysis pipeline: the vision
// estimate, the plausibility check, persistence and event publishing.
package nutrition

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mstepanov/fitcoach-backend/internal/config"
	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// estimator produces a structured first-pass nutrition guess from a photo.
type estimator interface {
	Estimate(ctx context.Context, image []byte) (domain.NutritionEstimate, error)
}

// validator critiques an estimate for plausibility.
type validator interface {
	Validate(ctx context.Context, est domain.NutritionEstimate) (domain.ValidationResult, error)
}

// logRepo defines the nutrition log repository interface needed by the pipeline.
type logRepo interface {
	Create(ctx context.Context, l *domain.NutritionLog) (*domain.NutritionLog, error)
	GetByID(ctx context.Context, userID, logID uuid.UUID) (*domain.NutritionLog, error)
}

// eventPublisher emits domain events after a log is persisted.
type eventPublisher interface {
	AnalysisCompleted(ev domain.AnalysisCompleted) error
}

// Service runs the two-stage photo analysis pipeline.
type Service struct {
	log       *slog.Logger
	estimator estimator
	validator validator
	logs      logRepo
	events    eventPublisher
	visionCfg config.VisionConfig
	threshold float64
}

// NewService creates a new nutrition pipeline service.
func NewService(
	logger *slog.Logger,
	est estimator,
	val validator,
	logs logRepo,
	events eventPublisher,
	visionCfg config.VisionConfig,
	nutritionCfg config.NutritionConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "nutrition"),
		estimator: est,
		validator: val,
		logs:      logs,
		events:    events,
		visionCfg: visionCfg,
		threshold: nutritionCfg.ConfidenceThreshold,
	}
}
