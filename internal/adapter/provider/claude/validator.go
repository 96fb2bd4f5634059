package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

const validatePromptFmt = `You are a nutrition fact-checker. A vision model produced this estimate for a meal photo:

%s

Judge whether the calorie total is plausible for the described items and
portions. Single-model portion judgment is often off; correct gross errors.

Output ONLY a valid JSON object matching this exact schema:
{
  "is_reasonable": <true|false>,
  "adjusted_calories": <number: the original total if reasonable, otherwise your corrected total>,
  "reasoning": "<one or two sentences explaining your judgment>"
}

Rules:
- adjust calories ONLY; do not restate or change the macro breakdown
- when the original total is plausible, return it unchanged
- Output ONLY the JSON, no markdown, no explanations`

// estimateForPrompt is the subset of the estimate the validator is seeded
// with, serialized as JSON inside the prompt.
type estimateForPrompt struct {
	FoodItems       []domain.FoodItem      `json:"food_items"`
	Totals          domain.NutritionTotals `json:"totals"`
	ConfidenceScore float64                `json:"confidence_score"`
	AnalysisNotes   string                 `json:"analysis_notes,omitempty"`
}

// Validate runs the second, text-only critique pass over an estimate. It
// returns an adjusted calorie total and a rationale; the estimate itself is
// never mutated. Failure taxonomy matches Estimate.
func (c *Client) Validate(ctx context.Context, est domain.NutritionEstimate) (domain.ValidationResult, error) {
	seed, err := json.MarshalIndent(estimateForPrompt{
		FoodItems:       est.FoodItems,
		Totals:          est.Totals,
		ConfidenceScore: est.ConfidenceScore,
		AnalysisNotes:   est.AnalysisNotes,
	}, "", "  ")
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("marshal estimate: %w", err)
	}

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxResponseTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(fmt.Sprintf(validatePromptFmt, seed)),
			),
		},
	})
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate estimate: %w: %w", domain.ErrModelUnavailable, err)
	}

	text, err := firstText(msg)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate estimate: %w", err)
	}

	res, err := parseValidation(text)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validate estimate: %w", err)
	}

	c.log.InfoContext(ctx, "validation completed",
		slog.Duration("duration", time.Since(start)),
		slog.Bool("is_reasonable", res.IsReasonable),
		slog.Float64("adjusted_calories", res.AdjustedCalories),
	)

	return res, nil
}
