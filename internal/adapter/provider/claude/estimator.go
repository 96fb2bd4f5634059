package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

const estimatePrompt = `You are a nutrition analysis assistant. Analyze the food in this photo.

Identify every distinct food item you can see. For each item estimate the
portion and its nutrition. When unsure about portion size, prefer the LOWER
estimate — underestimating is better than overestimating.

Output ONLY a valid JSON object matching this exact schema:
{
  "food_items": [
    {
      "name": "<food name>",
      "quantity": "<portion description, e.g. '1 cup', '2 slices'>",
      "calories": <number>,
      "protein_g": <number>,
      "carbs_g": <number>,
      "fat_g": <number>,
      "fiber_g": <number>
    }
  ],
  "totals": {
    "calories": <number>,
    "protein_g": <number>,
    "carbs_g": <number>,
    "fat_g": <number>,
    "fiber_g": <number>
  },
  "confidence_score": <number between 0 and 1>,
  "analysis_notes": "<notes about ambiguity, hidden ingredients, or portion uncertainty>"
}

Rules:
- totals must be the sum of the per-item values
- confidence_score reflects how clearly you can identify items and portions
- mention anything ambiguous in analysis_notes
- Output ONLY the JSON, no markdown, no explanations`

// Estimate sends the photo to the vision model and returns the structured
// first-pass estimate. Transport failures map to ErrModelUnavailable (the
// SDK has already spent its retry budget); unparseable replies map to
// ErrInvalidModelOutput and must not be retried.
func (c *Client) Estimate(ctx context.Context, image []byte) (domain.NutritionEstimate, error) {
	if len(image) == 0 {
		return domain.NutritionEstimate{}, domain.NewValidationError("image", "must not be empty")
	}

	encoded := base64.StdEncoding.EncodeToString(image)

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxResponseTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64("image/jpeg", encoded),
				anthropic.NewTextBlock(estimatePrompt),
			),
		},
	})
	if err != nil {
		return domain.NutritionEstimate{}, fmt.Errorf("vision estimate: %w: %w", domain.ErrModelUnavailable, err)
	}

	text, err := firstText(msg)
	if err != nil {
		return domain.NutritionEstimate{}, fmt.Errorf("vision estimate: %w", err)
	}

	est, err := parseEstimate(text)
	if err != nil {
		return domain.NutritionEstimate{}, fmt.Errorf("vision estimate: %w", err)
	}

	c.log.InfoContext(ctx, "estimate completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("image_bytes", len(image)),
		slog.Int("food_items", len(est.FoodItems)),
		slog.Float64("confidence", est.ConfidenceScore),
	)

	return est, nil
}
