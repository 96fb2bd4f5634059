package claude

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
)

// Wire shapes for model replies. Required fields are pointers so a missing
// key is distinguishable from a zero value.
type estimateResponse struct {
	FoodItems       []foodItemResponse `json:"food_items"`
	Totals          *totalsResponse    `json:"totals"`
	ConfidenceScore *float64           `json:"confidence_score"`
	AnalysisNotes   string             `json:"analysis_notes"`
}

type foodItemResponse struct {
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories"`
	Protein  float64  `json:"protein_g"`
	Carbs    float64  `json:"carbs_g"`
	Fat      float64  `json:"fat_g"`
	Fiber    float64  `json:"fiber_g"`
}

type totalsResponse struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
	Fiber    float64 `json:"fiber_g"`
}

type validationResponse struct {
	IsReasonable     *bool    `json:"is_reasonable"`
	AdjustedCalories *float64 `json:"adjusted_calories"`
	Reasoning        string   `json:"reasoning"`
}

// parseEstimate turns raw model text into a NutritionEstimate, enforcing the
// schema. Every failure wraps domain.ErrInvalidModelOutput.
func parseEstimate(text string) (domain.NutritionEstimate, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return domain.NutritionEstimate{}, err
	}

	var resp estimateResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return domain.NutritionEstimate{}, fmt.Errorf("unmarshal estimate: %w", domain.ErrInvalidModelOutput)
	}

	if len(resp.FoodItems) == 0 {
		return domain.NutritionEstimate{}, fmt.Errorf("no food items in response: %w", domain.ErrInvalidModelOutput)
	}
	if resp.Totals == nil {
		return domain.NutritionEstimate{}, fmt.Errorf("missing totals: %w", domain.ErrInvalidModelOutput)
	}
	if resp.ConfidenceScore == nil {
		return domain.NutritionEstimate{}, fmt.Errorf("missing confidence_score: %w", domain.ErrInvalidModelOutput)
	}
	if *resp.ConfidenceScore < 0 || *resp.ConfidenceScore > 1 {
		return domain.NutritionEstimate{}, fmt.Errorf("confidence_score %v out of range: %w",
			*resp.ConfidenceScore, domain.ErrInvalidModelOutput)
	}

	items := make([]domain.FoodItem, len(resp.FoodItems))
	for i, it := range resp.FoodItems {
		if strings.TrimSpace(it.Name) == "" {
			return domain.NutritionEstimate{}, fmt.Errorf("food item %d has no name: %w", i, domain.ErrInvalidModelOutput)
		}
		if it.Calories == nil {
			return domain.NutritionEstimate{}, fmt.Errorf("food item %q missing calories: %w", it.Name, domain.ErrInvalidModelOutput)
		}
		items[i] = domain.FoodItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Calories: *it.Calories,
			Protein:  it.Protein,
			Carbs:    it.Carbs,
			Fat:      it.Fat,
			Fiber:    it.Fiber,
		}
	}

	return domain.NutritionEstimate{
		FoodItems: items,
		Totals: domain.NutritionTotals{
			Calories: resp.Totals.Calories,
			Protein:  resp.Totals.Protein,
			Carbs:    resp.Totals.Carbs,
			Fat:      resp.Totals.Fat,
			Fiber:    resp.Totals.Fiber,
		},
		ConfidenceScore: *resp.ConfidenceScore,
		AnalysisNotes:   resp.AnalysisNotes,
	}, nil
}

// parseValidation turns raw model text into a ValidationResult.
func parseValidation(text string) (domain.ValidationResult, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return domain.ValidationResult{}, err
	}

	var resp validationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("unmarshal validation: %w", domain.ErrInvalidModelOutput)
	}

	if resp.IsReasonable == nil {
		return domain.ValidationResult{}, fmt.Errorf("missing is_reasonable: %w", domain.ErrInvalidModelOutput)
	}
	if resp.AdjustedCalories == nil {
		return domain.ValidationResult{}, fmt.Errorf("missing adjusted_calories: %w", domain.ErrInvalidModelOutput)
	}
	if *resp.AdjustedCalories < 0 {
		return domain.ValidationResult{}, fmt.Errorf("negative adjusted_calories: %w", domain.ErrInvalidModelOutput)
	}

	return domain.ValidationResult{
		IsReasonable:     *resp.IsReasonable,
		AdjustedCalories: *resp.AdjustedCalories,
		Reasoning:        resp.Reasoning,
	}, nil
}

// extractJSON finds the first complete JSON object in a string. Models
// occasionally wrap the object in prose or a markdown fence despite the
// prompt; take everything between the first { and the last }.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object in model response: %w", domain.ErrInvalidModelOutput)
	}
	return s[start : end+1], nil
}
