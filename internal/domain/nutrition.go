package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// totalsTolerance is the maximum drift (in kcal or grams) allowed between a
// model-reported total and the sum over food items before the total is
// recomputed from the items.
const totalsTolerance = 0.5

// FoodItem is one recognized food in a meal photo with per-portion estimates.
type FoodItem struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
	Fiber    float64 `json:"fiber_g"`
}

// NutritionTotals is the aggregate over a set of food items.
type NutritionTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
	Fiber    float64 `json:"fiber_g"`
}

// NutritionEstimate is the first-pass structured guess from the vision model.
// Immutable once returned by the estimator.
type NutritionEstimate struct {
	FoodItems       []FoodItem
	Totals          NutritionTotals
	ConfidenceScore float64
	AnalysisNotes   string
}

// SumItems computes totals by summing the per-item fields.
func (e NutritionEstimate) SumItems() NutritionTotals {
	var t NutritionTotals
	for _, it := range e.FoodItems {
		t.Calories += it.Calories
		t.Protein += it.Protein
		t.Carbs += it.Carbs
		t.Fat += it.Fat
		t.Fiber += it.Fiber
	}
	return t
}

// TotalsConsistent reports whether the model-reported totals match the sum
// over the item list within tolerance.
func (e NutritionEstimate) TotalsConsistent() bool {
	sum := e.SumItems()
	return math.Abs(sum.Calories-e.Totals.Calories) <= totalsTolerance &&
		math.Abs(sum.Protein-e.Totals.Protein) <= totalsTolerance &&
		math.Abs(sum.Carbs-e.Totals.Carbs) <= totalsTolerance &&
		math.Abs(sum.Fat-e.Totals.Fat) <= totalsTolerance &&
		math.Abs(sum.Fiber-e.Totals.Fiber) <= totalsTolerance
}

// ValidationResult is the second-pass plausibility critique. It supersedes
// the estimate's calorie total only; everything else passes through.
type ValidationResult struct {
	IsReasonable     bool
	AdjustedCalories float64
	Reasoning        string
}

// NutritionLog is one persisted meal record. Append-only: corrections create
// a new record, existing rows are never mutated.
type NutritionLog struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	FoodItems       []FoodItem
	TotalCalories   float64
	TotalProtein    float64
	TotalCarbs      float64
	TotalFat        float64
	TotalFiber      float64
	ConfidenceScore float64
	AnalysisNotes   string
	ImageRef        *string
	CreatedAt       time.Time
}

// DailySummary is the per-user, per-local-day sum of nutrition totals.
// It is derived: always recomputable from the day's NutritionLog rows.
type DailySummary struct {
	UserID        uuid.UUID
	Date          string // YYYY-MM-DD in the user's timezone
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
	TotalFiber    float64
	LogCount      int
}

// Add folds one log record into the summary.
func (s *DailySummary) Add(l NutritionLog) {
	s.TotalCalories += l.TotalCalories
	s.TotalProtein += l.TotalProtein
	s.TotalCarbs += l.TotalCarbs
	s.TotalFat += l.TotalFat
	s.TotalFiber += l.TotalFiber
	s.LogCount++
}
