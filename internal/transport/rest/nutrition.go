package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mstepanov/fitcoach-backend/internal/domain"
	"github.com/mstepanov/fitcoach-backend/internal/service/nutrition"
	"github.com/mstepanov/fitcoach-backend/pkg/ctxutil"
)

// multipartMemoryLimit caps how much of the upload is buffered in memory
// before spilling to disk.
const multipartMemoryLimit = 4 << 20

// nutritionService defines the pipeline interface needed by NutritionHandler.
type nutritionService interface {
	ProcessPhoto(ctx context.Context, userID uuid.UUID, image []byte, imageRef *string) (*nutrition.Result, error)
	GetLog(ctx context.Context, userID, logID uuid.UUID) (*domain.NutritionLog, error)
}

// summaryService serves daily totals and per-day log listings.
type summaryService interface {
	GetForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailySummary, error)
	ListLogsForDay(ctx context.Context, userID uuid.UUID, day string) ([]domain.NutritionLog, error)
}

// NutritionHandler serves meal logging and summary endpoints.
type NutritionHandler struct {
	pipeline  nutritionService
	summaries summaryService
	log       *slog.Logger
	maxUpload int64
}

// NewNutritionHandler creates a NutritionHandler.
func NewNutritionHandler(pipeline nutritionService, summaries summaryService, maxUpload int64, logger *slog.Logger) *NutritionHandler {
	return &NutritionHandler{
		pipeline:  pipeline,
		summaries: summaries,
		log:       logger.With("handler", "nutrition"),
		maxUpload: maxUpload,
	}
}

type foodItemResponse struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"proteinG"`
	Carbs    float64 `json:"carbsG"`
	Fat      float64 `json:"fatG"`
	Fiber    float64 `json:"fiberG"`
}

type logResponse struct {
	ID              string             `json:"id"`
	FoodItems       []foodItemResponse `json:"foodItems"`
	TotalCalories   float64            `json:"totalCalories"`
	TotalProtein    float64            `json:"totalProtein"`
	TotalCarbs      float64            `json:"totalCarbs"`
	TotalFat        float64            `json:"totalFat"`
	TotalFiber      float64            `json:"totalFiber"`
	ConfidenceScore float64            `json:"confidenceScore"`
	AnalysisNotes   string             `json:"analysisNotes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

type uploadResponse struct {
	Log                  logResponse `json:"log"`
	RequiresConfirmation bool        `json:"requiresConfirmation"`
}

type summaryResponse struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"totalCalories"`
	TotalProtein  float64 `json:"totalProtein"`
	TotalCarbs    float64 `json:"totalCarbs"`
	TotalFat      float64 `json:"totalFat"`
	TotalFiber    float64 `json:"totalFiber"`
	LogCount      int     `json:"logCount"`
}

// Upload handles POST /api/v1/nutrition/logs. The request is multipart form
// data with the photo in the "image" field.
func (h *NutritionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with an image field")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read image")
		return
	}

	result, err := h.pipeline.ProcessPhoto(r.Context(), userID, image, nil)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		Log:                  toLogResponse(*result.Log),
		RequiresConfirmation: result.RequiresConfirmation,
	})
}

// GetLog handles GET /api/v1/nutrition/logs/{id}.
func (h *NutritionHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	logID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}

	record, err := h.pipeline.GetLog(r.Context(), userID, logID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLogResponse(*record))
}

// ListLogs handles GET /api/v1/nutrition/logs?date=YYYY-MM-DD.
func (h *NutritionHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	day := r.URL.Query().Get("date")
	if day == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	logs, err := h.summaries.ListLogsForDay(r.Context(), userID, day)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]logResponse, len(logs))
	for i, l := range logs {
		resp[i] = toLogResponse(l)
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": resp})
}

// GetSummary handles GET /api/v1/nutrition/summary?date=YYYY-MM-DD.
func (h *NutritionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	day := r.URL.Query().Get("date")
	if day == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	sum, err := h.summaries.GetForDay(r.Context(), userID, day)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Date:          sum.Date,
		TotalCalories: sum.TotalCalories,
		TotalProtein:  sum.TotalProtein,
		TotalCarbs:    sum.TotalCarbs,
		TotalFat:      sum.TotalFat,
		TotalFiber:    sum.TotalFiber,
		LogCount:      sum.LogCount,
	})
}

func (h *NutritionHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidModelOutput):
		writeError(w, http.StatusBadGateway, "could not analyze the photo, please retry")
	case errors.Is(err, domain.ErrModelUnavailable):
		w.Header().Set("Retry-After", "10")
		writeError(w, http.StatusServiceUnavailable, "analysis temporarily unavailable, please retry")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toLogResponse(l domain.NutritionLog) logResponse {
	items := make([]foodItemResponse, len(l.FoodItems))
	for i, it := range l.FoodItems {
		items[i] = foodItemResponse{
			Name:     it.Name,
			Quantity: it.Quantity,
			Calories: it.Calories,
			Protein:  it.Protein,
			Carbs:    it.Carbs,
			Fat:      it.Fat,
			Fiber:    it.Fiber,
		}
	}
	return logResponse{
		ID:              l.ID.String(),
		FoodItems:       items,
		TotalCalories:   l.TotalCalories,
		TotalProtein:    l.TotalProtein,
		TotalCarbs:      l.TotalCarbs,
		TotalFat:        l.TotalFat,
		TotalFiber:      l.TotalFiber,
		ConfidenceScore: l.ConfidenceScore,
		AnalysisNotes:   l.AnalysisNotes,
		CreatedAt:       l.CreatedAt,
	}
}
