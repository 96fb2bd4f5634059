package domain

import "github.com/google/uuid"

// AnalysisCompleted is emitted after a nutrition log is persisted. It carries
// just enough for the rollup worker to recompute the affected day.
type AnalysisCompleted struct {
	LogID           uuid.UUID `json:"log_id"`
	UserID          uuid.UUID `json:"user_id"`
	ConfidenceScore float64   `json:"confidence_score"`
}

// LowConfidence is emitted by the rollup worker when a log's confidence falls
// below the confirmation threshold. Consumed by the (external) insights flow.
type LowConfidence struct {
	LogID           uuid.UUID `json:"log_id"`
	UserID          uuid.UUID `json:"user_id"`
	ConfidenceScore float64   `json:"confidence_score"`
}
