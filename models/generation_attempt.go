package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationTask is what a generation call produces
type GenerationTask string

const (
	TaskSummary   GenerationTask = "summary"
	TaskViability GenerationTask = "viability"
	TaskSection   GenerationTask = "section"
)

// Strategy is the prompt composition path used for a generation call
type Strategy string

const (
	StrategyBaseline         Strategy = "baseline"
	StrategyKeyword          Strategy = "keyword"
	StrategyVector           Strategy = "vector"
	StrategyReferencePattern Strategy = "reference_pattern"
)

// AttemptStatus represents the outcome of a generation attempt
type AttemptStatus string

const (
	AttemptCompleted AttemptStatus = "completed"
	AttemptFailed    AttemptStatus = "failed"
)

// GenerationAttempt records one generation call made for a case
type GenerationAttempt struct {
	ID             uuid.UUID      `json:"id"`
	CaseID         uuid.UUID      `json:"case_id"`
	Task           GenerationTask `json:"task"`
	Section        *string        `json:"section,omitempty"`
	Strategy       Strategy       `json:"strategy"`
	RetrievedCount int            `json:"retrieved_count"`
	WithFeedback   bool           `json:"with_feedback"`
	Status         AttemptStatus  `json:"status"`
	ErrorMessage   *string        `json:"error_message,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
