package repository

import (
	"context"
	"sync"

	"contratorealidad-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptStore records generation attempts and lists them per case
type AttemptStore interface {
	Record(ctx context.Context, attempt *models.GenerationAttempt) error
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.GenerationAttempt, error)
}

// GenerationAttemptRepository handles database operations for generation attempts
type GenerationAttemptRepository struct {
	db *pgxpool.Pool
}

// NewGenerationAttemptRepository creates a new generation attempt repository
func NewGenerationAttemptRepository(db *pgxpool.Pool) *GenerationAttemptRepository {
	return &GenerationAttemptRepository{db: db}
}

// Record inserts one attempt
func (r *GenerationAttemptRepository) Record(ctx context.Context, a *models.GenerationAttempt) error {
	query := `
		INSERT INTO generation_attempts (
			id, case_id, task, section, strategy, retrieved_count,
			with_feedback, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(
		ctx, query,
		a.ID,
		a.CaseID,
		a.Task,
		a.Section,
		a.Strategy,
		a.RetrievedCount,
		a.WithFeedback,
		a.Status,
		a.ErrorMessage,
		a.CreatedAt,
	)
	return err
}

// ListByCaseID returns a case's attempts in the order they were made
func (r *GenerationAttemptRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.GenerationAttempt, error) {
	query := `
		SELECT id, case_id, task, section, strategy, retrieved_count,
			with_feedback, status, error_message, created_at
		FROM generation_attempts
		WHERE case_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.GenerationAttempt
	for rows.Next() {
		a := &models.GenerationAttempt{}
		err := rows.Scan(
			&a.ID,
			&a.CaseID,
			&a.Task,
			&a.Section,
			&a.Strategy,
			&a.RetrievedCount,
			&a.WithFeedback,
			&a.Status,
			&a.ErrorMessage,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// DeleteByCaseID removes all attempts of a case
func (r *GenerationAttemptRepository) DeleteByCaseID(ctx context.Context, caseID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM generation_attempts WHERE case_id = $1`, caseID)
	return err
}

// MemoryAttemptStore keeps attempts in memory
type MemoryAttemptStore struct {
	mu       sync.RWMutex
	attempts []*models.GenerationAttempt
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{}
}

func (s *MemoryAttemptStore) Record(ctx context.Context, a *models.GenerationAttempt) error {
	cp := *a
	s.mu.Lock()
	s.attempts = append(s.attempts, &cp)
	s.mu.Unlock()
	return nil
}

func (s *MemoryAttemptStore) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.GenerationAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.GenerationAttempt
	for _, a := range s.attempts {
		if a.CaseID == caseID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}
