package repository

import (
	"context"
	"errors"

	"contratorealidad-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository is the Postgres CaseStore
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `id, intake_method, intake_file_id, transcription, transcription_model, transcribed_at,
	facts, summary, viability_opinion, power_of_attorney, lawyer_name, sections,
	current_phase, current_section_index, retrieval_mode, reference_patterns,
	created_at, updated_at`

// Create inserts a new case
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (` + caseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.Exec(
		ctx, query,
		c.ID,
		c.IntakeMethod,
		c.IntakeFileID,
		c.Transcription,
		c.TranscriptionModel,
		c.TranscribedAt,
		c.Facts,
		c.Summary,
		c.ViabilityOpinion,
		c.PowerOfAttorney,
		c.LawyerName,
		c.Sections,
		c.CurrentPhase,
		c.CurrentSectionIndex,
		c.RetrievalMode,
		c.ReferencePatterns,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// Get retrieves a case by ID
func (r *CaseRepository) Get(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c := &models.Case{}
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.IntakeMethod,
		&c.IntakeFileID,
		&c.Transcription,
		&c.TranscriptionModel,
		&c.TranscribedAt,
		&c.Facts,
		&c.Summary,
		&c.ViabilityOpinion,
		&c.PowerOfAttorney,
		&c.LawyerName,
		&c.Sections,
		&c.CurrentPhase,
		&c.CurrentSectionIndex,
		&c.RetrievalMode,
		&c.ReferencePatterns,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(c.Sections) == 0 {
		c.Sections = models.NewSections()
	}
	return c, nil
}

// Save updates every mutable column of a case
func (r *CaseRepository) Save(ctx context.Context, c *models.Case) error {
	query := `
		UPDATE cases SET
			intake_method = $2,
			intake_file_id = $3,
			transcription = $4,
			transcription_model = $5,
			transcribed_at = $6,
			facts = $7,
			summary = $8,
			viability_opinion = $9,
			power_of_attorney = $10,
			lawyer_name = $11,
			sections = $12,
			current_phase = $13,
			current_section_index = $14,
			retrieval_mode = $15,
			reference_patterns = $16,
			updated_at = $17
		WHERE id = $1`

	tag, err := r.db.Exec(
		ctx, query,
		c.ID,
		c.IntakeMethod,
		c.IntakeFileID,
		c.Transcription,
		c.TranscriptionModel,
		c.TranscribedAt,
		c.Facts,
		c.Summary,
		c.ViabilityOpinion,
		c.PowerOfAttorney,
		c.LawyerName,
		c.Sections,
		c.CurrentPhase,
		c.CurrentSectionIndex,
		c.RetrievalMode,
		c.ReferencePatterns,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}

// Delete deletes a case
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}
