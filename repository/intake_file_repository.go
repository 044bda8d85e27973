package repository

import (
	"context"
	"errors"
	"sync"

	"contratorealidad-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrFileNotFound = errors.New("file not found")

// IntakeFileStore records uploaded intake files
type IntakeFileStore interface {
	Create(ctx context.Context, file *models.IntakeFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.IntakeFile, error)
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.IntakeFile, error)
}

// IntakeFileRepository handles database operations for intake files
type IntakeFileRepository struct {
	db *pgxpool.Pool
}

// NewIntakeFileRepository creates a new intake file repository
func NewIntakeFileRepository(db *pgxpool.Pool) *IntakeFileRepository {
	return &IntakeFileRepository{db: db}
}

// Create creates a new file record
func (r *IntakeFileRepository) Create(ctx context.Context, file *models.IntakeFile) error {
	query := `
		INSERT INTO intake_files (
			id, case_id, kind, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRow(
		ctx, query,
		file.ID,
		file.CaseID,
		file.Kind,
		file.Filename,
		file.MimeType,
		file.Size,
		file.StoragePath,
	).Scan(&file.CreatedAt)
}

// GetByID retrieves a file by ID
func (r *IntakeFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IntakeFile, error) {
	file := &models.IntakeFile{}
	query := `
		SELECT id, case_id, kind, filename, mime_type, size, storage_path, created_at
		FROM intake_files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.CaseID,
		&file.Kind,
		&file.Filename,
		&file.MimeType,
		&file.Size,
		&file.StoragePath,
		&file.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

// ListByCaseID retrieves all files for a case
func (r *IntakeFileRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.IntakeFile, error) {
	query := `
		SELECT id, case_id, kind, filename, mime_type, size, storage_path, created_at
		FROM intake_files
		WHERE case_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.IntakeFile
	for rows.Next() {
		file := &models.IntakeFile{}
		err := rows.Scan(
			&file.ID,
			&file.CaseID,
			&file.Kind,
			&file.Filename,
			&file.MimeType,
			&file.Size,
			&file.StoragePath,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// MemoryIntakeFileStore keeps file records in memory when no database is configured
type MemoryIntakeFileStore struct {
	mu    sync.RWMutex
	files []*models.IntakeFile
}

func NewMemoryIntakeFileStore() *MemoryIntakeFileStore {
	return &MemoryIntakeFileStore{}
}

func (s *MemoryIntakeFileStore) Create(ctx context.Context, file *models.IntakeFile) error {
	cp := *file
	s.mu.Lock()
	s.files = append(s.files, &cp)
	s.mu.Unlock()
	return nil
}

func (s *MemoryIntakeFileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.IntakeFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.ID == id {
			cp := *f
			return &cp, nil
		}
	}
	return nil, ErrFileNotFound
}

// ListByCaseID returns the case's files, newest first
func (s *MemoryIntakeFileStore) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.IntakeFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.IntakeFile
	for i := len(s.files) - 1; i >= 0; i-- {
		if s.files[i].CaseID == caseID {
			cp := *s.files[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
