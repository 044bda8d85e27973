package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"contratorealidad-backend/export"
	"contratorealidad-backend/intake"
	"contratorealidad-backend/logger"
	"contratorealidad-backend/models"
	"contratorealidad-backend/repository"
	"contratorealidad-backend/storage"

	"github.com/google/uuid"
)

// CaseService loads a case, applies one wizard transition and saves it only
// when the transition succeeded.
type CaseService struct {
	store    repository.CaseStore
	wizard   *CaseWizard
	patterns *PatternService
	storage  storage.Storage
	files    repository.IntakeFileStore
	attempts repository.AttemptStore
	log      *logger.Logger
	now      func() time.Time
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

func CaseWithStore(store repository.CaseStore) CaseServiceOption {
	return func(s *CaseService) {
		s.store = store
	}
}

func CaseWithWizard(w *CaseWizard) CaseServiceOption {
	return func(s *CaseService) {
		s.wizard = w
	}
}

// CaseWithPatternService sets the source of the patterns new cases start with
func CaseWithPatternService(p *PatternService) CaseServiceOption {
	return func(s *CaseService) {
		s.patterns = p
	}
}

// CaseWithStorage keeps uploaded intake files in st
func CaseWithStorage(st storage.Storage) CaseServiceOption {
	return func(s *CaseService) {
		s.storage = st
	}
}

func CaseWithIntakeFileStore(files repository.IntakeFileStore) CaseServiceOption {
	return func(s *CaseService) {
		s.files = files
	}
}

func CaseWithAttemptStore(attempts repository.AttemptStore) CaseServiceOption {
	return func(s *CaseService) {
		s.attempts = attempts
	}
}

func CaseWithLogger(log *logger.Logger) CaseServiceOption {
	return func(s *CaseService) {
		s.log = log
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{
		log: logger.Nop(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryCaseStore()
	}
	if s.wizard == nil {
		s.wizard = NewCaseWizard()
	}
	if s.files == nil {
		s.files = repository.NewMemoryIntakeFileStore()
	}
	if s.attempts == nil {
		s.attempts = repository.NewMemoryAttemptStore()
	}
	s.log = s.log.With("service", "CaseService")
	return s
}

// CreateCaseRequest represents a request to start a new case
type CreateCaseRequest struct {
	RetrievalMode models.RetrievalMode
	LawyerName    string
}

// CaseResult is a case after a transition. Warning is set when the
// transition succeeded but a follow-up step (such as drafting the section
// just entered) failed.
type CaseResult struct {
	Case    *models.Case
	Warning error
}

// Export is a rendered DOCX download
type Export struct {
	Filename string
	Data     []byte
}

func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (*models.Case, error) {
	mode := req.RetrievalMode
	if mode == "" {
		mode = models.RetrievalNone
	}
	if !mode.Valid() {
		return nil, validationError("retrieval_mode", "must be one of none, keyword, vector")
	}

	c := models.NewCase(mode)
	c.LawyerName = strings.TrimSpace(req.LawyerName)
	if s.patterns != nil {
		c.ReferencePatterns = s.patterns.Patterns()
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	s.log.Info("Case created", "case_id", c.ID, "retrieval_mode", mode, "reference_sections", len(c.ReferencePatterns))
	return c, nil
}

func (s *CaseService) GetCase(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	return s.store.Get(ctx, id)
}

func (s *CaseService) DeleteCase(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// apply runs fn against the stored case and saves it when fn succeeds.
func (s *CaseService) apply(ctx context.Context, id uuid.UUID, fn func(c *models.Case) error) (*models.Case, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save case: %w", err)
	}
	return c, nil
}

func (s *CaseService) SelectIntake(ctx context.Context, id uuid.UUID, method models.IntakeMethod) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		return s.wizard.SelectIntake(c, method)
	})
}

// ProcessIntake extracts the case facts from an uploaded file and keeps the
// upload in storage.
func (s *CaseService) ProcessIntake(ctx context.Context, id uuid.UUID, in IntakeInput) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		if err := s.wizard.ProcessIntake(ctx, c, in); err != nil {
			return err
		}
		kind := models.IntakeFileCaseFile
		if c.IntakeMethod == models.IntakeTranscription {
			kind = models.IntakeFileAudio
		}
		if f := s.storeUpload(ctx, c.ID, kind, in); f != nil {
			c.IntakeFileID = &f.ID
		}
		return nil
	})
}

// storeUpload keeps a copy of an intake file. Failures are logged only.
func (s *CaseService) storeUpload(ctx context.Context, caseID uuid.UUID, kind models.IntakeFileKind, in IntakeInput) *models.IntakeFile {
	if s.storage == nil {
		return nil
	}
	file := &models.IntakeFile{
		ID:        uuid.New(),
		CaseID:    caseID,
		Kind:      kind,
		Filename:  filepath.Base(in.Filename),
		MimeType:  intake.DetectMimeType(in.MimeType, in.Filename),
		Size:      int64(len(in.Data)),
		CreatedAt: s.now(),
	}
	path, err := s.storage.Upload(ctx, file.ID, file.Filename, bytes.NewReader(in.Data))
	if err != nil {
		s.log.Warn("Failed to store intake file", "case_id", caseID, "filename", file.Filename, "error", err)
		return nil
	}
	file.StoragePath = path
	if err := s.files.Create(ctx, file); err != nil {
		s.log.Warn("Failed to record intake file", "case_id", caseID, "file_id", file.ID, "error", err)
		return nil
	}
	return file
}

func (s *CaseService) CancelIntake(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	return s.apply(ctx, id, s.wizard.CancelIntake)
}

func (s *CaseService) SetFacts(ctx context.Context, id uuid.UUID, facts string) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		return s.wizard.SetFacts(c, facts)
	})
}

func (s *CaseService) GenerateSummary(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		return s.wizard.GenerateSummary(ctx, c)
	})
}

func (s *CaseService) GenerateViability(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		return s.wizard.GenerateViability(ctx, c)
	})
}

// Advance moves the case forward. Entering the drafting phase drafts the
// first section when a lawyer name is set.
func (s *CaseService) Advance(ctx context.Context, id uuid.UUID) (*CaseResult, error) {
	var warning error
	c, err := s.apply(ctx, id, func(c *models.Case) error {
		if err := s.wizard.Advance(c); err != nil {
			return err
		}
		warning = s.enterSection(ctx, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CaseResult{Case: c, Warning: warning}, nil
}

func (s *CaseService) Back(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	return s.apply(ctx, id, s.wizard.Back)
}

func (s *CaseService) SetLawyerName(ctx context.Context, id uuid.UUID, name string) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		return s.wizard.SetLawyerName(c, name)
	})
}

func (s *CaseService) SetPowerOfAttorney(ctx context.Context, id uuid.UUID, fields models.PowerOfAttorneyFields) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		return s.wizard.SetPowerOfAttorney(c, fields)
	})
}

func (s *CaseService) DraftSection(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		return s.wizard.DraftSection(ctx, c)
	})
}

// AcceptSection accepts the current section and drafts the next one.
func (s *CaseService) AcceptSection(ctx context.Context, id uuid.UUID) (*CaseResult, error) {
	var warning error
	c, err := s.apply(ctx, id, func(c *models.Case) error {
		if err := s.wizard.AcceptSection(c); err != nil {
			return err
		}
		warning = s.enterSection(ctx, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CaseResult{Case: c, Warning: warning}, nil
}

func (s *CaseService) ReviseSection(ctx context.Context, id uuid.UUID, feedback string) (*models.Case, error) {
	return s.apply(ctx, id, func(c *models.Case) error {
		return s.wizard.ReviseSection(ctx, c, feedback)
	})
}

// enterSection drafts the section the case just moved to. A failure leaves
// the section empty and is returned as a warning.
func (s *CaseService) enterSection(ctx context.Context, c *models.Case) error {
	if c.CurrentPhase != models.PhaseDraftSections || strings.TrimSpace(c.LawyerName) == "" {
		return nil
	}
	if err := s.wizard.DraftSection(ctx, c); err != nil {
		s.log.Warn("Automatic section draft failed", "case_id", c.ID, "section_index", c.CurrentSectionIndex, "error", err)
		return err
	}
	return nil
}

// AnalyzeReferenceDocument extracts writing patterns from a reference
// lawsuit and sets them on the case.
func (s *CaseService) AnalyzeReferenceDocument(ctx context.Context, id uuid.UUID, in IntakeInput) (*models.Case, error) {
	if s.patterns == nil {
		return nil, fmt.Errorf("pattern analysis not configured")
	}
	return s.apply(ctx, id, func(c *models.Case) error {
		if c.CurrentPhase == models.PhaseDone {
			return &TransitionError{Action: "analyze reference document", Phase: string(c.CurrentPhase)}
		}
		text, err := s.wizard.ExtractDocumentText(ctx, in)
		if err != nil {
			return err
		}
		patterns, err := s.patterns.Analyze(ctx, text)
		if err != nil {
			return err
		}
		s.storeUpload(ctx, c.ID, models.IntakeFileReference, in)
		c.ReferencePatterns = patterns
		c.Touch()
		return nil
	})
}

// ListAttempts returns the generation attempts of a case
func (s *CaseService) ListAttempts(ctx context.Context, id uuid.UUID) ([]*models.GenerationAttempt, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListByCaseID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []*models.GenerationAttempt{}
	}
	return attempts, nil
}

// GetFile returns an uploaded intake file and its content. The caller closes the reader.
func (s *CaseService) GetFile(ctx context.Context, fileID uuid.UUID) (*models.IntakeFile, io.ReadCloser, error) {
	if s.storage == nil {
		return nil, nil, repository.ErrFileNotFound
	}
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

// ExportLawsuit renders the finished lawsuit
func (s *CaseService) ExportLawsuit(ctx context.Context, id uuid.UUID) (*Export, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CurrentPhase != models.PhaseDone {
		return nil, &TransitionError{Action: "export lawsuit", Phase: string(c.CurrentPhase)}
	}
	data, err := export.Lawsuit(c.LawyerName, c.Sections)
	if err != nil {
		return nil, err
	}
	return &Export{Filename: "demanda_contrato_realidad.docx", Data: data}, nil
}

func (s *CaseService) ExportViability(ctx context.Context, id uuid.UUID) (*Export, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.ViabilityOpinion) == "" {
		return nil, validationError("viability_opinion", "no viability opinion to export")
	}
	data, err := export.ViabilityOpinion(c.ViabilityOpinion, s.now())
	if err != nil {
		return nil, err
	}
	return &Export{Filename: "concepto_viabilidad.docx", Data: data}, nil
}

func (s *CaseService) ExportPowerOfAttorney(ctx context.Context, id uuid.UUID) (*Export, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderPowerOfAttorneyExport(c.PowerOfAttorney)
}

// RenderPowerOfAttorneyExport renders fields into the power-of-attorney DOCX
func RenderPowerOfAttorneyExport(fields models.PowerOfAttorneyFields) (*Export, error) {
	for k := range fields {
		if !models.IsPowerOfAttorneyField(k) {
			return nil, validationError("fields."+k, "unknown power of attorney field")
		}
	}
	data, err := export.PowerOfAttorney(RenderPowerOfAttorney(fields))
	if err != nil {
		return nil, err
	}
	return &Export{Filename: "poder_especial.docx", Data: data}, nil
}

func (s *CaseService) ExportTranscription(ctx context.Context, id uuid.UUID) (*Export, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Transcription) == "" {
		return nil, validationError("transcription", "case has no transcription")
	}

	source := "entrevista"
	if c.IntakeFileID != nil {
		if f, err := s.files.GetByID(ctx, *c.IntakeFileID); err == nil {
			source = f.Filename
		}
	}
	at := c.UpdatedAt
	if c.TranscribedAt != nil {
		at = *c.TranscribedAt
	}

	data, err := export.Transcription(c.Transcription, source, at, c.TranscriptionModel)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return &Export{Filename: "transcripcion_" + base + ".docx", Data: data}, nil
}
