package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contratorealidad-backend/intake"
	"contratorealidad-backend/llm"
	"contratorealidad-backend/logger"
	"contratorealidad-backend/metrics"
	"contratorealidad-backend/models"
	"contratorealidad-backend/prompt"
	"contratorealidad-backend/rag"

	"github.com/google/uuid"
)

// AttemptRecorder persists one GenerationAttempt per generation call
type AttemptRecorder interface {
	Record(ctx context.Context, attempt *models.GenerationAttempt) error
}

// CaseWizard implements the phase transitions of a case. Every method takes
// the case explicitly and mutates it only when the transition succeeds.
type CaseWizard struct {
	generator   llm.Generator
	composer    *prompt.Composer
	keyword     rag.Retriever
	vector      rag.Retriever
	attempts    AttemptRecorder
	extractor   intake.TextExtractor
	ocr         intake.OCR
	transcriber intake.Transcriber
	log         *logger.Logger
	now         func() time.Time
}

// WizardOption is a functional option for CaseWizard
type WizardOption func(*CaseWizard)

// WizardWithGenerator sets the LLM used for every generation task
func WizardWithGenerator(g llm.Generator) WizardOption {
	return func(w *CaseWizard) {
		w.generator = g
	}
}

func WizardWithComposer(c *prompt.Composer) WizardOption {
	return func(w *CaseWizard) {
		w.composer = c
	}
}

// WizardWithKeywordRetriever sets the retriever used by cases in keyword mode
func WizardWithKeywordRetriever(r rag.Retriever) WizardOption {
	return func(w *CaseWizard) {
		w.keyword = r
	}
}

// WizardWithVectorRetriever sets the retriever used by cases in vector mode
func WizardWithVectorRetriever(r rag.Retriever) WizardOption {
	return func(w *CaseWizard) {
		w.vector = r
	}
}

func WizardWithAttemptRecorder(r AttemptRecorder) WizardOption {
	return func(w *CaseWizard) {
		w.attempts = r
	}
}

func WizardWithTextExtractor(e intake.TextExtractor) WizardOption {
	return func(w *CaseWizard) {
		w.extractor = e
	}
}

func WizardWithOCR(o intake.OCR) WizardOption {
	return func(w *CaseWizard) {
		w.ocr = o
	}
}

// WizardWithTranscriber sets the transcription provider. Size and format
// limits are always enforced in front of it.
func WizardWithTranscriber(t intake.Transcriber) WizardOption {
	return func(w *CaseWizard) {
		if _, ok := t.(*intake.LimitTranscriber); !ok && t != nil {
			t = intake.NewLimitTranscriber(t)
		}
		w.transcriber = t
	}
}

func WizardWithLogger(log *logger.Logger) WizardOption {
	return func(w *CaseWizard) {
		w.log = log
	}
}

// NewCaseWizard creates a new case wizard
func NewCaseWizard(opts ...WizardOption) *CaseWizard {
	w := &CaseWizard{
		composer:  prompt.NewComposer(),
		extractor: intake.NewDocumentExtractor(),
		log:       logger.Nop(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With("service", "CaseWizard")
	return w
}

// IntakeInput is an uploaded intake file
type IntakeInput struct {
	Data     []byte
	Filename string
	MimeType string
	UseOCR   bool
}

func requirePhase(c *models.Case, action string, phases ...models.Phase) error {
	for _, p := range phases {
		if c.CurrentPhase == p {
			return nil
		}
	}
	return &TransitionError{Action: action, Phase: string(c.CurrentPhase)}
}

// SelectIntake stores the intake method. Manual intake skips file processing.
func (w *CaseWizard) SelectIntake(c *models.Case, method models.IntakeMethod) error {
	if err := requirePhase(c, "select intake", models.PhaseIntakeSelect); err != nil {
		return err
	}
	switch method {
	case models.IntakeTranscription, models.IntakeCaseFile:
		c.IntakeMethod = method
		c.CurrentPhase = models.PhaseIntakeProcess
	case models.IntakeManual:
		c.IntakeMethod = method
		c.CurrentPhase = models.PhaseFactsAndSummary
	default:
		return validationError("method", "must be one of transcription, case_file, manual")
	}
	c.Touch()
	return nil
}

// ProcessIntake extracts facts from the uploaded file using the selected method.
// On failure the case is unchanged.
func (w *CaseWizard) ProcessIntake(ctx context.Context, c *models.Case, in IntakeInput) error {
	if err := requirePhase(c, "process intake", models.PhaseIntakeProcess); err != nil {
		return err
	}
	if len(in.Data) == 0 {
		return validationError("file", "an intake file is required")
	}

	switch c.IntakeMethod {
	case models.IntakeTranscription:
		if w.transcriber == nil {
			return fmt.Errorf("%w: no transcription provider configured", intake.ErrTranscription)
		}
		tr, err := w.transcriber.Transcribe(ctx, in.Data, in.Filename, in.MimeType)
		if err != nil && !errors.Is(err, intake.ErrTranscription) {
			err = fmt.Errorf("%w: %w", intake.ErrTranscription, err)
		}
		metrics.ObserveIntake(string(c.IntakeMethod), err)
		if err != nil {
			w.log.Warn("Transcription failed", "case_id", c.ID, "filename", in.Filename, "error", err)
			return err
		}
		at := w.now()
		c.Transcription = tr.Text
		c.TranscriptionModel = tr.Model
		c.TranscribedAt = &at
		c.Facts = tr.Text

	case models.IntakeCaseFile:
		text, err := w.extractCaseFile(ctx, in)
		if err != nil && !errors.Is(err, intake.ErrExtraction) {
			err = fmt.Errorf("%w: %w", intake.ErrExtraction, err)
		}
		method := string(c.IntakeMethod)
		if in.UseOCR {
			method += "_ocr"
		}
		metrics.ObserveIntake(method, err)
		if err != nil {
			w.log.Warn("Case file extraction failed", "case_id", c.ID, "filename", in.Filename, "ocr", in.UseOCR, "error", err)
			return err
		}
		c.Facts = text

	default:
		return &TransitionError{Action: "process intake", Phase: string(c.CurrentPhase)}
	}

	c.CurrentPhase = models.PhaseFactsAndSummary
	c.Touch()
	return nil
}

func (w *CaseWizard) extractCaseFile(ctx context.Context, in IntakeInput) (string, error) {
	mimeType := intake.DetectMimeType(in.MimeType, in.Filename)
	if in.UseOCR {
		if w.ocr == nil {
			return "", fmt.Errorf("%w: OCR is not configured", intake.ErrExtraction)
		}
		return w.ocr.ExtractTextOCR(ctx, in.Data, mimeType)
	}
	return w.extractor.ExtractText(ctx, in.Data, mimeType)
}

// ExtractDocumentText runs text extraction, or OCR when useOCR is set, outside
// of any case phase. Used for reference documents.
func (w *CaseWizard) ExtractDocumentText(ctx context.Context, in IntakeInput) (string, error) {
	if len(in.Data) == 0 {
		return "", validationError("file", "a document is required")
	}
	return w.extractCaseFile(ctx, in)
}

// CancelIntake returns from file processing to method selection
func (w *CaseWizard) CancelIntake(c *models.Case) error {
	if err := requirePhase(c, "cancel intake", models.PhaseIntakeProcess); err != nil {
		return err
	}
	c.CurrentPhase = models.PhaseIntakeSelect
	c.Touch()
	return nil
}

func (w *CaseWizard) SetFacts(c *models.Case, facts string) error {
	if err := requirePhase(c, "set facts", models.PhaseFactsAndSummary); err != nil {
		return err
	}
	facts = strings.TrimSpace(facts)
	if facts == "" {
		return validationError("facts", "facts cannot be empty")
	}
	c.Facts = facts
	c.Touch()
	return nil
}

// GenerateSummary generates the technical summary of the facts, replacing any previous one.
func (w *CaseWizard) GenerateSummary(ctx context.Context, c *models.Case) error {
	if err := requirePhase(c, "generate summary", models.PhaseFactsAndSummary); err != nil {
		return err
	}
	if strings.TrimSpace(c.Facts) == "" {
		return validationError("facts", "facts are required to generate a summary")
	}

	text, err := w.generate(ctx, c, prompt.Request{
		Task:  models.TaskSummary,
		Facts: c.Facts,
	})
	if err != nil {
		return err
	}
	c.Summary = text
	c.Touch()
	return nil
}

// GenerateViability generates the viability opinion, replacing any previous one.
func (w *CaseWizard) GenerateViability(ctx context.Context, c *models.Case) error {
	if err := requirePhase(c, "generate viability", models.PhaseViabilityAssessment); err != nil {
		return err
	}
	if strings.TrimSpace(c.Facts) == "" {
		return validationError("facts", "facts are required to assess viability")
	}

	text, err := w.generate(ctx, c, prompt.Request{
		Task:  models.TaskViability,
		Facts: c.Facts,
	})
	if err != nil {
		return err
	}
	c.ViabilityOpinion = text
	c.Touch()
	return nil
}

// Advance moves to the next phase when its precondition holds. Drafting
// moves forward through AcceptSection instead.
func (w *CaseWizard) Advance(c *models.Case) error {
	switch c.CurrentPhase {
	case models.PhaseFactsAndSummary:
		if strings.TrimSpace(c.Summary) == "" {
			return validationError("summary", "generate the summary before continuing")
		}
		c.CurrentPhase = models.PhaseViabilityAssessment
	case models.PhaseViabilityAssessment:
		if strings.TrimSpace(c.ViabilityOpinion) == "" {
			return validationError("viability_opinion", "generate the viability opinion before continuing")
		}
		c.CurrentPhase = models.PhasePowerOfAttorney
	case models.PhasePowerOfAttorney:
		c.CurrentPhase = models.PhaseDraftSections
		c.CurrentSectionIndex = 0
	default:
		return &TransitionError{Action: "advance", Phase: string(c.CurrentPhase)}
	}
	c.Touch()
	return nil
}

// Back steps to the previous section, or to the previous phase.
func (w *CaseWizard) Back(c *models.Case) error {
	switch c.CurrentPhase {
	case models.PhaseIntakeProcess, models.PhaseFactsAndSummary:
		c.CurrentPhase = models.PhaseIntakeSelect
	case models.PhaseViabilityAssessment:
		c.CurrentPhase = models.PhaseFactsAndSummary
	case models.PhasePowerOfAttorney:
		c.CurrentPhase = models.PhaseViabilityAssessment
	case models.PhaseDraftSections:
		if c.CurrentSectionIndex > 0 {
			c.CurrentSectionIndex--
		} else {
			c.CurrentPhase = models.PhasePowerOfAttorney
		}
	default:
		return &TransitionError{Action: "back", Phase: string(c.CurrentPhase)}
	}
	c.Touch()
	return nil
}

func (w *CaseWizard) SetLawyerName(c *models.Case, name string) error {
	if c.CurrentPhase == models.PhaseDone {
		return &TransitionError{Action: "set lawyer name", Phase: string(c.CurrentPhase)}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return validationError("lawyer_name", "lawyer name cannot be empty")
	}
	c.LawyerName = name
	c.Touch()
	return nil
}

// SetPowerOfAttorney merges fields into the case's power-of-attorney values
func (w *CaseWizard) SetPowerOfAttorney(c *models.Case, fields models.PowerOfAttorneyFields) error {
	if c.CurrentPhase == models.PhaseDone {
		return &TransitionError{Action: "set power of attorney", Phase: string(c.CurrentPhase)}
	}
	merged, err := MergePowerOfAttorneyFields(c.PowerOfAttorney, fields)
	if err != nil {
		return err
	}
	c.PowerOfAttorney = merged
	c.Touch()
	return nil
}

// DraftSection generates the current section if it is still empty.
func (w *CaseWizard) DraftSection(ctx context.Context, c *models.Case) error {
	if err := requirePhase(c, "draft section", models.PhaseDraftSections); err != nil {
		return err
	}
	sec, ok := c.CurrentSection()
	if !ok {
		return &TransitionError{Action: "draft section", Phase: string(c.CurrentPhase)}
	}
	if sec.Content != "" {
		return nil
	}
	return w.writeSection(ctx, c, sec.Title, "")
}

// ReviseSection regenerates the current section with the user's feedback.
// The previous draft is replaced, never carried into the prompt.
func (w *CaseWizard) ReviseSection(ctx context.Context, c *models.Case, feedback string) error {
	if err := requirePhase(c, "revise section", models.PhaseDraftSections); err != nil {
		return err
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return validationError("feedback", "feedback cannot be empty")
	}
	sec, ok := c.CurrentSection()
	if !ok {
		return &TransitionError{Action: "revise section", Phase: string(c.CurrentPhase)}
	}
	return w.writeSection(ctx, c, sec.Title, feedback)
}

func (w *CaseWizard) writeSection(ctx context.Context, c *models.Case, title, feedback string) error {
	if strings.TrimSpace(c.LawyerName) == "" {
		return validationError("lawyer_name", "set the supervising lawyer before drafting sections")
	}

	req := prompt.Request{
		Task:     models.TaskSection,
		Facts:    c.Facts,
		Summary:  c.Summary,
		Opinion:  c.ViabilityOpinion,
		Section:  title,
		Feedback: feedback,
	}
	if p, ok := c.ReferencePatterns[title]; ok {
		req.Pattern = &p
	}

	text, err := w.generate(ctx, c, req)
	if err != nil {
		return err
	}
	c.SetCurrentSectionContent(text)
	c.Touch()
	return nil
}

// AcceptSection moves to the next section. Accepting the last one finishes the case.
func (w *CaseWizard) AcceptSection(c *models.Case) error {
	if err := requirePhase(c, "accept section", models.PhaseDraftSections); err != nil {
		return err
	}
	sec, ok := c.CurrentSection()
	if !ok {
		return &TransitionError{Action: "accept section", Phase: string(c.CurrentPhase)}
	}
	if strings.TrimSpace(sec.Content) == "" {
		return validationError("content", fmt.Sprintf("section %q has no content", sec.Title))
	}

	if c.CurrentSectionIndex == len(c.Sections)-1 {
		c.CurrentPhase = models.PhaseDone
	} else {
		c.CurrentSectionIndex++
	}
	c.Touch()
	return nil
}

// StrategyFor returns the composition path used for task on case c. Reference
// patterns take precedence for sections, then the case's retrieval mode.
func StrategyFor(c *models.Case, task models.GenerationTask) models.Strategy {
	if task == models.TaskSection && len(c.ReferencePatterns) > 0 {
		return models.StrategyReferencePattern
	}
	switch c.RetrievalMode {
	case models.RetrievalKeyword:
		return models.StrategyKeyword
	case models.RetrievalVector:
		return models.StrategyVector
	}
	return models.StrategyBaseline
}

func (w *CaseWizard) retrieverFor(strategy models.Strategy) rag.Retriever {
	switch strategy {
	case models.StrategyKeyword:
		return w.keyword
	case models.StrategyVector:
		return w.vector
	}
	return nil
}

// generate runs retrieval, composition and generation for one task and
// records the attempt. It never touches the case.
func (w *CaseWizard) generate(ctx context.Context, c *models.Case, req prompt.Request) (string, error) {
	if w.generator == nil {
		return "", fmt.Errorf("%w: no generator configured", llm.ErrGeneration)
	}

	req.Strategy = StrategyFor(c, req.Task)
	if r := w.retrieverFor(req.Strategy); r != nil {
		query := prompt.RetrievalQuery(req.Task, req.Section, req.Strategy)
		req.Documents = r.Retrieve(ctx, query, prompt.RetrievalContext(req.Task, c.Facts, c.Summary, c.ViabilityOpinion))
	} else if req.Strategy == models.StrategyKeyword || req.Strategy == models.StrategyVector {
		w.log.Warn("No retriever configured for strategy", "strategy", req.Strategy)
	}

	p, err := w.composer.Compose(req)
	if err != nil {
		return "", err
	}

	text, err := w.generator.Generate(ctx, llm.Request{
		System:      p.System,
		Prompt:      p.User,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: empty response", llm.ErrGeneration)
	}
	if err != nil && !errors.Is(err, llm.ErrGeneration) {
		err = fmt.Errorf("%w: %w", llm.ErrGeneration, err)
	}

	metrics.ObserveGeneration(string(req.Task), string(p.Path), err)
	w.record(ctx, c, req, p.Path, err)

	if err != nil {
		w.log.Error("Generation failed", "case_id", c.ID, "task", req.Task, "strategy", p.Path, "error", err)
		return "", err
	}
	w.log.Info("Generation completed", "case_id", c.ID, "task", req.Task, "strategy", p.Path, "documents", len(req.Documents))
	return strings.TrimSpace(text), nil
}

func (w *CaseWizard) record(ctx context.Context, c *models.Case, req prompt.Request, path models.Strategy, genErr error) {
	if w.attempts == nil {
		return
	}
	attempt := &models.GenerationAttempt{
		ID:             uuid.New(),
		CaseID:         c.ID,
		Task:           req.Task,
		Strategy:       path,
		RetrievedCount: len(req.Documents),
		WithFeedback:   req.Feedback != "",
		Status:         models.AttemptCompleted,
		CreatedAt:      w.now(),
	}
	if req.Task == models.TaskSection {
		title := req.Section
		attempt.Section = &title
	}
	if genErr != nil {
		msg := genErr.Error()
		attempt.Status = models.AttemptFailed
		attempt.ErrorMessage = &msg
	}
	if err := w.attempts.Record(ctx, attempt); err != nil {
		w.log.Warn("Failed to record generation attempt", "case_id", c.ID, "error", err)
	}
}
