package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"contratorealidad-backend/intake"
	"contratorealidad-backend/llm"
	"contratorealidad-backend/models"
	"contratorealidad-backend/prompt"
	"contratorealidad-backend/rag"
	"contratorealidad-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFacts = "La demandante trabajó como jefe de enfermería bajo contratos de prestación de servicios sucesivos, cumpliendo horario y órdenes de la coordinación."

// draftingCase returns a case positioned at the first section
func draftingCase(mode models.RetrievalMode) *models.Case {
	c := models.NewCase(mode)
	c.Facts = sampleFacts
	c.Summary = "resumen"
	c.ViabilityOpinion = "concepto"
	c.LawyerName = "Dra. Pérez"
	c.CurrentPhase = models.PhaseDraftSections
	return c
}

func TestSelectIntake(t *testing.T) {
	tests := []struct {
		method models.IntakeMethod
		want   models.Phase
	}{
		{models.IntakeTranscription, models.PhaseIntakeProcess},
		{models.IntakeCaseFile, models.PhaseIntakeProcess},
		{models.IntakeManual, models.PhaseFactsAndSummary},
	}
	w := NewCaseWizard()
	for _, tt := range tests {
		c := models.NewCase("")
		require.NoError(t, w.SelectIntake(c, tt.method))
		assert.Equal(t, tt.want, c.CurrentPhase, tt.method)
		assert.Equal(t, tt.method, c.IntakeMethod)
	}

	c := models.NewCase("")
	err := w.SelectIntake(c, "fax")
	assert.ErrorIs(t, err, ErrInputValidation)
	assert.Equal(t, models.PhaseIntakeSelect, c.CurrentPhase)

	c.CurrentPhase = models.PhaseDone
	assert.ErrorIs(t, w.SelectIntake(c, models.IntakeManual), ErrInvalidTransition)
}

func TestProcessIntakeTranscription(t *testing.T) {
	w := NewCaseWizard(WizardWithTranscriber(&fakeTranscriber{text: "  relato de la entrevista  "}))
	c := models.NewCase("")
	require.NoError(t, w.SelectIntake(c, models.IntakeTranscription))

	err := w.ProcessIntake(context.Background(), c, IntakeInput{Data: []byte("audio"), Filename: "entrevista.mp3"})
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFactsAndSummary, c.CurrentPhase)
	assert.Equal(t, "relato de la entrevista", c.Facts)
	assert.Equal(t, c.Facts, c.Transcription)
	assert.Equal(t, "whisper-1", c.TranscriptionModel)
	assert.NotNil(t, c.TranscribedAt)
}

func TestProcessIntakeFailureLeavesCaseUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		wizard  *CaseWizard
		method  models.IntakeMethod
		input   IntakeInput
		wantErr error
	}{
		{
			name:    "audio too large",
			wizard:  NewCaseWizard(WizardWithTranscriber(&fakeTranscriber{text: "x"})),
			method:  models.IntakeTranscription,
			input:   IntakeInput{Data: make([]byte, intake.MaxAudioBytes+1), Filename: "a.mp3"},
			wantErr: intake.ErrFileTooLarge,
		},
		{
			name:    "unsupported audio",
			wizard:  NewCaseWizard(WizardWithTranscriber(&fakeTranscriber{text: "x"})),
			method:  models.IntakeTranscription,
			input:   IntakeInput{Data: []byte("x"), Filename: "a.txt"},
			wantErr: intake.ErrUnsupportedFormat,
		},
		{
			name:    "provider failure",
			wizard:  NewCaseWizard(WizardWithTranscriber(&fakeTranscriber{err: errors.New("boom")})),
			method:  models.IntakeTranscription,
			input:   IntakeInput{Data: []byte("x"), Filename: "a.mp3"},
			wantErr: intake.ErrTranscription,
		},
		{
			name:    "short text file",
			wizard:  NewCaseWizard(),
			method:  models.IntakeCaseFile,
			input:   IntakeInput{Data: []byte("muy corto"), Filename: "expediente.txt", MimeType: "text/plain"},
			wantErr: intake.ErrInsufficientText,
		},
		{
			name:    "empty upload",
			wizard:  NewCaseWizard(),
			method:  models.IntakeCaseFile,
			input:   IntakeInput{},
			wantErr: ErrInputValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.NewCase("")
			require.NoError(t, tt.wizard.SelectIntake(c, tt.method))
			before := *c

			err := tt.wizard.ProcessIntake(context.Background(), c, tt.input)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, before.CurrentPhase, c.CurrentPhase)
			assert.Empty(t, c.Facts)
			assert.Empty(t, c.Transcription)
		})
	}
}

func TestProcessIntakeCaseFile(t *testing.T) {
	ocr := &fakeOCR{text: strings.Repeat("texto escaneado ", 10)}
	w := NewCaseWizard(WizardWithOCR(ocr))

	c := models.NewCase("")
	require.NoError(t, w.SelectIntake(c, models.IntakeCaseFile))
	err := w.ProcessIntake(context.Background(), c, IntakeInput{
		Data:     []byte(sampleFacts),
		Filename: "expediente.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, sampleFacts, c.Facts)
	assert.Equal(t, 0, ocr.calls)

	c = models.NewCase("")
	require.NoError(t, w.SelectIntake(c, models.IntakeCaseFile))
	err = w.ProcessIntake(context.Background(), c, IntakeInput{
		Data:     []byte("%PDF-1.4"),
		Filename: "escaneo.pdf",
		UseOCR:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, ocr.text, c.Facts)
	assert.Equal(t, 1, ocr.calls)
}

func TestCancelIntake(t *testing.T) {
	w := NewCaseWizard()
	c := models.NewCase("")
	assert.ErrorIs(t, w.CancelIntake(c), ErrInvalidTransition)

	require.NoError(t, w.SelectIntake(c, models.IntakeCaseFile))
	require.NoError(t, w.CancelIntake(c))
	assert.Equal(t, models.PhaseIntakeSelect, c.CurrentPhase)
}

func TestSetFacts(t *testing.T) {
	w := NewCaseWizard()
	c := models.NewCase("")
	assert.ErrorIs(t, w.SetFacts(c, sampleFacts), ErrInvalidTransition)

	require.NoError(t, w.SelectIntake(c, models.IntakeManual))
	assert.ErrorIs(t, w.SetFacts(c, "   "), ErrInputValidation)
	require.NoError(t, w.SetFacts(c, "  "+sampleFacts+"\n"))
	assert.Equal(t, sampleFacts, c.Facts)
}

func TestGenerateSummaryRequiresFacts(t *testing.T) {
	gen := &fakeGenerator{}
	w := NewCaseWizard(WizardWithGenerator(gen))
	c := models.NewCase("")
	c.CurrentPhase = models.PhaseFactsAndSummary

	err := w.GenerateSummary(context.Background(), c)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "facts", verr.Field)
	assert.Empty(t, gen.calls())
}

func TestGenerationFailureKeepsPreviousValue(t *testing.T) {
	gen := &fakeGenerator{}
	attempts := repository.NewMemoryAttemptStore()
	w := NewCaseWizard(WizardWithGenerator(gen), WizardWithAttemptRecorder(attempts))
	ctx := context.Background()

	c := models.NewCase("")
	c.CurrentPhase = models.PhaseFactsAndSummary
	c.Facts = sampleFacts

	require.NoError(t, w.GenerateSummary(ctx, c))
	assert.Equal(t, "texto generado", c.Summary)

	gen.fail = true
	err := w.GenerateSummary(ctx, c)
	assert.ErrorIs(t, err, llm.ErrGeneration)
	assert.Equal(t, "texto generado", c.Summary)

	recorded, err := attempts.ListByCaseID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	assert.Equal(t, models.AttemptCompleted, recorded[0].Status)
	assert.Equal(t, models.AttemptFailed, recorded[1].Status)
	require.NotNil(t, recorded[1].ErrorMessage)
	assert.Contains(t, *recorded[1].ErrorMessage, "provider unavailable")
}

func TestEmptyGenerationIsAnError(t *testing.T) {
	gen := &fakeGenerator{reply: func(llm.Request) string { return "  " }}
	w := NewCaseWizard(WizardWithGenerator(gen))
	c := models.NewCase("")
	c.CurrentPhase = models.PhaseViabilityAssessment
	c.Facts = sampleFacts

	err := w.GenerateViability(context.Background(), c)
	assert.ErrorIs(t, err, llm.ErrGeneration)
	assert.Empty(t, c.ViabilityOpinion)
}

func TestAdvancePreconditions(t *testing.T) {
	w := NewCaseWizard()

	c := models.NewCase("")
	c.CurrentPhase = models.PhaseFactsAndSummary
	c.Facts = sampleFacts
	err := w.Advance(c)
	assert.ErrorIs(t, err, ErrInputValidation)
	assert.Equal(t, models.PhaseFactsAndSummary, c.CurrentPhase, "empty summary keeps the phase")

	c.Summary = "resumen"
	require.NoError(t, w.Advance(c))
	assert.Equal(t, models.PhaseViabilityAssessment, c.CurrentPhase)

	assert.ErrorIs(t, w.Advance(c), ErrInputValidation)
	assert.Equal(t, models.PhaseViabilityAssessment, c.CurrentPhase)

	c.ViabilityOpinion = "concepto"
	require.NoError(t, w.Advance(c))
	assert.Equal(t, models.PhasePowerOfAttorney, c.CurrentPhase)

	require.NoError(t, w.Advance(c))
	assert.Equal(t, models.PhaseDraftSections, c.CurrentPhase)
	assert.Equal(t, 0, c.CurrentSectionIndex)

	for _, phase := range []models.Phase{models.PhaseIntakeSelect, models.PhaseIntakeProcess, models.PhaseDraftSections, models.PhaseDone} {
		c.CurrentPhase = phase
		assert.ErrorIs(t, w.Advance(c), ErrInvalidTransition, phase)
		assert.Equal(t, phase, c.CurrentPhase)
	}
}

func TestBack(t *testing.T) {
	w := NewCaseWizard()
	tests := []struct {
		from      models.Phase
		index     int
		wantPhase models.Phase
		wantIndex int
	}{
		{models.PhaseIntakeProcess, 0, models.PhaseIntakeSelect, 0},
		{models.PhaseFactsAndSummary, 0, models.PhaseIntakeSelect, 0},
		{models.PhaseViabilityAssessment, 0, models.PhaseFactsAndSummary, 0},
		{models.PhasePowerOfAttorney, 0, models.PhaseViabilityAssessment, 0},
		{models.PhaseDraftSections, 3, models.PhaseDraftSections, 2},
		{models.PhaseDraftSections, 0, models.PhasePowerOfAttorney, 0},
	}
	for _, tt := range tests {
		c := models.NewCase("")
		c.CurrentPhase = tt.from
		c.CurrentSectionIndex = tt.index
		require.NoError(t, w.Back(c))
		assert.Equal(t, tt.wantPhase, c.CurrentPhase, tt.from)
		assert.Equal(t, tt.wantIndex, c.CurrentSectionIndex, tt.from)
	}

	for _, phase := range []models.Phase{models.PhaseIntakeSelect, models.PhaseDone} {
		c := models.NewCase("")
		c.CurrentPhase = phase
		assert.ErrorIs(t, w.Back(c), ErrInvalidTransition)
	}
}

func TestSetLawyerName(t *testing.T) {
	w := NewCaseWizard()
	c := models.NewCase("")
	assert.ErrorIs(t, w.SetLawyerName(c, " "), ErrInputValidation)
	require.NoError(t, w.SetLawyerName(c, " Dra. Pérez "))
	assert.Equal(t, "Dra. Pérez", c.LawyerName)

	c.CurrentPhase = models.PhaseDone
	assert.ErrorIs(t, w.SetLawyerName(c, "Otro"), ErrInvalidTransition)
}

func TestSetPowerOfAttorney(t *testing.T) {
	w := NewCaseWizard()
	c := models.NewCase("")

	require.NoError(t, w.SetPowerOfAttorney(c, models.PowerOfAttorneyFields{"nombre_poderdante": "ANA RUIZ"}))
	require.NoError(t, w.SetPowerOfAttorney(c, models.PowerOfAttorneyFields{"cargo_laboral": "Auxiliar"}))
	assert.Equal(t, "ANA RUIZ", c.PowerOfAttorney["nombre_poderdante"])
	assert.Equal(t, "Auxiliar", c.PowerOfAttorney["cargo_laboral"])

	err := w.SetPowerOfAttorney(c, models.PowerOfAttorneyFields{"firma": "x"})
	assert.ErrorIs(t, err, ErrInputValidation)
	assert.NotContains(t, c.PowerOfAttorney, "firma")
}

func TestDraftSectionRequiresLawyerName(t *testing.T) {
	gen := &fakeGenerator{}
	w := NewCaseWizard(WizardWithGenerator(gen))
	c := draftingCase("")
	c.LawyerName = ""

	err := w.DraftSection(context.Background(), c)
	assert.ErrorIs(t, err, ErrInputValidation)
	assert.Empty(t, gen.calls())
	assert.Empty(t, c.Sections[0].Content)
}

func TestDraftSectionIsNoOpWhenFilled(t *testing.T) {
	gen := &fakeGenerator{}
	w := NewCaseWizard(WizardWithGenerator(gen))
	c := draftingCase("")
	c.Sections[0].Content = "ya redactada"

	require.NoError(t, w.DraftSection(context.Background(), c))
	assert.Empty(t, gen.calls())
	assert.Equal(t, "ya redactada", c.Sections[0].Content)
}

func TestAcceptSectionNeverSkips(t *testing.T) {
	w := NewCaseWizard()
	c := draftingCase("")

	err := w.AcceptSection(c)
	assert.ErrorIs(t, err, ErrInputValidation)
	assert.Equal(t, 0, c.CurrentSectionIndex)

	for i := 0; i < models.SectionCount; i++ {
		assert.Equal(t, i, c.CurrentSectionIndex)
		c.SetCurrentSectionContent("contenido")
		require.NoError(t, w.AcceptSection(c))
	}
	assert.Equal(t, models.PhaseDone, c.CurrentPhase)
	assert.Equal(t, models.SectionCount-1, c.CurrentSectionIndex)
	assert.ErrorIs(t, w.AcceptSection(c), ErrInvalidTransition)
}

func TestReviseSectionReplacesDraft(t *testing.T) {
	gen := &fakeGenerator{}
	attempts := repository.NewMemoryAttemptStore()
	w := NewCaseWizard(WizardWithGenerator(gen), WizardWithAttemptRecorder(attempts))
	ctx := context.Background()
	c := draftingCase("")

	require.NoError(t, w.DraftSection(ctx, c))
	first := c.Sections[0].Content

	gen.reply = func(llm.Request) string { return "versión corregida" }
	assert.ErrorIs(t, w.ReviseSection(ctx, c, " "), ErrInputValidation)
	require.NoError(t, w.ReviseSection(ctx, c, "incluir fechas exactas"))

	assert.Equal(t, "versión corregida", c.Sections[0].Content)
	assert.NotContains(t, c.Sections[0].Content, first)

	calls := gen.calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Prompt, "COMENTARIOS ADICIONALES DEL USUARIO")
	assert.Contains(t, calls[1].Prompt, "incluir fechas exactas")
	assert.NotContains(t, calls[1].Prompt, first, "previous draft is not fed back")

	recorded, _ := attempts.ListByCaseID(ctx, c.ID)
	require.Len(t, recorded, 2)
	assert.False(t, recorded[0].WithFeedback)
	assert.True(t, recorded[1].WithFeedback)
	require.NotNil(t, recorded[1].Section)
	assert.Equal(t, "I. Hechos", *recorded[1].Section)
}

func TestStrategyFor(t *testing.T) {
	withPatterns := models.NewCase(models.RetrievalVector)
	withPatterns.ReferencePatterns = models.ReferencePatterns{"I. Hechos": {}}

	tests := []struct {
		name string
		c    *models.Case
		task models.GenerationTask
		want models.Strategy
	}{
		{"baseline", models.NewCase(models.RetrievalNone), models.TaskSummary, models.StrategyBaseline},
		{"keyword", models.NewCase(models.RetrievalKeyword), models.TaskViability, models.StrategyKeyword},
		{"vector", models.NewCase(models.RetrievalVector), models.TaskSection, models.StrategyVector},
		{"patterns win for sections", withPatterns, models.TaskSection, models.StrategyReferencePattern},
		{"patterns ignored for summary", withPatterns, models.TaskSummary, models.StrategyVector},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrategyFor(tt.c, tt.task), tt.name)
	}
}

func TestKeywordStrategyAddsRetrievedBlock(t *testing.T) {
	gen := &fakeGenerator{}
	keyword := &fakeRetriever{docs: []rag.Document{{Content: "El contrato realidad...", Source: "Doctrina legal"}}}
	attempts := repository.NewMemoryAttemptStore()
	w := NewCaseWizard(
		WizardWithGenerator(gen),
		WizardWithKeywordRetriever(keyword),
		WizardWithAttemptRecorder(attempts),
	)
	ctx := context.Background()

	c := models.NewCase(models.RetrievalKeyword)
	c.CurrentPhase = models.PhaseFactsAndSummary
	c.Facts = sampleFacts
	require.NoError(t, w.GenerateSummary(ctx, c))

	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, prompt.RetrievedBlockHeading)
	assert.Contains(t, calls[0].Prompt, "1. El contrato realidad... (Fuente: Doctrina legal)")
	assert.Equal(t, 1500, calls[0].MaxTokens)
	assert.Equal(t, 1, keyword.count())

	recorded, _ := attempts.ListByCaseID(ctx, c.ID)
	require.Len(t, recorded, 1)
	assert.Equal(t, models.StrategyKeyword, recorded[0].Strategy)
	assert.Equal(t, 1, recorded[0].RetrievedCount)
}

func TestVectorStrategyWithFailingEmbedder(t *testing.T) {
	gen := &fakeGenerator{}
	failing := llm.EmbedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, llm.ErrEmbedding
	})
	w := NewCaseWizard(
		WizardWithGenerator(gen),
		WizardWithVectorRetriever(rag.NewVectorRetriever(failing)),
	)

	c := models.NewCase(models.RetrievalVector)
	c.CurrentPhase = models.PhaseFactsAndSummary
	c.Facts = sampleFacts
	require.NoError(t, w.GenerateSummary(context.Background(), c))

	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].Prompt, prompt.RetrievedBlockHeading)
	assert.Equal(t, "texto generado", c.Summary)
}

func TestReferencePatternOverridesVector(t *testing.T) {
	gen := &fakeGenerator{}
	vector := &fakeRetriever{docs: []rag.Document{{Content: "x", Source: "y"}}}
	attempts := repository.NewMemoryAttemptStore()
	w := NewCaseWizard(
		WizardWithGenerator(gen),
		WizardWithVectorRetriever(vector),
		WizardWithAttemptRecorder(attempts),
	)
	ctx := context.Background()

	c := draftingCase(models.RetrievalVector)
	c.ReferencePatterns = models.ReferencePatterns{
		"I. Hechos": {Estructura: "numerada", Estilo: "formal", Elementos: []string{"fechas"}},
	}
	require.NoError(t, w.DraftSection(ctx, c))

	assert.Equal(t, 0, vector.count())
	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "numerada")

	recorded, _ := attempts.ListByCaseID(ctx, c.ID)
	require.Len(t, recorded, 1)
	assert.Equal(t, models.StrategyReferencePattern, recorded[0].Strategy)
	assert.Equal(t, 0, recorded[0].RetrievedCount)
}
