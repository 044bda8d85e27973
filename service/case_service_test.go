package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"contratorealidad-backend/llm"
	"contratorealidad-backend/models"
	"contratorealidad-backend/repository"
	"contratorealidad-backend/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCaseService(t *testing.T, gen *fakeGenerator, opts ...CaseServiceOption) *CaseService {
	t.Helper()
	attempts := repository.NewMemoryAttemptStore()
	wizard := NewCaseWizard(
		WizardWithGenerator(gen),
		WizardWithAttemptRecorder(attempts),
		WizardWithTranscriber(&fakeTranscriber{text: sampleFacts}),
	)
	base := []CaseServiceOption{
		CaseWithWizard(wizard),
		CaseWithAttemptStore(attempts),
	}
	return NewCaseService(append(base, opts...)...)
}

func TestCreateCase(t *testing.T) {
	svc := newTestCaseService(t, &fakeGenerator{})
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, CreateCaseRequest{RetrievalMode: models.RetrievalVector, LawyerName: " Dra. Pérez "})
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIntakeSelect, c.CurrentPhase)
	assert.Equal(t, "Dra. Pérez", c.LawyerName)

	got, err := svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RetrievalVector, got.RetrievalMode)

	_, err = svc.CreateCase(ctx, CreateCaseRequest{RetrievalMode: "graph"})
	assert.ErrorIs(t, err, ErrInputValidation)

	require.NoError(t, svc.DeleteCase(ctx, c.ID))
	_, err = svc.GetCase(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrCaseNotFound)
}

func TestFullFlowFillsEverySectionInOrder(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestCaseService(t, gen)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, CreateCaseRequest{LawyerName: "Dra. Pérez"})
	require.NoError(t, err)
	id := c.ID

	_, err = svc.SelectIntake(ctx, id, models.IntakeManual)
	require.NoError(t, err)
	_, err = svc.SetFacts(ctx, id, sampleFacts)
	require.NoError(t, err)
	_, err = svc.GenerateSummary(ctx, id)
	require.NoError(t, err)

	res, err := svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseViabilityAssessment, res.Case.CurrentPhase)

	_, err = svc.GenerateViability(ctx, id)
	require.NoError(t, err)
	res, err = svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhasePowerOfAttorney, res.Case.CurrentPhase)

	res, err = svc.Advance(ctx, id)
	require.NoError(t, err)
	require.NoError(t, res.Warning)
	assert.Equal(t, "Contenido de I. Hechos", res.Case.Sections[0].Content, "first section drafted on entry")

	for i := 0; i < models.SectionCount; i++ {
		res, err = svc.AcceptSection(ctx, id)
		require.NoError(t, err)
		require.NoError(t, res.Warning)
	}

	final, err := svc.GetCase(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseDone, final.CurrentPhase)
	assert.True(t, final.Sections.Complete())
	for i, sec := range final.Sections {
		assert.Equal(t, models.SectionTitles[i], sec.Title)
		assert.Equal(t, "Contenido de "+models.SectionTitles[i], sec.Content)
	}

	assert.Equal(t, 1, gen.countTokens(1000), "summary generated once")
	assert.Equal(t, 1, gen.countTokens(1200), "viability generated once")
	assert.Equal(t, models.SectionCount, gen.countTokens(5000))

	recorded, err := svc.ListAttempts(ctx, id)
	require.NoError(t, err)
	require.Len(t, recorded, 2+models.SectionCount)
	for i, a := range recorded[2:] {
		require.NotNil(t, a.Section)
		assert.Equal(t, models.SectionTitles[i], *a.Section)
		assert.Equal(t, models.StrategyBaseline, a.Strategy)
	}

	doc, err := svc.ExportLawsuit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "demanda_contrato_realidad.docx", doc.Filename)
	assert.NotEmpty(t, doc.Data)
}

func TestAdvanceWithEmptySummaryKeepsStoredCase(t *testing.T) {
	svc := newTestCaseService(t, &fakeGenerator{})
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, CreateCaseRequest{})
	require.NoError(t, err)
	_, err = svc.SelectIntake(ctx, c.ID, models.IntakeManual)
	require.NoError(t, err)
	_, err = svc.SetFacts(ctx, c.ID, sampleFacts)
	require.NoError(t, err)

	_, err = svc.Advance(ctx, c.ID)
	assert.ErrorIs(t, err, ErrInputValidation)

	stored, err := svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFactsAndSummary, stored.CurrentPhase)
}

func TestAutoDraftFailureIsAWarning(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestCaseService(t, gen)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, CreateCaseRequest{LawyerName: "Dra. Pérez"})
	require.NoError(t, err)
	c.CurrentPhase = models.PhaseDraftSections
	c.Facts = sampleFacts
	c.Sections[0].Content = "aceptable"
	require.NoError(t, svc.store.Save(ctx, c))

	gen.fail = true
	res, err := svc.AcceptSection(ctx, c.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, res.Warning, llm.ErrGeneration)
	assert.Equal(t, 1, res.Case.CurrentSectionIndex)
	assert.Empty(t, res.Case.Sections[1].Content)

	stored, err := svc.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentSectionIndex, "accept is saved even though the draft failed")

	gen.fail = false
	retried, err := svc.DraftSection(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Contenido de II. Peticiones", retried.Sections[1].Content)
}

func TestNoAutoDraftWithoutLawyerName(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestCaseService(t, gen)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, CreateCaseRequest{})
	require.NoError(t, err)
	c.CurrentPhase = models.PhasePowerOfAttorney
	require.NoError(t, svc.store.Save(ctx, c))

	res, err := svc.Advance(ctx, c.ID)
	require.NoError(t, err)
	assert.NoError(t, res.Warning)
	assert.Equal(t, models.PhaseDraftSections, res.Case.CurrentPhase)
	assert.Empty(t, gen.calls())
}

func TestCreateCaseCopiesPublishedPatterns(t *testing.T) {
	ctx := context.Background()
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	published := models.ReferencePatterns{"I. Hechos": {Estilo: "formal"}}
	data, _ := json.Marshal(published)
	require.NoError(t, st.Put(ctx, "patterns/p.json", strings.NewReader(string(data))))

	patterns := NewPatternService(PatternsWithStorage(st, "patterns/p.json"))
	patterns.Load(ctx)

	svc := newTestCaseService(t, &fakeGenerator{}, CaseWithPatternService(patterns))
	first, err := svc.CreateCase(ctx, CreateCaseRequest{})
	require.NoError(t, err)
	second, err := svc.CreateCase(ctx, CreateCaseRequest{})
	require.NoError(t, err)

	assert.Equal(t, published, first.ReferencePatterns)
	first.ReferencePatterns["II. Peticiones"] = models.ReferencePattern{}
	assert.Len(t, second.ReferencePatterns, 1, "cases do not share the pattern map")
}

func TestProcessIntakeStoresUpload(t *testing.T) {
	ctx := context.Background()
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := newTestCaseService(t, &fakeGenerator{}, CaseWithStorage(st))

	c, err := svc.CreateCase(ctx, CreateCaseRequest{})
	require.NoError(t, err)
	_, err = svc.SelectIntake(ctx, c.ID, models.IntakeTranscription)
	require.NoError(t, err)

	got, err := svc.ProcessIntake(ctx, c.ID, IntakeInput{Data: []byte("audio"), Filename: "entrevista.mp3", MimeType: "audio/mpeg"})
	require.NoError(t, err)
	require.NotNil(t, got.IntakeFileID)
	assert.Equal(t, sampleFacts, got.Facts)

	file, rc, err := svc.GetFile(ctx, *got.IntakeFileID)
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "audio", string(body))
	assert.Equal(t, models.IntakeFileAudio, file.Kind)

	doc, err := svc.ExportTranscription(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "transcripcion_entrevista.docx", doc.Filename)
}

func TestExportPreconditions(t *testing.T) {
	svc := newTestCaseService(t, &fakeGenerator{})
	ctx := context.Background()
	c, err := svc.CreateCase(ctx, CreateCaseRequest{})
	require.NoError(t, err)

	_, err = svc.ExportLawsuit(ctx, c.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.ExportViability(ctx, c.ID)
	assert.ErrorIs(t, err, ErrInputValidation)
	_, err = svc.ExportTranscription(ctx, c.ID)
	assert.ErrorIs(t, err, ErrInputValidation)

	doc, err := svc.ExportPowerOfAttorney(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "poder_especial.docx", doc.Filename)

	_, err = svc.ExportLawsuit(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrCaseNotFound)
}

func TestAnalyzeReferenceDocument(t *testing.T) {
	reply := "```json\n" + `{"I. Hechos":{"estructura":"numerada","estilo":"formal","elementos":["fechas"],"formulas_legales":[],"ejemplo_extracto":"PRIMERO"},"Otra sección":{}}` + "\n```"
	gen := &fakeGenerator{reply: func(llm.Request) string { return reply }}
	patterns := NewPatternService(PatternsWithGenerator(gen))
	svc := newTestCaseService(t, gen, CaseWithPatternService(patterns))
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, CreateCaseRequest{RetrievalMode: models.RetrievalKeyword})
	require.NoError(t, err)

	got, err := svc.AnalyzeReferenceDocument(ctx, c.ID, IntakeInput{
		Data:     []byte(strings.Repeat("demanda de referencia ", 10)),
		Filename: "referencia.txt",
	})
	require.NoError(t, err)
	require.Len(t, got.ReferencePatterns, 1)
	assert.Equal(t, "numerada", got.ReferencePatterns["I. Hechos"].Estructura)
	assert.Equal(t, models.StrategyReferencePattern, StrategyFor(got, models.TaskSection))
}
