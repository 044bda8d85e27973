// Package prompt builds the system instruction and user prompt for every
// generation task.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"contratorealidad-backend/models"
	"contratorealidad-backend/rag"
)

// MaxReferenceDocumentRunes bounds the reference lawsuit text sent for pattern analysis
const MaxReferenceDocumentRunes = 20000

var ErrUnknownTask = errors.New("unknown generation task")

// Request carries everything a prompt may draw from
type Request struct {
	Task     models.GenerationTask
	Strategy models.Strategy

	Facts   string
	Summary string
	Opinion string

	// Section drafting only
	Section  string
	Feedback string
	Pattern  *models.ReferencePattern

	// Documents are used by the keyword and vector strategies
	Documents []rag.Document
}

// Prompt is a composed generation call
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	Path        models.Strategy
}

type taskSettings struct {
	temperature float32
	maxTokens   int
}

var baseSettings = map[models.GenerationTask]taskSettings{
	models.TaskSummary:   {temperature: 0.3, maxTokens: 1000},
	models.TaskViability: {temperature: 0.4, maxTokens: 1200},
	models.TaskSection:   {temperature: 0.3, maxTokens: 5000},
}

// retrievalMaxTokens raises the budget of summary and viability prompts that
// carry retrieved documents
var retrievalMaxTokens = map[models.Strategy]int{
	models.StrategyKeyword: 1500,
	models.StrategyVector:  2000,
}

// Composer builds prompts. It holds no state.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// Compose returns the prompt for req. Path is always the strategy that shaped it.
func (c *Composer) Compose(req Request) (Prompt, error) {
	settings, ok := baseSettings[req.Task]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownTask, req.Task)
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = models.StrategyBaseline
	}

	p := Prompt{
		Temperature: settings.temperature,
		MaxTokens:   settings.maxTokens,
		Path:        strategy,
	}

	switch req.Task {
	case models.TaskSummary:
		p.System = summarySystem
		p.User = fmt.Sprintf(summaryTemplate, req.Facts)
	case models.TaskViability:
		p.System = viabilitySystem
		p.User = fmt.Sprintf(viabilityTemplate, req.Facts)
	case models.TaskSection:
		if strategy == models.StrategyReferencePattern {
			p.System = referenceSystem
			p.User = referenceSectionPrompt(req)
			return p, nil
		}
		p.System = sectionSystem
		p.User = sectionPrompt(req)
	}

	if strategy == models.StrategyKeyword || strategy == models.StrategyVector {
		p.System += citeSourcesSuffix
		p.User += RetrievedBlock(req.Documents)
		if req.Task != models.TaskSection {
			p.MaxTokens = retrievalMaxTokens[strategy]
		}
	}
	return p, nil
}

func sectionPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, sectionHeader, req.Section, req.Facts, req.Summary, req.Opinion)
	if fb := strings.TrimSpace(req.Feedback); fb != "" {
		fmt.Fprintf(&b, feedbackBlock, fb)
	}
	fmt.Fprintf(&b, sectionClosing, req.Section)
	return b.String()
}

func referenceSectionPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, sectionHeader, req.Section, req.Facts, req.Summary, req.Opinion)

	if req.Pattern != nil {
		pat := req.Pattern
		fmt.Fprintf(&b, referencePatternBlock,
			orDefault(pat.Estructura, "No especificada"),
			orDefault(pat.Estilo, "No especificado"),
			strings.Join(pat.Elementos, ", "),
			strings.Join(pat.FormulasLegales, ", "),
			orDefault(pat.EjemploExtracto, "No disponible"),
		)
	} else if g, ok := sectionGuides[req.Section]; ok {
		fmt.Fprintf(&b, sectionGuideBlock, g.description, g.typical)
	}

	if fb := strings.TrimSpace(req.Feedback); fb != "" {
		fmt.Fprintf(&b, feedbackBlock, fb)
	}
	b.WriteString(referenceInstructions)
	return b.String()
}

// RetrievedBlock renders documents as the numbered legal information block.
// An empty list renders nothing.
func RetrievedBlock(docs []rag.Document) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(retrievedHeader)
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s (Fuente: %s)\n", i+1, d.Content, d.Source)
	}
	return b.String()
}

// RetrievalQuery is the query text sent to a retriever for a task
func RetrievalQuery(task models.GenerationTask, section string, strategy models.Strategy) string {
	vector := strategy == models.StrategyVector
	switch task {
	case models.TaskSummary:
		return "Genera un resumen técnico jurídico de estos hechos para evaluar contrato realidad"
	case models.TaskViability:
		q := "Evalúa la viabilidad jurídica de una demanda por contrato realidad"
		if vector {
			q += ", considerando los elementos del contrato de trabajo y la jurisprudencia aplicable"
		}
		return q
	case models.TaskSection:
		q := fmt.Sprintf("Redacta la sección '%s' de una demanda laboral por contrato realidad", section)
		if vector {
			q += ", incluyendo fundamentos jurídicos y referencias legales"
		}
		return q
	}
	return ""
}

// RetrievalContext is the case text a retriever matches alongside the query
func RetrievalContext(task models.GenerationTask, facts, summary, opinion string) string {
	if task == models.TaskSection {
		return fmt.Sprintf("Resumen: %s\nConcepto: %s", summary, opinion)
	}
	return facts
}

// PatternAnalysis builds the prompt that extracts per-section writing patterns
// from a reference lawsuit.
func PatternAnalysis(documentText string) Prompt {
	var titles strings.Builder
	for i, t := range models.SectionTitles {
		fmt.Fprintf(&titles, "%d. %s\n", i+1, t)
	}
	return Prompt{
		System:      patternsSystem,
		User:        fmt.Sprintf(patternsTemplate, titles.String(), truncateRunes(documentText, MaxReferenceDocumentRunes)),
		Temperature: 0.2,
		MaxTokens:   6000,
		Path:        models.StrategyBaseline,
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
