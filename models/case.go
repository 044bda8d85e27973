package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Phase is a step of the case wizard
type Phase string

const (
	PhaseIntakeSelect        Phase = "intake_select"
	PhaseIntakeProcess       Phase = "intake_process"
	PhaseFactsAndSummary     Phase = "facts_and_summary"
	PhaseViabilityAssessment Phase = "viability_assessment"
	PhasePowerOfAttorney     Phase = "power_of_attorney"
	PhaseDraftSections       Phase = "draft_sections"
	PhaseDone                Phase = "done"
)

// RetrievalMode selects the retrieval strategy applied to every generation call of a case
type RetrievalMode string

const (
	RetrievalNone    RetrievalMode = "none"
	RetrievalKeyword RetrievalMode = "keyword"
	RetrievalVector  RetrievalMode = "vector"
)

// Valid reports whether m is a known retrieval mode
func (m RetrievalMode) Valid() bool {
	switch m {
	case RetrievalNone, RetrievalKeyword, RetrievalVector:
		return true
	}
	return false
}

// IntakeMethod is how the facts of a case are obtained
type IntakeMethod string

const (
	IntakeTranscription IntakeMethod = "transcription"
	IntakeCaseFile      IntakeMethod = "case_file"
	IntakeManual        IntakeMethod = "manual"
)

// SectionTitles is the fixed, ordered set of lawsuit sections.
var SectionTitles = []string{
	"I. Hechos",
	"II. Peticiones",
	"III. Petición Final",
	"IV. Fundamentos de derecho",
	"V. Normatividad y jurisprudencia aplicable al caso",
	"VI. Relación de medios probatorios",
	"VII. Cuantía",
	"VIII. Propuesta de fórmula de conciliación",
	"IX. Competencia",
	"X. Manifestación",
	"XI. Anexos",
	"XII. Notificaciones",
}

// SectionCount is the number of lawsuit sections
var SectionCount = len(SectionTitles)

// IsSectionTitle reports whether title is one of SectionTitles
func IsSectionTitle(title string) bool {
	for _, t := range SectionTitles {
		if t == title {
			return true
		}
	}
	return false
}

// Section is one drafted lawsuit section
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Sections keeps the lawsuit sections in their fixed order
type Sections []Section

// NewSections returns the twelve sections with empty content
func NewSections() Sections {
	s := make(Sections, len(SectionTitles))
	for i, t := range SectionTitles {
		s[i] = Section{Title: t}
	}
	return s
}

// Complete reports whether every section has content
func (s Sections) Complete() bool {
	if len(s) != len(SectionTitles) {
		return false
	}
	for _, sec := range s {
		if sec.Content == "" {
			return false
		}
	}
	return true
}

// Value implements driver.Valuer for JSONB
func (s Sections) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *Sections) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	if len(bytes) == 0 {
		*s = NewSections()
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Case is the unit of work for one lawsuit draft. Its ID doubles as the session id.
type Case struct {
	ID uuid.UUID `json:"id"`

	// Intake
	IntakeMethod  IntakeMethod `json:"intake_method,omitempty"`
	IntakeFileID  *uuid.UUID   `json:"intake_file_id,omitempty"`
	Transcription string       `json:"transcription,omitempty"`
	// Model that produced Transcription, shown on the exported transcript
	TranscriptionModel string     `json:"transcription_model,omitempty"`
	TranscribedAt      *time.Time `json:"transcribed_at,omitempty"`

	// Facts, summary and viability
	Facts            string `json:"facts"`
	Summary          string `json:"summary"`
	ViabilityOpinion string `json:"viability_opinion"`

	PowerOfAttorney PowerOfAttorneyFields `json:"power_of_attorney,omitempty"`

	// Drafting
	LawyerName          string            `json:"lawyer_name"`
	Sections            Sections          `json:"sections"`
	CurrentPhase        Phase             `json:"current_phase"`
	CurrentSectionIndex int               `json:"current_section_index"`
	RetrievalMode       RetrievalMode     `json:"retrieval_mode"`
	ReferencePatterns   ReferencePatterns `json:"reference_patterns,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCase returns a case at the first phase with all sections empty.
func NewCase(mode RetrievalMode) *Case {
	if mode == "" {
		mode = RetrievalNone
	}
	now := time.Now().UTC()
	return &Case{
		ID:            uuid.New(),
		Sections:      NewSections(),
		CurrentPhase:  PhaseIntakeSelect,
		RetrievalMode: mode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CurrentSection returns the section under drafting. ok is false outside DraftSections.
func (c *Case) CurrentSection() (Section, bool) {
	if c.CurrentPhase != PhaseDraftSections {
		return Section{}, false
	}
	if c.CurrentSectionIndex < 0 || c.CurrentSectionIndex >= len(c.Sections) {
		return Section{}, false
	}
	return c.Sections[c.CurrentSectionIndex], true
}

// SetCurrentSectionContent replaces the content of the current section.
func (c *Case) SetCurrentSectionContent(content string) {
	c.Sections[c.CurrentSectionIndex].Content = content
}

// Touch updates UpdatedAt
func (c *Case) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
