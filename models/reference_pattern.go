package models

import (
	"database/sql/driver"
	"encoding/json"
)

// ReferencePattern describes how one section is written in a reference lawsuit.
// Field names follow the patterns JSON produced by the analysis step.
type ReferencePattern struct {
	Estructura      string   `json:"estructura"`
	Estilo          string   `json:"estilo"`
	Elementos       []string `json:"elementos"`
	FormulasLegales []string `json:"formulas_legales"`
	EjemploExtracto string   `json:"ejemplo_extracto"`
}

// ReferencePatterns maps a section title to its pattern
type ReferencePatterns map[string]ReferencePattern

// Value implements driver.Valuer for JSONB
func (p ReferencePatterns) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *ReferencePatterns) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	if len(bytes) == 0 {
		*p = nil
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Copy returns a shallow copy of the map so cases do not share it.
func (p ReferencePatterns) Copy() ReferencePatterns {
	if len(p) == 0 {
		return nil
	}
	out := make(ReferencePatterns, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
