package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snippet is one legal text fragment of the knowledge base
type Snippet struct {
	Content   string `json:"content"`
	Source    string `json:"source,omitempty"`
	AddedDate string `json:"added_date,omitempty"`
}

// MarshalJSON writes seed snippets (no source, no date) as bare strings so the
// persisted file stays close to a hand-edited one.
func (s Snippet) MarshalJSON() ([]byte, error) {
	if s.Source == "" && s.AddedDate == "" {
		return json.Marshal(s.Content)
	}
	type plain Snippet
	return json.Marshal(plain(s))
}

// UnmarshalJSON accepts a string or an object.
func (s *Snippet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Snippet{Content: text}
		return nil
	}
	type plain Snippet
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Snippet(p)
	return nil
}

// Snippets is the list stored under one document type
type Snippets []Snippet

// UnmarshalJSON accepts a single string or a list of strings and objects.
func (s *Snippets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = nil
		return nil
	}
	switch data[0] {
	case '"', '{':
		var one Snippet
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = Snippets{one}
		return nil
	case '[':
		var list []Snippet
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("unexpected snippet list: %.20s", data)
}

// KnowledgeBase maps category -> document type -> snippets
type KnowledgeBase map[string]map[string]Snippets

// Clone deep-copies the knowledge base
func (kb KnowledgeBase) Clone() KnowledgeBase {
	out := make(KnowledgeBase, len(kb))
	for cat, types := range kb {
		m := make(map[string]Snippets, len(types))
		for t, list := range types {
			m[t] = append(Snippets(nil), list...)
		}
		out[cat] = m
	}
	return out
}

// KnowledgeSearchResult is one match of a knowledge base search
type KnowledgeSearchResult struct {
	Category  string `json:"category"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	AddedDate string `json:"added_date,omitempty"`
}

// CorpusMetadata describes a vector corpus entry
type CorpusMetadata struct {
	Type     string `json:"tipo"`
	Source   string `json:"fuente"`
	Category string `json:"categoria"`
}

// CorpusEntry is one document of the vector retrieval corpus
type CorpusEntry struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata CorpusMetadata `json:"metadata"`
}
