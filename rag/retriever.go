// Package rag holds the legal knowledge base and the two retrieval
// strategies that feed generation prompts.
package rag

import "context"

// MaxDocuments caps every retrieval result
const MaxDocuments = 5

// Document is one retrieved legal snippet
type Document struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Type    string  `json:"type"`
	Score   float64 `json:"score,omitempty"`
}

// Retriever returns up to MaxDocuments snippets relevant to query and context.
// Retrieval never fails: a strategy that cannot answer returns no documents.
type Retriever interface {
	Retrieve(ctx context.Context, query, caseContext string) []Document
}
