package rag

import (
	"context"
	"strings"

	"contratorealidad-backend/metrics"
)

type keywordGroup struct {
	triggers []string
	category string
	docType  string
	kind     string
	prefix   string
	source   string
}

// keywordGroups are checked in order; every matching group contributes all
// of its snippets before the result is capped.
var keywordGroups = []keywordGroup{
	{
		triggers: []string{"contrato realidad", "relación laboral", "subordinación"},
		category: "contrato_realidad", docType: "concepto", kind: "concepto",
		source: "Doctrina legal",
	},
	{
		triggers: []string{"contrato realidad", "relación laboral", "subordinación"},
		category: "contrato_realidad", docType: "elementos", kind: "elemento",
		prefix: "Elemento: ", source: "Código Sustantivo del Trabajo",
	},
	{
		triggers: []string{"jurisprudencia", "sentencia", "corte"},
		category: "contrato_realidad", docType: "jurisprudencia", kind: "jurisprudencia",
		prefix: "Jurisprudencia: ", source: "Corte Constitucional",
	},
	{
		triggers: []string{"norma", "artículo", "código", "ley"},
		category: "contrato_realidad", docType: "normativa", kind: "normativa",
		prefix: "Normativa: ", source: "Código Sustantivo del Trabajo",
	},
	{
		triggers: []string{"principio", "derecho", "protección"},
		category: "derecho_laboral_colombiano", docType: "principios", kind: "principio",
		prefix: "Principio: ", source: "Derecho Laboral Colombiano",
	},
	{
		triggers: []string{"demanda", "requisito", "proceso"},
		category: "demanda_laboral", docType: "requisitos", kind: "requisito",
		prefix: "Requisito: ", source: "Código de Procedimiento Laboral",
	},
}

// KeywordRetriever matches topic keywords against the query text
type KeywordRetriever struct {
	store *KnowledgeStore
}

func NewKeywordRetriever(store *KnowledgeStore) *KeywordRetriever {
	return &KeywordRetriever{store: store}
}

func (r *KeywordRetriever) Retrieve(ctx context.Context, query, caseContext string) []Document {
	text := strings.ToLower(query + " " + caseContext)

	docs := []Document{}
	for _, g := range keywordGroups {
		if !containsAny(text, g.triggers) {
			continue
		}
		for _, sn := range r.store.Snippets(g.category, g.docType) {
			source := g.source
			if sn.Source != "" {
				source = sn.Source
			}
			docs = append(docs, Document{
				Content: g.prefix + sn.Content,
				Source:  source,
				Type:    g.kind,
			})
		}
	}

	if len(docs) > MaxDocuments {
		docs = docs[:MaxDocuments]
	}
	metrics.ObserveRetrieval("keyword", len(docs))
	return docs
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
