package rag

import (
	"context"
	"math"
	"sort"
	"strings"

	"contratorealidad-backend/llm"
	"contratorealidad-backend/logger"
	"contratorealidad-backend/metrics"
	"contratorealidad-backend/models"
)

// SimilarityThreshold is the minimum cosine similarity (exclusive) for a
// corpus entry to be returned.
const SimilarityThreshold = 0.3

// VectorRetriever ranks a fixed corpus by embedding similarity
type VectorRetriever struct {
	embedder llm.Embedder
	corpus   []models.CorpusEntry
	cache    *EmbeddingCache
	log      *logger.Logger
}

// VectorRetrieverOption is a functional option for VectorRetriever
type VectorRetrieverOption func(*VectorRetriever)

// VectorWithCorpus replaces the default corpus
func VectorWithCorpus(corpus []models.CorpusEntry) VectorRetrieverOption {
	return func(r *VectorRetriever) {
		r.corpus = corpus
	}
}

// VectorWithCache shares an embedding cache
func VectorWithCache(cache *EmbeddingCache) VectorRetrieverOption {
	return func(r *VectorRetriever) {
		r.cache = cache
	}
}

// VectorWithLogger sets the logger
func VectorWithLogger(log *logger.Logger) VectorRetrieverOption {
	return func(r *VectorRetriever) {
		r.log = log.With("service", "VectorRetriever")
	}
}

func NewVectorRetriever(embedder llm.Embedder, opts ...VectorRetrieverOption) *VectorRetriever {
	r := &VectorRetriever{
		embedder: embedder,
		corpus:   DefaultCorpus(),
		cache:    NewEmbeddingCache(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scoredEntry struct {
	entry models.CorpusEntry
	score float64
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query, caseContext string) []Document {
	docs := []Document{}
	searchText := strings.TrimSpace(query + " " + caseContext)

	queryVec, err := r.cache.Embed(ctx, r.embedder, searchText)
	if err != nil {
		r.log.Warn("query embedding failed, continuing without retrieval", "error", err)
		metrics.ObserveRetrieval("vector", 0)
		return docs
	}

	scored := make([]scoredEntry, 0, len(r.corpus))
	for _, e := range r.corpus {
		vec, err := r.cache.Embed(ctx, r.embedder, e.Content)
		if err != nil {
			r.log.Warn("corpus embedding failed, skipping entry", "id", e.ID, "error", err)
			continue
		}
		scored = append(scored, scoredEntry{entry: e, score: cosineSimilarity(queryVec, vec)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	for _, s := range scored {
		if s.score <= SimilarityThreshold {
			continue
		}
		docs = append(docs, Document{
			Content: s.entry.Content,
			Source:  s.entry.Metadata.Source,
			Type:    s.entry.Metadata.Type,
			Score:   s.score,
		})
		if len(docs) == MaxDocuments {
			break
		}
	}

	metrics.ObserveRetrieval("vector", len(docs))
	return docs
}

// cosineSimilarity returns 0 for mismatched lengths or zero-norm vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
