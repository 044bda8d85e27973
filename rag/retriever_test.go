package rag

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"contratorealidad-backend/llm"
	"contratorealidad-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordRetriever(t *testing.T) {
	ctx := context.Background()
	r := NewKeywordRetriever(NewKnowledgeStore())

	t.Run("concept group first and capped", func(t *testing.T) {
		docs := r.Retrieve(ctx, "jurisprudencia contrato realidad", "")
		require.Len(t, docs, MaxDocuments)
		assert.Equal(t, "Doctrina legal", docs[0].Source)
		assert.Equal(t, "concepto", docs[0].Type)
		assert.Equal(t, "Elemento: Subordinación jurídica", docs[1].Content)
		assert.Equal(t, "Código Sustantivo del Trabajo", docs[1].Source)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := r.Retrieve(ctx, "Evalúa la viabilidad jurídica de una demanda", "hechos del trabajador")
		b := r.Retrieve(ctx, "Evalúa la viabilidad jurídica de una demanda", "hechos del trabajador")
		assert.Equal(t, a, b)
	})

	t.Run("context is matched too", func(t *testing.T) {
		docs := r.Retrieve(ctx, "Resumen", "el PRINCIPIO de primacía")
		require.Len(t, docs, 4)
		assert.Equal(t, "Principio: Protección al trabajador", docs[0].Content)
		assert.Equal(t, "Derecho Laboral Colombiano", docs[0].Source)
	})

	t.Run("no trigger", func(t *testing.T) {
		docs := r.Retrieve(ctx, "hola", "mundo")
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})
}

func TestKeywordRetrieverKeepsSnippetSource(t *testing.T) {
	store := NewKnowledgeStore()
	_, err := store.Add(context.Background(), "demanda_laboral", "requisitos", "Agotamiento de reclamación", "Ley 712 de 2001")
	require.NoError(t, err)

	docs := NewKeywordRetriever(store).Retrieve(context.Background(), "requisito", "")
	require.Len(t, docs, MaxDocuments)

	store2 := NewKnowledgeStore()
	require.NoError(t, store2.Import(context.Background(), []byte(`{"demanda_laboral":{"requisitos":[{"content":"Poder","source":"CGP"}]}}`)))
	docs = NewKeywordRetriever(store2).Retrieve(context.Background(), "requisito", "")
	require.Len(t, docs, 1)
	assert.Equal(t, "Requisito: Poder", docs[0].Content)
	assert.Equal(t, "CGP", docs[0].Source)
}

// mapEmbedder returns fixed vectors and counts calls
type mapEmbedder struct {
	vectors map[string][]float32
	fail    map[string]bool
	calls   atomic.Int32
}

func (e *mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.fail[text] {
		return nil, llm.ErrEmbedding
	}
	v, ok := e.vectors[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return v, nil
}

func entry(id string) models.CorpusEntry {
	return models.CorpusEntry{ID: id, Content: id, Metadata: models.CorpusMetadata{Type: "t", Source: "src-" + id}}
}

func TestVectorRetrieverRanking(t *testing.T) {
	emb := &mapEmbedder{vectors: map[string][]float32{
		"consulta hechos": {1, 0, 0},
		"a":               {1, 0, 0},
		"b":               {0, 1, 0},
		"c":               {1, 1, 0},
		"d":               {2, 0, 0},
		"e":               {0.3, 1, 0},
		"f":               {1, 0},
	}}
	corpus := []models.CorpusEntry{entry("a"), entry("b"), entry("c"), entry("d"), entry("e"), entry("f")}
	r := NewVectorRetriever(emb, VectorWithCorpus(corpus))

	docs := r.Retrieve(context.Background(), "consulta", "hechos")
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].Content, "ties keep corpus order")
	assert.Equal(t, "d", docs[1].Content)
	assert.Equal(t, "c", docs[2].Content)
	assert.Equal(t, "src-c", docs[2].Source)

	for i := 1; i < len(docs); i++ {
		assert.LessOrEqual(t, docs[i].Score, docs[i-1].Score)
	}
	for _, d := range docs {
		assert.Greater(t, d.Score, SimilarityThreshold)
	}

	before := emb.calls.Load()
	r.Retrieve(context.Background(), "consulta", "hechos")
	assert.Equal(t, before, emb.calls.Load(), "second retrieval is served from cache")
}

func TestVectorRetrieverCapsResults(t *testing.T) {
	vectors := map[string][]float32{"q": {1, 1}}
	var corpus []models.CorpusEntry
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		vectors[id] = []float32{1, 1}
		corpus = append(corpus, entry(id))
	}
	r := NewVectorRetriever(&mapEmbedder{vectors: vectors}, VectorWithCorpus(corpus))

	docs := r.Retrieve(context.Background(), "q", "")
	require.Len(t, docs, MaxDocuments)
	assert.Equal(t, "1", docs[0].Content)
	assert.Equal(t, "5", docs[4].Content)
}

func TestVectorRetrieverEmbeddingFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("query embedding fails", func(t *testing.T) {
		emb := &mapEmbedder{fail: map[string]bool{"jurisprudencia contrato realidad": true}}
		docs := NewVectorRetriever(emb).Retrieve(ctx, "jurisprudencia contrato realidad", "")
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("entry embedding fails", func(t *testing.T) {
		emb := &mapEmbedder{
			vectors: map[string][]float32{"q": {1, 0}, "a": {1, 0}, "b": {1, 0}},
			fail:    map[string]bool{"a": true},
		}
		docs := NewVectorRetriever(emb, VectorWithCorpus([]models.CorpusEntry{entry("a"), entry("b")})).Retrieve(ctx, "q", "")
		require.Len(t, docs, 1)
		assert.Equal(t, "b", docs[0].Content)
	})
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestEmbeddingCache(t *testing.T) {
	emb := &mapEmbedder{vectors: map[string][]float32{"x": {1}}}
	c := NewEmbeddingCache()

	_, err := c.Embed(context.Background(), emb, "x")
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), emb, "x")
	require.NoError(t, err)
	assert.EqualValues(t, 1, emb.calls.Load())
	assert.Equal(t, 1, c.Len())

	_, err = c.Embed(context.Background(), emb, "missing")
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len(), "failures are not cached")

	assert.Len(t, contentHash("x"), 64)
}

func TestDefaultCorpus(t *testing.T) {
	corpus := DefaultCorpus()
	require.Len(t, corpus, 12)
	assert.Equal(t, "contrato_realidad_concepto", corpus[0].ID)
	assert.Equal(t, "prescripcion_laboral", corpus[11].ID)
}
