package rag

import (
	"context"
	"encoding/hex"
	"sync"

	"contratorealidad-backend/llm"
	"contratorealidad-backend/metrics"

	"golang.org/x/crypto/blake2b"
)

// EmbeddingCache memoizes embeddings by content hash for the life of the process.
type EmbeddingCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{vectors: make(map[string][]float32)}
}

func contentHash(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text, calling embedder on a miss.
// The embedder runs outside the lock; two concurrent misses for the same
// text may both call it and store identical vectors.
func (c *EmbeddingCache) Embed(ctx context.Context, embedder llm.Embedder, text string) ([]float32, error) {
	key := contentHash(text)

	c.mu.RLock()
	vec, ok := c.vectors[key]
	c.mu.RUnlock()
	if ok {
		metrics.ObserveEmbeddingCache("hit")
		return vec, nil
	}

	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		metrics.ObserveEmbeddingCache("error")
		return nil, err
	}
	metrics.ObserveEmbeddingCache("miss")

	c.mu.Lock()
	c.vectors[key] = vec
	c.mu.Unlock()
	return vec, nil
}

// Len reports the number of cached vectors
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}
