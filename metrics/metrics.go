// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contratorealidad"

var (
	generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Generation calls by task, strategy and outcome.",
	}, []string{"task", "strategy", "outcome"})

	retrievedDocuments = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "retrieved_documents",
		Help:      "Documents returned per retrieval call.",
		Buckets:   []float64{0, 1, 2, 3, 4, 5},
	}, []string{"strategy"})

	embeddingCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_cache_total",
		Help:      "Embedding cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	intakes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "intake_total",
		Help:      "Intake processing by method and outcome.",
	}, []string{"method", "outcome"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveGeneration counts one generation call.
func ObserveGeneration(task, strategy string, err error) {
	generations.WithLabelValues(task, strategy, outcome(err)).Inc()
}

func ObserveRetrieval(strategy string, n int) {
	retrievedDocuments.WithLabelValues(strategy).Observe(float64(n))
}

func ObserveEmbeddingCache(result string) {
	embeddingCache.WithLabelValues(result).Inc()
}

func ObserveIntake(method string, err error) {
	intakes.WithLabelValues(method, outcome(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
