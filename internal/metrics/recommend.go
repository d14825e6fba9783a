package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recommendation Prometheus metrics.
var (
	RecommendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_total",
			Help:      "Total number of recommendation calls by outcome",
		},
		[]string{"status", "reason"},
	)

	RecommendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_duration_seconds",
			Help:      "Vectorize + rank duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecommendCorpusSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_corpus_size",
			Help:      "Number of candidate documents per recommendation call",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	RecommendVocabularySize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_vocabulary_size",
			Help:      "Number of vocabulary columns per recommendation call",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
	)
)

var registerRecommendOnce sync.Once

// RegisterRecommendMetrics registers Prometheus recommendation metrics. Safe to call more than once.
func RegisterRecommendMetrics() {
	registerRecommendOnce.Do(func() {
		prometheus.MustRegister(RecommendTotal, RecommendDuration, RecommendCorpusSize, RecommendVocabularySize)
	})
}
