// Package metrics exposes Prometheus collectors for the extraction pipeline.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recall"

type Metrics struct {
	eventsExtracted      prometheus.Counter
	sentencesSkipped     prometheus.Counter
	eventsMerged         prometheus.Counter
	linkOutcomes         *prometheus.CounterVec
	embeddingFailures    prometheus.Counter
	collectionsRecovered prometheus.Counter
	entriesSaved         prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_extracted_total",
			Help:      "Raw events extracted from sentences",
		}),
		sentencesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentences_skipped_total",
			Help:      "Sentences without a verbal root predicate",
		}),
		eventsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_merged_total",
			Help:      "Raw events folded into another event of the same narrative",
		}),
		linkOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_outcomes_total",
			Help:      "Cross-narrative link decisions by outcome and deciding signal",
		}, []string{"outcome", "signal"}),
		embeddingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_failures_total",
			Help:      "Embedding requests that failed and fell back to text signals",
		}),
		collectionsRecovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_recovered_total",
			Help:      "Malformed persisted collections or collection events discarded on read",
		}),
		entriesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_saved_total",
			Help:      "Journal entries persisted",
		}),
	}

	reg.MustRegister(
		m.eventsExtracted, m.sentencesSkipped, m.eventsMerged,
		m.linkOutcomes, m.embeddingFailures, m.collectionsRecovered, m.entriesSaved,
	)
	return m
}

func (m *Metrics) EventsExtracted(n int) {
	if m == nil {
		return
	}
	m.eventsExtracted.Add(float64(n))
}

func (m *Metrics) SentencesSkipped(n int) {
	if m == nil {
		return
	}
	m.sentencesSkipped.Add(float64(n))
}

func (m *Metrics) EventsMerged(n int) {
	if m == nil {
		return
	}
	m.eventsMerged.Add(float64(n))
}

// LinkMatched records a match decided by signal.
func (m *Metrics) LinkMatched(signal string) {
	if m == nil {
		return
	}
	m.linkOutcomes.WithLabelValues("matched", signal).Inc()
}

func (m *Metrics) LinkAppended() {
	if m == nil {
		return
	}
	m.linkOutcomes.WithLabelValues("appended", "").Inc()
}

func (m *Metrics) EmbeddingFailed() {
	if m == nil {
		return
	}
	m.embeddingFailures.Inc()
}

func (m *Metrics) CollectionRecovered() {
	if m == nil {
		return
	}
	m.collectionsRecovered.Inc()
}

func (m *Metrics) EntrySaved() {
	if m == nil {
		return
	}
	m.entriesSaved.Inc()
}
