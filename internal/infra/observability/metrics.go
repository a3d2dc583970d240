package observability

import (
	"time"

	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the finance engine.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration     *prometheus.HistogramVec
	externalErrors      *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	mutationsTotal      *prometheus.CounterVec
	ledgerPostings      prometheus.Counter
	receivablesReceived prometheus.Counter
	dreamsCompleted     prometheus.Counter
	partialFailures     *prometheus.CounterVec
	conflictRetries     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "financas_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		mutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_mutations_total",
				Help: "Total write operations by entity and operation.",
			},
			[]string{"entity", "op"},
		),
		ledgerPostings: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "financas_ledger_postings_total",
				Help: "Total balance postings applied to bank accounts.",
			},
		),
		receivablesReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "financas_receivables_received_total",
				Help: "Total receivables marked as received.",
			},
		),
		dreamsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "financas_dreams_completed_total",
				Help: "Total dream board items completed.",
			},
		),
		partialFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_partial_failures_total",
				Help: "Multi-step flows that failed after a committed step.",
			},
			[]string{"operation"},
		),
		conflictRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financas_conflict_retries_total",
				Help: "Conditional writes that lost a race and were retried.",
			},
			[]string{"resource"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrMutation increments the mutation counter for an entity/operation pair.
func (m *Metrics) IncrMutation(entity, op string) {
	m.mutationsTotal.WithLabelValues(entity, op).Inc()
}

// IncrLedgerPosting increments the balance posting counter.
func (m *Metrics) IncrLedgerPosting() {
	m.ledgerPostings.Inc()
}

// IncrReceivableReceived increments the received-receivables counter.
func (m *Metrics) IncrReceivableReceived() {
	m.receivablesReceived.Inc()
}

// IncrDreamCompleted increments the completed-dreams counter.
func (m *Metrics) IncrDreamCompleted() {
	m.dreamsCompleted.Inc()
}

// IncrPartialFailure increments the partial failure counter for an operation.
func (m *Metrics) IncrPartialFailure(operation string) {
	m.partialFailures.WithLabelValues(operation).Inc()
}

// IncrConflictRetry increments the conflict retry counter for a resource.
func (m *Metrics) IncrConflictRetry(resource string) {
	m.conflictRetries.WithLabelValues(resource).Inc()
}

// GetEngineSnapshot returns a snapshot of the engine counters suitable for
// the GET /v1/metrics/engine endpoint.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	// Prometheus counters expose cumulative values; read them directly.
	return &domain.EngineMetrics{
		ReceivablesReceived: getCounterValue(m.receivablesReceived),
		DreamsCompleted:     getCounterValue(m.dreamsCompleted),
		LedgerPostings:      getCounterValue(m.ledgerPostings),
		StoreErrors:         getLabeledCounterValue(m.externalErrors, "supabase"),
		CacheHits:           getLabeledCounterValue(m.cacheHits, "summary"),
		CacheMisses:         getLabeledCounterValue(m.cacheMisses, "summary"),
	}
}

// getCounterValue extracts the current float64 value from a Counter.
func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// getLabeledCounterValue extracts the current value from a CounterVec for a
// given label.
func getLabeledCounterValue(cv *prometheus.CounterVec, label string) float64 {
	m := &dto.Metric{}
	if err := cv.WithLabelValues(label).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
