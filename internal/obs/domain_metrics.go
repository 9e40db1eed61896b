package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteRequestsTotal counts quote calculations by outcome.
	QuoteRequestsTotal *prometheus.CounterVec
	// QuoteTotalValue records the final quoted total for successful calculations.
	QuoteTotalValue prometheus.Histogram
	// CatalogGapTotal counts quote failures caused by catalog configuration gaps.
	CatalogGapTotal *prometheus.CounterVec
	// SnapshotLoadTotal counts catalog snapshot loads by source.
	SnapshotLoadTotal *prometheus.CounterVec
	// CatalogLintIssues reflects the issue count reported by the last lint run.
	CatalogLintIssues prometheus.Gauge
	// AlertEnqueueTotal counts operator alert enqueue outcomes.
	AlertEnqueueTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Count of quote calculations by outcome.",
		}, []string{"result"})
		QuoteTotalValue = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_total_value",
			Help:      "Distribution of successfully quoted order totals.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		})
		CatalogGapTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_gap_total",
			Help:      "Quote failures caused by catalog configuration gaps.",
		}, []string{"kind"})
		SnapshotLoadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_snapshot_load_total",
			Help:      "Catalog snapshot loads by source (cache or store).",
		}, []string{"source"})
		CatalogLintIssues = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_lint_issues",
			Help:      "Issue count reported by the most recent catalog lint run.",
		})
		AlertEnqueueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_enqueue_total",
			Help:      "Operator alert enqueue outcomes.",
		}, []string{"result"})

		mustRegisterCollector(reg, QuoteRequestsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteRequestsTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteTotalValue, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteTotalValue = v
			}
		})
		mustRegisterCollector(reg, CatalogGapTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogGapTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotLoadTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SnapshotLoadTotal = v
			}
		})
		mustRegisterCollector(reg, CatalogLintIssues, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				CatalogLintIssues = v
			}
		})
		mustRegisterCollector(reg, AlertEnqueueTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				AlertEnqueueTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
