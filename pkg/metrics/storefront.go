package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// CartMetrics counts cart mutations by operation.
type CartMetrics struct {
	mutations *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})
	reg.MustRegister(mutations)
	return &CartMetrics{mutations: mutations}
}

// IncMutation counts one cart operation (add, update, remove, clear).
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// CatalogMetrics tracks catalog browse derivations.
type CatalogMetrics struct {
	derivations    *prometheus.CounterVec
	visible        prometheus.Histogram
	sourceFailures prometheus.Counter
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	derivations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_derivations_total",
		Help:      "Catalog filter/sort derivations by sort key.",
	}, []string{"sort"})
	visible := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_visible_products",
		Help:      "Number of products left after filtering.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
	sourceFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_source_failures_total",
		Help:      "Catalog loads that failed and were served as unavailable.",
	})
	reg.MustRegister(derivations, visible, sourceFailures)
	return &CatalogMetrics{derivations: derivations, visible: visible, sourceFailures: sourceFailures}
}

// ObserveDerivation records one derivation and the size of its result.
func (c *CatalogMetrics) ObserveDerivation(sortKey string, visible int) {
	if c == nil || c.derivations == nil {
		return
	}
	c.derivations.WithLabelValues(normalizeLabel(sortKey)).Inc()
	c.visible.Observe(float64(visible))
}

// IncSourceFailure counts a catalog load that could not reach its source.
func (c *CatalogMetrics) IncSourceFailure() {
	if c == nil || c.sourceFailures == nil {
		return
	}
	c.sourceFailures.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
