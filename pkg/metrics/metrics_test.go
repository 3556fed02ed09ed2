package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodGet, "/api/products", http.StatusOK, 120*time.Millisecond)
	m.Observe(http.MethodGet, "/api/products", http.StatusOK, 80*time.Millisecond)
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "storefront_http_requests_total", map[string]string{"route": "/api/products", "status": "200"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "storefront_http_requests_total", map[string]string{"route": "unknown", "status": "404"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	sum, err := fetchHistogramSum(mfs, "storefront_http_request_duration_seconds", map[string]string{"route": "/api/products"})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, sum, 0.0001)
}

func TestCartAndCatalogMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cart := NewCartMetrics(reg)
	catalog := NewCatalogMetrics(reg)

	cart.IncMutation("add")
	cart.IncMutation("add")
	cart.IncMutation("")
	catalog.ObserveDerivation("price-low", 3)
	catalog.IncSourceFailure()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "storefront_cart_mutations_total", map[string]string{"op": "add"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "storefront_cart_mutations_total", map[string]string{"op": "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "storefront_catalog_derivations_total", map[string]string{"sort": "price-low"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "storefront_catalog_source_failures_total", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var cart *CartMetrics
	var catalog *CatalogMetrics
	var httpMetrics *HTTPMetrics
	assert.NotPanics(t, func() {
		cart.IncMutation("add")
		catalog.ObserveDerivation("name", 1)
		catalog.IncSourceFailure()
		httpMetrics.Observe("GET", "/", 200, time.Second)
		NewCartMetrics(nil).IncMutation("add")
	})
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q with labels %v not found", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("metric %q with labels %v not found", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for key, value := range want {
		found := false
		for _, pair := range pairs {
			if pair.GetName() == key && pair.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
