package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/bookstore-backend/pkg/errors"
)

func TestOperationMetricsExportsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOperationMetrics(reg)

	started := time.Now().Add(-250 * time.Millisecond)
	m.Observe("cart.add", started, nil)
	m.Observe("cart.add", started, pkgerrors.New(pkgerrors.CodeInsufficientStock, "only 1 left"))
	m.Observe("cart.add", started, errors.New("untyped"))

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "bookstore_operation_total", map[string]string{"operation": "cart.add", "outcome": "ok"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "bookstore_operation_total", map[string]string{"operation": "cart.add", "outcome": "insufficient_stock"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "bookstore_operation_total", map[string]string{"operation": "cart.add", "outcome": "internal_error"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	sum, err := fetchHistogramSum(mfs, "bookstore_operation_duration_seconds", map[string]string{"operation": "cart.add"})
	require.NoError(t, err)
	assert.Greater(t, sum, 0.0)
}

func TestOutboxMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.Inc(OutcomePublished)
	m.Inc(OutcomePublished)
	m.Inc(OutcomeDeadLetter)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "bookstore_outbox_published_total", map[string]string{"outcome": OutcomePublished})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestNilRegistererIsNoop(t *testing.T) {
	var ops *OperationMetrics
	ops.Observe("x", time.Now(), nil)
	NewOperationMetrics(nil).Observe("x", time.Now(), nil)
	NewOutboxMetrics(nil).Inc(OutcomeFailed)
}

func TestHandlerServesTextFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewOperationMetrics(reg).Observe("checkout.confirm", time.Now(), nil)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bookstore_operation_total{operation="checkout.confirm",outcome="ok"} 1`)
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
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
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
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
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
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
