package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/leaderboard-dashboard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.CacheHit()
		m.CacheMiss()
		m.Retry("entries")
		m.Mutation("insert", nil)
		m.Ingested(3)
	})
}

func TestMetrics_Exposition(t *testing.T) {
	m := metrics.New()
	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.Mutation("delete", errors.New("boom"))
	m.Ingested(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `leaderboard_cache_lookups_total{result="hit"} 2`)
	assert.Contains(t, body, `leaderboard_cache_lookups_total{result="miss"} 1`)
	assert.Contains(t, body, `leaderboard_mutations_total{operation="delete",outcome="failure"} 1`)
	assert.Contains(t, body, "leaderboard_ingested_records_total 4")
}

func TestMetrics_InstrumentHTTP(t *testing.T) {
	m := metrics.New()
	h := m.InstrumentHTTP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	count, err := testutil.GatherAndCount(m.Registry, "leaderboard_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
