package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	t.Parallel()

	m := New("test")
	m.ObserveFetch("price", OutcomeOK, 10*time.Millisecond)
	m.ObserveFetch("price", OutcomeOK, 20*time.Millisecond)
	m.ObserveFetch("identity_points", OutcomeNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues("price", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("identity_points", OutcomeNotFound)))

	m.SetGlobalPoints(2.68e9)
	assert.Equal(t, 2.68e9, testutil.ToFloat64(m.globalPoints))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("price", OutcomeError, time.Second)
		m.SetGlobalPoints(1)
		m.SetPrice(1)
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerServesExposition(t *testing.T) {
	t.Parallel()

	m := New("test")
	m.SetPrice(2.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_price_usd 2.5")
}
