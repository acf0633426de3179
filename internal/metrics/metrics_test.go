package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("mint", "ok")
	m.ObservePayout(*uint256.NewInt(5))
	m.ObserveFunding(*uint256.NewInt(5))
	m.ObserveDirectPayment()
	m.ObserveHTTP("/", "GET", "200", 0.1)
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveOperation("release", "ok")
	m.ObserveOperation("release", "NothingDue")
	m.ObserveOperation("release", "NothingDue")
	m.ObservePayout(*uint256.NewInt(250))
	m.ObserveDirectPayment()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("release", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("release", "NothingDue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PayoutsTotal))
	assert.Equal(t, 250.0, testutil.ToFloat64(m.PayoutValueTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectPaymentTotal))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveOperation("mint", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `realdream_operations_total{op="mint",result="ok"} 1`))
}
