package metrics

import (
	"net/http"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the reward ledger. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	// Ledger operations by name and result code ("ok", "internal" or a
	// domain error code)
	OperationsTotal *prometheus.CounterVec

	// Settlement
	PayoutsTotal       prometheus.Counter
	PayoutValueTotal   prometheus.Counter
	FundedValueTotal   prometheus.Counter
	DirectPaymentTotal prometheus.Counter

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered on a
// private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "realdream_operations_total",
				Help: "Ledger operations by result",
			},
			[]string{"op", "result"},
		),
		PayoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "realdream_payouts_total",
			Help: "Number of released token payouts",
		}),
		PayoutValueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "realdream_payout_value_wei_total",
			Help: "Value paid to token holders, approximated as float",
		}),
		FundedValueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "realdream_funded_value_wei_total",
			Help: "Value deposited through campaign funding, approximated as float",
		}),
		DirectPaymentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "realdream_direct_payments_rejected_total",
			Help: "Payments rejected because they bypassed campaign funding",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "realdream_http_requests_total",
				Help: "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "realdream_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.OperationsTotal,
		m.PayoutsTotal,
		m.PayoutValueTotal,
		m.FundedValueTotal,
		m.DirectPaymentTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOperation counts one ledger operation by its result code.
func (m *Metrics) ObserveOperation(op, result string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(op, result).Inc()
}

// ObservePayout counts a released payout and its value.
func (m *Metrics) ObservePayout(amount uint256.Int) {
	if m == nil {
		return
	}
	m.PayoutsTotal.Inc()
	m.PayoutValueTotal.Add(amount.Float64())
}

// ObserveFunding adds the pool of a newly funded campaign.
func (m *Metrics) ObserveFunding(amount uint256.Int) {
	if m == nil {
		return
	}
	m.FundedValueTotal.Add(amount.Float64())
}

// ObserveDirectPayment counts a rejected direct payment.
func (m *Metrics) ObserveDirectPayment() {
	if m == nil {
		return
	}
	m.DirectPaymentTotal.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(seconds)
}
