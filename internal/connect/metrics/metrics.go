package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for credential operations.
type Metrics struct {
	Connects           *prometheus.CounterVec
	ConnectFailures    *prometheus.CounterVec
	ExchangeDurationMs *prometheus.HistogramVec

	RefreshAttempts  *prometheus.CounterVec
	RefreshSuccesses *prometheus.CounterVec
	RefreshFailures  *prometheus.CounterVec
	RefreshDuration  *prometheus.HistogramVec
	Deactivations    *prometheus.CounterVec

	ClassifiedErrors *prometheus.CounterVec
	StatesSwept      prometheus.Counter
}

// New registers and returns credential metrics collectors.
func New() *Metrics {
	return &Metrics{
		Connects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "allad_credential_connects_total",
			Help: "Total number of completed OAuth connect flows",
		}, []string{"platform"}),
		ConnectFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "allad_credential_connect_failures_total",
			Help: "Total number of OAuth connect flows that failed after callback",
		}, []string{"platform", "stage"}),
		ExchangeDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "allad_token_exchange_duration_ms",
			Help:    "Duration of authorization code exchange in milliseconds",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"platform"}),
		RefreshAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "allad_token_refresh_attempts_total",
			Help: "Total number of token refresh attempts",
		}, []string{"platform"}),
		RefreshSuccesses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "allad_token_refresh_successes_total",
			Help: "Total number of successful token refreshes",
		}, []string{"platform"}),
		RefreshFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "allad_token_refresh_failures_total",
			Help: "Total number of failed token refreshes",
		}, []string{"platform", "code"}),
		RefreshDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "allad_token_refresh_duration_ms",
			Help:    "Duration of token refresh operations in milliseconds",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"platform"}),
		Deactivations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "allad_credential_deactivations_total",
			Help: "Total number of credentials deactivated after unrecoverable failures",
		}, []string{"platform"}),
		ClassifiedErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "allad_platform_errors_total",
			Help: "Total number of classified platform errors by code",
		}, []string{"platform", "code"}),
		StatesSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "allad_oauth_states_swept_total",
			Help: "Total number of expired OAuth states removed by the sweep",
		}),
	}
}

func (m *Metrics) IncrementConnects(platform string) {
	m.Connects.WithLabelValues(platform).Inc()
}

func (m *Metrics) IncrementConnectFailures(platform, stage string) {
	m.ConnectFailures.WithLabelValues(platform, stage).Inc()
}

func (m *Metrics) ObserveExchangeDuration(platform string, durationMs float64) {
	m.ExchangeDurationMs.WithLabelValues(platform).Observe(durationMs)
}

func (m *Metrics) IncrementRefreshAttempts(platform string) {
	m.RefreshAttempts.WithLabelValues(platform).Inc()
}

func (m *Metrics) IncrementRefreshSuccesses(platform string) {
	m.RefreshSuccesses.WithLabelValues(platform).Inc()
}

func (m *Metrics) IncrementRefreshFailures(platform, code string) {
	m.RefreshFailures.WithLabelValues(platform, code).Inc()
}

func (m *Metrics) ObserveRefreshDuration(platform string, durationMs float64) {
	m.RefreshDuration.WithLabelValues(platform).Observe(durationMs)
}

func (m *Metrics) IncrementDeactivations(platform string) {
	m.Deactivations.WithLabelValues(platform).Inc()
}

func (m *Metrics) IncrementClassifiedErrors(platform, code string) {
	m.ClassifiedErrors.WithLabelValues(platform, code).Inc()
}

func (m *Metrics) AddStatesSwept(count int) {
	m.StatesSwept.Add(float64(count))
}
