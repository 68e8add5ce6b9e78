package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService owns the Prometheus registry and the registry's domain
// counters alongside the standard HTTP instrumentation.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	certificatesCreated prometheus.Counter
	examsRecorded       *prometheus.CounterVec
	revocations         prometheus.Counter
}

// NewMetricsService constructs the service and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	s := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		certificatesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certificates_created_total",
			Help: "Certificates registered since start.",
		}),
		examsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_results_total",
			Help: "Recorded exam results by outcome.",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certificate_revocations_total",
			Help: "Certificates revoked since start.",
		}),
	}

	registry.MustRegister(s.httpRequests, s.httpDuration, s.certificatesCreated, s.examsRecorded, s.revocations)
	return s
}

// Registry exposes the underlying registry for the /metrics handler.
func (s *MetricsService) Registry() *prometheus.Registry {
	return s.registry
}

// ObserveRequest records one finished HTTP request.
func (s *MetricsService) ObserveRequest(method, path, status string, seconds float64) {
	s.httpRequests.WithLabelValues(method, path, status).Inc()
	s.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// CertificateCreated counts a successful registration.
func (s *MetricsService) CertificateCreated() {
	s.certificatesCreated.Inc()
}

// ExamRecorded counts an exam submission by its outcome.
func (s *MetricsService) ExamRecorded(outcome string) {
	s.examsRecorded.WithLabelValues(outcome).Inc()
}

// CertificateRevoked counts a revocation.
func (s *MetricsService) CertificateRevoked() {
	s.revocations.Inc()
}
