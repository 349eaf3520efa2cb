package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Question metrics
	activeQuestions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "answer_service_active_questions",
		Help: "Number of questions currently being answered",
	})

	questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_service_questions_total",
		Help: "Total number of questions processed",
	}, []string{"status"}) // status: "answered", "invalid", "unavailable"

	answerLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "answer_service_answer_latency_seconds",
		Help:    "End-to-end latency of producing an answer in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	// Capability metrics, one series per adapter
	capabilityRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_service_capability_requests_total",
		Help: "Total number of capability invocations",
	}, []string{"capability", "status"})

	capabilityLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "answer_service_capability_latency_seconds",
		Help:    "Capability invocation latency in seconds",
		Buckets: []float64{0.01, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	}, []string{"capability"})

	// Evidence metrics
	retrievedPassages = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "answer_service_retrieved_passages",
		Help:    "Number of passages retrieved per question",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_service_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "answer_service_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_service_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// QuestionMetrics tracks metrics for a single orchestration run
type QuestionMetrics struct {
	startTime       time.Time
	capabilityStart map[string]time.Time
	mu              sync.Mutex
}

// NewQuestionMetrics creates a metrics tracker for one question
func NewQuestionMetrics() *QuestionMetrics {
	return &QuestionMetrics{
		startTime:       time.Now(),
		capabilityStart: make(map[string]time.Time),
	}
}

// RecordStart records the start of an orchestration run
func (m *QuestionMetrics) RecordStart() {
	activeQuestions.Inc()
}

// RecordEnd records the outcome of an orchestration run
func (m *QuestionMetrics) RecordEnd(status string) {
	activeQuestions.Dec()
	questionsTotal.WithLabelValues(status).Inc()
	if status == "answered" {
		answerLatency.Observe(time.Since(m.startTime).Seconds())
	}
}

// RecordCapabilityStart records the start of one capability invocation
func (m *QuestionMetrics) RecordCapabilityStart(capability string) {
	m.mu.Lock()
	m.capabilityStart[capability] = time.Now()
	m.mu.Unlock()
}

// RecordCapabilityEnd records the end of one capability invocation
func (m *QuestionMetrics) RecordCapabilityEnd(capability string, success bool) {
	m.mu.Lock()
	start, ok := m.capabilityStart[capability]
	delete(m.capabilityStart, capability)
	m.mu.Unlock()

	if ok {
		capabilityLatency.WithLabelValues(capability).Observe(time.Since(start).Seconds())
	}

	status := "success"
	if !success {
		status = "error"
	}
	capabilityRequests.WithLabelValues(capability, status).Inc()
}

// RecordRetrievedPassages records how many passages retrieval produced
func (m *QuestionMetrics) RecordRetrievedPassages(count int) {
	retrievedPassages.Observe(float64(count))
}

// RecordError records an error
func RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
