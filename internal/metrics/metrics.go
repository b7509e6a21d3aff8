package metrics

import (
	"net/http"
	"strconv"
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the service's Prometheus collectors. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	sessionsStarted     prometheus.Counter
	sessionsCompleted   *prometheus.CounterVec
	answers             *prometheus.CounterVec
	historySaveFailures prometheus.Counter
	requestDuration     *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Total number of quiz sessions started",
		}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_sessions_completed_total",
			Help: "Total number of quiz sessions completed",
		}, []string{"outcome"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_answers_total",
			Help: "Total number of answers by difficulty and result",
		}, []string{"difficulty", "result"}),
		historySaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_history_save_failures_total",
			Help: "Total number of failed quiz history saves",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.sessionsStarted,
		r.sessionsCompleted,
		r.answers,
		r.historySaveFailures,
		r.requestDuration,
	)
	return r
}

func (r *Recorder) SessionStarted() {
	if r == nil {
		return
	}
	r.sessionsStarted.Inc()
}

func (r *Recorder) SessionCompleted(endedEarly bool) {
	if r == nil {
		return
	}
	outcome := "full"
	if endedEarly {
		outcome = "ended_early"
	}
	r.sessionsCompleted.WithLabelValues(outcome).Inc()
}

func (r *Recorder) AnswerRecorded(d domain.Difficulty, correct bool) {
	if r == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	r.answers.WithLabelValues(string(d), result).Inc()
}

func (r *Recorder) HistorySaveFailed() {
	if r == nil {
		return
	}
	r.historySaveFailures.Inc()
}

func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests that gather collected values.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
