package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/0x5457/phosim/internal/embeddings"
	"github.com/0x5457/phosim/internal/similarity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phosim"

// Metrics holds the service collectors. It is registered on its own registry
// rather than the global default one.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	encodeDuration  prometheus.Histogram
	encodeErrors    *prometheus.CounterVec
	tokens          prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		encodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Time to embed and pool one sentence.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		encodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_errors_total",
			Help:      "Sentence encoding failures by kind.",
		}, []string{"kind"}),
		tokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tokens_per_sentence",
			Help:      "Token sequence length including boundary tokens.",
			Buckets:   []float64{2, 4, 8, 16, 32, 64, 128, 256, 512},
		}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.encodeDuration,
		m.encodeErrors,
		m.tokens,
	)
	return m
}

// ObserveEncode implements similarity.Observer.
func (m *Metrics) ObserveEncode(d time.Duration, tokens int, err error) {
	m.encodeDuration.Observe(d.Seconds())
	if err != nil {
		m.encodeErrors.WithLabelValues(ErrorKind(err)).Inc()
		return
	}
	m.tokens.Observe(float64(tokens))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ErrorKind buckets an encoding error into a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, embeddings.ErrInputTooLong):
		return "too_long"
	case errors.Is(err, embeddings.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, embeddings.ErrProviderUnavailable):
		return "provider"
	case errors.Is(err, similarity.ErrDimensionMismatch), errors.Is(err, similarity.ErrEmptySequence):
		return "shape"
	default:
		return "other"
	}
}
