package server

import (
	"context"
	"net/http"

	"github.com/0x5457/phosim/internal/metrics"
	"go.uber.org/zap"
)

// Scorer is the similarity pipeline the handlers orchestrate.
type Scorer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
	BatchSimilarity(ctx context.Context, sentence string, candidates []string) ([]float64, error)
}

// Options configures optional server behavior.
type Options struct {
	// MetricsPath mounts the Prometheus handler when metrics are supplied.
	MetricsPath string
}

// Server exposes the similarity API over HTTP.
type Server struct {
	scorer  Scorer
	logger  *zap.Logger
	metrics *metrics.Metrics
	handler http.Handler
}

// New builds the route table. logger and m may be nil.
func New(scorer Scorer, logger *zap.Logger, m *metrics.Metrics, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		scorer:  scorer,
		logger:  logger,
		metrics: m,
	}

	mux := http.NewServeMux()
	s.route(mux, "GET /{$}", s.handleRoot)
	s.route(mux, "POST /similarity", s.handleSimilarity)
	s.route(mux, "POST /batch_similarity", s.handleBatchSimilarity)
	if m != nil && opts.MetricsPath != "" {
		mux.Handle("GET "+opts.MetricsPath, m.Handler())
	}

	s.handler = withRequestID(s.withAccessLog(mux))
	return s
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
