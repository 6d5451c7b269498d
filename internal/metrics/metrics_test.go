package metrics_test

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/0x5457/phosim/internal/embeddings"
	"github.com/0x5457/phosim/internal/metrics"
	"github.com/0x5457/phosim/internal/similarity"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("embed tokens: %w", embeddings.ErrInputTooLong), "too_long"},
		{&embeddings.ProviderError{StatusCode: 422}, "invalid_input"},
		{&embeddings.ProviderError{StatusCode: 503}, "provider"},
		{similarity.ErrDimensionMismatch, "shape"},
		{similarity.ErrEmptySequence, "shape"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, metrics.ErrorKind(tt.err), tt.err.Error())
	}
}

func TestObserveEncode(t *testing.T) {
	m := metrics.New()
	m.ObserveEncode(time.Millisecond, 5, nil)
	m.ObserveEncode(time.Millisecond, 0, embeddings.ErrInputTooLong)
	m.ObserveEncode(time.Millisecond, 0, embeddings.ErrInputTooLong)

	n, err := testutil.GatherAndCount(m.Registry, "phosim_encode_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	body := scrape(t, m)
	assert.Contains(t, body, `phosim_encode_errors_total{kind="too_long"} 2`)
	assert.Contains(t, body, "phosim_encode_duration_seconds_count 3")
	assert.Contains(t, body, "phosim_tokens_per_sentence_count 1")
}

func TestObserveRequest(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest("/similarity", 200, 10*time.Millisecond)
	m.ObserveRequest("/similarity", 422, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `phosim_http_requests_total{code="200",route="/similarity"} 1`)
	assert.Contains(t, body, `phosim_http_requests_total{code="422",route="/similarity"} 1`)
	assert.Contains(t, body, `phosim_http_request_duration_seconds_count{route="/similarity"} 2`)
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	data, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(data)
}
