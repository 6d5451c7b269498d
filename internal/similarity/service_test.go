package similarity_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/0x5457/phosim/internal/embeddings"
	"github.com/0x5457/phosim/internal/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hiddenSize = 768

// spyEmbedder records every sentence it is asked to embed.
type spyEmbedder struct {
	embeddings.TokenEmbedder
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func newSpy() *spyEmbedder {
	return &spyEmbedder{
		TokenEmbedder: embeddings.NewLocal(hiddenSize, 256),
		fail:          map[string]error{},
	}
}

func (s *spyEmbedder) EmbedTokens(ctx context.Context, text string) ([][]float32, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	err := s.fail[text]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.TokenEmbedder.EmbedTokens(ctx, text)
}

type recordingObserver struct {
	tokens []int
	errs   []error
}

func (o *recordingObserver) ObserveEncode(_ time.Duration, tokens int, err error) {
	o.tokens = append(o.tokens, tokens)
	o.errs = append(o.errs, err)
}

func newService(emb embeddings.TokenEmbedder) *similarity.Service {
	return &similarity.Service{Encoder: &similarity.Encoder{Embedder: emb, Dim: hiddenSize}}
}

func TestEncoder_FixedDimension(t *testing.T) {
	enc := &similarity.Encoder{Embedder: embeddings.NewLocal(hiddenSize, 0), Dim: hiddenSize}
	for _, s := range []string{"", "mèo", "Tôi yêu Việt Nam", strings.Repeat("rất dài ", 300)} {
		vec, err := enc.Encode(context.Background(), s)
		require.NoError(t, err)
		assert.Len(t, vec, hiddenSize)
	}
}

func TestEncoder_DimensionCheck(t *testing.T) {
	enc := &similarity.Encoder{Embedder: embeddings.NewLocal(8, 0), Dim: hiddenSize}
	_, err := enc.Encode(context.Background(), "mèo")
	assert.ErrorIs(t, err, similarity.ErrDimensionMismatch)
}

func TestEncoder_Observer(t *testing.T) {
	obs := &recordingObserver{}
	enc := &similarity.Encoder{Embedder: embeddings.NewLocal(4, 4), Observer: obs}

	_, err := enc.Encode(context.Background(), "Xin chào")
	require.NoError(t, err)
	_, err = enc.Encode(context.Background(), "một hai ba bốn")
	require.ErrorIs(t, err, embeddings.ErrInputTooLong)

	assert.Equal(t, []int{4, 0}, obs.tokens)
	assert.NoError(t, obs.errs[0])
	assert.ErrorIs(t, obs.errs[1], embeddings.ErrInputTooLong)
}

func TestSimilarity_Identity(t *testing.T) {
	svc := newService(newSpy())
	for _, s := range []string{"Xin chào", "mèo", "", "Hôm nay trời đẹp"} {
		score, err := svc.Similarity(context.Background(), s, s)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-5, s)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	svc := newService(newSpy())
	pairs := [][2]string{
		{"Tôi yêu Việt Nam", "Hôm nay trời đẹp"},
		{"chó", "mèo"},
		{"ô tô", "xe máy"},
	}
	for _, p := range pairs {
		ab, err := svc.Similarity(context.Background(), p[0], p[1])
		require.NoError(t, err)
		ba, err := svc.Similarity(context.Background(), p[1], p[0])
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestSimilarity_Distinct(t *testing.T) {
	svc := newService(newSpy())
	score, err := svc.Similarity(context.Background(), "Tôi yêu Việt Nam", "Hôm nay trời đẹp")
	require.NoError(t, err)
	assert.Less(t, score, 1.0)
	assert.GreaterOrEqual(t, score, -1.0)
}

func TestSimilarity_EncodesBothIndependently(t *testing.T) {
	spy := newSpy()
	_, err := newService(spy).Similarity(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, spy.calls)
}

func TestSimilarity_PropagatesError(t *testing.T) {
	spy := newSpy()
	spy.fail["b"] = embeddings.ErrInvalidInput
	_, err := newService(spy).Similarity(context.Background(), "a", "b")
	assert.ErrorIs(t, err, embeddings.ErrInvalidInput)
}

func TestBatchSimilarity_OrderAndLength(t *testing.T) {
	spy := newSpy()
	candidates := []string{"chó", "mèo", "ô tô"}
	scores, err := newService(spy).BatchSimilarity(context.Background(), "mèo", candidates)
	require.NoError(t, err)
	require.Len(t, scores, len(candidates))

	assert.InDelta(t, 1.0, scores[1], 1e-5)
	assert.Greater(t, scores[1], scores[0])
	assert.Greater(t, scores[1], scores[2])

	// reference exactly once, then candidates in order
	assert.Equal(t, []string{"mèo", "chó", "mèo", "ô tô"}, spy.calls)
}

func TestBatchSimilarity_MatchesPairwise(t *testing.T) {
	svc := newService(newSpy())
	candidates := []string{"Tôi yêu Hà Nội", "Hôm nay trời đẹp", "Xin chào"}
	scores, err := svc.BatchSimilarity(context.Background(), "Tôi yêu Việt Nam", candidates)
	require.NoError(t, err)
	for i, c := range candidates {
		want, err := svc.Similarity(context.Background(), "Tôi yêu Việt Nam", c)
		require.NoError(t, err)
		assert.Equal(t, want, scores[i])
	}
}

func TestBatchSimilarity_Empty(t *testing.T) {
	spy := newSpy()
	scores, err := newService(spy).BatchSimilarity(context.Background(), "mèo", []string{})
	require.NoError(t, err)
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
	assert.Equal(t, []string{"mèo"}, spy.calls)
}

func TestBatchSimilarity_CandidateError(t *testing.T) {
	spy := newSpy()
	boom := errors.New("boom")
	spy.fail["ô tô"] = boom
	_, err := newService(spy).BatchSimilarity(context.Background(), "mèo", []string{"chó", "ô tô", "mèo"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "candidate 1")
	// encoding stops at the first failure
	assert.Equal(t, []string{"mèo", "chó", "ô tô"}, spy.calls)
}

func TestBatchSimilarity_ReferenceError(t *testing.T) {
	spy := newSpy()
	spy.fail["mèo"] = embeddings.ErrProviderUnavailable
	_, err := newService(spy).BatchSimilarity(context.Background(), "mèo", []string{"chó"})
	require.ErrorIs(t, err, embeddings.ErrProviderUnavailable)
	assert.Equal(t, []string{"mèo"}, spy.calls)
}
