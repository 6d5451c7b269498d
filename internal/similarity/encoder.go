package similarity

import (
	"context"
	"fmt"
	"time"

	"github.com/0x5457/phosim/internal/embeddings"
)

// Observer receives one call per sentence encoding. tokens is 0 when the
// provider failed before returning a sequence.
type Observer interface {
	ObserveEncode(d time.Duration, tokens int, err error)
}

// Encoder turns a sentence into a fixed-size sentence embedding by mean
// pooling the provider's token embeddings. It holds no mutable state.
type Encoder struct {
	Embedder embeddings.TokenEmbedder
	// Dim is the expected hidden size; 0 accepts whatever the model returns.
	Dim      int
	Observer Observer
}

func (e *Encoder) Encode(ctx context.Context, sentence string) ([]float32, error) {
	start := time.Now()
	tokens, err := e.Embedder.EmbedTokens(ctx, sentence)
	if err != nil {
		err = fmt.Errorf("embed tokens: %w", err)
		e.observe(start, 0, err)
		return nil, err
	}
	vec, err := MeanPool(tokens)
	if err == nil && e.Dim > 0 && len(vec) != e.Dim {
		err = fmt.Errorf("%w: embedding has %d components, model hidden size is %d",
			ErrDimensionMismatch, len(vec), e.Dim)
	}
	e.observe(start, len(tokens), err)
	if err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *Encoder) observe(start time.Time, tokens int, err error) {
	if e.Observer != nil {
		e.Observer.ObserveEncode(time.Since(start), tokens, err)
	}
}
