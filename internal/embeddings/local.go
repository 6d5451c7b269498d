package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	BOS = "<s>"
	EOS = "</s>"
)

// LocalEmbedder is a deterministic in-process stand-in for the transformer.
// Each whitespace token maps to a fixed pseudo-random vector, so identical
// sentences embed identically and disjoint sentences diverge.
type LocalEmbedder struct {
	dim       int
	maxTokens int
}

// NewLocal returns a local embedder producing dim-sized token vectors.
// maxTokens <= 0 disables the sequence length check.
func NewLocal(dim, maxTokens int) *LocalEmbedder {
	return &LocalEmbedder{dim: dim, maxTokens: maxTokens}
}

func (e *LocalEmbedder) ModelName() string { return "local-hash" }

func (e *LocalEmbedder) EmbedTokens(ctx context.Context, text string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := Tokenize(text)
	if e.maxTokens > 0 && len(tokens) > e.maxTokens {
		return nil, fmt.Errorf(
			"%w: %d tokens, limit %d",
			ErrInputTooLong, len(tokens), e.maxTokens,
		)
	}
	vecs := make([][]float32, len(tokens))
	for i, tok := range tokens {
		vecs[i] = hashToVector(tok, e.dim)
	}
	return vecs, nil
}

// Tokenize splits on whitespace and adds the boundary markers.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields)+2)
	tokens = append(tokens, BOS)
	tokens = append(tokens, fields...)
	return append(tokens, EOS)
}

func hashToVector(s string, dim int) []float32 {
	vec := make([]float32, dim)
	var (
		block [sha256.Size]byte
		ctr   [4]byte
	)
	for i := 0; i < dim; i++ {
		// refill every 32 components from sha256(token || block index)
		if i%sha256.Size == 0 {
			binary.BigEndian.PutUint32(ctr[:], uint32(i/sha256.Size))
			block = sha256.Sum256(append([]byte(s), ctr[:]...))
		}
		vec[i] = float32(int8(block[i%sha256.Size])) / 127.0
	}
	return vec
}
