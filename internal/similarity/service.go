package similarity

import (
	"context"
	"fmt"
)

// SentenceEncoder maps a sentence to its embedding.
type SentenceEncoder interface {
	Encode(ctx context.Context, sentence string) ([]float32, error)
}

// Service scores sentences against each other. Every call recomputes
// embeddings from scratch; nothing outlives the call.
type Service struct {
	Encoder SentenceEncoder
}

// Similarity encodes both sentences independently and returns their cosine similarity.
func (s *Service) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := s.Encoder.Encode(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := s.Encoder.Encode(ctx, b)
	if err != nil {
		return 0, err
	}
	return Cosine(va, vb)
}

// BatchSimilarity scores each candidate against sentence. The reference is
// encoded exactly once; candidates are encoded in order and the result has
// one score per candidate, in input order.
func (s *Service) BatchSimilarity(ctx context.Context, sentence string, candidates []string) ([]float64, error) {
	ref, err := s.Encoder.Encode(ctx, sentence)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, 0, len(candidates))
	for i, cand := range candidates {
		vec, err := s.Encoder.Encode(ctx, cand)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		score, err := Cosine(ref, vec)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		scores = append(scores, score)
	}
	return scores, nil
}
