package embeddings

import "context"

// TokenEmbedder runs a sentence through the model and returns the last hidden
// state: one vector per token, boundary tokens included, in sequence order.
// Implementations must be safe for concurrent use.
type TokenEmbedder interface {
	EmbedTokens(ctx context.Context, text string) ([][]float32, error)
	ModelName() string
}
