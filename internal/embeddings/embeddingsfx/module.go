package embeddingsfx

import (
	"fmt"

	"github.com/0x5457/phosim/internal/config"
	"github.com/0x5457/phosim/internal/embeddings"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params represents dependencies for embeddings components
type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger `optional:"true"`
}

// NewEmbedder creates the token embedder selected by model.provider.
// It is built once and shared read-only for the process lifetime.
func NewEmbedder(params Params) (embeddings.TokenEmbedder, error) {
	m := params.Config.Model
	var emb embeddings.TokenEmbedder
	switch m.Provider {
	case config.ProviderAPI:
		emb = embeddings.NewApi(m.EmbedURL, m.ID, embeddings.WithTimeout(m.Timeout))
	case config.ProviderLocal:
		emb = embeddings.NewLocal(m.HiddenSize, m.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", m.Provider)
	}
	if params.Logger != nil {
		params.Logger.Info("embedding provider ready",
			zap.String("provider", m.Provider),
			zap.String("model", emb.ModelName()),
			zap.String("embed_url", m.EmbedURL),
			zap.Int("hidden_size", m.HiddenSize),
		)
	}
	return emb, nil
}

// Module provides embeddings components
var Module = fx.Module("embeddings",
	fx.Provide(NewEmbedder),
)
