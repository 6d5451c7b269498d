package similarityfx

import (
	"github.com/0x5457/phosim/internal/config"
	"github.com/0x5457/phosim/internal/embeddings"
	"github.com/0x5457/phosim/internal/similarity"
	"go.uber.org/fx"
)

// Params represents dependencies for the similarity service
type Params struct {
	fx.In

	Config   *config.Config
	Embedder embeddings.TokenEmbedder
	Observer similarity.Observer `optional:"true"`
}

// NewEncoder creates the mean-pooling sentence encoder
func NewEncoder(params Params) *similarity.Encoder {
	return &similarity.Encoder{
		Embedder: params.Embedder,
		Dim:      params.Config.Model.HiddenSize,
		Observer: params.Observer,
	}
}

// NewService creates a new similarity service instance
func NewService(enc *similarity.Encoder) *similarity.Service {
	return &similarity.Service{Encoder: enc}
}

// Module provides similarity components
var Module = fx.Module("similarity",
	fx.Provide(NewEncoder, NewService),
)
