package appfx

import (
	"github.com/0x5457/phosim/cmd/cmdsfx"
	"github.com/0x5457/phosim/internal/config/configfx"
	"github.com/0x5457/phosim/internal/embeddings/embeddingsfx"
	"github.com/0x5457/phosim/internal/logging/loggingfx"
	"github.com/0x5457/phosim/internal/mcp/mcpfx"
	"github.com/0x5457/phosim/internal/metrics/metricsfx"
	"github.com/0x5457/phosim/internal/server/serverfx"
	"github.com/0x5457/phosim/internal/similarity/similarityfx"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Module combines all application modules
var Module = fx.Options(
	configfx.Module,
	loggingfx.Module,
	embeddingsfx.Module,
	metricsfx.Module,
	similarityfx.Module,
	serverfx.Module,
	mcpfx.Module,
	cmdsfx.Module,
)

// NewApp creates an Fx app configured from v. A nil v falls back to
// defaults plus PHOSIM_* environment variables.
func NewApp(v *viper.Viper, opts ...fx.Option) *fx.App {
	base := []fx.Option{
		Module,
		fx.WithLogger(loggingfx.EventLogger),
	}
	if v != nil {
		base = append(base, fx.Supply(v))
	}
	return fx.New(append(base, opts...)...)
}

// NewServeApp creates an Fx app whose lifecycle also owns the HTTP listener
func NewServeApp(v *viper.Viper, opts ...fx.Option) *fx.App {
	return NewApp(v, append([]fx.Option{fx.Invoke(serverfx.Register)}, opts...)...)
}
