package configfx

import (
	"github.com/0x5457/phosim/internal/config"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Params represents the parameters needed to create configuration
type Params struct {
	fx.In

	Viper *viper.Viper `optional:"true"`
}

// NewConfig decodes the supplied viper instance, falling back to defaults
// plus environment when none is supplied.
func NewConfig(params Params) (*config.Config, error) {
	v := params.Viper
	if v == nil {
		v = config.NewViper()
	}
	return config.Load(v)
}

// Module provides configuration for the application
var Module = fx.Module("config",
	fx.Provide(NewConfig),
)
