package loggingfx

import (
	"context"

	"github.com/0x5457/phosim/internal/config"
	"github.com/0x5457/phosim/internal/logging"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Params represents dependencies for the logger
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
}

// NewLogger creates the application logger and flushes it on stop
func NewLogger(params Params) (*zap.Logger, error) {
	logger, err := logging.New(params.Config.Log)
	if err != nil {
		return nil, err
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Sync on stderr returns EINVAL/ENOTTY on most terminals.
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

// EventLogger routes fx's own lifecycle events through zap.
func EventLogger(logger *zap.Logger) fxevent.Logger {
	l := &fxevent.ZapLogger{Logger: logger.Named("fx")}
	l.UseLogLevel(zap.DebugLevel)
	return l
}

// Module provides the logger and installs it as the fx event logger
var Module = fx.Module("logging",
	fx.Provide(NewLogger),
	fx.WithLogger(EventLogger),
)
