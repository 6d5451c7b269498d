package metricsfx

import (
	"github.com/0x5457/phosim/internal/config"
	"github.com/0x5457/phosim/internal/metrics"
	"github.com/0x5457/phosim/internal/similarity"
	"go.uber.org/fx"
)

// Params represents dependencies for the metrics collectors
type Params struct {
	fx.In

	Config *config.Config
}

// NewMetrics returns nil when metrics.enabled is false. The server and the
// encoder both treat a nil collector as "do not record".
func NewMetrics(params Params) *metrics.Metrics {
	if !params.Config.Metrics.Enabled {
		return nil
	}
	return metrics.New()
}

// NewObserver exposes the collectors as the encoder observer.
func NewObserver(m *metrics.Metrics) similarity.Observer {
	if m == nil {
		// a typed nil would make the encoder call through it
		return nil
	}
	return m
}

// Module provides the metrics collectors and exposes them as the encoder observer
var Module = fx.Module("metrics",
	fx.Provide(NewMetrics, NewObserver),
)
