package serverfx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/0x5457/phosim/internal/config"
	"github.com/0x5457/phosim/internal/metrics"
	"github.com/0x5457/phosim/internal/server"
	"github.com/0x5457/phosim/internal/similarity"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params represents dependencies for the HTTP API
type Params struct {
	fx.In

	Config  *config.Config
	Service *similarity.Service
	Logger  *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// NewServer creates the HTTP handler tree
func NewServer(params Params) *server.Server {
	opts := server.Options{}
	if params.Config.Metrics.Enabled {
		opts.MetricsPath = params.Config.Metrics.Path
	}
	return server.New(params.Service, params.Logger, params.Metrics, opts)
}

// Lifecycle manages the HTTP listener
type Lifecycle struct {
	cfg    config.HTTPConfig
	srv    *http.Server
	logger *zap.Logger
	addr   net.Addr
}

// NewLifecycle creates a new HTTP lifecycle manager
func NewLifecycle(cfg *config.Config, handler *server.Server, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		cfg: cfg.HTTP,
		srv: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		},
		logger: logger,
	}
}

// Start binds the listener synchronously so a busy port fails startup,
// then serves in the background.
func (l *Lifecycle) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", l.srv.Addr, err)
	}
	l.addr = ln.Addr()
	l.logger.Info("http server listening", zap.String("addr", l.addr.String()))
	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop drains in-flight requests up to the shutdown timeout
func (l *Lifecycle) Stop(ctx context.Context) error {
	if l.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := l.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	l.logger.Info("http server stopped")
	return nil
}

// Addr reports the bound address once started.
func (l *Lifecycle) Addr() net.Addr { return l.addr }

// Register hooks the HTTP listener into the fx lifecycle
func Register(lc fx.Lifecycle, l *Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: l.Start,
		OnStop:  l.Stop,
	})
}

// Module provides HTTP server components
var Module = fx.Module("server",
	fx.Provide(
		NewServer,
		NewLifecycle,
	),
)
