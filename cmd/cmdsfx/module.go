package cmdsfx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/0x5457/phosim/internal/config"
	"github.com/0x5457/phosim/internal/models"
	"github.com/0x5457/phosim/internal/similarity"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportSSE   = "sse"

	mcpBasePath     = "/mcp"
	shutdownTimeout = 5 * time.Second
)

// CommandRunner provides methods to run different application commands
type CommandRunner struct {
	config    *config.Config
	service   *similarity.Service
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// Params represents dependencies for command runner
type Params struct {
	fx.In

	Config    *config.Config
	Service   *similarity.Service `optional:"true"`
	MCPServer *server.MCPServer   `optional:"true"`
	Logger    *zap.Logger         `optional:"true"`
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(params Params) *CommandRunner {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandRunner{
		config:    params.Config,
		service:   params.Service,
		mcpServer: params.MCPServer,
		logger:    logger,
	}
}

// RunCompare scores candidates against sentence and writes the JSON
// response to w. A single candidate uses the pairwise operation.
func (r *CommandRunner) RunCompare(
	ctx context.Context,
	w io.Writer,
	sentence string,
	candidates []string,
) error {
	if r.service == nil {
		return fmt.Errorf("similarity service not available")
	}

	var out any
	if len(candidates) == 1 {
		score, err := r.service.Similarity(ctx, sentence, candidates[0])
		if err != nil {
			return err
		}
		out = models.SimilarityResponse{Similarity: score}
	} else {
		scores, err := r.service.BatchSimilarity(ctx, sentence, candidates)
		if err != nil {
			return err
		}
		out = models.BatchSimilarityResponse{Similarities: scores}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// RunMCPServer serves the MCP tools until ctx is done. Empty transport and
// address fall back to the mcp section of the config.
func (r *CommandRunner) RunMCPServer(ctx context.Context, transport, address string) error {
	if r.mcpServer == nil {
		return fmt.Errorf("MCP server not available")
	}
	if transport == "" {
		transport = r.config.MCP.Transport
	}
	if address == "" {
		address = r.config.MCP.Addr
	}

	switch transport {
	case TransportStdio:
		err := server.NewStdioServer(r.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case TransportHTTP:
		mux := http.NewServeMux()
		mux.Handle(mcpBasePath, server.NewStreamableHTTPServer(r.mcpServer))
		return r.serveHTTP(ctx, address, mux)
	case TransportSSE:
		sse := server.NewSSEServer(r.mcpServer,
			server.WithBaseURL(""),
			server.WithStaticBasePath(mcpBasePath),
		)
		mux := http.NewServeMux()
		mux.Handle(mcpBasePath+"/sse", sse.SSEHandler())
		mux.Handle(mcpBasePath+"/message", sse.MessageHandler())
		return r.serveHTTP(ctx, address, mux)
	default:
		return fmt.Errorf(
			"unsupported transport: %s (supported: stdio, http, sse)",
			transport,
		)
	}
}

// serveHTTP binds address, serves handler and shuts down once ctx is done.
// Request contexts derive from ctx so open SSE streams end with it.
func (r *CommandRunner) serveHTTP(ctx context.Context, address string, handler http.Handler) error {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", address, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	r.logger.Info("mcp server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", mcpBasePath),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mcp shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	r.logger.Info("mcp server stopped")
	return nil
}

// Module provides command runner
var Module = fx.Module("commands",
	fx.Provide(NewCommandRunner),
)
