package mcpfx

import (
	appmcp "github.com/0x5457/phosim/internal/mcp"
	"github.com/0x5457/phosim/internal/similarity"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params represents dependencies for MCP server
type Params struct {
	fx.In

	Service *similarity.Service
	Logger  *zap.Logger `optional:"true"`
}

// NewMCPServer creates the MCP server backed by the similarity service
func NewMCPServer(params Params) *server.MCPServer {
	return appmcp.New(params.Service, params.Logger)
}

// Module provides MCP server components
var Module = fx.Module("mcp",
	fx.Provide(NewMCPServer),
)
