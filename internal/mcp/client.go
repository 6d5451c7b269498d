package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/0x5457/phosim/internal/models"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client wraps an initialized MCP client session.
type Client struct{ c *client.Client }

// NewStdioClient launches command (normally this binary with "mcp") and
// speaks MCP over its stdin/stdout.
func NewStdioClient(ctx context.Context, command string, args ...string) (*Client, error) {
	tr := transport.NewStdio(command, nil, args...)
	return start(ctx, client.NewClient(tr))
}

// NewHTTPClient connects to a streamable HTTP endpoint such as http://host:8081/mcp.
func NewHTTPClient(ctx context.Context, url string) (*Client, error) {
	tr, err := transport.NewStreamableHTTP(url)
	if err != nil {
		return nil, fmt.Errorf("new streamable http: %w", err)
	}
	return start(ctx, client.NewClient(tr))
}

// NewSSEClient connects to an SSE endpoint such as http://host:8081/mcp/sse.
func NewSSEClient(ctx context.Context, url string) (*Client, error) {
	tr, err := transport.NewSSE(url)
	if err != nil {
		return nil, fmt.Errorf("new sse: %w", err)
	}
	return start(ctx, client.NewClient(tr))
}

// NewInProcessClient talks to srv without any transport in between.
func NewInProcessClient(ctx context.Context, srv *server.MCPServer) (*Client, error) {
	return start(ctx, client.NewClient(transport.NewInProcessTransport(srv)))
}

func start(ctx context.Context, cli *client.Client) (*Client, error) {
	// sse and stdio transports keep using ctx for the life of the session
	if err := cli.Start(ctx); err != nil {
		return nil, fmt.Errorf("start mcp client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "phosim-cli", Version: ServerVersion}
	initReq.Params.Capabilities = mcp.ClientCapabilities{}

	if _, err := cli.Initialize(ctx, initReq); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("init mcp client: %w", err)
	}
	return &Client{c: cli}, nil
}

func (c *Client) Close() error { return c.c.Close() }

func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	res, err := c.c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	return res.Tools, nil
}

func (c *Client) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	return c.c.CallTool(ctx, mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
}

func (c *Client) Similarity(ctx context.Context, sentence1, sentence2 string) (float64, error) {
	res, err := c.Call(ctx, ToolSimilarity, map[string]any{
		"sentence1": sentence1,
		"sentence2": sentence2,
	})
	if err != nil {
		return 0, err
	}
	var out models.SimilarityResponse
	if err := DecodeResult(res, &out); err != nil {
		return 0, err
	}
	return out.Similarity, nil
}

func (c *Client) BatchSimilarity(ctx context.Context, sentence string, candidates []string) ([]float64, error) {
	res, err := c.Call(ctx, ToolBatchSimilarity, map[string]any{
		"sentence":   sentence,
		"candidates": candidates,
	})
	if err != nil {
		return nil, err
	}
	var out models.BatchSimilarityResponse
	if err := DecodeResult(res, &out); err != nil {
		return nil, err
	}
	return out.Similarities, nil
}

// DecodeResult turns a tool error into a Go error and otherwise decodes the
// structured content into v.
func DecodeResult(res *mcp.CallToolResult, v any) error {
	if res == nil {
		return errors.New("empty tool result")
	}
	if res.IsError {
		return fmt.Errorf("tool error: %s", resultText(res))
	}
	if res.StructuredContent == nil {
		return errors.New("tool result has no structured content")
	}
	// the value is a typed struct in-process and a generic map off the wire
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		return fmt.Errorf("encode structured content: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode structured content: %w", err)
	}
	return nil
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "; ")
}
