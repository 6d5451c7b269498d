package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/0x5457/phosim/internal/app/appfx"
	appmcp "github.com/0x5457/phosim/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const (
	transportStdio  = "stdio"
	transportHTTP   = "http"
	transportSSE    = "sse"
	transportInproc = "inproc"

	defaultHTTPURL = "http://localhost:8081/mcp"
	defaultSSEURL  = "http://localhost:8081/mcp/sse"
	clientTimeout  = 30 * time.Second
)

// NewMCPClientCommand creates commands for connecting to and interacting with MCP servers
func NewMCPClientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-client",
		Short: "MCP client commands",
		Long:  "Commands for connecting to and interacting with a phosim MCP server",
	}

	cmd.AddCommand(
		newMCPListToolsCommand(),
		newMCPCallCommand(),
		newMCPSimilarityCommand(),
		newMCPBatchCommand(),
	)

	cmd.PersistentFlags().
		StringP("transport", "t", transportStdio, "transport (stdio, http, sse, inproc)")
	cmd.PersistentFlags().
		StringP("address", "a", "", "server URL (http/sse), ignored for stdio/inproc")
	return cmd
}

// withClient connects using the transport flags, runs fn and tears the
// session down again.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *appmcp.Client) error) error {
	transport, _ := cmd.Flags().GetString("transport")
	address, _ := cmd.Flags().GetString("address")

	ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
	defer cancel()

	client, closeFn, err := createMCPClient(ctx, cmd, transport, address)
	if err != nil {
		return fmt.Errorf("create MCP client failed: %w", err)
	}
	defer closeFn()
	return fn(ctx, client)
}

func createMCPClient(
	ctx context.Context,
	cmd *cobra.Command,
	transport, address string,
) (*appmcp.Client, func(), error) {
	switch transport {
	case transportStdio:
		exe, err := os.Executable()
		if err != nil {
			return nil, nil, fmt.Errorf("locate executable: %w", err)
		}
		args := append([]string{"mcp", "--transport", transportStdio}, forwardedFlags(cmd)...)
		c, err := appmcp.NewStdioClient(ctx, exe, args...)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	case transportHTTP:
		if address == "" {
			address = defaultHTTPURL
		}
		c, err := appmcp.NewHTTPClient(ctx, address)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	case transportSSE:
		if address == "" {
			address = defaultSSEURL
		}
		c, err := appmcp.NewSSEClient(ctx, address)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	case transportInproc:
		v, err := loadViper(cmd, nil)
		if err != nil {
			return nil, nil, err
		}
		var srv *server.MCPServer
		app := appfx.NewApp(v, fx.Populate(&srv))
		if err := app.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("initialize components failed: %w", err)
		}
		c, err := appmcp.NewInProcessClient(ctx, srv)
		if err != nil {
			_ = app.Stop(context.Background())
			return nil, nil, err
		}
		return c, func() {
			_ = c.Close()
			_ = app.Stop(context.Background())
		}, nil
	default:
		return nil, nil, fmt.Errorf(
			"unsupported transport: %s (supported: stdio, http, sse, inproc)",
			transport,
		)
	}
}

func newMCPListToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-tools",
		Short: "List available MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *appmcp.Client) error {
				tools, err := c.ListTools(ctx)
				if err != nil {
					return fmt.Errorf("failed to list tools: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(tools) == 0 {
					_, _ = fmt.Fprintln(out, "No tools available")
					return nil
				}

				_, _ = fmt.Fprintf(out, "Available MCP tools (%d):\n\n", len(tools))
				for i, tool := range tools {
					_, _ = fmt.Fprintf(out, "%d. %s\n", i+1, tool.Name)
					if tool.Description != "" {
						_, _ = fmt.Fprintf(out, "   Description: %s\n", tool.Description)
					}
					names := make([]string, 0, len(tool.InputSchema.Properties))
					for name := range tool.InputSchema.Properties {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						required := ""
						if slices.Contains(tool.InputSchema.Required, name) {
							required = " (required)"
						}
						desc := ""
						if prop, ok := tool.InputSchema.Properties[name].(map[string]any); ok {
							if d, ok := prop["description"].(string); ok {
								desc = ": " + d
							}
						}
						_, _ = fmt.Fprintf(out, "     - %s%s%s\n", name, required, desc)
					}
					_, _ = fmt.Fprintln(out)
				}
				return nil
			})
		},
	}
}

func newMCPCallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool_name> [key=value...]",
		Short: "Call a specific MCP tool",
		Long: `Call a specific MCP tool with arguments.
Arguments are key=value pairs; a value starting with '[' is parsed as a JSON array.

Example:
  phosim mcp-client call batch_similarity sentence="mèo" 'candidates=["chó","mèo"]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseToolArgs(args[1:])
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *appmcp.Client) error {
				result, err := c.Call(ctx, args[0], toolArgs)
				if err != nil {
					return fmt.Errorf("call tool failed: %w", err)
				}
				return printJSON(cmd, result)
			})
		},
	}
}

func newMCPSimilarityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "similarity <sentence1> <sentence2>",
		Short: "Score two sentences through the similarity tool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *appmcp.Client) error {
				score, err := c.Similarity(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("similarity failed: %w", err)
				}
				return printJSON(cmd, map[string]any{"similarity": score})
			})
		},
	}
}

func newMCPBatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <sentence> <candidate> [candidate...]",
		Short: "Score candidates through the batch_similarity tool",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *appmcp.Client) error {
				scores, err := c.BatchSimilarity(ctx, args[0], args[1:])
				if err != nil {
					return fmt.Errorf("batch_similarity failed: %w", err)
				}
				return printJSON(cmd, map[string]any{"similarities": scores})
			})
		},
	}
}

// parseToolArgs turns key=value pairs into tool arguments.
func parseToolArgs(pairs []string) (map[string]any, error) {
	toolArgs := make(map[string]any, len(pairs))
	for _, arg := range pairs {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument format: %s (expected key=value)", arg)
		}
		if strings.HasPrefix(value, "[") {
			var list []any
			if err := json.Unmarshal([]byte(value), &list); err == nil {
				toolArgs[key] = list
				continue
			}
		}
		toolArgs[key] = value
	}
	return toolArgs, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("format result failed: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return err
}
