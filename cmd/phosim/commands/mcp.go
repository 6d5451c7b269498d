package commands

import (
	"context"
	"fmt"

	"github.com/0x5457/phosim/cmd/cmdsfx"
	"github.com/0x5457/phosim/internal/app/appfx"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// NewMCPServeCommand runs an MCP server exposing the similarity tools.
func NewMCPServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run MCP server",
		Long:  "Run MCP server, provide the similarity and batch_similarity tools.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadViper(cmd, map[string]string{
				"transport": "mcp.transport",
				"address":   "mcp.addr",
			})
			if err != nil {
				return err
			}

			var runner *cmdsfx.CommandRunner
			app := appfx.NewApp(v, fx.Populate(&runner))
			startCtx, cancel := context.WithTimeout(cmd.Context(), app.StartTimeout())
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return fmt.Errorf("start: %w", err)
			}
			defer func() { _ = app.Stop(context.Background()) }()

			return runner.RunMCPServer(cmd.Context(), "", "")
		},
	}

	cmd.Flags().StringP("transport", "t", "", "transport (stdio, http, sse), default stdio")
	cmd.Flags().StringP("address", "a", "", "listen address for http and sse, default :8081")
	return cmd
}
