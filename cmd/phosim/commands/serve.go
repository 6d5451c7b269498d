package commands

import (
	"context"
	"fmt"

	"github.com/0x5457/phosim/internal/app/appfx"
	"github.com/spf13/cobra"
)

// NewServeCommand runs the HTTP API until interrupted.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP similarity API",
		Long:  "Serve POST /similarity, POST /batch_similarity and GET / (plus /metrics when enabled).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadViper(cmd, map[string]string{"addr": "http.addr"})
			if err != nil {
				return err
			}

			app := appfx.NewServeApp(v)
			startCtx, cancel := context.WithTimeout(cmd.Context(), app.StartTimeout())
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return fmt.Errorf("start: %w", err)
			}

			<-cmd.Context().Done()

			stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
			defer cancelStop()
			return app.Stop(stopCtx)
		},
	}

	cmd.Flags().StringP("addr", "a", "", "listen address (default :8001)")
	return cmd
}
