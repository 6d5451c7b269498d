package commands

import (
	"context"
	"fmt"

	"github.com/0x5457/phosim/cmd/cmdsfx"
	"github.com/0x5457/phosim/internal/app/appfx"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// NewCompareCommand scores sentences once without starting a server.
func NewCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <sentence> <candidate> [candidate...]",
		Short: "Print similarity scores as JSON",
		Long: `Score one or more candidates against a reference sentence.
One candidate prints {"similarity": ...}, several print {"similarities": [...]}.

Example:
  phosim compare --provider local "Tôi yêu Việt Nam" "Tôi yêu Hà Nội"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadViper(cmd, nil)
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

			return runner.RunCompare(cmd.Context(), cmd.OutOrStdout(), args[0], args[1:])
		},
	}
}
