package commands

import (
	"fmt"

	"github.com/0x5457/phosim/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// globalFlags maps persistent flags onto config keys.
var globalFlags = map[string]string{
	"provider":   "model.provider",
	"embed-url":  "model.embed_url",
	"model":      "model.id",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// NewRootCommand assembles the phosim command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "phosim",
		Short:         "Vietnamese sentence similarity with PhoBERT embeddings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.String("config", "", "config file (default ./phosim.yaml, then ~/.phosim/config.yaml)")
	f.String("env-file", ".env", "dotenv file loaded before reading PHOSIM_* variables")
	f.String("provider", "", "embedding provider (api, local)")
	f.String("embed-url", "", "embed_all endpoint of the embedding server")
	f.String("model", "", "model id reported by the provider")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-format", "", "log format (json, console)")

	root.AddCommand(
		NewServeCommand(),
		NewMCPServeCommand(),
		NewMCPClientCommand(),
		NewCompareCommand(),
	)
	return root
}

// loadViper layers flags over PHOSIM_* environment (after the dotenv file)
// over the config file over defaults. local binds command specific flags.
func loadViper(cmd *cobra.Command, local map[string]string) (*viper.Viper, error) {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := config.NewViper()
	for _, bindings := range []map[string]string{globalFlags, local} {
		for name, key := range bindings {
			fl := flags.Lookup(name)
			if fl == nil {
				continue
			}
			if err := v.BindPFlag(key, fl); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfgPath, _ := flags.GetString("config")
	if err := config.ReadFile(v, cfgPath); err != nil {
		return nil, err
	}
	return v, nil
}

// forwardedFlags returns the global flags the user set explicitly, ready to
// pass to a child phosim process.
func forwardedFlags(cmd *cobra.Command) []string {
	var args []string
	for _, name := range []string{"config", "env-file", "provider", "embed-url", "model", "log-level", "log-format"} {
		fl := cmd.Flags().Lookup(name)
		if fl != nil && fl.Changed {
			args = append(args, "--"+name, fl.Value.String())
		}
	}
	return args
}
