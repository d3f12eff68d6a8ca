package main

import (
	"fmt"
	"os"

	"github.com/aretw0/implicate/internal/cli"
	"github.com/aretw0/implicate/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "implicate",
	Short: "Implicate is a typed attribute store with lazy rule-based derivation",
	Long: `Implicate stores explicit attribute values per entity and derives missing ones
on demand from rules declared in a configuration file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and resolution tracing")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

func options(cmd *cobra.Command) cli.Options {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	format, _ := cmd.Flags().GetString("log-format")
	return cli.Options{ConfigPath: path, Debug: debug, LogFormat: format}
}

// loadRuntime wires a registry from the persistent flags.
func loadRuntime(cmd *cobra.Command) (*cli.Runtime, error) {
	opts := options(cmd)
	logger, err := cli.CreateLogger(opts)
	if err != nil {
		return nil, err
	}
	return cli.NewRuntime(cmd.Context(), opts, logger)
}
