package main

import (
	"github.com/aretw0/implicate/internal/cli"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <type> <id> <value>",
	Short: "Store an explicit attribute value",
	Long:  `Stores a value in the configured backend. The value is parsed as JSON when possible, otherwise stored as a string.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		return rt.Registry.Put(cmd.Context(), args[0], args[1], cli.ParseValue(args[2]))
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
