package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/implicate"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of implicate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "implicate version %s\n", strings.TrimSpace(implicate.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
