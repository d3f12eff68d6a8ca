package main

import (
	"github.com/aretw0/implicate/internal/cli"
	"github.com/aretw0/implicate/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the registry as an MCP Server over Standard Input/Output,
or over SSE when --port is set.
This allows AI agents to read, store and explain attributes as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		srv := mcp.NewServer(rt.Registry, mcp.WithLogger(rt.Logger))

		if mcpPort > 0 {
			sc := cli.NewSignalContext(cmd.Context())
			defer sc.Cancel()
			return srv.ServeSSE(sc, mcpPort)
		}

		// Logs go to stderr so they never corrupt JSON-RPC on stdout
		rt.Logger.Info("Starting Implicate MCP Server (Stdio)")
		return srv.ServeStdio()
	},
}

func init() {
	mcpCmd.Flags().IntVar(&mcpPort, "port", 0, "Serve over SSE on this port instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}
