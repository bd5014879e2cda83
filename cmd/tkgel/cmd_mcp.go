package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkge-lab/tkgel/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run an MCP server exposing config and trace tools over stdio",
		Long: `Run a Model Context Protocol server so agents can inspect the experiment
configuration and trace stores.

Tools: tkgel_get, tkgel_validate, tkgel_resolve, tkgel_trace_best.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			configPath, _ := cmd.Flags().GetString("config")

			server, err := mcp.NewServer(&mcp.Config{
				Name:       "tkgel",
				Version:    version,
				ConfigPath: configPath,
				Root:       root,
			})
			if err != nil {
				return fmt.Errorf("creating MCP server: %w", err)
			}
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().String("config", "config.yaml", "Experiment config file to serve")
	return cmd
}
