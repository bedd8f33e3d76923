package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/stroke-tools-mcp/internal/logging"
	"github.com/ironsheep/stroke-tools-mcp/internal/server"
)

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	logging.Logger().Debug("stroke MCP server starting",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
		"sensitivity", a.cfg.Recognition.Sensitivity,
		"seed", a.cfg.Recognition.Seed,
	)

	srv := server.New(a.cfg, Version)
	if err := srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
