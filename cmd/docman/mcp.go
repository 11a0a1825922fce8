package main

import (
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/spf13/cobra"

	"github.com/docman-dev/docman/internal/config"
	"github.com/docman-dev/docman/internal/log"
	"github.com/docman-dev/docman/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server for docman on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol
			if !gconfig.Shared.GetBool(config.KeyDebug) {
				_ = log.SetLevel("fatal")
			}

			dbCtx, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			return mcp.NewServer(dbCtx, version, nil).Run(cmd.Context())
		},
	}
}
