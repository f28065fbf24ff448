package main

import (
	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
	"github.com/matiasleandrokruk/arcana/internal/infra/config"
	"github.com/matiasleandrokruk/arcana/internal/mcpserver"
)

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the reading tools over MCP on stdin/stdout",
		Long: `Mcp speaks the Model Context Protocol on stdin/stdout so assistants can
call generate_reading and list_spreads. Logs go to stderr.`,
		Args: c.noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := jsonLogger(c.errOut, cfg.LogLevel)
			catalog, err := tarot.LoadCatalog()
			if err != nil {
				return err
			}
			readings := newReadingService(cfg, nil, logger, c.store().Source())
			return mcpserver.New(readings, catalog, logger).Run(cmd.Context())
		},
	}
}
