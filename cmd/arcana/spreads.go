package main

import (
	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
)

func (c *cli) spreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spreads",
		Short: "List the available spreads",
		Args:  c.noArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			catalog, err := tarot.LoadCatalog()
			if err != nil {
				return err
			}
			return c.renderer().Spreads(catalog.Spreads)
		},
	}
}
