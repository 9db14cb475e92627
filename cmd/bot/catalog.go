package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogRefresh bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Muestra el catálogo de juegos (scrapea si venció)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.startBrowser(ctx); err != nil {
			return err
		}
		if catalogRefresh {
			if err := a.catalog.Invalidate(ctx); err != nil {
				return err
			}
		}
		games, err := a.catalog.Catalog(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, g := range games {
			fmt.Fprintf(out, "%-12s %s\t%s\n", g.GameID, g.GameName, g.RuleLink)
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogRefresh, "refresh", false, "ignora lo guardado y vuelve a scrapear")
}
