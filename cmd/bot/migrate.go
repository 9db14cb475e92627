package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jose-valero/tabletop-rooms-bot/internal/infra/config"
	"github.com/jose-valero/tabletop-rooms-bot/internal/infra/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones de Postgres (STORE_BACKEND=postgres)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.StoreBackend != config.BackendPostgres {
			return errors.New("migrate sólo aplica con STORE_BACKEND=postgres")
		}
		ctx := cmd.Context()
		db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := storage.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("✅ migraciones aplicadas")
		return nil
	},
}
