package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jose-valero/tabletop-rooms-bot/internal/infra/config"
	"github.com/jose-valero/tabletop-rooms-bot/internal/infra/logging"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rooms-bot",
	Short: "Bot de salas de juegos de mesa para Discord",
	Long: `Abre, lista y cierra salas de https://game.hullqin.cn por servidor de Discord.

Sin subcomando levanta el bot (equivale a "serve").`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cmd.Name() == serveCmd.Name() || cmd == cmd.Root())
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, catalogCmd, roomsCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
