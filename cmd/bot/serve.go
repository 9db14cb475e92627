package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	discordrouter "github.com/jose-valero/tabletop-rooms-bot/internal/adapters/discord"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el bot de Discord",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("cerrando", zap.Error(err))
		}
	}()

	if err := a.startBrowser(ctx); err != nil {
		return err
	}
	logger.Info("✅ navegador listo")

	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		return err
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	if err := s.Open(); err != nil {
		return err
	}
	defer s.Close()
	logger.Info("✅ conectado", zap.String("user", s.State.User.Username), zap.String("id", s.State.User.ID))

	r := discordrouter.NewRouter(s, discordrouter.Config{
		GuildID:      cfg.DiscordGuild,
		AdminRoleIDs: cfg.AdminRoleIDs,
		BaseURL:      cfg.BaseURL,
	}, a.rooms, a.catalog, logger.Named("discord"))
	if err := r.Register(); err != nil {
		return err
	}
	r.Handlers()
	logger.Info("✅ comandos registrados", zap.String("guild", cfg.DiscordGuild))

	// calienta el catálogo; si falla se reintenta en el primer comando
	go func() {
		if _, err := a.catalog.Catalog(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("catálogo inicial", zap.Error(err))
		}
	}()

	// Esperar señal
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	<-sigCtx.Done()
	logger.Info("apagando")
	return nil
}
