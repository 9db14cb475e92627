package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Config struct {
	// GuildID vacío registra los comandos globales.
	GuildID      string
	AdminRoleIDs []string
	// BaseURL del sitio, para armar los links de sala.
	BaseURL string
}

type Router struct {
	s            *discordgo.Session
	guildID      string
	adminRoleIDs []string
	baseURL      string
	log          *zap.Logger

	rooms   RoomsAPI
	catalog CatalogAPI

	openLimiter  *userLimiter
	clickLimiter *userLimiter
}

func NewRouter(s *discordgo.Session, cfg Config, rooms RoomsAPI, catalog CatalogAPI, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		s:            s,
		guildID:      cfg.GuildID,
		adminRoleIDs: cfg.AdminRoleIDs,
		baseURL:      cfg.BaseURL,
		log:          log,
		rooms:        rooms,
		catalog:      catalog,
		openLimiter:  newUserLimiter(5 * time.Second),
		clickLimiter: newUserLimiter(time.Second),
	}
}

func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, r.guildID, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		}
	})
}

// userID funciona tanto en guild (Member) como en DM (User).
func userID(ic *discordgo.InteractionCreate) string {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}
