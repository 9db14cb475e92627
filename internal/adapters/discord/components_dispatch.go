package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	log := r.withTrace(zap.String("component", data.CustomID), zap.String("user", userID(ic)), zap.String("guild", ic.GuildID))

	_ = r.deferReply(ic, true)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch data.CustomID {

	// menú de /rooms: cierra por (juego, sala)
	case closeSelectID:
		if !r.clickLimiter.Allow(userID(ic)) {
			r.reply(ic, "⏳ Esperá un segundo…")
			return
		}
		if len(data.Values) == 0 {
			r.reply(ic, "⚠️ Selección inválida.")
			return
		}
		key, ok := parseSelectValue(data.Values[0])
		if !ok {
			r.reply(ic, "⚠️ Selección inválida.")
			return
		}
		rec, err := r.rooms.CloseByIdentity(ctx, ic.GuildID, key.GameID, key.RoomID)
		if err != nil {
			log.Info("close desde menú", zap.Error(err))
			r.reply(ic, userMessage(err))
			return
		}
		log.Info("sala cerrada desde menú", zap.String("game", rec.GameID), zap.String("room", rec.RoomID))
		r.reply(ic, "✅ Cerré la sala "+rec.GameName+" "+rec.RoomID+".")

	default:
		log.Debug("componente desconocido")
	}
}
