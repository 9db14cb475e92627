// esta es la logica de InteractionApplicationCommand de discordgo
// aqui solo vamos a manejar logica de la interaccion del usuario y despachar a los servicios correspondientes
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// el scrape tiene su propio timeout de 30s; esto cubre catálogo + sala + store
const commandTimeout = 75 * time.Second

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	log := r.withTrace(zap.String("cmd", cmd.Name), zap.String("user", userID(ic)), zap.String("guild", ic.GuildID))
	log.Info("slash")

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic en comando", zap.Any("panic", rec))
			r.reply(ic, "❌ Ocurrió un error inesperado procesando el comando.")
		}
	}()

	if ic.GuildID == "" {
		_ = r.deferReply(ic, true)
		r.reply(ic, "ℹ️ Las salas son por servidor: usá los comandos dentro de un servidor.")
		return
	}

	// /rooms y /open se publican en el canal; el resto es efímero
	public := cmd.Name == "open" || cmd.Name == "rooms"
	_ = r.deferReply(ic, !public)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	defer step(log, "cmd."+cmd.Name)()

	group := ic.GuildID

	switch cmd.Name {

	//--> ayuda
	case "roomhelp":
		r.reply(ic, helpText)

	//--> catálogo de juegos
	case "games":
		games, err := r.catalog.Catalog(ctx)
		if err != nil {
			log.Warn("catálogo", zap.Error(err))
			r.reply(ic, userMessage(err))
			return
		}
		r.replyChunks(ic, formatCatalog(games))

	//--> abrir sala
	case "open":
		if !r.openLimiter.Allow(userID(ic)) {
			r.reply(ic, "⏳ Esperá unos segundos antes de abrir otra sala.")
			return
		}
		game, _ := optStr(ic, "game")
		code, _ := optStr(ic, "room")
		res, err := r.rooms.Open(ctx, group, game, code)
		if err != nil {
			log.Info("open rechazado", zap.String("game", game), zap.Error(err))
			r.reply(ic, userMessage(err))
			return
		}
		r.reply(ic, formatOpen(res, r.baseURL))

	//--> listar salas
	case "rooms":
		filter, _ := optStr(ic, "game")
		rooms, err := r.rooms.Query(ctx, group, filter)
		if err != nil {
			log.Warn("query", zap.Error(err))
			r.reply(ic, userMessage(err))
			return
		}
		if len(rooms) == 0 {
			if filter != "" {
				r.reply(ic, "ℹ️ No hay salas abiertas de "+filter+".")
				return
			}
			r.reply(ic, "ℹ️ No hay salas abiertas en este servidor.")
			return
		}
		occ := r.occupancy(ctx, log, rooms)
		// con filtro los números no coinciden con /close index, se cierra con el menú
		lines := formatRooms(rooms, occ, r.baseURL, filter == "", time.Now())
		if row, ok := closeSelect(rooms); ok {
			r.replyChunks(ic, lines, row)
			return
		}
		r.replyChunks(ic, lines)

	//--> cerrar sala
	case "close":
		sub, _ := subcmdName(ic)
		switch sub {
		case "index":
			i, _ := optInt(ic, "index")
			rec, err := r.rooms.CloseByIndex(ctx, group, i)
			if err != nil {
				r.reply(ic, userMessage(err))
				return
			}
			r.reply(ic, "✅ Cerré la sala "+rec.GameName+" "+rec.RoomID+".")
		case "room":
			game, _ := optStr(ic, "game")
			room, _ := optStr(ic, "room")
			rec, err := r.rooms.CloseByIdentity(ctx, group, game, room)
			if err != nil {
				r.reply(ic, userMessage(err))
				return
			}
			r.reply(ic, "✅ Cerré la sala "+rec.GameName+" "+rec.RoomID+".")
		default:
			r.reply(ic, closeUsage)
		}

	//--> solo admins
	case "rooms-admin":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		sub, _ := subcmdName(ic)
		switch sub {
		case "clear":
			if err := r.rooms.Clear(ctx, group); err != nil {
				log.Error("clear", zap.Error(err))
				r.reply(ic, userMessage(err))
				return
			}
			r.reply(ic, "🧹 Borré todas las salas del servidor.")
		case "refresh":
			if err := r.catalog.Invalidate(ctx); err != nil {
				r.reply(ic, userMessage(err))
				return
			}
			games, err := r.catalog.Catalog(ctx)
			if err != nil {
				r.reply(ic, userMessage(err))
				return
			}
			r.reply(ic, fmt.Sprintf("✅ Catálogo actualizado: %d juegos.", len(games)))
			log.Info("catálogo refrescado a mano", zap.Int("games", len(games)))
		default:
			r.reply(ic, adminUsage)
		}

	default:
		r.reply(ic, "Comando desconocido. Usa `/roomhelp`.")
	}
}

// occupancy es best-effort: una sala que falla queda sin datos.
func (r *Router) occupancy(ctx context.Context, log *zap.Logger, rooms []domain.RoomRecord) map[domain.RoomKey]*domain.Occupancy {
	if !r.rooms.OccupancyEnabled() {
		return nil
	}
	out := make(map[domain.RoomKey]*domain.Occupancy, len(rooms))
	for _, rec := range rooms {
		o, err := r.rooms.Occupancy(ctx, rec)
		if err != nil {
			log.Debug("ocupación", zap.String("room", rec.RoomID), zap.Error(err))
			continue
		}
		out[rec.Key()] = o
	}
	return out
}
