package discord

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/tabletop-rooms-bot/internal/adapters/browser"
	"github.com/jose-valero/tabletop-rooms-bot/internal/adapters/hullqin"
	"github.com/jose-valero/tabletop-rooms-bot/internal/app/service"
	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

const (
	maxMessageLen = 1900
	maxSelect     = 25
	closeSelectID = "rooms_close"
)

const helpText = "🎲 **Salas de juegos**\n" +
	"▶ `/open game:<juego> [room:<código>]` abre una sala nueva o registra una que ya creaste\n" +
	"▶ `/games` lista los juegos disponibles\n" +
	"▶ `/rooms [game:<juego>]` muestra las salas abiertas del servidor\n" +
	"▶ `/close index:<n>` cierra por número de la lista de `/rooms`\n" +
	"▶ `/close room game:<juego> room:<código>` cierra por juego y código\n" +
	"Las salas se borran solas después de un rato."

const (
	closeUsage = "Usa `/close index` o `/close room`."
	adminUsage = "Usa `/rooms-admin clear` o `/rooms-admin refresh`."
)

// userMessage traduce errores del servicio a algo que el usuario entienda.
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidRoomCode):
		return "❌ El código de sala tiene que ser de 4 letras minúsculas o números."
	case errors.Is(err, service.ErrUnknownGame):
		return "❌ No encontré ese juego. Usa `/games` para ver los disponibles."
	case errors.Is(err, service.ErrDuplicateRoom):
		return "ℹ️ Esa sala ya está registrada en este servidor. Mirá `/rooms`."
	case errors.Is(err, service.ErrIndexOutOfRange):
		return "❌ Ese número no está en la lista. Usa `/rooms` para ver los números válidos."
	case errors.Is(err, service.ErrRoomNotFound):
		return "❌ No encontré esa sala. Revisá el juego y el código."
	case isSiteFailure(err):
		return "⚠️ No pude completar la búsqueda en el sitio de juegos. Probá de nuevo en un rato."
	default:
		return "⚠️ Ocurrió un error inesperado."
	}
}

func isSiteFailure(err error) bool {
	var se *browser.SessionError
	return hullqin.IsScrapeError(err) || errors.Is(err, browser.ErrNotStarted) || errors.As(err, &se)
}

func ruleText(link string) string {
	if link == "" || link == domain.NoRuleLink {
		return "sin reglas publicadas"
	}
	return "<" + link + ">"
}

func formatOpen(res service.OpenResult, base string) string {
	rec := res.Record
	var sb strings.Builder
	sb.WriteString("🎉 **Sala abierta**\n")
	fmt.Fprintf(&sb, "Juego: %s\n", rec.GameName)
	fmt.Fprintf(&sb, "Sala: %s\n", rec.URL(base))
	fmt.Fprintf(&sb, "Reglas: %s\n", ruleText(rec.RuleLink))
	fmt.Fprintf(&sb, "Vence <t:%d:R>", rec.ExpiresAt.Unix())
	if res.UserSuppliedCode {
		sb.WriteString("\n⚠️ Pasaste un código propio: no se verificó que la sala esté libre.")
	}
	return sb.String()
}

func formatCatalog(games []domain.GameDescriptor) []string {
	lines := make([]string, 0, len(games)+1)
	lines = append(lines, "📚 **Juegos disponibles**")
	for _, g := range games {
		lines = append(lines, fmt.Sprintf("• %s (`%s`)", g.GameName, g.GameID))
	}
	return lines
}

// formatRooms arma la lista de /rooms. Con indexed los números son las
// posiciones reales de la colección, las que usa /close index.
func formatRooms(rooms []domain.RoomRecord, occ map[domain.RoomKey]*domain.Occupancy, base string, indexed bool, now time.Time) []string {
	lines := make([]string, 0, len(rooms)+1)
	lines = append(lines, "📋 **Salas abiertas**")
	for i, r := range rooms {
		head := "•"
		if indexed {
			head = fmt.Sprintf("`%d.`", i)
		}
		line := fmt.Sprintf("%s **%s**", head, r.GameName)
		if o := occ[r.Key()]; o != nil {
			line += fmt.Sprintf(" (%d/%d)", o.Current, o.Total)
		}
		line += fmt.Sprintf(": %s · vence en %s\n> reglas: %s", r.URL(base), fmtRemain(r.ExpiresAt.Sub(now)), ruleText(r.RuleLink))
		if o := occ[r.Key()]; o != nil && len(o.Players) > 0 {
			line += "\n> jugadores: " + strings.Join(o.Players, ", ")
		}
		lines = append(lines, line)
	}
	return lines
}

// closeSelect arma el menú para cerrar por (juego, sala), que no depende
// de la posición en la lista.
func closeSelect(rooms []domain.RoomRecord) (discordgo.ActionsRow, bool) {
	if len(rooms) == 0 {
		return discordgo.ActionsRow{}, false
	}
	if len(rooms) > maxSelect {
		rooms = rooms[:maxSelect]
	}
	opts := make([]discordgo.SelectMenuOption, 0, len(rooms))
	for _, r := range rooms {
		label := truncate(r.GameName+" · "+r.RoomID, 100)
		opts = append(opts, discordgo.SelectMenuOption{
			Label: label,
			Value: selectValue(r.Key()),
		})
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    closeSelectID,
				Placeholder: "Cerrar una sala",
				Options:     opts,
			},
		},
	}, true
}

func selectValue(k domain.RoomKey) string { return "room:" + k.GameID + "/" + k.RoomID }

func parseSelectValue(v string) (domain.RoomKey, bool) {
	rest, ok := strings.CutPrefix(v, "room:")
	if !ok {
		return domain.RoomKey{}, false
	}
	game, room, ok := strings.Cut(rest, "/")
	if !ok || game == "" || room == "" {
		return domain.RoomKey{}, false
	}
	return domain.RoomKey{GameID: game, RoomID: room}, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// chunkLines junta líneas en mensajes de hasta max bytes sin partir una línea.
func chunkLines(lines []string, max int) []string {
	var (
		out []string
		sb  strings.Builder
	)
	for _, l := range lines {
		if len(l) > max {
			l = strings.ToValidUTF8(l[:max], "")
		}
		if sb.Len() > 0 && sb.Len()+1+len(l) > max {
			out = append(out, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l)
	}
	if sb.Len() > 0 {
		out = append(out, sb.String())
	}
	return out
}
