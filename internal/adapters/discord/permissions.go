package discord

import "github.com/bwmarrin/discordgo"

func (r *Router) requireAdminOrRoles(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil {
		r.reply(ic, "🔒 No tienes permisos para esta acción.")
		return false
	}

	// Owner
	if g, _ := s.State.Guild(ic.GuildID); g != nil && ic.Member.User != nil && ic.Member.User.ID == g.OwnerID {
		return true
	}

	// Administrator bit: Discord ya lo manda calculado en la interacción
	if ic.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	if hasAnyRole(ic.Member.Roles, r.adminRoleIDs) {
		return true
	}

	r.reply(ic, "🔒 No tienes permisos para esta acción.")
	return false
}

// Roles explícitos del bot
func hasAnyRole(have, want []string) bool {
	if len(want) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, rid := range have {
		set[rid] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
