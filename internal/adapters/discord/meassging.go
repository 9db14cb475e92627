package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Defer efímero: el scrape puede tardar bastante más que los 3s de Discord.
func (r *Router) deferReply(ic *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		r.log.Warn("defer falló", zap.Error(err))
	}
	return err
}

// reply manda el followup de una interacción ya diferida.
func (r *Router) reply(ic *discordgo.InteractionCreate, content string, components ...discordgo.MessageComponent) {
	_, err := r.s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
		Content:         content,
		Components:      components,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err == nil {
		return
	}

	// Fallback sólo si todavía no hay respuesta (webhook desconocido)
	var reqErr *discordgo.RESTError
	if errors.As(err, &reqErr) && reqErr.Message != nil && reqErr.Message.Code == discordgo.ErrCodeUnknownWebhook {
		_ = r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    content,
				Components: components,
				Flags:      discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}
	r.log.Warn("reply falló", zap.Error(err))
}

// replyChunks parte mensajes largos en varios followups.
func (r *Router) replyChunks(ic *discordgo.InteractionCreate, lines []string, components ...discordgo.MessageComponent) {
	chunks := chunkLines(lines, maxMessageLen)
	for i, c := range chunks {
		if i == len(chunks)-1 {
			r.reply(ic, c, components...)
			return
		}
		r.reply(ic, c)
	}
}
