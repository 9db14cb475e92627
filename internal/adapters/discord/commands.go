package discord

import "github.com/bwmarrin/discordgo"

var minIndex = float64(0)

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "games",
		Description: "Lista los juegos disponibles",
	},
	{
		Name:        "open",
		Description: "Abre una sala de un juego",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "game",
				Description: "Nombre o id del juego",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "room",
				Description: "Código de una sala que ya creaste (4 caracteres)",
				MinLength:   intPtr(4),
				MaxLength:   4,
			},
		},
	},
	{
		Name:        "rooms",
		Description: "Salas abiertas en este servidor",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "game",
			Description: "Filtrar por juego",
		}},
	},
	{
		Name:        "close",
		Description: "Cierra una sala",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "index",
				Description: "Por número de la lista de /rooms",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "index",
					Description: "Número de sala",
					Required:    true,
					MinValue:    &minIndex,
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "room",
				Description: "Por juego y código",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "game", Description: "Nombre o id del juego", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "room", Description: "Código de la sala", Required: true},
				},
			},
		},
	},
	{
		Name:        "roomhelp",
		Description: "Cómo usar el bot de salas",
	},
	{
		Name:        "rooms-admin",
		Description: "Administración de salas (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "clear", Description: "Borra todas las salas del servidor"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "refresh", Description: "Vuelve a leer el catálogo de juegos"},
		},
	},
}

func intPtr(v int) *int { return &v }
