package discord

import "github.com/bwmarrin/discordgo"

// los comandos no tienen sentido por DM: todo opera sobre un guild
var guildOnly = false

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:         "agegate",
		Description:  "AgeGate: bans automáticos de cuentas demasiado nuevas (admins)",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Ver la configuración actual"},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "toggle",
				Description: "Activar o desactivar AgeGate",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "on", Description: "Encendido (vacío = alternar)"},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "minage",
				Description: "Edad mínima de cuenta",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "days", Description: "Días", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "hours", Description: "Horas extra (0-23)"},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "reason",
				Description: "Razón del ban (se manda por DM y queda en el audit log)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "Hasta 512 caracteres", Required: true},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "action",
				Description: "Qué hacer con una cuenta demasiado nueva",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Respuesta", Required: true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Ban inmediato", Value: "ban"},
							{Name: "Ban diferido", Value: "delay"},
							{Name: "Sólo avisar al staff", Value: "notify"},
						},
					},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "bantype",
				Description: "Ban permanente o temporal",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Tipo", Required: true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Permanente", Value: "permanent"},
							{Name: "Temporal", Value: "temporary"},
						},
					},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "banduration",
				Description: "Duración del ban temporal",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "days", Description: "Días (>0)", Required: true},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "delayduration",
				Description: "Demora del ban diferido",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "hours", Description: "Horas (>0)", Required: true},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "ratelimit",
				Description: "Máximo de bans inmediatos por minuto (anti-raid)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "per_minute", Description: "Bans por minuto (≥1)", Required: true},
				},
			},
			{
				Type: discordgo.ApplicationCommandOptionSubCommand, Name: "staffchannel",
				Description: "Canal para avisos al staff",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type: discordgo.ApplicationCommandOptionChannel, Name: "channel",
						Description:  "Vacío = sin avisos",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
				},
			},
		},
	},
	{
		Name:         "agegateset",
		Description:  "Abre el panel interactivo de configuración de AgeGate (admins)",
		DMPermission: &guildOnly,
	},
}
