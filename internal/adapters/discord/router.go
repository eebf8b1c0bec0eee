package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/agegate-bot/internal/app/service"
)

type Router struct {
	s       *discordgo.Session
	guildID string // vacío = comandos globales

	adminRoleIDs []string
	admission    *service.AdmissionService
	settings     *service.SettingsService
	clickLimiter *clickLimiter
}

func NewRouter(
	s *discordgo.Session,
	guildID string,
	adminRoleIDs []string,
	admission *service.AdmissionService,
	settings *service.SettingsService,
) *Router {
	return &Router{
		s:            s,
		guildID:      guildID,
		adminRoleIDs: adminRoleIDs,
		admission:    admission,
		settings:     settings,
		clickLimiter: newClickLimiter(time.Second),
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
	// Interacciones: slash, componentes del panel, modals
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		case discordgo.InteractionModalSubmit:
			r.handleModalSubmit(s, ic)
		}
	})

	// El evento que dispara todo: member join
	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.User == nil || m.User.Bot {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.admission.HandleJoin(ctx, m.GuildID, m.User.ID); err != nil {
			log.Printf("[agegate] join user=%s guild=%s: %v", m.User.ID, m.GuildID, err)
		}
	})
}
