package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/agegate-bot/internal/app/service"
)

// Gateway implementa service.Gateway sobre la sesión de discordgo.
type Gateway struct {
	s *discordgo.Session
}

func NewGateway(s *discordgo.Session) *Gateway { return &Gateway{s: s} }

// CreationTime: el snowflake lleva el timestamp de creación de la cuenta.
func (g *Gateway) CreationTime(userID string) (time.Time, error) {
	return discordgo.SnowflakeTimestamp(userID)
}

func (g *Gateway) MemberExists(ctx context.Context, guildID, userID string) (bool, error) {
	if m, err := g.s.State.Member(guildID, userID); err == nil && m != nil {
		return true, nil
	}
	_, err := g.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if errors.Is(mapErr(err), service.ErrNotFound) {
			return false, nil
		}
		return false, mapErr(err)
	}
	return true, nil
}

func (g *Gateway) BanMember(ctx context.Context, guildID, userID, reason string) error {
	return mapErr(g.s.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)))
}

func (g *Gateway) UnbanMember(ctx context.Context, guildID, userID, reason string) error {
	return mapErr(g.s.GuildBanDelete(guildID, userID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

func (g *Gateway) SendDM(ctx context.Context, userID, text string) error {
	ch, err := g.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return mapErr(err)
	}
	_, err = g.s.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx))
	return mapErr(err)
}

func (g *Gateway) NotifyStaff(ctx context.Context, channelID, title, body string) error {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: body,
		Color:       0xED4245, // rojo de Discord
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	_, err := g.s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return mapErr(err)
}

// mapErr traduce los RESTError de Discord a los centinelas del port.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeMissingPermissions,
			discordgo.ErrCodeMissingAccess,
			discordgo.ErrCodeCannotSendMessagesToThisUser:
			return fmt.Errorf("%w: %v", service.ErrForbidden, err)
		case discordgo.ErrCodeUnknownUser,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownBan,
			discordgo.ErrCodeUnknownChannel:
			return fmt.Errorf("%w: %v", service.ErrNotFound, err)
		}
	}
	return err
}
