package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

const maxReasonLen = 512

// SettingsService: lectura y mutación validada de la config por guild.
// Las validaciones devuelven (mensaje, nil) sin tocar storage — el error
// de verdad queda para fallas de repo.
type SettingsService struct {
	repo   SettingsRepo
	ledger Ledger
}

func NewSettingsService(repo SettingsRepo, ledger Ledger) *SettingsService {
	return &SettingsService{repo: repo, ledger: ledger}
}

func (s *SettingsService) Current(ctx context.Context, guildID string) (storage.GuildSettings, error) {
	return s.repo.Get(ctx, guildID)
}

// SettingsPatch llega de /agegate o del panel; las duraciones ya vienen
// normalizadas por la capa de comandos.
type SettingsPatch struct {
	Enabled         *bool
	MinAge          *time.Duration
	Action          *storage.ActionType
	BanType         *storage.BanType
	TempBanDuration *time.Duration
	DelayDuration   *time.Duration
	BanReason       *string
	StaffChannelID  *string
	RateLimit       *int
}

// Update valida el patch, persiste y devuelve el panel de estado.
func (s *SettingsService) Update(ctx context.Context, guildID string, p SettingsPatch) (string, error) {
	var u storage.GuildSettingsUpdate

	if p.MinAge != nil {
		if *p.MinAge < 0 {
			return "❌ La edad mínima no puede ser negativa.", nil
		}
		v := int64(p.MinAge.Seconds())
		u.MinAgeSeconds = &v
	}
	if p.TempBanDuration != nil {
		if *p.TempBanDuration <= 0 {
			return "❌ La duración del ban temporal debe ser mayor a 0.", nil
		}
		v := int64(p.TempBanDuration.Seconds())
		u.TempBanSeconds = &v
	}
	if p.DelayDuration != nil {
		if *p.DelayDuration <= 0 {
			return "❌ La demora del ban diferido debe ser mayor a 0.", nil
		}
		v := int64(p.DelayDuration.Seconds())
		u.DelaySeconds = &v
	}
	if p.BanReason != nil {
		// el límite es en caracteres, no en bytes: "ñ" cuenta como uno
		if n := utf8.RuneCountInString(*p.BanReason); n == 0 || n > maxReasonLen {
			return fmt.Sprintf("❌ La razón debe tener entre 1 y %d caracteres.", maxReasonLen), nil
		}
		u.BanReason = p.BanReason
	}
	if p.RateLimit != nil {
		if *p.RateLimit < 1 {
			return "❌ El rate limit debe ser al menos 1 ban por minuto.", nil
		}
		u.RateLimit = p.RateLimit
	}
	u.Enabled = p.Enabled
	u.ActionType = p.Action
	u.BanType = p.BanType
	u.StaffChannelID = p.StaffChannelID

	if _, err := s.repo.Update(ctx, guildID, u); err != nil {
		return "", err
	}
	return s.Show(ctx, guildID)
}

// Show arma el panel de estado (equivalente a /agegate status).
func (s *SettingsService) Show(ctx context.Context, guildID string) (string, error) {
	set, err := s.repo.Get(ctx, guildID)
	if err != nil {
		return "", err
	}

	status := "❌ DESACTIVADO"
	if set.Enabled {
		status = "✅ ACTIVADO"
	}
	staff := "— sin canal —"
	if set.StaffChannelID != "" {
		staff = "<#" + set.StaffChannelID + ">"
	}

	out := fmt.Sprintf(
		"**AgeGate — %s**\n• Estado: %s\n• Edad mínima de cuenta: **%s**\n• Acción: **%s**\n• Tipo de ban: **%s**",
		guildID, status, readableDuration(set.MinAge()), set.ActionType, set.BanType,
	)
	if set.BanType == storage.BanTemporary {
		out += fmt.Sprintf("\n• Duración del ban temporal: **%s**", readableDuration(set.TempBanDuration()))
	}
	if set.ActionType == storage.ActionDelay {
		out += fmt.Sprintf("\n• Demora del ban diferido: **%s**", readableDuration(set.DelayDuration()))
	}
	out += fmt.Sprintf(
		"\n• Rate limit: **%d** ban(s) por minuto\n• Canal de staff: %s\n• Razón: %s",
		set.RateLimit, staff, set.BanReason,
	)

	// contadores informativos; si el ledger falla igual mostramos el resto
	if n, err := s.ledger.Pending(ctx, storage.TableDelayed, guildID); err == nil && n > 0 {
		out += fmt.Sprintf("\n• Bans diferidos pendientes: **%d**", n)
	}
	if n, err := s.ledger.Pending(ctx, storage.TableTempBanned, guildID); err == nil && n > 0 {
		out += fmt.Sprintf("\n• Bans temporales activos: **%d**", n)
	}
	return out, nil
}
