package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

// Action es el veredicto del evaluador de admisión.
type Action int

const (
	ActionNone Action = iota
	ActionNotify
	ActionScheduleDelay
	ActionBanNow
)

func (a Action) String() string {
	switch a {
	case ActionNotify:
		return "notify"
	case ActionScheduleDelay:
		return "schedule_delay"
	case ActionBanNow:
		return "ban_now"
	}
	return "none"
}

// AdmissionService decide qué pasa con cada cuenta que entra a un guild.
type AdmissionService struct {
	settings SettingsRepo
	ledger   Ledger
	audit    AuditLog
	gw       Gateway
	gate     *RateGate

	now func() time.Time // inyectable en tests
}

func NewAdmissionService(settings SettingsRepo, ledger Ledger, audit AuditLog, gw Gateway) *AdmissionService {
	return &AdmissionService{
		settings: settings,
		ledger:   ledger,
		audit:    audit,
		gw:       gw,
		gate:     NewRateGate(settings),
		now:      time.Now,
	}
}

// Evaluate es la regla pura: demasiado nueva o no, y con qué respuesta.
// No toca red ni storage; HandleJoin hace la orquestación.
func Evaluate(set storage.GuildSettings, createdAt, now time.Time) Action {
	if !set.Enabled {
		return ActionNone
	}
	if now.Sub(createdAt) >= set.MinAge() {
		return ActionNone
	}
	switch set.ActionType {
	case storage.ActionNotify:
		return ActionNotify
	case storage.ActionDelay:
		return ActionScheduleDelay
	}
	return ActionBanNow
}

// HandleJoin procesa un member-join. Devuelve error sólo ante fallas de
// storage; todo lo de plataforma (DM, ban, alerta) se contiene acá y se
// loguea — nada de esto debe tirar abajo el proceso.
func (s *AdmissionService) HandleJoin(ctx context.Context, guildID, userID string) error {
	set, err := s.settings.Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("settings guild=%s: %w", guildID, err)
	}

	createdAt, err := s.gw.CreationTime(userID)
	if err != nil {
		log.Printf("[agegate] snowflake ilegible user=%s: %v", userID, err)
		return nil
	}

	now := s.now()
	switch Evaluate(set, createdAt, now) {
	case ActionNone:
		return nil

	case ActionNotify:
		s.notifyStaff(ctx, set, userID, createdAt, now, "sólo aviso, sin acción")
		return nil

	case ActionScheduleDelay:
		due := now.Add(set.DelayDuration())
		if err := s.ledger.Schedule(ctx, storage.TableDelayed, guildID, userID, due); err != nil {
			return fmt.Errorf("schedule delayed guild=%s user=%s: %w", guildID, userID, err)
		}
		log.Printf("[agegate] ban diferido agendado user=%s guild=%s due=%s", userID, guildID, due.Format(time.RFC3339))
		s.notifyStaff(ctx, set, userID, createdAt, now, fmt.Sprintf("ban diferido para %s", readableDuration(set.DelayDuration())))
		return nil

	case ActionBanNow:
		if !s.gate.Admit(ctx, &set, now) {
			// drop deliberado: ni ledger, ni aviso, ni retry
			log.Printf("[agegate] rate limit alcanzado guild=%s, join de %s ignorado", guildID, userID)
			return nil
		}
		s.banNow(ctx, set, userID, now)
	}
	return nil
}

// banNow: DM best-effort → ban → contador → ledger temporal → auditoría.
func (s *AdmissionService) banNow(ctx context.Context, set storage.GuildSettings, userID string, now time.Time) {
	if err := s.gw.SendDM(ctx, userID, banDM(set)); err != nil {
		// DMs cerrados es lo normal, no bloquea el ban
		log.Printf("[agegate] DM a %s no entregado: %v", userID, err)
	}

	reason := banReason(set)
	if err := s.gw.BanMember(ctx, set.GuildID, userID, reason); err != nil {
		if errors.Is(err, ErrForbidden) {
			log.Printf("[agegate] sin permisos para banear a %s en %s", userID, set.GuildID)
		} else {
			log.Printf("[agegate] ban de %s en %s falló: %v", userID, set.GuildID, err)
		}
		// sin entrada en ledger y sin rollback del contador (nunca se incrementó)
		return
	}
	log.Printf("[agegate] ✅ cuenta nueva baneada user=%s guild=%s", userID, set.GuildID)

	s.gate.Record(ctx, &set, now)

	if set.BanType == storage.BanTemporary {
		due := now.Add(set.TempBanDuration())
		if err := s.ledger.Schedule(ctx, storage.TableTempBanned, set.GuildID, userID, due); err != nil {
			log.Printf("[agegate] no pude agendar unban user=%s guild=%s: %v", userID, set.GuildID, err)
		}
	}

	s.recordAction(ctx, set.GuildID, userID, "ban", reason)
}

func (s *AdmissionService) notifyStaff(ctx context.Context, set storage.GuildSettings, userID string, createdAt, now time.Time, extra string) {
	if set.StaffChannelID == "" {
		return
	}
	body := fmt.Sprintf(
		"<@%s> entró con una cuenta de %s (mínimo configurado: %s). %s.",
		userID, readableDuration(now.Sub(createdAt)), readableDuration(set.MinAge()), extra,
	)
	if err := s.gw.NotifyStaff(ctx, set.StaffChannelID, "AgeGate: cuenta demasiado nueva", body); err != nil {
		log.Printf("[agegate] aviso a staff guild=%s falló: %v", set.GuildID, err)
	}
}

func (s *AdmissionService) recordAction(ctx context.Context, guildID, userID, action, reason string) {
	if err := s.audit.Record(ctx, storage.ModAction{GuildID: guildID, UserID: userID, Action: action, Reason: reason}); err != nil {
		log.Printf("[agegate] auditoría %s user=%s falló: %v", action, userID, err)
	}
}

// banReason arma la razón de auditoría del ban (en inglés: queda en el
// audit log de Discord y en el DM, y los servers suelen ser mixtos).
func banReason(set storage.GuildSettings) string {
	return fmt.Sprintf("AgeGate: account younger than %s. Reason: %s", readableDuration(set.MinAge()), set.BanReason)
}

func banDM(set storage.GuildSettings) string {
	msg := fmt.Sprintf("You have been automatically banned.\n**Reason:** %s", set.BanReason)
	if set.BanType == storage.BanTemporary {
		msg += fmt.Sprintf("\nThis ban is temporary and will be lifted in **%s**.", readableDuration(set.TempBanDuration()))
	}
	return msg
}

// readableDuration: "7 days", "1 day 12 hours", "5 hours", "90 seconds".
func readableDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	days := secs / 86400
	hours := (secs % 86400) / 3600
	plural := func(n int64, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case days > 0 && hours > 0:
		return plural(days, "day") + " " + plural(hours, "hour")
	case days > 0:
		return plural(days, "day")
	case hours > 0:
		return plural(hours, "hour")
	}
	return plural(secs, "second")
}
