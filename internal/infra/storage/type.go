package storage

import (
	"fmt"
	"strings"
	"time"
)

// Qué hacemos con una cuenta demasiado nueva.
type ActionType string

const (
	ActionBan    ActionType = "ban"
	ActionDelay  ActionType = "delay"
	ActionNotify ActionType = "notify"
)

func ParseActionType(s string) (ActionType, error) {
	switch ActionType(strings.ToLower(strings.TrimSpace(s))) {
	case ActionBan:
		return ActionBan, nil
	case ActionDelay:
		return ActionDelay, nil
	case ActionNotify:
		return ActionNotify, nil
	}
	return "", fmt.Errorf("action_type invalido: %q", s)
}

type BanType string

const (
	BanPermanent BanType = "permanent"
	BanTemporary BanType = "temporary"
)

func ParseBanType(s string) (BanType, error) {
	switch BanType(strings.ToLower(strings.TrimSpace(s))) {
	case BanPermanent:
		return BanPermanent, nil
	case BanTemporary:
		return BanTemporary, nil
	}
	return "", fmt.Errorf("ban_type invalido: %q", s)
}

// GuildSettings es la fila por guild. Duraciones guardadas en segundos
// (la capa de comandos acepta días/horas y normaliza antes de guardar).
type GuildSettings struct {
	GuildID        string
	Enabled        bool
	MinAgeSeconds  int64
	ActionType     ActionType
	BanType        BanType
	TempBanSeconds int64
	DelaySeconds   int64
	BanReason      string
	StaffChannelID string // vacío = sin canal de staff

	// ventana fija del rate limiter (60s); ver service.RateGate
	RateLimit       int
	RateWindowStart time.Time
	RateWindowCount int

	CreatedAt, UpdatedAt time.Time
}

func (s GuildSettings) MinAge() time.Duration { return time.Duration(s.MinAgeSeconds) * time.Second }
func (s GuildSettings) TempBanDuration() time.Duration {
	return time.Duration(s.TempBanSeconds) * time.Second
}
func (s GuildSettings) DelayDuration() time.Duration {
	return time.Duration(s.DelaySeconds) * time.Second
}

// Para updates parciales desde /agegate y el panel de setup.
type GuildSettingsUpdate struct {
	Enabled        *bool
	MinAgeSeconds  *int64
	ActionType     *ActionType
	BanType        *BanType
	TempBanSeconds *int64
	DelaySeconds   *int64
	BanReason      *string
	StaffChannelID *string
	RateLimit      *int
}

// LedgerTable nombra una de las dos tablas de acciones diferidas.
type LedgerTable string

const (
	TableDelayed    LedgerTable = "delayed_members"
	TableTempBanned LedgerTable = "temp_banned_users"
)

// LedgerEntry: identidad → instante en el que la acción vence.
type LedgerEntry struct {
	GuildID string
	UserID  string
	DueAt   time.Time
}

// ModAction es una fila del log de auditoría (append-only).
type ModAction struct {
	GuildID   string
	UserID    string
	Action    string // ban | delayed_ban | unban
	Reason    string
	CreatedAt time.Time
}
