package service

import (
	"context"
	"errors"
	"time"

	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

// Errores centinela del port de plataforma. El adapter de Discord mapea
// los RESTError a estos; los services sólo hacen errors.Is.
var (
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
)

// Lo implementa internal/infra/storage.SettingsRepo
type SettingsRepo interface {
	Get(ctx context.Context, guildID string) (storage.GuildSettings, error)
	ForGuilds(ctx context.Context, guildIDs []string) (map[string]storage.GuildSettings, error)
	Update(ctx context.Context, guildID string, u storage.GuildSettingsUpdate) (storage.GuildSettings, error)
	SetRateWindow(ctx context.Context, guildID string, start time.Time, count int) error
}

// Lo implementa internal/infra/storage.LedgerRepo
type Ledger interface {
	Schedule(ctx context.Context, table storage.LedgerTable, guildID, userID string, due time.Time) error
	Due(ctx context.Context, table storage.LedgerTable, now time.Time) ([]storage.LedgerEntry, error)
	Clear(ctx context.Context, table storage.LedgerTable, guildID, userID string) error
	Pending(ctx context.Context, table storage.LedgerTable, guildID string) (int, error)
}

// Lo implementa internal/infra/storage.AuditRepo
type AuditLog interface {
	Record(ctx context.Context, a storage.ModAction) error
}

// Gateway es lo que necesitamos de la plataforma (Discord).
// Lo implementa internal/adapters/discord.Gateway.
type Gateway interface {
	// instante de creación de la cuenta (derivado del snowflake)
	CreationTime(userID string) (time.Time, error)
	MemberExists(ctx context.Context, guildID, userID string) (bool, error)
	BanMember(ctx context.Context, guildID, userID, reason string) error
	UnbanMember(ctx context.Context, guildID, userID, reason string) error
	SendDM(ctx context.Context, userID, text string) error
	NotifyStaff(ctx context.Context, channelID, title, body string) error
}
