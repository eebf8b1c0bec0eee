package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	pq "github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

type SettingsRepo struct{ db *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

const settingsColumns = `
guild_id, enabled, min_age_seconds, action_type, ban_type, temp_ban_seconds,
delay_seconds, ban_reason, staff_channel_id, rate_limit, rate_window_start,
rate_window_count, created_at, updated_at`

func scanSettings(row interface{ Scan(...any) error }) (GuildSettings, error) {
	var s GuildSettings
	err := row.Scan(
		&s.GuildID, &s.Enabled, &s.MinAgeSeconds, &s.ActionType, &s.BanType,
		&s.TempBanSeconds, &s.DelaySeconds, &s.BanReason, &s.StaffChannelID,
		&s.RateLimit, &s.RateWindowStart, &s.RateWindowCount, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Get devuelve la fila del guild; si no existe la crea con los defaults
// del esquema y la vuelve a leer.
func (r *SettingsRepo) Get(ctx context.Context, guildID string) (GuildSettings, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+settingsColumns+`
  FROM guild_settings
 WHERE guild_id = $1
`, guildID)
	s, err := scanSettings(row)
	if err == sql.ErrNoRows {
		// crea default
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO guild_settings (guild_id) VALUES ($1)
ON CONFLICT (guild_id) DO NOTHING
`, guildID); err != nil {
			return GuildSettings{}, err
		}
		return r.Get(ctx, guildID)
	}
	return s, err
}

// ForGuilds: lectura en lote para los sweeps (un query por tick, no uno por entrada).
func (r *SettingsRepo) ForGuilds(ctx context.Context, guildIDs []string) (map[string]GuildSettings, error) {
	out := map[string]GuildSettings{}
	if len(guildIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+settingsColumns+`
  FROM guild_settings
 WHERE guild_id = ANY($1)
`, pq.Array(guildIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		out[s.GuildID] = s
	}
	return out, rows.Err()
}

// Update aplica sólo los campos presentes del patch.
func (r *SettingsRepo) Update(ctx context.Context, guildID string, u GuildSettingsUpdate) (GuildSettings, error) {
	sets := make([]string, 0, 9)
	args := make([]any, 0, 10)
	i := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, v)
		i++
	}
	if u.Enabled != nil {
		add("enabled", *u.Enabled)
	}
	if u.MinAgeSeconds != nil {
		add("min_age_seconds", *u.MinAgeSeconds)
	}
	if u.ActionType != nil {
		add("action_type", string(*u.ActionType))
	}
	if u.BanType != nil {
		add("ban_type", string(*u.BanType))
	}
	if u.TempBanSeconds != nil {
		add("temp_ban_seconds", *u.TempBanSeconds)
	}
	if u.DelaySeconds != nil {
		add("delay_seconds", *u.DelaySeconds)
	}
	if u.BanReason != nil {
		add("ban_reason", *u.BanReason)
	}
	if u.StaffChannelID != nil {
		add("staff_channel_id", *u.StaffChannelID)
	}
	if u.RateLimit != nil {
		add("rate_limit", *u.RateLimit)
	}
	if len(sets) == 0 {
		// nada que cambiar
		return r.Get(ctx, guildID)
	}
	add("updated_at", time.Now())

	// garantiza que la fila exista antes del UPDATE
	if _, err := r.Get(ctx, guildID); err != nil {
		return GuildSettings{}, err
	}

	args = append(args, guildID)
	_, err := r.db.ExecContext(ctx, `
UPDATE guild_settings
   SET `+strings.Join(sets, ", ")+`
 WHERE guild_id = $`+fmt.Sprint(i), args...)
	if err != nil {
		return GuildSettings{}, err
	}
	return r.Get(ctx, guildID)
}

// SetRateWindow persiste el estado del limitador (un UPDATE de una fila =
// escritura atómica por clave que pide el modelo de concurrencia).
func (r *SettingsRepo) SetRateWindow(ctx context.Context, guildID string, start time.Time, count int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE guild_settings
   SET rate_window_start = $1,
       rate_window_count = $2
 WHERE guild_id = $3
`, start, count, guildID)
	return err
}
