package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LedgerRepo maneja las dos tablas de acciones diferidas
// (delayed_members y temp_banned_users). Contrato: Schedule (upsert),
// Due (vencidos a un instante dado) y Clear (borrado idempotente).
type LedgerRepo struct{ db *sql.DB }

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// tableName valida el nombre antes de interpolarlo en el SQL.
func tableName(t LedgerTable) (string, error) {
	switch t {
	case TableDelayed, TableTempBanned:
		return string(t), nil
	}
	return "", fmt.Errorf("tabla de ledger desconocida: %q", t)
}

// Schedule inserta o pisa la entrada existente para esa identidad.
func (r *LedgerRepo) Schedule(ctx context.Context, table LedgerTable, guildID, userID string, due time.Time) error {
	tbl, err := tableName(table)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO `+tbl+` (guild_id, user_id, due_at)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id, user_id) DO UPDATE SET
  due_at = EXCLUDED.due_at
`, guildID, userID, due)
	return err
}

// Due devuelve todas las entradas vencidas a `now`, de todos los guilds.
// Es el snapshot de un tick de sweep: lo que venza después de este query
// espera al próximo tick.
func (r *LedgerRepo) Due(ctx context.Context, table LedgerTable, now time.Time) ([]LedgerEntry, error) {
	tbl, err := tableName(table)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT guild_id, user_id, due_at
  FROM `+tbl+`
 WHERE due_at <= $1
`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.GuildID, &e.UserID, &e.DueAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear borra la entrada si existe; que no exista no es error.
func (r *LedgerRepo) Clear(ctx context.Context, table LedgerTable, guildID, userID string) error {
	tbl, err := tableName(table)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
DELETE FROM `+tbl+`
 WHERE guild_id = $1 AND user_id = $2
`, guildID, userID)
	return err
}

// Pending cuenta las entradas vivas de un guild (para /agegate status).
func (r *LedgerRepo) Pending(ctx context.Context, table LedgerTable, guildID string) (int, error) {
	tbl, err := tableName(table)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, `
SELECT count(*) FROM `+tbl+` WHERE guild_id = $1
`, guildID).Scan(&n)
	return n, err
}
