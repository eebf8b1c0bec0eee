package storage

import (
	"context"
	"database/sql"
)

// AuditRepo: log append-only de acciones de moderación. Nadie lo lee
// desde el bot; queda para revisión manual y lo poda el janitor.
type AuditRepo struct{ db *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) Record(ctx context.Context, a ModAction) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO mod_actions (guild_id, user_id, action, reason)
VALUES ($1, $2, $3, $4)
`, a.GuildID, a.UserID, a.Action, a.Reason)
	return err
}
