package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Limpieza periódica fuera del bot: auditoría vieja y entradas de ledger
// de guilds que ya no tienen settings (el bot fue removido del server).
func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, _ = pool.Exec(cctx, `DELETE FROM mod_actions WHERE created_at < now() - INTERVAL '90 days';`)
	_, _ = pool.Exec(cctx, `
DELETE FROM delayed_members
WHERE guild_id NOT IN (SELECT guild_id FROM guild_settings);`)
	_, _ = pool.Exec(cctx, `
DELETE FROM temp_banned_users
WHERE guild_id NOT IN (SELECT guild_id FROM guild_settings);`)

	return "ok", nil
}

func main() { lambda.Start(handler) }
