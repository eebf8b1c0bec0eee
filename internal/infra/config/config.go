package config

import (
	"log"
	"os"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string
	DiscordGuild string   // opcional: registro de comandos por guild (dev); vacío = global
	AdminRoleIDs []string // roles que pueden configurar el bot además de los admins

	// intervalos de los sweeps
	UnbanSweepInterval time.Duration // default 5m
	DelaySweepInterval time.Duration // default 1m
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("faltante env %s", k)
		}
		return v
	}
	getDur := func(k string, def time.Duration) time.Duration {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("env %s invalida: %q", k, v)
		}
		return d
	}

	cfg := Config{
		DatabaseURL:        get("DATABASE_URL", true),
		DiscordToken:       get("DISCORD_BOT_TOKEN", true),
		DiscordGuild:       get("DISCORD_GUILD_ID", false),
		UnbanSweepInterval: getDur("UNBAN_SWEEP_INTERVAL", 5*time.Minute),
		DelaySweepInterval: getDur("DELAY_SWEEP_INTERVAL", time.Minute),
	}
	if raw := get("ADMIN_ROLE_IDS", false); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.AdminRoleIDs = append(cfg.AdminRoleIDs, id)
			}
		}
	}
	return cfg
}
