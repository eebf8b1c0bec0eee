package service

import (
	"context"
	"log"
	"time"

	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

// Ventana fija para bans inmediatos (escenario raid: acota el burst).
const rateWindow = 60 * time.Second

// RateGate es un contador de ventana fija sobre las columnas
// rate_window_start / rate_window_count de la fila del guild.
// Admit no incrementa: el caller llama Record sólo si el ban salió bien,
// así que el límite es advisory (un ban fallido no consume cupo).
type RateGate struct {
	settings SettingsRepo
}

func NewRateGate(settings SettingsRepo) *RateGate { return &RateGate{settings: settings} }

// Admit decide si se puede banear ahora. El reset es perezoso: recién al
// primer Admit después de vencida la ventana se arranca una nueva.
func (g *RateGate) Admit(ctx context.Context, set *storage.GuildSettings, now time.Time) bool {
	if now.Sub(set.RateWindowStart) > rateWindow {
		set.RateWindowStart = now
		set.RateWindowCount = 0
		if err := g.settings.SetRateWindow(ctx, set.GuildID, now, 0); err != nil {
			log.Printf("ratelimit: no pude persistir el reset de ventana guild=%s: %v", set.GuildID, err)
		}
		return true
	}
	return set.RateWindowCount < set.RateLimit
}

// Record consume un cupo de la ventana vigente. Llamar sólo tras un ban exitoso.
func (g *RateGate) Record(ctx context.Context, set *storage.GuildSettings, now time.Time) {
	set.RateWindowCount++
	if err := g.settings.SetRateWindow(ctx, set.GuildID, set.RateWindowStart, set.RateWindowCount); err != nil {
		log.Printf("ratelimit: no pude persistir el contador guild=%s: %v", set.GuildID, err)
	}
}
