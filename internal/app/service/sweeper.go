package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

const (
	DefaultUnbanInterval = 5 * time.Minute
	DefaultDelayInterval = 1 * time.Minute
)

// Sweeper corre los dos barridos periódicos: levantar bans temporales
// vencidos y ejecutar bans diferidos. Cada entrada se procesa como
// "actuar y después limpiar", y el Clear va SIEMPRE, salga bien o mal la
// llamada a Discord — nunca se reintenta una entrada fallida.
type Sweeper struct {
	settings SettingsRepo
	ledger   Ledger
	audit    AuditLog
	gw       Gateway

	unbanEvery time.Duration
	delayEvery time.Duration
	now        func() time.Time
}

func NewSweeper(settings SettingsRepo, ledger Ledger, audit AuditLog, gw Gateway, unbanEvery, delayEvery time.Duration) *Sweeper {
	if unbanEvery <= 0 {
		unbanEvery = DefaultUnbanInterval
	}
	if delayEvery <= 0 {
		delayEvery = DefaultDelayInterval
	}
	return &Sweeper{
		settings:   settings,
		ledger:     ledger,
		audit:      audit,
		gw:         gw,
		unbanEvery: unbanEvery,
		delayEvery: delayEvery,
		now:        time.Now,
	}
}

// Run bloquea hasta que se cancele ctx. Llamar recién con la sesión de
// Discord abierta (los ticks pegan a la API). Al cancelar, el tick en
// vuelo termina su entrada actual: los ticks no miran ctx entre el
// intento y el Clear.
func (w *Sweeper) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.loop(gctx, w.unbanEvery, w.unbanTick) })
	g.Go(func() error { return w.loop(gctx, w.delayEvery, w.delayTick) })
	return g.Wait()
}

func (w *Sweeper) loop(ctx context.Context, every time.Duration, tick func(context.Context)) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			tick(ctx)
		}
	}
}

// unbanTick levanta los bans temporales vencidos de todos los guilds.
func (w *Sweeper) unbanTick(ctx context.Context) {
	now := w.now()
	due, err := w.ledger.Due(ctx, storage.TableTempBanned, now)
	if err != nil {
		log.Printf("[agegate] sweep unban: no pude leer el ledger: %v", err)
		return
	}

	for _, e := range due {
		err := w.gw.UnbanMember(ctx, e.GuildID, e.UserID, "AgeGate: temporary ban expired.")
		switch {
		case err == nil:
			log.Printf("[agegate] ✅ unban user=%s guild=%s (ban temporal vencido)", e.UserID, e.GuildID)
			w.recordAction(ctx, e.GuildID, e.UserID, "unban", "temporary ban expired")
		case errors.Is(err, ErrForbidden):
			log.Printf("[agegate] sweep unban: sin permisos para user=%s guild=%s", e.UserID, e.GuildID)
		case errors.Is(err, ErrNotFound):
			// ya lo des-banearon a mano; no es error
		default:
			log.Printf("[agegate] sweep unban user=%s guild=%s: %v", e.UserID, e.GuildID, err)
		}

		// se limpia siempre, éxito o no
		if err := w.ledger.Clear(ctx, storage.TableTempBanned, e.GuildID, e.UserID); err != nil {
			log.Printf("[agegate] sweep unban: clear user=%s guild=%s: %v", e.UserID, e.GuildID, err)
		}
	}
}

// delayTick ejecuta los bans diferidos vencidos.
func (w *Sweeper) delayTick(ctx context.Context) {
	now := w.now()
	due, err := w.ledger.Due(ctx, storage.TableDelayed, now)
	if err != nil {
		log.Printf("[agegate] sweep delay: no pude leer el ledger: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	// settings frescos por tick (pudieron cambiar desde que se agendó)
	seen := map[string]struct{}{}
	guilds := make([]string, 0, len(due))
	for _, e := range due {
		if _, ok := seen[e.GuildID]; !ok {
			seen[e.GuildID] = struct{}{}
			guilds = append(guilds, e.GuildID)
		}
	}
	sets, err := w.settings.ForGuilds(ctx, guilds)
	if err != nil {
		log.Printf("[agegate] sweep delay: no pude leer settings: %v", err)
		return
	}

	for _, e := range due {
		w.punishDelayed(ctx, sets, e, now)
		if err := w.ledger.Clear(ctx, storage.TableDelayed, e.GuildID, e.UserID); err != nil {
			log.Printf("[agegate] sweep delay: clear user=%s guild=%s: %v", e.UserID, e.GuildID, err)
		}
	}
}

func (w *Sweeper) punishDelayed(ctx context.Context, sets map[string]storage.GuildSettings, e storage.LedgerEntry, now time.Time) {
	set, ok := sets[e.GuildID]
	if !ok {
		log.Printf("[agegate] sweep delay: guild=%s sin settings, entrada descartada", e.GuildID)
		return
	}

	exists, err := w.gw.MemberExists(ctx, e.GuildID, e.UserID)
	if err != nil {
		log.Printf("[agegate] sweep delay: lookup user=%s guild=%s: %v", e.UserID, e.GuildID, err)
		return
	}
	if !exists {
		log.Printf("[agegate] sweep delay: user=%s ya no está en guild=%s, sin ban", e.UserID, e.GuildID)
		return
	}

	if err := w.gw.SendDM(ctx, e.UserID, banDM(set)); err != nil {
		log.Printf("[agegate] sweep delay: DM a %s no entregado: %v", e.UserID, err)
	}

	reason := fmt.Sprintf("AgeGate: delayed ban. %s", banReason(set))
	if err := w.gw.BanMember(ctx, e.GuildID, e.UserID, reason); err != nil {
		if errors.Is(err, ErrForbidden) {
			log.Printf("[agegate] sweep delay: sin permisos para banear a %s en %s", e.UserID, e.GuildID)
		} else {
			log.Printf("[agegate] sweep delay: ban de %s en %s falló: %v", e.UserID, e.GuildID, err)
		}
		return
	}
	log.Printf("[agegate] ✅ ban diferido ejecutado user=%s guild=%s", e.UserID, e.GuildID)

	if set.BanType == storage.BanTemporary {
		dueAt := now.Add(set.TempBanDuration())
		if err := w.ledger.Schedule(ctx, storage.TableTempBanned, e.GuildID, e.UserID, dueAt); err != nil {
			log.Printf("[agegate] sweep delay: no pude agendar unban user=%s guild=%s: %v", e.UserID, e.GuildID, err)
		}
	}

	w.recordAction(ctx, e.GuildID, e.UserID, "delayed_ban", reason)
}

func (w *Sweeper) recordAction(ctx context.Context, guildID, userID, action, reason string) {
	if err := w.audit.Record(ctx, storage.ModAction{GuildID: guildID, UserID: userID, Action: action, Reason: reason}); err != nil {
		log.Printf("[agegate] auditoría %s user=%s falló: %v", action, userID, err)
	}
}
