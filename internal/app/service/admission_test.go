package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

func enabledSettings(guildID string) storage.GuildSettings {
	s := defaultSettings(guildID)
	s.Enabled = true
	return s
}

func newAdmission(set storage.GuildSettings, gw *fakeGateway, now time.Time) (*AdmissionService, *fakeSettings, *fakeLedger, *fakeAudit) {
	settings := newFakeSettings(set)
	ledger := newFakeLedger()
	audit := &fakeAudit{}
	svc := NewAdmissionService(settings, ledger, audit, gw)
	svc.now = func() time.Time { return now }
	return svc, settings, ledger, audit
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	oldEnough := now.Add(-30 * 24 * time.Hour)
	tooNew := now.Add(-3 * 24 * time.Hour)

	cases := []struct {
		name      string
		enabled   bool
		action    storage.ActionType
		createdAt time.Time
		want      Action
	}{
		{"cuenta vieja con ban", true, storage.ActionBan, oldEnough, ActionNone},
		{"cuenta vieja con delay", true, storage.ActionDelay, oldEnough, ActionNone},
		{"cuenta vieja con notify", true, storage.ActionNotify, oldEnough, ActionNone},
		{"cuenta justa en el umbral", true, storage.ActionBan, now.Add(-7 * 24 * time.Hour), ActionNone},
		{"deshabilitado", false, storage.ActionBan, tooNew, ActionNone},
		{"nueva con ban", true, storage.ActionBan, tooNew, ActionBanNow},
		{"nueva con delay", true, storage.ActionDelay, tooNew, ActionScheduleDelay},
		{"nueva con notify", true, storage.ActionNotify, tooNew, ActionNotify},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := defaultSettings("g1")
			set.Enabled = tc.enabled
			set.ActionType = tc.action
			require.Equal(t, tc.want, Evaluate(set, tc.createdAt, now))
		})
	}
}

func TestHandleJoinPermanentBan(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gw := newFakeGateway()
	gw.created["u1"] = now.Add(-3 * 24 * time.Hour)

	svc, settings, ledger, audit := newAdmission(enabledSettings("g1"), gw, now)

	require.NoError(t, svc.HandleJoin(context.Background(), "g1", "u1"))

	require.Len(t, gw.bans, 1)
	require.Equal(t, "u1", gw.bans[0].UserID)
	require.Contains(t, gw.bans[0].Reason, "7 days")
	require.Contains(t, gw.bans[0].Reason, "Your account is too new")
	require.Equal(t, []string{"u1"}, gw.dms)

	// permanente: nada en temp_banned_users
	require.False(t, ledger.has(storage.TableTempBanned, "g1", "u1"))
	require.False(t, ledger.has(storage.TableDelayed, "g1", "u1"))

	// el contador se consumió y quedó persistido
	require.Equal(t, 1, settings.rows["g1"].RateWindowCount)

	require.Len(t, audit.rows, 1)
	require.Equal(t, "ban", audit.rows[0].Action)
}

func TestHandleJoinTemporaryBanSchedulesUnban(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	set := enabledSettings("g1")
	set.BanType = storage.BanTemporary
	set.TempBanSeconds = 3 * 86400

	gw := newFakeGateway()
	gw.created["u1"] = now.Add(-3 * 24 * time.Hour)
	svc, _, ledger, _ := newAdmission(set, gw, now)

	require.NoError(t, svc.HandleJoin(context.Background(), "g1", "u1"))

	require.Len(t, gw.bans, 1)
	require.True(t, ledger.has(storage.TableTempBanned, "g1", "u1"))
	require.Equal(t, now.Add(3*24*time.Hour), ledger.dueAt(storage.TableTempBanned, "g1", "u1"))
}

func TestHandleJoinDelaySchedulesWithoutBanning(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	set := enabledSettings("g1")
	set.ActionType = storage.ActionDelay
	set.DelaySeconds = 24 * 3600
	set.StaffChannelID = "c-staff"

	gw := newFakeGateway()
	gw.created["u1"] = now.Add(-time.Hour)
	svc, _, ledger, _ := newAdmission(set, gw, now)

	require.NoError(t, svc.HandleJoin(context.Background(), "g1", "u1"))

	require.Empty(t, gw.bans)
	require.True(t, ledger.has(storage.TableDelayed, "g1", "u1"))
	require.Equal(t, now.Add(24*time.Hour), ledger.dueAt(storage.TableDelayed, "g1", "u1"))
	require.Len(t, gw.alerts, 1)
	require.Equal(t, "c-staff", gw.alerts[0].ChannelID)
}

func TestHandleJoinNotifyWithoutStaffChannel(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	set := enabledSettings("g1")
	set.ActionType = storage.ActionNotify // sin StaffChannelID

	gw := newFakeGateway()
	gw.created["u1"] = now.Add(-time.Hour)
	svc, _, ledger, _ := newAdmission(set, gw, now)

	require.NoError(t, svc.HandleJoin(context.Background(), "g1", "u1"))

	require.Empty(t, gw.alerts)
	require.Empty(t, gw.bans)
	require.False(t, ledger.has(storage.TableDelayed, "g1", "u1"))
}

func TestHandleJoinRateLimitedDropsSilently(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	set := enabledSettings("g1")
	set.RateLimit = 1
	set.RateWindowStart = now.Add(-10 * time.Second)
	set.RateWindowCount = 1 // ventana vigente ya agotada

	gw := newFakeGateway()
	gw.created["u1"] = now.Add(-time.Hour)
	svc, _, ledger, audit := newAdmission(set, gw, now)

	require.NoError(t, svc.HandleJoin(context.Background(), "g1", "u1"))

	require.Empty(t, gw.bans)
	require.Empty(t, gw.dms)
	require.Empty(t, gw.alerts)
	require.Empty(t, audit.rows)
	require.False(t, ledger.has(storage.TableTempBanned, "g1", "u1"))
}

func TestHandleJoinBanForbiddenWritesNothing(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	set := enabledSettings("g1")
	set.BanType = storage.BanTemporary

	gw := newFakeGateway()
	gw.created["u1"] = now.Add(-time.Hour)
	gw.banErr = ErrForbidden
	svc, settings, ledger, audit := newAdmission(set, gw, now)

	require.NoError(t, svc.HandleJoin(context.Background(), "g1", "u1"))

	// ban fallido: sin ledger, sin auditoría, sin consumo de cupo
	require.False(t, ledger.has(storage.TableTempBanned, "g1", "u1"))
	require.Empty(t, audit.rows)
	require.Equal(t, 0, settings.rows["g1"].RateWindowCount)
}

func TestHandleJoinDMClosedStillBans(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gw := newFakeGateway()
	gw.created["u1"] = now.Add(-time.Hour)
	gw.dmErr = ErrForbidden // DMs cerrados

	svc, _, _, _ := newAdmission(enabledSettings("g1"), gw, now)
	require.NoError(t, svc.HandleJoin(context.Background(), "g1", "u1"))
	require.Len(t, gw.bans, 1)
}

func TestReadableDuration(t *testing.T) {
	t.Parallel()

	require.Equal(t, "7 days", readableDuration(7*24*time.Hour))
	require.Equal(t, "7 days 12 hours", readableDuration(7*24*time.Hour+12*time.Hour))
	require.Equal(t, "5 hours", readableDuration(5*time.Hour))
	require.Equal(t, "90 seconds", readableDuration(90*time.Second))
	require.Equal(t, "0 seconds", readableDuration(-time.Minute))
}
