package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

// fakes en memoria para los ports; mismos defaults que el esquema SQL

func defaultSettings(guildID string) storage.GuildSettings {
	return storage.GuildSettings{
		GuildID:        guildID,
		Enabled:        false,
		MinAgeSeconds:  7 * 86400,
		ActionType:     storage.ActionBan,
		BanType:        storage.BanPermanent,
		TempBanSeconds: 7 * 86400,
		DelaySeconds:   86400,
		BanReason:      "Your account is too new. Please wait until your account is older to join.",
		RateLimit:      3,
	}
}

type fakeSettings struct {
	rows       map[string]storage.GuildSettings
	rateWrites int
}

func newFakeSettings(rows ...storage.GuildSettings) *fakeSettings {
	f := &fakeSettings{rows: map[string]storage.GuildSettings{}}
	for _, r := range rows {
		f.rows[r.GuildID] = r
	}
	return f
}

func (f *fakeSettings) Get(_ context.Context, guildID string) (storage.GuildSettings, error) {
	if s, ok := f.rows[guildID]; ok {
		return s, nil
	}
	s := defaultSettings(guildID)
	f.rows[guildID] = s
	return s, nil
}

func (f *fakeSettings) ForGuilds(_ context.Context, guildIDs []string) (map[string]storage.GuildSettings, error) {
	out := map[string]storage.GuildSettings{}
	for _, id := range guildIDs {
		if s, ok := f.rows[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeSettings) Update(ctx context.Context, guildID string, u storage.GuildSettingsUpdate) (storage.GuildSettings, error) {
	s, _ := f.Get(ctx, guildID)
	if u.Enabled != nil {
		s.Enabled = *u.Enabled
	}
	if u.MinAgeSeconds != nil {
		s.MinAgeSeconds = *u.MinAgeSeconds
	}
	if u.ActionType != nil {
		s.ActionType = *u.ActionType
	}
	if u.BanType != nil {
		s.BanType = *u.BanType
	}
	if u.TempBanSeconds != nil {
		s.TempBanSeconds = *u.TempBanSeconds
	}
	if u.DelaySeconds != nil {
		s.DelaySeconds = *u.DelaySeconds
	}
	if u.BanReason != nil {
		s.BanReason = *u.BanReason
	}
	if u.StaffChannelID != nil {
		s.StaffChannelID = *u.StaffChannelID
	}
	if u.RateLimit != nil {
		s.RateLimit = *u.RateLimit
	}
	s.UpdatedAt = time.Now()
	f.rows[guildID] = s
	return s, nil
}

func (f *fakeSettings) SetRateWindow(_ context.Context, guildID string, start time.Time, count int) error {
	s := f.rows[guildID]
	s.RateWindowStart = start
	s.RateWindowCount = count
	f.rows[guildID] = s
	f.rateWrites++
	return nil
}

func ledgerKey(guildID, userID string) string { return guildID + "|" + userID }

type fakeLedger struct {
	tables map[storage.LedgerTable]map[string]time.Time
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{tables: map[storage.LedgerTable]map[string]time.Time{
		storage.TableDelayed:    {},
		storage.TableTempBanned: {},
	}}
}

func (f *fakeLedger) Schedule(_ context.Context, table storage.LedgerTable, guildID, userID string, due time.Time) error {
	f.tables[table][ledgerKey(guildID, userID)] = due
	return nil
}

func (f *fakeLedger) Due(_ context.Context, table storage.LedgerTable, now time.Time) ([]storage.LedgerEntry, error) {
	var out []storage.LedgerEntry
	for k, due := range f.tables[table] {
		if due.After(now) {
			continue
		}
		out = append(out, storage.LedgerEntry{GuildID: splitKey(k, 0), UserID: splitKey(k, 1), DueAt: due})
	}
	return out, nil
}

func splitKey(k string, i int) string {
	for p := 0; p < len(k); p++ {
		if k[p] == '|' {
			if i == 0 {
				return k[:p]
			}
			return k[p+1:]
		}
	}
	return k
}

func (f *fakeLedger) Clear(_ context.Context, table storage.LedgerTable, guildID, userID string) error {
	delete(f.tables[table], ledgerKey(guildID, userID))
	return nil
}

func (f *fakeLedger) Pending(_ context.Context, table storage.LedgerTable, guildID string) (int, error) {
	n := 0
	for k := range f.tables[table] {
		if splitKey(k, 0) == guildID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLedger) has(table storage.LedgerTable, guildID, userID string) bool {
	_, ok := f.tables[table][ledgerKey(guildID, userID)]
	return ok
}

func (f *fakeLedger) dueAt(table storage.LedgerTable, guildID, userID string) time.Time {
	return f.tables[table][ledgerKey(guildID, userID)]
}

type banCall struct{ GuildID, UserID, Reason string }
type alertCall struct{ ChannelID, Title, Body string }

type fakeGateway struct {
	created map[string]time.Time
	members map[string]bool

	banErr, unbanErr, dmErr, notifyErr error

	bans, unbans []banCall
	dms          []string
	alerts       []alertCall
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{created: map[string]time.Time{}, members: map[string]bool{}}
}

func (f *fakeGateway) CreationTime(userID string) (time.Time, error) {
	t, ok := f.created[userID]
	if !ok {
		return time.Time{}, fmt.Errorf("snowflake desconocido: %s", userID)
	}
	return t, nil
}

func (f *fakeGateway) MemberExists(_ context.Context, guildID, userID string) (bool, error) {
	return f.members[ledgerKey(guildID, userID)], nil
}

func (f *fakeGateway) BanMember(_ context.Context, guildID, userID, reason string) error {
	if f.banErr != nil {
		return f.banErr
	}
	f.bans = append(f.bans, banCall{guildID, userID, reason})
	return nil
}

func (f *fakeGateway) UnbanMember(_ context.Context, guildID, userID, reason string) error {
	if f.unbanErr != nil {
		return f.unbanErr
	}
	f.unbans = append(f.unbans, banCall{guildID, userID, reason})
	return nil
}

func (f *fakeGateway) SendDM(_ context.Context, userID, _ string) error {
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, userID)
	return nil
}

func (f *fakeGateway) NotifyStaff(_ context.Context, channelID, title, body string) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.alerts = append(f.alerts, alertCall{channelID, title, body})
	return nil
}

type fakeAudit struct{ rows []storage.ModAction }

func (f *fakeAudit) Record(_ context.Context, a storage.ModAction) error {
	f.rows = append(f.rows, a)
	return nil
}
