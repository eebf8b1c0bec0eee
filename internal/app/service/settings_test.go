package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

func ptr[T any](v T) *T { return &v }

func TestSettingsUpdateValidationNeverStores(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		patch SettingsPatch
	}{
		{"edad mínima negativa", SettingsPatch{MinAge: ptr(-time.Hour)}},
		{"duración de temp ban en cero", SettingsPatch{TempBanDuration: ptr(time.Duration(0))}},
		{"demora negativa", SettingsPatch{DelayDuration: ptr(-time.Minute)}},
		{"razón vacía", SettingsPatch{BanReason: ptr("")}},
		{"razón demasiado larga", SettingsPatch{BanReason: ptr(strings.Repeat("x", 513))}},
		{"razón de 513 caracteres no ASCII", SettingsPatch{BanReason: ptr(strings.Repeat("ñ", 513))}},
		{"rate limit cero", SettingsPatch{RateLimit: ptr(0)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeSettings()
			svc := NewSettingsService(repo, newFakeLedger())

			msg, err := svc.Update(context.Background(), "g1", tc.patch)
			require.NoError(t, err)
			require.Contains(t, msg, "❌")

			// la fila quedó como estaba (defaults)
			got, _ := repo.Get(context.Background(), "g1")
			require.Equal(t, defaultSettings("g1"), got)
		})
	}
}

// El límite de la razón es en caracteres: una razón de 300 "ñ" pesa 600
// bytes pero entra igual.
func TestSettingsUpdateReasonLengthCountsRunes(t *testing.T) {
	t.Parallel()

	repo := newFakeSettings()
	svc := NewSettingsService(repo, newFakeLedger())
	ctx := context.Background()

	reason := strings.Repeat("ñ", 300)
	require.Greater(t, len(reason), maxReasonLen)

	msg, err := svc.Update(ctx, "g1", SettingsPatch{BanReason: ptr(reason)})
	require.NoError(t, err)
	require.NotContains(t, msg, "❌ La razón")

	got, _ := repo.Get(ctx, "g1")
	require.Equal(t, reason, got.BanReason)
}

func TestSettingsUpdateAppliesPatch(t *testing.T) {
	t.Parallel()

	repo := newFakeSettings()
	svc := NewSettingsService(repo, newFakeLedger())
	ctx := context.Background()

	msg, err := svc.Update(ctx, "g1", SettingsPatch{
		Enabled:         ptr(true),
		MinAge:          ptr(3 * 24 * time.Hour),
		Action:          ptr(storage.ActionDelay),
		BanType:         ptr(storage.BanTemporary),
		TempBanDuration: ptr(48 * time.Hour),
		DelayDuration:   ptr(12 * time.Hour),
		BanReason:       ptr("cuenta demasiado nueva"),
		StaffChannelID:  ptr("c-staff"),
		RateLimit:       ptr(5),
	})
	require.NoError(t, err)
	require.Contains(t, msg, "✅ ACTIVADO")
	require.Contains(t, msg, "3 days")

	got, err := svc.Current(ctx, "g1")
	require.NoError(t, err)
	require.True(t, got.Enabled)
	require.EqualValues(t, 3*86400, got.MinAgeSeconds)
	require.Equal(t, storage.ActionDelay, got.ActionType)
	require.Equal(t, storage.BanTemporary, got.BanType)
	require.EqualValues(t, 48*3600, got.TempBanSeconds)
	require.EqualValues(t, 12*3600, got.DelaySeconds)
	require.Equal(t, "cuenta demasiado nueva", got.BanReason)
	require.Equal(t, "c-staff", got.StaffChannelID)
	require.Equal(t, 5, got.RateLimit)
}

func TestSettingsShowIncludesConditionalFields(t *testing.T) {
	t.Parallel()

	set := defaultSettings("g1")
	set.BanType = storage.BanTemporary
	set.ActionType = storage.ActionDelay
	repo := newFakeSettings(set)
	svc := NewSettingsService(repo, newFakeLedger())

	out, err := svc.Show(context.Background(), "g1")
	require.NoError(t, err)
	require.Contains(t, out, "Duración del ban temporal")
	require.Contains(t, out, "Demora del ban diferido")
	require.Contains(t, out, "❌ DESACTIVADO")
}
