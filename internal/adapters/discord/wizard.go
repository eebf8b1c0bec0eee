// Panel interactivo de configuración (/agegateset): botones que abren
// modals y selects que escriben un campo validado por paso. El flujo lo
// maneja Discord; acá sólo enrutamos por CustomID.
package discord

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/agegate-bot/internal/app/service"
	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

func (r *Router) sendSetupPanel(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate) {
	status, err := r.settings.Show(ctx, ic.GuildID)
	if err != nil {
		ReplyEphemeral(s, ic, "⚠️ No pude leer la configuración: "+err.Error())
		return
	}

	rows := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Activar / Desactivar", Style: discordgo.PrimaryButton, CustomID: "agegate/toggle", Emoji: &discordgo.ComponentEmoji{Name: "⚙️"}},
			discordgo.Button{Label: "Edad mínima", Style: discordgo.SecondaryButton, CustomID: "agegate/minage"},
			discordgo.Button{Label: "Razón del ban", Style: discordgo.SecondaryButton, CustomID: "agegate/reason"},
			discordgo.Button{Label: "Duraciones y límite", Style: discordgo.SecondaryButton, CustomID: "agegate/limits"},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    "agegate/action",
				Placeholder: "Acción para cuentas nuevas…",
				Options: []discordgo.SelectMenuOption{
					{Label: "Ban inmediato", Value: "ban", Emoji: &discordgo.ComponentEmoji{Name: "🔨"}},
					{Label: "Ban diferido", Value: "delay", Emoji: &discordgo.ComponentEmoji{Name: "⏳"}},
					{Label: "Sólo avisar al staff", Value: "notify", Emoji: &discordgo.ComponentEmoji{Name: "📣"}},
				},
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    "agegate/bantype",
				Placeholder: "Tipo de ban…",
				Options: []discordgo.SelectMenuOption{
					{Label: "Permanente", Value: "permanent"},
					{Label: "Temporal", Value: "temporary"},
				},
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:     discordgo.ChannelSelectMenu,
				CustomID:     "agegate/staff",
				Placeholder:  "Canal de avisos al staff…",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			},
		}},
	}

	ReplyEphemeral(s, ic, status, rows...)
}

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	if !strings.HasPrefix(data.CustomID, "agegate/") {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in component %s: %v", data.CustomID, rec)
		}
	}()

	// el panel es efímero dentro del guild, pero un Member nil no nos tumba
	if ic.Member == nil || ic.Member.User == nil {
		return
	}
	if !r.clickLimiter.Allow(ic.Member.User.ID) {
		_ = SendEphemeral(s, ic, "⏳ Esperá un segundo…")
		return
	}
	if !r.requireAdminOrRoles(s, ic) {
		return
	}

	// los botones que abren modal responden con el modal, sin defer
	switch data.CustomID {
	case "agegate/minage":
		r.openModal(s, ic, minAgeModal())
		return
	case "agegate/reason":
		r.openModal(s, ic, reasonModal())
		return
	case "agegate/limits":
		r.openModal(s, ic, limitsModal())
		return
	}

	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	var patch service.SettingsPatch
	switch data.CustomID {
	case "agegate/toggle":
		cur, err := r.settings.Current(ctx, ic.GuildID)
		if err != nil {
			ReplyEphemeral(s, ic, "⚠️ No pude leer la configuración: "+err.Error())
			return
		}
		v := !cur.Enabled
		patch.Enabled = &v

	case "agegate/action":
		at, err := storage.ParseActionType(first(data.Values))
		if err != nil {
			ReplyEphemeral(s, ic, "❌ Acción inválida.")
			return
		}
		patch.Action = &at

	case "agegate/bantype":
		bt, err := storage.ParseBanType(first(data.Values))
		if err != nil {
			ReplyEphemeral(s, ic, "❌ Tipo de ban inválido.")
			return
		}
		patch.BanType = &bt

	case "agegate/staff":
		ch := first(data.Values)
		patch.StaffChannelID = &ch

	default:
		return
	}

	msg, err := r.settings.Update(ctx, ic.GuildID, patch)
	if err != nil {
		ReplyEphemeral(s, ic, "⚠️ No pude actualizar: "+err.Error())
		return
	}
	ReplyEphemeral(s, ic, msg)
}

func (r *Router) handleModalSubmit(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.ModalSubmitData()
	if !strings.HasPrefix(data.CustomID, "agegate_modal/") {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	var patch service.SettingsPatch
	switch data.CustomID {
	case "agegate_modal/minage":
		days, err1 := strconv.Atoi(strings.TrimSpace(modalValue(data, "days")))
		hours, err2 := atoiOr(modalValue(data, "hours"), 0)
		if err1 != nil || err2 != nil || days < 0 || hours < 0 || hours > 23 {
			_ = SendEphemeral(s, ic, "❌ Ingresá números válidos (días ≥ 0, horas 0-23).")
			return
		}
		d := time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour
		patch.MinAge = &d

	case "agegate_modal/reason":
		text := strings.TrimSpace(modalValue(data, "reason"))
		patch.BanReason = &text

	case "agegate_modal/limits":
		banDays, err1 := atoiOr(modalValue(data, "ban_days"), 0)
		delayHours, err2 := atoiOr(modalValue(data, "delay_hours"), 0)
		perMinute, err3 := atoiOr(modalValue(data, "per_minute"), 0)
		if err1 != nil || err2 != nil || err3 != nil {
			_ = SendEphemeral(s, ic, "❌ Ingresá números válidos.")
			return
		}
		if banDays > 0 {
			d := time.Duration(banDays) * 24 * time.Hour
			patch.TempBanDuration = &d
		}
		if delayHours > 0 {
			d := time.Duration(delayHours) * time.Hour
			patch.DelayDuration = &d
		}
		if perMinute > 0 {
			patch.RateLimit = &perMinute
		}

	default:
		return
	}

	msg, err := r.settings.Update(ctx, ic.GuildID, patch)
	if err != nil {
		_ = SendEphemeral(s, ic, "⚠️ No pude actualizar: "+err.Error())
		return
	}
	_ = SendEphemeral(s, ic, msg)
}

// ---------- modals ----------

func (r *Router) openModal(s *discordgo.Session, ic *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: data,
	})
	if err != nil {
		log.Printf("openModal %s: %v", data.CustomID, err)
	}
}

func minAgeModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: "agegate_modal/minage",
		Title:    "Edad mínima de cuenta",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{CustomID: "days", Label: "Días", Style: discordgo.TextInputShort, Value: "7", Required: true, MaxLength: 3},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{CustomID: "hours", Label: "Horas extra (0-23)", Style: discordgo.TextInputShort, Value: "0", MaxLength: 2},
			}},
		},
	}
}

func reasonModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: "agegate_modal/reason",
		Title:    "Razón del ban",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: "reason", Label: "Razón (va por DM y al audit log)",
					Style: discordgo.TextInputParagraph, Required: true, MaxLength: 512,
				},
			}},
		},
	}
}

func limitsModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: "agegate_modal/limits",
		Title:    "Duraciones y rate limit",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{CustomID: "ban_days", Label: "Ban temporal: días (vacío = sin cambio)", Style: discordgo.TextInputShort, MaxLength: 3},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{CustomID: "delay_hours", Label: "Ban diferido: horas (vacío = sin cambio)", Style: discordgo.TextInputShort, MaxLength: 3},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{CustomID: "per_minute", Label: "Bans por minuto (vacío = sin cambio)", Style: discordgo.TextInputShort, MaxLength: 3},
			}},
		},
	}
}

// ---------- helpers ----------

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func atoiOr(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if in, ok := c.(*discordgo.TextInput); ok && in.CustomID == customID {
				return in.Value
			}
		}
	}
	return ""
}
