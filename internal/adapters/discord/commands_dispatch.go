// Manejo de InteractionApplicationCommand: acá sólo se parsea la
// interacción y se despacha a los services.
package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/agegate-bot/internal/app/service"
	"github.com/jose-valero/agegate-bot/internal/infra/storage"
)

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()

	// en DMs discordgo deja Member en nil; los comandos son guild-only,
	// pero no confiamos en eso: un panic acá voltea el proceso entero
	if ic.Member == nil || ic.Member.User == nil {
		log.Printf("cmd: /%s fuera de un guild, ignorado", cmd.Name)
		return
	}
	log.Printf("cmd: /%s by=%s guild=%s", cmd.Name, ic.Member.User.ID, ic.GuildID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in cmd /%s: %v", cmd.Name, rec)
			ReplyEphemeral(s, ic, "❌ Ocurrió un error inesperado procesando el comando.")
		}
	}()

	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	switch cmd.Name {
	case "agegate":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		if len(cmd.Options) == 0 {
			ReplyEphemeral(s, ic, "Usa `/agegate status` o alguno de los subcomandos de configuración.")
			return
		}
		r.handleAgegateSub(ctx, s, ic, cmd.Options[0])

	case "agegateset":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		r.sendSetupPanel(ctx, s, ic)
	}
}

func (r *Router) handleAgegateSub(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var patch service.SettingsPatch

	switch sub.Name {
	case "status":
		msg, err := r.settings.Show(ctx, ic.GuildID)
		if err != nil {
			msg = "⚠️ No pude leer la configuración: " + err.Error()
		}
		ReplyEphemeral(s, ic, msg)
		return

	case "toggle":
		on := (*bool)(nil)
		if v, ok := optBool(sub, "on"); ok {
			on = &v
		}
		if on == nil {
			// sin argumento: alternar
			cur, err := r.settings.Current(ctx, ic.GuildID)
			if err != nil {
				ReplyEphemeral(s, ic, "⚠️ No pude leer la configuración: "+err.Error())
				return
			}
			v := !cur.Enabled
			on = &v
		}
		patch.Enabled = on

	case "minage":
		days, _ := optInt(sub, "days")
		hours, _ := optInt(sub, "hours")
		if hours < 0 || hours > 23 {
			ReplyEphemeral(s, ic, "❌ Las horas deben estar entre 0 y 23.")
			return
		}
		d := time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour
		patch.MinAge = &d

	case "reason":
		text, _ := optStr(sub, "text")
		patch.BanReason = &text

	case "action":
		raw, _ := optStr(sub, "type")
		at, err := storage.ParseActionType(raw)
		if err != nil {
			ReplyEphemeral(s, ic, "❌ Acción inválida. Elegí `ban`, `delay` o `notify`.")
			return
		}
		patch.Action = &at

	case "bantype":
		raw, _ := optStr(sub, "type")
		bt, err := storage.ParseBanType(raw)
		if err != nil {
			ReplyEphemeral(s, ic, "❌ Tipo inválido. Elegí `permanent` o `temporary`.")
			return
		}
		patch.BanType = &bt

	case "banduration":
		days, _ := optInt(sub, "days")
		d := time.Duration(days) * 24 * time.Hour
		patch.TempBanDuration = &d

	case "delayduration":
		hours, _ := optInt(sub, "hours")
		d := time.Duration(hours) * time.Hour
		patch.DelayDuration = &d

	case "ratelimit":
		n, _ := optInt(sub, "per_minute")
		nn := int(n)
		patch.RateLimit = &nn

	case "staffchannel":
		ch := "" // sin opción = borrar el canal
		if id, ok := optChannel(sub); ok {
			ch = id
		}
		patch.StaffChannelID = &ch

	default:
		ReplyEphemeral(s, ic, "❓ Subcomando desconocido.")
		return
	}

	msg, err := r.settings.Update(ctx, ic.GuildID, patch)
	if err != nil {
		ReplyEphemeral(s, ic, "⚠️ No pude actualizar: "+err.Error())
		return
	}
	ReplyEphemeral(s, ic, msg)
}

// ---------- helpers de opciones ----------

func optStr(sub *discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	for _, o := range sub.Options {
		if o.Name == name {
			return o.StringValue(), true
		}
	}
	return "", false
}

func optInt(sub *discordgo.ApplicationCommandInteractionDataOption, name string) (int64, bool) {
	for _, o := range sub.Options {
		if o.Name == name {
			return o.IntValue(), true
		}
	}
	return 0, false
}

func optBool(sub *discordgo.ApplicationCommandInteractionDataOption, name string) (bool, bool) {
	for _, o := range sub.Options {
		if o.Name == name {
			return o.BoolValue(), true
		}
	}
	return false, false
}

func optChannel(sub *discordgo.ApplicationCommandInteractionDataOption) (string, bool) {
	for _, o := range sub.Options {
		if o.Type == discordgo.ApplicationCommandOptionChannel {
			return o.Value.(string), true
		}
	}
	return "", false
}
