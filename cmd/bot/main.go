package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	discordrouter "github.com/jose-valero/agegate-bot/internal/adapters/discord"
	"github.com/jose-valero/agegate-bot/internal/app/service"
	"github.com/jose-valero/agegate-bot/internal/infra/config"
	"github.com/jose-valero/agegate-bot/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}
	log.Println("✅ DB lista y migrada")

	// Repos
	settingsRepo := storage.NewSettingsRepo(db)
	ledgerRepo := storage.NewLedgerRepo(db)
	auditRepo := storage.NewAuditRepo(db)

	// Discord session
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	// GuildMembers hace falta para los eventos de join
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	log.Printf("✅ Conectado como %s (%s)", s.State.User.Username, s.State.User.ID)

	// Services
	gw := discordrouter.NewGateway(s)
	admissionSvc := service.NewAdmissionService(settingsRepo, ledgerRepo, auditRepo, gw)
	settingsSvc := service.NewSettingsService(settingsRepo, ledgerRepo)

	// Router
	r := discordrouter.NewRouter(s, cfg.DiscordGuild, cfg.AdminRoleIDs, admissionSvc, settingsSvc)
	if err := r.Register(); err != nil {
		log.Fatalf("registrando comandos: %v", err)
	}
	r.Handlers()
	log.Println("✅ comandos registrados")

	// Sweeps (unban de temporales + bans diferidos); arrancan recién con
	// la sesión abierta y se cancelan al bajar el proceso
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := service.NewSweeper(settingsRepo, ledgerRepo, auditRepo, gw, cfg.UnbanSweepInterval, cfg.DelaySweepInterval)
	go func() {
		if err := sweeper.Run(ctx); err != nil {
			log.Printf("sweeper: %v", err)
		}
	}()
	log.Printf("✅ sweeps corriendo (unban cada %s, diferidos cada %s)", cfg.UnbanSweepInterval, cfg.DelaySweepInterval)

	// Esperar señal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}
