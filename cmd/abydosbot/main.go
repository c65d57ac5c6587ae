// Command abydosbot runs the Abydos Discord colony bot: store, world
// scheduler, debt/incident/report engines, presence rotator, web sync,
// and the word-chain game, all wired onto one discordgo session.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/talgya/abydos/internal/config"
	"github.com/talgya/abydos/internal/debt"
	"github.com/talgya/abydos/internal/discordbot"
	"github.com/talgya/abydos/internal/entropy"
	"github.com/talgya/abydos/internal/incident"
	"github.com/talgya/abydos/internal/llm"
	"github.com/talgya/abydos/internal/presence"
	"github.com/talgya/abydos/internal/quest"
	"github.com/talgya/abydos/internal/report"
	"github.com/talgya/abydos/internal/store"
	"github.com/talgya/abydos/internal/websync"
	"github.com/talgya/abydos/internal/wordchain"
	"github.com/talgya/abydos/internal/workshop"
	"github.com/talgya/abydos/internal/worldstate"
	"github.com/talgya/abydos/internal/xp"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Abydos — persistent colony chat bot")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.Error("failed to create data dir", "error", err, "path", cfg.DataDir)
		os.Exit(1)
	}
	dbPath := filepath.Join(cfg.DataDir, "abydos.db")
	st, err := store.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Discord session ───────────────────────────────────────────────
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		slog.Error("failed to build discord session", "error", err)
		os.Exit(1)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	// ── LLM Oracle ────────────────────────────────────────────────────
	llmClient := llm.NewClient(cfg.LLMAPIKey)
	if llmClient.Enabled() {
		slog.Info("LLM client enabled", "model", cfg.LLMModel)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — narration falls back to fixed text")
	}
	oracle := llm.NewOracle(llmClient, st, cfg.LLMMonthlyUSDLimit, cfg.LLMPrice1kInputUSD, cfg.LLMPrice1kOutputUSD)

	// ── Engines ───────────────────────────────────────────────────────
	debtEngine := debt.New(st)
	workshopEngine := workshop.New(st)
	questEngine := quest.New(st)
	xpEngine := xp.New(st)

	wordchainCacheDir := filepath.Join(cfg.DataDir, "wordchain")
	if err := os.MkdirAll(wordchainCacheDir, 0o755); err != nil {
		slog.Error("failed to create word-chain cache dir", "error", err, "path", wordchainCacheDir)
		os.Exit(1)
	}
	dict, err := wordchain.Load(wordchain.Source{
		CacheDir:    wordchainCacheDir,
		BaseURL:     cfg.DictionaryBaseURL,
		SharedToken: cfg.DictionarySharedTok,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	})
	if err != nil {
		slog.Error("failed to load word-chain dictionary", "error", err)
		os.Exit(1)
	}
	slog.Info("word-chain dictionary loaded")

	// Bot is constructed first (without schedulers depending on it),
	// then the schedulers are wired to it via the adapters in
	// internal/discordbot/adapters.go, mirroring the way worldsim's
	// main wires sim callbacks onto an already-built engine.
	bot := discordbot.New(session, st, cfg.CommandPrefix, debtEngine, workshopEngine, questEngine, xpEngine, oracle)

	wordchainMgr := wordchain.NewManager(dict, st, oracle, discordbot.NewTurnNotifier(bot))
	bot.SetWordChainManager(wordchainMgr)

	worldScheduler := worldstate.New(st, discordbot.NewWorldAnnouncer(bot))
	bot.SetWorldScheduler(worldScheduler)

	incidentScheduler := incident.New(st, debtEngine, discordbot.NewIncidentAnnouncer(bot))
	entropyClient := entropy.NewClient(cfg.RandomOrgAPIKey)
	if entropyClient.Enabled() {
		slog.Info("random.org entropy source enabled for incident rolls")
	}
	incidentScheduler.SetEntropySource(entropyClient)
	reportScheduler := report.New(st, discordbot.NewReportPublisher(bot))

	var syncer *websync.Syncer
	if cfg.WebSyncURL != "" {
		syncer = websync.New(st, discordbot.NewGuildSource(bot), cfg.WebSyncURL, cfg.WebSyncToken, 5*time.Minute)
	}

	rotator := presence.New(session, presence.DefaultItems())

	// ── Open the gateway connection ───────────────────────────────────
	if err := session.Open(); err != nil {
		slog.Error("failed to open discord session", "error", err)
		os.Exit(1)
	}
	defer session.Close()
	slog.Info("discord session open")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worldScheduler.Run(ctx)
	go incidentScheduler.Run(ctx)
	go reportScheduler.Run(ctx)
	go rotator.Run(ctx)
	if syncer != nil {
		go syncer.Run(ctx)
		slog.Info("web sync enabled", "url", cfg.WebSyncURL)
	} else {
		slog.Info("WEBSYNC_URL not set — web sync disabled")
	}

	fmt.Println("Abydos is online. (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	cancel()

	fmt.Println("Abydos stopped.")
}
