// Command paldex is the Paldeck Discord bot: it answers /pal lookups with
// data from the Paldeck REST API and suggests Pal names via autocomplete.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/paldex/internal/autocomplete"
	"github.com/MrWong99/paldex/internal/config"
	discordbot "github.com/MrWong99/paldex/internal/discord"
	"github.com/MrWong99/paldex/internal/discord/commands"
	"github.com/MrWong99/paldex/internal/health"
	"github.com/MrWong99/paldex/internal/observe"
	"github.com/MrWong99/paldex/internal/pals"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	// A missing config file is fine as long as the environment supplies the
	// required settings ($DISCORD_TOKEN and $PAL_API_URL).
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "paldex: %v\n", err)
			return 1
		}
		cfg = config.Default()
	}
	config.ApplyEnv(cfg)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "paldex: invalid configuration:\n%v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	slog.Info("paldex starting",
		"version", version,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
		"paldeck_url", cfg.Paldeck.BaseURL,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability providers ───────────────────────────────────────────────
	shutdownObserve, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "paldex",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownObserve(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Paldeck client and name store ─────────────────────────────────────────
	client, err := pals.New(cfg.Paldeck.BaseURL, pals.WithPageSize(cfg.Paldeck.PageSize))
	if err != nil {
		slog.Error("failed to create Paldeck client", "err", err)
		return 1
	}

	names, err := client.Names(ctx)
	if err != nil {
		// Without the name store neither autocomplete nor sensible error
		// messages work, so a failed fetch is fatal.
		slog.Error("failed to load Pal names", "err", err)
		return 1
	}
	// Discord shows at most 25 autocomplete choices.
	index := autocomplete.New(names, autocomplete.WithLimit(25))
	observe.DefaultMetrics().NamesLoaded.Add(ctx, int64(index.Len()))
	slog.Info("pal names loaded", "count", index.Len())

	// ── Discord bot ───────────────────────────────────────────────────────────
	bot, err := discordbot.New(ctx, discordbot.Config{
		Token:   cfg.Discord.Token,
		GuildID: cfg.Discord.GuildID,
	})
	if err != nil {
		slog.Error("failed to connect to Discord", "err", err)
		return 1
	}

	commands.NewPalCommands(client, index).Register(bot.Router())
	slog.Info("discord bot connected", "guild_id", cfg.Discord.GuildID)

	// ── Run ───────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gctx)
	})

	if cfg.Server.ListenAddr != "" {
		srv := newObservabilityServer(cfg.Server.ListenAddr, bot, index)
		g.Go(func() error {
			slog.Info("observability server listening", "addr", cfg.Server.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("observability server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	slog.Info("paldex ready — press Ctrl+C to shut down")
	err = g.Wait()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	if closeErr := bot.Close(); closeErr != nil {
		slog.Warn("discord bot close error", "err", closeErr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// newObservabilityServer builds the HTTP server exposing /metrics, /healthz,
// and /readyz, with request telemetry middleware applied.
func newObservabilityServer(addr string, bot *discordbot.Bot, index *autocomplete.Index) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	health.New(
		health.Checker{
			Name: "discord",
			Check: func(ctx context.Context) error {
				if !bot.Ready() {
					return errors.New("gateway session not established")
				}
				return nil
			},
		},
		health.Checker{
			Name: "names",
			Check: func(ctx context.Context) error {
				if index.Len() == 0 {
					return errors.New("name store empty")
				}
				return nil
			},
		},
	).Register(mux)

	return &http.Server{
		Addr:              addr,
		Handler:           observe.Middleware(observe.DefaultMetrics())(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// newLogger builds the process-wide slog logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
