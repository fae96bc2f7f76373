// Command sorikiosk is the voice-ordering kiosk server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hanwoori/sorikiosk/internal/config"
	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/observe"
	"github.com/hanwoori/sorikiosk/internal/order"
	"github.com/hanwoori/sorikiosk/internal/order/fuzzy"
	"github.com/hanwoori/sorikiosk/internal/orderstore"
	"github.com/hanwoori/sorikiosk/internal/recommend"
	"github.com/hanwoori/sorikiosk/internal/server"
	"github.com/hanwoori/sorikiosk/internal/session"
)

const defaultListenAddr = ":8080"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "sorikiosk: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "sorikiosk: %v\n", err)
		}
		return 1
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	listenAddr := cfg.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	slog.Info("sorikiosk starting",
		"config", *configPath,
		"listen_addr", listenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Menu catalog ──────────────────────────────────────────────────────────
	catalog, watcher, err := loadCatalog(cfg)
	if err != nil {
		slog.Error("failed to load menu catalog", "path", cfg.Catalog.Path, "err", err)
		return 1
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	// ── Order archive ─────────────────────────────────────────────────────────
	store, checker, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise order store", "err", err)
		return 1
	}
	defer cleanup()

	// ── Parser ────────────────────────────────────────────────────────────────
	parser := buildParser(cfg)

	// ── Sessions, recommendations, server ─────────────────────────────────────
	sessions := session.NewManager(parser, catalog, store, metrics)
	rec := recommend.New(store, cfg.Recommend.SetMenus)
	srv := server.New(listenAddr, sessions, catalog, store, rec, metrics,
		server.WithCheckers(checker),
		server.WithLanguages(cfg.Server.Languages...))

	slog.Info("server ready — press Ctrl+C to shut down")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// loadCatalog returns a catalog accessor and, when hot-reload is configured,
// the watcher that keeps it current. Without a configured path the built-in
// sample catalog is served.
func loadCatalog(cfg *config.Config) (func() *menu.Catalog, *menu.Watcher, error) {
	if cfg.Catalog.Path == "" {
		slog.Info("no catalog file configured, serving built-in sample menu")
		cat := menu.Builtin()
		return func() *menu.Catalog { return cat }, nil, nil
	}

	if cfg.Catalog.ReloadSeconds > 0 {
		w, err := menu.NewWatcher(cfg.Catalog.Path, nil,
			menu.WithInterval(time.Duration(cfg.Catalog.ReloadSeconds)*time.Second))
		if err != nil {
			return nil, nil, err
		}
		slog.Info("catalog hot-reload enabled",
			"path", cfg.Catalog.Path, "interval_seconds", cfg.Catalog.ReloadSeconds)
		return w.Current, w, nil
	}

	cat, err := menu.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("catalog loaded", "path", cfg.Catalog.Path, "entries", cat.Len())
	return func() *menu.Catalog { return cat }, nil, nil
}

// buildStore selects the order archive backend: PostgreSQL when a DSN is
// configured, the JSON-lines file otherwise.
func buildStore(ctx context.Context, cfg *config.Config) (orderstore.Store, server.Checker, func(), error) {
	if dsn := cfg.Store.PostgresDSN; dsn != "" {
		pg, err := orderstore.NewPGStore(ctx, dsn)
		if err != nil {
			return nil, server.Checker{}, nil, err
		}
		slog.Info("order archive: postgresql")
		checker := server.Checker{
			Name: "orderstore",
			Check: func(ctx context.Context) error {
				_, err := pg.Recent(ctx, time.Minute, 1)
				return err
			},
		}
		return pg, checker, pg.Close, nil
	}

	path := cfg.Store.FallbackPath
	if path == "" {
		path = "orders.jsonl"
	}
	slog.Info("order archive: json-lines file", "path", path)
	fs := orderstore.NewFileStore(path)
	checker := server.Checker{
		Name: "orderstore",
		Check: func(ctx context.Context) error {
			_, err := fs.Recent(ctx, time.Minute, 1)
			return err
		},
	}
	return fs, checker, func() {}, nil
}

// buildParser assembles the transcript parser from config.
func buildParser(cfg *config.Config) *order.Parser {
	var opts []order.Option
	if cfg.Parser.WindowRunes > 0 {
		opts = append(opts, order.WithWindow(cfg.Parser.WindowRunes))
	}
	if cfg.Parser.Fuzzy.Enabled {
		var fopts []fuzzy.Option
		if t := cfg.Parser.Fuzzy.PhoneticThreshold; t > 0 {
			fopts = append(fopts, fuzzy.WithPhoneticThreshold(t))
		}
		if t := cfg.Parser.Fuzzy.SimilarThreshold; t > 0 {
			fopts = append(fopts, fuzzy.WithSimilarThreshold(t))
		}
		opts = append(opts, order.WithFuzzyMatcher(fuzzy.New(fopts...)))
		slog.Info("fuzzy keyword matching enabled")
	}
	return order.NewParser(opts...)
}

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
