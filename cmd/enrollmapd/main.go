// Entry point for the enrollmapd HTTP service: chi router, embedded SPA,
// SQLite catalog watcher and observability.
package main

import (
	"context"
	"embed"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/enrollmap/enrollmap/catalog"
	"github.com/enrollmap/enrollmap/dashboard"
	"github.com/enrollmap/enrollmap/dbopen"
	"github.com/enrollmap/enrollmap/observability"
	"github.com/enrollmap/enrollmap/shield"
)

//go:embed static
var staticFS embed.FS

func main() {
	logLevel := env("LOG_LEVEL", "info")
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration: YAML file, env overrides.
	cfg := &dashboard.Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := dashboard.LoadConfigFile(path)
		if err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		cfg.AdminPasswordHash = hash
	}
	cfg.Defaults()

	// Observability DB.
	obsDB, err := dbopen.Open(cfg.ObservabilityDB, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("observability db", "error", err)
		os.Exit(1)
	}
	defer obsDB.Close()
	if err := observability.Init(obsDB); err != nil {
		slog.Error("observability init", "error", err)
		os.Exit(1)
	}
	events := observability.NewEventLogger(obsDB)
	go events.HeartbeatLoop(ctx, "enrollmapd", time.Minute)

	// Snapshot catalog DB.
	catalogDB, err := dbopen.Open(cfg.CatalogDB, dbopen.WithMkdirAll(), dbopen.WithSchema(catalog.Schema))
	if err != nil {
		slog.Error("catalog db", "error", err)
		os.Exit(1)
	}
	defer catalogDB.Close()

	// Dashboard service. A failed initial load keeps the process up in the
	// data-unavailable state; the catalog watcher retries when the ETL
	// registers usable snapshots.
	svc := dashboard.New(cfg, logger, dashboard.WithEvents(events))
	if err := svc.Load(ctx); err != nil {
		slog.Error("initial load failed, serving data-unavailable state", "error", err)
	}

	// Reload on catalog changes (new month registered by the ETL).
	watcher := catalog.NewWatcher(catalogDB, catalog.WatcherOptions{
		Interval: 5 * time.Second,
		Debounce: 2 * time.Second,
		Logger:   logger,
	})
	go watcher.Run(ctx, func() error { return svc.Reload(ctx) })

	// Router.
	r := chi.NewRouter()
	for _, mw := range shield.DefaultStack() {
		r.Use(mw)
	}
	r.Use(observability.RequestLogger(obsDB))
	svc.Routes(r)

	// SPA.
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("static/index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})
	r.Handle("/static/*", http.FileServerFS(staticFS))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("enrollmapd starting", "addr", cfg.Addr, "data_dir", cfg.DataDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server", "error", err)
		os.Exit(1)
	}
	slog.Info("enrollmapd stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
