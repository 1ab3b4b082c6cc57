package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// WatcherOptions tunes the registry poll loop.
type WatcherOptions struct {
	// Interval is the polling frequency. Default: 5s.
	Interval time.Duration
	// Debounce is the quiet period after a detected change before the
	// reload fires; further changes inside the window reset the timer.
	// Default: 2s.
	Debounce time.Duration
	// Logger overrides slog.Default().
	Logger *slog.Logger
}

func (o *WatcherOptions) defaults() {
	if o.Interval <= 0 {
		o.Interval = 5 * time.Second
	}
	if o.Debounce <= 0 {
		o.Debounce = 2 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Watcher polls the registry database's data_version and fires a reload
// action when it advances. If the action errors the version is not marked
// consumed, so the reload retries on the next poll.
type Watcher struct {
	db   *sql.DB
	opts WatcherOptions
}

// NewWatcher creates a watcher over the catalog database.
func NewWatcher(db *sql.DB, opts WatcherOptions) *Watcher {
	opts.defaults()
	return &Watcher{db: db, opts: opts}
}

func dataVersion(ctx context.Context, db *sql.DB) (int64, error) {
	var v int64
	err := db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v)
	return v, err
}

// Run blocks until ctx is cancelled, invoking reload after each debounced
// registry change.
func (w *Watcher) Run(ctx context.Context, reload func() error) {
	log := w.opts.Logger

	last, err := dataVersion(ctx, w.db)
	if err != nil {
		log.Warn("catalog watch: initial version check failed", "error", err)
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	var debounce *time.Timer
	var fire <-chan time.Time
	pending := int64(-1)

	log.Info("catalog watch started", "interval", w.opts.Interval, "debounce", w.opts.Debounce)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			log.Info("catalog watch stopped")
			return

		case <-ticker.C:
			v, err := dataVersion(ctx, w.db)
			if err != nil {
				log.Warn("catalog watch: version check failed", "error", err)
				continue
			}
			if v == last || v == pending {
				continue
			}
			pending = v
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(w.opts.Debounce)
			fire = debounce.C
			log.Debug("catalog change detected", "version", v)

		case <-fire:
			fire = nil
			if err := reload(); err != nil {
				log.Error("catalog reload failed, will retry", "error", err)
				pending = -1 // re-arm on next differing poll
				continue
			}
			last = pending
			pending = -1
			log.Info("catalog reload complete", "version", last)
		}
	}
}
