package enroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// FetchConfig bounds remote reads.
type FetchConfig struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

func (c *FetchConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 50 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "enrollmap/1.0"
	}
}

// Sources lists where each dataset comes from. Each entry is an ordered
// fallback list of file paths or http(s) URLs; the first success wins.
// Current is mandatory, the rest are optional.
type Sources struct {
	Current   []string `yaml:"current"`
	December  []string `yaml:"december"`
	Changes   []string `yaml:"changes"`
	Contracts []string `yaml:"contracts"`
}

// Loader fetches and decodes the enrollment datasets.
type Loader struct {
	Fetch  FetchConfig
	Client *http.Client
	Log    *slog.Logger
}

func (l *Loader) init() {
	l.Fetch.defaults()
	if l.Client == nil {
		l.Client = &http.Client{Timeout: l.Fetch.Timeout}
	}
	if l.Log == nil {
		l.Log = slog.Default()
	}
}

// Load fetches all four datasets concurrently and joins before returning.
// No fetch depends on another's result. A missing current snapshot fails the
// load with ErrNoCurrentSnapshot; missing optional datasets degrade the
// dependent features (empty rankings, empty contract options) with a warning
// instead of failing.
func (l *Loader) Load(ctx context.Context, src Sources) (*Store, error) {
	l.init()
	store := &Store{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var snap Snapshot
		if err := l.decodeFirst(ctx, src.Current, &snap); err != nil {
			return fmt.Errorf("%w: %v", ErrNoCurrentSnapshot, err)
		}
		store.Current = &snap
		return nil
	})
	g.Go(func() error {
		var snap Snapshot
		if err := l.decodeOptional(ctx, "december", src.December, &snap); err == nil {
			store.December = &snap
		}
		return nil
	})
	g.Go(func() error {
		var ch Changes
		if err := l.decodeOptional(ctx, "changes", src.Changes, &ch); err == nil {
			store.Changes = &ch
		}
		return nil
	})
	g.Go(func() error {
		contracts := make(map[string]Contract)
		if err := l.decodeOptional(ctx, "contracts", src.Contracts, &contracts); err == nil {
			store.Contracts = contracts
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if store.Current.Counties == nil {
		return nil, fmt.Errorf("%w: snapshot has no counties", ErrNoCurrentSnapshot)
	}
	l.Log.Info("enrollment data loaded",
		"counties", len(store.Current.Counties),
		"total", store.Current.Metadata.TotalEnrollment,
		"has_december", store.December != nil,
		"has_changes", store.Changes != nil,
		"contracts", len(store.Contracts))
	return store, nil
}

func (l *Loader) decodeOptional(ctx context.Context, name string, sources []string, v any) error {
	if len(sources) == 0 {
		l.Log.Warn("optional dataset not configured", "dataset", name)
		return ErrSourceExhausted
	}
	if err := l.decodeFirst(ctx, sources, v); err != nil {
		l.Log.Warn("optional dataset unavailable", "dataset", name, "error", err)
		return err
	}
	return nil
}

// decodeFirst tries each source in order and decodes the first that reads.
func (l *Loader) decodeFirst(ctx context.Context, sources []string, v any) error {
	if len(sources) == 0 {
		return ErrSourceExhausted
	}
	var errs []error
	for _, src := range sources {
		raw, err := l.ReadSource(ctx, src)
		if err == nil {
			if err = json.Unmarshal(raw, v); err == nil {
				return nil
			}
			err = fmt.Errorf("decode %s: %w", src, err)
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %v", ErrSourceExhausted, errors.Join(errs...))
}

// ReadSource reads a single file path or http(s) URL, capped at
// Fetch.MaxBytes.
func (l *Loader) ReadSource(ctx context.Context, src string) ([]byte, error) {
	l.init()
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", l.Fetch.UserAgent)
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", src, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, l.Fetch.MaxBytes))
}
