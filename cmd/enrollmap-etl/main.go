// Command enrollmap-etl turns a CMS CPSC enrollment CSV into the JSON
// snapshots enrollmapd serves, optionally downloading the current month from
// CMS first, and registers the outputs in the snapshot catalog so a running
// service reloads them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/enrollmap/enrollmap/catalog"
	"github.com/enrollmap/enrollmap/cpsc"
	"github.com/enrollmap/enrollmap/dbopen"
	"github.com/enrollmap/enrollmap/enroll"
	"github.com/enrollmap/enrollmap/observability"
)

func main() {
	var (
		csvPath      = flag.String("csv", "", "input CPSC CSV (default: most recent in <data-dir>/raw)")
		download     = flag.Bool("download", false, "download the monthly ZIP from CMS first")
		year         = flag.Int("year", 0, "data year for -download (default: most recent published)")
		month        = flag.Int("month", 0, "data month for -download")
		dataDir      = flag.String("data-dir", "data", "data directory (raw/ and processed/ live under it)")
		saveDecember = flag.Bool("save-december", false, "also save this snapshot as the December baseline")
		period       = flag.String("period", "", "period label, e.g. 2026-08 (default: derived from now)")
		catalogPath  = flag.String("catalog", "db/catalog.db", "snapshot catalog database")
		obsPath      = flag.String("observability", "", "observability database (optional)")
		logLevel     = flag.String("log-level", "info", "debug|info|warn|error")
	)
	flag.Parse()

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(*logLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, options{
		csvPath:      *csvPath,
		download:     *download,
		year:         *year,
		month:        *month,
		dataDir:      *dataDir,
		saveDecember: *saveDecember,
		period:       *period,
		catalogPath:  *catalogPath,
		obsPath:      *obsPath,
	}); err != nil {
		slog.Error("etl failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	csvPath      string
	download     bool
	year, month  int
	dataDir      string
	saveDecember bool
	period       string
	catalogPath  string
	obsPath      string
}

func run(ctx context.Context, opts options) error {
	rawDir := filepath.Join(opts.dataDir, "raw")
	processedDir := filepath.Join(opts.dataDir, "processed")

	year, month := opts.year, opts.month
	if year == 0 || month == 0 {
		year, month = cpsc.DataMonth(time.Now())
	}
	if opts.period == "" {
		opts.period = fmt.Sprintf("%d-%02d", year, month)
	}

	csvPath := opts.csvPath
	if opts.download {
		downloaded, err := cpsc.Download(ctx, nil, year, month, rawDir)
		if err != nil {
			return err
		}
		csvPath = downloaded
	}
	if csvPath == "" {
		found, err := mostRecentCSV(rawDir)
		if err != nil {
			return err
		}
		csvPath = found
	}

	slog.Info("processing", "csv", csvPath, "period", opts.period)
	rows, err := cpsc.ReadFile(csvPath)
	if err != nil {
		return err
	}

	contractOrgs := cpsc.LoadContractOrgs(findContractInfo(filepath.Dir(csvPath)))
	snap, contracts := cpsc.Aggregate(rows, contractOrgs)

	currentPath := filepath.Join(processedDir, "enrollment-current.json")
	if err := cpsc.WriteJSON(currentPath, snap); err != nil {
		return err
	}
	outputs := map[string]string{"current": currentPath}

	decemberPath := filepath.Join(processedDir, "enrollment-december.json")
	if opts.saveDecember {
		if err := cpsc.WriteJSON(decemberPath, snap); err != nil {
			return err
		}
		outputs["december"] = decemberPath
		slog.Info("saved as December baseline")
	}

	// Changes require an existing baseline; without one the dashboard
	// simply has no rankings for this period.
	var december enroll.Snapshot
	if err := cpsc.ReadSnapshotFile(decemberPath, &december); err == nil {
		changesPath := filepath.Join(processedDir, "enrollment-changes.json")
		if err := cpsc.WriteJSON(changesPath, cpsc.CalculateChanges(snap, &december)); err != nil {
			return err
		}
		outputs["changes"] = changesPath
	} else {
		slog.Warn("no December baseline, skipping changes", "error", err)
	}

	contractsPath := filepath.Join(processedDir, "contracts.json")
	if err := cpsc.WriteJSON(contractsPath, contracts); err != nil {
		return err
	}
	outputs["contracts"] = contractsPath

	if err := register(ctx, opts, snap, outputs); err != nil {
		return err
	}

	slog.Info("processing complete",
		"records", snap.Metadata.RecordCount,
		"total_enrollment", snap.Metadata.TotalEnrollment,
		"counties", len(snap.Counties),
		"organizations", len(snap.ByOrg),
		"contracts", len(contracts))
	return nil
}

// register records the outputs in the snapshot catalog; a running service
// watches it and reloads. Registration failure is not fatal to the ETL —
// the files are already on disk.
func register(ctx context.Context, opts options, snap *enroll.Snapshot, outputs map[string]string) error {
	db, err := dbopen.Open(opts.catalogPath, dbopen.WithMkdirAll(), dbopen.WithSchema(catalog.Schema))
	if err != nil {
		slog.Warn("catalog unavailable, outputs not registered", "error", err)
		return nil
	}
	defer db.Close()

	for kind, path := range outputs {
		_, err := catalog.Register(ctx, db, catalog.Entry{
			Period:          opts.period,
			Kind:            kind,
			Path:            path,
			TotalEnrollment: snap.Metadata.TotalEnrollment,
			RecordCount:     snap.Metadata.RecordCount,
			CountyCount:     len(snap.Counties),
		})
		if err != nil {
			return err
		}
	}

	if opts.obsPath != "" {
		obsDB, err := dbopen.Open(opts.obsPath, dbopen.WithMkdirAll())
		if err == nil {
			defer obsDB.Close()
			if err := observability.Init(obsDB); err == nil {
				observability.NewEventLogger(obsDB).LogEvent(ctx, observability.BusinessEvent{
					EventType:   "snapshot_ingest",
					ServiceName: "enrollmap-etl",
					EntityType:  "period",
					EntityID:    opts.period,
					Action:      "ingest",
					Success:     true,
				})
			}
		}
	}
	return nil
}

// mostRecentCSV mirrors the convention of picking the newest raw file when
// no explicit input is given.
func mostRecentCSV(rawDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(rawDir, "*.csv"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no CSV files in %s (run with -download first)", rawDir)
	}
	best := matches[0]
	bestTime := time.Time{}
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if info.ModTime().After(bestTime) {
			best, bestTime = m, info.ModTime()
		}
	}
	return best, nil
}

// findContractInfo looks for a contract-info CSV next to the enrollment CSV.
func findContractInfo(dir string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*contract_info*.csv"))
	if len(matches) == 0 {
		return filepath.Join(dir, "contract_info.csv") // LoadContractOrgs degrades on absence
	}
	return matches[0]
}
