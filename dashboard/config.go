package dashboard

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/enrollmap/enrollmap/enroll"
)

// Config is the top-level service configuration, read from YAML with env
// overrides applied in main.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// DataDir holds the processed snapshot JSON files.
	DataDir string `yaml:"data_dir"`

	// Sources overrides the per-dataset source lists. Unset lists default
	// to the standard filenames under DataDir.
	Sources enroll.Sources `yaml:"sources"`

	// GeoSources is the ordered geography fallback list, first success wins.
	GeoSources []string `yaml:"geo_sources"`

	// CatalogDB / ObservabilityDB are the SQLite paths.
	CatalogDB       string `yaml:"catalog_db"`
	ObservabilityDB string `yaml:"observability_db"`

	// AdminPasswordHash is the bcrypt hash guarding POST /api/admin/reload.
	// Empty disables the endpoint.
	AdminPasswordHash string `yaml:"admin_password_hash"`

	// FetchTimeout bounds each remote dataset read.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// RankingSize is the default gainers/losers panel length.
	RankingSize int `yaml:"ranking_size"`
}

// Defaults fills unset fields. Source lists default to the conventional
// filenames the ETL writes under DataDir.
func (c *Config) Defaults() {
	if c.Addr == "" {
		c.Addr = ":8086"
	}
	if c.DataDir == "" {
		c.DataDir = "data/processed"
	}
	if len(c.Sources.Current) == 0 {
		c.Sources.Current = []string{filepath.Join(c.DataDir, "enrollment-current.json")}
	}
	if len(c.Sources.December) == 0 {
		c.Sources.December = []string{filepath.Join(c.DataDir, "enrollment-december.json")}
	}
	if len(c.Sources.Changes) == 0 {
		c.Sources.Changes = []string{filepath.Join(c.DataDir, "enrollment-changes.json")}
	}
	if len(c.Sources.Contracts) == 0 {
		c.Sources.Contracts = []string{filepath.Join(c.DataDir, "contracts.json")}
	}
	if len(c.GeoSources) == 0 {
		c.GeoSources = []string{filepath.Join(c.DataDir, "counties.geojson")}
	}
	if c.CatalogDB == "" {
		c.CatalogDB = "db/catalog.db"
	}
	if c.ObservabilityDB == "" {
		c.ObservabilityDB = "db/observability.db"
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.RankingSize <= 0 {
		c.RankingSize = 10
	}
}

// LoadConfigFile reads a YAML configuration file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dashboard: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("dashboard: parse config %s: %w", path, err)
	}
	cfg.Defaults()
	return &cfg, nil
}
