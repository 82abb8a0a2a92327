package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for taxoquery.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Templates TemplatesConfig `koanf:"templates"`
	Taxonomy  TaxonomyConfig  `koanf:"taxonomy"`
	Pricing   PricingConfig   `koanf:"pricing"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // "debug" or "release"
}

// DatabaseConfig holds the snapshot store connection settings. The store is
// optional: with Enabled false the service keeps taxonomies in memory only.
type DatabaseConfig struct {
	Enabled      bool   `koanf:"enabled"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// TemplatesConfig holds settings for the query-template catalog.
type TemplatesConfig struct {
	// Dir is an optional directory of extra YAML template definitions
	// merged into the built-in catalog at startup.
	Dir string `koanf:"dir"`
}

// TaxonomyConfig controls taxonomy lifecycle behavior.
type TaxonomyConfig struct {
	// RestoreSource names a spreadsheet source whose latest persisted
	// snapshot is loaded at startup. Empty disables the restore.
	RestoreSource string `koanf:"restore_source"`
}

// PricingConfig holds the display-only cost estimation settings.
type PricingConfig struct {
	PerTBUSD float64 `koanf:"per_tb_usd"`
}

// Load loads the configuration from the given file path and environment
// variables. Environment overrides use the TAXOQUERY_ prefix with "__" as
// the section separator: TAXOQUERY_SERVER__PORT=9090 overrides server.port.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.mode":             "release",
		"database.enabled":        false,
		"database.dsn":            "postgres://localhost:5432/taxoquery?sslmode=disable",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 25,
		"database.auto_migrate":   true,
		"templates.dir":           "",
		"taxonomy.restore_source": "",
		"pricing.per_tb_usd":      5.0,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("TAXOQUERY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "TAXOQUERY_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
