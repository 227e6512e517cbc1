package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "ATLAS"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Charts   ChartsConfig   `mapstructure:"charts"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Registry RegistryConfig `mapstructure:"registry"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	Path        string `mapstructure:"path"`
	Profile     string `mapstructure:"profile"`
	ProfilePath string `mapstructure:"profile_path"`
	HTTPPath    string `mapstructure:"http_path"`
	Catalog     string `mapstructure:"catalog"`
	Schema      string `mapstructure:"schema"`
}

type ChartsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	TTL  time.Duration `mapstructure:"ttl"`
	Size int           `mapstructure:"size"`
}

type RegistryConfig struct {
	// ZonesFile overrides the default zone_1..zone_9 candidates.
	ZonesFile string `mapstructure:"zones_file"`
}

type ExportConfig struct {
	Sink     string `mapstructure:"sink"`
	Dir      string `mapstructure:"dir"`
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Prefix string `mapstructure:"s3_prefix"`
	Profile  string `mapstructure:"aws_profile"`
	Region   string `mapstructure:"aws_region"`

	// HistoryPath is the DuckDB file recording exports when the records
	// database is not DuckDB.
	HistoryPath string `mapstructure:"history_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]any{
	"server.host":            "localhost",
	"server.port":            "8080",
	"server.request_timeout": 60 * time.Second,
	"database.driver":        "duckdb",
	"database.dsn":           "",
	"database.path":          "maritime-atlas.db",
	"database.profile":       "",
	"database.profile_path":  "",
	"database.http_path":     "",
	"database.catalog":       "",
	"database.schema":        "",
	"charts.base_url":        "https://quickchart.io",
	"charts.timeout":         30 * time.Second,
	"cache.ttl":              10 * time.Minute,
	"cache.size":             256,
	"registry.zones_file":    "",
	"export.sink":            "local",
	"export.dir":             ".",
	"export.s3_bucket":       "",
	"export.s3_prefix":       "reports/",
	"export.history_path":    "maritime-atlas-state.db",
	"export.aws_profile":     "",
	"export.aws_region":      "us-east-1",
	"log.level":              "info",
}

// Load reads the optional YAML file at path and applies ATLAS_* environment
// overrides, e.g. ATLAS_DATABASE_DRIVER for database.driver.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Plain SERVER_HOST and SERVER_PORT from .env files are honored too.
	_ = v.BindEnv("server.host", EnvPrefix+"_SERVER_HOST", "SERVER_HOST")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "SERVER_PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "duckdb", "postgres", "databricks", "snowflake":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Export.Sink {
	case "local":
	case "s3":
		if c.Export.S3Bucket == "" {
			return fmt.Errorf("export.s3_bucket is required for the s3 sink")
		}
	default:
		return fmt.Errorf("unsupported export sink: %s", c.Export.Sink)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	return nil
}
