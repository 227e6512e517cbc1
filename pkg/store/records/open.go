package records

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/databricks/databricks-sql-go"
	dbconfig "github.com/databricks/databricks-sdk-go/config"
	"github.com/de-tools/maritime-atlas/pkg/store/duckdb"
	storesql "github.com/de-tools/maritime-atlas/pkg/store/sql"
	_ "github.com/jackc/pgx/v5/stdlib"
	sf "github.com/snowflakedb/gosnowflake"
	"github.com/spf13/viper"
)

// Settings selects and configures the database holding the maritime records.
type Settings struct {
	Driver string
	// DSN is used as is when set; otherwise it is derived from the driver's profile.
	DSN string
	// DbPath is the DuckDB file, ":memory:" when empty.
	DbPath string
	// Profile names a Databricks profile of ProfilePath (~/.databrickscfg when empty).
	Profile string
	// ProfilePath is the .databrickscfg file, or the Snowflake YAML profile.
	ProfilePath string
	HTTPPath    string
	Catalog     string
	Schema      string
}

// Open connects to the configured database and reports its dialect.
func Open(settings Settings) (*sql.DB, storesql.Dialect, error) {
	switch storesql.Dialect(strings.ToLower(settings.Driver)) {
	case storesql.DialectDuckDB, "":
		path := settings.DbPath
		if path == "" {
			path = ":memory:"
		}
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: path})
		if err != nil {
			return nil, "", fmt.Errorf("open duckdb: %w", err)
		}
		return db, storesql.DialectDuckDB, nil

	case storesql.DialectPostgres:
		if settings.DSN == "" {
			return nil, "", fmt.Errorf("postgres requires a dsn")
		}
		db, err := sql.Open("pgx", settings.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		return db, storesql.DialectPostgres, nil

	case storesql.DialectDatabricks:
		dsn := settings.DSN
		if dsn == "" {
			var err error
			if dsn, err = databricksDSN(settings); err != nil {
				return nil, "", err
			}
		}
		db, err := sql.Open("databricks", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("open databricks: %w", err)
		}
		return db, storesql.DialectDatabricks, nil

	case storesql.DialectSnowflake:
		dsn := settings.DSN
		if dsn == "" {
			var err error
			if dsn, err = snowflakeDSN(settings.ProfilePath); err != nil {
				return nil, "", err
			}
		}
		db, err := sql.Open("snowflake", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("open snowflake: %w", err)
		}
		return db, storesql.DialectSnowflake, nil

	default:
		return nil, "", fmt.Errorf("unsupported database driver: %s", settings.Driver)
	}
}

func databricksDSN(settings Settings) (string, error) {
	if settings.HTTPPath == "" {
		return "", fmt.Errorf("databricks requires an http path")
	}

	cfg := &dbconfig.Config{
		Profile:    settings.Profile,
		ConfigFile: settings.ProfilePath,
	}
	if err := cfg.EnsureResolved(); err != nil {
		return "", fmt.Errorf("resolve databricks profile %q: %w", settings.Profile, err)
	}
	if cfg.Token == "" {
		return "", fmt.Errorf("databricks profile %q has no token", settings.Profile)
	}

	host := strings.TrimPrefix(strings.TrimPrefix(cfg.Host, "https://"), "http://")
	dsn := fmt.Sprintf("token:%s@%s%s", cfg.Token, strings.TrimSuffix(host, "/"), settings.HTTPPath)

	params := url.Values{}
	if settings.Catalog != "" {
		params.Set("catalog", settings.Catalog)
	}
	if settings.Schema != "" {
		params.Set("schema", settings.Schema)
	}
	if qp := params.Encode(); qp != "" {
		dsn = dsn + "?" + qp
	}
	return dsn, nil
}

func snowflakeDSN(profilePath string) (string, error) {
	if profilePath == "" {
		return "", fmt.Errorf("snowflake requires a dsn or a profile file")
	}

	v := viper.New()
	v.SetConfigFile(profilePath)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("failed to read snowflake profile: %w", err)
	}

	var cfg sf.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return "", fmt.Errorf("failed to parse snowflake profile: %w", err)
	}

	dsn, err := sf.DSN(&cfg)
	if err != nil {
		return "", fmt.Errorf("build snowflake dsn: %w", err)
	}
	return dsn, nil
}
