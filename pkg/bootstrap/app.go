package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/maritime-atlas/pkg/services/aggregation"
	"github.com/de-tools/maritime-atlas/pkg/services/config"
	"github.com/de-tools/maritime-atlas/pkg/services/registry"
	"github.com/de-tools/maritime-atlas/pkg/services/render"
	"github.com/de-tools/maritime-atlas/pkg/services/report"
	"github.com/de-tools/maritime-atlas/pkg/store/artifacts"
	"github.com/de-tools/maritime-atlas/pkg/store/cache"
	"github.com/de-tools/maritime-atlas/pkg/store/duckdb"
	"github.com/de-tools/maritime-atlas/pkg/store/duckdb/exports"
	"github.com/de-tools/maritime-atlas/pkg/store/records"
	storesql "github.com/de-tools/maritime-atlas/pkg/store/sql"
	"github.com/rs/zerolog"
)

// App holds the wired report pipeline shared by the web server and the CLI.
type App struct {
	Config    *config.Config
	Registry  registry.Registry
	Assembler report.Assembler
	History   exports.Store

	db        *sql.DB
	historyDB *sql.DB
}

func NewLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := zerolog.Ctx(ctx)

	db, dialect, err := records.Open(records.Settings{
		Driver:      cfg.Database.Driver,
		DSN:         cfg.Database.DSN,
		DbPath:      cfg.Database.Path,
		Profile:     cfg.Database.Profile,
		ProfilePath: cfg.Database.ProfilePath,
		HTTPPath:    cfg.Database.HTTPPath,
		Catalog:     cfg.Database.Catalog,
		Schema:      cfg.Database.Schema,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open records database: %w", err)
	}

	app, err := wire(ctx, cfg, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info().
		Str("driver", string(dialect)).
		Int("categories", len(app.Registry.Categories())).
		Int("zones", len(app.Registry.Zones())).
		Msg("report pipeline ready")
	return app, nil
}

func wire(ctx context.Context, cfg *config.Config, db *sql.DB, dialect storesql.Dialect) (*App, error) {
	source, err := records.NewSource(db, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to create records source: %w", err)
	}

	zones := registry.DefaultZones()
	if cfg.Registry.ZonesFile != "" {
		if zones, err = registry.LoadZones(cfg.Registry.ZonesFile); err != nil {
			return nil, fmt.Errorf("failed to load zones: %w", err)
		}
	}

	reg, err := registry.NewRegistry(source, zones)
	if err != nil {
		return nil, fmt.Errorf("failed to create category registry: %w", err)
	}
	if err := reg.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize category registry: %w", err)
	}

	engine, err := aggregation.NewEngine(source, records.NewLabelLookup(db))
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregation engine: %w", err)
	}

	renderer := render.NewRenderer(render.Settings{
		BaseURL: cfg.Charts.BaseURL,
		Timeout: cfg.Charts.Timeout,
	})
	reportCache := cache.NewReportCache(cache.Settings{
		TTL:  cfg.Cache.TTL,
		Size: cfg.Cache.Size,
	})

	assembler, err := report.NewAssembler(reg, engine, renderer, reportCache)
	if err != nil {
		return nil, fmt.Errorf("failed to create report assembler: %w", err)
	}

	app := &App{
		Config:    cfg,
		Registry:  reg,
		Assembler: assembler,
		db:        db,
	}

	// The embedded records database also holds the export history.
	historyDB := db
	if dialect != storesql.DialectDuckDB {
		if historyDB, err = duckdb.NewDB(duckdb.Settings{DbPath: cfg.Export.HistoryPath}); err != nil {
			return nil, fmt.Errorf("failed to open export history: %w", err)
		}
		app.historyDB = historyDB
	}
	if app.History, err = exports.NewStore(historyDB); err != nil {
		_ = app.closeHistory()
		return nil, fmt.Errorf("failed to create export history: %w", err)
	}

	return app, nil
}

func (a *App) closeHistory() error {
	if a.historyDB == nil {
		return nil
	}
	return a.historyDB.Close()
}

func (a *App) Close() error {
	return errors.Join(a.closeHistory(), a.db.Close())
}

// NewSink returns the configured destination of exported documents.
func NewSink(ctx context.Context, cfg config.ExportConfig) (artifacts.Sink, error) {
	switch cfg.Sink {
	case "s3":
		return artifacts.NewS3SinkFromConfig(ctx, artifacts.S3Settings{
			Bucket:  cfg.S3Bucket,
			Prefix:  cfg.S3Prefix,
			Profile: cfg.Profile,
			Region:  cfg.Region,
		})
	case "local", "":
		return artifacts.NewLocalSink(cfg.Dir)
	default:
		return nil, fmt.Errorf("unsupported export sink: %s", cfg.Sink)
	}
}
