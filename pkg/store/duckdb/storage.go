package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReferenceTablesSchema = `
	CREATE TABLE IF NOT EXISTS event_types (
		id INTEGER PRIMARY KEY,
		name VARCHAR NOT NULL
	);
	CREATE TABLE IF NOT EXISTS event_causes (
		id INTEGER PRIMARY KEY,
		name VARCHAR NOT NULL
	);
	CREATE TABLE IF NOT EXISTS regions (
		id INTEGER PRIMARY KEY,
		name VARCHAR NOT NULL
	);
`

const SarReportsSchema = `
	CREATE TABLE IF NOT EXISTS sar_reports (
		id INTEGER PRIMARY KEY,
		event_date DATE NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		event_type_id INTEGER NULL,
		event_cause_id INTEGER NULL,
		region_id INTEGER NULL,
		pob INTEGER,
		survivors INTEGER,
		injured INTEGER,
		dead INTEGER,
		missing INTEGER,
		medevac INTEGER
	);
`

const VesselsSchema = `
	CREATE TABLE IF NOT EXISTS fishing_vessels (
		id INTEGER PRIMARY KEY,
		vessel_name VARCHAR,
		flag VARCHAR,
		time_of_fix TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS eez_vessels (
		id INTEGER PRIMARY KEY,
		vessel_name VARCHAR,
		ship_type VARCHAR,
		flag VARCHAR,
		time_of_fix TIMESTAMP NOT NULL
	);
`

const TrafficSchema = `
	CREATE TABLE IF NOT EXISTS coastal_traffic (
		id INTEGER PRIMARY KEY,
		origin VARCHAR,
		vessel_name VARCHAR,
		crew INTEGER,
		passengers INTEGER,
		traffic_date DATE NOT NULL
	);
	CREATE TABLE IF NOT EXISTS patrol_sorties (
		id INTEGER PRIMARY KEY,
		patrol_boat VARCHAR,
		persons_assisted INTEGER,
		sortie_date DATE NOT NULL
	);
`

const ExportsSchema = `
	CREATE TABLE IF NOT EXISTS report_exports (
		fingerprint VARCHAR NOT NULL,
		summary VARCHAR NOT NULL,
		file_name VARCHAR NOT NULL,
		location VARCHAR NOT NULL,
		charts INTEGER NOT NULL,
		exported_at TIMESTAMP NOT NULL
	);
`

// Zone tables are provisioned by the ingestion side; the registry only
// registers the ones it finds.
var bootQueries = []string{
	ReferenceTablesSchema,
	SarReportsSchema,
	VesselsSchema,
	TrafficSchema,
	ExportsSchema,
}

type Settings struct {
	DbPath string
	// Threads bounds DuckDB's worker threads, 4 when unset.
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return fmt.Errorf("boot schema: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}
