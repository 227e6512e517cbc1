package exports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/maritime-atlas/pkg/models/store"
)

const DefaultLimit = 20

// Store keeps the history of exported report documents.
type Store interface {
	Add(ctx context.Context, record store.ExportRecord) error
	// List returns the most recent exports first.
	List(ctx context.Context, limit int) ([]store.ExportRecord, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) Add(ctx context.Context, record store.ExportRecord) error {
	query := `
		INSERT INTO report_exports (
			fingerprint, summary, file_name, location, charts, exported_at
		) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		record.Fingerprint,
		record.Summary,
		record.FileName,
		record.Location,
		record.Charts,
		record.ExportedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

func (s *defaultStore) List(ctx context.Context, limit int) ([]store.ExportRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
		SELECT fingerprint, summary, file_name, location, charts, exported_at
		FROM report_exports
		ORDER BY exported_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	records := []store.ExportRecord{}
	for rows.Next() {
		var r store.ExportRecord
		if err := rows.Scan(&r.Fingerprint, &r.Summary, &r.FileName, &r.Location, &r.Charts, &r.ExportedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return records, nil
}
