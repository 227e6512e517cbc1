package records

import (
	"context"
	"database/sql"
	"fmt"

	storesql "github.com/de-tools/maritime-atlas/pkg/store/sql"
)

// Source is the read-only query capability the aggregation engine runs on.
type Source interface {
	Query(ctx context.Context, q storesql.Query) (*sql.Rows, error)
	QueryRow(ctx context.Context, q storesql.Query) *sql.Row
	TableExists(ctx context.Context, table string) (bool, error)
	Dialect() storesql.Dialect
}

type dbSource struct {
	db      *sql.DB
	dialect storesql.Dialect
}

func NewSource(db *sql.DB, dialect storesql.Dialect) (Source, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &dbSource{db: db, dialect: dialect}, nil
}

func (s *dbSource) Query(ctx context.Context, q storesql.Query) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, storesql.Rebind(s.dialect, q.Text), q.Args...)
}

func (s *dbSource) QueryRow(ctx context.Context, q storesql.Query) *sql.Row {
	return s.db.QueryRowContext(ctx, storesql.Rebind(s.dialect, q.Text), q.Args...)
}

func (s *dbSource) TableExists(ctx context.Context, table string) (bool, error) {
	var n int64
	if err := s.QueryRow(ctx, storesql.TableExists(table)).Scan(&n); err != nil {
		return false, fmt.Errorf("probe table %s: %w", table, err)
	}
	return n > 0, nil
}

func (s *dbSource) Dialect() storesql.Dialect {
	return s.dialect
}
