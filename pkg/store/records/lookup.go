package records

import (
	"context"
	"database/sql"
	"fmt"
)

// LabelLookup resolves the identifiers of a reference table to display names.
type LabelLookup interface {
	Names(ctx context.Context, table string) (map[string]string, error)
}

type tableLookup struct {
	db *sql.DB
}

// NewLabelLookup reads `id, name` pairs from reference tables. Table names
// come from the category registry, never from user input.
func NewLabelLookup(db *sql.DB) LabelLookup {
	return &tableLookup{db: db}
}

func (l *tableLookup) Names(ctx context.Context, table string) (map[string]string, error) {
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf("SELECT id, name FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("load labels from %s: %w", table, err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id string
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan label row: %w", err)
		}
		if name.Valid && name.String != "" {
			names[id] = name.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labels of %s: %w", table, err)
	}
	return names, nil
}
