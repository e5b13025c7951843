package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// nullString stores empty strings as NULL, required for optional UUID references.
func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

// stringArray writes a text[] value, never NULL.
func stringArray(values []string) any {
	if values == nil {
		values = []string{}
	}

	return pq.Array(values)
}

func newID(entity string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate %s ID: %w", entity, err)
	}

	return id.String(), nil
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, logger *slog.Logger, scan func(rowScanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer closeRows(ctx, logger, rows)

	items := make([]*T, 0)

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}
