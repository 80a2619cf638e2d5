package source

import (
	"context"
	"fmt"

	"account-audit/core/database"
	"account-audit/core/utils"

	"gorm.io/gorm"
)

// Row is one raw (identifier, payload) pair as stored.
type Row struct {
	ID      string
	Payload string
}

// StoreAccessError is returned when a store cannot be opened or read.
type StoreAccessError struct {
	// Store is the store path or name.
	Store string
	// Err is the underlying cause.
	Err error
}

func (e *StoreAccessError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Store, e.Err)
}

func (e *StoreAccessError) Unwrap() error {
	return e.Err
}

// LoadRows reads every account row of table in store order.
// Columns go through utils.ToString so TEXT, BLOB and NULL all read as strings.
func LoadRows(ctx context.Context, db *gorm.DB, table string) ([]Row, error) {
	rows, err := db.WithContext(ctx).Table(table).Select("accountId", "data").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var id, payload any
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		out = append(out, Row{ID: utils.ToString(id), Payload: utils.ToString(payload)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return out, nil
}

// ReadStore connects with cfg, reads table and closes the connection.
// Any failure is a *StoreAccessError naming cfg.Name.
func ReadStore(ctx context.Context, cfg database.Config, table string) ([]Row, error) {
	db, err := database.ConnectContext(ctx, cfg)
	if err != nil {
		return nil, &StoreAccessError{Store: cfg.Name, Err: err}
	}
	defer database.Close(db)

	rows, err := LoadRows(ctx, db, table)
	if err != nil {
		return nil, &StoreAccessError{Store: cfg.Name, Err: err}
	}
	return rows, nil
}
