package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storewatch/internal/models"
)

type StatusSQLite struct {
	db *sql.DB
}

func NewStatusSQLite(db *sql.DB) *StatusSQLite { return &StatusSQLite{db: db} }

var _ StatusRepo = (*StatusSQLite)(nil)

const (
	insertStatusSQL = `
		INSERT INTO store_status (store_id, timestamp, status)
		VALUES (?, ?, ?)`
	listStatusRangeSQL = `
		SELECT store_id, timestamp, status FROM store_status
		WHERE store_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC`
)

// AppendBatch inserts observations in one transaction. Observations are
// immutable once written; there is no update path.
func (r *StatusSQLite) AppendBatch(ctx context.Context, statuses []models.StoreStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, st := range statuses {
		status := strings.ToLower(strings.TrimSpace(st.Status))
		_, err := tx.ExecContext(ctx, insertStatusSQL,
			st.StoreID, st.Timestamp.UTC().Format(sqliteTimeLayout), status)
		if err != nil {
			return fmt.Errorf("insert status for store %d: %w", st.StoreID, err)
		}
	}
	return tx.Commit()
}

// ListRange returns one store's observations within [from, to] inclusive,
// ascending by timestamp.
func (r *StatusSQLite) ListRange(ctx context.Context, storeID int64, from, to time.Time) ([]models.StoreStatus, error) {
	rows, err := r.db.QueryContext(ctx, listStatusRangeSQL,
		storeID, from.UTC().Format(sqliteTimeLayout), to.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("list statuses for store %d: %w", storeID, err)
	}
	defer rows.Close()

	out := make([]models.StoreStatus, 0, 128)
	for rows.Next() {
		var st models.StoreStatus
		if err := rows.Scan(&st.StoreID, &st.Timestamp, &st.Status); err != nil {
			return nil, err
		}
		st.Timestamp = st.Timestamp.UTC()
		out = append(out, st)
	}
	return out, rows.Err()
}
