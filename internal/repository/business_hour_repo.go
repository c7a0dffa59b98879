package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storewatch/internal/models"
)

type BusinessHourSQLite struct {
	db *sql.DB
}

func NewBusinessHourSQLite(db *sql.DB) *BusinessHourSQLite {
	return &BusinessHourSQLite{db: db}
}

var _ BusinessHourRepo = (*BusinessHourSQLite)(nil)

const (
	replaceHoursSQL = `
		INSERT OR REPLACE INTO business_hours (store_id, day_of_week, start_local, end_local)
		VALUES (?, ?, ?, ?)`
	listHoursByStoreSQL = `
		SELECT store_id, day_of_week, start_local, end_local
		FROM business_hours WHERE store_id = ? ORDER BY day_of_week`
)

// ReplaceBatch writes entries in one transaction. A second entry for the
// same (store, weekday) replaces the first; last-wins is the supported
// shape for duplicated configuration.
func (r *BusinessHourSQLite) ReplaceBatch(ctx context.Context, hours []models.BusinessHour) error {
	if len(hours) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin business hours batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, bh := range hours {
		if bh.Day < models.Monday || bh.Day > models.Sunday {
			return fmt.Errorf("business hours for store %d: day %d out of range", bh.StoreID, bh.Day)
		}
		_, err := tx.ExecContext(ctx, replaceHoursSQL,
			bh.StoreID, bh.Day, bh.Start.String(), bh.End.String())
		if err != nil {
			return fmt.Errorf("insert business hours for store %d day %d: %w", bh.StoreID, bh.Day, err)
		}
	}
	return tx.Commit()
}

// ListByStore returns a store's configured entries ordered by weekday.
func (r *BusinessHourSQLite) ListByStore(ctx context.Context, storeID int64) ([]models.BusinessHour, error) {
	rows, err := r.db.QueryContext(ctx, listHoursByStoreSQL, storeID)
	if err != nil {
		return nil, fmt.Errorf("list business hours for store %d: %w", storeID, err)
	}
	defer rows.Close()

	out := make([]models.BusinessHour, 0, 7)
	for rows.Next() {
		var (
			bh         models.BusinessHour
			start, end string
		)
		if err := rows.Scan(&bh.StoreID, &bh.Day, &start, &end); err != nil {
			return nil, err
		}
		if bh.Start, err = models.ParseWallClock(start); err != nil {
			return nil, fmt.Errorf("store %d day %d: %w", bh.StoreID, bh.Day, err)
		}
		if bh.End, err = models.ParseWallClock(end); err != nil {
			return nil, fmt.Errorf("store %d day %d: %w", bh.StoreID, bh.Day, err)
		}
		out = append(out, bh)
	}
	return out, rows.Err()
}
