package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storewatch/internal/models"
)

// sqliteTimeLayout is the TIMESTAMP format written to SQLite.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type StoreSQLite struct {
	db *sql.DB
}

func NewStoreSQLite(db *sql.DB) *StoreSQLite { return &StoreSQLite{db: db} }

var _ StoreRepo = (*StoreSQLite)(nil)

const (
	upsertStoreSQL = `
		INSERT INTO stores (id, timezone, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET timezone = excluded.timezone`
	ensureStoreSQL = `
		INSERT INTO stores (id, timezone, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING`
	selectStoreSQL = `SELECT id, timezone, created_at FROM stores WHERE id = ?`
	listStoresSQL  = `SELECT id, timezone, created_at FROM stores ORDER BY id LIMIT ?`
)

// UpsertBatch inserts or updates stores in a single transaction.
func (r *StoreSQLite) UpsertBatch(ctx context.Context, stores []models.Store) error {
	if len(stores) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, s := range stores {
		tz := s.Timezone
		if tz == "" {
			tz = models.DefaultTimezone
		}
		created := s.CreatedAt
		if created.IsZero() {
			created = now
		}
		if _, err := tx.ExecContext(ctx, upsertStoreSQL, s.ID, tz, created.UTC().Format(sqliteTimeLayout)); err != nil {
			return fmt.Errorf("upsert store %d: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

// EnsureExists creates a store with the default timezone if it is not
// already present. Existing rows are left untouched.
func (r *StoreSQLite) EnsureExists(ctx context.Context, storeID int64, defaultTimezone string) error {
	if defaultTimezone == "" {
		defaultTimezone = models.DefaultTimezone
	}
	now := time.Now().UTC().Format(sqliteTimeLayout)
	if _, err := r.db.ExecContext(ctx, ensureStoreSQL, storeID, defaultTimezone, now); err != nil {
		return fmt.Errorf("ensure store %d: %w", storeID, err)
	}
	return nil
}

// GetByID fetches a store. Returns (nil, nil) if not found.
func (r *StoreSQLite) GetByID(ctx context.Context, storeID int64) (*models.Store, error) {
	var s models.Store
	err := r.db.QueryRowContext(ctx, selectStoreSQL, storeID).Scan(&s.ID, &s.Timezone, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select store %d: %w", storeID, err)
	}
	return &s, nil
}

// List returns up to limit stores ordered by id.
func (r *StoreSQLite) List(ctx context.Context, limit int) ([]models.Store, error) {
	rows, err := r.db.QueryContext(ctx, listStoresSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	out := make([]models.Store, 0, 64)
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Timezone, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
