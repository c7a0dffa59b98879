package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storewatch/internal/models"
)

type ReportSQLite struct {
	db *sql.DB
}

func NewReportSQLite(db *sql.DB) *ReportSQLite { return &ReportSQLite{db: db} }

var _ ReportRepo = (*ReportSQLite)(nil)

const (
	insertReportSQL = `
		INSERT INTO reports (id, status, requested_at) VALUES (?, ?, ?)`
	selectReportSQL = `
		SELECT id, status, requested_at, generated_at FROM reports WHERE id = ?`
	updateReportStatusSQL = `
		UPDATE reports SET status = ?, generated_at = ? WHERE id = ?`
	insertReportItemSQL = `
		INSERT INTO report_items (
			report_id, store_id,
			uptime_last_hour, uptime_last_day, uptime_last_week,
			downtime_last_hour, downtime_last_day, downtime_last_week
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	listReportItemsSQL = `
		SELECT report_id, store_id,
			uptime_last_hour, uptime_last_day, uptime_last_week,
			downtime_last_hour, downtime_last_day, downtime_last_week
		FROM report_items WHERE report_id = ? ORDER BY store_id`
)

// Create inserts a new run row.
func (r *ReportSQLite) Create(ctx context.Context, rep models.Report) error {
	_, err := r.db.ExecContext(ctx, insertReportSQL,
		rep.ID, rep.Status, rep.RequestedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("insert report %s: %w", rep.ID, err)
	}
	return nil
}

// GetByID fetches a run. Returns (nil, nil) if not found.
func (r *ReportSQLite) GetByID(ctx context.Context, reportID string) (*models.Report, error) {
	var (
		rep       models.Report
		generated sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, selectReportSQL, reportID).
		Scan(&rep.ID, &rep.Status, &rep.RequestedAt, &generated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select report %s: %w", reportID, err)
	}
	rep.RequestedAt = rep.RequestedAt.UTC()
	if generated.Valid {
		t := generated.Time.UTC()
		rep.GeneratedAt = &t
	}
	return &rep, nil
}

// UpdateStatus moves a run to a new status, optionally stamping
// generated_at. Terminal states are never moved again by callers.
func (r *ReportSQLite) UpdateStatus(ctx context.Context, reportID, status string, generatedAt *time.Time) error {
	var stamp any
	if generatedAt != nil {
		stamp = generatedAt.UTC().Format(sqliteTimeLayout)
	}
	res, err := r.db.ExecContext(ctx, updateReportStatusSQL, status, stamp, reportID)
	if err != nil {
		return fmt.Errorf("update report %s status: %w", reportID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update report %s status: %w", reportID, sql.ErrNoRows)
	}
	return nil
}

// SaveItems persists one batch of result rows in a single transaction.
func (r *ReportSQLite) SaveItems(ctx context.Context, items []models.ReportItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report items batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		_, err := tx.ExecContext(ctx, insertReportItemSQL,
			it.ReportID, it.StoreID,
			it.UptimeLastHour, it.UptimeLastDay, it.UptimeLastWeek,
			it.DowntimeLastHour, it.DowntimeLastDay, it.DowntimeLastWeek)
		if err != nil {
			return fmt.Errorf("insert report item for store %d: %w", it.StoreID, err)
		}
	}
	return tx.Commit()
}

// ListItems returns a run's rows ordered by store id.
func (r *ReportSQLite) ListItems(ctx context.Context, reportID string) ([]models.ReportItem, error) {
	rows, err := r.db.QueryContext(ctx, listReportItemsSQL, reportID)
	if err != nil {
		return nil, fmt.Errorf("list report items for %s: %w", reportID, err)
	}
	defer rows.Close()

	out := make([]models.ReportItem, 0, 256)
	for rows.Next() {
		var it models.ReportItem
		err := rows.Scan(&it.ReportID, &it.StoreID,
			&it.UptimeLastHour, &it.UptimeLastDay, &it.UptimeLastWeek,
			&it.DowntimeLastHour, &it.DowntimeLastDay, &it.DowntimeLastWeek)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
