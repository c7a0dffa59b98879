package repository

import (
	"context"
	"database/sql"
	"time"

	"storewatch/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// StoreRepo manages the store catalog. EnsureExists is the single-writer
// path for auto-creating stores discovered during ingestion; it must be
// called before any parallel work references the store.
type StoreRepo interface {
	UpsertBatch(ctx context.Context, stores []models.Store) error
	EnsureExists(ctx context.Context, storeID int64, defaultTimezone string) error
	GetByID(ctx context.Context, storeID int64) (*models.Store, error)
	List(ctx context.Context, limit int) ([]models.Store, error)
}

type BusinessHourRepo interface {
	ReplaceBatch(ctx context.Context, hours []models.BusinessHour) error
	ListByStore(ctx context.Context, storeID int64) ([]models.BusinessHour, error)
}

// StatusRepo is the append-only observation series. ListRange returns
// samples within [from, to] inclusive, ascending by timestamp.
type StatusRepo interface {
	AppendBatch(ctx context.Context, statuses []models.StoreStatus) error
	ListRange(ctx context.Context, storeID int64, from, to time.Time) ([]models.StoreStatus, error)
}

type ReportRepo interface {
	Create(ctx context.Context, r models.Report) error
	GetByID(ctx context.Context, reportID string) (*models.Report, error)
	UpdateStatus(ctx context.Context, reportID, status string, generatedAt *time.Time) error
	SaveItems(ctx context.Context, items []models.ReportItem) error
	ListItems(ctx context.Context, reportID string) ([]models.ReportItem, error)
}

type Repository struct {
	Stores        StoreRepo
	BusinessHours BusinessHourRepo
	Statuses      StatusRepo
	Reports       ReportRepo
	Auth          Authorization
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		Stores:        NewStoreSQLite(conn),
		BusinessHours: NewBusinessHourSQLite(conn),
		Statuses:      NewStatusSQLite(conn),
		Reports:       NewReportSQLite(conn),
		Auth:          NewUserRepository(conn),
	}
}
