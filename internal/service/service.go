package service

import (
	"context"
	"io"
	"time"

	"storewatch/internal/cache"
	"storewatch/internal/logger"
	"storewatch/internal/models"
	"storewatch/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Reports owns the report-run lifecycle: Prepare creates a PENDING run
// and returns immediately; Generate performs the reconciliation for a
// fixed asOf instant and moves the run to READY or FAILED; Result is the
// read side. Generate is not safe to call twice concurrently for the
// same run id; the dispatcher guarantees a single invocation per run.
type Reports interface {
	Prepare(ctx context.Context) (string, error)
	Generate(ctx context.Context, reportID string, asOf time.Time) error
	Result(ctx context.Context, reportID string) (*ReportResult, error)
}

// StoreCatalog exposes the read-mostly store list, cache-backed.
type StoreCatalog interface {
	List(ctx context.Context, limit int) ([]models.Store, error)
}

// Sampler runs the background polling loop that appends synthetic
// activity observations. Stop via context cancellation in main().
type Sampler interface {
	Run(ctx context.Context, tick time.Duration)
}

// Ingest loads bulk historical CSV data. Each loader returns the number
// of data rows ingested.
type Ingest interface {
	LoadStores(ctx context.Context, r io.Reader) (int, error)
	LoadBusinessHours(ctx context.Context, r io.Reader) (int, error)
	LoadStatuses(ctx context.Context, r io.Reader) (int, error)
}

// Config carries the service-level tuning knobs resolved from viper in
// the composition root.
type Config struct {
	SigningKey string
	TokenTTL   time.Duration

	ReportBatchSize int
	ReportWorkers   int
	StoreLimit      int
	QueueSize       int

	SamplerBatchSize int

	// AsOf pins report "now" to a fixed instant for replayed datasets.
	// Zero means wall clock at enqueue time.
	AsOf time.Time
}

// Service aggregates all sub-services.
type Service struct {
	Reports
	StoreCatalog
	Sampler
	Ingest
	Authorization

	Dispatcher *ReportDispatcher
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, storeCache *cache.StoreCache, log *logger.Logger, cfg Config) *Service {
	catalog := NewStoreCatalogService(repos.Stores, storeCache)
	reports := NewReportService(repos, catalog, log, cfg)
	return &Service{
		Reports:       reports,
		StoreCatalog:  catalog,
		Sampler:       NewSamplerService(catalog, repos.BusinessHours, repos.Statuses, log, cfg),
		Ingest:        NewIngestService(repos, storeCache, log),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey, cfg.TokenTTL),
		Dispatcher:    NewReportDispatcher(reports, log, cfg),
	}
}
