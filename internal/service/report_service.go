package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storewatch/internal/logger"
	"storewatch/internal/models"
	"storewatch/internal/repository"
)

// Rolling windows computed per store, all ending at asOf.
const (
	windowHour = time.Hour
	windowDay  = 24 * time.Hour
	windowWeek = 7 * 24 * time.Hour
)

const (
	defaultReportBatchSize = 1000
	defaultReportWorkers   = 4
	defaultStoreLimit      = 20000
)

// ErrReportNotFound is returned by Result for unknown run ids.
var ErrReportNotFound = errors.New("report not found")

// Run states surfaced by Result.
const (
	ResultRunning = "running"
	ResultFailed  = "failed"
	ResultReady   = "ready"
)

// ReportResult is the read-side view of a run. Items is populated only
// when State is ResultReady.
type ReportResult struct {
	ReportID string
	State    string
	Items    []models.ReportItem
}

type ReportService struct {
	reports  repository.ReportRepo
	hours    repository.BusinessHourRepo
	statuses repository.StatusRepo
	catalog  StoreCatalog
	log      *logger.Logger

	batchSize  int
	workers    int
	storeLimit int
}

func NewReportService(repos *repository.Repository, catalog StoreCatalog, log *logger.Logger, cfg Config) *ReportService {
	batch := cfg.ReportBatchSize
	if batch <= 0 {
		batch = defaultReportBatchSize
	}
	workers := cfg.ReportWorkers
	if workers <= 0 {
		workers = defaultReportWorkers
	}
	limit := cfg.StoreLimit
	if limit <= 0 {
		limit = defaultStoreLimit
	}
	return &ReportService{
		reports:    repos.Reports,
		hours:      repos.BusinessHours,
		statuses:   repos.Statuses,
		catalog:    catalog,
		log:        log,
		batchSize:  batch,
		workers:    workers,
		storeLimit: limit,
	}
}

var _ Reports = (*ReportService)(nil)

// Prepare creates a PENDING run and returns its id without blocking on
// generation.
func (s *ReportService) Prepare(ctx context.Context) (string, error) {
	rep := models.Report{
		ID:          uuid.NewString(),
		Status:      models.ReportPending,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return "", err
	}
	return rep.ID, nil
}

// Generate computes rows for every store as of the given instant and
// moves the run to READY, or to FAILED on any error. All-or-nothing: a
// single store's failure aborts the whole run so no partial rows are
// trusted.
func (s *ReportService) Generate(ctx context.Context, reportID string, asOf time.Time) error {
	if err := s.generate(ctx, reportID, asOf); err != nil {
		// The FAILED write must land even when ctx was canceled mid-run
		// (shutdown), or the run would stay PENDING and read as running
		// forever.
		failCtx := context.WithoutCancel(ctx)
		if uerr := s.reports.UpdateStatus(failCtx, reportID, models.ReportFailed, nil); uerr != nil {
			s.log.Errorw("report_mark_failed_error", "report_id", reportID, "err", uerr)
		}
		return err
	}
	now := time.Now().UTC()
	return s.reports.UpdateStatus(ctx, reportID, models.ReportReady, &now)
}

func (s *ReportService) generate(ctx context.Context, reportID string, asOf time.Time) error {
	asOf = asOf.UTC()

	stores, err := s.catalog.List(ctx, s.storeLimit)
	if err != nil {
		return fmt.Errorf("list stores: %w", err)
	}

	for start := 0; start < len(stores); start += s.batchSize {
		end := start + s.batchSize
		if end > len(stores) {
			end = len(stores)
		}
		items, err := s.reconcileBatch(ctx, stores[start:end], reportID, asOf)
		if err != nil {
			return err
		}
		if err := s.reports.SaveItems(ctx, items); err != nil {
			return fmt.Errorf("save report items: %w", err)
		}
	}
	return nil
}

// reconcileBatch fans one batch of stores out to a bounded worker pool.
// Each worker gets its own read-only schedule/observation snapshot; rows
// are merged only after every worker has finished.
func (s *ReportService) reconcileBatch(ctx context.Context, stores []models.Store, reportID string, asOf time.Time) ([]models.ReportItem, error) {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
		items    = make([]models.ReportItem, 0, len(stores))
	)

	jobs := make(chan models.Store)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for store := range jobs {
				if cctx.Err() != nil {
					continue
				}
				item, err := s.reconcileStore(cctx, store, reportID, asOf)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = fmt.Errorf("store %d: %w", store.ID, err)
						cancel()
					}
				} else {
					items = append(items, item)
				}
				mu.Unlock()
			}
		}()
	}
	for _, store := range stores {
		jobs <- store
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(items, func(i, j int) bool { return items[i].StoreID < items[j].StoreID })
	return items, nil
}

// reconcileStore fetches one store's schedule and its last week of
// observations once, then derives the three windows from that slice.
func (s *ReportService) reconcileStore(ctx context.Context, store models.Store, reportID string, asOf time.Time) (models.ReportItem, error) {
	loc := store.Location()

	hours, err := s.hours.ListByStore(ctx, store.ID)
	if err != nil {
		return models.ReportItem{}, fmt.Errorf("load business hours: %w", err)
	}
	sched := models.NewWeeklySchedule(hours)

	observations, err := s.statuses.ListRange(ctx, store.ID, asOf.Add(-windowWeek), asOf)
	if err != nil {
		return models.ReportItem{}, fmt.Errorf("load observations: %w", err)
	}

	item := models.ReportItem{ReportID: reportID, StoreID: store.ID}
	item.UptimeLastHour, item.DowntimeLastHour, _ = reconcileWindow(sched, loc, observations, asOf.Add(-windowHour), asOf)
	item.UptimeLastDay, item.DowntimeLastDay, _ = reconcileWindow(sched, loc, observations, asOf.Add(-windowDay), asOf)
	item.UptimeLastWeek, item.DowntimeLastWeek, _ = reconcileWindow(sched, loc, observations, asOf.Add(-windowWeek), asOf)
	return item, nil
}

// Result reports a run's state: ErrReportNotFound for unknown ids,
// failed and running are plain indicators, READY carries the rows.
func (s *ReportService) Result(ctx context.Context, reportID string) (*ReportResult, error) {
	rep, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrReportNotFound
	}

	res := &ReportResult{ReportID: reportID}
	switch rep.Status {
	case models.ReportFailed:
		res.State = ResultFailed
	case models.ReportReady:
		res.State = ResultReady
		items, err := s.reports.ListItems(ctx, reportID)
		if err != nil {
			return nil, err
		}
		res.Items = items
	default:
		res.State = ResultRunning
	}
	return res, nil
}
