package service

import (
	"context"
	"math/rand/v2"
	"time"

	"storewatch/internal/logger"
	"storewatch/internal/models"
	"storewatch/internal/repository"
)

const defaultSamplerBatchSize = 1000

// SamplerService is the periodic poller that appends a synthetic
// activity observation for every store currently inside its business
// hours. It runs independently of report generation and only ever
// appends; the reconciler reads a consistent snapshot per run.
type SamplerService struct {
	catalog  StoreCatalog
	hours    repository.BusinessHourRepo
	statuses repository.StatusRepo
	log      *logger.Logger

	storeLimit int
	batchSize  int

	// chooseStatus is swappable in tests; default flips a fair coin,
	// standing in for a real probe.
	chooseStatus func() string
}

func NewSamplerService(catalog StoreCatalog, hours repository.BusinessHourRepo, statuses repository.StatusRepo, log *logger.Logger, cfg Config) *SamplerService {
	limit := cfg.StoreLimit
	if limit <= 0 {
		limit = defaultStoreLimit
	}
	batch := cfg.SamplerBatchSize
	if batch <= 0 {
		batch = defaultSamplerBatchSize
	}
	return &SamplerService{
		catalog:    catalog,
		hours:      hours,
		statuses:   statuses,
		log:        log,
		storeLimit: limit,
		batchSize:  batch,
		chooseStatus: func() string {
			if rand.IntN(2) == 0 {
				return models.StatusActive
			}
			return models.StatusInactive
		},
	}
}

var _ Sampler = (*SamplerService)(nil)

// Run ticks at the given interval until ctx is canceled.
func (s *SamplerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			count, err := s.sampleOnce(ctx, now.UTC())
			if err != nil {
				s.log.Errorw("sampler_tick_failed", "err", err)
				continue
			}
			s.log.Infow("sampler_tick", "observations", count)
		}
	}
}

// sampleOnce appends one observation per in-hours store, batching
// inserts. Returns the number of observations written.
func (s *SamplerService) sampleOnce(ctx context.Context, now time.Time) (int, error) {
	stores, err := s.catalog.List(ctx, s.storeLimit)
	if err != nil {
		return 0, err
	}

	total := 0
	batch := make([]models.StoreStatus, 0, s.batchSize)
	for _, store := range stores {
		hours, err := s.hours.ListByStore(ctx, store.ID)
		if err != nil {
			return total, err
		}
		sched := models.NewWeeklySchedule(hours)
		if !withinBusinessHours(sched, store.Location(), now) {
			continue
		}
		batch = append(batch, models.StoreStatus{
			StoreID:   store.ID,
			Timestamp: now,
			Status:    s.chooseStatus(),
		})
		if len(batch) >= s.batchSize {
			if err := s.statuses.AppendBatch(ctx, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.statuses.AppendBatch(ctx, batch); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// withinBusinessHours reports whether the instant falls inside the
// store's open interval, checking both today's interval and yesterday's
// in case that one crosses midnight into today.
func withinBusinessHours(sched models.WeeklySchedule, loc *time.Location, now time.Time) bool {
	local := now.In(loc)

	if day := local; insideDayInterval(sched, loc, day, local) {
		return true
	}
	return insideDayInterval(sched, loc, local.AddDate(0, 0, -1), local)
}

// insideDayInterval checks the interval anchored on day's calendar date
// against the instant at.
func insideDayInterval(sched models.WeeklySchedule, loc *time.Location, day, at time.Time) bool {
	y, m, d := day.Date()
	startWC, endWC := sched.HoursFor(models.MondayIndex(day.Weekday()))

	open := startWC.On(y, m, d, loc)
	close := endWC.On(y, m, d, loc)
	if !close.After(open) {
		close = endWC.On(y, m, d+1, loc)
	}
	return !at.Before(open) && !at.After(close)
}
