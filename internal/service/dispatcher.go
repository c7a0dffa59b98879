package service

import (
	"context"
	"errors"
	"time"

	"storewatch/internal/logger"
)

const defaultQueueSize = 16

// ErrQueueFull is returned by Enqueue when the job queue is saturated.
var ErrQueueFull = errors.New("report queue is full")

type reportJob struct {
	reportID string
	asOf     time.Time
}

// ReportDispatcher is the explicit job queue between the trigger request
// and background generation: enqueue returns immediately, a single
// consumer goroutine invokes Generate exactly once per enqueued run id.
type ReportDispatcher struct {
	jobs    chan reportJob
	reports Reports
	log     *logger.Logger

	// fixedAsOf pins report "now" for replayed datasets; zero means
	// wall clock at enqueue time.
	fixedAsOf time.Time
}

func NewReportDispatcher(reports Reports, log *logger.Logger, cfg Config) *ReportDispatcher {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	return &ReportDispatcher{
		jobs:      make(chan reportJob, size),
		reports:   reports,
		log:       log,
		fixedAsOf: cfg.AsOf,
	}
}

// Enqueue hands a PENDING run off for background generation without
// blocking. The asOf instant is resolved here so that the run's windows
// are fixed at request time, not at dequeue time.
func (d *ReportDispatcher) Enqueue(reportID string) error {
	asOf := d.fixedAsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	select {
	case d.jobs <- reportJob{reportID: reportID, asOf: asOf}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run consumes jobs until ctx is canceled. Generation errors are already
// reflected in the run's FAILED status; they are logged here, never
// propagated.
func (d *ReportDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.jobs:
			started := time.Now()
			if err := d.reports.Generate(ctx, job.reportID, job.asOf); err != nil {
				d.log.Errorw("report_generation_failed",
					"report_id", job.reportID, "as_of", job.asOf, "err", err)
				continue
			}
			d.log.Infow("report_ready",
				"report_id", job.reportID, "as_of", job.asOf,
				"took", time.Since(started).String())
		}
	}
}
