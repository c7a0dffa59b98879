package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"storewatch/internal/cache"
	"storewatch/internal/logger"
	"storewatch/internal/models"
	"storewatch/internal/repository"
)

const ingestBatchSize = 1000

// Source timestamp layouts, with and without fractional seconds.
var statusTimestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// IngestService loads bulk historical CSV data: the store catalog,
// weekly business hours, and the observation backlog. Unknown store ids
// referenced by hours or observations are auto-created with the default
// timezone through the single-writer EnsureExists path.
type IngestService struct {
	stores   repository.StoreRepo
	hours    repository.BusinessHourRepo
	statuses repository.StatusRepo
	cache    *cache.StoreCache
	log      *logger.Logger
}

func NewIngestService(repos *repository.Repository, storeCache *cache.StoreCache, log *logger.Logger) *IngestService {
	return &IngestService{
		stores:   repos.Stores,
		hours:    repos.BusinessHours,
		statuses: repos.Statuses,
		cache:    storeCache,
		log:      log,
	}
}

var _ Ingest = (*IngestService)(nil)

// LoadStores ingests rows of (store_id, timezone_str). Unknown timezone
// names are replaced with the default zone rather than rejected.
func (s *IngestService) LoadStores(ctx context.Context, r io.Reader) (int, error) {
	cols, records, err := newCSVReader(r, "store_id", "timezone_str")
	if err != nil {
		return 0, err
	}

	count := 0
	batch := make([]models.Store, 0, ingestBatchSize)
	flush := func() error {
		if err := s.stores.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := records()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}
		storeID, err := strconv.ParseInt(rec[cols["store_id"]], 10, 64)
		if err != nil {
			return count, fmt.Errorf("bad store_id %q: %w", rec[cols["store_id"]], err)
		}
		tz := strings.TrimSpace(rec[cols["timezone_str"]])
		if tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				s.log.Warnw("unknown_timezone_defaulted", "store_id", storeID, "timezone", tz)
				tz = models.DefaultTimezone
			}
		}
		batch = append(batch, models.Store{ID: storeID, Timezone: tz})
		if len(batch) >= ingestBatchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	if err := flush(); err != nil {
		return count, err
	}

	s.cache.Invalidate(ctx)
	return count, nil
}

// LoadBusinessHours ingests rows of (store_id, day, start_time_local,
// end_time_local). Blank times default to 00:00:00 / 23:59:59.
func (s *IngestService) LoadBusinessHours(ctx context.Context, r io.Reader) (int, error) {
	cols, records, err := newCSVReader(r, "store_id", "day", "start_time_local", "end_time_local")
	if err != nil {
		return 0, err
	}

	count := 0
	seen := make(map[int64]struct{})
	batch := make([]models.BusinessHour, 0, ingestBatchSize)
	flush := func() error {
		if err := s.hours.ReplaceBatch(ctx, batch); err != nil {
			return err
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := records()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}
		storeID, err := strconv.ParseInt(rec[cols["store_id"]], 10, 64)
		if err != nil {
			return count, fmt.Errorf("bad store_id %q: %w", rec[cols["store_id"]], err)
		}
		day, err := strconv.Atoi(rec[cols["day"]])
		if err != nil || day < models.Monday || day > models.Sunday {
			return count, fmt.Errorf("bad day %q for store %d", rec[cols["day"]], storeID)
		}

		if err := s.ensureStore(ctx, seen, storeID); err != nil {
			return count, err
		}

		start, err := wallClockOrDefault(rec[cols["start_time_local"]], models.WallClock{})
		if err != nil {
			return count, fmt.Errorf("store %d day %d: %w", storeID, day, err)
		}
		end, err := wallClockOrDefault(rec[cols["end_time_local"]], models.WallClock{Hour: 23, Minute: 59, Second: 59})
		if err != nil {
			return count, fmt.Errorf("store %d day %d: %w", storeID, day, err)
		}

		batch = append(batch, models.BusinessHour{StoreID: storeID, Day: day, Start: start, End: end})
		if len(batch) >= ingestBatchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	return count, flush()
}

// LoadStatuses ingests rows of (store_id, status, timestamp_utc).
func (s *IngestService) LoadStatuses(ctx context.Context, r io.Reader) (int, error) {
	cols, records, err := newCSVReader(r, "store_id", "status", "timestamp_utc")
	if err != nil {
		return 0, err
	}

	count := 0
	seen := make(map[int64]struct{})
	batch := make([]models.StoreStatus, 0, ingestBatchSize)
	flush := func() error {
		if err := s.statuses.AppendBatch(ctx, batch); err != nil {
			return err
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := records()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}
		storeID, err := strconv.ParseInt(rec[cols["store_id"]], 10, 64)
		if err != nil {
			return count, fmt.Errorf("bad store_id %q: %w", rec[cols["store_id"]], err)
		}
		ts, err := parseStatusTimestamp(rec[cols["timestamp_utc"]])
		if err != nil {
			return count, fmt.Errorf("store %d: %w", storeID, err)
		}
		status := strings.ToLower(strings.TrimSpace(rec[cols["status"]]))
		if status != models.StatusActive && status != models.StatusInactive {
			return count, fmt.Errorf("store %d: bad status %q", storeID, rec[cols["status"]])
		}

		if err := s.ensureStore(ctx, seen, storeID); err != nil {
			return count, err
		}

		batch = append(batch, models.StoreStatus{StoreID: storeID, Timestamp: ts, Status: status})
		if len(batch) >= ingestBatchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	return count, flush()
}

// ensureStore auto-creates referenced stores once per load, before any
// dependent rows are written.
func (s *IngestService) ensureStore(ctx context.Context, seen map[int64]struct{}, storeID int64) error {
	if _, ok := seen[storeID]; ok {
		return nil
	}
	if err := s.stores.EnsureExists(ctx, storeID, models.DefaultTimezone); err != nil {
		return err
	}
	seen[storeID] = struct{}{}
	return nil
}

// newCSVReader reads the header row and resolves the required column
// indices; returns a record iterator for the remaining rows.
func newCSVReader(r io.Reader, required ...string) (map[string]int, func() ([]string, error), error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("csv header missing column %q", name)
		}
	}
	return cols, cr.Read, nil
}

func wallClockOrDefault(s string, def models.WallClock) (models.WallClock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return models.ParseWallClock(s)
}

func parseStatusTimestamp(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), " UTC")
	for _, layout := range statusTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
