package service

import (
	"context"
	"testing"
	"time"

	"storewatch/internal/logger"
	"storewatch/internal/models"
)

func TestWithinBusinessHours(t *testing.T) {
	t.Parallel()

	nineToFive := models.NewWeeklySchedule(allDays(
		models.WallClock{Hour: 9}, models.WallClock{Hour: 17},
	))
	overnight := models.NewWeeklySchedule(allDays(
		models.WallClock{Hour: 22}, models.WallClock{Hour: 2},
	))

	tests := []struct {
		name  string
		sched models.WeeklySchedule
		at    time.Time
		want  bool
	}{
		{"inside plain hours", nineToFive, utcAt(0, 12, 0), true},
		{"at open boundary", nineToFive, utcAt(0, 9, 0), true},
		{"at close boundary", nineToFive, utcAt(0, 17, 0), true},
		{"before open", nineToFive, utcAt(0, 8, 59), false},
		{"after close", nineToFive, utcAt(0, 17, 1), false},
		{"overnight, before midnight", overnight, utcAt(0, 23, 0), true},
		{"overnight, after midnight spills from yesterday", overnight, utcAt(1, 1, 30), true},
		{"overnight, daytime gap", overnight, utcAt(1, 12, 0), false},
		{"default schedule is always open", models.NewWeeklySchedule(nil), utcAt(0, 3, 17), true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := withinBusinessHours(tc.sched, time.UTC, tc.at); got != tc.want {
				t.Fatalf("withinBusinessHours(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestSamplerSampleOnce(t *testing.T) {
	t.Parallel()

	// Store 1 is open at noon, store 2 is not, store 3 has the full-day
	// default. Only open stores get an observation.
	now := utcAt(0, 12, 0)
	hours := &fakeHoursRepo{hours: map[int64][]models.BusinessHour{
		1: {{StoreID: 1, Day: models.Monday, Start: models.WallClock{Hour: 9}, End: models.WallClock{Hour: 17}}},
		2: {{StoreID: 2, Day: models.Monday, Start: models.WallClock{Hour: 14}, End: models.WallClock{Hour: 17}}},
	}}
	statuses := &recordingStatusRepo{}
	catalog := &staticCatalog{stores: []models.Store{
		{ID: 1, Timezone: "UTC"},
		{ID: 2, Timezone: "UTC"},
		{ID: 3, Timezone: "UTC"},
	}}

	svc := NewSamplerService(catalog, hours, statuses, logger.Nop(), Config{})
	svc.chooseStatus = func() string { return models.StatusActive }

	n, err := svc.sampleOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("sampleOnce: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d observations, want 2", n)
	}
	if len(statuses.appended) != 2 {
		t.Fatalf("appended %d rows, want 2", len(statuses.appended))
	}
	if statuses.appended[0].StoreID != 1 || statuses.appended[1].StoreID != 3 {
		t.Fatalf("sampled stores %d and %d, want 1 and 3",
			statuses.appended[0].StoreID, statuses.appended[1].StoreID)
	}
	for _, o := range statuses.appended {
		if !o.Timestamp.Equal(now) {
			t.Fatalf("timestamp = %v, want %v", o.Timestamp, now)
		}
		if o.Status != models.StatusActive {
			t.Fatalf("status = %q", o.Status)
		}
	}
}

func TestSamplerSampleOnceBatches(t *testing.T) {
	t.Parallel()

	stores := make([]models.Store, 5)
	for i := range stores {
		stores[i] = models.Store{ID: int64(i + 1), Timezone: "UTC"}
	}
	statuses := &recordingStatusRepo{}
	svc := NewSamplerService(&staticCatalog{stores: stores}, &fakeHoursRepo{}, statuses, logger.Nop(), Config{SamplerBatchSize: 2})
	svc.chooseStatus = func() string { return models.StatusInactive }

	n, err := svc.sampleOnce(context.Background(), utcAt(0, 12, 0))
	if err != nil {
		t.Fatalf("sampleOnce: %v", err)
	}
	if n != 5 || len(statuses.appended) != 5 {
		t.Fatalf("wrote %d (recorded %d), want 5", n, len(statuses.appended))
	}
}
