package service

import (
	"context"
	"testing"

	"storewatch/internal/models"
)

type memCatalogCache struct {
	stores []models.Store
	filled bool
	sets   int
}

func (m *memCatalogCache) Get(_ context.Context) ([]models.Store, bool) {
	if !m.filled {
		return nil, false
	}
	return m.stores, true
}

func (m *memCatalogCache) Set(_ context.Context, stores []models.Store) {
	m.stores = append([]models.Store(nil), stores...)
	m.filled = true
	m.sets++
}

type countingStoreRepo struct {
	stores []models.Store
	calls  int
}

func (r *countingStoreRepo) List(_ context.Context, limit int) ([]models.Store, error) {
	r.calls++
	if limit > 0 && limit < len(r.stores) {
		return r.stores[:limit], nil
	}
	return r.stores, nil
}

func (r *countingStoreRepo) UpsertBatch(_ context.Context, _ []models.Store) error { return nil }
func (r *countingStoreRepo) EnsureExists(_ context.Context, _ int64, _ string) error {
	return nil
}
func (r *countingStoreRepo) GetByID(_ context.Context, _ int64) (*models.Store, error) {
	return nil, nil
}

func TestStoreCatalog_TruncatedListIsNeverCached(t *testing.T) {
	t.Parallel()

	repo := &countingStoreRepo{stores: []models.Store{
		{ID: 1, Timezone: "UTC"},
		{ID: 2, Timezone: "UTC"},
		{ID: 3, Timezone: "UTC"},
		{ID: 4, Timezone: "UTC"},
		{ID: 5, Timezone: "UTC"},
	}}
	cc := &memCatalogCache{}
	svc := NewStoreCatalogService(repo, cc)
	ctx := context.Background()

	// A small-limit read (the store listing endpoint) comes first.
	got, err := svc.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List(2) returned %d stores, want 2", len(got))
	}
	if cc.sets != 0 {
		t.Fatal("limit-truncated list was cached")
	}

	// Report generation must still see every store afterwards.
	got, err = svc.List(ctx, 20000)
	if err != nil {
		t.Fatalf("List(20000): %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("report-generation catalog fetch got %d stores, want 5", len(got))
	}
	if cc.sets != 1 {
		t.Fatalf("complete catalog cached %d times, want 1", cc.sets)
	}

	// The complete catalog now serves both wide and narrow reads.
	if got, _ = svc.List(ctx, 20000); len(got) != 5 {
		t.Fatalf("cached wide read got %d stores, want 5", len(got))
	}
	if got, _ = svc.List(ctx, 2); len(got) != 2 {
		t.Fatalf("cached narrow read got %d stores, want 2", len(got))
	}
	if repo.calls != 2 {
		t.Fatalf("repo hit %d times, want 2 (later reads served from cache)", repo.calls)
	}
}

func TestStoreCatalog_NilCacheHitsDatabase(t *testing.T) {
	t.Parallel()

	repo := &countingStoreRepo{stores: []models.Store{{ID: 1, Timezone: "UTC"}}}
	svc := NewStoreCatalogService(repo, nil)

	for i := 0; i < 2; i++ {
		got, err := svc.List(context.Background(), 100)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d stores, want 1", len(got))
		}
	}
	if repo.calls != 2 {
		t.Fatalf("repo hit %d times, want 2", repo.calls)
	}
}
