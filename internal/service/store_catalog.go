package service

import (
	"context"

	"storewatch/internal/models"
	"storewatch/internal/repository"
)

// catalogCache is the store-list cache consulted by the catalog service.
// Implemented by cache.StoreCache; a miss on every call is a valid
// implementation.
type catalogCache interface {
	Get(ctx context.Context) ([]models.Store, bool)
	Set(ctx context.Context, stores []models.Store)
}

// StoreCatalogService serves the store list, consulting the Redis cache
// first and falling back to the database. Cache failures are silent; the
// database remains the source of truth.
type StoreCatalogService struct {
	stores repository.StoreRepo
	cache  catalogCache
}

func NewStoreCatalogService(stores repository.StoreRepo, storeCache catalogCache) *StoreCatalogService {
	return &StoreCatalogService{stores: stores, cache: storeCache}
}

var _ StoreCatalog = (*StoreCatalogService)(nil)

// List returns up to limit stores. Only the complete catalog is ever
// cached: a query that filled its limit may be truncated, and caching it
// would shrink every later caller's view — report generation would then
// silently cover a subset of stores.
func (s *StoreCatalogService) List(ctx context.Context, limit int) ([]models.Store, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			if limit > 0 && len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}

	stores, err := s.stores.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(stores) < limit {
		s.cache.Set(ctx, stores)
	}
	return stores, nil
}
