package cache

import (
	"context"
	"time"

	"butikku/backend/internal/domain"
)

type ProductCache interface {
	GetCatalog(ctx context.Context, key string) ([]domain.Product, bool, error)
	SetCatalog(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error
	InvalidateCatalog(ctx context.Context, key string) error
}

type NoopProductCache struct{}

func (NoopProductCache) GetCatalog(_ context.Context, _ string) ([]domain.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) SetCatalog(_ context.Context, _ string, _ []domain.Product, _ time.Duration) error {
	return nil
}

func (NoopProductCache) InvalidateCatalog(_ context.Context, _ string) error {
	return nil
}
