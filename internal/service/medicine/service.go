package medicine

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
)

const (
	cacheTTL     = 10 * time.Minute
	cacheCleanup = 30 * time.Minute
)

type MedicineService interface {
	Resolve(ctx context.Context, name, strength, form string) (*model.Medicine, error)
	ListActive(ctx context.Context) ([]*model.Medicine, error)
}

// Service is the catalog: a deduplicated lookup of (name, strength, form)
// triples. Resolution is backed by a database upsert; resolved rows are
// cached in-process since the catalog is small and append-only in practice.
type Service struct {
	repo  repository.MedicineRepository
	cache *gocache.Cache
}

func NewService(repo repository.MedicineRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) Resolve(ctx context.Context, name, strength, form string) (*model.Medicine, error) {
	key := cacheKey(name, strength, form)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Medicine), nil
	}

	med, err := s.repo.Resolve(ctx, name, strength, form)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve medicine (%s, %s, %s): %w", name, strength, form, err)
	}

	s.cache.Set(key, med, gocache.DefaultExpiration)
	return med, nil
}

func (s *Service) ListActive(ctx context.Context) ([]*model.Medicine, error) {
	return s.repo.ListActive(ctx)
}

func cacheKey(name, strength, form string) string {
	return strings.ToLower(name) + "|" + strings.ToLower(strength) + "|" + strings.ToLower(form)
}
