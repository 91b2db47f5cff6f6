package service

import (
	"context"
	"fmt"
	"time"

	"peercar/internal/domain"
	"peercar/internal/models"

	"github.com/rs/zerolog"
)

const (
	cacheKeyCars = "catalog:cars"
	cacheKeyBays = "catalog:bays"
)

// CatalogService serves read-mostly reference data with cache-aside
// reads. Cache failures degrade to direct database reads.
type CatalogService struct {
	catalog domain.Catalog
	cache   domain.CacheRepository
	ttl     time.Duration
	logger  *zerolog.Logger
}

func NewCatalogService(catalog domain.Catalog, cache domain.CacheRepository, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		cache:   cache,
		ttl:     models.CatalogCacheTTL * time.Second,
		logger:  logger,
	}
}

func (s *CatalogService) GetAllCars(ctx context.Context) ([]*models.Car, error) {
	var cars []*models.Car
	if s.cacheGet(ctx, cacheKeyCars, &cars) {
		return cars, nil
	}

	cars, err := s.catalog.GetAllCars(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKeyCars, cars)
	return cars, nil
}

func (s *CatalogService) GetCarDetails(ctx context.Context, rego string) (*models.CarDetails, error) {
	key := "catalog:car:" + rego
	var details models.CarDetails
	if s.cacheGet(ctx, key, &details) {
		return &details, nil
	}

	d, err := s.catalog.GetCarDetails(ctx, rego)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, d)
	return d, nil
}

func (s *CatalogService) GetCarsInBay(ctx context.Context, bayName string) ([]*models.CarSummary, error) {
	key := "catalog:bay_cars:" + bayName
	var cars []*models.CarSummary
	if s.cacheGet(ctx, key, &cars) {
		return cars, nil
	}

	cars, err := s.catalog.GetCarsInBay(ctx, bayName)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, cars)
	return cars, nil
}

func (s *CatalogService) GetAllBays(ctx context.Context) ([]*models.BaySummary, error) {
	var bays []*models.BaySummary
	if s.cacheGet(ctx, cacheKeyBays, &bays) {
		return bays, nil
	}

	bays, err := s.catalog.GetAllBays(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cacheKeyBays, bays)
	return bays, nil
}

func (s *CatalogService) GetBay(ctx context.Context, name string) (*models.Bay, error) {
	key := "catalog:bay:" + name
	var bay models.Bay
	if s.cacheGet(ctx, key, &bay) {
		return &bay, nil
	}

	b, err := s.catalog.GetBay(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, b)
	return b, nil
}

// SearchBays is never cached: the term space is unbounded.
func (s *CatalogService) SearchBays(ctx context.Context, term string) ([]*models.BaySummary, error) {
	return s.catalog.SearchBays(ctx, term)
}

func (s *CatalogService) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return s.catalog.GetMemberByEmail(ctx, email)
}

// UpdateHomeBay relocates the member's default bay and returns its name.
func (s *CatalogService) UpdateHomeBay(ctx context.Context, email, bayName string) (string, error) {
	name, err := s.catalog.UpdateHomeBay(ctx, email, bayName)
	if err != nil {
		return "", err
	}
	return name, nil
}

// CheckBookingRateLimit throttles booking attempts per member.
func (s *CatalogService) CheckBookingRateLimit(ctx context.Context, email string, limit int, window time.Duration) (bool, error) {
	if s.cache == nil || limit <= 0 {
		return true, nil
	}
	return s.cache.CheckRateLimit(ctx, fmt.Sprintf("book:%s", email), limit, window)
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Catalog cache read failed")
		return false
	}
	return found
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Catalog cache write failed")
	}
}
