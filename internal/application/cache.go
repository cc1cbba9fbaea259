package application

import (
	"context"
	"errors"
	"time"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// CacheStats holds cache statistics
type CacheStats struct {
	ItemCount int
	TotalSize int64
	TTL       time.Duration
}

// CacheService handles transcript cache management
type CacheService struct {
	cache ports.CacheStore
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(cache ports.CacheStore, ttl time.Duration) *CacheService {
	return &CacheService{cache: cache, ttl: ttl}
}

// Stats returns cache statistics
func (s *CacheService) Stats(ctx context.Context) (*CacheStats, error) {
	count, size, err := s.cache.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &CacheStats{
		ItemCount: count,
		TotalSize: size,
		TTL:       s.ttl,
	}, nil
}

// Lookup returns the cached transcript of a video, if a fresh one exists.
func (s *CacheService) Lookup(ctx context.Context, videoPath string) (*ports.CachedItem, error) {
	key, err := Fingerprint(videoPath)
	if err != nil {
		return nil, err
	}
	return s.cache.Get(ctx, key)
}

// Forget removes the cached transcript of a video. It reports whether an
// entry existed.
func (s *CacheService) Forget(ctx context.Context, videoPath string) (bool, error) {
	key, err := Fingerprint(videoPath)
	if err != nil {
		return false, err
	}
	if _, err := s.cache.Get(ctx, key); err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return false, nil
		}
		if !errors.Is(err, domain.ErrCacheExpired) {
			return false, err
		}
	}
	return true, s.cache.Delete(ctx, key)
}

// CleanExpired removes expired cache entries
func (s *CacheService) CleanExpired(ctx context.Context) (int, error) {
	return s.cache.CleanExpired(ctx)
}

// Clear removes all cache entries
func (s *CacheService) Clear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}
