package service

import (
	"context"
	"errors"
	"time"

	"uservault/internal/domain"
	"uservault/pkg/cache"
	"uservault/pkg/logger"
	"uservault/pkg/metrics"
)

// CachedUserService decorates UserService with cache-aside reads. Lookups by
// id check the cache first and populate it on a miss; mutations invalidate
// the entry only after the store write has committed, so a racing reader can
// never repopulate the cache ahead of the commit. List and filter reads
// bypass the cache entirely.
type CachedUserService struct {
	userService domain.UserService
	cache       cache.Cache
	ttl         time.Duration
	logger      logger.Logger
}

func NewCachedUserService(
	userService domain.UserService,
	cacheInstance cache.Cache,
	ttl time.Duration,
	logger logger.Logger,
) domain.UserService {
	if ttl <= 0 {
		ttl = cache.DefaultUserExpiration
	}
	return &CachedUserService{
		userService: userService,
		cache:       cacheInstance,
		ttl:         ttl,
		logger:      logger,
	}
}

func (s *CachedUserService) GetUserByID(id string) (*domain.UserView, error) {
	return s.userService.GetUserByID(id)
}

func (s *CachedUserService) GetUserByIDCached(id string) (*domain.UserView, error) {
	ctx := context.Background()
	key := cache.UserCacheKey(id)

	var cached domain.UserView
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		metrics.RecordCacheHit()
		return &cached, nil
	}

	metrics.RecordCacheMiss()
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache trouble degrades to a store read, never a request failure.
		s.logger.Warn("cache read failed, falling back to store", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	view, err := s.userService.GetUserByID(id)
	if err != nil {
		// No negative caching: a missing user is re-queried every time.
		return nil, err
	}

	if setErr := s.cache.Set(ctx, key, view, s.ttl); setErr != nil {
		s.logger.Warn("cache populate failed", map[string]interface{}{
			"key":   key,
			"error": setErr.Error(),
		})
	}

	return view, nil
}

func (s *CachedUserService) ListUsers(filter domain.UserFilter) ([]*domain.UserView, error) {
	return s.userService.ListUsers(filter)
}

func (s *CachedUserService) UpdateUser(id string, req domain.UpdateUserRequest) (*domain.UserView, error) {
	view, err := s.userService.UpdateUser(id, req)
	if err != nil {
		return nil, err
	}

	// Invalidate strictly after the store write committed.
	if err := s.InvalidateUserCache(id); err != nil {
		s.logger.Warn("cache invalidation failed after update", map[string]interface{}{"id": id, "error": err.Error()})
	}

	return view, nil
}

func (s *CachedUserService) DeleteUser(id string) error {
	if err := s.userService.DeleteUser(id); err != nil {
		return err
	}

	if err := s.InvalidateUserCache(id); err != nil {
		s.logger.Warn("cache invalidation failed after delete", map[string]interface{}{"id": id, "error": err.Error()})
	}

	return nil
}

// InvalidateUserCache removes the cached projection. Idempotent; a missing
// key is not an error.
func (s *CachedUserService) InvalidateUserCache(id string) error {
	ctx := context.Background()
	return s.cache.Delete(ctx, cache.UserCacheKey(id))
}
