package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"uservault/internal/domain"
	"uservault/pkg/cache"
	"uservault/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.New(logger.ErrorLevel, io.Discard)
}

// fakeUserRepo is an in-memory UserRepository that counts store reads so
// tests can observe whether the cache was consulted.
type fakeUserRepo struct {
	users         map[string]*domain.User
	findByIDCalls int
	createErr     error
	failAll       bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copied := *u
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		copied.UpdatedAt = &t
	}
	return &copied
}

func (r *fakeUserRepo) FindByID(id string) (*domain.User, error) {
	r.findByIDCalls++
	if r.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	return cloneUser(r.users[id]), nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*domain.User, error) {
	if r.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	if r.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ExistsByUsername(username string) (bool, error) {
	if r.failAll {
		return false, domain.ErrStoreUnavailable
	}
	u, _ := r.FindByUsername(username)
	return u != nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	if r.failAll {
		return false, domain.ErrStoreUnavailable
	}
	u, _ := r.FindByEmail(email)
	return u != nil, nil
}

func (r *fakeUserRepo) FindAll() ([]*domain.User, error) {
	if r.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	var users []*domain.User
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	return users, nil
}

func sameDay(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case ad.Before(bd):
		return -1
	case ad.After(bd):
		return 1
	default:
		return 0
	}
}

func (r *fakeUserRepo) Filter(filter domain.UserFilter) ([]*domain.User, error) {
	if r.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	var users []*domain.User
	for _, u := range r.users {
		if filter.Name != "" &&
			!strings.Contains(u.FirstName, filter.Name) &&
			!strings.Contains(u.LastName, filter.Name) {
			continue
		}
		if filter.FromDate != nil && sameDay(u.DateOfBirth, *filter.FromDate) < 0 {
			continue
		}
		if filter.ToDate != nil && sameDay(u.DateOfBirth, *filter.ToDate) > 0 {
			continue
		}
		users = append(users, cloneUser(u))
	}
	return users, nil
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.failAll {
		return domain.ErrStoreUnavailable
	}
	for _, u := range r.users {
		if u.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	if r.failAll {
		return domain.ErrStoreUnavailable
	}
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	if r.failAll {
		return domain.ErrStoreUnavailable
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeCache is an in-memory Cache. With failing set, every operation errors
// to simulate an unavailable backend.
type fakeCache struct {
	entries map[string][]byte
	failing bool
	sets    int
	deletes int
	lastTTL time.Duration
	failErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		failErr: errors.New("cache backend down"),
	}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c.failing {
		return c.failErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	c.sets++
	c.lastTTL = expiration
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.failing {
		return c.failErr
	}
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	if c.failing {
		return c.failErr
	}
	delete(c.entries, key)
	c.deletes++
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.failing {
		return false, c.failErr
	}
	_, ok := c.entries[key]
	return ok, nil
}

func (c *fakeCache) Ping(ctx context.Context) error {
	if c.failing {
		return c.failErr
	}
	return nil
}
