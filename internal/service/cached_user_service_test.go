package service

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"uservault/internal/domain"
	"uservault/pkg/cache"
)

func newCachedFixture(t *testing.T) (*fakeUserRepo, *fakeCache, domain.UserService) {
	t.Helper()
	repo := newFakeUserRepo()
	c := newFakeCache()
	base := NewUserService(repo, testLogger())
	return repo, c, NewCachedUserService(base, c, 30*time.Minute, testLogger())
}

func TestCachedGetPopulatesAndSkipsStore(t *testing.T) {
	repo, c, svc := newCachedFixture(t)
	seedUser(repo, "u1", "alice", "Alice", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC))

	first, err := svc.GetUserByIDCached("u1")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if repo.findByIDCalls != 1 {
		t.Fatalf("expected one store read, got %d", repo.findByIDCalls)
	}
	if c.lastTTL != 30*time.Minute {
		t.Fatalf("expected configured TTL on populate, got %s", c.lastTTL)
	}

	second, err := svc.GetUserByIDCached("u1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if repo.findByIDCalls != 1 {
		t.Fatalf("expected cache hit to skip the store, got %d reads", repo.findByIDCalls)
	}
	if *first != *second {
		t.Fatalf("cached view differs: %+v vs %+v", first, second)
	}
}

func TestCachedGetNoNegativeCaching(t *testing.T) {
	repo, c, svc := newCachedFixture(t)

	if _, err := svc.GetUserByIDCached("missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(c.entries) != 0 {
		t.Fatal("expected no cache entry for a failed lookup")
	}

	if _, err := svc.GetUserByIDCached("missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if repo.findByIDCalls != 2 {
		t.Fatalf("expected every miss to re-query the store, got %d reads", repo.findByIDCalls)
	}
}

func TestUpdateInvalidatesCache(t *testing.T) {
	repo, _, svc := newCachedFixture(t)
	seedUser(repo, "u1", "alice", "Alice", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC))

	if _, err := svc.GetUserByIDCached("u1"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if _, err := svc.UpdateUser("u1", domain.UpdateUserRequest{
		FirstName:   "Alicia",
		LastName:    "Tester",
		DateOfBirth: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	view, err := svc.GetUserByIDCached("u1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if view.FirstName != "Alicia" {
		t.Fatalf("cached read returned stale first name %q", view.FirstName)
	}
}

func TestDeletePurgesCache(t *testing.T) {
	repo, c, svc := newCachedFixture(t)
	seedUser(repo, "u1", "alice", "Alice", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC))

	if _, err := svc.GetUserByIDCached("u1"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := svc.DeleteUser("u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(c.entries) != 0 {
		t.Fatal("expected cache entry to be removed on delete")
	}

	if _, err := svc.GetUserByID("u1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound from direct read, got %v", err)
	}
	if _, err := svc.GetUserByIDCached("u1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound from cached read, got %v", err)
	}
}

func TestCacheFailureDegradesToStore(t *testing.T) {
	repo, c, svc := newCachedFixture(t)
	seedUser(repo, "u1", "alice", "Alice", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC))
	c.failing = true

	view, err := svc.GetUserByIDCached("u1")
	if err != nil {
		t.Fatalf("expected store fallback, got %v", err)
	}
	if view.Username != "alice" {
		t.Fatalf("unexpected view %+v", view)
	}
	if repo.findByIDCalls != 1 {
		t.Fatalf("expected store read, got %d", repo.findByIDCalls)
	}
}

func TestInvalidateIsIdempotent(t *testing.T) {
	_, _, svc := newCachedFixture(t)

	if err := svc.InvalidateUserCache("never-cached"); err != nil {
		t.Fatalf("invalidate absent key: %v", err)
	}
	if err := svc.InvalidateUserCache("never-cached"); err != nil {
		t.Fatalf("invalidate twice: %v", err)
	}
}

func TestCachedEntryHoldsViewOnly(t *testing.T) {
	repo, c, svc := newCachedFixture(t)
	user := seedUser(repo, "u1", "alice", "Alice", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC))
	user.PasswordHash = "$2a$10$secretsecretsecretsecret"

	if _, err := svc.GetUserByIDCached("u1"); err != nil {
		t.Fatalf("get: %v", err)
	}

	raw, ok := c.entries[cache.UserCacheKey("u1")]
	if !ok {
		t.Fatal("expected cache entry")
	}
	if bytes.Contains(raw, []byte("secretsecret")) || bytes.Contains(raw, []byte("password")) {
		t.Fatalf("cache entry leaks credential material: %s", raw)
	}
}
