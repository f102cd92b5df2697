package repository

import (
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"uservault/internal/database"
	"uservault/internal/domain"
	"uservault/pkg/logger"
)

func newTestRepo(t *testing.T) domain.UserRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.CreateUsersTable(db); err != nil {
		t.Fatalf("create users table: %v", err)
	}
	if err := database.CreateUsersIndexes(db); err != nil {
		t.Fatalf("create users indexes: %v", err)
	}

	return NewUserRepository(db, logger.New(logger.ErrorLevel, io.Discard))
}

func testUser(id, username, email string) *domain.User {
	return &domain.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:    "Alice",
		LastName:     "Smith",
		DateOfBirth:  time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestCreateAndFind(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create(testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := repo.FindByID("u1")
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID == nil || byID.Username != "alice" {
		t.Fatalf("unexpected user %+v", byID)
	}
	if byID.UpdatedAt != nil {
		t.Fatalf("expected nil updated_at on fresh user, got %v", byID.UpdatedAt)
	}

	byUsername, err := repo.FindByUsername("alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if byUsername == nil || byUsername.ID != "u1" {
		t.Fatalf("unexpected user %+v", byUsername)
	}

	byEmail, err := repo.FindByEmail("alice@x.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != "u1" {
		t.Fatalf("unexpected user %+v", byEmail)
	}

	missing, err := repo.FindByID("nope")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}
}

func TestExists(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create(testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if ok, err := repo.ExistsByUsername("alice"); err != nil || !ok {
		t.Fatalf("expected username to exist, got %v %v", ok, err)
	}
	if ok, err := repo.ExistsByUsername("bob"); err != nil || ok {
		t.Fatalf("expected username to be free, got %v %v", ok, err)
	}
	if ok, err := repo.ExistsByEmail("alice@x.com"); err != nil || !ok {
		t.Fatalf("expected email to exist, got %v %v", ok, err)
	}
	if ok, err := repo.ExistsByEmail("bob@x.com"); err != nil || ok {
		t.Fatalf("expected email to be free, got %v %v", ok, err)
	}
}

func TestCreateMapsUniqueViolations(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create(testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.Create(testUser("u2", "alice", "other@x.com"))
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	err = repo.Create(testUser("u3", "bob", "alice@x.com"))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	repo := newTestRepo(t)

	alice := testUser("u1", "alice", "alice@x.com")
	bob := testUser("u2", "bob", "bob@x.com")
	bob.FirstName = "Bob"
	bob.LastName = "Jones"
	bob.DateOfBirth = time.Date(1985, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, u := range []*domain.User{alice, bob} {
		if err := repo.Create(u); err != nil {
			t.Fatalf("create %s: %v", u.Username, err)
		}
	}

	all, err := repo.FindAll()
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 users, got %d", len(all))
	}

	byName, err := repo.Filter(domain.UserFilter{Name: "Jon"})
	if err != nil {
		t.Fatalf("filter by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Username != "bob" {
		t.Fatalf("expected bob only, got %d results", len(byName))
	}

	from := time.Date(1989, 1, 1, 0, 0, 0, 0, time.UTC)
	byFrom, err := repo.Filter(domain.UserFilter{FromDate: &from})
	if err != nil {
		t.Fatalf("filter by from date: %v", err)
	}
	if len(byFrom) != 1 || byFrom[0].Username != "alice" {
		t.Fatalf("expected alice only, got %d results", len(byFrom))
	}

	to := time.Date(1989, 1, 1, 0, 0, 0, 0, time.UTC)
	byTo, err := repo.Filter(domain.UserFilter{ToDate: &to})
	if err != nil {
		t.Fatalf("filter by to date: %v", err)
	}
	if len(byTo) != 1 || byTo[0].Username != "bob" {
		t.Fatalf("expected bob only, got %d results", len(byTo))
	}

	boundary := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	onBoundary, err := repo.Filter(domain.UserFilter{FromDate: &boundary, ToDate: &boundary})
	if err != nil {
		t.Fatalf("filter on boundary: %v", err)
	}
	if len(onBoundary) != 1 || onBoundary[0].Username != "alice" {
		t.Fatalf("expected inclusive date bounds, got %d results", len(onBoundary))
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)

	user := testUser("u1", "alice", "alice@x.com")
	if err := repo.Create(user); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	user.FirstName = "Alicia"
	user.UpdatedAt = &now

	if err := repo.Update(user); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.FindByID("u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.FirstName != "Alicia" {
		t.Fatalf("expected updated name, got %q", got.FirstName)
	}
	if got.UpdatedAt == nil {
		t.Fatal("expected updated_at to be set")
	}

	ghost := testUser("ghost", "ghost", "ghost@x.com")
	if err := repo.Update(ghost); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create(testUser("u1", "alice", "alice@x.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete("u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := repo.FindByID("u1")
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("expected user to be gone, got %+v", got)
	}

	if err := repo.Delete("u1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
