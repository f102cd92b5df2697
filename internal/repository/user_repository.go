package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"uservault/internal/domain"
	"uservault/pkg/logger"
	"uservault/pkg/metrics"
)

const userColumns = "id, username, email, password_hash, first_name, last_name, date_of_birth, is_active, created_at, updated_at"

type UserRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewUserRepository(db *sql.DB, logger logger.Logger) domain.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var user domain.User
	var updatedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.DateOfBirth,
		&user.IsActive,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if updatedAt.Valid {
		t := updatedAt.Time
		user.UpdatedAt = &t
	}

	return &user, nil
}

func (r *UserRepository) findOne(query string, arg interface{}) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(id string) (*domain.User, error) {
	defer observe("find_by_id")()
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := r.findOne(query, id)
	if err != nil {
		r.logger.Error("failed to find user by id", map[string]interface{}{"id": id, "error": err.Error()})
	}
	return user, err
}

func (r *UserRepository) FindByUsername(username string) (*domain.User, error) {
	defer observe("find_by_username")()
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	user, err := r.findOne(query, username)
	if err != nil {
		r.logger.Error("failed to find user by username", map[string]interface{}{"username": username, "error": err.Error()})
	}
	return user, err
}

func (r *UserRepository) FindByEmail(email string) (*domain.User, error) {
	defer observe("find_by_email")()
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := r.findOne(query, email)
	if err != nil {
		r.logger.Error("failed to find user by email", map[string]interface{}{"email": email, "error": err.Error()})
	}
	return user, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	defer observe("exists_by_username")()
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&count)
	if err != nil {
		r.logger.Error("failed to check username existence", map[string]interface{}{"username": username, "error": err.Error()})
		return false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return count > 0, nil
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	defer observe("exists_by_email")()
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&count)
	if err != nil {
		r.logger.Error("failed to check email existence", map[string]interface{}{"email": email, "error": err.Error()})
		return false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return count > 0, nil
}

func (r *UserRepository) FindAll() ([]*domain.User, error) {
	defer observe("find_all")()
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	return r.queryUsers(query)
}

// Filter matches users by name substring and/or date-of-birth range. Dates
// compare at day granularity.
func (r *UserRepository) Filter(filter domain.UserFilter) ([]*domain.User, error) {
	defer observe("filter")()

	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	var args []interface{}

	if strings.TrimSpace(filter.Name) != "" {
		query += ` AND (first_name LIKE ? OR last_name LIKE ?)`
		pattern := "%" + filter.Name + "%"
		args = append(args, pattern, pattern)
	}

	if filter.FromDate != nil {
		query += ` AND date(date_of_birth) >= ?`
		args = append(args, filter.FromDate.Format("2006-01-02"))
	}

	if filter.ToDate != nil {
		query += ` AND date(date_of_birth) <= ?`
		args = append(args, filter.ToDate.Format("2006-01-02"))
	}

	query += ` ORDER BY created_at`

	return r.queryUsers(query, args...)
}

func (r *UserRepository) queryUsers(query string, args ...interface{}) ([]*domain.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to query users", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("failed to scan user row", map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return users, nil
}

func (r *UserRepository) Create(user *domain.User) error {
	defer observe("create")()

	query := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, date_of_birth, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.DateOfBirth,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dup := mapConstraintError(err); dup != nil {
			return dup
		}
		r.logger.Error("failed to create user", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *UserRepository) Update(user *domain.User) error {
	defer observe("update")()

	query := `
		UPDATE users
		SET first_name = ?, last_name = ?, date_of_birth = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.Exec(
		query,
		user.FirstName,
		user.LastName,
		user.DateOfBirth,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		r.logger.Error("failed to update user", map[string]interface{}{"id": user.ID, "error": err.Error()})
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) Delete(id string) error {
	defer observe("delete")()

	res, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete user", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// mapConstraintError translates a sqlite UNIQUE violation into the matching
// duplicate error. Advisory existence checks in the service can race; the
// constraint is the authority on which field collided.
func mapConstraintError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}
	if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique && sqliteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return nil
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return domain.ErrDuplicateUsername
	case strings.Contains(msg, "users.email"):
		return domain.ErrDuplicateEmail
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
}

func observe(operation string) func() {
	start := time.Now()
	return func() {
		metrics.RecordDatabaseOperation(operation, "user", time.Since(start))
	}
}
