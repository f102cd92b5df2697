package domain

import "time"

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	DateOfBirth  time.Time  `json:"date_of_birth"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// UserView is the public projection of a User. It is the only representation
// that crosses the cache or service boundary; the password hash never does.
type UserView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) View() *UserView {
	return &UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateOfBirth: u.DateOfBirth,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

type RegisterRequest struct {
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
}

// AuthResult is the outcome of register/login. Domain-level failures
// (duplicates, bad credentials) come back as Success=false with a safe
// message; only infrastructure problems surface as errors.
type AuthResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *UserView `json:"user,omitempty"`
}

// UserFilter narrows List results. Nil date bounds are open-ended; an empty
// name matches everyone. Dates compare at day granularity.
type UserFilter struct {
	Name     string
	FromDate *time.Time
	ToDate   *time.Time
}

type UserRepository interface {
	FindByID(id string) (*User, error)
	FindByUsername(username string) (*User, error)
	FindByEmail(email string) (*User, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	FindAll() ([]*User, error)
	Filter(filter UserFilter) ([]*User, error)
	Create(user *User) error
	Update(user *User) error
	Delete(id string) error
}

type AuthService interface {
	Register(req RegisterRequest) (*AuthResult, error)
	Login(req LoginRequest) (*AuthResult, error)
}

type UserService interface {
	GetUserByID(id string) (*UserView, error)
	GetUserByIDCached(id string) (*UserView, error)
	ListUsers(filter UserFilter) ([]*UserView, error)
	UpdateUser(id string, req UpdateUserRequest) (*UserView, error)
	DeleteUser(id string) error
	InvalidateUserCache(id string) error
}
