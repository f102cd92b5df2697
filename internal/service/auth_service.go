package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"uservault/internal/auth"
	"uservault/internal/domain"
	"uservault/pkg/logger"
	"uservault/pkg/metrics"
)

const (
	msgUsernameTaken   = "Username already exists"
	msgEmailTaken      = "Email already exists"
	msgRegistered      = "User registered successfully"
	msgInvalidLogin    = "Invalid username or password"
	msgInactiveAccount = "User account is inactive"
	msgLoginOK         = "Login successful"
)

type AuthService struct {
	repo   domain.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenIssuer
	logger logger.Logger
}

func NewAuthService(
	repo domain.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	logger logger.Logger,
) domain.AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new account. Both uniqueness checks run before anything
// is persisted; the store's UNIQUE constraints settle the race where two
// registrations pass the checks concurrently.
func (s *AuthService) Register(req domain.RegisterRequest) (*domain.AuthResult, error) {
	exists, err := s.repo.ExistsByUsername(req.Username)
	if err != nil {
		s.logger.Error("username existence check failed", map[string]interface{}{"username": req.Username, "error": err.Error()})
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		metrics.RecordAuthAttempt("register", "duplicate_username")
		return &domain.AuthResult{Success: false, Message: msgUsernameTaken}, nil
	}

	exists, err = s.repo.ExistsByEmail(req.Email)
	if err != nil {
		s.logger.Error("email existence check failed", map[string]interface{}{"email": req.Email, "error": err.Error()})
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		metrics.RecordAuthAttempt("register", "duplicate_email")
		return &domain.AuthResult{Success: false, Message: msgEmailTaken}, nil
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DateOfBirth:  req.DateOfBirth,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(user); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUsername):
			metrics.RecordAuthAttempt("register", "duplicate_username")
			return &domain.AuthResult{Success: false, Message: msgUsernameTaken}, nil
		case errors.Is(err, domain.ErrDuplicateEmail):
			metrics.RecordAuthAttempt("register", "duplicate_email")
			return &domain.AuthResult{Success: false, Message: msgEmailTaken}, nil
		}
		s.logger.Error("user creation failed", map[string]interface{}{"username": req.Username, "error": err.Error()})
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		s.logger.Error("token issuance failed", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RecordAuthAttempt("register", "success")
	s.logger.Info("user registered", map[string]interface{}{"user_id": user.ID, "username": user.Username})

	return &domain.AuthResult{
		Success: true,
		Message: msgRegistered,
		Token:   token,
		User:    user.View(),
	}, nil
}

// Login verifies credentials. An unknown username and a wrong password
// produce the same response so callers cannot enumerate accounts. An
// inactive account is reported distinctly; account state is not a secret
// tied to credential guessing.
func (s *AuthService) Login(req domain.LoginRequest) (*domain.AuthResult, error) {
	user, err := s.repo.FindByUsername(req.Username)
	if err != nil {
		s.logger.Error("login lookup failed", map[string]interface{}{"username": req.Username, "error": err.Error()})
		return nil, fmt.Errorf("login: %w", err)
	}

	if user == nil {
		metrics.RecordAuthAttempt("login", "invalid_credentials")
		return &domain.AuthResult{Success: false, Message: msgInvalidLogin}, nil
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		// Unreadable stored hash is a data-integrity failure, not a bad
		// login attempt.
		s.logger.Error("stored credential unreadable", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		metrics.RecordAuthAttempt("login", "invalid_credentials")
		return &domain.AuthResult{Success: false, Message: msgInvalidLogin}, nil
	}

	if !user.IsActive {
		metrics.RecordAuthAttempt("login", "inactive_account")
		return &domain.AuthResult{Success: false, Message: msgInactiveAccount}, nil
	}

	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		s.logger.Error("token issuance failed", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.RecordAuthAttempt("login", "success")

	return &domain.AuthResult{
		Success: true,
		Message: msgLoginOK,
		Token:   token,
		User:    user.View(),
	}, nil
}
