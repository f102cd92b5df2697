package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"uservault/internal/domain"
)

// PasswordHasher produces and verifies salted bcrypt hashes. The salt is
// embedded in the hash output, so nothing besides the hash itself is stored.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hashedRecord. A mismatch returns
// (false, nil); a hash that bcrypt cannot parse at all returns
// domain.ErrCorruptCredential so callers never mistake a data-integrity
// problem for a bad login attempt.
func (h *PasswordHasher) Verify(password, hashedRecord string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedRecord), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", domain.ErrCorruptCredential, err)
}
