package service

import (
	"fmt"
	"time"

	"uservault/internal/domain"
	"uservault/pkg/logger"
)

// UserService is the store-backed implementation. It knows nothing about
// caching; CachedUserService decorates it for the read-heavy lookup path.
type UserService struct {
	repo   domain.UserRepository
	logger logger.Logger
}

func NewUserService(repo domain.UserRepository, logger logger.Logger) domain.UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserService) GetUserByID(id string) (*domain.UserView, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return user.View(), nil
}

func (s *UserService) GetUserByIDCached(id string) (*domain.UserView, error) {
	return s.GetUserByID(id)
}

func (s *UserService) ListUsers(filter domain.UserFilter) ([]*domain.UserView, error) {
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, fmt.Errorf("%w: fromDate cannot be greater than toDate", domain.ErrValidation)
	}

	var (
		users []*domain.User
		err   error
	)

	if filter.Name == "" && filter.FromDate == nil && filter.ToDate == nil {
		users, err = s.repo.FindAll()
	} else {
		users, err = s.repo.Filter(filter)
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	views := make([]*domain.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, user.View())
	}

	return views, nil
}

func (s *UserService) UpdateUser(id string, req domain.UpdateUserRequest) (*domain.UserView, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	now := time.Now().UTC()
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.DateOfBirth = req.DateOfBirth
	user.UpdatedAt = &now

	if err := s.repo.Update(user); err != nil {
		s.logger.Error("user update failed", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user updated", map[string]interface{}{"id": id})

	return user.View(), nil
}

func (s *UserService) DeleteUser(id string) error {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if user == nil {
		return domain.ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("user deletion failed", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", map[string]interface{}{"id": id, "username": user.Username})

	return nil
}

func (s *UserService) InvalidateUserCache(id string) error {
	// Nothing cached at this layer.
	return nil
}
