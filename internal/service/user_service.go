package service

import (
	"context"

	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/repository"
)

// UserService handles account administration.
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByUsername retrieves a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// List retrieves a page of users.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// Create creates a new account.
func (s *UserService) Create(ctx context.Context, u *model.User) error {
	return s.userRepo.Create(ctx, u)
}

// Update modifies an existing account.
func (s *UserService) Update(ctx context.Context, u *model.User) error {
	return s.userRepo.Update(ctx, u)
}

// SetStatus enables or disables an account. Disabling takes effect on the
// user's next request: the gate re-resolves the user every time.
func (s *UserService) SetStatus(ctx context.Context, id int64, status model.UserStatus) error {
	return s.userRepo.SetStatus(ctx, id, status)
}
