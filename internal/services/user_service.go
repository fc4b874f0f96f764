package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/teamtask/internal/constants"
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/repository"
	"github.com/yukikurage/teamtask/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNotProfileOwner = errors.New("users can only update their own profile")
	ErrRoleImmutable   = errors.New("role cannot be changed after registration")
)

// UserService handles user profile reads and updates.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileInput lists the editable profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *models.UserRole
}

// ListUsers returns users for member pickers
func (s *UserService) ListUsers(q utils.ListQuery) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateProfile applies input to the target user when actor is that user
func (s *UserService) UpdateProfile(actorID, targetID uint64, input UpdateProfileInput) (*models.User, error) {
	if actorID != targetID {
		return nil, ErrNotProfileOwner
	}

	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Role != nil && *input.Role != user.Role {
		return nil, ErrRoleImmutable
	}

	username, email := user.Username, user.Email
	if input.Username != nil {
		username = strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, ErrUsernameRequired
		}
	}
	if input.Email != nil {
		email = strings.TrimSpace(strings.ToLower(*input.Email))
		if !strings.Contains(email, "@") {
			return nil, ErrInvalidEmail
		}
	}
	if username != user.Username || email != user.Email {
		taken, err := s.userRepo.ExistsByUsernameOrEmail(username, email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}
	user.Username, user.Email = username, email

	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.userRepo.FindByID(user.ID, "teams")
}
