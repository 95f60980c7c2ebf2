package services

import (
	"context"
	"errors"
	"log"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/core/domain"
	"brokersure/internal/pkg/password"

	"gorm.io/gorm"
)

// UserService handles user profile and admin account management
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, refreshTokenRepo repositories.RefreshTokenRepository) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// GetProfile gets a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput represents update profile input
type UpdateProfileInput struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UpdateProfile updates a user's own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != "" && input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUserAlreadyExists
		}
		user.Email = input.Email
	}
	if input.FullName != "" {
		user.FullName = input.FullName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword changes a user's password and revokes every session
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return ErrInvalidCredentials
	}
	if !password.ValidatePassword(input.NewPassword) {
		return domain.NewValidationError("new_password", "must be at least 8 characters")
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Force re-login everywhere after a password change
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ Password changed for user ID: %d", userID)
	return nil
}

// ListByRole lists users, optionally filtered by role
func (s *UserService) ListByRole(ctx context.Context, role string) ([]*models.User, error) {
	if role != "" && !domain.Role(role).IsValid() {
		return nil, domain.NewValidationError("role", "unknown role: "+role)
	}
	return s.userRepo.List(ctx, role)
}

// CreateStaffInput represents admin staff creation input
type CreateStaffInput struct {
	FullName string `json:"full_name" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// CreateStaff provisions an agent or admin account. Admin only.
func (s *UserService) CreateStaff(ctx context.Context, input *CreateStaffInput) (*models.User, error) {
	role := domain.Role(input.Role)
	if role != domain.RoleAgent && role != domain.RoleAdmin {
		return nil, domain.NewValidationError("role", "must be AGENT or ADMIN")
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	if !password.ValidatePassword(input.Password) {
		return nil, domain.NewValidationError("password", "must be at least 8 characters")
	}
	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName: input.FullName,
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		Role:     string(role),
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Staff account created: %s (%s)", user.Username, user.Role)
	return user, nil
}

// SetActive enables or disables a user account. Admin only. Disabling also
// revokes every session.
func (s *UserService) SetActive(ctx context.Context, userID uint, active bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if !active {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ User %d active=%v", userID, active)
	return user, nil
}
