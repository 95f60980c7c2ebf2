package services

import (
	"context"
	"testing"

	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/config"
	"brokersure/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	return NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		cfg,
	)
}

func TestAuthService_Register_CreatesCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(context.Background(), &RegisterInput{
		FullName: "Ayşe Yılmaz",
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.RoleCustomer), resp.User.Role)
	assert.True(t, resp.User.IsActive)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "ayse", claims.Username)
	assert.Equal(t, string(domain.RoleCustomer), claims.Role)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		FullName: "Ayşe Yılmaz",
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterInput{
		FullName: "Impostor",
		Username: "ayse",
		Email:    "other@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Register_ShortPasswordRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(context.Background(), &RegisterInput{
		FullName: "Ayşe Yılmaz",
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "short",
	})
	require.Error(t, err)

	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "password", ve.Field)
}

func TestAuthService_Login_VerifiesPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		FullName: "Ayşe Yılmaz",
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginInput{Username: "ayse", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, &LoginInput{Username: "ayse", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Username: "nobody", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveUserRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		FullName: "Ayşe Yılmaz",
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, db.Table("users").Where("id = ?", resp.User.ID).Update("is_active", false).Error)

	_, err = svc.Login(ctx, &LoginInput{Username: "ayse", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAuthService_RefreshToken_RotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterInput{
		FullName: "Ayşe Yılmaz",
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The old token was revoked by the rotation
	_, err = svc.RefreshToken(ctx, registered.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The new token still works
	_, err = svc.RefreshToken(ctx, refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshToken_GarbageRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_LogoutAll_RevokesEverySession(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterInput{
		FullName: "Ayşe Yılmaz",
		Username: "ayse",
		Email:    "ayse@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	second, err := svc.Login(ctx, &LoginInput{Username: "ayse", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, registered.User.ID))

	_, err = svc.RefreshToken(ctx, registered.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
