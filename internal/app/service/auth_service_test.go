package service

import (
	"testing"
	"time"

	"github.com/ardagonca/ecommerce-backend/internal/app/repository"
	"github.com/ardagonca/ecommerce-backend/internal/db"
	"github.com/ardagonca/ecommerce-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, "test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	svc := setupAuthService(t)

	t.Run("registers a new user with tokens", func(t *testing.T) {
		user, tokens, err := svc.Register("new@example.com", "password123", "Ada", "Lovelace")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "new@example.com", user.Email)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.NotEqual(t, "password123", user.PasswordHash)
	})

	t.Run("normalizes email casing", func(t *testing.T) {
		user, _, err := svc.Register("  Mixed@Example.COM ", "password123", "A", "B")
		require.NoError(t, err)
		assert.Equal(t, "mixed@example.com", user.Email)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, _, err := svc.Register("new@example.com", "otherpass", "X", "Y")
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("access token carries identity claims", func(t *testing.T) {
		user, tokens, err := svc.Register("claims@example.com", "password123", "C", "D")
		require.NoError(t, err)

		claims, err := util.ValidateToken(tokens.AccessToken, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "claims@example.com", claims.Email)
		assert.Equal(t, "user", claims.Role)
	})
}

func TestAuthService_Login(t *testing.T) {
	svc := setupAuthService(t)

	_, _, err := svc.Register("login@example.com", "password123", "Ada", "Lovelace")
	require.NoError(t, err)

	t.Run("logs in with valid credentials", func(t *testing.T) {
		user, tokens, err := svc.Login("login@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "login@example.com", user.Email)
		assert.NotEmpty(t, tokens.AccessToken)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, _, err := svc.Login("login@example.com", "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects unknown email with the same error", func(t *testing.T) {
		_, _, err := svc.Login("nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_GetUserByID(t *testing.T) {
	svc := setupAuthService(t)

	registered, _, err := svc.Register("me@example.com", "password123", "Ada", "Lovelace")
	require.NoError(t, err)

	t.Run("returns the user", func(t *testing.T) {
		user, err := svc.GetUserByID(registered.ID)
		require.NoError(t, err)
		assert.Equal(t, "me@example.com", user.Email)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := svc.GetUserByID(99999)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAuthService_UpdateAccount(t *testing.T) {
	svc := setupAuthService(t)

	registered, _, err := svc.Register("update@example.com", "password123", "Ada", "Lovelace")
	require.NoError(t, err)

	t.Run("updates names without current password", func(t *testing.T) {
		user, err := svc.UpdateAccount(registered.ID, AccountUpdate{
			FirstName: "Grace",
			LastName:  "Hopper",
		})
		require.NoError(t, err)
		assert.Equal(t, "Grace", user.FirstName)
		assert.Equal(t, "Hopper", user.LastName)
	})

	t.Run("email change requires current password", func(t *testing.T) {
		_, err := svc.UpdateAccount(registered.ID, AccountUpdate{
			Email:           "changed@example.com",
			CurrentPassword: "wrongpass",
		})
		assert.ErrorIs(t, err, ErrPasswordMismatch)

		user, err := svc.UpdateAccount(registered.ID, AccountUpdate{
			Email:           "changed@example.com",
			CurrentPassword: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "changed@example.com", user.Email)
	})

	t.Run("rejects email already in use", func(t *testing.T) {
		_, _, err := svc.Register("taken@example.com", "password123", "X", "Y")
		require.NoError(t, err)

		_, err = svc.UpdateAccount(registered.ID, AccountUpdate{
			Email:           "taken@example.com",
			CurrentPassword: "password123",
		})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("password change takes effect on next login", func(t *testing.T) {
		_, err := svc.UpdateAccount(registered.ID, AccountUpdate{
			NewPassword:     "newpassword456",
			CurrentPassword: "password123",
		})
		require.NoError(t, err)

		_, _, err = svc.Login("changed@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = svc.Login("changed@example.com", "newpassword456")
		assert.NoError(t, err)
	})
}
