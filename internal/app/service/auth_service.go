package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ardagonca/ecommerce-backend/internal/app/model"
	"github.com/ardagonca/ecommerce-backend/internal/app/repository"
	"github.com/ardagonca/ecommerce-backend/pkg/logger"
	"github.com/ardagonca/ecommerce-backend/pkg/redis"
	"github.com/ardagonca/ecommerce-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
)

// AccountUpdate carries optional account changes. Email and password
// changes require the current password.
type AccountUpdate struct {
	FirstName       string
	LastName        string
	Email           string
	NewPassword     string
	CurrentPassword string
}

type AuthService interface {
	Register(email, password, firstName, lastName string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
	UpdateAccount(userID uint, update AccountUpdate) (*model.User, error)
	RevokeToken(token string) error
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *authService) Register(email, password, firstName, lastName string) (*model.User, *util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if exists {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})
	return user, tokens, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	logger.Debug("Fetching user by ID", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateAccount(userID uint, update AccountUpdate) (*model.User, error) {
	logger.Info("Updating user account", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	newEmail := strings.ToLower(strings.TrimSpace(update.Email))
	changingEmail := newEmail != "" && newEmail != user.Email
	changingPassword := update.NewPassword != ""

	// credential changes require re-proving the current password
	if changingEmail || changingPassword {
		if !util.VerifyPassword(user.PasswordHash, update.CurrentPassword) {
			logger.Warn("Account update rejected: current password mismatch", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrPasswordMismatch
		}
	}

	if changingEmail {
		exists, err := s.userRepo.ExistsByEmail(newEmail)
		if err != nil {
			return nil, err
		}
		if exists {
			logger.Warn("Account update rejected: email already in use", map[string]interface{}{
				"user_id": userID,
				"email":   newEmail,
			})
			return nil, ErrEmailAlreadyExists
		}
		user.Email = newEmail
	}

	if changingPassword {
		hash, err := util.HashPassword(update.NewPassword)
		if err != nil {
			logger.Error("Failed to hash new password", err, map[string]interface{}{
				"user_id": userID,
			})
			return nil, err
		}
		user.PasswordHash = hash
	}

	if name := strings.TrimSpace(update.FirstName); name != "" {
		user.FirstName = name
	}
	if name := strings.TrimSpace(update.LastName); name != "" {
		user.LastName = name
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user account", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User account updated successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// RevokeToken blacklists a token until its natural expiry. Without
// Redis this is a no-op and the client simply discards the token.
func (s *authService) RevokeToken(token string) error {
	if !redis.Enabled() {
		return nil
	}

	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// expired or garbage tokens need no blacklist entry
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := redis.BlacklistToken(context.Background(), token, ttl); err != nil {
		logger.Error("Failed to blacklist token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("Token revoked", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}
