package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"tango/internal/repository"

	"go.uber.org/zap"
)

// AuthService handles the bot password gate
type AuthService struct {
	userRepo    repository.UserRepository
	botPassword string
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, botPassword string, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		botPassword: botPassword,
		logger:      logger,
	}
}

// Admit records that userID reached the bot and reports whether they may
// use the session
func (s *AuthService) Admit(ctx context.Context, userID int64) (bool, error) {
	authorized, err := s.userRepo.Touch(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("admit user: %w", err)
	}
	if !authorized {
		s.logger.Debug("User has not sent the password", zap.Int64("user_id", userID))
	}
	return authorized, nil
}

// Unlock authorizes userID when password matches the bot password.
// A wrong password is not an error.
func (s *AuthService) Unlock(ctx context.Context, userID int64, password string) (bool, error) {
	password = strings.TrimSpace(password)
	if s.botPassword == "" || subtle.ConstantTimeCompare([]byte(password), []byte(s.botPassword)) != 1 {
		s.logger.Warn("Wrong bot password", zap.Int64("user_id", userID))
		return false, nil
	}

	if err := s.userRepo.Authorize(ctx, userID); err != nil {
		return false, fmt.Errorf("unlock user: %w", err)
	}

	s.logger.Info("User authorized", zap.Int64("user_id", userID))
	return true, nil
}
