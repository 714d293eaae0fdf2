package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/merraine/merraine-api/internal/auth"
	"github.com/merraine/merraine-api/internal/logger"
	"github.com/merraine/merraine-api/internal/repository"
)

const (
	passwordHashCost  = 12
	minPasswordLength = 4
)

var (
	ErrMissingCredentials        = errors.New("username and password are required")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrAuthNotConfigured         = errors.New("authentication not configured")
	ErrPasswordTooShort          = fmt.Errorf("new password must be at least %d characters", minPasswordLength)
	ErrCurrentPasswordIncorrect  = errors.New("current password is incorrect")
	ErrPasswordChangeUnavailable = errors.New("password change is unavailable (database not configured)")
)

// Credentials are the operator login configured through the environment.
type Credentials struct {
	Username string
	Password string
}

// AuthService validates the single operator account and issues session tokens.
// A password changed through ChangePassword is stored as a bcrypt hash and
// takes precedence over the configured one.
type AuthService struct {
	settings repository.SettingsRepository
	jwt      *auth.JWTManager
	creds    Credentials
	logger   *zap.Logger
}

// NewAuthService constructs a new AuthService. settings may be nil when no
// database is configured.
func NewAuthService(settings repository.SettingsRepository, jwtManager *auth.JWTManager, creds Credentials, log *zap.Logger) *AuthService {
	return &AuthService{settings: settings, jwt: jwtManager, creds: creds, logger: logger.OrNop(log)}
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if s.creds.Username == "" || (s.creds.Password == "" && s.settings == nil) {
		return "", ErrAuthNotConfigured
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) != 1 {
		return "", ErrInvalidCredentials
	}

	ok, err := s.checkPassword(ctx, password)
	if err != nil {
		s.logger.Warn("read stored password hash failed, using configured password", zap.Error(err))
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken(username)
}

// ChangePassword replaces the operator password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	if current == "" || next == "" {
		return invalid("current password and new password are required")
	}
	if len(next) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if s.settings == nil {
		return ErrPasswordChangeUnavailable
	}

	ok, err := s.checkPassword(ctx, current)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordChangeUnavailable, err)
	}
	if !ok {
		return ErrCurrentPasswordIncorrect
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), passwordHashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.settings.Set(ctx, repository.SettingPasswordHash, string(hash)); err != nil {
		s.logger.Error("store password hash failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPasswordChangeUnavailable, err)
	}
	s.logger.Info("operator password changed")
	return nil
}

// TokenTTL is the session lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.jwt.TTL()
}

// ParseToken verifies a session token.
func (s *AuthService) ParseToken(token string) (*auth.Claims, error) {
	return s.jwt.ParseToken(token)
}

// checkPassword compares against the stored hash when one exists and the
// configured password otherwise. A failed settings read is returned together
// with the result of the configured-password comparison.
func (s *AuthService) checkPassword(ctx context.Context, password string) (bool, error) {
	var readErr error
	if s.settings != nil {
		hash, found, err := s.settings.Get(ctx, repository.SettingPasswordHash)
		if err != nil {
			readErr = err
		} else if found && hash != "" {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
		}
	}
	if s.creds.Password == "" {
		return false, readErr
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1, readErr
}
