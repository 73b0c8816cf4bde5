package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"

	"github.com/mharte/caseflow/internal/domain"
)

// Service implements basic authentication on top of the repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new auth service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// AuthenticateBasic verifies an email address and password pair. A nil
// return means the credentials are valid. Negative outcomes come back as
// the package sentinels; anything else is a storage failure.
func (s *Service) AuthenticateBasic(ctx context.Context, emailAddress, password string) error {
	profile, found, err := s.repo.GetUserProfile(ctx, emailAddress)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidCredentials
	}

	if profile.LogonType != domain.LogonTypeBasic {
		return ErrIncorrectLogonType
	}
	if profile.Status != domain.AccountStatusActive {
		return ErrAccountNotActive
	}

	details, found, err := s.repo.GetAuthDetails(ctx, profile.ID)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Warn("user profile without auth details", "user_id", profile.ID)
		return ErrMissingAuthDetails
	}

	if !verifyPassword(password, details) {
		return ErrInvalidCredentials
	}

	s.logger.Info("user authenticated", "user_id", profile.ID)
	return nil
}

// verifyPassword checks a candidate password against the stored salted
// SHA-256 hex digest in constant time.
func verifyPassword(password string, details domain.UserAuthDetails) bool {
	sum := sha256.Sum256([]byte(password + details.PasswordSalt))
	candidate := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(details.PasswordHash)) == 1
}

// HashPassword produces the stored form of a password for a given salt.
// Used by provisioning and tests.
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}
