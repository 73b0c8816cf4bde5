// Package auth implements basic (email and password) authentication for
// the accounts service.
package auth

import (
	"context"

	"github.com/mharte/caseflow/internal/domain"
)

// Repository defines the interface for account credential reads.
type Repository interface {
	// GetUserProfile returns the logon-relevant profile columns for an
	// email address. The found flag is false for an unknown address.
	GetUserProfile(ctx context.Context, emailAddress string) (domain.UserProfile, bool, error)

	// GetAuthDetails returns the stored credential material for a user id.
	GetAuthDetails(ctx context.Context, userID int64) (domain.UserAuthDetails, bool, error)
}
