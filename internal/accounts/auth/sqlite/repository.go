// Package sqlite provides the sqlite implementation of the auth
// repository. All access goes through the fault-isolating query gate.
package sqlite

import (
	"context"

	"github.com/mharte/caseflow/internal/domain"
	"github.com/mharte/caseflow/internal/pkg/safedb"
)

// Repository implements auth.Repository over the query gate.
type Repository struct {
	gate *safedb.Gate
}

// NewRepository creates a new sqlite auth repository.
func NewRepository(gate *safedb.Gate) *Repository {
	return &Repository{gate: gate}
}

// GetUserProfile returns the logon-relevant profile columns for an email
// address.
func (r *Repository) GetUserProfile(ctx context.Context, emailAddress string) (domain.UserProfile, bool, error) {
	const query = `
		SELECT id, logon_type, account_status
		FROM user_profile
		WHERE email_address = ?
	`

	profile := domain.UserProfile{EmailAddress: emailAddress}
	found, err := r.gate.QueryRow(ctx, "get user logon details", query, []any{emailAddress},
		&profile.ID, &profile.LogonType, &profile.Status)
	if err != nil {
		return domain.UserProfile{}, false, err
	}
	return profile, found, nil
}

// GetAuthDetails returns the stored credential material for a user id.
func (r *Repository) GetAuthDetails(ctx context.Context, userID int64) (domain.UserAuthDetails, bool, error) {
	const query = `
		SELECT password, password_salt
		FROM user_auth_details
		WHERE user_id = ?
	`

	var details domain.UserAuthDetails
	found, err := r.gate.QueryRow(ctx, "get user auth details", query, []any{userID},
		&details.PasswordHash, &details.PasswordSalt)
	if err != nil {
		return domain.UserAuthDetails{}, false, err
	}
	return details, found, nil
}
