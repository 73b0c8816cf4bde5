package auth

import "errors"

// Authentication outcomes. These are negative results, not failures: they
// are reported to the caller with a success HTTP code and never degrade
// service state. The messages are part of the wire contract.
var (
	// ErrInvalidCredentials covers both an unknown email address and a
	// wrong password so the two cases are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("Username/password don't match")

	// ErrIncorrectLogonType means the account exists but uses a different
	// authentication mechanism.
	ErrIncorrectLogonType = errors.New("Incorrect logon type")

	// ErrAccountNotActive means the account exists but is not in the
	// active lifecycle state.
	ErrAccountNotActive = errors.New("Account is not active")

	// ErrMissingAuthDetails means the profile row exists but has no
	// credential row. This indicates a half-provisioned account.
	ErrMissingAuthDetails = errors.New("Invalid user id")
)
