package domain

// LogonType represents the authentication mechanism for an account.
type LogonType int

// Logon types. Only basic authentication is implemented; the other values
// are reserved in the accounts database schema.
const (
	LogonTypeBasic LogonType = iota
	LogonTypeMultiFactor
	LogonTypeOneTimePasscode
)

// AccountStatus represents the lifecycle state of a user account.
type AccountStatus int

// Account statuses.
const (
	AccountStatusActive AccountStatus = iota
	AccountStatusDisabled
)

// UserProfile is the logon-relevant slice of a user account row.
type UserProfile struct {
	ID           int64
	EmailAddress string
	LogonType    LogonType
	Status       AccountStatus
}

// UserAuthDetails holds the stored credential material for a user.
// Passwords are stored as hex-encoded SHA-256 of password+salt.
type UserAuthDetails struct {
	PasswordHash string
	PasswordSalt string
}
