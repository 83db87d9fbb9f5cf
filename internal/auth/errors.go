package auth

import "errors"

// Authentication failure reasons. Credential mismatches and unknown usernames
// share one error so responses cannot be used to enumerate accounts.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountLocked      = errors.New("account is locked, try again later")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)
