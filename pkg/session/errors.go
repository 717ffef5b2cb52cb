package session

import "errors"

// ErrInvalidCredentials is returned when a username/password pair does not
// match a stored user at login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthorized is the single outcome for every failed token check:
// unknown, revoked, expired, malformed or forged tokens and tokens whose
// subject no longer resolves to a user all collapse into it. Which check
// failed is never surfaced to the caller.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInactiveAccount is returned when a token resolves to a user whose
// account has been disabled. Kept distinct from ErrUnauthorized: the
// identity is valid, the account state is not.
var ErrInactiveAccount = errors.New("inactive account")

// ErrUserNotFound is the sentinel a UserSource returns for a missing user.
// Store faults must be returned as-is, never folded into this.
var ErrUserNotFound = errors.New("user not found")
