// Package session implements bearer-token authentication: credential
// verification, token issuance, the in-memory active-token registry and
// per-request identity resolution. Tokens are honored only while they are
// simultaneously registered, unexpired under decode and resolvable to an
// existing user; the registry and the decoder are independent gates.
package session

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"prodapi/models"
)

// UserSource is the only capability the auth core needs from the relational
// store: lookup by username. Missing users are reported as ErrUserNotFound;
// any other error is treated as a store fault and propagated unchanged.
type UserSource interface {
	ByUsername(ctx context.Context, username string) (*models.User, error)
}

// VerifyCredentials checks a presented username/password pair against the
// stored bcrypt hash. Read-only; returns ErrInvalidCredentials for both an
// unknown user and a wrong password. bcrypt performs the digest comparison
// in constant time.
func VerifyCredentials(ctx context.Context, users UserSource, username, password string) (*models.User, error) {
	user, err := users.ByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Resolver turns an inbound bearer token into a user, enforcing the three
// gates in order: registry membership, signature+expiry decode, user lookup.
type Resolver struct {
	registry *Registry
	issuer   *Issuer
	users    UserSource
}

func NewResolver(registry *Registry, issuer *Issuer, users UserSource) *Resolver {
	return &Resolver{registry: registry, issuer: issuer, users: users}
}

// Resolve validates the token and loads the user it names. It mutates
// nothing. All auth failures surface as ErrUnauthorized regardless of which
// gate rejected the token; store faults pass through untouched.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if !r.registry.Active(token) {
		return nil, ErrUnauthorized
	}
	subject, err := r.issuer.Decode(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := r.users.ByUsername(ctx, subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RequireActive is the final gate before a protected handler runs: a
// resolved identity with a disabled account is denied with
// ErrInactiveAccount, independent of token validity.
func RequireActive(user *models.User) error {
	if !user.IsActive {
		return ErrInactiveAccount
	}
	return nil
}
