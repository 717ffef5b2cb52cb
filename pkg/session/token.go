package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer mints HS256 bearer tokens carrying the username as subject and
// registers each one in the Registry before handing it out, so a freshly
// decoded-but-unregistered token is never honored.
type Issuer struct {
	secret   []byte
	ttl      time.Duration
	registry *Registry
	now      func() time.Time // overridable for tests
}

func NewIssuer(secret []byte, ttl time.Duration, registry *Registry) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, registry: registry, now: time.Now}
}

// Issue signs a token for the given username and registers it as active.
func (i *Issuer) Issue(username string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}
	i.registry.Register(signed)
	return signed, nil
}

// Decode verifies signature and expiry and returns the embedded subject.
// Every failure mode (forged, malformed, expired, wrong algorithm, empty
// subject) comes back as ErrUnauthorized.
func (i *Issuer) Decode(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return i.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return i.now() }),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}
