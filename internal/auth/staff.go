package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Guard authenticates admin console tokens. Staff tokens are issued out of
// band (ops tooling) and signed with a shared HS256 secret.
type Guard struct {
	secret    []byte
	issuer    string
	clockSkew time.Duration
}

// NewGuard constructs a Guard.
func NewGuard(secret []byte, issuer string) (*Guard, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	return &Guard{secret: secret, issuer: issuer, clockSkew: 30 * time.Second}, nil
}

// ParseStaffToken verifies the signature and standard claims of a staff token
// and returns its subject.
func (g *Guard) ParseStaffToken(raw string) (string, error) {
	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, g.secret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(g.clockSkew),
	}
	if g.issuer != "" {
		options = append(options, jwt.WithIssuer(g.issuer))
	}
	tok, err := jwt.Parse([]byte(raw), options...)
	if err != nil {
		return "", fmt.Errorf("auth: parse staff token: %w", err)
	}
	staffID := tok.Subject()
	if staffID == "" {
		return "", errors.New("auth: staff token missing subject")
	}
	return staffID, nil
}

// MintStaffToken issues a signed staff token. Used by ops tooling and tests.
func (g *Guard) MintStaffToken(staffID string, ttl time.Duration, now time.Time) (string, error) {
	builder := jwt.NewBuilder().
		Subject(staffID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(ttl))
	if g.issuer != "" {
		builder = builder.Issuer(g.issuer)
	}
	tok, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("auth: build staff token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, g.secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign staff token: %w", err)
	}
	return string(signed), nil
}
