package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenInfo is the claim data the shell can display (subject, expiry). The
// client never verifies signatures; that is the server's job.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// InspectToken decodes the installed bearer token's claims without verifying
// them, so the UI can warn before expiry.
func (c *Client) InspectToken() (*TokenInfo, error) {
	token := c.Token()
	if token == "" {
		return nil, errors.New("no token installed")
	}

	return inspectToken(token)
}

func inspectToken(token string) (*TokenInfo, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}

	info := &TokenInfo{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := parsed.Claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}

	return info, nil
}

// Expired reports whether the token carries an expiry in the past. Tokens
// without an exp claim never report expired.
func (t *TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now)
}
