// Package auth reads the user identity out of the stored session token.
// The token is issued and verified server-side; the client only decodes
// the claims it needs and refuses expired or malformed sessions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned when no usable session identity exists.
var ErrUnauthenticated = errors.New("not authenticated")

// Identity is the decoded session: the user id and when the session expires.
type Identity struct {
	ID     int
	Expiry time.Time
}

type sessionClaims struct {
	UserID int `json:"id"`
	jwt.RegisteredClaims
}

// DecodeSession extracts the identity from a session token without verifying
// the signature (the backend rejects forged tokens; the client only needs the
// claims). Missing, malformed or expired tokens all read as unauthenticated.
func DecodeSession(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims := &sessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: token has no user id", ErrUnauthenticated)
	}

	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
		if time.Now().After(expiry) {
			return nil, fmt.Errorf("%w: session expired", ErrUnauthenticated)
		}
	}

	return &Identity{ID: claims.UserID, Expiry: expiry}, nil
}
