package client

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// AuthClient verifies Firebase ID tokens presented by devices.
type AuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// TokenExpireVerifier reports whether a verification error means the token
// expired, as opposed to being malformed or revoked.
type TokenExpireVerifier func(err error) bool
