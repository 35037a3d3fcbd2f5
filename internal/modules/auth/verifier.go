package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

// Verifier checks a bearer token and returns the caller context.
type Verifier interface {
	Verify(ctx context.Context, token string) (Context, error)
}

type hs256Verifier struct{ key []byte }

// NewHS256Verifier verifies HS256-signed session tokens. Used in local and
// self-hosted deployments where no Firebase project is configured.
func NewHS256Verifier(secret string) Verifier {
	return &hs256Verifier{key: []byte(secret)}
}

func (v *hs256Verifier) Verify(ctx context.Context, tokenString string) (Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return Context{}, err
	}
	if !token.Valid {
		return Context{}, errors.New("invalid token")
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		uid, _ = claims["uid"].(string)
	}
	if uid == "" {
		return Context{}, errors.New("token has no subject")
	}
	return Context{UID: uid, Token: map[string]interface{}(claims)}, nil
}
