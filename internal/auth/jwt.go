package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier verifies HMAC-signed session tokens carrying the user id in
// a `user.id` claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type sessionClaims struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	jwt.RegisteredClaims
}

// Verify parses and validates token, returning the embedded user id.
func (v *JWTVerifier) Verify(token string) (string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if claims.User.ID == "" {
		return "", errors.New("token carries no user id")
	}
	return claims.User.ID, nil
}

// StaticVerifier maps known tokens to user ids (for tests and keyless
// development).
type StaticVerifier map[string]string

func (s StaticVerifier) Verify(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("unknown token")
}
