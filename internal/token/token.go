// Package token signs and verifies the bearer credentials that carry a
// caller's identity between requests.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the fixed credential lifetime. There is no refresh mechanism;
// clients request a new token when this one lapses.
const TTL = time.Hour

// ErrInvalidToken is returned for every verification failure. Expired,
// malformed, and mis-signed tokens are deliberately indistinguishable
// to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a verified credential.
type Claims struct {
	Email string
}

// Service issues and verifies HS256-signed credentials.
type Service struct {
	secret []byte
}

// NewService creates a token Service signing with the given secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Issue embeds the payload into a signed credential expiring after TTL.
// The payload is copied wholesale into the claims; it must contain at
// least an "email" field for the credential to be usable.
func (s *Service) Issue(payload map[string]interface{}) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(TTL).Unix()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates the signature and expiry of a raw credential and
// returns its claims. All failure modes collapse into ErrInvalidToken.
func (s *Service) Verify(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	email, _ := mc["email"].(string)
	if email == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Email: email}, nil
}
