// Package token issues and verifies role-carrying bearer tokens (HS256 JWT).
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/coursemart/internal/model"
)

// DefaultTTL is the validity window of an issued token.
const DefaultTTL = time.Hour

// Verification failures.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrExpired          = errors.New("token expired")
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Claims is the payload carried by a token.
type Claims struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a single process-wide key.
type Service struct {
	signKey []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewService constructs a token service. A non-positive ttl means DefaultTTL.
func NewService(signKey []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{signKey: signKey, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of s that reads time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// Issue creates a signed token for username and role.
func (s *Service) Issue(username string, role model.Role) (model.Tokens, error) {
	if username == "" || !role.Valid() {
		return model.Tokens{}, fmt.Errorf("issue: bad subject %q/%q", username, role)
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// Verify checks integrity and expiry and returns the embedded claims.
func (s *Service) Verify(tok string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) {
		return s.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return Claims{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Username == "" || !claims.Role.Valid() {
		return Claims{}, fmt.Errorf("%w: missing username/role", ErrMalformed)
	}
	return claims, nil
}
