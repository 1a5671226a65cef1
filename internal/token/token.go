// Package token issues and verifies the signed session tokens carried by
// clients. Claims are identity only; fine-grained permission state is
// always re-read from the database at check time.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"warden/internal/apperr"
	"warden/internal/models"
)

// DefaultTTL is the session token lifetime: two weeks.
const DefaultTTL = 14 * 24 * time.Hour

type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token embedding the user's identity claims.
func (s *Service) Issue(u *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Type:  u.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "failed to sign token")
	}
	return signed, nil
}

// Verify checks signature and expiry. Fails closed: any parse, method,
// signature or expiry problem is Unauthorized, never empty claims.
func (s *Service) Verify(raw string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthorized, err, "You are Unauthorized!")
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, apperr.New(apperr.Unauthorized, "You are Unauthorized!")
	}
	return claims, nil
}
