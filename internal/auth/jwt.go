package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baharkarakas/publishing-backend/internal/models"
)

var ErrMissingSecret = errors.New("token signing secret is empty")

type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Claims is the identity asserted by a token.
type Claims struct {
	UserID string      `json:"uid"`
	Login  string      `json:"login"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func ClaimsFor(u models.User) Claims {
	return Claims{UserID: u.ID, Login: u.Login, Name: u.Name, Role: u.Role}
}

func (tm *TokenManager) Issue(c Claims) (string, time.Time, error) {
	now := tm.now()
	exp := now.Add(tm.ttl)
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    tm.issuer,
		Subject:   c.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tok, exp, nil
}

// Verify recovers the claims. Malformed, tampered and expired tokens all
// yield models.ErrInvalidToken.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	}, opts...)
	if err != nil || claims.UserID == "" || !claims.Role.Valid() {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}
