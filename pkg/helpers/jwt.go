package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
)

// ErrInvalidToken covers every token verification failure: bad signature,
// expired, malformed. Callers can distinguish it from business errors.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the self-contained assertion carried by every token scope.
type Claims struct {
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
	ID    string      `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies JWTs for the three credential scopes:
// access (short-lived), refresh (long-lived) and action (very
// short-lived, shared by the verify-account and reset-password flows).
type TokenManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	ActionSecret  []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ActionTTL     time.Duration
}

func NewTokenManager(accessSecret, refreshSecret, actionSecret string, accessTTL, refreshTTL, actionTTL time.Duration) *TokenManager {
	return &TokenManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		ActionSecret:  []byte(actionSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		ActionTTL:     actionTTL,
	}
}

func (m *TokenManager) GenerateAccessToken(u *entity.User) (string, error) {
	return sign(u, m.AccessSecret, m.AccessTTL)
}

func (m *TokenManager) GenerateRefreshToken(u *entity.User) (string, error) {
	return sign(u, m.RefreshSecret, m.RefreshTTL)
}

// GenerateActionToken mints the short-lived token gating account
// verification and password reset.
func (m *TokenManager) GenerateActionToken(u *entity.User) (string, error) {
	return sign(u, m.ActionSecret, m.ActionTTL)
}

func (m *TokenManager) ParseAccessToken(tok string) (*Claims, error) {
	return parse(tok, m.AccessSecret)
}

func (m *TokenManager) ParseRefreshToken(tok string) (*Claims, error) {
	return parse(tok, m.RefreshSecret)
}

func (m *TokenManager) ParseActionToken(tok string) (*Claims, error) {
	return parse(tok, m.ActionSecret)
}

func sign(u *entity.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: u.Email,
		Role:  u.Role,
		ID:    u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func parse(tok string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
