package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
)

func testUser() *entity.User {
	return &entity.User{
		ID:    "u-1",
		Email: "a@x.com",
		Role:  entity.RolePatient,
	}
}

func testManager() *TokenManager {
	return NewTokenManager("acc", "ref", "act", time.Hour, 24*time.Hour, 3*time.Minute)
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager()
	u := testUser()

	cases := []struct {
		name     string
		generate func(*entity.User) (string, error)
		parse    func(string) (*Claims, error)
	}{
		{"access", m.GenerateAccessToken, m.ParseAccessToken},
		{"refresh", m.GenerateRefreshToken, m.ParseRefreshToken},
		{"action", m.GenerateActionToken, m.ParseActionToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := tc.generate(u)
			require.NoError(t, err)

			claims, err := tc.parse(tok)
			require.NoError(t, err)
			require.Equal(t, u.Email, claims.Email)
			require.Equal(t, u.Role, claims.Role)
			require.Equal(t, u.ID, claims.ID)
			require.NotNil(t, claims.ExpiresAt)
		})
	}
}

// Tokens are scope-bound: a token minted for one scope never verifies
// under another scope's secret.
func TestTokenScopesAreIsolated(t *testing.T) {
	m := testManager()
	u := testUser()

	access, err := m.GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ParseActionToken(access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewTokenManager("acc", "ref", "act", -time.Minute, -time.Minute, -time.Minute)
	u := testUser()

	tok, err := m.GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	m := testManager()
	u := testUser()

	tok, err := m.GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok + "x")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	m := testManager()
	_, err := m.ParseActionToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
