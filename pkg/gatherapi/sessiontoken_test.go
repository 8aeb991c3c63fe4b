package gatherapi

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("server-side-secret"))
	require.NoError(t, err)

	got, err := SessionTokenExpiry(signed)
	require.NoError(t, err)
	require.Equal(t, exp.Unix(), got.Unix())
}

func TestSessionTokenExpiryRejectsOpaque(t *testing.T) {
	t.Parallel()

	_, err := SessionTokenExpiry("not-a-jwt")
	require.Error(t, err)
}

func TestSessionTokenExpiryRequiresExpClaim(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"})
	signed, err := token.SignedString([]byte("server-side-secret"))
	require.NoError(t, err)

	_, err = SessionTokenExpiry(signed)
	require.Error(t, err)
}
