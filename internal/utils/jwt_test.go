package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWTToken(42, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWTToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
}

func TestParseJWTToken_Rejects(t *testing.T) {
	token, err := GenerateJWTToken(42, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWTToken(token, "other-secret")
	require.Error(t, err)

	expired, err := GenerateJWTToken(42, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWTToken(expired, "secret")
	require.Error(t, err)

	_, err = ParseJWTToken("not-a-token", "secret")
	require.Error(t, err)
}
