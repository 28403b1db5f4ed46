package jwt

import (
	"testing"
	"time"

	"socialnet/backend/internal/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useConfig(t *testing.T, secret string) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: secret, TokenTTLHours: 1}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestGenerateAndParse(t *testing.T) {
	useConfig(t, "secret")

	token, err := GenerateToken(42, "ana")
	require.NoError(t, err)

	id, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	useConfig(t, "secret")
	token, err := GenerateToken(42, "ana")
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "another"
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	useConfig(t, "secret")
	claims := gojwt.MapClaims{
		"sub": 42,
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	useConfig(t, "secret")
	claims := gojwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
