package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "op-9", "editor", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, time.Minute)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "op-9", claims["sub"])
	assert.Equal(t, "EDITOR", claims["role"])
}

func TestNewAccessTokenValidates(t *testing.T) {
	_, err := NewAccessToken("", "op", "OWNER", time.Hour)
	assert.Error(t, err)
	_, err = NewAccessToken("s", "", "OWNER", time.Hour)
	assert.Error(t, err)
	_, err = NewAccessToken("s", "op", "OWNER", 0)
	assert.Error(t, err)
}
