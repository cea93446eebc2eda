package main

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageguard/internal/config"
	"pageguard/internal/middleware"
)

func TestBuildValidator_HS256(t *testing.T) {
	cfg := &config.Config{JWTSecret: "dev-secret"}

	validator, err := buildValidator(context.Background(), cfg)
	require.NoError(t, err)
	require.IsType(t, &middleware.HS256Validator{}, validator)

	// A token signed with the configured secret round-trips through the
	// validator the Authenticator middleware will use.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	claims, err := validator.Validate(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestBuildValidator_MissingSecret(t *testing.T) {
	_, err := buildValidator(context.Background(), &config.Config{})
	assert.Error(t, err)
}
