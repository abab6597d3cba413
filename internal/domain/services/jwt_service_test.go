package services

import (
	"testing"
	"time"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/error/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService(newTestConfig())

	user := &models.User{ID: 42, UserName: "alice", RoleID: models.RoleServer}
	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.UserName)
	assert.Equal(t, models.RoleServer, claims.RoleID)
	assert.Equal(t, "dinetrack-http-service", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTServiceTokensAreUnique(t *testing.T) {
	svc := NewJWTService(newTestConfig())
	user := &models.User{ID: 1, UserName: "alice", RoleID: models.RoleServer}

	token1, err := svc.GenerateToken(user)
	require.NoError(t, err)
	token2, err := svc.GenerateToken(user)
	require.NoError(t, err)

	// jti保证同一用户的两次签发互不相同
	assert.NotEqual(t, token1, token2)
}

func TestJWTServiceExpiredToken(t *testing.T) {
	cfg := newTestConfig()
	cfg.JWTExpiration = -time.Hour
	svc := NewJWTService(cfg)

	token, err := svc.GenerateToken(&models.User{ID: 1, UserName: "alice", RoleID: models.RoleServer})
	require.NoError(t, err)

	_, err = svc.ExtractClaims(token)
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrTokenInvalid))
}

func TestJWTServiceWrongSecret(t *testing.T) {
	svc := NewJWTService(newTestConfig())
	token, err := svc.GenerateToken(&models.User{ID: 1, UserName: "alice", RoleID: models.RoleServer})
	require.NoError(t, err)

	otherCfg := newTestConfig()
	otherCfg.JWTSecretKey = "another-secret"
	other := NewJWTService(otherCfg)

	_, err = other.ExtractClaims(token)
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrTokenInvalid))
}

func TestJWTServiceGarbageToken(t *testing.T) {
	svc := NewJWTService(newTestConfig())

	_, err := svc.ExtractClaims("not.a.token")
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrTokenInvalid))
}
