package services

import (
	"testing"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/error/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	users := NewUserService(db, cfg)
	jwt := NewJWTService(cfg)
	auth := NewAuthService(db, cfg, users, jwt)

	created, plain := createTestUser(t, db, "alice", models.RoleServer)

	result, err := auth.Login("alice", plain)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, created.ID, result.User.ID)
	// 哈希绝不离开服务层
	assert.Empty(t, result.User.Password)

	claims, err := jwt.ExtractClaims(result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "alice", claims.UserName)
	assert.Equal(t, models.RoleServer, claims.RoleID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), NewJWTService(cfg))

	createTestUser(t, db, "alice", models.RoleServer)

	_, err := auth.Login("alice", "wrong-password")
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrInvalidCredentials))
}

func TestLoginIndistinguishableErrors(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), NewJWTService(cfg))

	createTestUser(t, db, "alice", models.RoleServer)

	_, errUnknownUser := auth.Login("nobody", "whatever123")
	_, errWrongPassword := auth.Login("alice", "wrong-password")

	require.Error(t, errUnknownUser)
	require.Error(t, errWrongPassword)
	// 用户不存在和密码错误不可区分，防止用户名枚举
	assert.True(t, code.IsErr(errUnknownUser, code.ErrInvalidCredentials))
	assert.True(t, code.IsErr(errWrongPassword, code.ErrInvalidCredentials))
	assert.Equal(t, errUnknownUser.Error(), errWrongPassword.Error())
}

func TestRefreshTokenReflectsRoleChange(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	jwt := NewJWTService(cfg)
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), jwt)

	created, plain := createTestUser(t, db, "alice", models.RoleServer)

	login, err := auth.Login("alice", plain)
	require.NoError(t, err)

	// 管理员提升了角色
	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", created.ID).
		Update("role_id", models.RoleAdmin).Error)

	refreshed, err := auth.RefreshToken(created.ID)
	require.NoError(t, err)

	newClaims, err := jwt.ExtractClaims(refreshed.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, newClaims.RoleID)

	// 旧令牌不回收，仍然携带过期前的旧角色
	oldClaims, err := jwt.ExtractClaims(login.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleServer, oldClaims.RoleID)
}

func TestRefreshTokenMissingUser(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), NewJWTService(cfg))

	_, err := auth.RefreshToken(9999)
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrUserNotFound))
}

func TestRegisterUserHashesPasswordAndDefaultsRole(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), NewJWTService(cfg))

	created, err := auth.RegisterUser(&models.User{UserName: "alice", Password: "alice123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleServer, created.RoleID)
	assert.Empty(t, created.Password)

	// 落库的是哈希而不是明文
	var raw models.User
	require.NoError(t, db.First(&raw, created.ID).Error)
	assert.NotEqual(t, "alice123", raw.Password)
	assert.NotEmpty(t, raw.Password)

	// 登录验证哈希可用
	result, err := auth.Login("alice", "alice123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestCreateAdminBypassKeyMismatch(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), NewJWTService(cfg))

	_, err := auth.CreateAdminBypass(&models.User{UserName: "root", Password: "root123"}, "wrong-key")
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrBypassKeyInvalid))
}

func TestCreateAdminBypassDisabledWhenKeyUnset(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.AdminBypassKey = ""
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), NewJWTService(cfg))

	// 密钥猜对了配置值也没用，通道未启用
	_, err := auth.CreateAdminBypass(&models.User{UserName: "root", Password: "root123"}, "")
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrBypassKeyInvalid))
}

func TestCreateAdminBypassForcesAdminRole(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), NewJWTService(cfg))

	created, err := auth.CreateAdminBypass(
		&models.User{UserName: "root", Password: "root123", RoleID: models.RoleServer},
		cfg.AdminBypassKey,
	)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.RoleID)
}

func TestUserLifecycle(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	users := NewUserService(db, cfg)
	jwt := NewJWTService(cfg)
	auth := NewAuthService(db, cfg, users, jwt)

	// 创建并登录
	created, err := auth.RegisterUser(&models.User{UserName: "alice", Password: "alice123"})
	require.NoError(t, err)

	login, err := auth.Login("alice", "alice123")
	require.NoError(t, err)
	claims, err := jwt.ExtractClaims(login.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)

	// 错误密码被拒绝
	_, err = auth.Login("alice", "not-her-password")
	assert.True(t, code.IsErr(err, code.ErrInvalidCredentials))

	// 删除后查询和登录都失败
	removed, err := users.DeleteUser(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", removed.UserName)

	_, err = users.GetUserByID(created.ID)
	assert.True(t, code.IsErr(err, code.ErrUserNotFound))

	_, err = auth.Login("alice", "alice123")
	assert.True(t, code.IsErr(err, code.ErrInvalidCredentials))
}

func TestCreateAdminBypassClosedAfterFirstAdmin(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	auth := NewAuthService(db, cfg, NewUserService(db, cfg), NewJWTService(cfg))

	createTestUser(t, db, "existing-admin", models.RoleAdmin)

	_, err := auth.CreateAdminBypass(&models.User{UserName: "root", Password: "root123"}, cfg.AdminBypassKey)
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrBypassKeyInvalid))
}
