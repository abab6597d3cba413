package services

import (
	"testing"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/error/code"
	"dinetrack-http-service/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCredentialFixture(t *testing.T) (*gorm.DB, InterfaceCredentialService, InterfaceJWTService) {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	users := NewUserService(db, cfg)
	jwt := NewJWTService(cfg)
	return db, NewCredentialService(db, cfg, users, jwt), jwt
}

func TestUpdateOwnCredentialsSuccess(t *testing.T) {
	db, svc, jwt := newCredentialFixture(t)
	created, plain := createTestUser(t, db, "alice", models.RoleServer)

	newName := "alice2"
	newPassword := "newpass123"
	result, err := svc.UpdateOwnCredentials(created.ID, plain, &UserChangeset{
		UserName: &newName,
		Password: &newPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", result.User.UserName)
	assert.Empty(t, result.User.Password)

	// 重签的令牌携带更新后的用户名
	claims, err := jwt.ExtractClaims(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice2", claims.UserName)
	assert.Equal(t, created.ID, claims.UserID)

	// 新密码可用，旧密码失效
	var raw models.User
	require.NoError(t, db.First(&raw, created.ID).Error)
	assert.True(t, utils.CheckPasswordHash("newpass123", raw.Password))
	assert.False(t, utils.CheckPasswordHash(plain, raw.Password))
}

func TestUpdateOwnCredentialsWrongCurrentPassword(t *testing.T) {
	db, svc, _ := newCredentialFixture(t)
	created, plain := createTestUser(t, db, "alice", models.RoleServer)

	newPassword := "newpass123"
	_, err := svc.UpdateOwnCredentials(created.ID, "wrong-password", &UserChangeset{
		Password: &newPassword,
	})
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrCurrentPasswordIncorrect))

	// 校验失败时什么都不写
	var raw models.User
	require.NoError(t, db.First(&raw, created.ID).Error)
	assert.True(t, utils.CheckPasswordHash(plain, raw.Password))
}

func TestUpdateOwnCredentialsEmptyChangeset(t *testing.T) {
	db, svc, _ := newCredentialFixture(t)
	created, plain := createTestUser(t, db, "alice", models.RoleServer)

	_, err := svc.UpdateOwnCredentials(created.ID, plain, &UserChangeset{})
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrNoFieldsToUpdate))
}

func TestUpdateOwnCredentialsCannotChangeRole(t *testing.T) {
	db, svc, _ := newCredentialFixture(t)
	created, plain := createTestUser(t, db, "alice", models.RoleServer)

	adminRole := models.RoleAdmin
	email := "alice@example.com"
	result, err := svc.UpdateOwnCredentials(created.ID, plain, &UserChangeset{
		RoleID: &adminRole,
		Email:  &email,
	})
	require.NoError(t, err)

	// 自助通道的角色修改被静默丢弃
	assert.Equal(t, models.RoleServer, result.User.RoleID)
	assert.Equal(t, "alice@example.com", result.User.Email)
}

func TestUpdateOwnCredentialsMissingUser(t *testing.T) {
	_, svc, _ := newCredentialFixture(t)

	newPassword := "newpass123"
	_, err := svc.UpdateOwnCredentials(9999, "whatever", &UserChangeset{Password: &newPassword})
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrUserNotFound))
}

func TestAdminUpdateCredentialsNoCurrentPasswordNeeded(t *testing.T) {
	db, svc, _ := newCredentialFixture(t)
	admin, _ := createTestUser(t, db, "admin", models.RoleAdmin)
	target, _ := createTestUser(t, db, "alice", models.RoleServer)

	newPassword := "reset-pass123"
	result, err := svc.AdminUpdateCredentials(target.ID, &UserChangeset{Password: &newPassword}, admin.ID)
	require.NoError(t, err)

	// 改别人的账户不产生令牌
	assert.False(t, result.TokenUpdated)
	assert.Empty(t, result.Token)

	var raw models.User
	require.NoError(t, db.First(&raw, target.ID).Error)
	assert.True(t, utils.CheckPasswordHash("reset-pass123", raw.Password))
}

func TestAdminUpdateCredentialsSelfReissuesToken(t *testing.T) {
	db, svc, jwt := newCredentialFixture(t)
	admin, _ := createTestUser(t, db, "admin", models.RoleAdmin)

	newName := "superadmin"
	result, err := svc.AdminUpdateCredentials(admin.ID, &UserChangeset{UserName: &newName}, admin.ID)
	require.NoError(t, err)

	assert.True(t, result.TokenUpdated)
	require.NotEmpty(t, result.Token)

	claims, err := jwt.ExtractClaims(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "superadmin", claims.UserName)
	assert.Equal(t, admin.ID, claims.UserID)
}

func TestAdminUpdateCredentialsEmptyChangeset(t *testing.T) {
	db, svc, _ := newCredentialFixture(t)
	admin, _ := createTestUser(t, db, "admin", models.RoleAdmin)
	target, _ := createTestUser(t, db, "alice", models.RoleServer)

	before := target.UpdatedAt

	_, err := svc.AdminUpdateCredentials(target.ID, &UserChangeset{}, admin.ID)
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrNoFieldsToUpdate))

	// 空更新不落库
	var raw models.User
	require.NoError(t, db.First(&raw, target.ID).Error)
	assert.Equal(t, before.Unix(), raw.UpdatedAt.Unix())
}

func TestAdminUpdateCredentialsMissingTarget(t *testing.T) {
	db, svc, _ := newCredentialFixture(t)
	admin, _ := createTestUser(t, db, "admin", models.RoleAdmin)

	newPassword := "reset-pass123"
	_, err := svc.AdminUpdateCredentials(9999, &UserChangeset{Password: &newPassword}, admin.ID)
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrUserNotFound))
}

func TestAdminUpdateCredentialsNameConflict(t *testing.T) {
	db, svc, _ := newCredentialFixture(t)
	admin, _ := createTestUser(t, db, "admin", models.RoleAdmin)
	createTestUser(t, db, "alice", models.RoleServer)
	bob, _ := createTestUser(t, db, "bob", models.RoleServer)

	name := "alice"
	_, err := svc.AdminUpdateCredentials(bob.ID, &UserChangeset{UserName: &name}, admin.ID)
	require.Error(t, err)
	assert.True(t, code.IsErr(err, code.ErrUserAlreadyExist))
}
