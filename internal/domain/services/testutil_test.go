package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/infrastructure/config"
	"dinetrack-http-service/pkg/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB 创建一个隔离的内存数据库并完成迁移和角色初始化
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}))
	for _, role := range models.DefaultRoles {
		require.NoError(t, db.Create(&role).Error)
	}
	return db
}

// newTestConfig 构造测试配置
func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:   "test-secret",
		JWTExpiration:  24 * time.Hour,
		AdminBypassKey: "TEMP_ADMIN_SETUP_2025",
	}
}

// createTestUser 插入一个密码已哈希的用户并返回明文密码
func createTestUser(t *testing.T, db *gorm.DB, userName string, roleID int) (*models.User, string) {
	t.Helper()

	plain := userName + "-password"
	hash, err := utils.HashPassword(plain)
	require.NoError(t, err)

	user := &models.User{
		UserName: userName,
		Password: hash,
		RoleID:   roleID,
	}
	require.NoError(t, db.Create(user).Error)
	return user, plain
}
