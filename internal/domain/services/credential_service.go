package services

import (
	"errors"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/error/code"
	"dinetrack-http-service/internal/infrastructure/config"
	"dinetrack-http-service/pkg/utils"

	"gorm.io/gorm"
)

// InterfaceCredentialService 定义凭证更新服务接口
type InterfaceCredentialService interface {
	UpdateOwnCredentials(userID uint, currentPassword string, changeset *UserChangeset) (*LoginResult, error)
	AdminUpdateCredentials(targetID uint, changeset *UserChangeset, actingAdminID uint) (*AdminUpdateResult, error)
}

// AdminUpdateResult 表示管理员更新的结果。
// 只有管理员修改自己的账户时才会重签令牌。
type AdminUpdateResult struct {
	User         *models.User `json:"user"`
	Token        string       `json:"token,omitempty"`
	TokenUpdated bool         `json:"token_updated,omitempty"`
}

// CredentialService 提供自助和管理员两种信任边界的凭证更新
type CredentialService struct {
	DB     *gorm.DB
	Config *config.Config
	Users  InterfaceUserService
	JWT    InterfaceJWTService
}

// NewCredentialService 创建一个新的凭证更新服务
func NewCredentialService(db *gorm.DB, cfg *config.Config, users InterfaceUserService, jwt InterfaceJWTService) InterfaceCredentialService {
	return &CredentialService{
		DB:     db,
		Config: cfg,
		Users:  users,
		JWT:    jwt,
	}
}

// 1 UpdateOwnCredentials 自助更新，必须先通过当前密码校验。
// userID来自调用方自己的令牌，调用方永远只能改自己的记录。
// 读取、校验、写入放在同一个事务里，避免校验和写入之间密码被并发修改。
func (s *CredentialService) UpdateOwnCredentials(userID uint, currentPassword string, changeset *UserChangeset) (*LoginResult, error) {
	if changeset.IsEmpty() {
		return nil, code.NewError(code.ErrNoFieldsToUpdate)
	}
	// 自助通道不允许改角色
	changeset.RoleID = nil

	var updated *models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return code.NewError(code.ErrUserNotFound)
			}
			return err
		}

		if !utils.CheckPasswordHash(currentPassword, user.Password) {
			return code.NewError(code.ErrCurrentPasswordIncorrect)
		}

		// 新密码在落库前哈希
		if changeset.Password != nil {
			hashedPassword, err := utils.HashPassword(*changeset.Password)
			if err != nil {
				return code.NewError(code.ErrUnknown)
			}
			changeset.Password = &hashedPassword
		}

		var err error
		updated, err = s.Users.ApplyUserUpdates(tx, userID, changeset)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 用户名可能已变化，按更新后的身份重签令牌
	token, err := s.JWT.GenerateToken(updated)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: updated, Token: token}, nil
}

// 2 AdminUpdateCredentials 管理员更新任意用户，不需要当前密码。
// 管理员改了自己的账户时重签令牌并标记，改别人时不产生令牌。
func (s *CredentialService) AdminUpdateCredentials(targetID uint, changeset *UserChangeset, actingAdminID uint) (*AdminUpdateResult, error) {
	if changeset.IsEmpty() {
		return nil, code.NewError(code.ErrNoFieldsToUpdate)
	}

	if changeset.Password != nil {
		hashedPassword, err := utils.HashPassword(*changeset.Password)
		if err != nil {
			return nil, code.NewError(code.ErrUnknown)
		}
		changeset.Password = &hashedPassword
	}

	var updated *models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = s.Users.ApplyUserUpdates(tx, targetID, changeset)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &AdminUpdateResult{User: updated}

	if targetID == actingAdminID {
		token, err := s.JWT.GenerateToken(updated)
		if err != nil {
			return nil, err
		}
		result.Token = token
		result.TokenUpdated = true
	}

	return result, nil
}
