package services

import (
	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/error/code"
	"dinetrack-http-service/internal/infrastructure/config"
	"dinetrack-http-service/pkg/utils"

	"gorm.io/gorm"
)

// InterfaceAuthService 定义认证服务接口
type InterfaceAuthService interface {
	Login(userName, password string) (*LoginResult, error)
	RefreshToken(userID uint) (*LoginResult, error)
	RegisterUser(user *models.User) (*models.User, error)
	CreateAdminBypass(user *models.User, bypassKey string) (*models.User, error)
}

// LoginResult 表示登录或令牌刷新的结果
type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService 提供登录、令牌刷新和管理员引导相关的服务
type AuthService struct {
	DB     *gorm.DB
	Config *config.Config
	Users  InterfaceUserService
	JWT    InterfaceJWTService
}

// NewAuthService 创建一个新的认证服务
func NewAuthService(db *gorm.DB, cfg *config.Config, users InterfaceUserService, jwt InterfaceJWTService) InterfaceAuthService {
	return &AuthService{
		DB:     db,
		Config: cfg,
		Users:  users,
		JWT:    jwt,
	}
}

// 1 Login 校验用户名和密码并签发令牌。
// 用户不存在和密码错误返回完全相同的错误，防止用户名枚举。
func (s *AuthService) Login(userName, password string) (*LoginResult, error) {
	user, err := s.Users.GetUserByUserName(userName)
	if err != nil {
		if code.IsErr(err, code.ErrUserNotFound) {
			return nil, code.NewError(code.ErrInvalidCredentials)
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, code.NewError(code.ErrInvalidCredentials)
	}

	token, err := s.JWT.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	// 哈希绝不离开服务层
	user.Password = ""
	return &LoginResult{User: user, Token: token}, nil
}

// 2 RefreshToken 按用户当前记录重新签发令牌。
// 角色或用户名变更后客户端通过刷新拿到新声明，旧令牌不回收。
func (s *AuthService) RefreshToken(userID uint) (*LoginResult, error) {
	user, err := s.Users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	token, err := s.JWT.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token}, nil
}

// 3 RegisterUser 创建新用户，明文密码在这里哈希后落库
func (s *AuthService) RegisterUser(user *models.User) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		return nil, code.NewError(code.ErrUnknown)
	}
	user.Password = hashedPassword

	if user.RoleID == 0 {
		user.RoleID = models.RoleServer
	}

	if err := s.Users.CreateUser(user); err != nil {
		return nil, err
	}

	created, err := s.Users.GetUserByID(user.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// 4 CreateAdminBypass 一次性管理员引导。
// 仅在配置了初始化密钥且系统中还没有管理员时可用，密钥必须完全匹配，
// 角色强制为管理员。部署完成后必须清空ADMIN_BYPASS_KEY。
func (s *AuthService) CreateAdminBypass(user *models.User, bypassKey string) (*models.User, error) {
	if s.Config.AdminBypassKey == "" {
		return nil, code.NewErrorWithMessage(code.ErrBypassKeyInvalid, "初始化通道未启用")
	}
	if bypassKey != s.Config.AdminBypassKey {
		return nil, code.NewError(code.ErrBypassKeyInvalid)
	}

	// 已经有管理员则关闭引导通道
	var adminCount int64
	if err := s.DB.Model(&models.User{}).Where("role_id = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
		return nil, err
	}
	if adminCount > 0 {
		return nil, code.NewErrorWithMessage(code.ErrBypassKeyInvalid, "系统已有管理员，初始化通道已关闭")
	}

	user.RoleID = models.RoleAdmin
	return s.RegisterUser(user)
}
