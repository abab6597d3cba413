package services

import (
	"errors"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/error/code"
	"dinetrack-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// UserChangeset 表示一次更新想要修改的字段子集。
// 只有非nil的字段会映射为列赋值，可更新的字段在这里静态可数，
// 不再从请求体动态拼接更新语句。
type UserChangeset struct {
	UserName *string
	Password *string // 必须已经是bcrypt哈希
	RoleID   *int
	Email    *string
	Phone    *string
}

// IsEmpty 是否没有任何待更新字段
func (cs *UserChangeset) IsEmpty() bool {
	return cs == nil ||
		(cs.UserName == nil && cs.Password == nil && cs.RoleID == nil &&
			cs.Email == nil && cs.Phone == nil)
}

// toUpdates 将已填充的字段映射为列赋值，updated_at由gorm自动盖章
func (cs *UserChangeset) toUpdates() map[string]interface{} {
	updates := map[string]interface{}{}
	if cs.UserName != nil {
		updates["user_name"] = *cs.UserName
	}
	if cs.Password != nil {
		updates["password"] = *cs.Password
	}
	if cs.RoleID != nil {
		updates["role_id"] = *cs.RoleID
	}
	if cs.Email != nil {
		updates["email"] = *cs.Email
	}
	if cs.Phone != nil {
		updates["phone"] = *cs.Phone
	}
	return updates
}

// InterfaceUserService 定义用户存储服务接口
type InterfaceUserService interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByUserName(userName string) (*models.User, error)
	GetAllUsers(page, pageSize int, search string) ([]models.User, int64, error)
	DeleteUser(id uint) (*models.User, error)
	ApplyUserUpdates(tx *gorm.DB, id uint, changeset *UserChangeset) (*models.User, error)
}

// UserService 提供用户记录的持久化操作
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService 创建一个新的用户存储服务
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1 CreateUser 创建新用户，密码必须已经哈希
func (s *UserService) CreateUser(user *models.User) error {
	// 验证用户名唯一性
	var count int64
	if err := s.DB.Model(&models.User{}).Where("user_name = ?", user.UserName).Count(&count).Error; err != nil {
		return code.NewError(code.ErrDatabase)
	}
	if count > 0 {
		return code.NewError(code.ErrUserAlreadyExist)
	}

	if err := s.DB.Create(user).Error; err != nil {
		// 并发创建时唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return code.NewError(code.ErrUserAlreadyExist)
		}
		return err
	}
	return nil
}

// 2 GetUserByID 根据ID获取用户，不返回密码哈希
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.Select(models.PublicColumns).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.NewError(code.ErrUserNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// 3 GetUserByUserName 根据用户名获取用户，包含密码哈希，仅限凭证校验使用
func (s *UserService) GetUserByUserName(userName string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("user_name = ?", userName).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.NewError(code.ErrUserNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// 4 GetAllUsers 获取所有用户，支持分页和搜索，不返回密码哈希
func (s *UserService) GetAllUsers(page, pageSize int, search string) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.DB.Model(&models.User{})

	// 如果有搜索关键词，添加搜索条件
	if search != "" {
		query = query.Where("user_name LIKE ? OR email LIKE ? OR phone LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Select(models.PublicColumns).Order("user_id").
		Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// 5 DeleteUser 删除用户并返回被删除的记录，不做级联删除
func (s *UserService) DeleteUser(id uint) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	result := s.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, code.NewError(code.ErrUserNotFound)
	}
	return user, nil
}

// 6 ApplyUserUpdates 只更新changeset中出现的字段。
// 接受事务句柄，调用方可以把读改写序列放进同一个事务。
func (s *UserService) ApplyUserUpdates(tx *gorm.DB, id uint, changeset *UserChangeset) (*models.User, error) {
	if tx == nil {
		tx = s.DB
	}

	if changeset.IsEmpty() {
		return nil, code.NewError(code.ErrNoFieldsToUpdate)
	}

	// 如果更新用户名，需要检查唯一性
	if changeset.UserName != nil {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("user_name = ? AND user_id != ?", *changeset.UserName, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, code.NewError(code.ErrUserAlreadyExist)
		}
	}

	result := tx.Model(&models.User{}).Where("user_id = ?", id).Updates(changeset.toUpdates())
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, code.NewError(code.ErrUserAlreadyExist)
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, code.NewError(code.ErrUserNotFound)
	}

	// 重新获取更新后的用户信息
	var user models.User
	if err := tx.Select(models.PublicColumns).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
