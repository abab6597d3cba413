package models

import "time"

// 角色取值约定：1为系统管理员，4及以上为餐厅普通岗位（服务员等）
const (
	RoleAdmin  = 1
	RoleServer = 4
)

// User 表示餐厅员工账户
type User struct {
	ID        uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	UserName  string    `gorm:"column:user_name;type:varchar(50);uniqueIndex;not null" json:"user_name"`
	Password  string    `gorm:"type:varchar(100);not null" json:"-"` // Password not exposed in JSON
	RoleID    int       `gorm:"not null;default:4" json:"role_id"`
	Email     string    `gorm:"type:varchar(100)" json:"email,omitempty"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"` // 任何字段变更都会更新
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否为系统管理员
func (u *User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// PublicColumns 对外可见的列，密码哈希永远不在其中
var PublicColumns = []string{
	"user_id", "user_name", "role_id", "email", "phone", "created_at", "updated_at",
}
