package models

// Role 表示员工角色
type Role struct {
	RoleID   int    `gorm:"column:role_id;primaryKey" json:"role_id"`
	RoleName string `gorm:"column:role_name;type:varchar(50);unique;not null" json:"role_name"`
}

// TableName 指定表名
func (Role) TableName() string {
	return "roles"
}

// DefaultRoles 迁移后写入的初始角色
var DefaultRoles = []Role{
	{RoleID: RoleAdmin, RoleName: "admin"},
	{RoleID: RoleServer, RoleName: "server"},
}
