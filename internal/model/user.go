package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type UserRole string

const (
	Student UserRole = "student"
	Parent  UserRole = "parent"
	Teacher UserRole = "teacher"
	Admin   UserRole = "administrator"
)

// Role 角色表，Permissions 为权限字符串数组（JSON）
// swagger:model Role
type Role struct {
	BaseModel
	Name        UserRole       `gorm:"size:50;unique;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Permissions datatypes.JSON `gorm:"not null" json:"permissions"`
}

func (Role) TableName() string {
	return "roles"
}

// PermissionList 解析权限 JSON，解析失败时返回空列表
func (r *Role) PermissionList() []string {
	var perms []string
	if err := json.Unmarshal(r.Permissions, &perms); err != nil {
		return []string{}
	}
	return perms
}

// swagger:model User
type User struct {
	BaseModel
	Username    string `gorm:"size:100;unique;not null" json:"username"`
	Email       string `gorm:"size:100;unique;not null" json:"email"`
	DisplayName string `gorm:"size:100;not null" json:"displayName"`
	Password    string `gorm:"size:100;not null" json:"-"`
	RoleID      uint   `gorm:"not null;index" json:"-"`
	Role        Role   `gorm:"foreignKey:RoleID" json:"-"`
	// ParentID 关联监护人账号（学生账号专用）
	ParentID *uint `gorm:"index" json:"parentId"`
}

func (User) TableName() string {
	return "users"
}

// SanitizedUser 对外暴露的用户信息，不含密码散列
type SanitizedUser struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Role        UserRole `json:"role"`
	Permissions []string `json:"permissions"`
	ParentID    *uint    `json:"parentId"`
}

func (u *User) Sanitize() *SanitizedUser {
	return &SanitizedUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role.Name,
		Permissions: u.Role.PermissionList(),
		ParentID:    u.ParentID,
	}
}
