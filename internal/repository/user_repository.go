package repository

import (
	"homeschool_lms_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Role").First(&user, id).Error
	return &user, err
}

// FindByIdentifier 按用户名或邮箱查找，登录接口两者均可
func (r *UserRepository) FindByIdentifier(identifier string) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Role").
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	return &user, err
}

// FindChildren 某个监护人名下的全部学生账号
func (r *UserRepository) FindChildren(parentID uint) ([]model.User, error) {
	var users []model.User
	err := r.DB.Preload("Role").Where("parent_id = ?", parentID).Find(&users).Error
	return users, err
}

// IsLinkedChild 校验学生是否挂在该监护人名下
func (r *UserRepository) IsLinkedChild(parentID, childID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("id = ? AND parent_id = ?", childID, parentID).
		Count(&count).Error
	return count > 0, err
}
