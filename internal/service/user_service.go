package service

import (
	"errors"

	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/repository"
	"homeschool_lms_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Children 监护人名下的学生账号
func (s *UserService) Children(parentID uint) ([]model.SanitizedUser, error) {
	users, err := s.UserRepo.FindChildren(parentID)
	if err != nil {
		return nil, err
	}
	children := make([]model.SanitizedUser, 0, len(users))
	for i := range users {
		children = append(children, *users[i].Sanitize())
	}
	return children, nil
}

// IsLinkedChild 学生是否挂在该监护人名下
func (s *UserService) IsLinkedChild(parentID, childID uint) bool {
	linked, err := s.UserRepo.IsLinkedChild(parentID, childID)
	if err != nil {
		return false
	}
	return linked
}
