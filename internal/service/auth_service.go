package service

import (
	"errors"

	"homeschool_lms_backend/internal/config"
	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/repository"
	"homeschool_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	RoleRepo *repository.RoleRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, roleRepo *repository.RoleRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		RoleRepo: roleRepo,
		Cfg:      cfg,
	}
}

// Login 用户名或邮箱登录。expectedRole 非空时校验账号角色，
// 各端登录面板只放行对应角色。
func (s *AuthService) Login(identifier, password string, expectedRole model.UserRole) (string, *model.SanitizedUser, error) {
	user, err := s.UserRepo.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	sanitized := user.Sanitize()
	if expectedRole != "" && sanitized.Role != expectedRole {
		return "", sanitized, util.ErrRoleMismatch
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, sanitized, nil
}

// GetCurrentUser 从请求上下文的 JWT 声明还原完整用户，失败返回 nil
func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

func (s *AuthService) ListRoles() ([]model.Role, error) {
	return s.RoleRepo.FindAll()
}
